package constants

import "time"

// Context keys
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Team rules
const (
	MinTeamNameLength = 3
	MaxTeamNameLength = 50
	MinTeamSize       = 1
	MaxTeamSize       = 20
)

// InteractionDedupWindow is how long a view suppresses further view/register
// interactions for the same user and hackathon.
const InteractionDedupWindow = 10 * time.Minute

// Realtime events
const (
	EventNewInvitation      = "new-invitation"
	EventInvitationAccepted = "invitation-accepted"
)

// Sessions
const (
	SessionName   = "devzoku_session"
	SessionMaxAge = 86400 * 7
)
