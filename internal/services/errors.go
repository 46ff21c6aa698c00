package services

import (
	apierrors "github.com/devzoku/devzoku-api/internal/errors"
)

var (
	ErrUserNotFound = apierrors.NotFoundError("user not found")

	ErrTeamNotFound          = apierrors.NotFoundError("team not found")
	ErrTeamNameTaken         = apierrors.Conflict("team name already exists")
	ErrInvalidTeamName       = apierrors.Validation("team name must be between 3 and 50 characters")
	ErrInvalidTeamSize       = apierrors.Validation("team size must be between 1 and 20")
	ErrNotTeamMember         = apierrors.NotFoundError("you are not a member of this team")
	ErrTeamHasApplications   = apierrors.Conflict("cannot leave a team that has applied to a hackathon")
	ErrTeamClosedToInvites   = apierrors.Conflict("team is not accepting invites")
	ErrAlreadyTeamMember     = apierrors.Conflict("user is already a member of this team")
	ErrInvitePending         = apierrors.Conflict("an invitation to this team is already pending")
	ErrNotTeamCaptain        = apierrors.ForbiddenError("only the team captain can perform this action")
	ErrInviteNotFound        = apierrors.NotFoundError("no pending invitation from this user")
	ErrTeamFull              = apierrors.Conflict("team is full")
	ErrNotificationNotFound  = apierrors.NotFoundError("notification not found")
	ErrInviteActionForbidden = apierrors.ForbiddenError("only the captain or the requester can reject an invitation")

	ErrHackathonNotFound       = apierrors.NotFoundError("hackathon not found")
	ErrHackathonTitleTaken     = apierrors.Conflict("hackathon title already exists")
	ErrHackathonTitleRequired  = apierrors.Validation("title is required")
	ErrInvalidMode             = apierrors.Validation("mode must be online or offline")
	ErrInvalidHackathonSize    = apierrors.Validation("team size bounds must satisfy 1 <= minTeamSize <= maxTeamSize")
	ErrScheduleInPast          = apierrors.Validation("all dates must be in the future")
	ErrInvalidRegistration     = apierrors.Validation("registration must start before it ends")
	ErrRegistrationAfterStart  = apierrors.Validation("registration must end before the hackathon starts")
	ErrInvalidHackathonWindow  = apierrors.Validation("hackathon must start before it ends")
	ErrInvalidPhase            = apierrors.Validation("each phase must start before it ends and lie within the hackathon schedule")
	ErrPosterRequired          = apierrors.Validation("poster is required")
	ErrPosterStoreUnavailable  = apierrors.Unavailable("poster storage is not configured")
	ErrPosterUploadFailed      = apierrors.Unavailable("failed to upload poster")
	ErrInvalidDurationFilter   = apierrors.Validation("duration must be one of 7, 24, 48, 72, 72+")
	ErrInvalidStatusFilter     = apierrors.Validation("unknown hackathon status")
	ErrLoginRequired           = apierrors.Unauthenticated("authentication required for this filter")
	ErrOrganizerOnly           = apierrors.ForbiddenError("only organizers can use this filter")
	ErrNotHackathonOrganizer   = apierrors.ForbiddenError("only the hackathon organizer can perform this action")
	ErrRegistrationNotStarted  = apierrors.Validation("registration not started")
	ErrRegistrationOver        = apierrors.Validation("registration over")
	ErrHackathonOver           = apierrors.Validation("hackathon already over")
	ErrTeamSizeNotAllowed      = apierrors.Validation("team size does not meet hackathon requirements")
	ErrAlreadyApplied          = apierrors.Conflict("team already applied to this hackathon")
	ErrOnlyCaptainCanApply     = apierrors.ForbiddenError("only the team captain can apply")
	ErrMemberAppliedElsewhere  = apierrors.Conflict("some team members already applied with another team")
	ErrWinnerRequired          = apierrors.Validation("a winner is required")
	ErrDuplicatePositionHolder = apierrors.Validation("a team can hold only one position")
	ErrPositionHolderNotListed = apierrors.Validation("every position holder must have applied to the hackathon")
)
