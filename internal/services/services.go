package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/devzoku/devzoku-api/internal/repository"
)

// Caller is the authenticated user behind a request.
type Caller struct {
	UserID uint64
	Role   models.UserRole
}

func (c *Caller) IsDeveloper() bool {
	return c != nil && c.Role == models.RoleDeveloper
}

func (c *Caller) IsOrganizer() bool {
	return c != nil && c.Role == models.RoleOrganizer
}

// Clock returns the current time. Services never call time.Now directly.
type Clock func() time.Time

func utcClock() time.Time {
	return time.Now().UTC()
}

func clockOrDefault(now Clock) Clock {
	if now == nil {
		return utcClock
	}
	return now
}

// notFound maps a missing row to sentinel and wraps anything else.
func notFound(err error, sentinel error, action string) error {
	if repository.IsNotFound(err) {
		return sentinel
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// DurationBucket classifies an event length into the buckets used for
// filtering and interaction context.
func DurationBucket(d time.Duration) string {
	hours := d.Hours()
	switch {
	case hours <= 7:
		return "7"
	case hours <= 24:
		return "24"
	case hours <= 48:
		return "48"
	case hours <= 72:
		return "72"
	default:
		return "72+"
	}
}

// matchesDuration reports whether d falls under a duration filter value.
// "N" means at most N hours and "72+" means longer than 72 hours.
func matchesDuration(filter string, d time.Duration) bool {
	hours := d.Hours()
	switch filter {
	case "7":
		return hours <= 7
	case "24":
		return hours <= 24
	case "48":
		return hours <= 48
	case "72":
		return hours <= 72
	case "72+":
		return hours > 72
	}
	return false
}

func validDurationFilter(filter string) bool {
	switch filter {
	case "7", "24", "48", "72", "72+":
		return true
	}
	return false
}

// matchesAnyTag reports whether the hackathon carries at least one of the
// wanted tags, ignoring case.
func matchesAnyTag(tags []string, wanted []string) bool {
	for _, w := range wanted {
		for _, t := range tags {
			if strings.EqualFold(strings.TrimSpace(t), strings.TrimSpace(w)) {
				return true
			}
		}
	}
	return false
}

func memberIDs(members []models.TeamMember) []uint64 {
	ids := make([]uint64, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	return ids
}
