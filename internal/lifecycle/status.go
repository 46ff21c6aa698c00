// Package lifecycle derives a hackathon's lifecycle status from its schedule.
//
// Status is never stored. Every read path calls Derive with the current time.
// Windows are half-open: a boundary instant belongs to the phase that starts
// at it, so now == RegistrationEnd is already "Registration ended" and
// now == EndTime is "completed".
package lifecycle

import "time"

type Status string

const (
	StatusUpcoming               Status = "upcoming"
	StatusRegistrationInProgress Status = "Registration in Progress"
	StatusRegistrationEnded      Status = "Registration ended"
	StatusOngoing                Status = "ongoing"
	StatusCompleted              Status = "completed"
	StatusUnknown                Status = "unknown"
)

// Schedule is the four timestamps a status is derived from.
type Schedule struct {
	RegistrationStart time.Time
	RegistrationEnd   time.Time
	StartTime         time.Time
	EndTime           time.Time
}

// Derive maps a schedule and an instant to exactly one status.
// The first matching rule wins; StatusUnknown is returned only when a
// timestamp is unset.
func Derive(s Schedule, now time.Time) Status {
	if s.RegistrationStart.IsZero() || s.RegistrationEnd.IsZero() || s.StartTime.IsZero() || s.EndTime.IsZero() {
		return StatusUnknown
	}

	switch {
	case now.Before(s.RegistrationStart):
		return StatusUpcoming
	case now.Before(s.RegistrationEnd):
		return StatusRegistrationInProgress
	case now.Before(s.StartTime):
		return StatusRegistrationEnded
	case now.Before(s.EndTime):
		return StatusOngoing
	default:
		return StatusCompleted
	}
}

// RegistrationOpen reports whether now lies in [RegistrationStart, RegistrationEnd).
func RegistrationOpen(s Schedule, now time.Time) bool {
	return Derive(s, now) == StatusRegistrationInProgress
}

// Valid reports whether a status string is one of the derivable statuses.
func Valid(status string) bool {
	switch Status(status) {
	case StatusUpcoming, StatusRegistrationInProgress, StatusRegistrationEnded,
		StatusOngoing, StatusCompleted, StatusUnknown:
		return true
	}
	return false
}
