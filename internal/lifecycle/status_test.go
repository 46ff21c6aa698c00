package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testSchedule() Schedule {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return Schedule{
		RegistrationStart: base,
		RegistrationEnd:   base.Add(48 * time.Hour),
		StartTime:         base.Add(72 * time.Hour),
		EndTime:           base.Add(96 * time.Hour),
	}
}

func TestDerive(t *testing.T) {
	s := testSchedule()

	tests := []struct {
		name string
		now  time.Time
		want Status
	}{
		{"before registration", s.RegistrationStart.Add(-time.Second), StatusUpcoming},
		{"at registration start", s.RegistrationStart, StatusRegistrationInProgress},
		{"during registration", s.RegistrationStart.Add(time.Hour), StatusRegistrationInProgress},
		{"at registration end", s.RegistrationEnd, StatusRegistrationEnded},
		{"between registration and event", s.RegistrationEnd.Add(time.Hour), StatusRegistrationEnded},
		{"at event start", s.StartTime, StatusOngoing},
		{"during event", s.StartTime.Add(time.Hour), StatusOngoing},
		{"at event end", s.EndTime, StatusCompleted},
		{"after event", s.EndTime.Add(24 * time.Hour), StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Derive(s, tt.now))
		})
	}
}

func TestDerive_RegistrationEndEqualsStart(t *testing.T) {
	s := testSchedule()
	s.StartTime = s.RegistrationEnd

	assert.Equal(t, StatusOngoing, Derive(s, s.RegistrationEnd))
	assert.Equal(t, StatusRegistrationInProgress, Derive(s, s.RegistrationEnd.Add(-time.Nanosecond)))
}

func TestDerive_UnsetTimestamp(t *testing.T) {
	s := testSchedule()
	s.StartTime = time.Time{}

	assert.Equal(t, StatusUnknown, Derive(s, s.RegistrationStart))
}

func TestDerive_Totality(t *testing.T) {
	s := testSchedule()
	for now := s.RegistrationStart.Add(-2 * time.Hour); now.Before(s.EndTime.Add(2 * time.Hour)); now = now.Add(17 * time.Minute) {
		status := Derive(s, now)
		assert.NotEqual(t, StatusUnknown, status, "now=%s", now)
		assert.True(t, Valid(string(status)))
	}
}

func TestRegistrationOpen(t *testing.T) {
	s := testSchedule()

	assert.False(t, RegistrationOpen(s, s.RegistrationStart.Add(-time.Minute)))
	assert.True(t, RegistrationOpen(s, s.RegistrationStart))
	assert.False(t, RegistrationOpen(s, s.RegistrationEnd))
}
