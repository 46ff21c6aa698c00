package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type JobName string

const (
	JobTeamRegistration JobName = "team-registration"
	JobWinnerResult     JobName = "winner-result"
)

// Job is one unit of email work. Payload holds one of the *Data types below.
type Job struct {
	ID         string          `json:"id"`
	Name       JobName         `json:"name"`
	Payload    json.RawMessage `json:"payload"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
}

// NewJob encodes payload into a fresh job.
func NewJob(name JobName, payload any, now time.Time) (Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Job{}, fmt.Errorf("encode %s payload: %w", name, err)
	}
	return Job{
		ID:         uuid.NewString(),
		Name:       name,
		Payload:    raw,
		EnqueuedAt: now,
	}, nil
}

// Decode unmarshals the payload into v.
func (j Job) Decode(v any) error {
	if err := json.Unmarshal(j.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", j.Name, err)
	}
	return nil
}

// TeamRegistrationData is sent to every member of a team that applied.
type TeamRegistrationData struct {
	To             string    `json:"to"`
	MemberName     string    `json:"memberName"`
	TeamName       string    `json:"teamName"`
	HackathonID    uint64    `json:"hackathonId"`
	HackathonTitle string    `json:"hackathonTitle"`
	Mode           string    `json:"mode"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
}

// WinnerResultData is sent to the captain of every team that applied.
type WinnerResultData struct {
	To             string `json:"to"`
	CaptainName    string `json:"captainName"`
	TeamName       string `json:"teamName"`
	HackathonID    uint64 `json:"hackathonId"`
	HackathonTitle string `json:"hackathonTitle"`
	Position       string `json:"position"`
}
