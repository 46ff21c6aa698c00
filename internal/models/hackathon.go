package models

import (
	"time"

	"github.com/devzoku/devzoku-api/internal/lifecycle"
	"gorm.io/datatypes"
)

type HackathonMode string

const (
	ModeOnline  HackathonMode = "online"
	ModeOffline HackathonMode = "offline"
)

// IsValid reports whether m is a known hackathon mode.
func (m HackathonMode) IsValid() bool {
	return m == ModeOnline || m == ModeOffline
}

// PositionHolders is the winner snapshot written by adjudication.
// Runner-up slots may stay empty.
type PositionHolders struct {
	Winner         *uint64 `json:"winner"`
	FirstRunnerUp  *uint64 `json:"firstRunnerUp"`
	SecondRunnerUp *uint64 `json:"secondRunnerUp"`
}

type Hackathon struct {
	ID                uint64                               `gorm:"primarykey" json:"id"`
	Title             string                               `gorm:"type:varchar(255);uniqueIndex;not null" json:"title"`
	Description       string                               `gorm:"type:text" json:"description"`
	RegistrationStart time.Time                            `gorm:"not null" json:"registrationStart"`
	RegistrationEnd   time.Time                            `gorm:"not null" json:"registrationEnd"`
	StartTime         time.Time                            `gorm:"not null;index" json:"startTime"`
	EndTime           time.Time                            `gorm:"not null" json:"endTime"`
	MinTeamSize       int                                  `gorm:"not null" json:"minTeamSize"`
	MaxTeamSize       int                                  `gorm:"not null" json:"maxTeamSize"`
	Mode              HackathonMode                        `gorm:"type:varchar(20);not null;index" json:"mode"`
	Tags              datatypes.JSONSlice[string]          `json:"tags"`
	Poster            string                               `gorm:"type:varchar(1024)" json:"poster"`
	CreatedBy         uint64                               `gorm:"not null;index" json:"createdBy"`
	PositionHolders   *datatypes.JSONType[PositionHolders] `json:"positionHolders"`
	CreatedAt         time.Time                            `json:"createdAt"`
	UpdatedAt         time.Time                            `json:"updatedAt"`

	// Relations
	Organizer User             `gorm:"foreignKey:CreatedBy" json:"-"`
	Phases    []HackathonPhase `gorm:"foreignKey:HackathonID" json:"-"`
}

// Schedule returns the four timestamps that drive status derivation.
func (h *Hackathon) Schedule() lifecycle.Schedule {
	return lifecycle.Schedule{
		RegistrationStart: h.RegistrationStart,
		RegistrationEnd:   h.RegistrationEnd,
		StartTime:         h.StartTime,
		EndTime:           h.EndTime,
	}
}

// Status derives the lifecycle status at now. It is never persisted.
func (h *Hackathon) Status(now time.Time) lifecycle.Status {
	return lifecycle.Derive(h.Schedule(), now)
}

// Duration is the length of the event window.
func (h *Hackathon) Duration() time.Duration {
	return h.EndTime.Sub(h.StartTime)
}

// SetPositionHolders replaces the winner snapshot.
func (h *Hackathon) SetPositionHolders(holders PositionHolders) {
	snapshot := datatypes.NewJSONType(holders)
	h.PositionHolders = &snapshot
}

// Winners returns the winner snapshot, or nil when adjudication has not run.
func (h *Hackathon) Winners() *PositionHolders {
	if h.PositionHolders == nil {
		return nil
	}
	holders := h.PositionHolders.Data()
	return &holders
}

// HackathonPhase is one ordered stage of a hackathon.
type HackathonPhase struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	HackathonID uint64    `gorm:"not null;index" json:"hackathonId"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	StartTime   time.Time `gorm:"not null" json:"startTime"`
	EndTime     time.Time `gorm:"not null" json:"endTime"`
	PhaseOrder  int       `gorm:"column:phase_order;not null" json:"order"`
}
