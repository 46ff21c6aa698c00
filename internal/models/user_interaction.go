package models

import (
	"time"

	"gorm.io/datatypes"
)

type InteractionType string

const (
	InteractionView     InteractionType = "view"
	InteractionSearch   InteractionType = "search"
	InteractionRegister InteractionType = "register"
)

// UserInteraction is an append-only behavioral event for the recommender.
// Context fields are denormalized at write time.
type UserInteraction struct {
	ID          uint64                      `gorm:"primarykey" json:"id"`
	UserID      uint64                      `gorm:"not null" json:"userId"`
	HackathonID *uint64                     `json:"hackathonId,omitempty"`
	Type        InteractionType             `gorm:"type:varchar(20);not null" json:"type"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Duration    string                      `gorm:"type:varchar(10)" json:"duration,omitempty"`
	Mode        string                      `gorm:"type:varchar(20)" json:"mode,omitempty"`
	Query       datatypes.JSON              `json:"query,omitempty"`
	CreatedAt   time.Time                   `json:"createdAt"`
}
