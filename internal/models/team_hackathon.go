package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the outcome label assigned during adjudication.
type Position string

const (
	PositionWinner         Position = "winner"
	PositionFirstRunnerUp  Position = "firstRunnerUp"
	PositionSecondRunnerUp Position = "secondRunnerUp"
	PositionParticipant    Position = "participant"
)

// TeamHackathon is a team's application to a hackathon. The composite
// primary key guarantees one row per (team, hackathon).
type TeamHackathon struct {
	TeamID      uint64              `gorm:"primarykey" json:"teamId"`
	HackathonID uint64              `gorm:"primarykey;index" json:"hackathonId"`
	SubmittedAt time.Time           `gorm:"not null" json:"submittedAt"`
	Score       decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"score"`
	Position    *Position           `gorm:"type:varchar(20)" json:"position"`

	// Relations
	Team      Team      `gorm:"foreignKey:TeamID" json:"-"`
	Hackathon Hackathon `gorm:"foreignKey:HackathonID" json:"-"`
}
