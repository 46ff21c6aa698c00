package models

import (
	"slices"
	"time"

	"gorm.io/datatypes"
)

type Team struct {
	ID                      uint64                      `gorm:"primarykey" json:"id"`
	Name                    string                      `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description             string                      `gorm:"type:text" json:"description"`
	TeamSize                int                         `gorm:"not null" json:"teamSize"`
	IsAcceptingInvites      bool                        `gorm:"not null;default:true" json:"isAcceptingInvites"`
	SkillsNeeded            string                      `gorm:"type:text" json:"skillsNeeded"`
	CaptainID               uint64                      `gorm:"not null;index" json:"captainId"`
	CreatedBy               uint64                      `gorm:"not null" json:"createdBy"`
	PendingInvitesFromUsers datatypes.JSONSlice[uint64] `json:"pendingInvitesFromUsers"`
	CreatedAt               time.Time                   `json:"createdAt"`
	UpdatedAt               time.Time                   `json:"updatedAt"`

	// Relations
	Captain User         `gorm:"foreignKey:CaptainID" json:"-"`
	Members []TeamMember `gorm:"foreignKey:TeamID" json:"-"`
}

// HasPendingInvite reports whether userID has requested to join.
func (t *Team) HasPendingInvite(userID uint64) bool {
	return slices.Contains(t.PendingInvitesFromUsers, userID)
}

// RemovePendingInvite drops userID from the pending list and reports whether
// it was present.
func (t *Team) RemovePendingInvite(userID uint64) bool {
	idx := slices.Index(t.PendingInvitesFromUsers, userID)
	if idx < 0 {
		return false
	}
	t.PendingInvitesFromUsers = slices.Delete(t.PendingInvitesFromUsers, idx, idx+1)
	return true
}

// TeamMember is the membership relation. The composite primary key is the
// backstop against double-inserting a member.
type TeamMember struct {
	TeamID   uint64    `gorm:"primarykey" json:"teamId"`
	UserID   uint64    `gorm:"primarykey;index" json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`

	// Relations
	Team Team `gorm:"foreignKey:TeamID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`
}
