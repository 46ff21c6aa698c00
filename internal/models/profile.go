package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationInvitationSent     NotificationType = "invitation-sent"
	NotificationInvitationAccepted NotificationType = "invitation-accepted"
)

// Notification is stored inside the recipient's developer profile and pushed
// over the realtime hub with the same shape.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"createdAt"`
	TeamID    *uint64          `json:"teamId,omitempty"`
}

// HackathonParticipation is one entry of a developer's participation history.
// There is at most one entry per hackathon.
type HackathonParticipation struct {
	HackathonID uint64   `json:"hackathonId"`
	Position    Position `json:"position"`
}

type DeveloperProfile struct {
	UserID        uint64                                      `gorm:"primarykey;autoIncrement:false" json:"userId"`
	Notifications datatypes.JSONSlice[Notification]           `json:"notifications"`
	Hackathons    datatypes.JSONSlice[HackathonParticipation] `json:"hackathons"`
	CreatedAt     time.Time                                   `json:"createdAt"`
	UpdatedAt     time.Time                                   `json:"updatedAt"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// RecordParticipation replaces any existing entry for the hackathon.
func (p *DeveloperProfile) RecordParticipation(hackathonID uint64, position Position) {
	for i, entry := range p.Hackathons {
		if entry.HackathonID == hackathonID {
			p.Hackathons[i].Position = position
			return
		}
	}
	p.Hackathons = append(p.Hackathons, HackathonParticipation{HackathonID: hackathonID, Position: position})
}

// RemoveNotification drops the notification with the given ID and reports
// whether it was present.
func (p *DeveloperProfile) RemoveNotification(id string) bool {
	for i, n := range p.Notifications {
		if n.ID == id {
			p.Notifications = append(p.Notifications[:i], p.Notifications[i+1:]...)
			return true
		}
	}
	return false
}

type OrganizerProfile struct {
	UserID              uint64    `gorm:"primarykey;autoIncrement:false" json:"userId"`
	OrganizationName    string    `gorm:"type:varchar(255)" json:"organizationName"`
	HackathonsOrganized int       `gorm:"not null;default:0" json:"hackathonsOrganized"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
