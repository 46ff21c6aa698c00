package models

import (
	"time"
)

type UserRole string

const (
	RoleDeveloper UserRole = "developer"
	RoleOrganizer UserRole = "organizer"
)

// User is owned by the auth service. Only the profile-completion flag
// changes after creation.
type User struct {
	ID                 uint64    `gorm:"primarykey" json:"id"`
	Name               string    `gorm:"type:varchar(255);not null" json:"name"`
	Email              string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Role               UserRole  `gorm:"type:varchar(20);not null" json:"role"`
	IsProfileCompleted bool      `gorm:"not null;default:false" json:"isProfileCompleted"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`

	// Relations
	Memberships []TeamMember `gorm:"foreignKey:UserID" json:"-"`
}
