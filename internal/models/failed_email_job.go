package models

import (
	"time"

	"gorm.io/datatypes"
)

// FailedEmailJob is a dead-lettered email job. Resolved rows are kept for audit.
type FailedEmailJob struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	JobID     string         `gorm:"type:varchar(64);not null;index" json:"jobId"`
	JobName   string         `gorm:"type:varchar(64);not null" json:"jobName"`
	Payload   datatypes.JSON `gorm:"not null" json:"payload"`
	Attempts  int            `gorm:"not null" json:"attempts"`
	LastError string         `gorm:"type:text" json:"lastError"`
	Resolved  bool           `gorm:"not null;default:false;index" json:"resolved"`
	RetriedAt *time.Time     `json:"retriedAt,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
