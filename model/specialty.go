package model

import (
	"time"

	"gorm.io/gorm"
)

// Specialty is a job track within a contest with its own seat allotment.
// SeatCount is the authoritative capacity figure per (center, specialty) pair.
type Specialty struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Code      string         `gorm:"uniqueIndex;not null;type:varchar(20)" json:"code"`
	Label     string         `gorm:"not null;type:varchar(100)" json:"label"`
	SeatCount int            `gorm:"default:0" json:"seat_count"`

	// Relationships
	Contests []Contest    `gorm:"many2many:contest_specialties" json:"-"`
	Centers  []ExamCenter `gorm:"many2many:center_specialties" json:"-"`
}
