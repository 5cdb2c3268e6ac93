package model

import (
	"time"

	"gorm.io/gorm"
)

// City is a reference entity used for candidate birth places, residences and
// exam center locations
type City struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;uniqueIndex" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Centers []ExamCenter `gorm:"foreignKey:CityID" json:"centers,omitempty"`
}
