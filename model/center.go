package model

import (
	"time"

	"gorm.io/gorm"
)

// ExamCenter is a physical exam location offering one or more specialties
type ExamCenter struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Code      string         `gorm:"uniqueIndex;not null;type:varchar(20)" json:"code"`
	Capacity  int            `gorm:"default:0" json:"capacity"`
	Active    bool           `gorm:"default:true" json:"active"`
	CityID    uint           `gorm:"index" json:"city_id"`

	// Relationships
	City         City          `gorm:"foreignKey:CityID" json:"city,omitempty"`
	Specialties  []Specialty   `gorm:"many2many:center_specialties" json:"specialties,omitempty"`
	Applications []Application `gorm:"foreignKey:CenterID" json:"-"`
}
