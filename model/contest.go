package model

import (
	"time"

	"gorm.io/gorm"
)

// Contest represents a competitive-exam campaign with an application window and
// a total seat count, subdivided by specialty.
type Contest struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	Reference  string         `gorm:"uniqueIndex;not null;type:varchar(50)" json:"reference"`
	Title      string         `gorm:"not null;type:varchar(200)" json:"title"`
	OpenDate   time.Time      `gorm:"not null" json:"open_date"`
	CloseDate  time.Time      `gorm:"not null" json:"close_date"`
	ExamDate   time.Time      `gorm:"not null" json:"exam_date"`
	SeatCount  int            `gorm:"default:0" json:"seat_count"`
	Conditions string         `gorm:"type:text" json:"conditions"`
	Published  bool           `gorm:"default:false" json:"published"`

	// Relationships
	Specialties  []Specialty   `gorm:"many2many:contest_specialties" json:"specialties,omitempty"`
	Centers      []ExamCenter  `gorm:"many2many:contest_centers" json:"centers,omitempty"`
	Applications []Application `gorm:"foreignKey:ContestID" json:"-"`
}

// IsOpen reports whether the contest accepts submissions on the given day.
// Published is checked separately so callers can distinguish the two refusals.
func (c *Contest) IsOpen(today time.Time) bool {
	day := today.Truncate(24 * time.Hour)
	return !day.Before(c.OpenDate.Truncate(24*time.Hour)) &&
		!day.After(c.CloseDate.Truncate(24*time.Hour))
}
