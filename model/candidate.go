package model

import (
	"time"

	"gorm.io/gorm"
)

// Gender of a candidate
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// Candidate represents a person applying to contests. Candidates are identified
// by their national ID (CIN) and reused across submissions.
type Candidate struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	NationalID  string         `gorm:"column:national_id;uniqueIndex;not null;type:varchar(20)" json:"national_id"`
	FirstName   string         `gorm:"not null;type:varchar(100)" json:"first_name"`
	LastName    string         `gorm:"not null;type:varchar(100)" json:"last_name"`
	BirthDate   *time.Time     `json:"birth_date,omitempty"`
	Gender      Gender         `gorm:"type:varchar(1)" json:"gender"`
	Address     string         `gorm:"type:varchar(255)" json:"address"`
	Email       string         `gorm:"type:varchar(100);index" json:"email"`
	Phone       string         `gorm:"type:varchar(20)" json:"phone"`
	StudyLevel  string         `gorm:"type:varchar(100)" json:"study_level"`
	Diploma     string         `gorm:"type:varchar(100)" json:"diploma"`
	Experience  string         `gorm:"type:text" json:"experience"`
	BirthCityID uint           `gorm:"index" json:"birth_city_id"`
	CityID      uint           `gorm:"index" json:"city_id"` // city of residence

	// Relationships
	BirthCity    City          `gorm:"foreignKey:BirthCityID" json:"birth_city,omitempty"`
	City         City          `gorm:"foreignKey:CityID" json:"city,omitempty"`
	Applications []Application `gorm:"foreignKey:CandidateID" json:"-"`
}

// FullName returns the candidate's display name
func (c *Candidate) FullName() string {
	return c.FirstName + " " + c.LastName
}
