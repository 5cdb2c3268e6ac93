package model

import (
	"time"

	"gorm.io/gorm"
)

// UserRole represents a staff member's role
type UserRole string

const (
	RoleAdmin         UserRole = "ADMIN"
	RoleGlobalManager UserRole = "GLOBAL_MANAGER"
	RoleLocalManager  UserRole = "LOCAL_MANAGER"
)

// User represents a staff member who reviews applications
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Username     string         `gorm:"uniqueIndex;not null;type:varchar(50)" json:"username"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         UserRole       `gorm:"type:varchar(30);not null" json:"role"`
	Email        string         `gorm:"type:varchar(100);uniqueIndex" json:"email"`
	Enabled      bool           `gorm:"default:true" json:"enabled"`
	LastLogin    *time.Time     `json:"last_login,omitempty"`

	// Relationships
	ReviewedApplications []Application `gorm:"foreignKey:ReviewerID" json:"-"`
	Centers              []ExamCenter  `gorm:"many2many:user_centers" json:"-"`
	Specialties          []Specialty   `gorm:"many2many:user_specialties" json:"-"`
}
