package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationKind identifies the template a notification was sent with
type NotificationKind string

const (
	NotificationConfirmation NotificationKind = "CONFIRMATION"
	NotificationValidation   NotificationKind = "VALIDATION"
	NotificationRejection    NotificationKind = "REJECTION"
	NotificationReminder     NotificationKind = "REMINDER"
)

// NotificationLog records every outbound notification attempt. Sends are
// best-effort; the log is the only durable trace of them.
type NotificationLog struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	DeletedAt         gorm.DeletedAt   `gorm:"index" json:"-"`
	Kind              NotificationKind `gorm:"type:varchar(20);not null" json:"kind"`
	Recipient         string           `gorm:"not null;type:varchar(100)" json:"recipient"`
	Subject           string           `gorm:"type:varchar(255)" json:"subject"`
	SentAt            time.Time        `gorm:"not null" json:"sent_at"`
	Success           bool             `gorm:"default:false" json:"success"`
	Metadata          datatypes.JSON   `json:"metadata,omitempty"`
	ApplicationNumber string           `gorm:"index;type:varchar(30)" json:"application_number"`

	// Relationships
	Application Application `gorm:"foreignKey:ApplicationNumber" json:"-"`
}
