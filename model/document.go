package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DocumentKind represents the kind of uploaded document
type DocumentKind string

const (
	DocumentKindCV         DocumentKind = "CV"
	DocumentKindNationalID DocumentKind = "CIN"
	DocumentKindDiploma    DocumentKind = "DIPLOMA"
)

// RequiredDocumentKinds are the kinds every application must carry
var RequiredDocumentKinds = []DocumentKind{
	DocumentKindCV,
	DocumentKindNationalID,
	DocumentKindDiploma,
}

// Document is a binary attachment bound to an application. The bytes live in
// the blob store; only the storage key is kept here.
type Document struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
	Kind              DocumentKind   `gorm:"type:varchar(20);not null" json:"kind"`
	Name              string         `gorm:"not null;type:varchar(255)" json:"name"`
	ContentType       string         `gorm:"not null;type:varchar(100)" json:"content_type"`
	Size              int64          `gorm:"not null" json:"size"`
	StorageKey        string         `gorm:"type:varchar(500)" json:"storage_key"`
	UploadedAt        time.Time      `gorm:"not null" json:"uploaded_at"`
	ApplicationNumber string         `gorm:"not null;index;type:varchar(30)" json:"application_number"`

	// Relationships
	Application Application `gorm:"foreignKey:ApplicationNumber" json:"-"`
}

// FormattedSize returns the size in a human readable unit
func (d *Document) FormattedSize() string {
	size := float64(d.Size)
	units := []string{"B", "KB", "MB", "GB"}
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", d.Size)
	}
	return fmt.Sprintf("%.1f %s", size, units[i])
}
