package model

import (
	"time"

	"gorm.io/gorm"
)

// ApplicationStatus represents the review status of an application
type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "PENDING"
	StatusValidated ApplicationStatus = "VALIDATED"
	StatusRejected  ApplicationStatus = "REJECTED"
)

// IsTerminal reports whether the status can no longer change via review actions
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusValidated || s == StatusRejected
}

// Application is a candidate's submission for one specialty at one center
// within one contest. The number (format CAND-YYYYMMDD-XXXX) is generated at
// submission time and used as the primary key; it is never reused.
type Application struct {
	Number         string            `gorm:"primaryKey;type:varchar(30)" json:"number"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	DeletedAt      gorm.DeletedAt    `gorm:"index" json:"-"`
	Status         ApplicationStatus `gorm:"type:varchar(20);default:'PENDING';index" json:"status"`
	SubmittedAt    time.Time         `gorm:"not null;index" json:"submitted_at"`
	RejectReason   string            `gorm:"type:text" json:"reject_reason,omitempty"`
	TermsAccepted  bool              `gorm:"column:terms_accepted" json:"terms_accepted"`
	CandidateID    uint              `gorm:"not null;index" json:"candidate_id"`
	ContestID      uint              `gorm:"not null;index" json:"contest_id"`
	SpecialtyID    uint              `gorm:"not null;index" json:"specialty_id"`
	CenterID       uint              `gorm:"not null;index" json:"center_id"`
	ReviewerID     *uint             `gorm:"index" json:"reviewer_id,omitempty"`

	// Relationships
	Candidate Candidate  `gorm:"foreignKey:CandidateID" json:"candidate,omitempty"`
	Contest   Contest    `gorm:"foreignKey:ContestID" json:"contest,omitempty"`
	Specialty Specialty  `gorm:"foreignKey:SpecialtyID" json:"specialty,omitempty"`
	Center    ExamCenter `gorm:"foreignKey:CenterID" json:"center,omitempty"`
	Reviewer  *User      `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	Documents []Document `gorm:"foreignKey:ApplicationNumber" json:"documents,omitempty"`
}

// DocumentOfKind returns the first attached document of the given kind, or nil
func (a *Application) DocumentOfKind(kind DocumentKind) *Document {
	for i := range a.Documents {
		if a.Documents[i].Kind == kind {
			return &a.Documents[i]
		}
	}
	return nil
}

// HasAllRequiredDocuments reports whether the CV, national ID copy and diploma
// are all attached
func (a *Application) HasAllRequiredDocuments() bool {
	for _, kind := range RequiredDocumentKinds {
		if a.DocumentOfKind(kind) == nil {
			return false
		}
	}
	return true
}

// TotalDocumentSize returns the combined size in bytes of attached documents
func (a *Application) TotalDocumentSize() int64 {
	var total int64
	for i := range a.Documents {
		total += a.Documents[i].Size
	}
	return total
}
