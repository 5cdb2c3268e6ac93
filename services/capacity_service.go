package services

import (
	"context"
	"fmt"

	"github.com/concours-mef/api/model"
	"gorm.io/gorm"
)

// CapacityService is the seat-accounting ledger. It is the only component that
// mutates shared state under concurrency: two simultaneous submissions for the
// last seat of a (center, specialty) pair must not both succeed.
//
// Seat counts are always re-derived from persisted application rows, never
// cached across requests; the check stays correct after a restart and the
// advisory lock makes check-and-insert atomic per pair.
type CapacityService struct {
	db *gorm.DB
}

// NewCapacityService creates a new capacity service
func NewCapacityService(db *gorm.DB) *CapacityService {
	return &CapacityService{db: db}
}

// SpecialtyCapacity is the per-(center, specialty) seat summary exposed to
// dashboards and to the submission path.
type SpecialtyCapacity struct {
	SpecialtyID    uint   `json:"specialty_id"`
	SpecialtyCode  string `json:"specialty_code"`
	SpecialtyLabel string `json:"specialty_label"`
	TotalSeats     int    `json:"total_seats"`
	Validated      int64  `json:"validated"`
	Pending        int64  `json:"pending"`
	Remaining      int64  `json:"remaining"`
}

// ReserveSeat checks and claims one seat for (centerID, specialtyID) inside tx,
// which must be the same transaction that inserts the new application row.
// It takes a transaction-scoped advisory lock keyed by the pair, recounts
// PENDING and VALIDATED applications from persisted state and compares against
// the specialty's seat total. Fails with ErrCapacityExceeded at the limit.
func (s *CapacityService) ReserveSeat(ctx context.Context, tx *gorm.DB, centerID, specialtyID uint) error {
	// pg_advisory_xact_lock holds until the surrounding transaction ends, so
	// the count below cannot race a concurrent reservation for the same pair.
	err := tx.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(?, ?)", int32(centerID), int32(specialtyID)).Error
	if err != nil {
		return fmt.Errorf("failed to acquire seat lock: %w", err)
	}

	var specialty model.Specialty
	if err := tx.WithContext(ctx).First(&specialty, specialtyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrSpecialtyNotFound
		}
		return fmt.Errorf("failed to load specialty: %w", err)
	}

	occupied, err := s.countOccupied(ctx, tx, centerID, specialtyID)
	if err != nil {
		return err
	}

	if occupied >= int64(specialty.SeatCount) {
		return ErrCapacityExceeded
	}
	return nil
}

// ReleaseSeat is invoked when an application leaves the seat-holding set
// (rejection or deletion). Counts are derived from the rows themselves, so the
// status change in the same transaction is the release; this hook only
// verifies the row exists and logs nothing extra.
func (s *CapacityService) ReleaseSeat(ctx context.Context, tx *gorm.DB, applicationNumber string) error {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Application{}).
		Where("number = ?", applicationNumber).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check application for seat release: %w", err)
	}
	if count == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

// CommitSeat marks a pending seat as durably allocated on validation. The
// occupied count does not change (the seat was held since submission); the
// status flip in the caller's transaction moves it from pending to validated
// in every derived report.
func (s *CapacityService) CommitSeat(ctx context.Context, tx *gorm.DB, applicationNumber string) error {
	return s.ReleaseSeat(ctx, tx, applicationNumber)
}

// CountByStatus returns the number of applications for a (center, specialty)
// pair in the given status
func (s *CapacityService) CountByStatus(ctx context.Context, centerID, specialtyID uint, status model.ApplicationStatus) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Application{}).
		Where("center_id = ? AND specialty_id = ? AND status = ?", centerID, specialtyID, status).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count applications by status: %w", err)
	}
	return count, nil
}

// CapacitySummary returns the seat usage of every specialty offered by a center
func (s *CapacityService) CapacitySummary(ctx context.Context, centerID uint) ([]SpecialtyCapacity, error) {
	var center model.ExamCenter
	err := s.db.WithContext(ctx).Preload("Specialties").First(&center, centerID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCenterNotFound
		}
		return nil, fmt.Errorf("failed to load center: %w", err)
	}

	summary := make([]SpecialtyCapacity, 0, len(center.Specialties))
	for _, specialty := range center.Specialties {
		validated, err := s.CountByStatus(ctx, centerID, specialty.ID, model.StatusValidated)
		if err != nil {
			return nil, err
		}
		pending, err := s.CountByStatus(ctx, centerID, specialty.ID, model.StatusPending)
		if err != nil {
			return nil, err
		}

		remaining := int64(specialty.SeatCount) - validated - pending
		if remaining < 0 {
			remaining = 0
		}

		summary = append(summary, SpecialtyCapacity{
			SpecialtyID:    specialty.ID,
			SpecialtyCode:  specialty.Code,
			SpecialtyLabel: specialty.Label,
			TotalSeats:     specialty.SeatCount,
			Validated:      validated,
			Pending:        pending,
			Remaining:      remaining,
		})
	}

	return summary, nil
}

// countOccupied counts PENDING plus VALIDATED applications for the pair within
// the given transaction
func (s *CapacityService) countOccupied(ctx context.Context, tx *gorm.DB, centerID, specialtyID uint) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Application{}).
		Where("center_id = ? AND specialty_id = ? AND status IN ?",
			centerID, specialtyID,
			[]model.ApplicationStatus{model.StatusPending, model.StatusValidated}).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count occupied seats: %w", err)
	}
	return count, nil
}
