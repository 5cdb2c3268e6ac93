package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/concours-mef/api/model"
	"gorm.io/gorm"
)

// ContestService manages contest campaigns
type ContestService struct {
	db *gorm.DB
}

// NewContestService creates a new contest service
func NewContestService(db *gorm.DB) *ContestService {
	return &ContestService{db: db}
}

// CreateContestRequest carries the fields of a new contest
type CreateContestRequest struct {
	Title        string
	OpenDate     time.Time
	CloseDate    time.Time
	ExamDate     time.Time
	SeatCount    int
	Conditions   string
	SpecialtyIDs []uint
	CenterIDs    []uint
}

var (
	errCloseBeforeOpen = errors.New("close date must be after open date")
	errExamBeforeClose = errors.New("exam date must be after close date")
	errNoCenters       = errors.New("at least one exam center must be selected")
)

// ValidateContestDates enforces the open < close < exam ordering
func ValidateContestDates(open, closeDate, exam time.Time) error {
	if closeDate.Before(open) {
		return errCloseBeforeOpen
	}
	if exam.Before(closeDate) {
		return errExamBeforeClose
	}
	return nil
}

// Create validates and persists a new unpublished contest with a generated
// unique reference
func (s *ContestService) Create(ctx context.Context, req CreateContestRequest) (*model.Contest, error) {
	if err := ValidateContestDates(req.OpenDate, req.CloseDate, req.ExamDate); err != nil {
		return nil, err
	}
	if len(req.CenterIDs) == 0 {
		return nil, errNoCenters
	}

	var contest model.Contest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reference, err := s.uniqueReference(ctx, tx)
		if err != nil {
			return err
		}

		contest = model.Contest{
			Reference:  reference,
			Title:      req.Title,
			OpenDate:   req.OpenDate,
			CloseDate:  req.CloseDate,
			ExamDate:   req.ExamDate,
			SeatCount:  req.SeatCount,
			Conditions: req.Conditions,
			Published:  false,
		}

		var centers []model.ExamCenter
		if err := tx.Find(&centers, req.CenterIDs).Error; err != nil {
			return fmt.Errorf("failed to load centers: %w", err)
		}
		if len(centers) != len(req.CenterIDs) {
			return ErrCenterNotFound
		}
		contest.Centers = centers

		if len(req.SpecialtyIDs) > 0 {
			var specialties []model.Specialty
			if err := tx.Find(&specialties, req.SpecialtyIDs).Error; err != nil {
				return fmt.Errorf("failed to load specialties: %w", err)
			}
			if len(specialties) != len(req.SpecialtyIDs) {
				return ErrSpecialtyNotFound
			}
			contest.Specialties = specialties
		}

		if err := tx.Create(&contest).Error; err != nil {
			return fmt.Errorf("failed to create contest: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &contest, nil
}

// Publish flips the published flag, opening the contest to submissions within
// its window
func (s *ContestService) Publish(ctx context.Context, contestID uint) error {
	result := s.db.WithContext(ctx).Model(&model.Contest{}).
		Where("id = ?", contestID).
		Update("published", true)
	if result.Error != nil {
		return fmt.Errorf("failed to publish contest: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrContestNotFound
	}
	return nil
}

// GetByID returns one contest with its specialties and centers
func (s *ContestService) GetByID(ctx context.Context, contestID uint) (*model.Contest, error) {
	var contest model.Contest
	err := s.db.WithContext(ctx).
		Preload("Specialties").
		Preload("Centers.City").
		First(&contest, contestID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrContestNotFound
		}
		return nil, fmt.Errorf("failed to load contest: %w", err)
	}
	return &contest, nil
}

// ListOpen returns published contests whose window covers today
func (s *ContestService) ListOpen(ctx context.Context) ([]model.Contest, error) {
	today := time.Now().Truncate(24 * time.Hour)
	var contests []model.Contest
	err := s.db.WithContext(ctx).
		Preload("Specialties").
		Preload("Centers").
		Where("published = ? AND open_date <= ? AND close_date >= ?", true, today, today).
		Order("close_date ASC").
		Find(&contests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list open contests: %w", err)
	}
	return contests, nil
}

// List returns contests page by page, newest first
func (s *ContestService) List(ctx context.Context, page, pageSize int) ([]model.Contest, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Contest{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count contests: %w", err)
	}

	var contests []model.Contest
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&contests).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contests: %w", err)
	}
	return contests, total, nil
}

// uniqueReference generates a contest reference and retries on the rare
// collision
func (s *ContestService) uniqueReference(ctx context.Context, tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		reference := fmt.Sprintf("CONC-%d-%04d", time.Now().UnixMilli(), rand.Intn(9000)+1000)

		var count int64
		err := tx.WithContext(ctx).Model(&model.Contest{}).
			Where("reference = ?", reference).
			Count(&count).Error
		if err != nil {
			return "", fmt.Errorf("failed to check reference uniqueness: %w", err)
		}
		if count == 0 {
			return reference, nil
		}
	}
	return "", errors.New("could not generate a unique contest reference")
}
