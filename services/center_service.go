package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/concours-mef/api/model"
	"gorm.io/gorm"
)

// CenterService manages exam centers
type CenterService struct {
	db *gorm.DB
}

// NewCenterService creates a new center service
func NewCenterService(db *gorm.DB) *CenterService {
	return &CenterService{db: db}
}

// CreateCenterRequest carries the fields of a new exam center
type CreateCenterRequest struct {
	Code         string
	Capacity     int
	CityID       uint
	SpecialtyIDs []uint
}

var errDuplicateCenterCode = errors.New("a center with this code already exists")

// Create persists a new active center after checking code uniqueness and the
// city reference
func (s *CenterService) Create(ctx context.Context, req CreateCenterRequest) (*model.ExamCenter, error) {
	var existing int64
	err := s.db.WithContext(ctx).Model(&model.ExamCenter{}).
		Where("code = ?", req.Code).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check center code: %w", err)
	}
	if existing > 0 {
		return nil, errDuplicateCenterCode
	}

	var city model.City
	if err := s.db.WithContext(ctx).First(&city, req.CityID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCityNotFound
		}
		return nil, fmt.Errorf("failed to load city: %w", err)
	}

	center := model.ExamCenter{
		Code:     req.Code,
		Capacity: req.Capacity,
		Active:   true,
		CityID:   city.ID,
	}

	if len(req.SpecialtyIDs) > 0 {
		var specialties []model.Specialty
		if err := s.db.WithContext(ctx).Find(&specialties, req.SpecialtyIDs).Error; err != nil {
			return nil, fmt.Errorf("failed to load specialties: %w", err)
		}
		if len(specialties) != len(req.SpecialtyIDs) {
			return nil, ErrSpecialtyNotFound
		}
		center.Specialties = specialties
	}

	if err := s.db.WithContext(ctx).Create(&center).Error; err != nil {
		return nil, fmt.Errorf("failed to create center: %w", err)
	}
	return &center, nil
}

// GetByID returns one center with its city and specialties
func (s *CenterService) GetByID(ctx context.Context, centerID uint) (*model.ExamCenter, error) {
	var center model.ExamCenter
	err := s.db.WithContext(ctx).
		Preload("City").
		Preload("Specialties").
		First(&center, centerID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCenterNotFound
		}
		return nil, fmt.Errorf("failed to load center: %w", err)
	}
	return &center, nil
}

// ListActive returns every active center
func (s *CenterService) ListActive(ctx context.Context) ([]model.ExamCenter, error) {
	var centers []model.ExamCenter
	err := s.db.WithContext(ctx).
		Preload("City").
		Where("active = ?", true).
		Order("code ASC").
		Find(&centers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active centers: %w", err)
	}
	return centers, nil
}

// ListByCity returns the active centers of one city
func (s *CenterService) ListByCity(ctx context.Context, cityID uint) ([]model.ExamCenter, error) {
	var city model.City
	if err := s.db.WithContext(ctx).First(&city, cityID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCityNotFound
		}
		return nil, fmt.Errorf("failed to load city: %w", err)
	}

	var centers []model.ExamCenter
	err := s.db.WithContext(ctx).
		Preload("Specialties").
		Where("city_id = ? AND active = ?", cityID, true).
		Order("code ASC").
		Find(&centers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list centers by city: %w", err)
	}
	return centers, nil
}
