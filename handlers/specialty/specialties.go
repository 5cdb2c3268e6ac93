package specialty

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/concours-mef/api/model"
	"github.com/concours-mef/api/utils/response"
	"github.com/concours-mef/api/utils/validation"
)

// SpecialtyHandler handles specialty referential requests
type SpecialtyHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

func NewSpecialtyHandler(db *gorm.DB) *SpecialtyHandler {
	return &SpecialtyHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateSpecialtyRequest represents the request body for creating a specialty
type CreateSpecialtyRequest struct {
	Code      string `json:"code" validate:"required,min=2,max=50"`
	Label     string `json:"label" validate:"required,min=3,max=255"`
	SeatCount int    `json:"seat_count" validate:"required,gte=1"`
}

// List handles GET /api/v1/specialties
func (h *SpecialtyHandler) List(c *fiber.Ctx) error {
	var specialties []model.Specialty
	if err := h.db.Order("code ASC").Find(&specialties).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch specialties")
	}

	return response.Success(c, specialties)
}

// Create handles POST /api/v1/specialties
func (h *SpecialtyHandler) Create(c *fiber.Ctx) error {
	var req CreateSpecialtyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	var existing model.Specialty
	if err := h.db.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		return response.Conflict(c, "Specialty with this code already exists")
	}

	specialty := model.Specialty{
		Code:      validation.SanitizeString(req.Code),
		Label:     validation.SanitizeString(req.Label),
		SeatCount: req.SeatCount,
	}
	if err := h.db.Create(&specialty).Error; err != nil {
		return response.InternalServerError(c, "Failed to create specialty")
	}

	return response.Created(c, specialty)
}
