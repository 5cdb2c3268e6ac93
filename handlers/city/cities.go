package city

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/concours-mef/api/model"
	"github.com/concours-mef/api/utils/response"
	"github.com/concours-mef/api/utils/validation"
)

// CityHandler handles city referential requests
type CityHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

func NewCityHandler(db *gorm.DB) *CityHandler {
	return &CityHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateCityRequest represents the request body for creating a city
type CreateCityRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// List handles GET /api/v1/cities
func (h *CityHandler) List(c *fiber.Ctx) error {
	var cities []model.City
	if err := h.db.Order("name ASC").Find(&cities).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch cities")
	}

	return response.Success(c, cities)
}

// Create handles POST /api/v1/cities
func (h *CityHandler) Create(c *fiber.Ctx) error {
	var req CreateCityRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	name := validation.SanitizeString(req.Name)

	var existing model.City
	if err := h.db.Where("name = ?", name).First(&existing).Error; err == nil {
		return response.Conflict(c, "City already exists")
	}

	city := model.City{Name: name}
	if err := h.db.Create(&city).Error; err != nil {
		return response.InternalServerError(c, "Failed to create city")
	}

	return response.Created(c, city)
}
