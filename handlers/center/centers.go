package center

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/concours-mef/api/handlers"
	"github.com/concours-mef/api/services"
	"github.com/concours-mef/api/utils/response"
	"github.com/concours-mef/api/utils/validation"
)

// CenterHandler handles exam center requests
type CenterHandler struct {
	centers   *services.CenterService
	capacity  *services.CapacityService
	validator *validation.Validator
}

// NewCenterHandler creates a new center handler
func NewCenterHandler(centers *services.CenterService, capacity *services.CapacityService) *CenterHandler {
	return &CenterHandler{
		centers:   centers,
		capacity:  capacity,
		validator: validation.NewValidator(),
	}
}

// CreateCenterRequest represents the request body for creating a center
type CreateCenterRequest struct {
	Code         string `json:"code" validate:"required,min=2,max=50"`
	Capacity     int    `json:"capacity" validate:"required,gte=1"`
	CityID       uint   `json:"city_id" validate:"required"`
	SpecialtyIDs []uint `json:"specialty_ids" validate:"omitempty"`
}

// Create handles POST /api/v1/centers
func (h *CenterHandler) Create(c *fiber.Ctx) error {
	var req CreateCenterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	center, err := h.centers.Create(c.Context(), services.CreateCenterRequest{
		Code:         validation.SanitizeString(req.Code),
		Capacity:     req.Capacity,
		CityID:       req.CityID,
		SpecialtyIDs: req.SpecialtyIDs,
	})
	if err != nil {
		if services.IsBusinessError(err) {
			return handlers.BusinessError(c, err)
		}
		return response.Conflict(c, err.Error())
	}

	return response.Created(c, center)
}

// Get handles GET /api/v1/centers/:id
func (h *CenterHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid center ID")
	}

	center, err := h.centers.GetByID(c.Context(), uint(id))
	if err != nil {
		return handlers.BusinessError(c, err)
	}

	return response.Success(c, center)
}

// List handles GET /api/v1/centers
func (h *CenterHandler) List(c *fiber.Ctx) error {
	if v := c.Query("city_id"); v != "" {
		cityID, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid city_id")
		}
		centers, err := h.centers.ListByCity(c.Context(), uint(cityID))
		if err != nil {
			return response.InternalServerError(c, "Failed to fetch centers")
		}
		return response.Success(c, centers)
	}

	centers, err := h.centers.ListActive(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch centers")
	}

	return response.Success(c, centers)
}

// Capacity handles GET /api/v1/centers/:id/capacity
func (h *CenterHandler) Capacity(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid center ID")
	}

	summary, err := h.capacity.CapacitySummary(c.Context(), uint(id))
	if err != nil {
		return handlers.BusinessError(c, err)
	}

	return response.Success(c, summary)
}
