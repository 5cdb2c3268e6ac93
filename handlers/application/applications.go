package application

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/concours-mef/api/handlers"
	"github.com/concours-mef/api/model"
	"github.com/concours-mef/api/services"
	"github.com/concours-mef/api/utils/middleware"
	"github.com/concours-mef/api/utils/response"
	"github.com/concours-mef/api/utils/validation"
)

// ApplicationHandler handles candidate application requests
type ApplicationHandler struct {
	applications  *services.ApplicationService
	notifications *services.NotificationService
	statistics    *services.StatisticsService
	validator     *validation.Validator
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(applications *services.ApplicationService, notifications *services.NotificationService, statistics *services.StatisticsService) *ApplicationHandler {
	return &ApplicationHandler{
		applications:  applications,
		notifications: notifications,
		statistics:    statistics,
		validator:     validation.NewValidator(),
	}
}

// SubmitRequest represents the request body for a new application
type SubmitRequest struct {
	NationalID    string `json:"national_id" validate:"required,min=4,max=20"`
	FirstName     string `json:"first_name" validate:"required,min=2,max=100"`
	LastName      string `json:"last_name" validate:"required,min=2,max=100"`
	BirthDate     string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Gender        string `json:"gender" validate:"omitempty,oneof=M F"`
	Address       string `json:"address" validate:"omitempty,max=500"`
	Email         string `json:"email" validate:"required,email,max=254"`
	Phone         string `json:"phone" validate:"omitempty,max=30"`
	StudyLevel    string `json:"study_level" validate:"omitempty,max=100"`
	Diploma       string `json:"diploma" validate:"required,max=255"`
	Experience    string `json:"experience" validate:"omitempty,max=2000"`
	BirthCityID   uint   `json:"birth_city_id" validate:"omitempty"`
	CityID        uint   `json:"city_id" validate:"omitempty"`
	ContestID     uint   `json:"contest_id" validate:"required"`
	SpecialtyID   uint   `json:"specialty_id" validate:"required"`
	CenterID      uint   `json:"center_id" validate:"required"`
	TermsAccepted bool   `json:"terms_accepted"`
}

// ReviewRequest represents the request body for a rejection
type ReviewRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=1000"`
}

// Submit handles POST /api/v1/applications
func (h *ApplicationHandler) Submit(c *fiber.Ctx) error {
	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	if !req.TermsAccepted {
		return response.BadRequest(c, "Terms and conditions must be accepted")
	}

	submission := services.SubmitApplicationRequest{
		NationalID:    validation.SanitizeString(req.NationalID),
		FirstName:     validation.SanitizeString(req.FirstName),
		LastName:      validation.SanitizeString(req.LastName),
		Gender:        model.Gender(req.Gender),
		Address:       validation.SanitizeString(req.Address),
		Email:         validation.SanitizeString(req.Email),
		Phone:         validation.SanitizeString(req.Phone),
		StudyLevel:    validation.SanitizeString(req.StudyLevel),
		Diploma:       validation.SanitizeString(req.Diploma),
		Experience:    validation.SanitizeString(req.Experience),
		BirthCityID:   req.BirthCityID,
		CityID:        req.CityID,
		ContestID:     req.ContestID,
		SpecialtyID:   req.SpecialtyID,
		CenterID:      req.CenterID,
		TermsAccepted: req.TermsAccepted,
	}

	if req.BirthDate != "" {
		birthDate, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return response.BadRequest(c, "Invalid birth date")
		}
		submission.BirthDate = &birthDate
	}

	number, err := h.applications.Submit(c.Context(), submission)
	if err != nil {
		return handlers.BusinessError(c, err)
	}

	h.statistics.InvalidateCache(c.Context())

	return response.Created(c, fiber.Map{"number": number})
}

// Get handles GET /api/v1/applications/:number
func (h *ApplicationHandler) Get(c *fiber.Ctx) error {
	number := c.Params("number")

	view, err := h.applications.GetByNumber(c.Context(), number)
	if err != nil {
		return handlers.BusinessError(c, err)
	}

	return response.Success(c, view)
}

// List handles GET /api/v1/applications
func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	page, limit = response.ClampPageLimit(page, limit)

	var filters services.ApplicationFilters

	if v := c.Query("contest_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid contest_id")
		}
		contestID := uint(id)
		filters.ContestID = &contestID
	}

	if v := c.Query("specialty_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid specialty_id")
		}
		specialtyID := uint(id)
		filters.SpecialtyID = &specialtyID
	}

	if v := c.Query("center_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid center_id")
		}
		centerID := uint(id)
		filters.CenterID = &centerID
	}

	if v := c.Query("status"); v != "" {
		status := model.ApplicationStatus(v)
		if status != model.StatusPending && status != model.StatusValidated && status != model.StatusRejected {
			return response.BadRequest(c, "Invalid status")
		}
		filters.Status = &status
	}

	filters.Diploma = c.Query("diploma")

	views, total, err := h.applications.List(c.Context(), filters, page, limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch applications")
	}

	return response.Paginated(c, views, response.CalculatePagination(page, limit, total))
}

// Validate handles POST /api/v1/applications/:number/validate
func (h *ApplicationHandler) Validate(c *fiber.Ctx) error {
	number := c.Params("number")

	reviewerID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	if err := h.applications.Validate(c.Context(), number, reviewerID); err != nil {
		return handlers.BusinessError(c, err)
	}

	h.statistics.InvalidateCache(c.Context())

	return response.SuccessWithMessage(c, "Application validated", fiber.Map{"number": number})
}

// Reject handles POST /api/v1/applications/:number/reject
func (h *ApplicationHandler) Reject(c *fiber.Ctx) error {
	number := c.Params("number")

	reviewerID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.applications.Reject(c.Context(), number, reviewerID, req.Reason); err != nil {
		return handlers.BusinessError(c, err)
	}

	h.statistics.InvalidateCache(c.Context())

	return response.SuccessWithMessage(c, "Application rejected", fiber.Map{"number": number})
}

// Delete handles DELETE /api/v1/applications/:number
func (h *ApplicationHandler) Delete(c *fiber.Ctx) error {
	number := c.Params("number")

	if err := h.applications.Delete(c.Context(), number); err != nil {
		return handlers.BusinessError(c, err)
	}

	h.statistics.InvalidateCache(c.Context())

	return response.NoContent(c)
}

// ListNotifications handles GET /api/v1/applications/:number/notifications
func (h *ApplicationHandler) ListNotifications(c *fiber.Ctx) error {
	number := c.Params("number")

	// Resolve the application first so unknown numbers return 404
	if _, err := h.applications.GetByNumber(c.Context(), number); err != nil {
		return handlers.BusinessError(c, err)
	}

	logs, err := h.notifications.ListByApplication(c.Context(), number)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch notifications")
	}

	return response.Success(c, logs)
}
