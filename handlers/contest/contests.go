package contest

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/concours-mef/api/handlers"
	"github.com/concours-mef/api/services"
	"github.com/concours-mef/api/utils/response"
	"github.com/concours-mef/api/utils/validation"
)

// ContestHandler handles contest management requests
type ContestHandler struct {
	contests  *services.ContestService
	validator *validation.Validator
}

// NewContestHandler creates a new contest handler
func NewContestHandler(contests *services.ContestService) *ContestHandler {
	return &ContestHandler{
		contests:  contests,
		validator: validation.NewValidator(),
	}
}

// CreateContestRequest represents the request body for creating a contest
type CreateContestRequest struct {
	Title        string `json:"title" validate:"required,min=5,max=255"`
	OpenDate     string `json:"open_date" validate:"required,datetime=2006-01-02"`
	CloseDate    string `json:"close_date" validate:"required,datetime=2006-01-02"`
	ExamDate     string `json:"exam_date" validate:"required,datetime=2006-01-02"`
	SeatCount    int    `json:"seat_count" validate:"required,gte=1"`
	Conditions   string `json:"conditions" validate:"omitempty,max=5000"`
	SpecialtyIDs []uint `json:"specialty_ids" validate:"required,min=1"`
	CenterIDs    []uint `json:"center_ids" validate:"required,min=1"`
}

// Create handles POST /api/v1/contests
func (h *ContestHandler) Create(c *fiber.Ctx) error {
	var req CreateContestRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	openDate, _ := time.Parse("2006-01-02", req.OpenDate)
	closeDate, _ := time.Parse("2006-01-02", req.CloseDate)
	examDate, _ := time.Parse("2006-01-02", req.ExamDate)

	contest, err := h.contests.Create(c.Context(), services.CreateContestRequest{
		Title:        validation.SanitizeString(req.Title),
		OpenDate:     openDate,
		CloseDate:    closeDate,
		ExamDate:     examDate,
		SeatCount:    req.SeatCount,
		Conditions:   validation.SanitizeString(req.Conditions),
		SpecialtyIDs: req.SpecialtyIDs,
		CenterIDs:    req.CenterIDs,
	})
	if err != nil {
		if services.IsBusinessError(err) {
			return handlers.BusinessError(c, err)
		}
		return response.BadRequest(c, err.Error())
	}

	return response.Created(c, contest)
}

// Publish handles POST /api/v1/contests/:id/publish
func (h *ContestHandler) Publish(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid contest ID")
	}

	if err := h.contests.Publish(c.Context(), uint(id)); err != nil {
		return handlers.BusinessError(c, err)
	}

	return response.SuccessWithMessage(c, "Contest published", nil)
}

// Get handles GET /api/v1/contests/:id
func (h *ContestHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid contest ID")
	}

	contest, err := h.contests.GetByID(c.Context(), uint(id))
	if err != nil {
		return handlers.BusinessError(c, err)
	}

	return response.Success(c, contest)
}

// ListOpen handles GET /api/v1/contests/open
func (h *ContestHandler) ListOpen(c *fiber.Ctx) error {
	contests, err := h.contests.ListOpen(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch contests")
	}

	return response.Success(c, contests)
}

// List handles GET /api/v1/contests
func (h *ContestHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	page, limit = response.ClampPageLimit(page, limit)

	contests, total, err := h.contests.List(c.Context(), page, limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch contests")
	}

	return response.Paginated(c, contests, response.CalculatePagination(page, limit, total))
}
