package statistics

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/concours-mef/api/services"
	"github.com/concours-mef/api/utils/response"
)

// StatisticsHandler serves aggregated application counts
type StatisticsHandler struct {
	statistics *services.StatisticsService
}

func NewStatisticsHandler(statistics *services.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statistics: statistics}
}

// Aggregate handles GET /api/v1/statistics?group_by=contest|specialty|center|month
func (h *StatisticsHandler) Aggregate(c *fiber.Ctx) error {
	groupBy := services.GroupBy(c.Query("group_by", string(services.GroupByContest)))

	switch groupBy {
	case services.GroupByContest, services.GroupBySpecialty, services.GroupByCenter, services.GroupByMonth:
	default:
		return response.BadRequest(c, "group_by must be one of: contest, specialty, center, month")
	}

	counts, err := h.statistics.Aggregate(c.Context(), groupBy)
	if err != nil {
		return response.InternalServerError(c, "Failed to compute statistics")
	}

	return response.Success(c, fiber.Map{
		"group_by": groupBy,
		"counts":   counts,
	})
}

// Dashboard handles GET /api/v1/statistics/dashboard
func (h *StatisticsHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.statistics.GetDashboardStats(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to compute dashboard statistics")
	}

	return response.Success(c, stats)
}

// CenterBreakdown handles GET /api/v1/statistics/centers/:id
func (h *StatisticsHandler) CenterBreakdown(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid center ID")
	}

	breakdown, err := h.statistics.StatusBreakdownByCenter(c.Context(), uint(id))
	if err != nil {
		return response.InternalServerError(c, "Failed to compute center statistics")
	}

	return response.Success(c, breakdown)
}
