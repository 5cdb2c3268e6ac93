package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/concours-mef/api/utils/response"
)

// HealthHandler reports liveness of the API and its database
type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check handles GET /ping
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return response.ServiceUnavailable(c, "Database unavailable")
	}
	if err := sqlDB.Ping(); err != nil {
		return response.ServiceUnavailable(c, "Database unavailable")
	}

	return c.JSON(fiber.Map{"status": "ok"})
}
