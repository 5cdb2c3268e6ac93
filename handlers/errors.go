package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/concours-mef/api/services"
	"github.com/concours-mef/api/utils/response"
)

// BusinessError maps an expected business failure from the services layer to
// the matching 4xx response. Unknown errors become a 500 with a generic
// message so internals never leak to clients.
func BusinessError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrApplicationNotFound),
		errors.Is(err, services.ErrDocumentNotFound),
		errors.Is(err, services.ErrContestNotFound),
		errors.Is(err, services.ErrSpecialtyNotFound),
		errors.Is(err, services.ErrCenterNotFound),
		errors.Is(err, services.ErrCityNotFound),
		errors.Is(err, services.ErrReviewerNotFound):
		return response.NotFound(c, err.Error())

	case errors.Is(err, services.ErrDuplicateApplication),
		errors.Is(err, services.ErrCapacityExceeded),
		errors.Is(err, services.ErrAlreadyProcessed):
		return response.Conflict(c, err.Error())

	case errors.Is(err, services.ErrMissingReason):
		return response.BadRequest(c, err.Error())

	case services.IsBusinessError(err):
		// Eligibility failures and other recoverable conditions
		return response.Error(c, fiber.StatusUnprocessableEntity, err.Error(), "NOT_ELIGIBLE")

	default:
		return response.InternalServerError(c, "")
	}
}
