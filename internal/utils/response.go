package utils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/datapackage-registry/internal/logging"
	"github.com/localnerve/datapackage-registry/internal/types"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// StatusOK sends {"status": "OK"}, the body of mutations without a result
func StatusOK(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(StatusResponse{Status: "OK"})
}

// SendError writes err as {"error_code", "message"}. Errors that are not a
// *types.CustomError become GENERIC_ERROR carrying their own message.
func SendError(c *fiber.Ctx, err error) error {
	ce := types.AsCustomError(err)

	entry := logging.FromContext(c.UserContext()).WithField("status", ce.Status)
	if ce.Status >= fiber.StatusInternalServerError {
		entry.WithError(err).Error(ce.Message)
	} else {
		entry.Debug(ce.Message)
	}

	return c.Status(ce.Status).JSON(ErrorResponse{ErrorCode: string(ce.ErrorCode), Message: ce.Message})
}

// ErrorResponse defines the schema for error responses
type ErrorResponse struct {
	ErrorCode string `json:"error_code" example:"DATA_NOT_FOUND"`
	Message   string `json:"message" example:"Package not found"`
}

// StatusResponse defines the schema for mutation success responses
type StatusResponse struct {
	Status string `json:"status" example:"OK"`
}
