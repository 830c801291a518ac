package response

import (
	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/logger"
	"storeadmin/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message,omitempty"`
	Data       interface{}       `json:"data,omitempty"`
	Pagination *utils.Pagination `json:"pagination,omitempty"`
	Code       string            `json:"code,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
}

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Envelope{Success: true, Message: message, Data: data})
}

func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Message: message, Data: data})
}

func Paginated(c *fiber.Ctx, message string, data interface{}, p utils.Pagination) error {
	return c.JSON(Envelope{Success: true, Message: message, Data: data, Pagination: &p})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Envelope{Success: false, Message: message})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func Unauthorized(c *fiber.Ctx) error {
	return FromError(c, apperrors.ErrUnauthorized)
}

func Forbidden(c *fiber.Ctx) error {
	return FromError(c, apperrors.ErrForbidden)
}

// FromError writes the status, code and message derived from err. Internal
// failures are logged and reported with a generic message.
func FromError(c *fiber.Ctx, err error) error {
	de := apperrors.From(err)
	status := apperrors.HTTPStatus(de)

	if status >= fiber.StatusInternalServerError {
		logger.L().Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Any("request_id", c.Locals("requestid")),
			zap.String("code", de.Code),
			zap.Error(de.Err),
		)
	}

	return c.Status(status).JSON(Envelope{
		Success: false,
		Message: de.Message,
		Code:    de.Code,
		Errors:  de.Fields,
	})
}
