package middleware

import (
	"context"
	"errors"
	"time"

	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// Timeout bounds the request's user context. Repositories run with that
// context, so an expired deadline aborts and rolls back the current unit.
func Timeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)

		err := c.Next()
		if err != nil && errors.Is(err, context.DeadlineExceeded) {
			return response.FromError(c, apperrors.ErrTimeout)
		}
		return err
	}
}
