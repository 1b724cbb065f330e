package middleware

import (
	"errors"

	"chitfund-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ErrorHandler is the app-level fiber error handler. Fiber errors keep their
// code and message; anything else is logged and surfaced as a plain 500 so
// internal error text never reaches a client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return response.Error(c, fe.Message, fe.Code, nil)
	}
	log.Error().Err(err).
		Str("trace_id", GetTraceID(c)).
		Str("path", c.Path()).
		Msg("Unhandled error")
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}
