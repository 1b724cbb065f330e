// Package response holds the envelope used by the dashboard-facing routes.
// The client-facing auth and listing routes keep their own ad-hoc JSON shapes.
package response

import "github.com/gofiber/fiber/v2"

type Envelope struct {
	Status   string      `json:"status"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data"`
	Metadata interface{} `json:"metadata,omitempty"`
}

type ErrorEnvelope struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Details    interface{} `json:"details,omitempty"`
}

// Success sends 200 with the standard success envelope. A nil metadata is
// serialized as an empty object so clients can index into it unconditionally.
func Success(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	if metadata == nil {
		metadata = fiber.Map{}
	}
	return c.Status(fiber.StatusOK).JSON(Envelope{
		Status:   "success",
		Message:  message,
		Data:     data,
		Metadata: metadata,
	})
}

// Error sends statusCode with the standard error envelope.
func Error(c *fiber.Ctx, message string, statusCode int, details interface{}) error {
	if details == nil {
		details = fiber.Map{}
	}
	return c.Status(statusCode).JSON(ErrorEnvelope{
		Status: "error",
		Error: ErrorDetail{
			Message:    message,
			StatusCode: statusCode,
			Details:    details,
		},
	})
}

// Unauthorized sends 401 in the standard error envelope, for auth middleware.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusUnauthorized, nil)
}
