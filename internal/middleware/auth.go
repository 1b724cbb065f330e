package middleware

import (
	authsvc "chitfund-backend/internal/application/auth"
	"chitfund-backend/internal/domain"
	"chitfund-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// TokenCookieName is the auth cookie set on register and login.
const TokenCookieName = "token"

const userLocal = "user"

// RequireAuth verifies the token cookie and loads the user onto Locals.
func RequireAuth(svc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(TokenCookieName)
		if tokenString == "" {
			return response.Unauthorized(c, "You'll have to login")
		}
		userID, err := svc.VerifyToken(tokenString)
		if err != nil {
			return response.Unauthorized(c, "You'll have to login")
		}
		user, err := svc.FindByID(c.Context(), userID)
		if err != nil {
			return response.Unauthorized(c, "You'll have to login")
		}
		c.Locals(userLocal, user)
		return c.Next()
	}
}

// GetUser returns the authenticated user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals(userLocal).(*domain.User)
	return u
}

// GetUserID returns the authenticated user's id, uuid.Nil when absent.
func GetUserID(c *fiber.Ctx) uuid.UUID {
	if u := GetUser(c); u != nil {
		return u.UserID
	}
	return uuid.Nil
}
