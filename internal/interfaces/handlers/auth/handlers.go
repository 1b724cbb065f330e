package auth

import (
	"errors"
	"time"

	authsvc "chitfund-backend/internal/application/auth"
	"chitfund-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for user endpoints.
type Handlers struct {
	Service *authsvc.Service
	Secure  bool // Secure cookie flag, on in production.
}

// RegisterRequest body (req.body name, username, password, optional dob).
type RegisterRequest struct {
	Name     string     `json:"name"`
	Username string     `json:"username"`
	Password string     `json:"password"`
	DOB      *time.Time `json:"dob"`
}

// LoginRequest body (req.body username, password).
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handlers) setTokenCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token,
		Expires:  time.Now().Add(h.Service.TokenTTL),
		HTTPOnly: true,
		Secure:   h.Secure,
		SameSite: "Strict",
		Path:     "/",
	})
}

// Register POST /register: create the user, issue the token cookie, return the user.
// Missing fields and duplicate usernames respond 200 with just a message.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.JSON(fiber.Map{"message": authsvc.ErrAllFieldsRequired.Error()})
	}
	if req.Name == "" || req.Username == "" || req.Password == "" {
		return c.JSON(fiber.Map{"message": authsvc.ErrAllFieldsRequired.Error()})
	}

	user, err := h.Service.Register(c.Context(), authsvc.RegisterInput{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
		DOB:      req.DOB,
	})
	if err != nil {
		if errors.Is(err, authsvc.ErrUserExists) {
			return c.JSON(fiber.Map{"message": authsvc.ErrUserExists.Error()})
		}
		log.Error().Err(err).Str("username", req.Username).Msg("register failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server Error"})
	}

	token, err := h.Service.CreateSecretToken(user.UserID)
	if err != nil {
		log.Error().Err(err).Msg("token signing failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server Error"})
	}
	h.setTokenCookie(c, token)

	return c.JSON(fiber.Map{"message": "User Created", "success": true, "user": user})
}

// Login POST /login: verify credentials, issue the token cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": authsvc.ErrAllFieldsRequired.Error()})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": authsvc.ErrAllFieldsRequired.Error()})
	}

	user, err := h.Service.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": authsvc.ErrUserNotFound.Error()})
		case errors.Is(err, authsvc.ErrIncorrectPassword):
			return c.JSON(fiber.Map{"message": authsvc.ErrIncorrectPassword.Error()})
		default:
			log.Error().Err(err).Str("username", req.Username).Msg("login failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server Error"})
		}
	}

	token, err := h.Service.CreateSecretToken(user.UserID)
	if err != nil {
		log.Error().Err(err).Msg("token signing failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server Error"})
	}
	h.setTokenCookie(c, token)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User logged in successfully", "success": true})
}

// Logout POST /logout: expire the token cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.Secure,
		SameSite: "Strict",
		Path:     "/",
	})
	return c.JSON(fiber.Map{"status": true, "message": "Logged out successfully!"})
}

// Profile GET /profile: return the authenticated user.
func (h *Handlers) Profile(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": authsvc.ErrNotAuthenticated.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "user": user})
}
