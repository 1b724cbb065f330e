package members

import (
	"errors"

	memsvc "chitfund-backend/internal/application/members"
	"chitfund-backend/internal/middleware"
	"chitfund-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *memsvc.Service
}

type CreateRequest struct {
	Name  string `json:"name"`
	Phone int64  `json:"phone"`
}

// Create POST /members: registers a member directly, outside any listing
// roster. The new member's balance is seeded from the user's closed listings.
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if !validation.IsValidName(req.Name) || !validation.IsValidPhone(req.Phone) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid member details"})
	}

	member, err := h.Service.Create(c.Context(), middleware.GetUserID(c), req.Name, req.Phone)
	if err != nil {
		if errors.Is(err, memsvc.ErrDuplicateMember) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": memsvc.ErrDuplicateMember.Error()})
		}
		log.Error().Err(err).Msg("create member failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create member"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "New Members Created!", "member": member})
}

// ViewOne GET /members/:id: one member's ledger, scoped to the owning user.
func (h *Handlers) ViewOne(c *fiber.Ctx) error {
	memberID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid member id"})
	}
	ledger, err := h.Service.LedgerForID(c.Context(), middleware.GetUserID(c), memberID)
	if err != nil {
		if errors.Is(err, memsvc.ErrMemberNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": memsvc.ErrMemberNotFound.Error()})
		}
		log.Error().Err(err).Msg("member ledger failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(ledger)
}

// ViewWithListings GET /members: every member of the user with their
// per-listing bid breakdown and running total.
func (h *Handlers) ViewWithListings(c *fiber.Ctx) error {
	ledgers, err := h.Service.MemberLedgers(c.Context(), middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, memsvc.ErrNoMembers) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": memsvc.ErrNoMembers.Error()})
		}
		log.Error().Err(err).Msg("member ledger sweep failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(ledgers)
}
