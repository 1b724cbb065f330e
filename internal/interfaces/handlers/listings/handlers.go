package listings

import (
	"errors"
	"time"

	listsvc "chitfund-backend/internal/application/listings"
	"chitfund-backend/internal/domain"
	"chitfund-backend/internal/middleware"
	"chitfund-backend/internal/pkg/validation"
	"chitfund-backend/internal/proration"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *listsvc.Service
}

// CreateRequest body (req.body title, price, startDate, endDate, members).
type CreateRequest struct {
	Title     string                `json:"title"`
	Price     float64               `json:"price"`
	StartDate string                `json:"startDate"`
	EndDate   string                `json:"endDate"`
	Members   []listsvc.MemberInput `json:"members"`
}

// UpdateBidRequest body (req.body newCurrentBid).
type UpdateBidRequest struct {
	NewCurrentBid float64 `json:"newCurrentBid"`
}

// parseDate accepts RFC3339 timestamps and bare yyyy-mm-dd dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// ViewAll GET /view: active listings for the user; 200 with a message when empty.
func (h *Handlers) ViewAll(c *fiber.Ctx) error {
	listings, err := h.Service.ViewAllActive(c.Context(), middleware.GetUserID(c))
	if err != nil {
		log.Error().Err(err).Msg("view listings failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to load listings"})
	}
	if len(listings) == 0 {
		return c.JSON(fiber.Map{"message": "No active listings found"})
	}
	return c.JSON(fiber.Map{"count": len(listings), "data": listings})
}

// Create POST /create: 201 with the saved listing.
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid startDate"})
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid endDate"})
	}
	for _, m := range req.Members {
		if !validation.IsValidName(m.Name) || !validation.IsValidPhone(m.Phone) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid member details"})
		}
	}

	listing, err := h.Service.CreateListing(c.Context(), middleware.GetUserID(c), listsvc.CreateListingInput{
		Title:     req.Title,
		Price:     req.Price,
		StartDate: start,
		EndDate:   end,
		Members:   req.Members,
	})
	if err != nil {
		if errors.Is(err, proration.ErrInvalidRoster) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": proration.ErrInvalidRoster.Error()})
		}
		log.Error().Err(err).Msg("create listing failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create listing"})
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}

// ViewOne GET /view/:id: single listing with roster expanded to Member records.
func (h *Handlers) ViewOne(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid listing id"})
	}
	detail, err := h.Service.GetListing(c.Context(), middleware.GetUserID(c), id)
	if err != nil {
		if errors.Is(err, listsvc.ErrListingNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "The listing you are looking for doesn't exist"})
		}
		log.Error().Err(err).Str("listing_id", id.String()).Msg("view listing failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(detail)
}

// ViewArchived GET /archived: listings past endDate, currentMonth nulled.
func (h *Handlers) ViewArchived(c *fiber.Ctx) error {
	listings, err := h.Service.Archived(c.Context(), middleware.GetUserID(c))
	if err != nil {
		log.Error().Err(err).Msg("archived listings failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	if listings == nil {
		listings = []domain.Listing{}
	}
	return c.JSON(listings)
}

// UpdateBid PUT /update/:id: settle the new bid across the roster.
func (h *Handlers) UpdateBid(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid listing id"})
	}
	var req UpdateBidRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	_, err = h.Service.UpdateBid(c.Context(), middleware.GetUserID(c), id, req.NewCurrentBid)
	if err != nil {
		switch {
		case errors.Is(err, listsvc.ErrListingNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": listsvc.ErrListingNotFound.Error()})
		case errors.Is(err, listsvc.ErrListingExpired):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": listsvc.ErrListingExpired.Error()})
		case errors.Is(err, proration.ErrInvalidBid):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": proration.ErrInvalidBid.Error()})
		case errors.Is(err, proration.ErrInvalidRoster):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": proration.ErrInvalidRoster.Error()})
		default:
			log.Error().Err(err).Str("listing_id", id.String()).Msg("bid update failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.JSON(fiber.Map{"message": "Listing and member bids updated successfully"})
}

// Delete DELETE /delete/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid listing id"})
	}
	if err := h.Service.Delete(c.Context(), middleware.GetUserID(c), id); err != nil {
		if errors.Is(err, listsvc.ErrListingNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": listsvc.ErrListingNotFound.Error()})
		}
		log.Error().Err(err).Str("listing_id", id.String()).Msg("delete listing failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Listing deleted successfully"})
}
