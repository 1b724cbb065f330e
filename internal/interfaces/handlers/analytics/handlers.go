package analytics

import (
	ansvc "chitfund-backend/internal/application/analytics"
	"chitfund-backend/internal/middleware"
	"chitfund-backend/internal/pkg/money"
	"chitfund-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *ansvc.Service
}

// Dashboard GET /analytics: overview stats for the authenticated user.
// Metadata carries the money figures pre-formatted in Indian grouping.
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	stats, err := h.Service.Dashboard(c.Context(), middleware.GetUserID(c))
	if err != nil {
		log.Error().Err(err).Msg("analytics dashboard failed")
		return response.Error(c, "Failed to load analytics", fiber.StatusInternalServerError, nil)
	}
	metadata := fiber.Map{
		"display": fiber.Map{
			"currentValue":        money.FormatIndian(stats.CurrentValue, 2),
			"totalPotentialValue": money.FormatIndian(stats.TotalPotentialValue, 2),
			"averageBidAmount":    money.FormatIndian(stats.AverageBidAmount, 2),
			"totalInvestment":     money.FormatIndian(stats.TotalInvestment, 2),
		},
	}
	return response.Success(c, "Analytics fetched successfully", stats, metadata)
}
