package health

import (
	"encoding/json"
	"time"

	healthsvc "chitfund-backend/internal/health"
	"chitfund-backend/internal/middleware"
	"chitfund-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Handlers serves the status endpoints. Rdb and DB may be nil; the endpoints
// then report the dependency as disconnected instead of failing.
type Handlers struct {
	Rdb            *redis.Client
	DB             healthsvc.DBPinger
	FrontendURL    string
	HealthAdminKey string
}

// statKeys is everything Reset clears.
var statKeys = []string{
	middleware.KeyReqTotal,
	middleware.KeyReqErrors,
	middleware.KeyResTime,
	middleware.KeyResCount,
	middleware.KeyStartTime,
	middleware.KeyLastReq,
	middleware.KeyErrorLog,
}

// Reset clears the traffic stats. Guarded by the admin key so a public
// deployment cannot have its counters wiped by anyone who finds the route.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	if key := c.Query("key"); key == "" || key != h.HealthAdminKey {
		return response.Error(c, "Unauthorized", fiber.StatusForbidden, nil)
	}
	if h.Rdb == nil {
		return response.Error(c, "Redis not configured", fiber.StatusServiceUnavailable, nil)
	}
	ctx := c.UserContext()
	if err := h.Rdb.Del(ctx, statKeys...).Err(); err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	if err := h.Rdb.Set(ctx, middleware.KeyStartTime, time.Now().UnixMilli(), 0).Err(); err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Stats reset successfully", fiber.Map{"success": true}, nil)
}

// JSON returns the collected health payload for monitoring tools.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	result := healthsvc.CollectHealth(c.UserContext(), h.Rdb, h.DB, h.FrontendURL)
	return c.JSON(fiber.Map{
		"service":      "chitfund-api",
		"status":       result.Status,
		"runtime":      result.Runtime,
		"traffic":      result.Traffic,
		"dependencies": result.Dependencies,
	})
}

// Errors returns the most recent 5xx entries recorded by the health marker.
func (h *Handlers) Errors(c *fiber.Ctx) error {
	if h.Rdb == nil {
		return c.JSON([]interface{}{})
	}
	raw, err := h.Rdb.LRange(c.UserContext(), middleware.KeyErrorLog, 0, 49).Result()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON([]interface{}{})
	}
	entries := make([]map[string]interface{}, 0, len(raw))
	for _, s := range raw {
		var m map[string]interface{}
		if json.Unmarshal([]byte(s), &m) == nil && m != nil {
			entries = append(entries, m)
		}
	}
	return c.JSON(entries)
}

// Dashboard serves the HTML status page with the health payload embedded.
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	result := healthsvc.CollectHealth(c.UserContext(), h.Rdb, h.DB, h.FrontendURL)
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.SendString(healthsvc.RenderDashboardHTML(result))
}
