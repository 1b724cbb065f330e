package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Redis keys for global traffic stats, read back by the health handlers.
const (
	KeyReqTotal  = "health:global:req_total"
	KeyReqErrors = "health:global:req_errors"
	KeyResTime   = "health:global:res_time_total"
	KeyResCount  = "health:global:res_count"
	KeyStartTime = "health:global:start_time"
	KeyLastReq   = "health:global:last_request"
	KeyErrorLog  = "health:global:error_log"
)

// errorLogCap bounds the error_log list so it never grows unbounded.
const errorLogCap = 50

// HealthMarker records request stats in Redis. Health endpoints and favicon
// probes are excluded so the dashboard doesn't count itself. No-op when Redis
// is not configured.
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rdb == nil {
			return c.Next()
		}
		path := c.Path()
		if path == "/" || strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}

		ctx := context.Background()
		start := time.Now()
		markRequest(ctx, rdb, c)

		err := c.Next()

		status := c.Response().StatusCode()
		pipe := rdb.Pipeline()
		pipe.Incr(ctx, KeyResCount)
		pipe.IncrByFloat(ctx, KeyResTime, float64(time.Since(start).Milliseconds()))
		if status >= 500 {
			pipe.Incr(ctx, KeyReqErrors)
			entry, _ := json.Marshal(map[string]interface{}{
				"time":   time.Now(),
				"path":   c.OriginalURL(),
				"method": c.Method(),
				"status": status,
			})
			pipe.LPush(ctx, KeyErrorLog, entry)
			pipe.LTrim(ctx, KeyErrorLog, 0, errorLogCap-1)
		}
		_, _ = pipe.Exec(ctx)
		return err
	}
}

func markRequest(ctx context.Context, rdb *redis.Client, c *fiber.Ctx) {
	entry, _ := json.Marshal(map[string]interface{}{
		"time":   time.Now(),
		"ip":     c.IP(),
		"path":   c.OriginalURL(),
		"method": c.Method(),
	})
	pipe := rdb.Pipeline()
	pipe.Set(ctx, KeyLastReq, entry, 0)
	pipe.Incr(ctx, KeyReqTotal)
	_, _ = pipe.Exec(ctx)
}
