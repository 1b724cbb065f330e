package middleware

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMarkerApp(t *testing.T) (*fiber.App, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	app := fiber.New()
	app.Use(HealthMarker(rdb))
	app.Get("/view", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false})
	})
	app.Get("/health/json", func(c *fiber.Ctx) error {
		return c.SendString("{}")
	})
	return app, rdb
}

func TestHealthMarker_CountsRequests(t *testing.T) {
	app, rdb := setupMarkerApp(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := app.Test(httptest.NewRequest("GET", "/view", nil))
		require.NoError(t, err)
	}

	total, err := rdb.Get(ctx, KeyReqTotal).Int()
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	count, err := rdb.Get(ctx, KeyResCount).Int()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, rdb.Get(ctx, KeyLastReq).Err())

	// No 5xx yet, so no errors counted and no log entries.
	assert.Error(t, rdb.Get(ctx, KeyReqErrors).Err())
	n, err := rdb.LLen(ctx, KeyErrorLog).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHealthMarker_RecordsServerErrors(t *testing.T) {
	app, rdb := setupMarkerApp(t)
	ctx := context.Background()

	_, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)

	errs, err := rdb.Get(ctx, KeyReqErrors).Int()
	require.NoError(t, err)
	assert.Equal(t, 1, errs)

	entries, err := rdb.LRange(ctx, KeyErrorLog, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0], `"path":"/boom"`)
	assert.Contains(t, entries[0], `"status":500`)
}

func TestHealthMarker_SkipsHealthRoutes(t *testing.T) {
	app, rdb := setupMarkerApp(t)

	_, err := app.Test(httptest.NewRequest("GET", "/health/json", nil))
	require.NoError(t, err)

	assert.Error(t, rdb.Get(context.Background(), KeyReqTotal).Err())
}
