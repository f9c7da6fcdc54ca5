package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (m *memCounter) incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.counts[key]++
	return m.counts[key], nil
}

func limitedApp(rl *RateLimiter) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Get("X-User"))
		if err == nil {
			c.Locals(localUserID, id)
		}
		return c.Next()
	})
	app.Post("/bookings", rl.Handler(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})
	return app
}

func post(t *testing.T, app *fiber.App, user uuid.UUID) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
	req.Header.Set("X-User", user.String())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestRateLimiterPerUser(t *testing.T) {
	counter := &memCounter{counts: map[string]int64{}}
	app := limitedApp(newRateLimiter(counter.incr, 2, "rl:bookings", zap.NewNop()))
	alice, bob := uuid.New(), uuid.New()

	assert.Equal(t, http.StatusCreated, post(t, app, alice))
	assert.Equal(t, http.StatusCreated, post(t, app, alice))
	assert.Equal(t, http.StatusTooManyRequests, post(t, app, alice))
	assert.Equal(t, http.StatusCreated, post(t, app, bob))

	assert.Equal(t, int64(3), counter.counts["rl:bookings:"+alice.String()])
}

func TestRateLimiterFailsOpen(t *testing.T) {
	counter := &memCounter{counts: map[string]int64{}, err: errors.New("redis: connection refused")}
	app := limitedApp(newRateLimiter(counter.incr, 1, "", zap.NewNop()))

	user := uuid.New()
	assert.Equal(t, http.StatusCreated, post(t, app, user))
	assert.Equal(t, http.StatusCreated, post(t, app, user))
}
