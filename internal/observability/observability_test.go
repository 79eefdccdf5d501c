package observability

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/bug-tracker/internal/config"
)

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "verbose"}, config.AppConfig{Env: "production"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))

	logger, err = NewLogger(config.LoggerConfig{Level: "debug", Format: "console"}, config.AppConfig{Env: "development"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestServiceFields(t *testing.T) {
	assert.Equal(t, map[string]any{"service": "bug-tracker", "version": "1.2.0", "env": "staging"},
		serviceFields(config.AppConfig{Name: "bug-tracker", Version: "1.2.0", Env: "staging"}))
	assert.Empty(t, serviceFields(config.AppConfig{}))
}

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/bugs", "GET", 200, 2*time.Millisecond)
	m.RecordRequest("/api/bugs", "GET", 200, 4*time.Millisecond)
	m.RecordError("/api/bugs/:id", "GET", "NOT_FOUND")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.TotalRequests)
	assert.Equal(t, int64(2), snap.Requests["GET /api/bugs|200"])
	assert.Equal(t, int64(1), snap.Errors["GET /api/bugs/:id|NOT_FOUND"])
	assert.InDelta(t, 3.0, snap.AverageLatencyMs, 0.001)

	var nilMetrics *Metrics
	nilMetrics.RecordRequest("/", "GET", 200, 0)
	assert.Empty(t, nilMetrics.Snapshot().Requests)
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	metrics := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), metrics))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", resp.Header.Get(RequestIDHeader))

	assert.Equal(t, int64(2), metrics.Snapshot().Requests["GET /ping|204"])
}
