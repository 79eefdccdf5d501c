package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("AUTH_SEED_DEMO_USER", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "0.0.0.0:5000", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.False(t, cfg.Auth.RequireForBugMutations)
	assert.True(t, cfg.Auth.SeedDemoUser)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, time.Minute, cfg.Redis.BugCacheTTL())
	assert.Equal(t, "bug_events", cfg.RabbitMQ.Queue)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_REQUIRE_FOR_BUG_MUTATIONS", "true")
	t.Setenv("BUG_CACHE_TTL_SECONDS", "5")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")
	t.Setenv("AUTH_SEED_DEMO_USER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverMongo, cfg.Store.Driver)
	assert.True(t, cfg.Auth.RequireForBugMutations)
	assert.False(t, cfg.Auth.SeedDemoUser)
	assert.Equal(t, 5*time.Second, cfg.Redis.BugCacheTTL())
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "cassandra")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("REDIS_DB", "zero")
	_, err := Load()
	assert.Error(t, err)
}
