package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8081", cfg.HTTPPort)
	assert.Equal(t, "sqlite", cfg.StoreBackend)
	assert.Equal(t, "MISBAHUL", cfg.OrgCode)
	assert.True(t, cfg.DailyGuard)
	assert.Equal(t, 12*time.Hour, cfg.AccessTTL)
	assert.Equal(t, 120, cfg.RateLimitPerMin)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("ORG_CODE", "smkn1")
	t.Setenv("DAILY_GUARD", "false")
	t.Setenv("ACCESS_TTL", "30m")
	t.Setenv("RATE_LIMIT_PER_MIN", "10")

	cfg := load(filepath.Join(t.TempDir(), "missing.env"))

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "redis", cfg.StoreBackend)
	assert.Equal(t, "SMKN1", cfg.OrgCode)
	assert.False(t, cfg.DailyGuard)
	assert.Equal(t, 30*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 10, cfg.RateLimitPerMin)
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("HTTP_PORT=9999\nNOTIFY_URL=http://gateway.local/send\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("HTTP_PORT")
		os.Unsetenv("NOTIFY_URL")
	})

	cfg := load(path)

	assert.Equal(t, "9999", cfg.HTTPPort)
	assert.Equal(t, "http://gateway.local/send", cfg.NotifyURL)
}

func TestLocation(t *testing.T) {
	assert.Equal(t, "Asia/Jakarta", App{Timezone: "Asia/Jakarta"}.Location().String())
	assert.Equal(t, time.Local, App{Timezone: "Not/AZone"}.Location())
}
