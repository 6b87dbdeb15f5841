package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadFrom(lookupMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.KV.Backend)
	assert.Equal(t, 500*time.Millisecond, cfg.Render.LoadingDelay)
	assert.Equal(t, 2*time.Hour, cfg.Designs.SessionTTL)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
	assert.False(t, cfg.Drive.Enabled())
	assert.False(t, cfg.Server.Production())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := loadFrom(lookupMap(map[string]string{
		"PORT":                           ":9090",
		"ENV":                            "Production",
		"KV_BACKEND":                     "redis",
		"REDIS_DB":                       "3",
		"PREVIEW_LOADING_DELAY":          "250ms",
		"GOOGLE_APPLICATION_CREDENTIALS": "/secrets/sa.json",
		"DRIVE_EXPORT_FOLDER_ID":         "folder-1",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Server.Production())
	assert.Equal(t, "redis", cfg.KV.Backend)
	assert.Equal(t, 3, cfg.KV.RedisDB)
	assert.Equal(t, 250*time.Millisecond, cfg.Render.LoadingDelay)
	assert.True(t, cfg.Drive.Enabled())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := loadFrom(lookupMap(map[string]string{
		"KV_BACKEND":  "etcd",
		"LLM_TIMEOUT": "soon",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KV_BACKEND")
	assert.Contains(t, err.Error(), "LLM_TIMEOUT")
}

func TestPostgresRequiresConnectionSettings(t *testing.T) {
	_, err := loadFrom(lookupMap(map[string]string{"KV_BACKEND": "postgres"}))
	require.Error(t, err)

	cfg, err := loadFrom(lookupMap(map[string]string{
		"KV_BACKEND": "postgres",
		"DB_HOST":    "db",
		"DB_USER":    "designer",
		"DB_NAME":    "apparel",
	}))
	require.NoError(t, err)
	dsn, err := cfg.DB.DSN()
	require.NoError(t, err)
	assert.Equal(t, "host=db port=5432 user=designer password= dbname=apparel sslmode=disable", dsn)
}
