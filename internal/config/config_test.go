package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.ListenPort)
	assert.Equal(t, "memory", cfg.StorageType)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 2*time.Second, cfg.StoreTimeout)
	assert.Equal(t, uint(3), cfg.StoreRetries)
	assert.Equal(t, 4*time.Second, cfg.StoreBudget)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"LISTEN_PORT":  "8081",
		"STORAGE_TYPE": "sqlite",
		"SQLITE_PATH":  "/tmp/lb.db",
		"SESSION_TTL":  "1h",
		"LOG_LEVEL":    "debug",
	})
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.ListenPort)
	assert.Equal(t, "sqlite", cfg.StorageType)
	assert.Equal(t, "/tmp/lb.db", cfg.SQLitePath)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadRejectsBadValues(t *testing.T) {
	bad := []map[string]string{
		{"STORAGE_TYPE": "postgres"},
		{"LISTEN_PORT": "not-a-port"},
		{"SESSION_TTL": "0s"},
		{"STORE_RETRIES": "0"},
		{"STORE_TIMEOUT": "0s"},
		{"STORE_TIMEOUT": "5s", "STORE_BUDGET": "1s"},
		{"STORE_BUDGET": "10s", "REQUEST_TIMEOUT": "10s"},
		{"BCRYPT_COST": "32"},
		{"BCRYPT_COST": "2"},
		{"LOG_LEVEL": "loud"},
	}
	for _, environ := range bad {
		_, err := LoadFrom(environ)
		assert.Error(t, err, "environ %v", environ)
	}
}
