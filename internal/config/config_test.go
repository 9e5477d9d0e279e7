package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable LoadFromEnv reads so the host environment cannot leak in
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TELEGRAM_BOT_TOKEN", "BOT_TOKEN",
		"DATASET_URL", "DATASET_FILE", "DATASET_SHEET", "DATASET_TIMEOUT",
		"WEBHOOK_MODE", "WEBHOOK_URL", "WEBHOOK_PATH", "PORT",
		"LOG_LEVEL", "LOG_DEVELOPMENT",
		"CLICKHOUSE_ENABLED", "CLICKHOUSE_HOST", "CLICKHOUSE_PORT", "CLICKHOUSE_DATABASE",
		"CLICKHOUSE_USER", "CLICKHOUSE_PASSWORD", "CLICKHOUSE_USE_TLS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.TelegramToken)
	assert.Equal(t, DefaultDatasetURL, cfg.DatasetURL)
	assert.Equal(t, "Sitios Bogota", cfg.DatasetSheet)
	assert.Equal(t, 30*time.Second, cfg.DatasetTimeout)
	assert.False(t, cfg.WebhookMode)
	assert.Equal(t, "/telegram-webhook", cfg.WebhookPath)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.ClickHouseEnabled)
}

func TestLoadFromEnv_LegacyTokenVariable(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "legacy")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.TelegramToken)
}

func TestLoadFromEnv_Errors(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing token", env: map[string]string{}},
		{name: "bad timeout", env: map[string]string{"TELEGRAM_BOT_TOKEN": "t", "DATASET_TIMEOUT": "soon"}},
		{name: "negative timeout", env: map[string]string{"TELEGRAM_BOT_TOKEN": "t", "DATASET_TIMEOUT": "-1s"}},
		{name: "root webhook path", env: map[string]string{"TELEGRAM_BOT_TOKEN": "t", "WEBHOOK_PATH": "/"}},
		{name: "relative webhook path", env: map[string]string{"TELEGRAM_BOT_TOKEN": "t", "WEBHOOK_PATH": "hook"}},
		{name: "webhook without url", env: map[string]string{"TELEGRAM_BOT_TOKEN": "t", "WEBHOOK_MODE": "true"}},
		{name: "clickhouse without host", env: map[string]string{"TELEGRAM_BOT_TOKEN": "t", "CLICKHOUSE_ENABLED": "true"}},
		{name: "clickhouse bad port", env: map[string]string{"TELEGRAM_BOT_TOKEN": "t", "CLICKHOUSE_ENABLED": "true", "CLICKHOUSE_HOST": "h", "CLICKHOUSE_PORT": "x"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := LoadFromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadFromEnv_ClickHouse(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "t")
	t.Setenv("CLICKHOUSE_ENABLED", "true")
	t.Setenv("CLICKHOUSE_HOST", "ch.local")
	t.Setenv("CLICKHOUSE_USE_TLS", "true")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.ClickHouseEnabled)
	assert.Equal(t, ClickHouseConfig{
		Host:     "ch.local",
		Port:     9000,
		Database: "default",
		User:     "default",
		UseTLS:   true,
	}, cfg.ClickHouse)
}

func TestLoadFromEnv_Webhook(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "t")
	t.Setenv("WEBHOOK_MODE", "true")
	t.Setenv("WEBHOOK_URL", "https://bot.example.com")
	t.Setenv("DATASET_FILE", "/data/sitios.xlsx")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.WebhookMode)
	assert.Equal(t, "https://bot.example.com", cfg.WebhookURL)
	assert.Equal(t, "/data/sitios.xlsx", cfg.DatasetFile)
}
