package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultDatasetURL is the direct download link of the published sites workbook
const DefaultDatasetURL = "https://drive.google.com/uc?export=download&id=1Ua1On6A2RwQGF82LO1tbdqo6pHbvq9Zo"

// Config holds the application configuration
type Config struct {
	TelegramToken string

	// Dataset configuration
	DatasetURL     string        // Remote XLSX, used when DatasetFile is empty
	DatasetFile    string        // Local XLSX path, takes precedence over DatasetURL
	DatasetSheet   string        // Sheet holding the sites
	DatasetTimeout time.Duration // Timeout for the whole download

	// Bot mode configuration
	WebhookMode bool   // If true, use webhook mode; if false, use polling mode
	WebhookURL  string // URL for webhook (required if WebhookMode is true)
	WebhookPath string // Path of the webhook endpoint on the HTTP server
	Port        string

	// Logging
	LogLevel       string
	LogDevelopment bool

	// History storage; in-memory unless ClickHouse is enabled
	ClickHouseEnabled bool
	ClickHouse        ClickHouseConfig
}

// ClickHouseConfig holds the ClickHouse connection settings
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	UseTLS   bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{}

	// Telegram Bot Token (required)
	config.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if config.TelegramToken == "" {
		config.TelegramToken = os.Getenv("BOT_TOKEN")
	}
	if config.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	// Dataset
	config.DatasetFile = os.Getenv("DATASET_FILE")
	config.DatasetURL = getEnv("DATASET_URL", DefaultDatasetURL)
	config.DatasetSheet = getEnv("DATASET_SHEET", "Sitios Bogota")

	timeout, err := time.ParseDuration(getEnv("DATASET_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid DATASET_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("DATASET_TIMEOUT must be positive, got %s", timeout)
	}
	config.DatasetTimeout = timeout

	// Bot mode configuration
	config.WebhookMode = os.Getenv("WEBHOOK_MODE") == "true"
	if config.WebhookMode {
		config.WebhookURL = os.Getenv("WEBHOOK_URL")
		if config.WebhookURL == "" {
			return nil, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
		}
	}
	config.WebhookPath = getEnv("WEBHOOK_PATH", "/telegram-webhook")
	if !strings.HasPrefix(config.WebhookPath, "/") || config.WebhookPath == "/" || config.WebhookPath == "/health" {
		return nil, fmt.Errorf("invalid WEBHOOK_PATH %q", config.WebhookPath)
	}
	config.Port = getEnv("PORT", "8080")

	config.LogLevel = getEnv("LOG_LEVEL", "info")
	config.LogDevelopment = os.Getenv("LOG_DEVELOPMENT") == "true"

	// ClickHouse configuration (required only when enabled)
	config.ClickHouseEnabled = os.Getenv("CLICKHOUSE_ENABLED") == "true"
	if config.ClickHouseEnabled {
		ch, err := LoadClickHouseFromEnv()
		if err != nil {
			return nil, err
		}
		config.ClickHouse = *ch
	}

	return config, nil
}

// LoadClickHouseFromEnv loads the ClickHouse connection settings
func LoadClickHouseFromEnv() (*ClickHouseConfig, error) {
	ch := &ClickHouseConfig{}

	ch.Host = os.Getenv("CLICKHOUSE_HOST")
	if ch.Host == "" {
		return nil, fmt.Errorf("CLICKHOUSE_HOST is required when CLICKHOUSE_ENABLED is true")
	}

	portStr := os.Getenv("CLICKHOUSE_PORT")
	if portStr == "" {
		ch.Port = 9000 // Default ClickHouse native port
	} else {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid CLICKHOUSE_PORT: %w", err)
		}
		ch.Port = port
	}

	ch.Database = getEnv("CLICKHOUSE_DATABASE", "default")
	ch.User = getEnv("CLICKHOUSE_USER", "default")
	// Password is optional, can be empty
	ch.Password = os.Getenv("CLICKHOUSE_PASSWORD")
	ch.UseTLS = os.Getenv("CLICKHOUSE_USE_TLS") == "true"

	return ch, nil
}

// getEnv retrieves environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
