package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"infosite/internal/bot"
	"infosite/internal/config"
	"infosite/internal/dataset"
	"infosite/internal/session"
	"infosite/internal/storage"
	"infosite/internal/storage/ch"
	"infosite/internal/storage/stubs"
)

// App represents the application
type App struct {
	config   *config.Config
	logger   *zap.Logger
	sites    *dataset.Store
	sessions *session.Tracker
	db       storage.Storage
	bot      *bot.Bot
	server   *http.Server
}

// New creates and initializes a new application instance.
// It returns only once the dataset is loaded; a dataset that cannot be loaded is fatal.
func New() (*App, error) {
	// Load .env file if it exists
	envErr := godotenv.Load()

	// Load configuration from environment variables
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if envErr != nil {
		logger.Info("No .env file found, using system environment variables")
	}

	app := &App{
		config:   cfg,
		logger:   logger,
		sessions: session.NewTracker(),
	}

	logger.Info("Starting Infosite Bot...")

	if err := app.initDataset(); err != nil {
		return nil, err
	}

	// Initialize database
	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	// Initialize bot
	if err := app.initBot(); err != nil {
		app.db.Close()
		return nil, err
	}

	app.initHTTPServer()

	return app, nil
}

// newLogger builds the zap logger from the logging settings
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	zapConfig := zap.NewProductionConfig()
	if cfg.LogDevelopment {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.Level = level

	return zapConfig.Build()
}

// initDataset loads the sites sheet from the local file or the remote URL
func (a *App) initDataset() error {
	var (
		sites *dataset.Store
		err   error
	)

	if a.config.DatasetFile != "" {
		a.logger.Info("Loading dataset from file",
			zap.String("path", a.config.DatasetFile),
			zap.String("sheet", a.config.DatasetSheet),
		)
		sites, err = dataset.LoadFile(a.config.DatasetFile, a.config.DatasetSheet)
	} else {
		a.logger.Info("Downloading dataset",
			zap.String("url", a.config.DatasetURL),
			zap.String("sheet", a.config.DatasetSheet),
			zap.Duration("timeout", a.config.DatasetTimeout),
		)
		client := &http.Client{Timeout: a.config.DatasetTimeout}
		sites, err = dataset.Fetch(context.Background(), client, a.config.DatasetURL, a.config.DatasetSheet)
	}
	if err != nil {
		a.logger.Error("Failed to load dataset", zap.Error(err))
		return err
	}

	a.logger.Info("Dataset loaded", zap.Int("sites", sites.Len()))
	a.sites = sites
	return nil
}

// initDatabase initializes the lookup history storage
func (a *App) initDatabase() error {
	var db storage.Storage
	if !a.config.ClickHouseEnabled {
		a.logger.Info("Using in-memory lookup history")
		db = stubs.NewMockDB()
	} else {
		chCfg := a.config.ClickHouse
		a.logger.Info("Connecting to ClickHouse",
			zap.String("host", chCfg.Host),
			zap.Int("port", chCfg.Port),
			zap.String("database", chCfg.Database),
			zap.String("user", chCfg.User),
			zap.Bool("tls", chCfg.UseTLS),
		)
		clickhouseDB, err := ch.NewClickHouseDB(chCfg.Host, chCfg.Port, chCfg.Database, chCfg.User, chCfg.Password, chCfg.UseTLS)
		if err != nil {
			return fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
		db = clickhouseDB
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.Initialize(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.logger.Info("Database initialized successfully")

	a.db = db
	return nil
}

// initBot initializes the Telegram bot
func (a *App) initBot() error {
	telegramBot, err := bot.NewBot(a.config.TelegramToken, a.sites, a.db, a.sessions, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	a.bot = telegramBot
	return nil
}

// initHTTPServer initializes the HTTP server for health checks and webhook
func (a *App) initHTTPServer() {
	mux := http.NewServeMux()
	bot.NewHTTPServer(a.bot, a.config.WebhookMode, a.config.WebhookPath).RegisterRoutes(mux)

	a.server = &http.Server{
		Addr:         ":" + a.config.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run() error {
	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)

	// Start HTTP server in background
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("port", a.config.Port))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Start bot in appropriate mode
	if a.config.WebhookMode {
		// Webhook mode: configure webhook and wait for HTTP requests
		if err := a.bot.StartWebhook(a.config.WebhookURL, a.config.WebhookPath); err != nil {
			a.Shutdown()
			return fmt.Errorf("failed to setup webhook: %w", err)
		}
		a.logger.Info("Webhook configured", zap.String("path", a.config.WebhookPath))
	} else {
		// Polling mode: actively poll Telegram servers
		go func() {
			if err := a.bot.Start(); err != nil {
				errChan <- fmt.Errorf("failed to start bot: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case sig := <-sigChan:
		a.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case runErr = <-errChan:
		a.logger.Error("Application error", zap.Error(runErr))
	}

	a.logger.Info("Shutting down...")
	if err := a.Shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown() error {
	defer a.logger.Sync()

	// Stop polling before closing the storage the handlers write to
	a.bot.Stop()

	// Shutdown HTTP server gracefully
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	// Close database
	if err := a.db.Close(); err != nil {
		a.logger.Error("Error closing database", zap.Error(err))
		return err
	}

	a.logger.Info("Shutdown complete", zap.Int("pending_sessions", a.sessions.Pending()))
	return nil
}
