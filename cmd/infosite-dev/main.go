package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/testcontainers/testcontainers-go/modules/clickhouse"

	"infosite/internal/app"
	"infosite/internal/storage/ch"
)

func main() {
	ctx := context.Background()

	log.Println("Starting ClickHouse testcontainer...")

	// Start ClickHouse container
	clickhouseContainer, err := clickhouse.Run(ctx,
		"clickhouse/clickhouse-server:latest",
		clickhouse.WithUsername("default"),
		clickhouse.WithPassword("devpassword"),
		clickhouse.WithDatabase("default"),
	)
	if err != nil {
		log.Fatalf("Failed to start ClickHouse container: %v", err)
	}

	// Ensure container cleanup on exit
	defer func() {
		log.Println("Stopping ClickHouse container...")
		if err := clickhouseContainer.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate container: %v", err)
		}
	}()

	// Get connection details
	host, err := clickhouseContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}

	port, err := clickhouseContainer.MappedPort(ctx, "9000/tcp")
	if err != nil {
		log.Fatalf("Failed to get container port: %v", err)
	}

	log.Printf("ClickHouse started at %s:%s", host, port.Port())

	// Create the lookups table
	sqlDB := ch.OpenSQL(host, port.Int(), "default", "default", "devpassword", false)
	if err := ch.MigrateUp(ctx, sqlDB); err != nil {
		sqlDB.Close()
		log.Fatalf("Failed to migrate: %v", err)
	}
	sqlDB.Close()

	// Set environment variables for the application
	os.Setenv("CLICKHOUSE_ENABLED", "true")
	os.Setenv("CLICKHOUSE_HOST", host)
	os.Setenv("CLICKHOUSE_PORT", port.Port())
	os.Setenv("CLICKHOUSE_DATABASE", "default")
	os.Setenv("CLICKHOUSE_USER", "default")
	os.Setenv("CLICKHOUSE_PASSWORD", "devpassword")
	os.Setenv("CLICKHOUSE_USE_TLS", "false")
	os.Setenv("WEBHOOK_MODE", "false")
	os.Setenv("LOG_DEVELOPMENT", "true")

	// Set PORT for HTTP server if not already set
	if os.Getenv("PORT") == "" {
		os.Setenv("PORT", "8080")
	}

	if os.Getenv("TELEGRAM_BOT_TOKEN") == "" && os.Getenv("BOT_TOKEN") == "" {
		log.Println("⚠️  TELEGRAM_BOT_TOKEN not set. Please set it in your .env file or environment.")
		log.Println("   The bot will fail to start without a valid token.")
	}

	if os.Getenv("DATASET_FILE") == "" {
		log.Println("DATASET_FILE not set, the sites sheet will be downloaded from DATASET_URL")
	}

	log.Println("Starting application with ClickHouse backend...")
	fmt.Println()

	// Create and initialize application
	application, err := app.New()
	if err != nil {
		log.Printf("Failed to create application: %v", err)
		return
	}

	// Run blocks until SIGINT/SIGTERM, then the deferred cleanup stops the container
	if err := application.Run(); err != nil {
		log.Printf("Application error: %v", err)
	}
}
