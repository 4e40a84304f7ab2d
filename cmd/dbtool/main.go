package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"route-weather-service/internal/adapters/cache"
	"route-weather-service/internal/platform/db"
	"route-weather-service/internal/platform/logging"
)

const usage = `usage: dbtool <command>

commands:
  init    create the shared lookup cache table
  purge   delete expired cache entries`

func main() {
	logger := logging.New(os.Stderr, "info", "text")

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment variables")
	}

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx, os.Args[1], databaseURL, logger); err != nil {
		logger.Error("dbtool failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command, databaseURL string, logger *slog.Logger) error {
	if command != "init" && command != "purge" {
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}

	conn, err := db.Open(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	switch command {
	case "init":
		logger.Info("initializing cache schema")
		if err := cache.InitSchema(ctx, conn); err != nil {
			return fmt.Errorf("schema initialization failed: %w", err)
		}
		logger.Info("schema ready")

	case "purge":
		n, err := cache.NewSQLStore(conn).PurgeExpired(ctx)
		if err != nil {
			return fmt.Errorf("purge failed: %w", err)
		}
		logger.Info("purged expired cache entries", "rows", n)
	}

	return nil
}
