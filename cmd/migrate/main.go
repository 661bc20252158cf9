package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"os"

	"pmsdoc-backend/internal/shared/config"
	"pmsdoc-backend/internal/shared/storage/db"
	"pmsdoc-backend/internal/shared/telemetry"
)

func main() {
	defer telemetry.Sync()

	cfg, err := config.Load()
	if err != nil {
		telemetry.Error("config.load_failed", map[string]any{"error": err})
		os.Exit(1)
	}
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultCLIOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err})
		os.Exit(1)
	}
	telemetry.Info("migrate.done", nil)
}
