package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"mousebot/internal/config"
	"mousebot/internal/repository/postgres"
)

// Creates the schema for the configured environment. Idempotent.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Bots + ` (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			app_id TEXT NOT NULL,
			app_secret TEXT NOT NULL,
			token TEXT NOT NULL DEFAULT '',
			sandbox BOOLEAN NOT NULL DEFAULT false,
			enabled BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Models + ` (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			base_url TEXT NOT NULL,
			api_key TEXT NOT NULL,
			image TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Flows + ` (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			bot_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			enabled BOOLEAN NOT NULL DEFAULT true,
			model_id TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL DEFAULT '',
			preset TEXT NOT NULL DEFAULT '',
			role_description TEXT NOT NULL DEFAULT '',
			functions JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Records + ` (
			id TEXT PRIMARY KEY,
			flow_id TEXT NOT NULL,
			bot_id TEXT NOT NULL,
			model_id TEXT NOT NULL,
			status TEXT NOT NULL,
			request JSONB NOT NULL,
			response JSONB,
			tokens INTEGER NOT NULL DEFAULT 0,
			request_at TIMESTAMPTZ NOT NULL,
			response_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_` + cfg.TablePrefix + `flows_bot_enabled
			ON ` + tables.Flows + ` (bot_id, enabled)`,
		`CREATE INDEX IF NOT EXISTS idx_` + cfg.TablePrefix + `records_flow_status_time
			ON ` + tables.Records + ` (flow_id, status, request_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	}

	log.Printf("Schema ready (prefix %q)", cfg.TablePrefix)
	os.Exit(0)
}
