package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Bots    string
	Models  string
	Flows   string
	Records string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Bots:    fmt.Sprintf("%sbots", prefix),
		Models:  fmt.Sprintf("%smodels", prefix),
		Flows:   fmt.Sprintf("%sflows", prefix),
		Records: fmt.Sprintf("%srequest_records", prefix),
	}
}

// CreateConnectionPool creates a new pgx connection pool.
//
// Dynamic table prefixes (dev_, test_, prod_) are interpolated into the
// SQL string before it reaches the database, so each environment gets
// its own prepared statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Debug("database pool ready", "max_conns", config.MaxConns)

	return pool, nil
}
