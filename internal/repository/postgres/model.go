package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mousebot/internal/domain"
	"mousebot/internal/domain/models"
	"mousebot/internal/domain/repositories"
)

// PostgresModelRepository implements the ModelRepository interface
type PostgresModelRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewModelRepository creates a new model configuration repository
func NewModelRepository(config *RepositoryConfig) repositories.ModelRepository {
	return &PostgresModelRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Save upserts a model configuration by its public id.
func (r *PostgresModelRepository) Save(ctx context.Context, cfg *models.ModelConfig) (*models.ModelConfig, error) {
	now := time.Now()
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, base_url, api_key, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			base_url = EXCLUDED.base_url,
			api_key = EXCLUDED.api_key,
			image = EXCLUDED.image,
			updated_at = EXCLUDED.updated_at
		RETURNING id, name, base_url, api_key, image, created_at, updated_at
	`, r.tables.Models)

	var saved models.ModelConfig
	err := r.pool.QueryRow(ctx, query,
		cfg.ID,
		cfg.Name,
		cfg.BaseURL,
		cfg.APIKey,
		cfg.Image,
		now,
	).Scan(
		&saved.ID,
		&saved.Name,
		&saved.BaseURL,
		&saved.APIKey,
		&saved.Image,
		&saved.CreatedAt,
		&saved.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("save model config: %w", err)
	}

	return &saved, nil
}

// GetByID retrieves a model configuration by its public id
func (r *PostgresModelRepository) GetByID(ctx context.Context, id string) (*models.ModelConfig, error) {
	query := fmt.Sprintf(`
		SELECT id, name, base_url, api_key, image, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Models)

	var cfg models.ModelConfig
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&cfg.ID,
		&cfg.Name,
		&cfg.BaseURL,
		&cfg.APIKey,
		&cfg.Image,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("model config %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get model config: %w", err)
	}

	return &cfg, nil
}

// List retrieves all model configurations, oldest first
func (r *PostgresModelRepository) List(ctx context.Context) ([]models.ModelConfig, error) {
	query := fmt.Sprintf(`
		SELECT id, name, base_url, api_key, image, created_at, updated_at
		FROM %s
		ORDER BY created_at ASC
	`, r.tables.Models)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list model configs: %w", err)
	}
	defer rows.Close()

	var configs []models.ModelConfig
	for rows.Next() {
		var cfg models.ModelConfig
		err := rows.Scan(
			&cfg.ID,
			&cfg.Name,
			&cfg.BaseURL,
			&cfg.APIKey,
			&cfg.Image,
			&cfg.CreatedAt,
			&cfg.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan model config: %w", err)
		}
		configs = append(configs, cfg)
	}

	return configs, rows.Err()
}

// Delete removes a model configuration by its public id
func (r *PostgresModelRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Models)

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete model config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("model config %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
