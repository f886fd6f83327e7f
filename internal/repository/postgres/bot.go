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

// PostgresBotRepository implements the BotRepository interface
type PostgresBotRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewBotRepository creates a new bot repository
func NewBotRepository(config *RepositoryConfig) repositories.BotRepository {
	return &PostgresBotRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Save upserts a bot by its public id and returns the stored row.
func (r *PostgresBotRepository) Save(ctx context.Context, bot *models.Bot) (*models.Bot, error) {
	now := time.Now()
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, app_id, app_secret, token, sandbox, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			app_id = EXCLUDED.app_id,
			app_secret = EXCLUDED.app_secret,
			token = EXCLUDED.token,
			sandbox = EXCLUDED.sandbox,
			enabled = EXCLUDED.enabled,
			updated_at = EXCLUDED.updated_at
		RETURNING id, name, app_id, app_secret, token, sandbox, enabled, created_at, updated_at
	`, r.tables.Bots)

	var saved models.Bot
	err := r.pool.QueryRow(ctx, query,
		bot.ID,
		bot.Name,
		bot.AppID,
		bot.AppSecret,
		bot.Token,
		bot.Sandbox,
		bot.Enabled,
		now,
	).Scan(
		&saved.ID,
		&saved.Name,
		&saved.AppID,
		&saved.AppSecret,
		&saved.Token,
		&saved.Sandbox,
		&saved.Enabled,
		&saved.CreatedAt,
		&saved.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("save bot: %w", err)
	}

	return &saved, nil
}

// GetByID retrieves a bot by its public id
func (r *PostgresBotRepository) GetByID(ctx context.Context, id string) (*models.Bot, error) {
	query := fmt.Sprintf(`
		SELECT id, name, app_id, app_secret, token, sandbox, enabled, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Bots)

	var bot models.Bot
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&bot.ID,
		&bot.Name,
		&bot.AppID,
		&bot.AppSecret,
		&bot.Token,
		&bot.Sandbox,
		&bot.Enabled,
		&bot.CreatedAt,
		&bot.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("bot %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get bot: %w", err)
	}

	return &bot, nil
}

// List retrieves all bots, oldest first
func (r *PostgresBotRepository) List(ctx context.Context) ([]models.Bot, error) {
	query := fmt.Sprintf(`
		SELECT id, name, app_id, app_secret, token, sandbox, enabled, created_at, updated_at
		FROM %s
		ORDER BY created_at ASC
	`, r.tables.Bots)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list bots: %w", err)
	}
	defer rows.Close()

	var bots []models.Bot
	for rows.Next() {
		var bot models.Bot
		err := rows.Scan(
			&bot.ID,
			&bot.Name,
			&bot.AppID,
			&bot.AppSecret,
			&bot.Token,
			&bot.Sandbox,
			&bot.Enabled,
			&bot.CreatedAt,
			&bot.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan bot: %w", err)
		}
		bots = append(bots, bot)
	}

	return bots, rows.Err()
}

// Delete removes a bot by its public id
func (r *PostgresBotRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Bots)

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete bot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bot %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
