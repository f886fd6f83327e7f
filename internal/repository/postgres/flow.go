package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mousebot/internal/domain"
	"mousebot/internal/domain/models"
	"mousebot/internal/domain/repositories"
)

// PostgresFlowRepository implements the FlowRepository interface.
// Function bindings are stored as a JSONB array.
type PostgresFlowRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFlowRepository creates a new flow repository
func NewFlowRepository(config *RepositoryConfig) repositories.FlowRepository {
	return &PostgresFlowRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const flowColumns = `id, name, bot_id, kind, enabled, model_id, model, preset, role_description, functions, created_at, updated_at`

func scanFlow(row pgx.Row) (*models.Flow, error) {
	var flow models.Flow
	var functions []byte
	err := row.Scan(
		&flow.ID,
		&flow.Name,
		&flow.BotID,
		&flow.Kind,
		&flow.Enabled,
		&flow.ModelID,
		&flow.Model,
		&flow.Preset,
		&flow.RoleDescription,
		&functions,
		&flow.CreatedAt,
		&flow.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(functions) > 0 {
		if err := json.Unmarshal(functions, &flow.Functions); err != nil {
			return nil, fmt.Errorf("decode function bindings: %w", err)
		}
	}
	return &flow, nil
}

// Save upserts a flow by its public id and returns the stored row.
func (r *PostgresFlowRepository) Save(ctx context.Context, flow *models.Flow) (*models.Flow, error) {
	functions, err := json.Marshal(flow.Functions)
	if err != nil {
		return nil, fmt.Errorf("encode function bindings: %w", err)
	}

	now := time.Now()
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, bot_id, kind, enabled, model_id, model, preset, role_description, functions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			bot_id = EXCLUDED.bot_id,
			kind = EXCLUDED.kind,
			enabled = EXCLUDED.enabled,
			model_id = EXCLUDED.model_id,
			model = EXCLUDED.model,
			preset = EXCLUDED.preset,
			role_description = EXCLUDED.role_description,
			functions = EXCLUDED.functions,
			updated_at = EXCLUDED.updated_at
		RETURNING `+flowColumns, r.tables.Flows)

	saved, err := scanFlow(r.pool.QueryRow(ctx, query,
		flow.ID,
		flow.Name,
		flow.BotID,
		flow.Kind,
		flow.Enabled,
		flow.ModelID,
		flow.Model,
		flow.Preset,
		flow.RoleDescription,
		functions,
		now,
	))
	if err != nil {
		return nil, fmt.Errorf("save flow: %w", err)
	}

	return saved, nil
}

// GetByID retrieves a flow by its public id
func (r *PostgresFlowRepository) GetByID(ctx context.Context, id string) (*models.Flow, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, flowColumns, r.tables.Flows)

	flow, err := scanFlow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("flow %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get flow: %w", err)
	}

	return flow, nil
}

// List retrieves all flows, oldest first
func (r *PostgresFlowRepository) List(ctx context.Context) ([]models.Flow, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at ASC`, flowColumns, r.tables.Flows)
	return r.queryFlows(ctx, query)
}

// ListEnabledByBot returns all enabled flows for a bot in stored order
func (r *PostgresFlowRepository) ListEnabledByBot(ctx context.Context, botID string) ([]models.Flow, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE bot_id = $1 AND enabled = true
		ORDER BY created_at ASC
	`, flowColumns, r.tables.Flows)
	return r.queryFlows(ctx, query, botID)
}

// FindRoleFlowForBot returns a role flow bound to the bot, excluding
// excludeID. Returns (nil, nil) when none exists.
func (r *PostgresFlowRepository) FindRoleFlowForBot(ctx context.Context, botID, excludeID string) (*models.Flow, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE bot_id = $1 AND kind = $2 AND id <> $3
		LIMIT 1
	`, flowColumns, r.tables.Flows)

	flow, err := scanFlow(r.pool.QueryRow(ctx, query, botID, models.FlowKindRole, excludeID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find role flow: %w", err)
	}

	return flow, nil
}

// Delete removes a flow by its public id
func (r *PostgresFlowRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Flows)

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete flow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("flow %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *PostgresFlowRepository) queryFlows(ctx context.Context, query string, args ...any) ([]models.Flow, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query flows: %w", err)
	}
	defer rows.Close()

	var flows []models.Flow
	for rows.Next() {
		flow, err := scanFlow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flow: %w", err)
		}
		flows = append(flows, *flow)
	}

	return flows, rows.Err()
}
