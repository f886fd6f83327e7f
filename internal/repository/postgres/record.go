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

// PostgresRequestRecordRepository implements the append-only model
// invocation ledger. Request and response payloads live in JSONB
// columns so old records stay readable across configuration changes.
type PostgresRequestRecordRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewRequestRecordRepository creates a new request record repository
func NewRequestRecordRepository(config *RepositoryConfig) repositories.RequestRecordRepository {
	return &PostgresRequestRecordRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const recordColumns = `id, flow_id, bot_id, model_id, status, request, response, tokens, request_at, response_at`

func scanRecord(row pgx.Row) (*models.RequestRecord, error) {
	var rec models.RequestRecord
	var request []byte
	var response []byte
	err := row.Scan(
		&rec.ID,
		&rec.FlowID,
		&rec.BotID,
		&rec.ModelID,
		&rec.Status,
		&request,
		&response,
		&rec.Tokens,
		&rec.RequestAt,
		&rec.ResponseAt,
	)
	if err != nil {
		return nil, err
	}
	if len(request) > 0 {
		if err := json.Unmarshal(request, &rec.Request); err != nil {
			return nil, fmt.Errorf("decode request payload: %w", err)
		}
	}
	rec.Response = response
	return &rec, nil
}

// Create writes a new pending ledger entry
func (r *PostgresRequestRecordRepository) Create(ctx context.Context, rec *models.RequestRecord) error {
	request, err := json.Marshal(rec.Request)
	if err != nil {
		return fmt.Errorf("encode request payload: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, flow_id, bot_id, model_id, status, request, tokens, request_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Records)

	_, err = r.pool.Exec(ctx, query,
		rec.ID,
		rec.FlowID,
		rec.BotID,
		rec.ModelID,
		rec.Status,
		request,
		rec.Tokens,
		rec.RequestAt,
	)
	if err != nil {
		return fmt.Errorf("create request record: %w", err)
	}

	return nil
}

// MarkSuccess moves a pending record to its success terminal status
func (r *PostgresRequestRecordRepository) MarkSuccess(ctx context.Context, id string, response json.RawMessage, tokens int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2, response = $3, tokens = $4, response_at = $5
		WHERE id = $1 AND status = $6
	`, r.tables.Records)

	tag, err := r.pool.Exec(ctx, query, id, models.RequestStatusSuccess, []byte(response), tokens, time.Now(), models.RequestStatusPending)
	if err != nil {
		return fmt.Errorf("mark record success: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record %s not pending: %w", id, domain.ErrNotFound)
	}

	return nil
}

// MarkError moves a pending record to its error terminal status
func (r *PostgresRequestRecordRepository) MarkError(ctx context.Context, id string, message string) error {
	response, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return fmt.Errorf("encode error payload: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2, response = $3, response_at = $4
		WHERE id = $1 AND status = $5
	`, r.tables.Records)

	tag, err := r.pool.Exec(ctx, query, id, models.RequestStatusError, response, time.Now(), models.RequestStatusPending)
	if err != nil {
		return fmt.Errorf("mark record error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record %s not pending: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListRecentSuccessful returns up to limit success records for a flow,
// newest first by request time
func (r *PostgresRequestRecordRepository) ListRecentSuccessful(ctx context.Context, flowID string, limit int) ([]models.RequestRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE flow_id = $1 AND status = $2
		ORDER BY request_at DESC
		LIMIT $3
	`, recordColumns, r.tables.Records)

	rows, err := r.pool.Query(ctx, query, flowID, models.RequestStatusSuccess, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent records: %w", err)
	}
	defer rows.Close()

	var records []models.RequestRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, *rec)
	}

	return records, rows.Err()
}

// ListPage returns one page of the ledger, newest first, with stats
func (r *PostgresRequestRecordRepository) ListPage(ctx context.Context, page, size int) (*models.RecordPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		ORDER BY request_at DESC
		LIMIT $1 OFFSET $2
	`, recordColumns, r.tables.Records)

	rows, err := r.pool.Query(ctx, query, size, offset)
	if err != nil {
		return nil, fmt.Errorf("list records page: %w", err)
	}
	defer rows.Close()

	result := &models.RecordPage{Records: []models.RequestRecord{}}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		result.Records = append(result.Records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	statsQuery := fmt.Sprintf(`
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'success'),
			COUNT(*) FILTER (WHERE status = 'error'),
			COALESCE(SUM(tokens), 0)
		FROM %s
	`, r.tables.Records)

	err = r.pool.QueryRow(ctx, statsQuery).Scan(
		&result.Stats.Total,
		&result.Stats.Pending,
		&result.Stats.Success,
		&result.Stats.Error,
		&result.Stats.Tokens,
	)
	if err != nil {
		return nil, fmt.Errorf("record stats: %w", err)
	}
	result.Total = result.Stats.Total

	return result, nil
}

// DeleteByFlow clears all ledger entries for a flow
func (r *PostgresRequestRecordRepository) DeleteByFlow(ctx context.Context, flowID string) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE flow_id = $1`, r.tables.Records)

	tag, err := r.pool.Exec(ctx, query, flowID)
	if err != nil {
		return 0, fmt.Errorf("delete flow records: %w", err)
	}

	return tag.RowsAffected(), nil
}
