package repositories

import (
	"context"
	"encoding/json"

	"mousebot/internal/domain/models"
)

// RequestRecordRepository is the append-only model invocation ledger.
// Create writes a pending record; exactly one of MarkSuccess or
// MarkError moves it to its terminal status.
type RequestRecordRepository interface {
	Create(ctx context.Context, rec *models.RequestRecord) error
	MarkSuccess(ctx context.Context, id string, response json.RawMessage, tokens int) error
	MarkError(ctx context.Context, id string, message string) error

	// ListRecentSuccessful returns up to limit success records for a
	// flow, newest first by request time. Pending and error records
	// never contribute to replayed context.
	ListRecentSuccessful(ctx context.Context, flowID string, limit int) ([]models.RequestRecord, error)

	// ListPage returns one page of the full ledger, newest first,
	// together with aggregate stats.
	ListPage(ctx context.Context, page, size int) (*models.RecordPage, error)

	// DeleteByFlow clears a flow's history (used by the memory-reset
	// command handler).
	DeleteByFlow(ctx context.Context, flowID string) (int64, error)
}
