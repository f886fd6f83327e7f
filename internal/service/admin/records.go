package admin

import (
	"context"
	"log/slog"

	"mousebot/internal/domain/models"
	"mousebot/internal/domain/repositories"
)

// RecordService exposes the request ledger to the admin surface.
type RecordService struct {
	records repositories.RequestRecordRepository
	logger  *slog.Logger
}

// NewRecordService creates a request ledger query service
func NewRecordService(records repositories.RequestRecordRepository, logger *slog.Logger) *RecordService {
	return &RecordService{records: records, logger: logger}
}

// ListPage returns one page of the ledger, newest first, with
// aggregate stats.
func (s *RecordService) ListPage(ctx context.Context, page, size int) (*models.RecordPage, error) {
	return s.records.ListPage(ctx, page, size)
}

// ClearFlowHistory deletes all ledger entries of a flow and returns
// how many were removed.
func (s *RecordService) ClearFlowHistory(ctx context.Context, flowID string) (int64, error) {
	n, err := s.records.DeleteByFlow(ctx, flowID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("flow history cleared", "flow_id", flowID, "deleted", n)

	return n, nil
}
