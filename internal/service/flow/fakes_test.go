package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"mousebot/internal/domain"
	"mousebot/internal/domain/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeFlowRepo serves a fixed flow list; only the read paths the router
// uses are implemented.
type fakeFlowRepo struct {
	flows []models.Flow
}

func (r *fakeFlowRepo) Save(ctx context.Context, f *models.Flow) (*models.Flow, error) {
	return f, nil
}

func (r *fakeFlowRepo) GetByID(ctx context.Context, id string) (*models.Flow, error) {
	for i := range r.flows {
		if r.flows[i].ID == id {
			return &r.flows[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeFlowRepo) List(ctx context.Context) ([]models.Flow, error) {
	return r.flows, nil
}

func (r *fakeFlowRepo) ListEnabledByBot(ctx context.Context, botID string) ([]models.Flow, error) {
	var out []models.Flow
	for _, f := range r.flows {
		if f.BotID == botID && f.Enabled {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeFlowRepo) FindRoleFlowForBot(ctx context.Context, botID, excludeID string) (*models.Flow, error) {
	for i := range r.flows {
		f := &r.flows[i]
		if f.BotID == botID && f.Kind == models.FlowKindRole && f.ID != excludeID {
			return f, nil
		}
	}
	return nil, nil
}

func (r *fakeFlowRepo) Delete(ctx context.Context, id string) error {
	return nil
}

// fakeRecordRepo is an in-memory request ledger.
type fakeRecordRepo struct {
	records []models.RequestRecord
	listErr error
}

func (r *fakeRecordRepo) Create(ctx context.Context, rec *models.RequestRecord) error {
	r.records = append(r.records, *rec)
	return nil
}

func (r *fakeRecordRepo) find(id string) *models.RequestRecord {
	for i := range r.records {
		if r.records[i].ID == id {
			return &r.records[i]
		}
	}
	return nil
}

func (r *fakeRecordRepo) MarkSuccess(ctx context.Context, id string, response json.RawMessage, tokens int) error {
	rec := r.find(id)
	if rec == nil || rec.Status != models.RequestStatusPending {
		return domain.ErrNotFound
	}
	now := time.Now()
	rec.Status = models.RequestStatusSuccess
	rec.Response = response
	rec.Tokens = tokens
	rec.ResponseAt = &now
	return nil
}

func (r *fakeRecordRepo) MarkError(ctx context.Context, id string, message string) error {
	rec := r.find(id)
	if rec == nil || rec.Status != models.RequestStatusPending {
		return domain.ErrNotFound
	}
	now := time.Now()
	rec.Status = models.RequestStatusError
	rec.Response = json.RawMessage(fmt.Sprintf("%q", message))
	rec.ResponseAt = &now
	return nil
}

func (r *fakeRecordRepo) ListRecentSuccessful(ctx context.Context, flowID string, limit int) ([]models.RequestRecord, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	// newest first by request time, matching the postgres ordering
	var out []models.RequestRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		rec := r.records[i]
		if rec.FlowID == flowID && rec.Status == models.RequestStatusSuccess {
			out = append(out, rec)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeRecordRepo) ListPage(ctx context.Context, page, size int) (*models.RecordPage, error) {
	return &models.RecordPage{Records: r.records, Total: len(r.records)}, nil
}

func (r *fakeRecordRepo) DeleteByFlow(ctx context.Context, flowID string) (int64, error) {
	var kept []models.RequestRecord
	var removed int64
	for _, rec := range r.records {
		if rec.FlowID == flowID {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	r.records = kept
	return removed, nil
}

// fakeModelRepo serves fixed model configurations.
type fakeModelRepo struct {
	configs map[string]*models.ModelConfig
}

func (r *fakeModelRepo) Save(ctx context.Context, cfg *models.ModelConfig) (*models.ModelConfig, error) {
	return cfg, nil
}

func (r *fakeModelRepo) GetByID(ctx context.Context, id string) (*models.ModelConfig, error) {
	cfg, ok := r.configs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cfg, nil
}

func (r *fakeModelRepo) List(ctx context.Context) ([]models.ModelConfig, error) {
	return nil, nil
}

func (r *fakeModelRepo) Delete(ctx context.Context, id string) error {
	return nil
}
