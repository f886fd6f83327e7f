package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"mousebot/internal/httputil"
	"mousebot/internal/service/admin"
)

// RecordHandler exposes the request ledger to the dashboard
type RecordHandler struct {
	records *admin.RecordService
	logger  *slog.Logger
}

// NewRecordHandler creates a new record handler
func NewRecordHandler(records *admin.RecordService, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{records: records, logger: logger}
}

// ListRecords returns one ledger page with aggregate stats
// GET /api/records?page=1&size=10
func (h *RecordHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))

	result, err := h.records.ListPage(r.Context(), page, size)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// ClearFlowRecords deletes a flow's conversation ledger
// DELETE /api/flows/{id}/records
func (h *RecordHandler) ClearFlowRecords(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	deleted, err := h.records.ClearFlowHistory(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
