package handler

import (
	"log/slog"
	"net/http"

	"mousebot/internal/domain/models"
	"mousebot/internal/httputil"
	"mousebot/internal/service/admin"
)

// FlowHandler handles flow configuration HTTP requests
type FlowHandler struct {
	flows  *admin.FlowService
	logger *slog.Logger
}

// NewFlowHandler creates a new flow handler
func NewFlowHandler(flows *admin.FlowService, logger *slog.Logger) *FlowHandler {
	return &FlowHandler{flows: flows, logger: logger}
}

// SaveFlow upserts a flow configuration
// POST /api/flows
func (h *FlowHandler) SaveFlow(w http.ResponseWriter, r *http.Request) {
	var flow models.Flow
	if err := httputil.ParseJSON(w, r, &flow); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.flows.Save(r.Context(), &flow)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, saved)
}

// ListFlows returns all flow configurations
// GET /api/flows
func (h *FlowHandler) ListFlows(w http.ResponseWriter, r *http.Request) {
	flows, err := h.flows.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if flows == nil {
		flows = []models.Flow{}
	}

	httputil.RespondJSON(w, http.StatusOK, flows)
}

// DeleteFlow removes a flow configuration
// DELETE /api/flows/{id}
func (h *FlowHandler) DeleteFlow(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.flows.Delete(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]int{"deleted": 1})
}
