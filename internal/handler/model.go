package handler

import (
	"log/slog"
	"net/http"

	"mousebot/internal/domain/models"
	"mousebot/internal/httputil"
	"mousebot/internal/service/admin"
)

// ModelHandler handles model configuration HTTP requests
type ModelHandler struct {
	models *admin.ModelService
	logger *slog.Logger
}

// NewModelHandler creates a new model handler
func NewModelHandler(models *admin.ModelService, logger *slog.Logger) *ModelHandler {
	return &ModelHandler{models: models, logger: logger}
}

// SaveModel upserts a model configuration
// POST /api/models
func (h *ModelHandler) SaveModel(w http.ResponseWriter, r *http.Request) {
	var cfg models.ModelConfig
	if err := httputil.ParseJSON(w, r, &cfg); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.models.Save(r.Context(), &cfg)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, saved)
}

// ListModels returns all model configurations
// GET /api/models
func (h *ModelHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	configs, err := h.models.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if configs == nil {
		configs = []models.ModelConfig{}
	}

	httputil.RespondJSON(w, http.StatusOK, configs)
}

// DeleteModel removes a model configuration
// DELETE /api/models/{id}
func (h *ModelHandler) DeleteModel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.models.Delete(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]int{"deleted": 1})
}

// AvailableModels probes the upstream model listing for one endpoint
// GET /api/models/{id}/models
func (h *ModelHandler) AvailableModels(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	httputil.RespondJSON(w, http.StatusOK, h.models.AvailableModels(r.Context(), id))
}
