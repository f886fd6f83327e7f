package handler

import (
	"log/slog"
	"net/http"

	"mousebot/internal/domain/models"
	"mousebot/internal/httputil"
	"mousebot/internal/service/admin"
)

// BotHandler handles bot configuration HTTP requests
type BotHandler struct {
	bots   *admin.BotService
	logger *slog.Logger
}

// NewBotHandler creates a new bot handler
func NewBotHandler(bots *admin.BotService, logger *slog.Logger) *BotHandler {
	return &BotHandler{bots: bots, logger: logger}
}

// SaveBot upserts a bot configuration
// POST /api/bots
func (h *BotHandler) SaveBot(w http.ResponseWriter, r *http.Request) {
	var bot models.Bot
	if err := httputil.ParseJSON(w, r, &bot); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.bots.Save(r.Context(), &bot)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, saved)
}

// ListBots returns all bot configurations
// GET /api/bots
func (h *BotHandler) ListBots(w http.ResponseWriter, r *http.Request) {
	bots, err := h.bots.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if bots == nil {
		bots = []models.Bot{}
	}

	httputil.RespondJSON(w, http.StatusOK, bots)
}

// DeleteBot removes a bot configuration
// DELETE /api/bots/{id}
func (h *BotHandler) DeleteBot(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.bots.Delete(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]int{"deleted": 1})
}
