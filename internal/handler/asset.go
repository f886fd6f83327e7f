package handler

import (
	"log/slog"
	"net/http"

	"mousebot/internal/httputil"
	"mousebot/internal/service/admin"
)

// AssetHandler lists role and function assets for the dashboard
type AssetHandler struct {
	assets *admin.AssetService
	logger *slog.Logger
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(assets *admin.AssetService, logger *slog.Logger) *AssetHandler {
	return &AssetHandler{assets: assets, logger: logger}
}

// ListRoleTemplates returns available role template names
// GET /api/assets/roles
func (h *AssetHandler) ListRoleTemplates(w http.ResponseWriter, r *http.Request) {
	names, err := h.assets.RoleTemplates()
	if err != nil {
		h.logger.Warn("role template listing failed", "error", err)
		httputil.RespondJSON(w, http.StatusOK, []string{})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, names)
}

// ListFunctionScripts returns available handler script file names
// GET /api/assets/functions
func (h *AssetHandler) ListFunctionScripts(w http.ResponseWriter, r *http.Request) {
	names, err := h.assets.FunctionScripts()
	if err != nil {
		h.logger.Warn("function script listing failed", "error", err)
		httputil.RespondJSON(w, http.StatusOK, []string{})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, names)
}
