package handler

import (
	"log/slog"
	"net/http"

	"mousebot/internal/httputil"
	"mousebot/internal/service/admin"
)

// AuthHandler handles admin login
type AuthHandler struct {
	auth   *admin.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *admin.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type loginRequest struct {
	Password string `json:"password"`
}

// Login verifies the admin password and issues a session token
// POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.auth.Login(req.Password)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"token": token})
}
