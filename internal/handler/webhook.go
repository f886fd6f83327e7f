package handler

import (
	"io"
	"log/slog"
	"net/http"

	"mousebot/internal/httputil"
	"mousebot/internal/service/webhook"
)

// Webhook signature headers set by the platform.
const (
	HeaderSignature = "x-signature-ed25519"
	HeaderTimestamp = "x-signature-timestamp"
)

// WebhookHandler is the unauthenticated platform-facing endpoint.
type WebhookHandler struct {
	pipeline *webhook.Pipeline
	logger   *slog.Logger
}

// NewWebhookHandler creates the webhook handler
func NewWebhookHandler(pipeline *webhook.Pipeline, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{pipeline: pipeline, logger: logger}
}

// ackBody is the generic acknowledgement for non-handshake events. The
// platform only requires a timely ack, never delivery confirmation.
var ackBody = map[string]any{"code": 0, "message": "ok"}

// HandleEvent answers one platform webhook request
// POST /webhook/{botID}
func (h *WebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	botID := r.PathValue("botID")

	// the signature covers the body bytes exactly as received
	rawBody, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	headers := webhook.Headers{
		Signature: r.Header.Get(HeaderSignature),
		Timestamp: r.Header.Get(HeaderTimestamp),
	}

	result, err := h.pipeline.HandleEvent(r.Context(), botID, headers, rawBody)
	if err != nil {
		h.logger.Warn("webhook rejected", "bot_id", botID, "error", err)
		respondDomainError(w, err)
		return
	}

	if result.Handshake != nil {
		httputil.RespondJSON(w, http.StatusOK, result.Handshake)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, ackBody)
}
