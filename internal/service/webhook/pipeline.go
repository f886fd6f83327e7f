package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mousebot/internal/domain"
	"mousebot/internal/domain/models"
	"mousebot/internal/domain/repositories"
	"mousebot/internal/metrics"
	"mousebot/internal/service/flow"
	"mousebot/internal/service/platform"
)

// OpHandshake is the reserved operation code for endpoint validation.
const OpHandshake = 13

// EventGroupAtMessage is the only event type dispatched to flow
// execution; everything else is acknowledged without running flows.
const EventGroupAtMessage = "GROUP_AT_MESSAGE_CREATE"

// Headers carries the signature headers of one webhook request.
type Headers struct {
	Signature string
	Timestamp string
}

// Result is the pipeline outcome driving the HTTP response: a non-nil
// Handshake means the validation payload must be returned; otherwise
// the generic ack applies.
type Result struct {
	Handshake *HandshakeResponse
}

// Pipeline composes signature verification, flow routing, flow
// execution and outbound dispatch to answer one webhook request.
type Pipeline struct {
	bots       repositories.BotRepository
	router     *flow.Router
	roles      *flow.RoleExecutor
	functions  *flow.FunctionExecutor
	dispatcher *platform.Dispatcher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewPipeline creates the webhook pipeline orchestrator.
func NewPipeline(
	bots repositories.BotRepository,
	router *flow.Router,
	roles *flow.RoleExecutor,
	functions *flow.FunctionExecutor,
	dispatcher *platform.Dispatcher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		bots:       bots,
		router:     router,
		roles:      roles,
		functions:  functions,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger,
	}
}

type envelope struct {
	Op int             `json:"op"`
	T  string          `json:"t"`
	D  json.RawMessage `json:"d"`
}

type handshakePayload struct {
	PlainToken string `json:"plain_token"`
	EventTS    string `json:"event_ts"`
}

type groupMessagePayload struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	GroupOpenID string `json:"group_openid"`
}

// HandleEvent answers one inbound webhook request. The handshake
// bypasses signature checks; every other payload is verified against
// the raw body bytes before any flow runs. Per-flow failures are
// isolated: the request is acknowledged regardless of flow outcomes.
func (p *Pipeline) HandleEvent(ctx context.Context, botID string, headers Headers, rawBody []byte) (*Result, error) {
	bot, err := p.bots.GetByID(ctx, botID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", botID, domain.ErrUnknownBot)
		}
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(rawBody, &env); err != nil {
		return nil, fmt.Errorf("%w: malformed event body", domain.ErrValidation)
	}

	if env.Op == OpHandshake {
		var payload handshakePayload
		if err := json.Unmarshal(env.D, &payload); err != nil {
			return nil, fmt.Errorf("%w: malformed handshake payload", domain.ErrValidation)
		}

		resp, err := Handshake(bot.AppSecret, payload.PlainToken, payload.EventTS)
		if err != nil {
			return nil, err
		}

		p.metrics.HandshakesTotal.Inc()
		p.logger.Info("endpoint validation answered", "bot_id", bot.ID)

		return &Result{Handshake: resp}, nil
	}

	if headers.Signature == "" || headers.Timestamp == "" {
		p.metrics.SignatureFailures.Inc()
		return nil, domain.ErrMissingSignatureHeaders
	}

	if !VerifySignature(bot.AppSecret, headers.Timestamp, rawBody, headers.Signature) {
		p.metrics.SignatureFailures.Inc()
		return nil, domain.ErrInvalidSignature
	}

	p.metrics.EventsTotal.WithLabelValues(env.T).Inc()

	switch env.T {
	case EventGroupAtMessage:
		p.handleGroupMessage(ctx, bot, env.D)
	default:
		p.logger.Debug("event type not dispatched", "bot_id", bot.ID, "type", env.T)
	}

	return &Result{}, nil
}

// handleGroupMessage routes one group mention through the matching
// flows and dispatches their replies. Nothing here affects the HTTP
// acknowledgement.
func (p *Pipeline) handleGroupMessage(ctx context.Context, bot *models.Bot, payload json.RawMessage) {
	var msg groupMessagePayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		p.logger.Warn("malformed group message payload", "bot_id", bot.ID, "error", err)
		return
	}

	text := strings.TrimSpace(msg.Content)
	if text == "" || msg.GroupOpenID == "" {
		p.logger.Debug("group message without text or group, skipped", "bot_id", bot.ID)
		return
	}

	input := flow.ParseCommand(text)

	selection, err := p.router.SelectFlows(ctx, bot.ID)
	if err != nil {
		p.logger.Error("flow selection failed", "bot_id", bot.ID, "error", err)
		return
	}

	// the sandbox sees the raw event payload
	var event map[string]any
	_ = json.Unmarshal(payload, &event)

	if input.Command != "" {
		for i := range selection.FunctionFlows {
			f := &selection.FunctionFlows[i]

			reply := p.functions.Run(ctx, f, text, event, input)
			outcome := "ok"
			if strings.TrimSpace(reply) == "" {
				outcome = "empty"
			}
			p.metrics.FlowExecutions.WithLabelValues(string(models.FlowKindFunction), outcome).Inc()

			p.dispatch(ctx, bot, f, msg, reply)
		}
		return
	}

	for i := range selection.RoleFlows {
		f := &selection.RoleFlows[i]

		reply, err := p.roles.Run(ctx, f, text)
		if err != nil {
			p.metrics.FlowExecutions.WithLabelValues(string(models.FlowKindRole), "error").Inc()
			p.logger.Error("role flow failed", "bot_id", bot.ID, "flow_id", f.ID, "error", err)
			continue
		}
		p.metrics.FlowExecutions.WithLabelValues(string(models.FlowKindRole), "ok").Inc()

		p.dispatch(ctx, bot, f, msg, reply)
	}
}

func (p *Pipeline) dispatch(ctx context.Context, bot *models.Bot, f *models.Flow, msg groupMessagePayload, reply string) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return
	}

	if _, err := p.dispatcher.SendGroupText(ctx, bot, msg.GroupOpenID, reply, msg.ID); err != nil {
		p.metrics.DispatchesTotal.WithLabelValues("error").Inc()
		p.logger.Error("dispatch failed", "bot_id", bot.ID, "flow_id", f.ID, "msg_id", msg.ID, "error", err)
		return
	}
	p.metrics.DispatchesTotal.WithLabelValues("ok").Inc()
}
