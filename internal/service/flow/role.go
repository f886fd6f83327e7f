package flow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"mousebot/internal/domain/models"
	"mousebot/internal/domain/repositories"
	"mousebot/internal/llm"
)

// emptyReplyPlaceholder is returned when the model answered with no
// content at all.
const emptyReplyPlaceholder = "(no reply)"

// RoleExecutor runs LLM role-conversation flows: preset + replayed
// history + current user turn, with the full invocation lifecycle
// written to the request ledger.
type RoleExecutor struct {
	records repositories.RequestRecordRepository
	history *HistoryLoader
	clients *llm.Registry
	dataDir string
	logger  *slog.Logger
}

// NewRoleExecutor creates a role executor. dataDir is the asset root
// holding role templates under roles/.
func NewRoleExecutor(
	records repositories.RequestRecordRepository,
	history *HistoryLoader,
	clients *llm.Registry,
	dataDir string,
	logger *slog.Logger,
) *RoleExecutor {
	return &RoleExecutor{
		records: records,
		history: history,
		clients: clients,
		dataDir: dataDir,
		logger:  logger,
	}
}

// Run executes one role conversation turn and returns the assistant
// reply text. The pending ledger entry is written before the model
// call; exactly one terminal update follows. Errors abort only this
// flow's contribution.
func (e *RoleExecutor) Run(ctx context.Context, f *models.Flow, userText string) (string, error) {
	preset := e.loadPreset(f)

	history, err := e.history.LoadHistory(ctx, f.ID, DefaultMaxHistoryMessages)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}

	messages := make([]models.ChatMessage, 0, len(preset)+len(history)+1)
	messages = append(messages, preset...)
	messages = append(messages, history...)
	messages = append(messages, models.ChatMessage{Role: models.RoleUser, Content: userText})

	client, err := e.clients.ClientFor(ctx, f.ModelID)
	if err != nil {
		return "", err
	}

	rec := &models.RequestRecord{
		ID:      uuid.NewString(),
		FlowID:  f.ID,
		BotID:   f.BotID,
		ModelID: f.ModelID,
		Status:  models.RequestStatusPending,
		Request: models.RequestPayload{
			Model:    f.Model,
			Messages: messages,
		},
		RequestAt: time.Now(),
	}

	if err := e.records.Create(ctx, rec); err != nil {
		return "", fmt.Errorf("create request record: %w", err)
	}

	result, err := client.Chat(ctx, f.Model, messages)
	if err != nil {
		if markErr := e.records.MarkError(ctx, rec.ID, err.Error()); markErr != nil {
			e.logger.Error("mark record error failed", "record_id", rec.ID, "error", markErr)
		}
		return "", err
	}

	if err := e.records.MarkSuccess(ctx, rec.ID, result.Raw, result.Usage.TotalTokens); err != nil {
		e.logger.Error("mark record success failed", "record_id", rec.ID, "error", err)
	}

	reply := result.Content
	if strings.TrimSpace(reply) == "" {
		reply = emptyReplyPlaceholder
	}

	return reply, nil
}

// loadPreset resolves the flow's preset messages. A template file
// under data/roles wins when the preset names one; the inline role
// description is the custom source and the fallback when the file is
// unreadable. No preset at all is valid: the flow simply has no system
// framing.
func (e *RoleExecutor) loadPreset(f *models.Flow) []models.ChatMessage {
	inline := func() []models.ChatMessage {
		if f.RoleDescription == "" {
			return nil
		}
		return []models.ChatMessage{{Role: models.RoleSystem, Content: f.RoleDescription}}
	}

	if f.Preset == "" || f.Preset == models.PresetCustom {
		return inline()
	}

	path := filepath.Join(e.dataDir, "roles", f.Preset+".txt")
	content, err := os.ReadFile(path)
	if err != nil {
		e.logger.Warn("role template unreadable, falling back to inline description",
			"flow_id", f.ID, "path", path, "error", err)
		return inline()
	}

	if msgs := ParseRoleTemplate(string(content)); len(msgs) > 0 {
		return msgs
	}

	return inline()
}
