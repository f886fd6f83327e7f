package flow

import (
	"context"
	"encoding/json"

	"mousebot/internal/domain/models"
	"mousebot/internal/domain/repositories"
)

// DefaultMaxHistoryMessages bounds the replayed context window.
const DefaultMaxHistoryMessages = 20

// HistoryLoader reconstructs conversation context from the request
// ledger. The ledger is the single source of truth; the active window
// is recomputed on every read.
type HistoryLoader struct {
	records repositories.RequestRecordRepository
}

// NewHistoryLoader creates a history loader over the request ledger.
func NewHistoryLoader(records repositories.RequestRecordRepository) *HistoryLoader {
	return &HistoryLoader{records: records}
}

// responsePayload is the subset of a stored model response needed to
// recover the assistant turn.
type responsePayload struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// LoadHistory returns the flow's most recent turns in chronological
// order, at most maxMessages long. One success record holds one
// user+assistant round, so ceil(maxMessages/2) records are read; the
// final window trims from the front. Pending and error records never
// contribute.
func (l *HistoryLoader) LoadHistory(ctx context.Context, flowID string, maxMessages int) ([]models.ChatMessage, error) {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxHistoryMessages
	}
	maxRounds := (maxMessages + 1) / 2

	records, err := l.records.ListRecentSuccessful(ctx, flowID, maxRounds)
	if err != nil {
		return nil, err
	}

	var messages []models.ChatMessage

	// records arrive newest first; replay oldest first
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]

		for _, m := range rec.Request.Messages {
			if m.Role == models.RoleUser || m.Role == models.RoleAssistant {
				messages = append(messages, m)
			}
		}

		if len(rec.Response) > 0 {
			var resp responsePayload
			if err := json.Unmarshal(rec.Response, &resp); err == nil &&
				len(resp.Choices) > 0 && resp.Choices[0].Message.Content != "" {
				messages = append(messages, models.ChatMessage{
					Role:    models.RoleAssistant,
					Content: resp.Choices[0].Message.Content,
				})
			}
		}
	}

	if len(messages) > maxMessages {
		messages = messages[len(messages)-maxMessages:]
	}

	return messages, nil
}
