package models

import (
	"encoding/json"
	"time"
)

// Chat message roles accepted in presets, history and requests.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a model conversation. Ephemeral: turns
// are assembled per invocation from presets, replayed records, and the
// live user input.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RequestStatus is the lifecycle of one model invocation. pending is
// written before the call and transitions exactly once to success or
// error; terminal records are never mutated again.
type RequestStatus string

const (
	RequestStatusPending RequestStatus = "pending"
	RequestStatusSuccess RequestStatus = "success"
	RequestStatusError   RequestStatus = "error"
)

// RequestPayload is the exact outbound body of one chat-completion
// call, captured before the call is made.
type RequestPayload struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

// RequestRecord is the append-only ledger entry for one model
// invocation. Successful records are replayed to rebuild conversation
// context; all records feed the admin audit listing.
type RequestRecord struct {
	ID       string          `json:"id"`
	FlowID   string          `json:"flow_id"`
	BotID    string          `json:"bot_id"`
	ModelID  string          `json:"model_id"`
	Status   RequestStatus   `json:"status"`
	Request  RequestPayload  `json:"request"`
	Response json.RawMessage `json:"response,omitempty"`
	Tokens   int             `json:"tokens"`

	RequestAt  time.Time  `json:"request_at"`
	ResponseAt *time.Time `json:"response_at,omitempty"`
}

// RecordStats aggregates ledger counters for the admin dashboard.
type RecordStats struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Success int `json:"success"`
	Error   int `json:"error"`
	Tokens  int `json:"tokens"`
}

// RecordPage is one page of the ledger listing, newest first.
type RecordPage struct {
	Records []RequestRecord `json:"records"`
	Total   int             `json:"total"`
	Stats   RecordStats     `json:"stats"`
}
