package models

import "time"

// FlowKind separates LLM role conversations from scripted command
// handlers. The set is closed; both dispatch points switch on it
// exhaustively.
type FlowKind string

const (
	FlowKindRole     FlowKind = "role"
	FlowKindFunction FlowKind = "function"
)

// PresetCustom selects the inline role description instead of a
// template file under data/roles.
const PresetCustom = "custom"

// FunctionBinding maps one trigger command to a handler. File names a
// script under data/functions; Script is inline source run in the
// sandbox when File is empty.
type FunctionBinding struct {
	Command string `json:"command"`
	File    string `json:"file,omitempty"`
	Script  string `json:"script,omitempty"`
}

// Flow is one configured unit of bot behavior, bound to one bot and
// (for role flows) one model. Read-only to the webhook core; mutated
// only through the admin surface.
type Flow struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	BotID   string   `json:"bot_id"`
	Kind    FlowKind `json:"kind"`
	Enabled bool     `json:"enabled"`

	// Role flows
	ModelID         string `json:"model_id,omitempty"`
	Model           string `json:"model,omitempty"`
	Preset          string `json:"preset,omitempty"`
	RoleDescription string `json:"role_description,omitempty"`

	// Function flows
	Functions []FunctionBinding `json:"functions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Binding returns the handler bound to command, if any.
func (f *Flow) Binding(command string) (FunctionBinding, bool) {
	for _, b := range f.Functions {
		if b.Command == command {
			return b, true
		}
	}
	return FunctionBinding{}, false
}
