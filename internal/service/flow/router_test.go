package flow

import (
	"context"
	"testing"

	"mousebot/internal/domain/models"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		text string
		want ParsedInput
	}{
		{"free text", "hello there", ParsedInput{Command: "", Args: "hello there"}},
		{"free text trimmed", "  hello  ", ParsedInput{Command: "", Args: "hello"}},
		{"bare command", "/ping", ParsedInput{Command: "/ping", Args: ""}},
		{"command with args", "/echo hello world", ParsedInput{Command: "/echo", Args: "hello world"}},
		{"runs of whitespace rejoined", "/echo   a \t b", ParsedInput{Command: "/echo", Args: "a b"}},
		{"leading whitespace before marker", "  /ping", ParsedInput{Command: "/ping", Args: ""}},
		{"marker inside text is not a command", "a /ping", ParsedInput{Command: "", Args: "a /ping"}},
		{"empty input", "", ParsedInput{Command: "", Args: ""}},
		{"lone marker", "/", ParsedInput{Command: "/", Args: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCommand(tt.text); got != tt.want {
				t.Errorf("ParseCommand(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestRouter_SelectFlows(t *testing.T) {
	repo := &fakeFlowRepo{flows: []models.Flow{
		{ID: "f1", BotID: "bot-1", Kind: models.FlowKindFunction, Enabled: true},
		{ID: "f2", BotID: "bot-1", Kind: models.FlowKindRole, Enabled: true},
		{ID: "f3", BotID: "bot-1", Kind: models.FlowKindFunction, Enabled: false},
		{ID: "f4", BotID: "bot-2", Kind: models.FlowKindRole, Enabled: true},
	}}
	router := NewRouter(repo)

	sel, err := router.SelectFlows(context.Background(), "bot-1")
	if err != nil {
		t.Fatalf("SelectFlows failed: %v", err)
	}

	if len(sel.FunctionFlows) != 1 || sel.FunctionFlows[0].ID != "f1" {
		t.Errorf("function flows: got %+v", sel.FunctionFlows)
	}
	if len(sel.RoleFlows) != 1 || sel.RoleFlows[0].ID != "f2" {
		t.Errorf("role flows: got %+v", sel.RoleFlows)
	}
}

func TestRouter_SelectFlows_NoFlows(t *testing.T) {
	router := NewRouter(&fakeFlowRepo{})

	sel, err := router.SelectFlows(context.Background(), "bot-1")
	if err != nil {
		t.Fatalf("SelectFlows failed: %v", err)
	}
	if len(sel.FunctionFlows) != 0 || len(sel.RoleFlows) != 0 {
		t.Errorf("expected empty selection, got %+v", sel)
	}
}
