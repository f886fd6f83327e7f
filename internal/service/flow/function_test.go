package flow

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mousebot/internal/domain/models"
)

func functionFlow(bindings ...models.FunctionBinding) *models.Flow {
	return &models.Flow{
		ID:        "flow-1",
		Name:      "commands",
		BotID:     "bot-1",
		Kind:      models.FlowKindFunction,
		Enabled:   true,
		Functions: bindings,
	}
}

func writeHandler(t *testing.T, dataDir, name, source string) {
	t.Helper()
	dir := filepath.Join(dataDir, "functions")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFunctionExecutor_InlineScript(t *testing.T) {
	e := NewFunctionExecutor(t.TempDir(), testLogger())
	f := functionFlow(models.FunctionBinding{
		Command: "/ping",
		Script:  `function handle(ctx) { return "pong"; }`,
	})

	got := e.Run(context.Background(), f, "/ping", nil, ParsedInput{Command: "/ping"})
	if got != "pong" {
		t.Errorf("reply = %q, want %q", got, "pong")
	}
}

func TestFunctionExecutor_FileScript(t *testing.T) {
	dataDir := t.TempDir()
	writeHandler(t, dataDir, "echo.js",
		`function handle(ctx) { return ctx.args; }`)

	e := NewFunctionExecutor(dataDir, testLogger())
	f := functionFlow(models.FunctionBinding{Command: "/echo", File: "echo.js"})

	input := ParsedInput{Command: "/echo", Args: "hello world"}
	got := e.Run(context.Background(), f, "/echo hello world", nil, input)
	if got != "hello world" {
		t.Errorf("reply = %q, want %q", got, "hello world")
	}
}

func TestFunctionExecutor_BindingsVisibleToScript(t *testing.T) {
	e := NewFunctionExecutor(t.TempDir(), testLogger())
	f := functionFlow(models.FunctionBinding{
		Command: "/info",
		Script: `function handle(ctx) {
			return ctx.command + "|" + ctx.input + "|" + ctx.event.group_openid + "|" + ctx.config.id;
		}`,
	})

	event := map[string]any{"group_openid": "g1", "id": "msg1"}
	input := ParsedInput{Command: "/info"}
	got := e.Run(context.Background(), f, "/info", event, input)
	if got != "/info|/info|g1|flow-1" {
		t.Errorf("reply = %q", got)
	}
}

func TestFunctionExecutor_NonStringResultEncodedAsJSON(t *testing.T) {
	e := NewFunctionExecutor(t.TempDir(), testLogger())
	f := functionFlow(models.FunctionBinding{
		Command: "/stats",
		Script:  `function handle(ctx) { return {ok: true, count: 3}; }`,
	})

	got := e.Run(context.Background(), f, "/stats", nil, ParsedInput{Command: "/stats"})
	if got != `{"count":3,"ok":true}` && got != `{"ok":true,"count":3}` {
		t.Errorf("reply = %q, want JSON object", got)
	}
}

func TestFunctionExecutor_UndefinedResultMeansNoReply(t *testing.T) {
	e := NewFunctionExecutor(t.TempDir(), testLogger())
	f := functionFlow(models.FunctionBinding{
		Command: "/quiet",
		Script:  `function handle(ctx) {}`,
	})

	if got := e.Run(context.Background(), f, "/quiet", nil, ParsedInput{Command: "/quiet"}); got != "" {
		t.Errorf("reply = %q, want empty", got)
	}
}

func TestFunctionExecutor_ScriptErrorYieldsEmptyReply(t *testing.T) {
	e := NewFunctionExecutor(t.TempDir(), testLogger())

	tests := []struct {
		name   string
		script string
	}{
		{"throwing handler", `function handle(ctx) { throw new Error("boom"); }`},
		{"syntax error", `function handle( {`},
		{"missing entry function", `var x = 1;`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := functionFlow(models.FunctionBinding{Command: "/bad", Script: tt.script})
			if got := e.Run(context.Background(), f, "/bad", nil, ParsedInput{Command: "/bad"}); got != "" {
				t.Errorf("reply = %q, want empty", got)
			}
		})
	}
}

func TestFunctionExecutor_RunawayScriptInterrupted(t *testing.T) {
	e := NewFunctionExecutor(t.TempDir(), testLogger())
	e.timeout = 50 * time.Millisecond
	f := functionFlow(models.FunctionBinding{
		Command: "/spin",
		Script:  `function handle(ctx) { while (true) {} }`,
	})

	start := time.Now()
	got := e.Run(context.Background(), f, "/spin", nil, ParsedInput{Command: "/spin"})
	if got != "" {
		t.Errorf("reply = %q, want empty", got)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("interrupt took %v, expected prompt termination", elapsed)
	}
}

func TestFunctionExecutor_UnknownCommand(t *testing.T) {
	e := NewFunctionExecutor(t.TempDir(), testLogger())
	f := functionFlow(models.FunctionBinding{Command: "/ping", Script: `function handle(ctx) { return "pong"; }`})

	if got := e.Run(context.Background(), f, "/nope", nil, ParsedInput{Command: "/nope"}); got != "" {
		t.Errorf("reply = %q, want empty", got)
	}
}

func TestFunctionExecutor_MissingHandlerFile(t *testing.T) {
	e := NewFunctionExecutor(t.TempDir(), testLogger())
	f := functionFlow(models.FunctionBinding{Command: "/gone", File: "gone.js"})

	if got := e.Run(context.Background(), f, "/gone", nil, ParsedInput{Command: "/gone"}); got != "" {
		t.Errorf("reply = %q, want empty", got)
	}
}
