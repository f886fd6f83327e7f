package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dop251/goja"

	"mousebot/internal/domain/models"
)

// DefaultScriptTimeout hard-timeboxes sandboxed handler execution.
const DefaultScriptTimeout = 200 * time.Millisecond

// entryFunction is the routine every handler script must define.
const entryFunction = "handle"

// FunctionExecutor runs scripted command flows. Handlers are JavaScript
// run in an embedded interpreter with only an explicit binding surface:
// no file, network, or process access exists inside the sandbox.
type FunctionExecutor struct {
	dataDir string
	timeout time.Duration
	logger  *slog.Logger
}

// NewFunctionExecutor creates a function executor. dataDir is the
// asset root holding file handlers under functions/.
func NewFunctionExecutor(dataDir string, logger *slog.Logger) *FunctionExecutor {
	return &FunctionExecutor{
		dataDir: dataDir,
		timeout: DefaultScriptTimeout,
		logger:  logger,
	}
}

// Run resolves the handler bound to the parsed command and executes
// it. An empty reply means "send nothing" and is a valid outcome:
// unknown commands, load failures, script errors, and timeouts all
// yield it. Script failures never propagate.
func (e *FunctionExecutor) Run(ctx context.Context, f *models.Flow, message string, event map[string]any, input ParsedInput) string {
	binding, ok := f.Binding(input.Command)
	if !ok {
		e.logger.Warn("no handler bound to command", "flow_id", f.ID, "command", input.Command)
		return ""
	}

	source := binding.Script
	name := "<inline>"
	if binding.File != "" {
		path := filepath.Join(e.dataDir, "functions", binding.File)
		content, err := os.ReadFile(path)
		if err != nil {
			e.logger.Warn("handler load failed", "flow_id", f.ID, "path", path, "error", err)
			return ""
		}
		source = string(content)
		name = binding.File
	}
	if source == "" {
		e.logger.Warn("handler has no source", "flow_id", f.ID, "command", input.Command)
		return ""
	}

	reply, err := e.runScript(source, f, message, event, input)
	if err != nil {
		e.logger.Warn("handler execution failed",
			"flow_id", f.ID, "handler", name, "command", input.Command, "error", err)
		return ""
	}

	return reply
}

// runScript executes handler source in a fresh interpreter. The script
// sees exactly {input, command, args, event, config} plus an output
// slot, must define the entry routine, and is interrupted after the
// timeout.
func (e *FunctionExecutor) runScript(source string, f *models.Flow, message string, event map[string]any, input ParsedInput) (reply string, err error) {
	vm := goja.New()

	// Interrupts surface as panics inside goja; convert everything to
	// an error so a hostile script cannot take down the pipeline.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script panic: %v", r)
		}
	}()

	bindings := map[string]any{
		"input":   message,
		"command": input.Command,
		"args":    input.Args,
		"event":   event,
		"config":  flowView(f),
	}
	for k, v := range bindings {
		if err := vm.Set(k, v); err != nil {
			return "", fmt.Errorf("bind %s: %w", k, err)
		}
	}
	if err := vm.Set("output", goja.Undefined()); err != nil {
		return "", err
	}

	timer := time.AfterFunc(e.timeout, func() { vm.Interrupt("handler timeout") })
	defer timer.Stop()

	if _, err := vm.RunString(source); err != nil {
		return "", fmt.Errorf("evaluate script: %w", err)
	}

	entry, ok := goja.AssertFunction(vm.Get(entryFunction))
	if !ok {
		return "", fmt.Errorf("script defines no %s function", entryFunction)
	}

	result, err := entry(goja.Undefined(), vm.ToValue(bindings))
	if err != nil {
		return "", fmt.Errorf("call %s: %w", entryFunction, err)
	}

	if err := vm.Set("output", result); err != nil {
		return "", err
	}

	return coerceReply(result.Export())
}

// coerceReply turns a script return value into reply text: strings are
// used verbatim, nothing stays nothing, anything else is JSON-encoded.
func coerceReply(v any) (string, error) {
	switch value := v.(type) {
	case nil:
		return "", nil
	case string:
		return value, nil
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("encode handler result: %w", err)
		}
		return string(encoded), nil
	}
}

// flowView is the read-only flow snapshot handed to scripts.
func flowView(f *models.Flow) map[string]any {
	return map[string]any{
		"id":      f.ID,
		"name":    f.Name,
		"bot_id":  f.BotID,
		"kind":    string(f.Kind),
		"enabled": f.Enabled,
	}
}
