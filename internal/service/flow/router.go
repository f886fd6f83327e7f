package flow

import (
	"context"
	"strings"

	"mousebot/internal/domain/models"
	"mousebot/internal/domain/repositories"
)

// CommandMarker prefixes scripted-command messages; anything else is
// free-form text for role flows.
const CommandMarker = "/"

// ParsedInput is the classification of one inbound message text.
type ParsedInput struct {
	Command string
	Args    string
}

// ParseCommand splits a message into command and args. A message not
// starting with the marker is free-form: empty command, args
// unchanged. Otherwise the first whitespace-separated token (marker
// included) is the command and the rest, rejoined with single spaces,
// the args.
func ParseCommand(text string) ParsedInput {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, CommandMarker) {
		return ParsedInput{Command: "", Args: trimmed}
	}
	parts := strings.Fields(trimmed)
	return ParsedInput{
		Command: parts[0],
		Args:    strings.Join(parts[1:], " "),
	}
}

// Router selects the enabled flows that should react to a message.
type Router struct {
	flows repositories.FlowRepository
}

// NewRouter creates a flow router.
func NewRouter(flows repositories.FlowRepository) *Router {
	return &Router{flows: flows}
}

// Selection holds a bot's enabled flows partitioned by kind, each list
// in stored order.
type Selection struct {
	FunctionFlows []models.Flow
	RoleFlows     []models.Flow
}

// SelectFlows fetches the bot's enabled flows and partitions them by
// kind. A command runs only function flows; free text only role flows.
func (r *Router) SelectFlows(ctx context.Context, botID string) (*Selection, error) {
	all, err := r.flows.ListEnabledByBot(ctx, botID)
	if err != nil {
		return nil, err
	}

	sel := &Selection{}
	for _, f := range all {
		switch f.Kind {
		case models.FlowKindFunction:
			sel.FunctionFlows = append(sel.FunctionFlows, f)
		case models.FlowKindRole:
			sel.RoleFlows = append(sel.RoleFlows, f)
		}
	}

	return sel, nil
}
