package flow

import (
	"regexp"
	"strings"

	"mousebot/internal/domain/models"
)

var roleLineRe = regexp.MustCompile(`^(system|user|assistant)\s*:(.*)$`)

// ParseRoleTemplate parses role template text into an ordered message
// sequence. Lines of the form "<role>: <text>" open a new turn, blank
// lines close the current one, any other line is appended
// newline-joined to the open turn. Turns that end up with no content
// are dropped.
func ParseRoleTemplate(text string) []models.ChatMessage {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var (
		messages []models.ChatMessage
		role     string
		buffer   []string
	)

	flush := func() {
		if role != "" && len(buffer) > 0 {
			content := strings.TrimSpace(strings.Join(buffer, "\n"))
			if content != "" {
				messages = append(messages, models.ChatMessage{Role: role, Content: content})
			}
		}
		buffer = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")

		if strings.TrimSpace(line) == "" {
			flush()
			role = ""
			continue
		}

		if m := roleLineRe.FindStringSubmatch(line); m != nil {
			flush()
			role = m[1]
			buffer = append(buffer, strings.TrimSpace(m[2]))
			continue
		}

		buffer = append(buffer, line)
	}
	flush()

	return messages
}
