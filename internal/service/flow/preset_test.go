package flow

import (
	"reflect"
	"testing"

	"mousebot/internal/domain/models"
)

func TestParseRoleTemplate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []models.ChatMessage
	}{
		{
			name: "single system turn",
			text: "system: you are a helpful assistant",
			want: []models.ChatMessage{{Role: "system", Content: "you are a helpful assistant"}},
		},
		{
			name: "multiple turns",
			text: "system: be brief\n\nuser: hi\n\nassistant: hello",
			want: []models.ChatMessage{
				{Role: "system", Content: "be brief"},
				{Role: "user", Content: "hi"},
				{Role: "assistant", Content: "hello"},
			},
		},
		{
			name: "continuation lines join with newlines",
			text: "system: first line\nsecond line\nthird line",
			want: []models.ChatMessage{{Role: "system", Content: "first line\nsecond line\nthird line"}},
		},
		{
			name: "role marker without blank separator opens a new turn",
			text: "system: framing\nuser: question",
			want: []models.ChatMessage{
				{Role: "system", Content: "framing"},
				{Role: "user", Content: "question"},
			},
		},
		{
			name: "whitespace before colon",
			text: "system : spaced",
			want: []models.ChatMessage{{Role: "system", Content: "spaced"}},
		},
		{
			name: "crlf input",
			text: "system: windows\r\nuser: line\r\n",
			want: []models.ChatMessage{
				{Role: "system", Content: "windows"},
				{Role: "user", Content: "line"},
			},
		},
		{
			name: "text before any role marker is dropped",
			text: "stray preamble\nsystem: kept",
			want: []models.ChatMessage{{Role: "system", Content: "kept"}},
		},
		{
			name: "empty turn dropped",
			text: "system:\n\nuser: kept",
			want: []models.ChatMessage{{Role: "user", Content: "kept"}},
		},
		{
			name: "unknown role treated as continuation text",
			text: "system: framing\nnarrator: aside",
			want: []models.ChatMessage{{Role: "system", Content: "framing\nnarrator: aside"}},
		},
		{name: "empty input", text: "", want: nil},
		{name: "whitespace only", text: "  \n\t\n", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRoleTemplate(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseRoleTemplate(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}
