package models

import "time"

// ModelConfig is one upstream LLM endpoint: an OpenAI-compatible base
// URL plus the API key used against it. Flows reference a ModelConfig
// by its public id.
type ModelConfig struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BaseURL   string    `json:"base_url"`
	APIKey    string    `json:"api_key"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
