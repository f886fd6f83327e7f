package models

import "time"

// Bot is one registered bot identity on the chat platform. The app id
// and secret drive both webhook signature verification and access-token
// issuance; the core treats a Bot as read-only.
type Bot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AppID     string    `json:"app_id"`
	AppSecret string    `json:"app_secret"`
	Token     string    `json:"token,omitempty"`
	Sandbox   bool      `json:"sandbox"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
