package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"mousebot/internal/domain/models"
)

// tokenSafetyMargin is how much remaining lifetime a cached token must
// have before it is handed out; anything closer to expiry is refreshed
// first.
const tokenSafetyMargin = 60 * time.Second

type tokenEntry struct {
	token     string
	expiresAt time.Time
}

// TokenCache caches short-lived platform access tokens keyed by app
// id. Shared process-wide; safe for concurrent use.
type TokenCache struct {
	issueURL string
	http     *http.Client
	logger   *slog.Logger

	mu      sync.Mutex
	entries map[string]tokenEntry
	now     func() time.Time
}

// NewTokenCache creates a token cache that refreshes against the given
// token issuance endpoint.
func NewTokenCache(issueURL string, logger *slog.Logger) *TokenCache {
	return &TokenCache{
		issueURL: issueURL,
		http:     &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
		entries:  make(map[string]tokenEntry),
		now:      time.Now,
	}
}

type tokenRequest struct {
	AppID        string `json:"appId"`
	ClientSecret string `json:"clientSecret"`
}

type tokenResponse struct {
	AccessToken string          `json:"access_token"`
	ExpiresIn   json.Number     `json:"expires_in"`
	Code        int             `json:"code,omitempty"`
	Message     json.RawMessage `json:"message,omitempty"`
}

// AccessToken returns a valid access token for the bot, refreshing
// when the cached one is missing or within the safety margin of
// expiry. The refresh happens under the cache lock, so concurrent
// callers never observe an expired token.
func (c *TokenCache) AccessToken(ctx context.Context, bot *models.Bot) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if entry, ok := c.entries[bot.AppID]; ok && entry.expiresAt.After(now.Add(tokenSafetyMargin)) {
		return entry.token, nil
	}

	token, expiresIn, err := c.issue(ctx, bot)
	if err != nil {
		return "", err
	}

	c.entries[bot.AppID] = tokenEntry{
		token:     token,
		expiresAt: now.Add(time.Duration(expiresIn) * time.Second),
	}

	c.logger.Debug("access token refreshed", "app_id", bot.AppID, "expires_in", expiresIn)

	return token, nil
}

func (c *TokenCache) issue(ctx context.Context, bot *models.Bot) (string, int64, error) {
	body, err := json.Marshal(tokenRequest{AppID: bot.AppID, ClientSecret: bot.AppSecret})
	if err != nil {
		return "", 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.issueURL, bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("token issuance: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, err
	}

	var out tokenResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", 0, fmt.Errorf("token issuance: decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || out.AccessToken == "" {
		return "", 0, fmt.Errorf("token issuance http %d: %s", resp.StatusCode, string(raw))
	}

	expiresIn, err := out.ExpiresIn.Int64()
	if err != nil {
		return "", 0, fmt.Errorf("token issuance: bad expires_in %q", out.ExpiresIn.String())
	}

	return out.AccessToken, expiresIn, nil
}
