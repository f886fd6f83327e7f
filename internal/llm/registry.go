package llm

import (
	"context"
	"fmt"
	"sync"

	"mousebot/internal/domain/repositories"
)

// Registry caches one Client per model configuration id. Entries are
// never evicted: configuration changes are rare and a stale client at
// worst carries an outdated key, which surfaces as an upstream auth
// error on the next call.
type Registry struct {
	models repositories.ModelRepository

	mu      sync.RWMutex
	clients map[string]*Client
}

// NewRegistry creates a client registry backed by model configuration
// storage.
func NewRegistry(models repositories.ModelRepository) *Registry {
	return &Registry{
		models:  models,
		clients: make(map[string]*Client),
	}
}

// ClientFor resolves the cached client for a model configuration id,
// creating it from stored configuration on first use.
func (r *Registry) ClientFor(ctx context.Context, modelID string) (*Client, error) {
	if modelID == "" {
		return nil, fmt.Errorf("flow has no model id")
	}

	r.mu.RLock()
	client, ok := r.clients[modelID]
	r.mu.RUnlock()
	if ok {
		return client, nil
	}

	cfg, err := r.models.GetByID(ctx, modelID)
	if err != nil {
		return nil, err
	}

	client = New(cfg.BaseURL, cfg.APIKey)

	// Concurrent creation for the same id may race; last writer wins
	// and both clients are config-equivalent.
	r.mu.Lock()
	r.clients[modelID] = client
	r.mu.Unlock()

	return client, nil
}
