package admin

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"mousebot/internal/domain"
	"mousebot/internal/domain/models"
	"mousebot/internal/domain/repositories"
	"mousebot/internal/llm"
)

// ModelService manages upstream model endpoint configuration.
type ModelService struct {
	models  repositories.ModelRepository
	clients *llm.Registry
	logger  *slog.Logger
}

// NewModelService creates a model configuration service
func NewModelService(models repositories.ModelRepository, clients *llm.Registry, logger *slog.Logger) *ModelService {
	return &ModelService{models: models, clients: clients, logger: logger}
}

// Save upserts a model configuration.
func (s *ModelService) Save(ctx context.Context, cfg *models.ModelConfig) (*models.ModelConfig, error) {
	if err := validation.ValidateStruct(cfg,
		validation.Field(&cfg.Name, validation.Required, validation.Length(1, 128)),
		validation.Field(&cfg.BaseURL, validation.Required, is.URL),
		validation.Field(&cfg.APIKey, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}

	saved, err := s.models.Save(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s.logger.Info("model config saved", "id", saved.ID, "name", saved.Name)

	return saved, nil
}

// List returns all model configurations
func (s *ModelService) List(ctx context.Context) ([]models.ModelConfig, error) {
	return s.models.List(ctx)
}

// Delete removes a model configuration by its public id
func (s *ModelService) Delete(ctx context.Context, id string) error {
	if err := s.models.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("model config deleted", "id", id)

	return nil
}

// AvailableModels probes the configured endpoint's model listing. A
// probe failure is not an error to the caller; the dashboard just
// shows an empty list.
func (s *ModelService) AvailableModels(ctx context.Context, modelID string) []string {
	client, err := s.clients.ClientFor(ctx, modelID)
	if err != nil {
		s.logger.Warn("model probe: no client", "model_id", modelID, "error", err)
		return []string{}
	}

	ids, err := client.ListModels(ctx)
	if err != nil {
		s.logger.Warn("model probe failed", "model_id", modelID, "error", err)
		return []string{}
	}

	return ids
}
