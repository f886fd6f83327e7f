package admin

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"mousebot/internal/domain"
	"mousebot/internal/domain/models"
	"mousebot/internal/domain/repositories"
)

// FlowService manages flow configuration.
type FlowService struct {
	flows  repositories.FlowRepository
	logger *slog.Logger
}

// NewFlowService creates a flow configuration service
func NewFlowService(flows repositories.FlowRepository, logger *slog.Logger) *FlowService {
	return &FlowService{flows: flows, logger: logger}
}

// Save upserts a flow. A bot can carry at most one role flow; saving a
// second one is a conflict.
func (s *FlowService) Save(ctx context.Context, flow *models.Flow) (*models.Flow, error) {
	if err := validation.ValidateStruct(flow,
		validation.Field(&flow.Name, validation.Required, validation.Length(1, 128)),
		validation.Field(&flow.BotID, validation.Required),
		validation.Field(&flow.Kind, validation.Required,
			validation.In(models.FlowKindRole, models.FlowKindFunction)),
		validation.Field(&flow.ModelID,
			validation.Required.When(flow.Kind == models.FlowKindRole)),
		validation.Field(&flow.Model,
			validation.Required.When(flow.Kind == models.FlowKindRole)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if flow.Kind == models.FlowKindRole {
		existing, err := s.flows.FindRoleFlowForBot(ctx, flow.BotID, flow.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, &domain.ConflictError{
				Message: fmt.Sprintf("bot %s already has role flow %s", flow.BotID, existing.ID),
			}
		}
	}

	if flow.ID == "" {
		flow.ID = uuid.NewString()
	}

	saved, err := s.flows.Save(ctx, flow)
	if err != nil {
		return nil, err
	}

	s.logger.Info("flow saved",
		"id", saved.ID,
		"name", saved.Name,
		"bot_id", saved.BotID,
		"kind", saved.Kind,
		"enabled", saved.Enabled,
	)

	return saved, nil
}

// List returns all flows
func (s *FlowService) List(ctx context.Context) ([]models.Flow, error) {
	return s.flows.List(ctx)
}

// Delete removes a flow by its public id
func (s *FlowService) Delete(ctx context.Context, id string) error {
	if err := s.flows.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("flow deleted", "id", id)

	return nil
}
