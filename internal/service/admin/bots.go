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

// BotService manages bot identity configuration.
type BotService struct {
	bots   repositories.BotRepository
	logger *slog.Logger
}

// NewBotService creates a bot configuration service
func NewBotService(bots repositories.BotRepository, logger *slog.Logger) *BotService {
	return &BotService{bots: bots, logger: logger}
}

// Save upserts a bot. A missing public id means a new bot and gets one
// generated.
func (s *BotService) Save(ctx context.Context, bot *models.Bot) (*models.Bot, error) {
	if err := validation.ValidateStruct(bot,
		validation.Field(&bot.Name, validation.Required, validation.Length(1, 128)),
		validation.Field(&bot.AppID, validation.Required),
		validation.Field(&bot.AppSecret, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if bot.ID == "" {
		bot.ID = uuid.NewString()
	}

	saved, err := s.bots.Save(ctx, bot)
	if err != nil {
		return nil, err
	}

	s.logger.Info("bot saved", "id", saved.ID, "name", saved.Name, "enabled", saved.Enabled)

	return saved, nil
}

// List returns all bots
func (s *BotService) List(ctx context.Context) ([]models.Bot, error) {
	return s.bots.List(ctx)
}

// Delete removes a bot by its public id
func (s *BotService) Delete(ctx context.Context, id string) error {
	if err := s.bots.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("bot deleted", "id", id)

	return nil
}
