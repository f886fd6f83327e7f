package repositories

import (
	"context"

	"mousebot/internal/domain/models"
)

// BotRepository stores bot identities keyed by their public id.
type BotRepository interface {
	// Save upserts by public id and returns the stored row.
	Save(ctx context.Context, bot *models.Bot) (*models.Bot, error)
	GetByID(ctx context.Context, id string) (*models.Bot, error)
	List(ctx context.Context) ([]models.Bot, error)
	Delete(ctx context.Context, id string) error
}

// ModelRepository stores upstream model endpoint configurations.
type ModelRepository interface {
	Save(ctx context.Context, cfg *models.ModelConfig) (*models.ModelConfig, error)
	GetByID(ctx context.Context, id string) (*models.ModelConfig, error)
	List(ctx context.Context) ([]models.ModelConfig, error)
	Delete(ctx context.Context, id string) error
}

// FlowRepository stores flow configurations.
type FlowRepository interface {
	Save(ctx context.Context, flow *models.Flow) (*models.Flow, error)
	GetByID(ctx context.Context, id string) (*models.Flow, error)
	List(ctx context.Context) ([]models.Flow, error)
	// ListEnabledByBot returns all enabled flows bound to a bot, in
	// stored order. The router partitions the result by kind.
	ListEnabledByBot(ctx context.Context, botID string) ([]models.Flow, error)
	// FindRoleFlowForBot returns the enabled-or-not role flow bound to
	// a bot excluding the given flow id, used to enforce the
	// one-role-flow-per-bot rule on save.
	FindRoleFlowForBot(ctx context.Context, botID, excludeID string) (*models.Flow, error)
	Delete(ctx context.Context, id string) error
}
