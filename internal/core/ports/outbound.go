package ports

import (
	"context"

	"github.com/kirillkom/recommender-gateway/internal/core/domain"
)

// RecommenderTransport performs one GET against the engine and returns the
// raw body of a 2xx response. Any other outcome is an error.
type RecommenderTransport interface {
	Get(ctx context.Context, req domain.Request) (string, error)
}

// InteractionRepository journals interactions between submission and delivery.
type InteractionRepository interface {
	Create(ctx context.Context, interaction *domain.Interaction) error
	GetByID(ctx context.Context, id string) (*domain.Interaction, error)
	UpdateStatus(ctx context.Context, id string, status domain.InteractionStatus) error
}

// InteractionQueue publishes/consumes interaction events.
type InteractionQueue interface {
	PublishInteraction(ctx context.Context, event domain.InteractionEvent) error
	SubscribeInteractions(ctx context.Context, handler func(context.Context, domain.InteractionEvent) error) error
}
