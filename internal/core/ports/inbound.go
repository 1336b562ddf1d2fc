package ports

import (
	"context"

	"github.com/kirillkom/recommender-gateway/internal/core/domain"
)

// Ingestor records a single interaction signal with the engine.
type Ingestor interface {
	Ingest(ctx context.Context, userID, item string, value int) (bool, error)
}

// Recommender is the inbound contract of the engine facade. Transport
// failures never surface as errors: they produce the operation's empty result.
type Recommender interface {
	Ingestor

	ForgetItems(ctx context.Context, items []string) (bool, error)
	ForgottenItems(ctx context.Context) ([]string, error)
	RememberItems(ctx context.Context, items []string) (bool, error)

	AddTerms(ctx context.Context, item string, terms []string) (bool, error)
	RemoveTerms(ctx context.Context, item string, terms []string) (bool, error)
	ItemTerms(ctx context.Context, item string) ([]string, error)
	AddItemLocation(ctx context.Context, item string, loc domain.Location) (bool, error)
	ItemLocations(ctx context.Context, item string) ([]string, error)
	ItemVisitors(ctx context.Context, item string) ([]string, error)

	Recommend(ctx context.Context, userID string, opts domain.RecommendOptions) ([]string, error)
	RecommendNearby(ctx context.Context, userID string, loc domain.Location, opts domain.RecommendOptions) ([]string, error)
	RecommendGroup(ctx context.Context, userIDs []string, opts domain.RecommendOptions) ([]string, error)
	TermRecommend(ctx context.Context, userID string, terms []string, opts domain.RecommendOptions) ([]string, error)
	TermItemRecommend(ctx context.Context, terms []string, opts domain.RecommendOptions) ([]string, error)
	PriorityTermRecommend(ctx context.Context, userID string, priorities []string, opts domain.RecommendOptions) ([]string, error)

	Similarity(ctx context.Context, item string, others []string) (map[string]string, error)
	TermSimilarity(ctx context.Context, term string, others []string) (map[string]string, error)
	SimilarItems(ctx context.Context, item string, howMany int) ([]string, error)
	SimilarTerms(ctx context.Context, term string, howMany int) ([]string, error)

	MostPopular(ctx context.Context, howMany int) ([]any, error)
	TrendShortTime(ctx context.Context, howMany int) ([]any, error)
	TrendLongTime(ctx context.Context, howMany int) ([]any, error)

	UserProfile(ctx context.Context, userID string) (map[string]any, error)
	SetUserProfile(ctx context.Context, userID string, terms []string, overwrite bool) (bool, error)
	UserMood(ctx context.Context, userID string) (map[string]any, error)
	LuckyUsers(ctx context.Context, item string, howMany int) ([]string, error)
}

// InteractionSubmitter accepts interactions for asynchronous delivery.
type InteractionSubmitter interface {
	Submit(ctx context.Context, userID, item string, value int) (*domain.Interaction, error)
}

// InteractionReader is the read model for journaled interactions.
type InteractionReader interface {
	GetByID(ctx context.Context, id string) (*domain.Interaction, error)
}

// InteractionDeliverer forwards a journaled interaction to the engine.
type InteractionDeliverer interface {
	DeliverByID(ctx context.Context, interactionID string) error
}
