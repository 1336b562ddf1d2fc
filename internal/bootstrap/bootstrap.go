package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/recommender-gateway/internal/config"
	"github.com/kirillkom/recommender-gateway/internal/core/usecase"
	"github.com/kirillkom/recommender-gateway/internal/infrastructure/queue/nats"
	"github.com/kirillkom/recommender-gateway/internal/infrastructure/recommender"
	"github.com/kirillkom/recommender-gateway/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/recommender-gateway/internal/infrastructure/resilience"
	"github.com/kirillkom/recommender-gateway/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Queue        *nats.Queue
	Recommender  *usecase.Recommender
	Interactions *usecase.InteractionService

	closeFn func()
}

// New wires the engine client and the interaction pipeline. Upstream metrics
// are registered on registry so each process serves them next to its own.
func New(ctx context.Context, cfg config.Config, registry *prometheus.Registry, logger *slog.Logger) (*App, error) {
	breakerCfg := resilience.Config{
		BreakerEnabled:      cfg.BreakerEnabled,
		BreakerMinRequests:  uint32(max(cfg.BreakerMinRequests, 0)),
		BreakerFailureRatio: cfg.BreakerFailureRatio,
		BreakerOpenTimeout:  cfg.BreakerOpenTimeout,
	}

	client := recommender.NewWithOptions(recommender.Options{
		BaseURL:        cfg.RecommenderURL,
		UserAgent:      cfg.RecommenderUserAgent,
		ConnectTimeout: cfg.RecommenderConnectTimeout,
		ReadTimeout:    cfg.RecommenderReadTimeout,
		Executor:       resilience.NewExecutor(breakerCfg),
		Observer:       metrics.NewUpstreamMetrics(registry),
	})
	recommenderUC := usecase.NewRecommender(client, logger)

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewInteractionRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(breakerCfg),
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	interactions := usecase.NewInteractionService(repo, queue, recommenderUC)

	return &App{
		Config:       cfg,
		Queue:        queue,
		Recommender:  recommenderUC,
		Interactions: interactions,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
