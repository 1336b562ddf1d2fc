package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/recommender-gateway/internal/bootstrap"
	"github.com/kirillkom/recommender-gateway/internal/config"
	"github.com/kirillkom/recommender-gateway/internal/core/domain"
	"github.com/kirillkom/recommender-gateway/internal/core/ports"
	"github.com/kirillkom/recommender-gateway/internal/observability/logging"
	"github.com/kirillkom/recommender-gateway/internal/observability/metrics"
)

const serviceName = "worker"

func main() {
	if err := run(); err != nil {
		slog.Error("worker_failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, workerMetrics.Registry(), logger)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	deliverTimeout := cfg.RecommenderConnectTimeout + cfg.RecommenderReadTimeout + 5*time.Second

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeInteractions(ctx, newDeliveryHandler(app.Interactions, workerMetrics, deliverTimeout))
	if err != nil {
		return fmt.Errorf("subscribe interactions: %w", err)
	}
	return nil
}

// newDeliveryHandler bounds each delivery by timeout and records queue lag
// and delivery outcome on m.
func newDeliveryHandler(
	deliverer ports.InteractionDeliverer,
	m *metrics.WorkerMetrics,
	timeout time.Duration,
) func(context.Context, domain.InteractionEvent) error {
	return func(ctx context.Context, event domain.InteractionEvent) error {
		if !event.SubmittedAt.IsZero() {
			m.ObserveQueueLag(serviceName, time.Since(event.SubmittedAt))
		}

		deliverCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		start := time.Now()
		m.StartDelivery()
		err := deliverer.DeliverByID(deliverCtx, event.ID)
		m.FinishDelivery(serviceName, time.Since(start), err)
		return err
	}
}
