package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/recommender-gateway/internal/core/domain"
	"github.com/kirillkom/recommender-gateway/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
)

const (
	queueGroup          = "interaction-workers"
	interactionIDHeader = "Interaction-Id"
)

// Queue carries interaction ids from the gateway to the delivery worker.
type Queue struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("recommender-gateway"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:     conn,
		subject:  subject,
		executor: options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

// PublishInteraction sends event as a JSON message. The interaction id is
// also set as a header so it shows up in server-side tracing without decoding.
func (q *Queue) PublishInteraction(ctx context.Context, event domain.InteractionEvent) error {
	data, err := encodeEvent(event)
	if err != nil {
		return err
	}
	msg := nats.NewMsg(q.subject)
	msg.Header.Set(interactionIDHeader, event.ID)
	msg.Data = data

	call := func(_ context.Context) error {
		if err := q.conn.PublishMsg(msg); err != nil {
			return fmt.Errorf("nats publish interaction %s: %w", event.ID, err)
		}
		return nil
	}

	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	return wrapTemporaryIfNeeded(err)
}

// SubscribeInteractions blocks until ctx is done, handing each decoded event
// to handler. Subscribers share a queue group so an event reaches one worker.
func (q *Queue) SubscribeInteractions(ctx context.Context, handler func(context.Context, domain.InteractionEvent) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, queueGroup, func(msg *nats.Msg) {
		dispatch(ctx, msg, handler)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

// dispatch decodes one message and runs handler on it. Undecodable messages
// are logged and dropped: core NATS has no redelivery to wait for.
func dispatch(ctx context.Context, msg *nats.Msg, handler func(context.Context, domain.InteractionEvent) error) {
	if ctx.Err() != nil {
		return
	}

	event, err := decodeEvent(msg.Data)
	if err != nil {
		slog.Warn("interaction_message_dropped",
			"subject", msg.Subject,
			"interaction_id", headerValue(msg, interactionIDHeader),
			"bytes", len(msg.Data),
			"error", err,
		)
		return
	}

	handlerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := handler(handlerCtx, event); err != nil {
		slog.Error("interaction_handler_failed", "interaction_id", event.ID, "error", err)
	}
}

func headerValue(msg *nats.Msg, key string) string {
	if msg.Header == nil {
		return ""
	}
	return msg.Header.Get(key)
}
