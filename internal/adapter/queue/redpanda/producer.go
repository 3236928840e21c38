// Package redpanda publishes screening session lifecycle events to
// Redpanda/Kafka.
package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
)

// syncProducer is the part of *kgo.Client used for publishing.
type syncProducer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Ping(ctx context.Context) error
	Close()
}

// Publisher implements domain.SessionEventPublisher. Events are keyed by
// session id so that one session's events stay ordered within a partition.
type Publisher struct {
	client syncProducer
	topic  string
	now    func() time.Time
}

// NewPublisher connects to brokers and makes sure topic exists. Topic
// creation is retried with backoff; a persistent failure is logged and
// publishing proceeds in case the topic is managed elsewhere.
func NewPublisher(ctx context.Context, brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("op=redpanda.NewPublisher: %w: no seed brokers provided", domain.ErrInvalidArgument)
	}
	if topic == "" {
		return nil, fmt.Errorf("op=redpanda.NewPublisher: %w: empty topic", domain.ErrInvalidArgument)
	}
	kotelService := kotel.NewKotel(kotel.WithTracer(kotel.NewTracer(kotel.TracerProvider(otel.GetTracerProvider()))))
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequestRetries(10),
		kgo.ProducerBatchMaxBytes(1000000),
		kgo.DialTimeout(10*time.Second),
		kgo.WithHooks(kotelService.Hooks()...),
	)
	if err != nil {
		return nil, fmt.Errorf("op=redpanda.NewPublisher: %w", err)
	}

	expo := backoff.NewExponentialBackOff()
	expo.MaxElapsedTime = 30 * time.Second
	err = backoff.Retry(func() error {
		return createTopicIfNotExists(ctx, client, topic, 3, 1)
	}, backoff.WithContext(expo, ctx))
	if err != nil {
		slog.Warn("failed to ensure session events topic", slog.String("topic", topic), slog.Any("error", err))
	}
	return newPublisher(client, topic), nil
}

func newPublisher(client syncProducer, topic string) *Publisher {
	return &Publisher{client: client, topic: topic, now: time.Now}
}

// Publish writes ev synchronously. Missing id and timestamp are filled in.
func (p *Publisher) Publish(ctx context.Context, ev domain.SessionEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = p.now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("op=redpanda.Publish: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(ev.SessionID),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(ev.Type)},
			{Key: "event_id", Value: []byte(ev.ID)},
		},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("op=redpanda.Publish: %w", err)
	}
	return nil
}

// Ping checks that at least one broker is reachable.
func (p *Publisher) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx); err != nil {
		return fmt.Errorf("op=redpanda.Ping: %w", err)
	}
	return nil
}

// Close flushes and closes the client.
func (p *Publisher) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	return nil
}
