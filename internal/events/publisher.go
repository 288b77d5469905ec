package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"course-marketplace/internal/config"

	"github.com/IBM/sarama"
)

const TypeEntitlementGranted = "entitlement.granted"

// EntitlementGranted is published after an order transaction writes a ledger row.
type EntitlementGranted struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"orderId"`
	UserID     string    `json:"userId"`
	CourseID   string    `json:"courseId"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Publisher interface {
	PublishEntitlementGranted(ctx context.Context, event EntitlementGranted) error
	Close() error
}

type kafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *slog.Logger
}

// NewKafkaPublisher connects a synchronous producer to the configured brokers.
func NewKafkaPublisher(cfg config.Kafka, log *slog.Logger) (Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers list is empty")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka topic is empty")
	}

	producer, err := sarama.NewSyncProducer(cfg.Brokers, newSaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return NewPublisherWithProducer(producer, cfg.Topic, log), nil
}

func NewPublisherWithProducer(producer sarama.SyncProducer, topic string, log *slog.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		topic:    topic,
		log:      log,
	}
}

func (p *kafkaPublisher) PublishEntitlementGranted(ctx context.Context, event EntitlementGranted) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	event.Type = TypeEntitlementGranted
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		// keyed by user so a user's events stay ordered within a partition
		Key:   sarama.StringEncoder(event.UserID),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("Event-Type"), Value: []byte(event.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send %s: %w", event.Type, err)
	}

	p.log.Debug("event published",
		slog.String("type", event.Type),
		slog.String("order_id", event.OrderID),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
	)
	return nil
}

func (p *kafkaPublisher) Close() error {
	p.log.Info("closing kafka producer")
	if err := p.producer.Close(); err != nil {
		p.log.Error("failed to close kafka producer", slog.Any("error", err))
		return err
	}
	return nil
}

func newSaramaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Compression = sarama.CompressionSnappy
	return cfg
}

type nopPublisher struct{}

// NewNopPublisher returns a Publisher that drops events, used when no brokers are configured.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) PublishEntitlementGranted(context.Context, EntitlementGranted) error {
	return nil
}

func (nopPublisher) Close() error {
	return nil
}
