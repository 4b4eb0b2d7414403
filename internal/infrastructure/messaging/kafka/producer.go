package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/wealthdesk/wealthdesk/internal/config"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/logging"
	"github.com/wealthdesk/wealthdesk/pkg/errors"
)

var ErrProducerClosed = errors.New(errors.ErrCodeInternal, "producer closed")

// Publisher is the event port exposed to the application layer. Events are
// advisory: services fire them after a successful write and only log
// failures.
type Publisher interface {
	Publish(ctx context.Context, topic string, key string, payload any) error
	Close() error
}

// writerInterface abstracts kafka.Writer for testing.
type writerInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes envelopes to Kafka, keyed so events for one client stay
// ordered within a partition.
type Producer struct {
	writer      writerInterface
	topicPrefix string
	logger      logging.Logger
	closed      atomic.Bool
	sent        atomic.Int64
	failed      atomic.Int64
}

// NewProducer builds a Producer from the module config.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}

	batchTimeout := cfg.BatchTimeout
	if batchTimeout == 0 {
		batchTimeout = time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: batchTimeout,
		WriteTimeout: writeTimeout,
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
	}

	return &Producer{
		writer:      writer,
		topicPrefix: cfg.TopicPrefix,
		logger:      log,
	}, nil
}

// newProducerWithWriter is used by tests to inject a fake writer.
func newProducerWithWriter(w writerInterface, topicPrefix string, log logging.Logger) *Producer {
	return &Producer{writer: w, topicPrefix: topicPrefix, logger: log}
}

func (p *Producer) topic(name string) string {
	if p.topicPrefix == "" {
		return name
	}
	return p.topicPrefix + "." + name
}

// Publish wraps payload in an envelope and writes it synchronously.
func (p *Producer) Publish(ctx context.Context, topic string, key string, payload any) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	env, err := NewEnvelope(topic, payload)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "event payload encode failed")
	}
	value, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "event envelope encode failed")
	}

	msg := kafka.Message{
		Topic: p.topic(topic),
		Key:   []byte(key),
		Value: value,
		Time:  env.Timestamp,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.failed.Add(1)
		return errors.Wrap(err, errors.ErrCodeInternal, "event publish failed")
	}

	p.sent.Add(1)
	p.logger.Debug("event published",
		logging.String("topic", msg.Topic),
		logging.String("event_id", env.EventID))
	return nil
}

// Sent returns the count of successfully published events.
func (p *Producer) Sent() int64 { return p.sent.Load() }

// Failed returns the count of failed publishes.
func (p *Producer) Failed() int64 { return p.failed.Load() }

// Close flushes pending batches and marks the producer closed.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("kafka producer closed",
		logging.Int64("sent", p.sent.Load()),
		logging.Int64("failed", p.failed.Load()))
	return err
}

// NopPublisher discards events. Used when Kafka is disabled in config.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, topic string, key string, payload any) error {
	return nil
}
func (NopPublisher) Close() error { return nil }
