package kafka

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/types/common"
)

var (
	ErrProducerClosed = errors.New(errors.ErrCodeServiceUnavailable, "producer closed")
)

const defaultSource = "prologos"

// ProducerConfig holds configuration for the Producer.
type ProducerConfig struct {
	Brokers         []string
	Acks            string
	MaxRetries      int
	BatchTimeout    time.Duration
	WriteTimeout    time.Duration
	MaxMessageBytes int
	Source          string
}

// ProducerMessage is one record to write.
type ProducerMessage struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.WriterStats
}

// Producer writes harvest requests and domain events.
type Producer struct {
	writer  WriterInterface
	config  ProducerConfig
	logger  logging.Logger
	metrics *prometheus.AppMetrics
	closed  atomic.Bool
}

func NewProducer(cfg ProducerConfig, logger logging.Logger, metrics *prometheus.AppMetrics) (*Producer, error) {
	if err := ValidateProducerConfig(cfg); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	var acks kafka.RequiredAcks
	switch cfg.Acks {
	case "none":
		acks = kafka.RequireNone
	case "all":
		acks = kafka.RequireAll
	default:
		acks = kafka.RequireOne
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxRetries + 1,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: acks,
	}
	return newProducer(writer, cfg, logger, metrics), nil
}

func newProducer(w WriterInterface, cfg ProducerConfig, logger logging.Logger, metrics *prometheus.AppMetrics) *Producer {
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	return &Producer{
		writer:  w,
		config:  cfg.withDefaults(),
		logger:  logger,
		metrics: metrics,
	}
}

func (c ProducerConfig) withDefaults() ProducerConfig {
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.BatchTimeout == 0 {
		c.BatchTimeout = 50 * time.Millisecond
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.MaxMessageBytes == 0 {
		c.MaxMessageBytes = 1024 * 1024
	}
	if c.Source == "" {
		c.Source = defaultSource
	}
	return c
}

// Publish writes a single message.
func (p *Producer) Publish(ctx context.Context, msg *ProducerMessage) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if err := p.validate(msg); err != nil {
		return err
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, toKafkaMessage(msg)); err != nil {
		p.metrics.QueueProcessTotal.WithLabelValues(msg.Topic, "publish_failed").Inc()
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "publish failed")
	}
	p.metrics.QueueProcessTotal.WithLabelValues(msg.Topic, "published").Inc()
	p.logger.Debug("message published",
		logging.String("topic", msg.Topic),
		logging.Int("bytes", len(msg.Value)),
		logging.Duration("took", time.Since(start)))
	return nil
}

// PublishBatch writes msgs in one call. Validation fails the whole batch.
func (p *Producer) PublishBatch(ctx context.Context, msgs []*ProducerMessage) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if len(msgs) == 0 {
		return nil
	}
	kMsgs := make([]kafka.Message, 0, len(msgs))
	for _, m := range msgs {
		if err := p.validate(m); err != nil {
			return err
		}
		kMsgs = append(kMsgs, toKafkaMessage(m))
	}
	if err := p.writer.WriteMessages(ctx, kMsgs...); err != nil {
		for _, m := range msgs {
			p.metrics.QueueProcessTotal.WithLabelValues(m.Topic, "publish_failed").Inc()
		}
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "batch publish failed")
	}
	for _, m := range msgs {
		p.metrics.QueueProcessTotal.WithLabelValues(m.Topic, "published").Inc()
	}
	return nil
}

// PublishEvent wraps ev in an envelope and writes it to topic.
func (p *Producer) PublishEvent(ctx context.Context, topic string, ev common.DomainEvent) error {
	env, err := EnvelopeFromEvent(p.config.Source, ev)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(topic)
	if err != nil {
		return err
	}
	return p.Publish(ctx, msg)
}

func (p *Producer) validate(msg *ProducerMessage) error {
	if msg == nil {
		return errors.New(errors.ErrCodeValidation, "message required")
	}
	if msg.Topic == "" {
		return errors.New(errors.ErrCodeValidation, "topic required")
	}
	if len(msg.Value) == 0 {
		return errors.New(errors.ErrCodeValidation, "value required")
	}
	if len(msg.Value) > p.config.MaxMessageBytes {
		return errors.New(errors.ErrCodeValidation, "message too large")
	}
	return nil
}

func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}

func toKafkaMessage(msg *ProducerMessage) kafka.Message {
	km := kafka.Message{
		Topic: msg.Topic,
		Key:   msg.Key,
		Value: msg.Value,
		Time:  msg.Timestamp,
	}
	for k, v := range msg.Headers {
		km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return km
}

func ValidateProducerConfig(cfg ProducerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if cfg.MaxRetries < 0 {
		return errors.New(errors.ErrCodeValidation, "max retries must be >= 0")
	}
	return nil
}

//Personal.AI order the ending
