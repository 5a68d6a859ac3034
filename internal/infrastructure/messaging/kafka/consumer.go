package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

var (
	ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")
	ErrConsumerClosed = errors.New(errors.ErrCodeServiceUnavailable, "consumer closed")
)

// Message is one fetched record.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// MessageHandler processes one message. A returned error triggers a retry.
type MessageHandler func(ctx context.Context, msg *Message) error

// RetryConfig defines retry behavior.
type RetryConfig struct {
	MaxRetries      int
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
	DeadLetterTopic string
}

// ConsumerConfig holds configuration for the Consumer.
type ConsumerConfig struct {
	Brokers        []string
	GroupID        string
	Topics         []string
	StartLatest    bool
	CommitInterval time.Duration
	MaxWait        time.Duration
	FetchMinBytes  int
	FetchMaxBytes  int
	RetryConfig    RetryConfig
}

// ConsumerMetrics are in-process counters, readable without a registry.
type ConsumerMetrics struct {
	MessagesConsumed     atomic.Int64
	MessagesProcessed    atomic.Int64
	MessagesFailed       atomic.Int64
	MessagesRetried      atomic.Int64
	MessagesDeadLettered atomic.Int64
}

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.ReaderStats
}

// DeadLetterPublisher receives messages whose retries were exhausted.
type DeadLetterPublisher interface {
	Publish(ctx context.Context, msg *ProducerMessage) error
}

// Consumer dispatches fetched messages to per-topic handlers.
type Consumer struct {
	reader ReaderInterface
	config ConsumerConfig
	logger logging.Logger

	handlers map[string]MessageHandler
	mu       sync.RWMutex

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	deadLetter DeadLetterPublisher
	metrics    *ConsumerMetrics
	appMetrics *prometheus.AppMetrics
}

func NewConsumer(cfg ConsumerConfig, logger logging.Logger, appMetrics *prometheus.AppMetrics) (*Consumer, error) {
	if err := ValidateConsumerConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.CommitInterval == 0 {
		cfg.CommitInterval = time.Second
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = 500 * time.Millisecond
	}
	if cfg.FetchMinBytes == 0 {
		cfg.FetchMinBytes = 1
	}
	if cfg.FetchMaxBytes == 0 {
		cfg.FetchMaxBytes = 10 * 1024 * 1024
	}

	readerCfg := kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		GroupTopics:    cfg.Topics,
		MinBytes:       cfg.FetchMinBytes,
		MaxBytes:       cfg.FetchMaxBytes,
		MaxWait:        cfg.MaxWait,
		CommitInterval: cfg.CommitInterval,
		StartOffset:    kafka.FirstOffset,
	}
	if cfg.StartLatest {
		readerCfg.StartOffset = kafka.LastOffset
	}

	return newConsumer(kafka.NewReader(readerCfg), cfg, logger, appMetrics), nil
}

func newConsumer(r ReaderInterface, cfg ConsumerConfig, logger logging.Logger, appMetrics *prometheus.AppMetrics) *Consumer {
	if cfg.RetryConfig.RetryBackoff == 0 {
		cfg.RetryConfig.RetryBackoff = 200 * time.Millisecond
	}
	if cfg.RetryConfig.MaxRetryBackoff == 0 {
		cfg.RetryConfig.MaxRetryBackoff = 10 * time.Second
	}
	if appMetrics == nil {
		appMetrics = prometheus.NewNopMetrics()
	}
	return &Consumer{
		reader:     r,
		config:     cfg,
		logger:     logger,
		handlers:   make(map[string]MessageHandler),
		metrics:    &ConsumerMetrics{},
		appMetrics: appMetrics,
	}
}

// WithDeadLetter routes exhausted messages to p on RetryConfig.DeadLetterTopic.
func (c *Consumer) WithDeadLetter(p DeadLetterPublisher) *Consumer {
	c.deadLetter = p
	return c
}

func (c *Consumer) Subscribe(topic string, handler MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
}

// Start runs the fetch loop in the background until ctx ends or Close is called.
func (c *Consumer) Start(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.consumeLoop(ctx)
	}()
	c.logger.Info("consumer started",
		logging.String("group", c.config.GroupID),
		logging.Any("topics", c.config.Topics))
	return nil
}

// Run blocks in the fetch loop.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.Start(ctx); err != nil {
		return err
	}
	c.wg.Wait()
	return ctx.Err()
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	backoff := c.config.RetryConfig.RetryBackoff
	for {
		km, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("fetch failed", logging.Err(err))
			if !sleep(ctx, backoff) {
				return
			}
			continue
		}
		c.metrics.MessagesConsumed.Add(1)

		msg := fromKafkaMessage(km)
		c.mu.RLock()
		handler, ok := c.handlers[msg.Topic]
		c.mu.RUnlock()

		if !ok {
			c.logger.Warn("no handler for topic; skipping", logging.String("topic", msg.Topic))
			c.appMetrics.QueueProcessTotal.WithLabelValues(msg.Topic, "skipped").Inc()
		} else if !c.settle(ctx, msg, handler) {
			return
		}

		if err := c.reader.CommitMessages(ctx, km); err != nil && ctx.Err() == nil {
			c.logger.Error("commit failed", logging.String("topic", msg.Topic), logging.Int64("offset", msg.Offset), logging.Err(err))
		}
	}
}

// settle keeps processing msg until it is handled or dead-lettered.
// Fetching past it would let the next commit skip it, so the loop holds
// here; false means ctx ended with msg still uncommitted.
func (c *Consumer) settle(ctx context.Context, msg *Message, handler MessageHandler) bool {
	backoff := c.config.RetryConfig.RetryBackoff
	for {
		err := c.processMessage(ctx, msg, handler)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		c.logger.Error("message held for redelivery",
			logging.String("topic", msg.Topic),
			logging.Int64("offset", msg.Offset),
			logging.Err(err))
		if !sleep(ctx, backoff) {
			return false
		}
		backoff *= 2
		if ceiling := c.config.RetryConfig.MaxRetryBackoff; ceiling > 0 && backoff > ceiling {
			backoff = ceiling
		}
	}
}

// processMessage retries handler with exponential backoff. After the last
// attempt the message goes to the dead-letter topic, if one is configured,
// and is reported as handled. Only a cancelled context or a failed
// dead-letter write is returned.
func (c *Consumer) processMessage(ctx context.Context, msg *Message, handler MessageHandler) error {
	retry := c.config.RetryConfig
	backoff := retry.RetryBackoff

	var err error
	for attempt := 0; attempt <= retry.MaxRetries; attempt++ {
		if attempt > 0 {
			c.metrics.MessagesRetried.Add(1)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff *= 2
			if retry.MaxRetryBackoff > 0 && backoff > retry.MaxRetryBackoff {
				backoff = retry.MaxRetryBackoff
			}
		}
		if err = handler(ctx, msg); err == nil {
			c.metrics.MessagesProcessed.Add(1)
			c.appMetrics.QueueProcessTotal.WithLabelValues(msg.Topic, "processed").Inc()
			return nil
		}
		c.logger.Warn("handler failed",
			logging.String("topic", msg.Topic),
			logging.Int("attempt", attempt+1),
			logging.Err(err))
	}

	c.metrics.MessagesFailed.Add(1)
	c.appMetrics.QueueProcessTotal.WithLabelValues(msg.Topic, "failed").Inc()

	if c.deadLetter == nil || retry.DeadLetterTopic == "" {
		c.logger.Error("message dropped after retries", logging.String("topic", msg.Topic), logging.Err(err))
		return nil
	}

	headers := make(map[string]string, len(msg.Headers)+2)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers["original_topic"] = msg.Topic
	headers["error"] = err.Error()

	if dlqErr := c.deadLetter.Publish(ctx, &ProducerMessage{
		Topic:   retry.DeadLetterTopic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}); dlqErr != nil {
		return errors.Wrap(dlqErr, errors.ErrCodeServiceUnavailable, "dead-letter publish failed")
	}
	c.metrics.MessagesDeadLettered.Add(1)
	c.appMetrics.QueueProcessTotal.WithLabelValues(msg.Topic, "dead_lettered").Inc()
	return nil
}

// Close stops the loop and closes the reader.
func (c *Consumer) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	return c.reader.Close()
}

func (c *Consumer) Metrics() *ConsumerMetrics { return c.metrics }

func fromKafkaMessage(km kafka.Message) *Message {
	headers := make(map[string]string, len(km.Headers))
	for _, h := range km.Headers {
		headers[h.Key] = string(h.Value)
	}
	return &Message{
		Topic:     km.Topic,
		Partition: km.Partition,
		Offset:    km.Offset,
		Key:       km.Key,
		Value:     km.Value,
		Headers:   headers,
		Timestamp: km.Time,
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func ValidateConsumerConfig(cfg ConsumerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if cfg.GroupID == "" {
		return errors.New(errors.ErrCodeValidation, "group id required")
	}
	if len(cfg.Topics) == 0 {
		return errors.New(errors.ErrCodeValidation, "at least one topic required")
	}
	if cfg.RetryConfig.MaxRetries < 0 {
		return errors.New(errors.ErrCodeValidation, "max retries must be >= 0")
	}
	return nil
}

//Personal.AI order the ending
