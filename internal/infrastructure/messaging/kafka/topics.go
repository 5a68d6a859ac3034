package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/types/common"
)

// Default topic names.
const (
	TopicHarvestRequests = "juris.harvest.requests"
	TopicProfileCloned   = "juris.profile.cloned"
	TopicCasesClassified = "juris.cases.classified"
	TopicDeadLetter      = "juris.dead-letter"
)

const (
	headerEventType     = "event_type"
	headerSource        = "source_service"
	headerSchemaVersion = "schema_version"
	headerTraceID       = "trace_id"

	schemaVersion = "v1"
)

// TopicConfig describes a topic to be created on the cluster.
type TopicConfig struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	RetentionMs       int64
	CleanupPolicy     string
	Configs           map[string]string
}

// TopicNames lets deployments rename the topics.
type TopicNames struct {
	Requests   string
	Cloned     string
	Classified string
	DeadLetter string
}

func (n TopicNames) withDefaults() TopicNames {
	if n.Requests == "" {
		n.Requests = TopicHarvestRequests
	}
	if n.Cloned == "" {
		n.Cloned = TopicProfileCloned
	}
	if n.Classified == "" {
		n.Classified = TopicCasesClassified
	}
	if n.DeadLetter == "" {
		n.DeadLetter = TopicDeadLetter
	}
	return n
}

// EventEnvelope wraps every event published on the broker.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	AggregateID   string            `json:"aggregate_id,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	TraceID       string            `json:"trace_id,omitempty"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

func NewEventEnvelope(eventType string, source string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: schemaVersion,
		Payload:       data,
	}, nil
}

// EnvelopeFromEvent keeps the identity and timestamp the event was created with.
func EnvelopeFromEvent(source string, ev common.DomainEvent) (*EventEnvelope, error) {
	env, err := NewEventEnvelope(ev.EventType(), source, ev)
	if err != nil {
		return nil, err
	}
	env.EventID = ev.EventID()
	env.AggregateID = ev.AggregateID()
	env.Timestamp = ev.OccurredAt()
	return env, nil
}

func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeValidation, "envelope has no payload")
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode payload")
	}
	return nil
}

// ToMessage keys the message by aggregate so events of one case stay ordered.
func (e *EventEnvelope) ToMessage(topic string) (*ProducerMessage, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	headers := map[string]string{
		headerEventType:     e.EventType,
		headerSource:        e.Source,
		headerSchemaVersion: e.SchemaVersion,
	}
	if e.TraceID != "" {
		headers[headerTraceID] = e.TraceID
	}
	msg := &ProducerMessage{
		Topic:     topic,
		Value:     val,
		Headers:   headers,
		Timestamp: e.Timestamp,
	}
	if e.AggregateID != "" {
		msg.Key = []byte(e.AggregateID)
	}
	return msg, nil
}

func MessageToEventEnvelope(msg *Message) (*EventEnvelope, error) {
	if len(msg.Value) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal envelope")
	}
	return &env, nil
}

// ConnInterface abstracts kafka.Conn for testing.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager creates the topics the worker and API server rely on.
type TopicManager struct {
	conn   ConnInterface
	logger logging.Logger
}

func NewTopicManager(brokers []string, logger logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "brokers required")
	}
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to dial kafka")
	}
	return &TopicManager{conn: conn, logger: logger}, nil
}

func (m *TopicManager) CreateTopic(ctx context.Context, cfg TopicConfig) error {
	if cfg.Name == "" {
		return errors.New(errors.ErrCodeValidation, "topic name required")
	}
	if cfg.NumPartitions <= 0 {
		return errors.New(errors.ErrCodeValidation, "NumPartitions must be > 0")
	}
	if cfg.ReplicationFactor <= 0 {
		return errors.New(errors.ErrCodeValidation, "ReplicationFactor must be > 0")
	}

	kCfg := kafka.TopicConfig{
		Topic:             cfg.Name,
		NumPartitions:     cfg.NumPartitions,
		ReplicationFactor: cfg.ReplicationFactor,
	}
	if cfg.RetentionMs > 0 {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{ConfigName: "retention.ms", ConfigValue: fmt.Sprintf("%d", cfg.RetentionMs)})
	}
	if cfg.CleanupPolicy != "" {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{ConfigName: "cleanup.policy", ConfigValue: cfg.CleanupPolicy})
	}
	for k, v := range cfg.Configs {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{ConfigName: k, ConfigValue: v})
	}

	if err := m.conn.CreateTopics(kCfg); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return nil
		}
		if exists, _ := m.TopicExists(ctx, cfg.Name); exists {
			return nil
		}
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to create topic "+cfg.Name)
	}
	m.logger.Info("topic created", logging.String("topic", cfg.Name), logging.Int("partitions", cfg.NumPartitions))
	return nil
}

func (m *TopicManager) TopicExists(ctx context.Context, name string) (bool, error) {
	partitions, err := m.conn.ReadPartitions(name)
	if err != nil {
		return false, nil
	}
	return len(partitions) > 0, nil
}

func (m *TopicManager) EnsureTopics(ctx context.Context, topics []TopicConfig) error {
	for _, topic := range topics {
		if err := m.CreateTopic(ctx, topic); err != nil {
			return err
		}
	}
	return nil
}

func (m *TopicManager) Close() error {
	return m.conn.Close()
}

// DefaultTopics returns single-broker friendly settings for the platform topics.
func DefaultTopics(names TopicNames) []TopicConfig {
	names = names.withDefaults()
	const day = int64(24 * 3600 * 1000)
	return []TopicConfig{
		{Name: names.Requests, NumPartitions: 6, ReplicationFactor: 1, RetentionMs: 7 * day},
		{Name: names.Cloned, NumPartitions: 3, ReplicationFactor: 1, RetentionMs: 30 * day},
		{Name: names.Classified, NumPartitions: 1, ReplicationFactor: 1, RetentionMs: 30 * day},
		{Name: names.DeadLetter, NumPartitions: 1, ReplicationFactor: 1, RetentionMs: 90 * day},
	}
}

//Personal.AI order the ending
