package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

type mockConn struct {
	created    []kafka.TopicConfig
	createErr  error
	partitions map[string]int
	closed     bool
}

func (m *mockConn) CreateTopics(topics ...kafka.TopicConfig) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, topics...)
	return nil
}

func (m *mockConn) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	var out []kafka.Partition
	for _, t := range topics {
		for i := 0; i < m.partitions[t]; i++ {
			out = append(out, kafka.Partition{Topic: t, ID: i})
		}
	}
	return out, nil
}

func (m *mockConn) Close() error {
	m.closed = true
	return nil
}

func TestEnvelopeFromEvent_KeepsIdentity(t *testing.T) {
	ev := judiciary.NewProfileCloned("1000000-00.2023.8.26.0100", "TJSP", "1ª Vara Cível", 3, 2)
	env, err := EnvelopeFromEvent("prologos-worker", ev)
	require.NoError(t, err)

	assert.Equal(t, ev.EventID(), env.EventID)
	assert.Equal(t, judiciary.EventProfileCloned, env.EventType)
	assert.Equal(t, "TJSP", env.AggregateID)
	assert.Equal(t, ev.OccurredAt(), env.Timestamp)
	assert.Equal(t, schemaVersion, env.SchemaVersion)

	msg, err := env.ToMessage(TopicProfileCloned)
	require.NoError(t, err)
	assert.Equal(t, "TJSP", string(msg.Key))

	back, err := MessageToEventEnvelope(&Message{Value: msg.Value})
	require.NoError(t, err)

	var decoded judiciary.ProfileCloned
	require.NoError(t, back.DecodePayload(&decoded))
	assert.Equal(t, 3, decoded.New)
	assert.Equal(t, 2, decoded.WithText)
}

func TestMessageToEventEnvelope_Invalid(t *testing.T) {
	_, err := MessageToEventEnvelope(&Message{})
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = MessageToEventEnvelope(&Message{Value: []byte("{")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func TestDecodePayload_Empty(t *testing.T) {
	env := &EventEnvelope{Payload: []byte("null")}
	var out map[string]interface{}
	assert.Error(t, env.DecodePayload(&out))
}

func TestDefaultTopics_AppliesNames(t *testing.T) {
	topics := DefaultTopics(TopicNames{Requests: "custom.requests"})
	require.Len(t, topics, 4)
	assert.Equal(t, "custom.requests", topics[0].Name)
	assert.Equal(t, TopicProfileCloned, topics[1].Name)
	assert.Equal(t, TopicCasesClassified, topics[2].Name)
	assert.Equal(t, TopicDeadLetter, topics[3].Name)
}

func TestTopicManager_EnsureTopics(t *testing.T) {
	conn := &mockConn{}
	m := &TopicManager{conn: conn, logger: logging.NewNopLogger()}

	require.NoError(t, m.EnsureTopics(context.Background(), DefaultTopics(TopicNames{})))
	require.Len(t, conn.created, 4)
	assert.Equal(t, TopicHarvestRequests, conn.created[0].Topic)
	assert.Equal(t, "retention.ms", conn.created[0].ConfigEntries[0].ConfigName)

	require.NoError(t, m.Close())
	assert.True(t, conn.closed)
}

func TestTopicManager_ExistingTopicTolerated(t *testing.T) {
	conn := &mockConn{createErr: errors.New("[36] Topic Already Exists")}
	m := &TopicManager{conn: conn, logger: logging.NewNopLogger()}
	assert.NoError(t, m.CreateTopic(context.Background(), TopicConfig{Name: "t", NumPartitions: 1, ReplicationFactor: 1}))

	conn = &mockConn{createErr: errors.New("not controller"), partitions: map[string]int{"t": 1}}
	m = &TopicManager{conn: conn, logger: logging.NewNopLogger()}
	assert.NoError(t, m.CreateTopic(context.Background(), TopicConfig{Name: "t", NumPartitions: 1, ReplicationFactor: 1}))

	conn = &mockConn{createErr: errors.New("not controller")}
	m = &TopicManager{conn: conn, logger: logging.NewNopLogger()}
	assert.Error(t, m.CreateTopic(context.Background(), TopicConfig{Name: "t", NumPartitions: 1, ReplicationFactor: 1}))
}

func TestTopicManager_InvalidConfig(t *testing.T) {
	m := &TopicManager{conn: &mockConn{}, logger: logging.NewNopLogger()}
	ctx := context.Background()
	assert.True(t, pkgerrors.IsValidation(m.CreateTopic(ctx, TopicConfig{})))
	assert.True(t, pkgerrors.IsValidation(m.CreateTopic(ctx, TopicConfig{Name: "t"})))
	assert.True(t, pkgerrors.IsValidation(m.CreateTopic(ctx, TopicConfig{Name: "t", NumPartitions: 1})))
}

//Personal.AI order the ending
