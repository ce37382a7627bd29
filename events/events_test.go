package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ShashankBhake/st-shield-backend/models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSNS struct {
	mock.Mock
}

func (m *mockSNS) Publish(ctx context.Context, topicArn string, message []byte, attrs map[string]string) error {
	args := m.Called(ctx, topicArn, message, attrs)
	return args.Error(0)
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func sampleEvent() models.PolicyEvent {
	return models.PolicyEvent{
		EventType:  models.EventPolicyCreated,
		PolicyID:   "SSST1",
		OrderID:    "order_1",
		PaymentID:  "pay_1",
		Amount:     99900,
		OccurredAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSNSPublisher(t *testing.T) {
	const topic = "arn:aws:sns:ap-south-1:000000000000:policy-events"
	client := &mockSNS{}
	client.On("Publish", mock.Anything, topic,
		mock.MatchedBy(func(msg []byte) bool {
			var decoded models.PolicyEvent
			return json.Unmarshal(msg, &decoded) == nil && decoded.PolicyID == "SSST1"
		}),
		map[string]string{"event_type": "policy_created"},
	).Return(nil).Once()

	p := NewSNSPublisher(client, topic)
	require.NoError(t, p.Publish(context.Background(), sampleEvent()))

	client.AssertExpectations(t)
}

func TestSNSPublisher_Error(t *testing.T) {
	client := &mockSNS{}
	client.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("throttled"))

	p := NewSNSPublisher(client, "arn")
	assert.Error(t, p.Publish(context.Background(), sampleEvent()))
}

func TestKafkaPublisher(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisher(w)

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "order_1", string(w.msgs[0].Key))
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)
	assert.Equal(t, "policy_created", string(w.msgs[0].Headers[0].Value))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_Error(t *testing.T) {
	p := NewKafkaPublisher(&fakeWriter{err: errors.New("leader not available")})
	assert.Error(t, p.Publish(context.Background(), sampleEvent()))
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter([]string{"localhost:9092"}, "policy-events")
	assert.Equal(t, "policy-events", w.Topic)
	assert.NoError(t, w.Close())
}
