package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	sharedEvents "github.com/davicafu/rosterlab/internal/shared/domain/events"
	sharedBus "github.com/davicafu/rosterlab/internal/shared/infra/platform/bus"
)

type captureWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func TestKafkaPublisher_UsesEnvelopeKeyAndTopic(t *testing.T) {
	w := &captureWriter{}
	pub := NewKafkaPublisher(w, "records", zap.NewNop())

	env := sharedBus.Envelope{
		IntegrationEvent: sharedEvents.IntegrationEvent{Type: "student.created", Data: json.RawMessage(`{"id":"1"}`)},
		Key:              "student:1",
		TopicName:        "student",
	}

	require.NoError(t, pub.Publish(context.Background(), env))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "student", w.msgs[0].Topic)
	assert.Equal(t, "student:1", string(w.msgs[0].Key))

	var decoded sharedEvents.IntegrationEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, "student.created", decoded.Type)
}

func TestKafkaPublisher_DefaultTopicAndError(t *testing.T) {
	w := &captureWriter{err: errors.New("broker down")}
	pub := NewKafkaPublisher(w, "records", zap.NewNop())

	err := pub.Publish(context.Background(), map[string]string{"a": "b"})

	assert.Error(t, err)
	assert.Equal(t, "records", w.msgs[0].Topic)
	assert.Nil(t, w.msgs[0].Key)
}

type recordingHandler struct {
	mu       sync.Mutex
	payloads [][]byte
	done     chan struct{}
}

func (h *recordingHandler) HandleMessage(_ context.Context, _ string, payload []byte) {
	h.mu.Lock()
	h.payloads = append(h.payloads, payload)
	h.mu.Unlock()
	h.done <- struct{}{}
}

func TestInMemoryEventBus_PublishAndListen(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{done: make(chan struct{}, 1)}
	Listen(ctx, bus.Subscribe(4), handler)

	require.NoError(t, bus.Publish(ctx, sharedEvents.IntegrationEvent{Type: "consumer.deleted"}))

	select {
	case <-handler.done:
	case <-time.After(time.Second):
		t.Fatal("el evento no llegó al suscriptor")
	}

	handler.mu.Lock()
	defer handler.mu.Unlock()
	assert.Contains(t, string(handler.payloads[0]), "consumer.deleted")
}
