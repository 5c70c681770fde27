package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedBus "github.com/davicafu/rosterlab/internal/shared/infra/platform/bus"
)

// MessageWriter es la parte de *kafka.Writer que usamos.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher publica eventos en Kafka. El writer no debe tener Topic fijo:
// cada mensaje lleva el suyo (Topicer) o defaultTopic.
type KafkaPublisher struct {
	writer       MessageWriter
	defaultTopic string
	log          *zap.Logger
}

func NewKafkaPublisher(writer MessageWriter, defaultTopic string, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, defaultTopic: defaultTopic, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{Topic: p.defaultTopic, Value: data}
	if keyer, ok := event.(sharedBus.Keyer); ok {
		msg.Key = []byte(keyer.PartitionKey())
	}
	if t, ok := event.(sharedBus.Topicer); ok && t.Topic() != "" {
		msg.Topic = t.Topic()
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("Error publishing to Kafka", zap.String("topic", msg.Topic), zap.Error(err))
		return err
	}

	p.log.Debug("Event published successfully", zap.String("topic", msg.Topic), zap.ByteString("key", msg.Key))
	return nil
}

// Verificación estática
var _ sharedBus.EventBus = (*KafkaPublisher)(nil)
