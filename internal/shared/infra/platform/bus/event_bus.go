package bus

import (
	"context"

	sharedEvents "github.com/davicafu/rosterlab/internal/shared/domain/events"
)

// Keyer lo implementan los eventos que necesitan una clave de partición estable.
type Keyer interface {
	PartitionKey() string
}

// Topicer lo implementan los mensajes que saben a qué topic van.
type Topicer interface {
	Topic() string
}

// La semántica de topic/nombre y formato del payload la deciden los adapters.
type EventBus interface {
	Publish(ctx context.Context, event interface{}) error
}

// Envelope es lo que el relayer entrega al bus: el evento de integración
// más la clave y el topic, que no viajan en el JSON.
type Envelope struct {
	sharedEvents.IntegrationEvent
	Key       string `json:"-"`
	TopicName string `json:"-"`
}

func (e Envelope) PartitionKey() string { return e.Key }
func (e Envelope) Topic() string        { return e.TopicName }

var (
	_ Keyer   = Envelope{}
	_ Topicer = Envelope{}
)
