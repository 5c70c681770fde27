package events

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	sharedBus "github.com/davicafu/rosterlab/internal/shared/infra/platform/bus"
)

// InMemoryEventBus reparte los eventos serializados entre suscriptores locales.
// Sustituye a Kafka en despliegues de un solo proceso.
type InMemoryEventBus struct {
	subscribers []chan []byte
	mu          sync.RWMutex
	log         *zap.Logger
}

var _ sharedBus.EventBus = (*InMemoryEventBus)(nil)

func NewInMemoryEventBus(log *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{log: log}
}

// Publish serializa el evento y lo entrega sin bloquear: si el buffer de un
// suscriptor está lleno, ese suscriptor pierde el mensaje.
func (b *InMemoryEventBus) Publish(_ context.Context, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subscribers {
		select {
		case sub <- payload:
		default:
			b.log.Warn("⚠️ Suscriptor en memoria saturado, evento descartado")
		}
	}
	return nil
}

// Subscribe registra un nuevo oyente con el buffer indicado.
func (b *InMemoryEventBus) Subscribe(bufferSize int) <-chan []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan []byte, bufferSize)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Listen entrega los mensajes de ch al handler hasta que ctx termine.
func Listen(ctx context.Context, ch <-chan []byte, handler MessageHandler) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case payload := <-ch:
				// La key no es relevante en el bus en memoria.
				handler.HandleMessage(ctx, "", payload)
			}
		}
	}()
}
