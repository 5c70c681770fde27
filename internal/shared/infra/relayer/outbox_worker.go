package relayer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/rosterlab/internal/shared/domain"
	sharedDomainEvents "github.com/davicafu/rosterlab/internal/shared/domain/events"
	sharedBus "github.com/davicafu/rosterlab/internal/shared/infra/platform/bus"
)

var (
	errUnregistered = errors.New("event type not registered")
	errBadPayload   = errors.New("payload does not match registered type")
)

// Worker vacía la outbox hacia el bus. Una misma instancia sirve para
// cualquier repositorio que implemente OutboxRepository (SQL o Mongo).
type Worker struct {
	repo      sharedDomain.OutboxRepository
	bus       sharedBus.EventBus
	registry  map[string]sharedDomainEvents.EventMetadata
	every     time.Duration
	batchSize int
	log       *zap.Logger
}

func NewOutboxWorker(
	repo sharedDomain.OutboxRepository,
	bus sharedBus.EventBus,
	registry map[string]sharedDomainEvents.EventMetadata,
	every time.Duration,
	batchSize int,
	log *zap.Logger,
) *Worker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Worker{repo: repo, bus: bus, registry: registry, every: every, batchSize: batchSize, log: log}
}

// Start hace una pasada inmediata y luego una por tick hasta que ctx se cancele.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info("🚚 relayer arrancado", zap.Duration("every", w.every), zap.Int("batch", w.batchSize))
	w.drain(ctx)

	ticker := time.NewTicker(w.every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info("relayer parado")
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain repite lotes mientras vengan llenos y todos se publiquen.
func (w *Worker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		fetched, published := w.ProcessBatch(ctx)
		if fetched < w.batchSize || published < fetched {
			return
		}
	}
}

// ProcessBatch publica un lote y devuelve cuántos eventos leyó y cuántos
// quedaron marcados. Los que fallan siguen pendientes para el siguiente tick.
func (w *Worker) ProcessBatch(ctx context.Context) (fetched, published int) {
	pending, err := w.repo.FetchPendingOutbox(ctx, w.batchSize)
	if err != nil {
		w.log.Warn("no se pudo leer la outbox", zap.Error(err))
		return 0, 0
	}

	for _, evt := range pending {
		err := w.relay(ctx, evt)
		if err == nil {
			published++
			continue
		}
		fields := []zap.Field{
			zap.String("event_id", evt.ID.String()),
			zap.String("event_type", evt.EventType),
			zap.Error(err),
		}
		if errors.Is(err, errUnregistered) || errors.Is(err, errBadPayload) {
			w.log.Error("evento de outbox no publicable", fields...)
		} else {
			w.log.Warn("evento de outbox pendiente de reintento", fields...)
		}
	}

	if len(pending) > 0 {
		w.log.Debug("lote de outbox procesado", zap.Int("fetched", len(pending)), zap.Int("published", published))
	}
	return len(pending), published
}

// relay publica un evento y lo marca. Si la publicación falla no se marca.
func (w *Worker) relay(ctx context.Context, evt sharedDomain.OutboxEvent) error {
	meta, ok := w.registry[evt.EventType]
	if !ok {
		return errUnregistered
	}
	env, err := buildEnvelope(evt, meta)
	if err != nil {
		return err
	}
	if err := w.bus.Publish(ctx, env); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	if err := w.repo.MarkOutboxProcessed(ctx, evt.ID); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

// buildEnvelope normaliza el payload pasándolo por el tipo registrado y lo
// envuelve en un IntegrationEvent con su topic y clave de partición.
func buildEnvelope(evt sharedDomain.OutboxEvent, meta sharedDomainEvents.EventMetadata) (sharedBus.Envelope, error) {
	typed := reflect.New(meta.Type).Interface()

	raw, err := json.Marshal(evt.Payload)
	if err == nil {
		err = json.Unmarshal(raw, typed)
	}
	if err != nil {
		return sharedBus.Envelope{}, fmt.Errorf("%w: %v", errBadPayload, err)
	}

	data, err := json.Marshal(typed)
	if err != nil {
		return sharedBus.Envelope{}, fmt.Errorf("%w: %v", errBadPayload, err)
	}

	key := evt.AggregateType + ":" + evt.AggregateID
	if k, ok := typed.(sharedBus.Keyer); ok {
		key = k.PartitionKey()
	}

	return sharedBus.Envelope{
		IntegrationEvent: sharedDomainEvents.IntegrationEvent{Type: evt.EventType, Timestamp: evt.CreatedAt, Data: data},
		Key:              key,
		TopicName:        meta.Topic,
	}, nil
}
