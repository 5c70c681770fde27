package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	analyticsDomain "github.com/davicafu/rosterlab/internal/analytics/domain"
	sharedEvents "github.com/davicafu/rosterlab/internal/shared/domain/events"
	sharedUtils "github.com/davicafu/rosterlab/internal/shared/infra/utils"
)

// Recorder es lo que el consumidor necesita del servicio de analítica.
type Recorder interface {
	Record(ctx context.Context, entries ...analyticsDomain.RegistrationEntry) error
}

// RegistrationConsumer convierte los eventos de fichas en entradas del log.
type RegistrationConsumer struct {
	recorder Recorder
	timeout  time.Duration
	log      *zap.Logger
}

func NewRegistrationConsumer(recorder Recorder, log *zap.Logger) *RegistrationConsumer {
	return &RegistrationConsumer{recorder: recorder, timeout: 2 * time.Second, log: log}
}

// HandleMessage es el punto de entrada para un nuevo mensaje/evento.
func (c *RegistrationConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		c.log.Warn("Failed to unmarshal integration event", zap.String("key", key), zap.Error(err))
		return
	}

	action, ok := analyticsDomain.ActionOf(base.Type)
	if !ok {
		c.log.Warn("Unknown registration event type", zap.String("type", base.Type), zap.String("key", key))
		return
	}

	entry := analyticsDomain.RegistrationEntry{Action: action, OccurredAt: base.Timestamp.UTC()}

	if action == analyticsDomain.ActionDeleted {
		sharedUtils.UnmarshalAndHandle[sharedEvents.RecordRemoved](c.log, base.Data, func(evt sharedEvents.RecordRemoved) {
			entry.Kind, entry.RecordID = evt.Kind, evt.ID
			c.record(ctx, base, entry)
		})
		return
	}

	sharedUtils.UnmarshalAndHandle[sharedEvents.RecordChanged](c.log, base.Data, func(evt sharedEvents.RecordChanged) {
		entry.Kind, entry.RecordID, entry.Email = evt.Kind, evt.ID, evt.Email
		c.record(ctx, base, entry)
	})
}

func (c *RegistrationConsumer) record(ctx context.Context, base sharedEvents.IntegrationEvent, entry analyticsDomain.RegistrationEntry) {
	// Un reenvío del relayer produce el mismo id.
	entry.EventID = fmt.Sprintf("%s|%s|%d", base.Type, entry.RecordID, base.Timestamp.UnixNano())

	ctxRec, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.recorder.Record(ctxRec, entry); err != nil {
		c.log.Warn("Failed to record registration event",
			zap.String("type", base.Type),
			zap.String("record_id", entry.RecordID),
			zap.Error(err),
		)
		return
	}
	c.log.Debug("Registration event recorded", zap.String("type", base.Type), zap.String("record_id", entry.RecordID))
}
