package events

import "time"

// Estos son contratos de integración, NO entidades del dominio.
// Student y Consumer publican la misma forma plana para que analytics
// no dependa de ninguno de los dos contextos.

// RecordChanged viaja en los eventos *.created y *.updated.
type RecordChanged struct {
	Kind       string    `json:"kind"`
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	OccurredOn time.Time `json:"occurred_on"`
}

func (e *RecordChanged) PartitionKey() string { return e.Kind + ":" + e.ID }

// RecordRemoved viaja en los eventos *.deleted.
type RecordRemoved struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

func (e *RecordRemoved) PartitionKey() string { return e.Kind + ":" + e.ID }
