package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Action es lo que le pasó a una ficha.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// ActionOf extrae la acción de un tipo de evento "<kind>.<action>".
func ActionOf(eventType string) (Action, bool) {
	i := strings.LastIndexByte(eventType, '.')
	if i < 0 {
		return "", false
	}
	switch a := Action(eventType[i+1:]); a {
	case ActionCreated, ActionUpdated, ActionDeleted:
		return a, true
	}
	return "", false
}

// RegistrationEntry es una fila del log de altas y bajas.
type RegistrationEntry struct {
	EventID    string
	Kind       string
	RecordID   string
	Email      string
	Action     Action
	OccurredAt time.Time
}

// DailyTrend agrega por día y tipo de ficha.
type DailyTrend struct {
	Day     time.Time `json:"day"`
	Kind    string    `json:"kind"`
	Created uint64    `json:"created"`
	Updated uint64    `json:"updated"`
	Deleted uint64    `json:"deleted"`
}

var ErrInvalidRange = errors.New("invalid date range")

type RegistrationRepository interface {
	LogBatch(ctx context.Context, entries []RegistrationEntry) error
	DailyTrend(ctx context.Context, from, to time.Time) ([]DailyTrend, error)
}
