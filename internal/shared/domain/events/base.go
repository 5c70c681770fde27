package events

import (
	"encoding/json"
	"reflect"
	"time"
)

// Base de todos los eventos de integración
type IntegrationEvent struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"` // contenido específico del evento
}

// EventMetadata indica al relayer cómo decodificar el payload de la outbox
// y a qué topic publicarlo.
type EventMetadata struct {
	Type  reflect.Type
	Topic string
}

// MergeRegistries une los registros de cada contexto en uno solo.
func MergeRegistries(registries ...map[string]EventMetadata) map[string]EventMetadata {
	out := make(map[string]EventMetadata)
	for _, r := range registries {
		for k, v := range r {
			out[k] = v
		}
	}
	return out
}
