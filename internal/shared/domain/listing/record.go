package listing

import "time"

// Record es lo mínimo que el motor de listados necesita de una entidad.
// Student y Consumer lo implementan con sus propios nombres de campo.
type Record interface {
	RecordID() string
	RecordName() string
	RecordEmail() string
	RecordDate() time.Time
}
