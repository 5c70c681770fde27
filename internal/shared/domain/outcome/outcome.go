package outcome

// Kind identifica la variante del resultado.
type Kind string

const (
	KindOK               Kind = "ok"
	KindValidationFailed Kind = "validation_failed"
	KindNotFound         Kind = "not_found"
	KindStorageError     Kind = "storage_error"
)

// FieldErrors mapea nombre de campo -> mensaje legible.
type FieldErrors map[string]string

// Outcome es el resultado de una operación de escritura o lectura puntual.
// Sólo los campos de la variante activa tienen sentido.
type Outcome[T any] struct {
	Kind   Kind
	Value  T
	Fields FieldErrors
	Err    error
}

func OK[T any](v T) Outcome[T] {
	return Outcome[T]{Kind: KindOK, Value: v}
}

func Invalid[T any](fields FieldErrors) Outcome[T] {
	return Outcome[T]{Kind: KindValidationFailed, Fields: fields}
}

func Missing[T any]() Outcome[T] {
	return Outcome[T]{Kind: KindNotFound}
}

// Failed envuelve un fallo de almacenamiento. Err se loguea, nunca se muestra tal cual.
func Failed[T any](err error) Outcome[T] {
	return Outcome[T]{Kind: KindStorageError, Err: err}
}

func (o Outcome[T]) IsOK() bool { return o.Kind == KindOK }
