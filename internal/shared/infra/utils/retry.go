package utils

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry ejecuta fn hasta attempts veces con una espera constante entre intentos.
// Los errores envueltos con Permanent cortan los reintentos y se devuelven tal cual.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(attempts-1)),
		ctx,
	)
	return backoff.Retry(fn, policy)
}

// Permanent marca un error como no reintentable (p.ej. "no encontrado").
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}
