package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const cacheTimeout = 200 * time.Millisecond

// SetNow escribe la clave de forma síncrona, antes de responder. Así una
// InvalidateNow posterior siempre la borra y no deja un valor antiguo.
func SetNow(ctx context.Context, cache Cache, key string, value interface{}, ttl int, log *zap.Logger) {
	if cache == nil {
		return
	}

	cacheCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheTimeout)
	defer cancel()

	if err := cache.Set(cacheCtx, key, value, ttl); err != nil {
		log.Warn("Cache update failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateNow borra la clave de forma síncrona. Se usa tras escrituras,
// donde una lectura inmediata no debe ver el valor antiguo.
func InvalidateNow(ctx context.Context, cache Cache, key string, log *zap.Logger) {
	if cache == nil {
		return
	}

	cacheCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheTimeout)
	defer cancel()

	if err := cache.Delete(cacheCtx, key); err != nil {
		log.Warn("Cache deletion failed", zap.String("key", key), zap.Error(err))
	}
}
