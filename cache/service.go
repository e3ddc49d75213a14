package cache

import (
	"context"

	"github.com/goliatone/go-heroes/internal/cacheinfra"
)

// KeySerializer builds the cache key of a repository method.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(method string) string
}

// Expiration is fixed on an entry when it is written: Absolute counts from
// the write, Sliding from the last read. Whichever passes first expires it.
type Expiration = cacheinfra.Expiration

// Observer is notified of cache hits and misses.
type Observer = cacheinfra.Observer

// LoadFn is the function signature CacheService expects when loading from the source of truth.
type LoadFn[T any] func(ctx context.Context) (T, error)

// CacheService exposes the read-through operation used in front of
// repositories. Entries are only dropped by expiration; there is no
// invalidation hook for writes.
type CacheService interface {
	GetOrLoad(ctx context.Context, key string, exp Expiration, load func(context.Context) (any, error)) (any, error)
}

// GetOrLoad is a type-safe wrapper around CacheService.GetOrLoad.
func GetOrLoad[T any](ctx context.Context, service CacheService, key string, exp Expiration, load LoadFn[T]) (T, error) {
	var zero T

	result, err := service.GetOrLoad(ctx, key, exp, func(ctx context.Context) (any, error) {
		return load(ctx)
	})
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}

	typed, ok := result.(T)
	if !ok {
		return zero, &TypeMismatchError{Key: key, Value: result}
	}
	return typed, nil
}
