// Package cache provides the read-through cache used in front of repository
// listings, plus key serialization.
//
// # Overview
//
// This package exports two main interfaces and their default implementations:
//
//   - CacheService: read-through GetOrLoad with absolute and sliding expiration
//   - KeySerializer: builds stable, namespaced cache keys from method names
//
// # Basic Usage
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig())
//	key := cache.NewNamespacedKeySerializer("heroes").SerializeKey("FindAll")
//
//	heroes, err := cache.GetOrLoad(ctx, svc, key, cfg.Expiration(), func(ctx context.Context) ([]*hero.Hero, error) {
//		return repo.FindAll(ctx)
//	})
//
// # Expiration
//
// Both deadlines are fixed when an entry is written. Absolute expiration
// counts from the write (5 minutes by default), sliding expiration from the
// last read (2 minutes by default). A read inside both windows is a hit and
// moves the sliding deadline; anything else is a miss and calls the loader.
//
// # Staleness
//
// There is no invalidation API. Writes to the underlying store are not
// observed, so a cached collection can be up to one absolute expiration old.
// Callers that shape cached results must copy before mutating: the same
// value is returned to every reader.
//
// # Concurrency
//
// Concurrent misses on the same key are not coalesced. Each caller runs its
// loader and the last write wins, which is safe as long as loaders are
// idempotent and free of side effects.
package cache
