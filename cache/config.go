package cache

import (
	"fmt"
	"time"

	"github.com/goliatone/go-heroes/internal/cacheinfra"
)

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	Capacity           int
	NumShards          int
	AbsoluteExpiration time.Duration
	SlidingExpiration  time.Duration
	EvictionPercentage int
	EvictionInterval   time.Duration
}

// DefaultConfig returns the listing cache defaults: 5 minute absolute and
// 2 minute sliding expiration.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// Expiration returns the default entry expiration of the configuration.
func (c Config) Expiration() Expiration {
	return Expiration{Absolute: c.AbsoluteExpiration, Sliding: c.SlidingExpiration}
}

// Option customizes the cache service built by NewCacheService.
type Option = cacheinfra.Option

// WithClock replaces time.Now in the cache service.
func WithClock(now func() time.Time) Option {
	return cacheinfra.WithClock(now)
}

// WithObserver reports hits and misses to o.
func WithObserver(o Observer) Option {
	return cacheinfra.WithObserver(o)
}

// NewCacheService constructs the default cache service implementation using the provided configuration.
func NewCacheService(cfg Config, opts ...Option) (CacheService, error) {
	svc, err := cacheinfra.NewSturdycService(cfg.toInternal(), opts...)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// TypeMismatchError is returned by GetOrLoad when the cached value does not
// have the requested type, usually two callers sharing one key.
type TypeMismatchError struct {
	Key   string
	Value any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("cache: value under %q has type %T", e.Key, e.Value)
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		AbsoluteExpiration: c.AbsoluteExpiration,
		SlidingExpiration:  c.SlidingExpiration,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		AbsoluteExpiration: cfg.AbsoluteExpiration,
		SlidingExpiration:  cfg.SlidingExpiration,
		EvictionPercentage: cfg.EvictionPercentage,
		EvictionInterval:   cfg.EvictionInterval,
	}
}
