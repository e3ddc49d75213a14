package cacheinfra

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/viccon/sturdyc"
)

// Config holds the configuration for the sturdyc cache adapter.
type Config struct {
	// Capacity defines the maximum number of entries that the cache can store.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Must be greater than 0. Default: 64
	NumShards int

	// AbsoluteExpiration is the default lifetime of an entry, counted from
	// the moment it was written. It is also the TTL handed to sturdyc.
	// Must be greater than 0. Default: 5 minutes
	AbsoluteExpiration time.Duration

	// SlidingExpiration expires an entry that was not read for this long.
	// Zero disables sliding expiration. Default: 2 minutes
	SlidingExpiration time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often sturdyc drops expired entries.
	// Zero value uses the sturdyc default.
	EvictionInterval time.Duration
}

// Expiration is set on an entry when it is written.
type Expiration struct {
	Absolute time.Duration
	Sliding  time.Duration
}

// Observer is notified of cache lookups.
type Observer interface {
	CacheHit(key string)
	CacheMiss(key string)
}

// DefaultConfig returns a Config with the listing cache defaults.
func DefaultConfig() Config {
	return Config{
		Capacity:           1024,
		NumShards:          64,
		AbsoluteExpiration: 5 * time.Minute,
		SlidingExpiration:  2 * time.Minute,
		EvictionPercentage: 10,
	}
}

// ToSturdycOptions converts the Config to sturdyc options. Capacity,
// NumShards, AbsoluteExpiration and EvictionPercentage are constructor
// arguments and are not included.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option
	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}
	return options
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.AbsoluteExpiration <= 0 {
		return &ConfigError{Field: "AbsoluteExpiration", Message: "must be greater than 0"}
	}

	if c.SlidingExpiration < 0 {
		return &ConfigError{Field: "SlidingExpiration", Message: "must be non-negative"}
	}

	if c.SlidingExpiration > c.AbsoluteExpiration {
		return &ConfigError{Field: "SlidingExpiration", Message: "must not exceed AbsoluteExpiration"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// entry is the value kept in sturdyc. Deadlines are fixed at write time,
// lastAccess moves on every hit.
type entry struct {
	value      any
	expiresAt  time.Time
	sliding    time.Duration
	lastAccess atomic.Int64
}

func (e *entry) live(now time.Time) bool {
	if !now.Before(e.expiresAt) {
		return false
	}
	if e.sliding > 0 && now.Sub(time.Unix(0, e.lastAccess.Load())) >= e.sliding {
		return false
	}
	return true
}

func (e *entry) touch(now time.Time) {
	e.lastAccess.Store(now.UnixNano())
}

// Option customizes the sturdyc service.
type Option func(*sturdycService)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *sturdycService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithObserver registers an observer for hits and misses.
func WithObserver(o Observer) Option {
	return func(s *sturdycService) {
		s.observer = o
	}
}

// sturdycService wraps a sturdyc client providing read-through caching with
// absolute and sliding expiration.
type sturdycService struct {
	client   *sturdyc.Client[*entry]
	defaults Expiration
	now      func() time.Time
	observer Observer
}

// NewSturdycService creates a new sturdyc cache service adapter.
// It validates the configuration and initializes a sturdyc client with the provided settings.
func NewSturdycService(cfg Config, opts ...Option) (*sturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[*entry](
		cfg.Capacity,
		cfg.NumShards,
		cfg.AbsoluteExpiration,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	s := &sturdycService{
		client: client,
		defaults: Expiration{
			Absolute: cfg.AbsoluteExpiration,
			Sliding:  cfg.SlidingExpiration,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GetOrLoad returns the live entry stored under key. On a miss it calls load,
// stores the result with the given expiration and returns it. Concurrent
// misses may each call load; the last write wins. Load errors are returned
// and nothing is stored.
func (s *sturdycService) GetOrLoad(ctx context.Context, key string, exp Expiration, load func(context.Context) (any, error)) (any, error) {
	now := s.now()

	if e, ok := s.client.Get(key); ok && e.live(now) {
		e.touch(now)
		s.hit(key)
		return e.value, nil
	}
	s.miss(key)

	value, err := load(ctx)
	if err != nil {
		return nil, err
	}

	exp = s.resolve(exp)
	e := &entry{
		value:     value,
		expiresAt: now.Add(exp.Absolute),
		sliding:   exp.Sliding,
	}
	e.touch(now)
	s.client.Set(key, e)

	return value, nil
}

// resolve fills zero values from the defaults. Entries cannot outlive the
// sturdyc TTL, so longer absolute expirations are capped to it.
func (s *sturdycService) resolve(exp Expiration) Expiration {
	if exp.Absolute <= 0 || exp.Absolute > s.defaults.Absolute {
		exp.Absolute = s.defaults.Absolute
	}
	if exp.Sliding < 0 {
		exp.Sliding = 0
	}
	if exp.Sliding == 0 {
		exp.Sliding = s.defaults.Sliding
	}
	return exp
}

func (s *sturdycService) hit(key string) {
	if s.observer != nil {
		s.observer.CacheHit(key)
	}
}

func (s *sturdycService) miss(key string) {
	if s.observer != nil {
		s.observer.CacheMiss(key)
	}
}
