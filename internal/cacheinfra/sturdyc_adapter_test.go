package cacheinfra

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type countingObserver struct {
	mu     sync.Mutex
	hits   int
	misses int
}

func (o *countingObserver) CacheHit(string) {
	o.mu.Lock()
	o.hits++
	o.mu.Unlock()
}

func (o *countingObserver) CacheMiss(string) {
	o.mu.Lock()
	o.misses++
	o.mu.Unlock()
}

func newTestService(t *testing.T, clock *fakeClock, opts ...Option) *sturdycService {
	t.Helper()
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	svc, err := NewSturdycService(DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("NewSturdycService() error = %v", err)
	}
	return svc
}

type loader struct {
	calls int
	value any
	err   error
}

func (l *loader) load(context.Context) (any, error) {
	l.calls++
	return l.value, l.err
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.AbsoluteExpiration != 5*time.Minute {
		t.Errorf("expected AbsoluteExpiration to be 5 minutes, got %v", cfg.AbsoluteExpiration)
	}
	if cfg.SlidingExpiration != 2*time.Minute {
		t.Errorf("expected SlidingExpiration to be 2 minutes, got %v", cfg.SlidingExpiration)
	}
	if cfg.Capacity <= 0 || cfg.NumShards <= 0 {
		t.Errorf("expected positive capacity and shards, got %d/%d", cfg.Capacity, cfg.NumShards)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{name: "zero capacity", mutate: func(c *Config) { c.Capacity = 0 }, errorMsg: "Capacity"},
		{name: "zero shards", mutate: func(c *Config) { c.NumShards = 0 }, errorMsg: "NumShards"},
		{name: "zero absolute", mutate: func(c *Config) { c.AbsoluteExpiration = 0 }, errorMsg: "AbsoluteExpiration"},
		{name: "negative sliding", mutate: func(c *Config) { c.SlidingExpiration = -time.Second }, errorMsg: "SlidingExpiration"},
		{name: "sliding above absolute", mutate: func(c *Config) { c.SlidingExpiration = 6 * time.Minute }, errorMsg: "must not exceed"},
		{name: "eviction percentage zero", mutate: func(c *Config) { c.EvictionPercentage = 0 }, errorMsg: "EvictionPercentage"},
		{name: "eviction percentage above 100", mutate: func(c *Config) { c.EvictionPercentage = 101 }, errorMsg: "EvictionPercentage"},
		{name: "negative eviction interval", mutate: func(c *Config) { c.EvictionInterval = -time.Second }, errorMsg: "EvictionInterval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("expected error to contain %q, got %q", tt.errorMsg, err.Error())
			}
		})
	}
}

func TestGetOrLoad_HitWithinWindows(t *testing.T) {
	clock := newFakeClock()
	obs := &countingObserver{}
	svc := newTestService(t, clock, WithObserver(obs))
	l := &loader{value: "heroes"}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := svc.GetOrLoad(ctx, "k", Expiration{}, l.load)
		if err != nil {
			t.Fatalf("GetOrLoad() error = %v", err)
		}
		if got != "heroes" {
			t.Fatalf("expected heroes, got %v", got)
		}
		clock.Advance(time.Minute)
	}

	if l.calls != 1 {
		t.Errorf("expected 1 load, got %d", l.calls)
	}
	if obs.hits != 2 || obs.misses != 1 {
		t.Errorf("expected 2 hits and 1 miss, got %d/%d", obs.hits, obs.misses)
	}
}

func TestGetOrLoad_SlidingExpiration(t *testing.T) {
	clock := newFakeClock()
	svc := newTestService(t, clock)
	l := &loader{value: 1}
	ctx := context.Background()

	if _, err := svc.GetOrLoad(ctx, "k", Expiration{}, l.load); err != nil {
		t.Fatal(err)
	}

	// Idle for the full sliding window.
	clock.Advance(2 * time.Minute)

	if _, err := svc.GetOrLoad(ctx, "k", Expiration{}, l.load); err != nil {
		t.Fatal(err)
	}
	if l.calls != 2 {
		t.Errorf("expected reload after idle window, got %d loads", l.calls)
	}
}

func TestGetOrLoad_AbsoluteExpirationDespiteReads(t *testing.T) {
	clock := newFakeClock()
	svc := newTestService(t, clock)
	l := &loader{value: 1}
	ctx := context.Background()

	if _, err := svc.GetOrLoad(ctx, "k", Expiration{}, l.load); err != nil {
		t.Fatal(err)
	}

	// Reads every 90s keep the sliding window open until the absolute deadline.
	for elapsed := 90 * time.Second; elapsed < 5*time.Minute; elapsed += 90 * time.Second {
		clock.Advance(90 * time.Second)
		if _, err := svc.GetOrLoad(ctx, "k", Expiration{}, l.load); err != nil {
			t.Fatal(err)
		}
	}
	if l.calls != 1 {
		t.Fatalf("expected hits before absolute deadline, got %d loads", l.calls)
	}

	// 360s after write.
	clock.Advance(90 * time.Second)
	if _, err := svc.GetOrLoad(ctx, "k", Expiration{}, l.load); err != nil {
		t.Fatal(err)
	}
	if l.calls != 2 {
		t.Errorf("expected reload after absolute deadline, got %d loads", l.calls)
	}
}

func TestGetOrLoad_ErrorNotCached(t *testing.T) {
	clock := newFakeClock()
	svc := newTestService(t, clock)
	boom := errors.New("store down")
	l := &loader{err: boom}
	ctx := context.Background()

	if _, err := svc.GetOrLoad(ctx, "k", Expiration{}, l.load); !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}

	l.err = nil
	l.value = "ok"
	got, err := svc.GetOrLoad(ctx, "k", Expiration{}, l.load)
	if err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if got != "ok" || l.calls != 2 {
		t.Errorf("expected fresh load after error, got %v after %d loads", got, l.calls)
	}
}

func TestGetOrLoad_KeysAreIndependent(t *testing.T) {
	clock := newFakeClock()
	svc := newTestService(t, clock)
	ctx := context.Background()

	a := &loader{value: "a"}
	b := &loader{value: "b"}

	gotA, _ := svc.GetOrLoad(ctx, "a", Expiration{}, a.load)
	gotB, _ := svc.GetOrLoad(ctx, "b", Expiration{}, b.load)
	if gotA != "a" || gotB != "b" {
		t.Errorf("expected a/b, got %v/%v", gotA, gotB)
	}
}

func TestResolve(t *testing.T) {
	svc := newTestService(t, newFakeClock())

	got := svc.resolve(Expiration{Absolute: time.Hour, Sliding: -time.Second})
	if got.Absolute != 5*time.Minute {
		t.Errorf("expected absolute capped to 5m, got %v", got.Absolute)
	}
	if got.Sliding != 2*time.Minute {
		t.Errorf("expected sliding default 2m, got %v", got.Sliding)
	}

	got = svc.resolve(Expiration{Absolute: time.Minute, Sliding: 30 * time.Second})
	if got.Absolute != time.Minute || got.Sliding != 30*time.Second {
		t.Errorf("expected explicit values kept, got %+v", got)
	}
}
