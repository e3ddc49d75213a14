package repositorycache

import (
	"context"
	"reflect"

	"github.com/goliatone/go-heroes/cache"
	"github.com/jinzhu/inflection"
)

// Lister is the read side of a repository that the cache can sit in front of.
type Lister[T any] interface {
	FindAll(ctx context.Context) ([]*T, error)
}

// CachedRepository decorates a repository listing with a read-through cache.
// Writes never go through it, so nothing is invalidated: a cached collection
// is served until its entry expires.
type CachedRepository[T any] struct {
	base          Lister[T]
	cache         cache.CacheService
	keySerializer cache.KeySerializer
	expiration    cache.Expiration
}

// Option customizes a CachedRepository.
type Option func(*options)

type options struct {
	namespace  string
	serializer cache.KeySerializer
	expiration cache.Expiration
}

// WithNamespace overrides the key namespace derived from the entity type.
func WithNamespace(namespace string) Option {
	return func(o *options) {
		o.namespace = namespace
	}
}

// WithKeySerializer replaces the namespaced default serializer.
func WithKeySerializer(serializer cache.KeySerializer) Option {
	return func(o *options) {
		o.serializer = serializer
	}
}

// WithExpiration sets the expiration stored with each entry. Zero values
// fall back to the cache service defaults.
func WithExpiration(exp cache.Expiration) Option {
	return func(o *options) {
		o.expiration = exp
	}
}

// New creates a new CachedRepository that wraps base with caching.
func New[T any](base Lister[T], cacheService cache.CacheService, opts ...Option) *CachedRepository[T] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.serializer == nil {
		if o.namespace == "" {
			o.namespace = Namespace[T]()
		}
		o.serializer = cache.NewNamespacedKeySerializer(o.namespace)
	}

	return &CachedRepository[T]{
		base:          base,
		cache:         cacheService,
		keySerializer: o.serializer,
		expiration:    o.expiration,
	}
}

// FindAll returns the cached collection, loading it from the base repository
// on a miss. The returned slice is shared between callers and must not be
// modified.
func (c *CachedRepository[T]) FindAll(ctx context.Context) ([]*T, error) {
	return cache.GetOrLoad(ctx, c.cache, c.Key(), c.expiration, func(ctx context.Context) ([]*T, error) {
		return c.base.FindAll(ctx)
	})
}

// Key returns the cache key used by FindAll.
func (c *CachedRepository[T]) Key() string {
	return c.keySerializer.SerializeKey("FindAll")
}

// Namespace returns the plural snake_case name of T, e.g. "heroes" for Hero.
func Namespace[T any]() string {
	name := reflect.TypeOf((*T)(nil)).Elem().Name()
	if name == "" {
		name = reflect.TypeOf((*T)(nil)).Elem().String()
	}
	return inflection.Plural(toSnake(name))
}
