package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/goliatone/go-heroes/cache"
	"github.com/goliatone/go-heroes/hero"
	"github.com/goliatone/go-heroes/internal/attachment"
	"github.com/goliatone/go-heroes/internal/config"
	"github.com/goliatone/go-heroes/internal/httpapi"
	"github.com/goliatone/go-heroes/internal/logger"
	"github.com/goliatone/go-heroes/internal/metrics"
	"github.com/goliatone/go-heroes/internal/service"
	"github.com/goliatone/go-heroes/internal/storage"
	"github.com/goliatone/go-heroes/repositorycache"
	"github.com/goliatone/go-heroes/uow"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Container owns the long lived components of the heroes service: both
// stores, the listing cache, the unit of work factory and the catalog
// service. Components are built once by NewContainer and shared by every
// request.
type Container struct {
	config    *config.Config
	log       *zap.Logger
	primary   *bun.DB
	secondary *bun.DB
	metrics   *metrics.Metrics
	cache     cache.CacheService
	listing   *repositorycache.CachedRepository[hero.Hero]
	sessions  *uow.Factory
	images    *attachment.Store
	heroes    *service.Heroes
}

// Option customizes NewContainer.
type Option func(*options)

type options struct {
	log       *zap.Logger
	registry  *prometheus.Registry
	fs        afero.Fs
	migrate   bool
	cacheOpts []cache.Option
}

// WithLogger uses log instead of initializing the process logger from the
// configuration.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithRegistry registers the metrics on reg.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithFs keeps hero images on fs, rooted at the configured images directory.
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithMigrations creates the schema and seeds the catalog while the
// container starts.
func WithMigrations() Option {
	return func(o *options) {
		o.migrate = true
	}
}

// WithCacheOptions passes opts to the listing cache.
func WithCacheOptions(opts ...cache.Option) Option {
	return func(o *options) {
		o.cacheOpts = append(o.cacheOpts, opts...)
	}
}

// NewContainer connects to both stores and wires the service. The stores
// are closed again if a later step fails.
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("di: nil config")
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Init(cfg.Logger())
	}
	if o.registry == nil {
		o.registry = prometheus.NewRegistry()
	}

	c := &Container{config: cfg, log: o.log}

	var err error
	if c.primary, err = storage.Open(ctx, cfg.Primary, o.log.Named("primary")); err != nil {
		return nil, fmt.Errorf("primary store: %w", err)
	}
	if c.secondary, err = storage.Open(ctx, cfg.Secondary, o.log.Named("secondary")); err != nil {
		c.primary.Close()
		return nil, fmt.Errorf("secondary store: %w", err)
	}

	if err := c.wire(ctx, o); err != nil {
		return nil, errors.Join(err, c.Close())
	}

	o.log.Info("container ready",
		zap.String("primary_driver", cfg.Primary.Driver),
		zap.String("secondary_driver", cfg.Secondary.Driver),
		zap.Bool("migrated", o.migrate),
	)
	return c, nil
}

func (c *Container) wire(ctx context.Context, o options) error {
	if o.migrate {
		if err := storage.Migrate(ctx, c.primary, c.secondary); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	m, err := metrics.New(o.registry)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	c.metrics = m

	cacheCfg := c.config.CacheService()
	cacheOpts := append([]cache.Option{cache.WithObserver(m)}, o.cacheOpts...)
	if c.cache, err = cache.NewCacheService(cacheCfg, cacheOpts...); err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	c.listing = repositorycache.New[hero.Hero](
		hero.NewRepository(c.primary),
		c.cache,
		repositorycache.WithExpiration(cacheCfg.Expiration()),
	)

	c.sessions = uow.NewFactory(c.primary, c.secondary,
		uow.WithLogger(c.log.Named("uow")),
		uow.WithObserver(m),
	)

	if o.fs != nil {
		c.images = attachment.New(o.fs, c.config.Resources.ImagesDir)
	} else {
		c.images = attachment.NewOS(c.config.Resources.Root, c.config.Resources.ImagesDir)
	}

	c.heroes = service.NewHeroes(c.sessions, c.listing, c.images, service.WithLimits(c.config.Limits()))
	return nil
}

// Handler returns the HTTP API backed by the container.
func (c *Container) Handler() http.Handler {
	return httpapi.NewRouter(httpapi.RouterConfig{
		Heroes:         c.heroes,
		Metrics:        c.metrics,
		Logger:         c.log.Named("http"),
		Health:         c.Ping,
		MaxUploadBytes: c.config.Server.MaxUploadBytes,
	})
}

// Ping checks that both stores are reachable.
func (c *Container) Ping(ctx context.Context) error {
	if err := c.primary.PingContext(ctx); err != nil {
		return fmt.Errorf("primary store: %w", err)
	}
	if err := c.secondary.PingContext(ctx); err != nil {
		return fmt.Errorf("secondary store: %w", err)
	}
	return nil
}

// Close releases both stores.
func (c *Container) Close() error {
	var errs []error
	if c.primary != nil {
		errs = append(errs, c.primary.Close())
	}
	if c.secondary != nil {
		errs = append(errs, c.secondary.Close())
	}
	return errors.Join(errs...)
}

// Config returns the configuration the container was built from.
func (c *Container) Config() *config.Config { return c.config }

// Logger returns the container logger.
func (c *Container) Logger() *zap.Logger { return c.log }

// Primary returns the catalog store.
func (c *Container) Primary() *bun.DB { return c.primary }

// Secondary returns the audit log store.
func (c *Container) Secondary() *bun.DB { return c.secondary }

// CacheService returns the listing cache.
func (c *Container) CacheService() cache.CacheService { return c.cache }

// Listing returns the cached hero listing.
func (c *Container) Listing() *repositorycache.CachedRepository[hero.Hero] { return c.listing }

// Sessions returns the unit of work factory.
func (c *Container) Sessions() *uow.Factory { return c.sessions }

// Heroes returns the catalog service.
func (c *Container) Heroes() *service.Heroes { return c.heroes }

// Metrics returns the service metrics.
func (c *Container) Metrics() *metrics.Metrics { return c.metrics }
