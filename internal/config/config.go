package config

import (
	"time"

	"github.com/goliatone/go-heroes/cache"
	"github.com/goliatone/go-heroes/internal/logger"
	"github.com/goliatone/go-heroes/internal/storage"
	"github.com/goliatone/go-heroes/query"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Log       LogConfig       `mapstructure:"log" validate:"required"`
	Primary   storage.Config  `mapstructure:"primary" validate:"required"`
	Secondary storage.Config  `mapstructure:"secondary" validate:"required"`
	Cache     CacheConfig     `mapstructure:"cache" validate:"required"`
	Paging    PagingConfig    `mapstructure:"paging" validate:"required"`
	Resources ResourcesConfig `mapstructure:"resources" validate:"required"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes" validate:"gt=0"`
}

type LogConfig struct {
	Env   string `mapstructure:"env" validate:"required,oneof=dev prod"`
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// CacheConfig sizes the listing cache and sets its expiration.
type CacheConfig struct {
	Capacity           int           `mapstructure:"capacity" validate:"gt=0"`
	NumShards          int           `mapstructure:"num_shards" validate:"gt=0"`
	AbsoluteExpiration time.Duration `mapstructure:"absolute_expiration" validate:"gt=0"`
	SlidingExpiration  time.Duration `mapstructure:"sliding_expiration" validate:"gte=0,ltefield=AbsoluteExpiration"`
	EvictionPercentage int           `mapstructure:"eviction_percentage" validate:"gte=1,lte=100"`
	EvictionInterval   time.Duration `mapstructure:"eviction_interval" validate:"gte=0"`
}

type PagingConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size" validate:"gt=0,ltefield=MaxPageSize"`
	MaxPageSize     int `mapstructure:"max_page_size" validate:"gt=0"`
}

// ResourcesConfig locates hero images on disk.
type ResourcesConfig struct {
	Root      string `mapstructure:"root" validate:"required"`
	ImagesDir string `mapstructure:"images_dir" validate:"required"`
}

// CacheService returns the cache package configuration.
func (c *Config) CacheService() cache.Config {
	return cache.Config{
		Capacity:           c.Cache.Capacity,
		NumShards:          c.Cache.NumShards,
		AbsoluteExpiration: c.Cache.AbsoluteExpiration,
		SlidingExpiration:  c.Cache.SlidingExpiration,
		EvictionPercentage: c.Cache.EvictionPercentage,
		EvictionInterval:   c.Cache.EvictionInterval,
	}
}

// Limits returns the page size limits.
func (c *Config) Limits() query.Limits {
	return query.Limits{
		DefaultPageSize: c.Paging.DefaultPageSize,
		MaxPageSize:     c.Paging.MaxPageSize,
	}
}

// Logger returns the logger configuration.
func (c *Config) Logger() logger.Config {
	return logger.Config{
		Env:         c.Log.Env,
		Level:       c.Log.Level,
		ServiceName: "heroes",
	}
}
