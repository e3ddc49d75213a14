package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"go.uber.org/zap"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// ErrUnsupportedDriver is returned by Open for drivers other than postgres and sqlite3.
var ErrUnsupportedDriver = errors.New("storage: unsupported driver")

// Config describes one store.
type Config struct {
	Driver          string        `mapstructure:"driver" validate:"required,oneof=postgres sqlite3"`
	DSN             string        `mapstructure:"dsn" validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
	LogQueries      bool          `mapstructure:"log_queries"`
}

// Open connects to the store described by cfg and checks it is reachable.
// Queries are logged at debug level on log when cfg.LogQueries is set.
func Open(ctx context.Context, cfg Config, log *zap.Logger) (*bun.DB, error) {
	sqldb, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	db, err := Wrap(sqldb, cfg.Driver)
	if err != nil {
		sqldb.Close()
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if cfg.LogQueries && log != nil {
		db.AddQueryHook(NewQueryHook(log))
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}
	return db, nil
}

// Wrap binds an open *sql.DB to the bun dialect of driver.
func Wrap(sqldb *sql.DB, driver string) (*bun.DB, error) {
	switch driver {
	case DriverPostgres:
		return bun.NewDB(sqldb, pgdialect.New()), nil
	case DriverSQLite:
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// QueryHook logs every statement bun executes.
type QueryHook struct {
	log *zap.Logger
}

var _ bun.QueryHook = (*QueryHook)(nil)

func NewQueryHook(log *zap.Logger) *QueryHook {
	return &QueryHook{log: log.Named("sql")}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	fields := []zap.Field{
		zap.String("operation", event.Operation()),
		zap.String("query", event.Query),
		zap.Duration("duration", time.Since(event.StartTime)),
	}
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		h.log.Warn("query failed", append(fields, zap.Error(event.Err))...)
		return
	}
	h.log.Debug("query", fields...)
}
