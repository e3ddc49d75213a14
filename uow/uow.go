package uow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-heroes/auditlog"
	"github.com/goliatone/go-heroes/hero"
	"github.com/goliatone/go-heroes/internal/logger"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Store names used in logs and metrics.
const (
	StorePrimary   = "primary"
	StoreSecondary = "secondary"
)

// Persister is a repository with staged changes.
type Persister interface {
	Persist(ctx context.Context, db bun.IDB) error
	Pending() int
	Reset()
	Rollback()
}

// Observer is told the outcome of every store commit.
type Observer interface {
	Committed(store string)
	CommitFailed(store string)
}

// Factory opens sessions over the primary and secondary stores.
type Factory struct {
	primary   *bun.DB
	secondary *bun.DB
	log       *zap.Logger
	observer  Observer
}

// Option customizes a Factory.
type Option func(*Factory)

func WithLogger(log *zap.Logger) Option {
	return func(f *Factory) {
		if log != nil {
			f.log = log
		}
	}
}

func WithObserver(o Observer) Option {
	return func(f *Factory) {
		f.observer = o
	}
}

// NewFactory creates a session factory. Hero records are bound to primary,
// audit records to secondary.
func NewFactory(primary, secondary *bun.DB, opts ...Option) *Factory {
	f := &Factory{
		primary:   primary,
		secondary: secondary,
		log:       logger.Named("uow"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Begin pins one connection of each store for the lifetime of the session.
// The caller must Close the session.
func (f *Factory) Begin(ctx context.Context) (*Session, error) {
	primary, err := f.primary.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire %s connection: %w", StorePrimary, err)
	}
	secondary, err := f.secondary.Conn(ctx)
	if err != nil {
		primary.Close()
		return nil, fmt.Errorf("acquire %s connection: %w", StoreSecondary, err)
	}

	id := uuid.NewString()
	return &Session{
		id:        id,
		primary:   primary,
		secondary: secondary,
		heroes:    hero.NewRepository(primary),
		audit:     auditlog.NewRepository(secondary, id),
		log:       f.log.With(logger.Session(id)),
		observer:  f.observer,
	}, nil
}

// Session groups the repositories of one request. Repositories read through
// the pinned connections and stage their writes until CommitAll.
type Session struct {
	id        string
	primary   bun.Conn
	secondary bun.Conn

	heroes *hero.Repository
	audit  *auditlog.Repository

	log      *zap.Logger
	observer Observer

	closeOnce sync.Once
	closeErr  error
}

// ID is the correlation id stamped on the audit records of the session.
func (s *Session) ID() string {
	return s.id
}

// Heroes returns the hero repository bound to the primary store.
func (s *Session) Heroes() *hero.Repository {
	return s.heroes
}

// AuditLog returns the audit repository bound to the secondary store.
func (s *Session) AuditLog() *auditlog.Repository {
	return s.audit
}

// CommitAll persists the staged changes of the primary store in one
// transaction, then those of the secondary store in another. A failing store
// is rolled back, logged and counted; the failure is not returned and does
// not stop the other store. A failed primary commit is also recorded in the
// audit log, so it reaches the secondary store.
func (s *Session) CommitAll(ctx context.Context) {
	if err := s.commit(ctx, StorePrimary, s.primary, s.heroes); err != nil {
		s.audit.Record(auditlog.LevelError,
			"Commit against {Store} failed",
			fmt.Sprintf("Commit against %s failed", StorePrimary),
			err,
			map[string]any{"Store": StorePrimary},
		)
	}
	s.commit(ctx, StoreSecondary, s.secondary, s.audit)
}

func (s *Session) commit(ctx context.Context, store string, conn bun.Conn, repos ...Persister) error {
	pending := 0
	for _, r := range repos {
		pending += r.Pending()
	}
	if pending == 0 {
		return nil
	}

	if err := persist(ctx, conn, repos); err != nil {
		for _, r := range repos {
			r.Rollback()
		}
		s.log.Warn("commit rolled back",
			logger.Store(store),
			logger.Pending(pending),
			logger.Err(err),
		)
		if s.observer != nil {
			s.observer.CommitFailed(store)
		}
		return err
	}

	for _, r := range repos {
		r.Reset()
	}
	s.log.Debug("commit", logger.Store(store), logger.Pending(pending))
	if s.observer != nil {
		s.observer.Committed(store)
	}
	return nil
}

func persist(ctx context.Context, conn bun.Conn, repos []Persister) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	for _, r := range repos {
		if err := r.Persist(ctx, tx); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close releases both connections. Only the first call has an effect.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = errors.Join(s.primary.Close(), s.secondary.Close())
	})
	return s.closeErr
}
