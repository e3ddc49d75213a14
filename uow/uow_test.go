package uow

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/goliatone/go-heroes/auditlog"
	"github.com/goliatone/go-heroes/hero"
	"github.com/goliatone/go-heroes/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"go.uber.org/zap"
)

type recordingObserver struct {
	mu     sync.Mutex
	ok     map[string]int
	failed map[string]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{ok: map[string]int{}, failed: map[string]int{}}
}

func (o *recordingObserver) Committed(store string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ok[store]++
}

func (o *recordingObserver) CommitFailed(store string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed[store]++
}

type stores struct {
	primary   *bun.DB
	secondary *bun.DB
}

func openStores(t *testing.T) stores {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	primary, err := storage.Open(ctx, storage.Config{Driver: storage.DriverSQLite, DSN: "file:" + filepath.Join(dir, "primary.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { primary.Close() })

	secondary, err := storage.Open(ctx, storage.Config{Driver: storage.DriverSQLite, DSN: "file:" + filepath.Join(dir, "secondary.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { secondary.Close() })

	require.NoError(t, storage.Migrate(ctx, primary, secondary))
	return stores{primary: primary, secondary: secondary}
}

func loki() *hero.Hero {
	return &hero.Hero{Name: "Loki", FirstName: "Loki", LastName: "Laufeyson", Place: "Jotunheim"}
}

func countHeroes(t *testing.T, db *bun.DB) int {
	t.Helper()
	n, err := db.NewSelect().Model((*hero.Hero)(nil)).Count(context.Background())
	require.NoError(t, err)
	return n
}

func auditRecords(t *testing.T, db *bun.DB, sessionID string) []*auditlog.Record {
	t.Helper()
	records, err := auditlog.NewRepository(db, "").BySession(context.Background(), sessionID)
	require.NoError(t, err)
	return records
}

func TestCommitAllPersistsBothStores(t *testing.T) {
	st := openStores(t)
	obs := newRecordingObserver()
	f := NewFactory(st.primary, st.secondary, WithObserver(obs), WithLogger(zap.NewNop()))
	ctx := context.Background()

	s, err := f.Begin(ctx)
	require.NoError(t, err)
	defer s.Close()

	h := s.Heroes().Create(loki())
	s.AuditLog().Record(auditlog.LevelInformation, "Created {Name}", "Created Loki", nil, map[string]any{"Name": "Loki"})

	// Staged writes are not visible before commit.
	assert.Equal(t, 1, countHeroes(t, st.primary))
	assert.False(t, s.Heroes().Persisted(h))

	s.CommitAll(ctx)

	assert.True(t, s.Heroes().Persisted(h))
	assert.Equal(t, 2, countHeroes(t, st.primary))
	assert.Zero(t, s.Heroes().Pending())

	records := auditRecords(t, st.secondary, s.ID())
	require.Len(t, records, 1)
	assert.Equal(t, "Created Loki", records[0].Message)
	assert.JSONEq(t, `{"Name":"Loki"}`, records[0].Properties)

	assert.Equal(t, 1, obs.ok[StorePrimary])
	assert.Equal(t, 1, obs.ok[StoreSecondary])
}

func TestCommitAllSwallowsPrimaryConstraintFailure(t *testing.T) {
	st := openStores(t)
	obs := newRecordingObserver()
	f := NewFactory(st.primary, st.secondary, WithObserver(obs), WithLogger(zap.NewNop()))
	ctx := context.Background()

	s, err := f.Begin(ctx)
	require.NoError(t, err)
	defer s.Close()

	first := s.Heroes().Create(loki())
	dup := s.Heroes().Create(&hero.Hero{Name: "Thor", FirstName: "Thor", LastName: "Odinson", Place: "Asgard"})

	s.CommitAll(ctx)

	// Neither create survived the rolled back transaction.
	assert.Equal(t, 1, countHeroes(t, st.primary))
	assert.False(t, s.Heroes().Persisted(first))
	assert.False(t, s.Heroes().Persisted(dup))
	assert.Equal(t, 1, obs.failed[StorePrimary])

	// The failure was recorded on the independent secondary store.
	records := auditRecords(t, st.secondary, s.ID())
	require.Len(t, records, 1)
	assert.Equal(t, auditlog.LevelError, records[0].Level)
	assert.Contains(t, records[0].Exception, "constraint")
	assert.Equal(t, 1, obs.ok[StoreSecondary])
}

func TestCommitAllWithoutChangesIsNoop(t *testing.T) {
	st := openStores(t)
	obs := newRecordingObserver()
	f := NewFactory(st.primary, st.secondary, WithObserver(obs))
	ctx := context.Background()

	s, err := f.Begin(ctx)
	require.NoError(t, err)
	defer s.Close()

	s.CommitAll(ctx)
	assert.Empty(t, obs.ok)
	assert.Empty(t, obs.failed)
}

func TestSessionsHaveDistinctIDs(t *testing.T) {
	st := openStores(t)
	f := NewFactory(st.primary, st.secondary)
	ctx := context.Background()

	a, err := f.Begin(ctx)
	require.NoError(t, err)
	defer a.Close()
	b, err := f.Begin(ctx)
	require.NoError(t, err)
	defer b.Close()

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestCloseIsIdempotent(t *testing.T) {
	st := openStores(t)
	f := NewFactory(st.primary, st.secondary)

	s, err := f.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestCommitAllBeginFailure(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqldb.Close()
	primary := bun.NewDB(sqldb, pgdialect.New())

	st := openStores(t)
	obs := newRecordingObserver()
	f := NewFactory(primary, st.secondary, WithObserver(obs), WithLogger(zap.NewNop()))
	ctx := context.Background()

	s, err := f.Begin(ctx)
	require.NoError(t, err)
	defer s.Close()

	mock.ExpectBegin().WillReturnError(errors.New("connection reset"))

	h := s.Heroes().Create(loki())
	h.ID = 42 // stale identity from an earlier attempt
	s.CommitAll(ctx)

	assert.False(t, s.Heroes().Persisted(h))
	assert.Zero(t, s.Heroes().Pending())
	assert.Equal(t, 1, obs.failed[StorePrimary])

	records := auditRecords(t, st.secondary, s.ID())
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Exception, "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}
