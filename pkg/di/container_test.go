package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-heroes/pkg/testsupport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestContainer(t *testing.T, opts ...Option) *Container {
	t.Helper()

	opts = append([]Option{
		WithLogger(zap.NewNop()),
		WithRegistry(prometheus.NewRegistry()),
		WithFs(afero.NewMemMapFs()),
		WithMigrations(),
	}, opts...)

	c, err := NewContainer(context.Background(), testsupport.Config(t), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNewContainer(t *testing.T) {
	c := newTestContainer(t)

	assert.NotNil(t, c.CacheService())
	assert.NotNil(t, c.Sessions())
	assert.NotNil(t, c.Heroes())
	assert.NotNil(t, c.Metrics())
	assert.Equal(t, "heroes::FindAll", c.Listing().Key())
	assert.Equal(t, 10, c.Config().Paging.DefaultPageSize)
	assert.NoError(t, c.Ping(context.Background()))
}

func TestNewContainerNilConfig(t *testing.T) {
	_, err := NewContainer(context.Background(), nil)
	assert.Error(t, err)
}

func TestNewContainerUnreachablePrimary(t *testing.T) {
	cfg := testsupport.Config(t)
	cfg.Primary.DSN = "file:" + filepath.Join(t.TempDir(), "missing", "primary.db")

	_, err := NewContainer(context.Background(), cfg, WithLogger(zap.NewNop()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "primary store")
}

func TestNewContainerUnknownSecondaryDriver(t *testing.T) {
	cfg := testsupport.Config(t)
	cfg.Secondary.Driver = "mysql"

	_, err := NewContainer(context.Background(), cfg, WithLogger(zap.NewNop()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secondary store")
}

func TestNewContainerInvalidCache(t *testing.T) {
	cfg := testsupport.Config(t)
	cfg.Cache.Capacity = 0

	_, err := NewContainer(context.Background(), cfg, WithLogger(zap.NewNop()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache")
}

func TestWithoutMigrationsTablesAreMissing(t *testing.T) {
	c, err := NewContainer(context.Background(), testsupport.Config(t),
		WithLogger(zap.NewNop()),
		WithFs(afero.NewMemMapFs()),
	)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Listing().FindAll(context.Background())
	assert.Error(t, err)
}

func TestPingAfterClose(t *testing.T) {
	c := newTestContainer(t)
	require.NoError(t, c.Close())

	assert.Error(t, c.Ping(context.Background()))
}

func TestHealthz(t *testing.T) {
	c := newTestContainer(t)
	h := c.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, c.Close())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
