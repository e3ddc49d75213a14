package testsupport

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-heroes/hero"
	"github.com/goliatone/go-heroes/internal/config"
	"github.com/goliatone/go-heroes/internal/storage"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/heroes.json
var heroesJSON []byte

// Heroes returns a fresh copy of the hero fixtures. None of them has an id.
func Heroes(t testing.TB) []*hero.Hero {
	t.Helper()

	var heroes []*hero.Hero
	require.NoError(t, json.Unmarshal(heroesJSON, &heroes), "decode hero fixtures")
	return heroes
}

// SQLiteStore returns the configuration of a sqlite store in a per test
// temporary directory.
func SQLiteStore(t testing.TB, name string) storage.Config {
	t.Helper()
	return storage.Config{
		Driver:       storage.DriverSQLite,
		DSN:          "file:" + filepath.Join(t.TempDir(), name) + "?_busy_timeout=5000",
		MaxOpenConns: 4,
	}
}

// Config returns a valid service configuration backed by sqlite stores.
func Config(t testing.TB) *config.Config {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Addr:            "127.0.0.1:0",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: time.Second,
			MaxUploadBytes:  1 << 20,
		},
		Log:       config.LogConfig{Env: "dev", Level: "error"},
		Primary:   SQLiteStore(t, "primary.db"),
		Secondary: SQLiteStore(t, "secondary.db"),
		Cache: config.CacheConfig{
			Capacity:           128,
			NumShards:          4,
			AbsoluteExpiration: 5 * time.Minute,
			SlidingExpiration:  2 * time.Minute,
			EvictionPercentage: 10,
		},
		Paging:    config.PagingConfig{DefaultPageSize: 10, MaxPageSize: 50},
		Resources: config.ResourcesConfig{Root: t.TempDir(), ImagesDir: "Resources/Images"},
	}
	require.NoError(t, config.Validate(cfg))
	return cfg
}

// PNG encodes a small opaque image.
func PNG(t testing.TB) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err, "load fixture %s", path)
	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
func LoadFixtureJSON(t testing.TB, path string, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(LoadFixture(t, path), dest), "decode fixture %s", path)
}

// CompareJSONWithGolden compares actual with the JSON document in a golden
// file. Formatting and key order are ignored. A missing golden file is
// written from actual.
func CompareJSONWithGolden(t testing.TB, path string, actual []byte) {
	t.Helper()

	expected, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		t.Logf("golden file %s does not exist, creating it", path)
		WriteGolden(t, path, actual)
		return
	}
	require.NoError(t, err, "read golden file %s", path)
	require.JSONEq(t, string(expected), string(actual), "output mismatch for %s", path)
}

// WriteGolden writes test output to a golden file, creating its directory.
func WriteGolden(t testing.TB, path string, data []byte) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// GoldenPath constructs a path to a golden file relative to the testdata directory.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", "golden", filename)
}
