package testsupport

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-heroes/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeroesAreValidAndUnsaved(t *testing.T) {
	heroes := Heroes(t)
	require.Len(t, heroes, 6)

	names := map[string]bool{}
	for _, h := range heroes {
		assert.Zero(t, h.ID)
		assert.NoError(t, h.Validate(), h.Name)
		assert.False(t, names[h.Name], "duplicate fixture %s", h.Name)
		names[h.Name] = true
	}
	assert.False(t, names["Thor"], "fixtures must not clash with the seed")
}

func TestHeroesReturnsCopies(t *testing.T) {
	first := Heroes(t)
	first[0].Name = "changed"

	assert.Equal(t, "Loki", Heroes(t)[0].Name)
}

func TestConfigIsValid(t *testing.T) {
	cfg := Config(t)

	assert.NoError(t, config.Validate(cfg))
	assert.NotEqual(t, cfg.Primary.DSN, cfg.Secondary.DSN)
	assert.Equal(t, 10, cfg.Limits().DefaultPageSize)
}

func TestPNGDecodes(t *testing.T) {
	img, err := png.Decode(bytes.NewReader(PNG(t)))
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestLoadFixtureJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"Thor","place":"Asgard"}`), 0o644))

	var got map[string]string
	LoadFixtureJSON(t, path, &got)
	assert.Equal(t, map[string]string{"name": "Thor", "place": "Asgard"}, got)
}

func TestCompareJSONWithGoldenCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden", "out.json")

	CompareJSONWithGolden(t, path, []byte(`{"b":2,"a":1}`))
	assert.Equal(t, `{"b":2,"a":1}`, string(LoadFixture(t, path)))

	CompareJSONWithGolden(t, path, []byte(`{ "a": 1, "b": 2 }`))
}

func TestPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("testdata", "heroes.json"), FixturePath("heroes.json"))
	assert.Equal(t, filepath.Join("testdata", "golden", "list.json"), GoldenPath("list.json"))
}
