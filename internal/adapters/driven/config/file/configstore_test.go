package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ConfigStore {
	t.Helper()

	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("ollama.model", "llama3.2"))

	val, ok := store.Get("ollama.model")
	assert.True(t, ok)
	assert.Equal(t, "llama3.2", val)
}

func TestConfigStore_GetString(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("qdrant.address", "localhost:6334"))

	assert.Equal(t, "localhost:6334", store.GetString("qdrant.address"))
	assert.Equal(t, "", store.GetString("missing.key"))
}

func TestConfigStore_GetInt(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("crawl.max_pages", 50))

	assert.Equal(t, 50, store.GetInt("crawl.max_pages"))
	assert.Equal(t, 0, store.GetInt("missing.key"))
}

func TestConfigStore_GetFloat(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("search.min_relevance", 0.3))
	require.NoError(t, store.Set("search.limit", 5))

	assert.InDelta(t, 0.3, store.GetFloat("search.min_relevance"), 1e-9)
	// Integers are promoted to float.
	assert.InDelta(t, 5.0, store.GetFloat("search.limit"), 1e-9)
	assert.Zero(t, store.GetFloat("missing.key"))
}

func TestConfigStore_GetBool(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("verbose", true))

	assert.True(t, store.GetBool("verbose"))
	assert.False(t, store.GetBool("missing.key"))
}

func TestConfigStore_GetStringSlice(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("crawl.seeds", []string{"https://www.unizg.hr", "https://www.fer.unizg.hr"}))

	seeds := store.GetStringSlice("crawl.seeds")
	assert.Equal(t, []string{"https://www.unizg.hr", "https://www.fer.unizg.hr"}, seeds)
	assert.Nil(t, store.GetStringSlice("missing.key"))
}

func TestConfigStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	store1, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store1.Set("ollama.model", "llama3.2"))
	require.NoError(t, store1.Set("crawl.max_depth", 2))

	store2, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "llama3.2", store2.GetString("ollama.model"))
	assert.Equal(t, 2, store2.GetInt("crawl.max_depth"))
}

func TestConfigStore_LoadFlattensNestedTables(t *testing.T) {
	dir := t.TempDir()

	raw := "[crawl]\nmax_pages = 25\nuser_agent = \"campusrag/1.0\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(raw), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, 25, store.GetInt("crawl.max_pages"))
	assert.Equal(t, "campusrag/1.0", store.GetString("crawl.user_agent"))
}

func TestConfigStore_MissingFileStartsEmpty(t *testing.T) {
	store := newTestStore(t)

	_, ok := store.Get("anything")
	assert.False(t, ok)
}

func TestConfigStore_Path(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}
