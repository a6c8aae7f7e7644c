package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".ragkit", "config.toml"), store.Path())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("rag.chunk_size", 256))
	require.NoError(t, store.Set("providers.local.model", "nomic-embed-text"))
	require.NoError(t, store.Set("providers.local.requests_per_second", 1.5))

	assert.Equal(t, 256, store.GetInt("rag.chunk_size"))
	assert.Equal(t, "nomic-embed-text", store.GetString("providers.local.model"))
	assert.InDelta(t, 1.5, store.GetFloat("providers.local.requests_per_second"), 1e-9)

	// Wrong types read as zero values.
	assert.Empty(t, store.GetString("rag.chunk_size"))
	assert.Zero(t, store.GetInt("providers.local.model"))
	assert.Zero(t, store.GetFloat("providers.local.model"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_Persistence_NestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("rag.chunk_size", 128))
	require.NoError(t, store.Set("rag.chunk_overlap", 16))
	require.NoError(t, store.Set("providers.cloud.kind", "openai"))
	require.NoError(t, store.Set("providers.cloud.requests_per_second", 2.0))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[rag]")
	assert.Contains(t, string(raw), "[providers.cloud]")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	// TOML integers come back as int64.
	assert.Equal(t, 128, reloaded.GetInt("rag.chunk_size"))
	assert.Equal(t, 16, reloaded.GetInt("rag.chunk_overlap"))
	assert.Equal(t, "openai", reloaded.GetString("providers.cloud.kind"))
	assert.InDelta(t, 2.0, reloaded.GetFloat("providers.cloud.requests_per_second"), 1e-9)
	assert.InDelta(t, 128.0, reloaded.GetFloat("rag.chunk_size"), 1e-9)
}

func TestConfigStore_KeysAndDelete(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("providers.a.kind", "ollama"))
	require.NoError(t, store.Set("providers.a.model", "m"))
	require.NoError(t, store.Set("providers.ab.kind", "openai"))

	assert.Equal(t, []string{"providers.a.kind", "providers.a.model", "providers.ab.kind"},
		store.Keys("providers."))

	require.NoError(t, store.Delete("providers.a"))
	assert.Equal(t, []string{"providers.ab.kind"}, store.Keys("providers."))

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"providers.ab.kind"}, reloaded.Keys("providers."))
}

func TestConfigStore_Save_ConflictingKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("rag", "scalar"))
	err = store.Set("rag.chunk_size", 10)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestConfigStore_Load_NonExistent(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, os.Remove(store.Path()))
	assert.NoError(t, store.Load())
	assert.Empty(t, store.Keys(""))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("providers.cloud.api_key", "sk-secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is not valid TOML {{{[["), 0600)
	require.NoError(t, err)

	store, err := NewConfigStore(tmpDir)

	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	assert.Nil(t, store)
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("test", "value"))

	// Replace the file with a directory to cause write error
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("another", "value"))
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	// Channels cannot be marshaled to TOML
	assert.Error(t, store.Set("channel", make(chan int)))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = store.Set("rag.chunk_size", i)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("rag.chunk_size")
		}()
	}
	wg.Wait()

	_, ok := store.Get("rag.chunk_size")
	assert.True(t, ok)
}

func TestFlattenNest_RoundTrip(t *testing.T) {
	flat := map[string]any{
		"rag.chunk_size":       int64(512),
		"providers.x.kind":     "ollama",
		"providers.x.base_url": "http://localhost:11434",
		"storage.path":         "/tmp/rag.db",
	}

	nested, err := nestMap(flat)
	require.NoError(t, err)
	assert.Equal(t, flat, flattenMap(nested, ""))
}
