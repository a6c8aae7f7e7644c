package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_GetSet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("rag.chunk_size", 256))
	require.NoError(t, store.Set("providers.local.model", "nomic-embed-text"))
	require.NoError(t, store.Set("providers.local.requests_per_second", 2.5))

	assert.Equal(t, 256, store.GetInt("rag.chunk_size"))
	assert.Equal(t, "nomic-embed-text", store.GetString("providers.local.model"))
	assert.InDelta(t, 2.5, store.GetFloat("providers.local.requests_per_second"), 1e-9)
	assert.InDelta(t, 256.0, store.GetFloat("rag.chunk_size"), 1e-9)

	_, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("missing"))
	assert.Zero(t, store.GetInt("missing"))
	assert.Zero(t, store.GetFloat("missing"))
}

func TestConfigStore_TypeMismatch(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("key", "string"))

	assert.Zero(t, store.GetInt("key"))
	assert.Zero(t, store.GetFloat("key"))

	require.NoError(t, store.Set("num", int64(7)))
	assert.Empty(t, store.GetString("num"))
	assert.Equal(t, 7, store.GetInt("num"))
}

func TestConfigStore_KeysAndDelete(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("providers.a.kind", "ollama"))
	require.NoError(t, store.Set("providers.a.model", "m"))
	require.NoError(t, store.Set("providers.ab.kind", "openai"))
	require.NoError(t, store.Set("rag.chunk_size", 100))

	assert.Equal(t, []string{"providers.a.kind", "providers.a.model", "providers.ab.kind"},
		store.Keys("providers."))

	require.NoError(t, store.Delete("providers.a"))
	assert.Equal(t, []string{"providers.ab.kind"}, store.Keys("providers."))
	assert.Equal(t, 100, store.GetInt("rag.chunk_size"))
}

func TestConfigStore_PersistenceNoOps(t *testing.T) {
	store := NewConfigStore()
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}
