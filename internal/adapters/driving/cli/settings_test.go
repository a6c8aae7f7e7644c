package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

func TestSettingsShow(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "", "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Chunk size:     512")
	assert.Contains(t, out, "Chunk overlap:  50")
	assert.Contains(t, out, "Default top-k:  5")
	assert.Contains(t, out, "(none)")
}

func TestSettingsRAG_UpdatesOnlyGivenFlags(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "", "settings", "rag", "--chunk-size", "256", "--provider-timeout", "10s")

	require.NoError(t, err)
	assert.Contains(t, out, "Settings saved.")

	settings, err := settingsService.Get()
	require.NoError(t, err)
	assert.Equal(t, 256, settings.RAG.ChunkSize)
	assert.Equal(t, 10*time.Second, settings.RAG.ProviderTimeout)
	assert.Equal(t, domain.DefaultChunkOverlap, settings.RAG.ChunkOverlap)
	assert.Equal(t, domain.DefaultTopK, settings.RAG.DefaultTopK)
}

func TestSettingsRAG_RejectsInconsistentValues(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "settings", "rag", "--chunk-overlap", "600")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestSettingsRAG_NoFlags(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "settings", "rag")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no settings given")
}
