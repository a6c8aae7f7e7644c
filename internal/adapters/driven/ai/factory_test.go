package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

func TestCreateEmbeddingProvider(t *testing.T) {
	tests := []struct {
		name      string
		settings  domain.ProviderSettings
		wantModel string
		wantDims  int
		wantErr   error
	}{
		{
			name:      "ollama with defaults",
			settings:  domain.ProviderSettings{ID: "local", Kind: domain.AIProviderOllama},
			wantModel: "nomic-embed-text",
			wantDims:  768,
		},
		{
			name: "ollama with explicit dimensions",
			settings: domain.ProviderSettings{
				ID: "local", Kind: domain.AIProviderOllama, Model: "custom", Dimensions: 42,
			},
			wantModel: "custom",
			wantDims:  42,
		},
		{
			name: "openai",
			settings: domain.ProviderSettings{
				ID: "cloud", Kind: domain.AIProviderOpenAI, APIKey: "sk-test", Model: "text-embedding-3-large",
			},
			wantModel: "text-embedding-3-large",
			wantDims:  3072,
		},
		{
			name:     "unknown kind",
			settings: domain.ProviderSettings{ID: "x", Kind: "cohere"},
			wantErr:  domain.ErrInvalidConfig,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CreateEmbeddingProvider(tt.settings)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, p.ModelName())
			assert.Equal(t, tt.wantDims, p.Dimensions())
		})
	}
}

func TestCreateEmbeddingProvider_OpenAIKeyFromEnv(t *testing.T) {
	t.Setenv(EnvOpenAIAPIKey, "")
	_, err := CreateEmbeddingProvider(domain.ProviderSettings{ID: "cloud", Kind: domain.AIProviderOpenAI})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	t.Setenv(EnvOpenAIAPIKey, "sk-env")
	p, err := CreateEmbeddingProvider(domain.ProviderSettings{ID: "cloud", Kind: domain.AIProviderOpenAI})
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-small", p.ModelName())
}

func TestCreateAndValidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models":[]}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	p, err := CreateAndValidate(context.Background(), domain.ProviderSettings{
		ID: "local", Kind: domain.AIProviderOllama, BaseURL: server.URL,
	})
	require.NoError(t, err)
	assert.NotNil(t, p)

	closed := httptest.NewServer(http.NotFoundHandler())
	url := closed.URL
	closed.Close()

	_, err = CreateAndValidate(context.Background(), domain.ProviderSettings{
		ID: "local", Kind: domain.AIProviderOllama, BaseURL: url,
	})
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}
