package cli

import (
	"bytes"
	"context"
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/core/services"
)

const testDims = 32

// --- Mock implementations ---

// hashProvider embeds text as a normalised bag of hashed words.
type hashProvider struct{}

func (hashProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, testDims)
		for _, word := range strings.Fields(strings.ToLower(text)) {
			h := fnv.New32a()
			h.Write([]byte(strings.Trim(word, ".,!?"))) //nolint:errcheck
			vec[h.Sum32()%testDims]++
		}
		var norm float64
		for _, v := range vec {
			norm += float64(v * v)
		}
		if norm > 0 {
			for j := range vec {
				vec[j] /= float32(math.Sqrt(norm))
			}
		}
		out[i] = vec
	}
	return out, nil
}

func (hashProvider) Dimensions() int            { return testDims }
func (hashProvider) ModelName() string          { return "hash" }
func (hashProvider) Ping(context.Context) error { return nil }
func (hashProvider) Close() error               { return nil }

type staticResolver map[string]driven.EmbeddingProvider

var _ driven.ProviderResolver = staticResolver(nil)

func (r staticResolver) Resolve(_ context.Context, id string) (driven.EmbeddingProvider, error) {
	p, ok := r[id]
	if !ok {
		return nil, domain.ErrUnknownProvider
	}
	return p, nil
}

func (r staticResolver) IDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// setupTestServices wires real services over in-memory stores and a
// local hashing provider registered as "local".
func setupTestServices(t *testing.T) *memory.Store {
	t.Helper()

	store := memory.NewStore()
	resolver := staticResolver{"local": hashProvider{}}

	rag, err := services.NewRAGService(store, store, resolver, domain.DefaultRAGSettings())
	require.NoError(t, err)

	SetServices(Services{
		RAG:      rag,
		Projects: services.NewProjectService(store),
		Settings: services.NewSettingsService(memory.NewConfigStore(), resolver),
	})
	t.Cleanup(func() { SetServices(Services{}) })

	return store
}

// createProject adds a project through the service and returns its ID.
func createProject(t *testing.T, name string) string {
	t.Helper()
	p, err := projectService.Create(context.Background(), name, "")
	require.NoError(t, err)
	return p.ID
}

// resetFlags restores every flag to its default so tests don't leak state
// through the package-level command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if _, ok := f.Value.(pflag.SliceValue); !ok {
			f.Value.Set(f.DefValue) //nolint:errcheck
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
