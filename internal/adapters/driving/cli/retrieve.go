package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/services"
)

const snippetLength = 160

var (
	retrieveProject   string
	retrieveProvider  string
	retrieveTopK      int
	retrieveDiversity float64
	retrieveContext   bool
	retrieveJSON      bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Retrieve the chunks most similar to a query",
	Long: `Embeds the query with the given provider and ranks every chunk in the
project by cosine similarity. The provider must be the one the project's
documents were ingested with.

With --diversity, near-duplicate chunks are penalised so the results cover
more of the corpus. --context prints the matches as a prompt-ready block.`,
	Args: cobra.ExactArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().StringVarP(&retrieveProject, "project", "p", "", "project ID (required)")
	retrieveCmd.Flags().StringVar(&retrieveProvider, "provider", "", "embedding provider ID (required)")
	retrieveCmd.Flags().IntVarP(&retrieveTopK, "top-k", "k", 0, "number of chunks to return (default from settings)")
	retrieveCmd.Flags().Float64Var(&retrieveDiversity, "diversity", 0, "near-duplicate penalty in [0,1], e.g. 0.3")
	retrieveCmd.Flags().BoolVar(&retrieveContext, "context", false, "print matches as an LLM context block")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output results as JSON")
	retrieveCmd.MarkFlagRequired("project")  //nolint:errcheck
	retrieveCmd.MarkFlagRequired("provider") //nolint:errcheck
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	matches, err := ragService.Retrieve(cmd.Context(), domain.RetrieveRequest{
		ProjectID:  retrieveProject,
		Query:      args[0],
		ProviderID: retrieveProvider,
		TopK:       retrieveTopK,
		Diversity:  retrieveDiversity,
	})
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}

	switch {
	case retrieveJSON:
		return outputRetrieveJSON(cmd, matches)
	case retrieveContext:
		cmd.Println(services.BuildContext(matches))
		return nil
	default:
		return outputRetrieveTable(cmd, matches)
	}
}

func outputRetrieveJSON(cmd *cobra.Command, matches []domain.ChunkMatch) error {
	data, err := json.MarshalIndent(matches, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputRetrieveTable(cmd *cobra.Command, matches []domain.ChunkMatch) error {
	if len(matches) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range matches {
		// Format: [N] Document #ordinal (score)
		cmd.Printf("  [%d] %s #%d (%.3f)\n", i+1, matches[i].DocumentName, matches[i].Chunk.Ordinal, matches[i].Score)
		cmd.Printf("      %s\n", snippet(matches[i].Chunk.Content, snippetLength))
		cmd.Println()
	}
	return nil
}

// snippet collapses whitespace and truncates s to at most n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
