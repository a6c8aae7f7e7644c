package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

var (
	ingestProject  string
	ingestProvider string
	ingestName     string
	ingestJSON     bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a text document into a project",
	Long: `Chunks the document, embeds every chunk with the given provider and
stores the result. Nothing is stored if any chunk fails to embed.

Markdown and HTML files are reduced to their text first; other text
files are ingested as they are. Use "-" to read the document from stdin
without conversion; --name is then required.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestProject, "project", "p", "", "project ID (required)")
	ingestCmd.Flags().StringVar(&ingestProvider, "provider", "", "embedding provider ID (required)")
	ingestCmd.Flags().StringVarP(&ingestName, "name", "n", "", "document name (default: file name)")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output result as JSON")
	ingestCmd.MarkFlagRequired("project")  //nolint:errcheck
	ingestCmd.MarkFlagRequired("provider") //nolint:errcheck
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	text, name, err := readDocument(cmd, args[0], ingestName)
	if err != nil {
		return err
	}

	result, err := ragService.IngestDocument(cmd.Context(), domain.IngestRequest{
		ProjectID:  ingestProject,
		Name:       name,
		Text:       text,
		ProviderID: ingestProvider,
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if ingestJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Ingested %q as %s (%d chunks)\n", name, result.DocumentID, result.ChunkCount)
	return nil
}

// readDocument loads the document text from path, or stdin for "-".
func readDocument(cmd *cobra.Command, path, name string) (text, docName string, err error) {
	if path == "-" {
		if name == "" {
			return "", "", errors.New("--name is required when reading from stdin")
		}
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("failed to read document: %w", err)
		}
		return string(data), name, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read document: %w", err)
	}
	text, err = extractor.Extract(cmd.Context(), path, data)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract text: %w", err)
	}
	if name == "" {
		name = filepath.Base(path)
	}
	return text, name, nil
}
