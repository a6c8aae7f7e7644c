package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long:  `View and change chunking, embedding and retrieval settings.`,
	RunE:  runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsRAGCmd = &cobra.Command{
	Use:   "rag",
	Short: "Change chunking, embedding and retrieval settings",
	Long: `Updates the settings named by the given flags and leaves the rest unchanged.

Changing chunk size or overlap only affects documents ingested afterwards.`,
	RunE: runSettingsRAG,
}

func init() {
	f := settingsRAGCmd.Flags()
	f.Int("chunk-size", 0, "chunk size in characters")
	f.Int("chunk-overlap", 0, "characters shared by consecutive chunks")
	f.Int("batch-size", 0, "texts per embedding request")
	f.Int("max-concurrency", 0, "embedding requests in flight per call")
	f.Int("max-attempts", 0, "attempts per embedding batch, including the first")
	f.Int("top-k", 0, "default number of retrieval results")
	f.Int("max-document-bytes", 0, "largest accepted document")
	f.Duration("provider-timeout", 0, "timeout for one embedding request")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsRAGCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	rag := settings.RAG
	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Chunk size:     %d\n", rag.ChunkSize)
	cmd.Printf("  Chunk overlap:  %d\n", rag.ChunkOverlap)
	cmd.Printf("  Max document:   %d bytes\n", rag.MaxDocumentBytes)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Batch size:       %d\n", rag.EmbeddingBatchSize)
	cmd.Printf("  Max concurrency:  %d\n", rag.EmbeddingMaxConcurrency)
	cmd.Printf("  Max attempts:     %d\n", rag.EmbeddingMaxAttempts)
	cmd.Printf("  Request timeout:  %s\n", rag.ProviderTimeout)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Default top-k:  %d\n", rag.DefaultTopK)
	cmd.Println()

	cmd.Println("[Providers]")
	if len(settings.Providers) == 0 {
		cmd.Println("  (none)")
	}
	for _, p := range settings.Providers {
		status := "configured"
		if !p.IsConfigured() {
			status = "incomplete"
		}
		cmd.Printf("  %s: %s, %s (%s)\n", p.ID, p.Kind, p.Model, status)
	}
	return nil
}

func runSettingsRAG(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	rag := settings.RAG
	f := cmd.Flags()
	ints := map[string]*int{
		"chunk-size":         &rag.ChunkSize,
		"chunk-overlap":      &rag.ChunkOverlap,
		"batch-size":         &rag.EmbeddingBatchSize,
		"max-concurrency":    &rag.EmbeddingMaxConcurrency,
		"max-attempts":       &rag.EmbeddingMaxAttempts,
		"top-k":              &rag.DefaultTopK,
		"max-document-bytes": &rag.MaxDocumentBytes,
	}
	changed := 0
	for name, dst := range ints {
		if !f.Changed(name) {
			continue
		}
		v, err := f.GetInt(name)
		if err != nil {
			return err
		}
		*dst = v
		changed++
	}
	if f.Changed("provider-timeout") {
		v, err := f.GetDuration("provider-timeout")
		if err != nil {
			return err
		}
		rag.ProviderTimeout = v
		changed++
	}

	if changed == 0 {
		return errors.New("no settings given; see 'ragkit settings rag --help'")
	}

	if err := settingsService.SaveRAG(rag); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println("Settings saved.")
	return nil
}
