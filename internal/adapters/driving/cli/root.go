// Package cli provides the ragkit command line interface.
package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
	"github.com/custodia-labs/ragkit/internal/logger"
	"github.com/custodia-labs/ragkit/internal/normalisers"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

var verbose bool

// Services wired by the composition root.
var (
	ragService      driving.RAGService
	projectService  driving.ProjectService
	settingsService driving.SettingsService
	metricsGatherer prometheus.Gatherer
	extractor       driven.NormaliserRegistry = normalisers.Default()
)

// Services groups the driving ports the commands use.
type Services struct {
	RAG      driving.RAGService
	Projects driving.ProjectService
	Settings driving.SettingsService

	// Metrics is served at /metrics by `mcp serve --port`. Optional.
	Metrics prometheus.Gatherer

	// Extractor turns ingested files into text. Defaults to normalisers.Default().
	Extractor driven.NormaliserRegistry
}

// SetServices injects the services used by all commands.
func SetServices(s Services) {
	ragService = s.RAG
	projectService = s.Projects
	settingsService = s.Settings
	metricsGatherer = s.Metrics
	if s.Extractor != nil {
		extractor = s.Extractor
	}
}

var rootCmd = &cobra.Command{
	Use:   "ragkit",
	Short: "Retrieval-augmented generation toolkit",
	Long: `ragkit chunks and embeds text documents into projects and retrieves
the passages most relevant to a query, ready to ground an LLM prompt.

Embedding providers (Ollama or OpenAI) are registered under ids with
'ragkit provider add' and chosen explicitly on every ingest and retrieve.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command. Commands stop when ctx is cancelled.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
