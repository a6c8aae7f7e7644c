package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragkit/internal/watcher"
)

var (
	watchProject    string
	watchProvider   string
	watchExtensions []string
	watchNoScan     bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest a folder and keep it in sync",
	Long: `Ingests every matching file in the directory, then watches it and
re-ingests files as they are created or saved. Removing a file deletes its
document. Hidden files and subdirectories are ignored.

Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchProject, "project", "p", "", "project ID (required)")
	watchCmd.Flags().StringVar(&watchProvider, "provider", "", "embedding provider ID (required)")
	watchCmd.Flags().StringSliceVar(&watchExtensions, "ext", watcher.DefaultExtensions, "file extensions to ingest")
	watchCmd.Flags().BoolVar(&watchNoScan, "no-scan", false, "skip ingesting files already present")
	watchCmd.MarkFlagRequired("project")  //nolint:errcheck
	watchCmd.MarkFlagRequired("provider") //nolint:errcheck
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	exts := make([]string, len(watchExtensions))
	for i, ext := range watchExtensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[i] = ext
	}

	w := watcher.New(ragService, watcher.Config{
		Dir:         args[0],
		ProjectID:   watchProject,
		ProviderID:  watchProvider,
		Extensions:  exts,
		Extractor:   extractor,
		InitialScan: !watchNoScan,
		OnResult: func(r watcher.Result) {
			switch {
			case r.Err != nil:
				cmd.PrintErrf("  ! %s: %v\n", r.Path, r.Err)
			case r.Removed:
				cmd.Printf("  - %s\n", r.Path)
			default:
				cmd.Printf("  + %s (%d chunks)\n", r.Path, r.ChunkCount)
			}
		},
	})

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return w.Run(cmd.Context())
}
