package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragkit/internal/core/domain"
)

var (
	providerKind         string
	providerModel        string
	providerBaseURL      string
	providerAPIKey       string
	providerDimensions   int
	providerRPS          float64
	providerSkipValidate bool
)

var providerCmd = &cobra.Command{
	Use:   "provider",
	Short: "Manage embedding providers",
	Long: `Embedding providers are registered under an id and selected explicitly
on every ingest and retrieve. A project must always be queried with the
provider its documents were embedded with.`,
}

var providerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured providers",
	Args:  cobra.NoArgs,
	RunE:  runProviderList,
}

var providerAddCmd = &cobra.Command{
	Use:   "add [id]",
	Short: "Register or replace an embedding provider",
	Long: `Registers an embedding provider under the given id.

Available kinds:
  ollama - local Ollama server (default model nomic-embed-text)
  openai - OpenAI API (default model text-embedding-3-small)

For OpenAI, the API key is read from --api-key, then OPENAI_API_KEY, and
otherwise prompted for. The provider is pinged before it is saved unless
--skip-validate is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runProviderAdd,
}

var providerPingCmd = &cobra.Command{
	Use:   "ping [id]",
	Short: "Check a provider is reachable",
	Args:  cobra.ExactArgs(1),
	RunE:  runProviderPing,
}

var providerRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a provider",
	Args:  cobra.ExactArgs(1),
	RunE:  runProviderRemove,
}

func init() {
	providerAddCmd.Flags().StringVar(&providerKind, "kind", string(domain.AIProviderOllama), "provider kind (ollama, openai)")
	providerAddCmd.Flags().StringVar(&providerModel, "model", "", "embedding model (default per kind)")
	providerAddCmd.Flags().StringVar(&providerBaseURL, "base-url", "", "API endpoint (default per kind)")
	providerAddCmd.Flags().StringVar(&providerAPIKey, "api-key", "", "API key (openai)")
	providerAddCmd.Flags().IntVar(&providerDimensions, "dimensions", 0, "vector size (default: known size of the model)")
	providerAddCmd.Flags().Float64Var(&providerRPS, "rps", 0, "maximum requests per second (0 = unlimited)")
	providerAddCmd.Flags().BoolVar(&providerSkipValidate, "skip-validate", false, "save without pinging the provider")

	providerCmd.AddCommand(providerListCmd)
	providerCmd.AddCommand(providerAddCmd)
	providerCmd.AddCommand(providerPingCmd)
	providerCmd.AddCommand(providerRemoveCmd)
	rootCmd.AddCommand(providerCmd)
}

func runProviderList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if len(settings.Providers) == 0 {
		cmd.Println("No providers configured. Add one with 'ragkit provider add <id>'.")
		return nil
	}

	for _, p := range settings.Providers {
		cmd.Printf("  %s\n", p.ID)
		cmd.Printf("    Kind:  %s\n", p.Kind.Description())
		cmd.Printf("    Model: %s\n", p.Model)
		if p.BaseURL != "" {
			cmd.Printf("    URL:   %s\n", p.BaseURL)
		}
		if dims := p.ResolvedDimensions(); dims > 0 {
			cmd.Printf("    Dims:  %d\n", dims)
		}
		if p.Kind.RequiresAPIKey() {
			if p.APIKey != "" {
				cmd.Printf("    Key:   %s\n", maskAPIKey(p.APIKey))
			} else {
				cmd.Printf("    Key:   (from %s)\n", ai.EnvOpenAIAPIKey)
			}
		}
		cmd.Println()
	}
	return nil
}

func runProviderAdd(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	def := domain.ProviderSettings{
		ID:                args[0],
		Kind:              domain.AIProvider(strings.ToLower(providerKind)),
		Model:             providerModel,
		BaseURL:           providerBaseURL,
		APIKey:            providerAPIKey,
		Dimensions:        providerDimensions,
		RequestsPerSecond: providerRPS,
	}
	if !def.Kind.IsValid() {
		return fmt.Errorf("unknown provider kind %q (want ollama or openai)", providerKind)
	}
	if def.Model == "" {
		def.Model = domain.DefaultEmbeddingModels()[def.Kind]
	}

	if def.Kind.RequiresAPIKey() && def.APIKey == "" && os.Getenv(ai.EnvOpenAIAPIKey) == "" {
		cmd.Print("Enter API key: ")
		def.APIKey = readPassword(cmd)
		cmd.Println()
		if def.APIKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if !providerSkipValidate {
		cmd.Print("Validating provider... ")
		provider, err := ai.CreateAndValidate(cmd.Context(), def)
		if err != nil {
			cmd.Println("FAILED")
			return fmt.Errorf("provider validation failed: %w", err)
		}
		provider.Close()
		cmd.Println("OK")
	}

	if err := settingsService.AddProvider(def); err != nil {
		return fmt.Errorf("failed to save provider: %w", err)
	}

	cmd.Printf("Provider %s configured: %s (%s)\n", def.ID, def.Kind.Description(), def.Model)
	return nil
}

func runProviderPing(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.ValidateProvider(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("provider %s unreachable: %w", args[0], err)
	}

	cmd.Printf("Provider %s is reachable.\n", args[0])
	return nil
}

func runProviderRemove(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.RemoveProvider(args[0]); err != nil {
		return fmt.Errorf("failed to remove provider: %w", err)
	}

	cmd.Printf("Provider %s removed.\n", args[0])
	return nil
}

// readPassword reads a line without echo when stdin is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(cmd *cobra.Command) string {
	if cmd.InOrStdin() == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	reader := bufio.NewReader(cmd.InOrStdin())
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
