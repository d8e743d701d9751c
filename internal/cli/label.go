package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/foodlabel/internal/cache"
	"github.com/ppiankov/foodlabel/internal/labeler"
	"github.com/ppiankov/foodlabel/internal/llm"
	"github.com/ppiankov/foodlabel/internal/model"
	"github.com/ppiankov/foodlabel/internal/pipeline"
	"github.com/ppiankov/foodlabel/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	dataDir     string
	outputPath  string
	column      string
	suggest     bool
	llmProvider string
	llmModel    string
	noCache     bool
	workers     int
)

// labelCmd represents the label command
var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Label every distinct food description interactively",
	Long: `Label loads all food logs in the data directory, collects the distinct
food descriptions and prompts for a label for each one:

  <food>: <your label><Enter>

An empty line stores an empty label. The mapping is written to the output
file only after every description has been labeled.

Example:
  foodlabel label
  foodlabel label --data-dir ./logs --output classes.json
  foodlabel label --suggest --llm-provider ollama --llm-model llama3.2`,
	Args: cobra.NoArgs,
	RunE: runLabel,
}

func init() {
	rootCmd.AddCommand(labelCmd)
	addLabelFlags(labelCmd)
}

func addLabelFlags(cmd *cobra.Command) {
	// Input/output flags
	cmd.Flags().StringVar(&dataDir, "data-dir", "./data", "directory holding one food log CSV per subject")
	cmd.Flags().StringVar(&outputPath, "output", "food_classes.json", "output JSON path")
	cmd.Flags().StringVar(&column, "column", "logged_food", "food description column")

	// Suggestion flags
	cmd.Flags().BoolVar(&suggest, "suggest", false, "show LLM label suggestions in the prompt")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama); default openai with --suggest")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the suggestion cache")
	cmd.Flags().IntVar(&workers, "workers", 4, "concurrent suggestion requests")
}

// applyLabelFlags copies explicitly set label flags over cfg
func applyLabelFlags(cmd *cobra.Command, cfg *model.Config) {
	fs := cmd.Flags()
	if fs.Changed("output") {
		cfg.Output.Path = outputPath
	}
	if fs.Changed("llm-provider") {
		cfg.LLM.Provider = llmProvider
	}
	if fs.Changed("llm-model") {
		cfg.LLM.Model = llmModel
	}
	if fs.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if fs.Changed("workers") {
		cfg.Concurrency.Workers = workers
	}
}

func runLabel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, applyInputFlags, applyLabelFlags)
	if err != nil {
		return err
	}
	log := cmdLogger()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Data dir: %s\n", cfg.Input.DataDir)
		fmt.Fprintf(os.Stderr, "Output:   %s\n", cfg.Output.Path)
		fmt.Fprintf(os.Stderr, "Column:   %s\n", cfg.Input.Column)
		fmt.Fprintln(os.Stderr)
	}

	ctx := context.Background()

	opts := []pipeline.Option{pipeline.WithLogger(log)}
	if suggest {
		fetcher, err := newSuggestionFetcher(ctx, cfg)
		if err != nil {
			return err
		}
		if fetcher != nil {
			opts = append(opts, pipeline.WithSuggestions(fetcher))
			fmt.Fprintf(os.Stderr, "⚙️  Fetching label suggestions from %s...\n", cfg.LLM.Provider)
		}
	}

	console := labeler.NewConsole(cmd.InOrStdin(), cmd.OutOrStdout(), log)
	p := pipeline.NewPipeline(cfg, console, opts...)

	result, err := p.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✓ Loaded %d rows from %d files\n", len(result.Table.Rows), len(result.Table.Files))
	if viper.GetBool("verbose") {
		subjects := result.Table.Subjects()
		for i, file := range result.Table.Files {
			fmt.Fprintf(os.Stderr, "    subject %d: %s (%d rows)\n", i+1, file, subjects[i+1])
		}
	}
	fmt.Fprintf(os.Stderr, "✓ Labeled %d distinct foods\n", result.Labels.Len())
	fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", result.OutputPath)
	pipeline.RenderSummary(cmd.ErrOrStderr(), "Labeling Complete", result.Labels)

	return nil
}

// newSuggestionFetcher wires provider, cache and worker pool for label hints.
// It returns nil when the provider fails its health check; labeling then runs without hints.
func newSuggestionFetcher(ctx context.Context, cfg *model.Config) (*worker.SuggestionBatch, error) {
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if err := applyProviderEnv(&cfg.LLM); err != nil {
		return nil, err
	}

	opts := []llm.SuggesterOption{llm.WithLogger(cmdLogger())}
	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			dir = cache.DefaultDir()
		}
		c := cache.NewLayeredCache(
			time.Duration(cfg.Cache.MemoryTTLMinutes)*time.Minute,
			dir,
			time.Duration(cfg.Cache.DiskTTLHours)*time.Hour,
		)
		// ttl 0: each layer keeps entries for its own configured TTL
		opts = append(opts, llm.WithCache(c, 0))
	}

	suggester, err := llm.NewSuggester(llm.ConfigFromModel(cfg.LLM), opts...)
	if err != nil {
		return nil, fmt.Errorf("create suggester: %w", err)
	}

	timeout := time.Duration(cfg.LLM.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if !suggester.IsAvailable(checkCtx) {
		fmt.Fprintf(os.Stderr, "⚠️  %s is not reachable, continuing without suggestions\n", suggester.ProviderName())
		return nil, nil
	}

	return worker.NewSuggestionBatch(
		suggester,
		cfg.Concurrency.Workers,
		cfg.RateLimiting.RequestsPerSecond,
		cfg.RateLimiting.BurstSize,
	), nil
}

// applyProviderEnv fills credentials and endpoints from the environment
func applyProviderEnv(c *model.LLMConfig) error {
	switch c.Provider {
	case "openai":
		if c.APIKey == "" {
			c.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if c.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if c.APIKey == "" {
			c.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if c.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			c.BaseURL = baseURL
		}
	}
	return nil
}
