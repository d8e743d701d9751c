package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/foodlabel/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// setDefaults registers every config key so that FOODLABEL_* variables are
// picked up by Unmarshal even when no config file sets the key.
func setDefaults(v *viper.Viper) {
	d := model.DefaultConfig()

	v.SetDefault("input.data_dir", d.Input.DataDir)
	v.SetDefault("input.pattern", d.Input.Pattern)
	v.SetDefault("input.column", d.Input.Column)

	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.indent", d.Output.Indent)
	v.SetDefault("output.ensure_ascii", d.Output.EnsureASCII)
	v.SetDefault("output.label_column", d.Output.LabelColumn)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.classes", d.LLM.Classes)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.memory_ttl_minutes", d.Cache.MemoryTTLMinutes)
	v.SetDefault("cache.disk_ttl_hours", d.Cache.DiskTTLHours)

	v.SetDefault("concurrency.workers", d.Concurrency.Workers)

	v.SetDefault("rate_limiting.requests_per_second", d.RateLimiting.RequestsPerSecond)
	v.SetDefault("rate_limiting.burst_size", d.RateLimiting.BurstSize)
}

// flagOverride copies the flags a command owns over the loaded config
type flagOverride func(cmd *cobra.Command, cfg *model.Config)

// loadConfig builds the effective configuration.
// Priority: changed flags > FOODLABEL_* env > config file > defaults.
func loadConfig(cmd *cobra.Command, overrides ...flagOverride) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for _, override := range overrides {
		override(cmd, cfg)
	}
	return cfg, nil
}

// applyInputFlags handles --data-dir and --column, shared by label and apply
func applyInputFlags(cmd *cobra.Command, cfg *model.Config) {
	fs := cmd.Flags()
	if fs.Changed("data-dir") {
		cfg.Input.DataDir = dataDir
	}
	if fs.Changed("column") {
		cfg.Input.Column = column
	}
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage foodlabel configuration",
	Long: `Manage foodlabel configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (FOODLABEL_*)
3. Config file (~/.foodlabel/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after merging defaults, config file, env vars and flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out, "  Current Configuration")
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out)
		fmt.Fprintln(out, string(yamlData))
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Configuration hierarchy (highest to lowest priority):")
		fmt.Fprintln(out, "  1. CLI flags")
		fmt.Fprintln(out, "  2. Environment variables (FOODLABEL_*, OPENAI_API_KEY, ANTHROPIC_API_KEY)")
		fmt.Fprintln(out, "  3. Config file (~/.foodlabel/config.yaml)")
		fmt.Fprintln(out, "  4. Defaults")
		fmt.Fprintln(out)

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.foodlabel/config.yaml with all available options.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configDir := filepath.Join(home, ".foodlabel")
		configPath := filepath.Join(configDir, "config.yaml")

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'foodlabel config show' to view it, or delete it first to recreate", configPath)
		}

		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}

		data, err := renderDefaultConfig()
		if err != nil {
			return err
		}
		if err := os.WriteFile(configPath, data, 0644); err != nil {
			return fmt.Errorf("error writing config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Created default configuration: %s\n", configPath)
		fmt.Fprintf(out, "\nTo view the configuration:\n")
		fmt.Fprintf(out, "  foodlabel config show\n")
		fmt.Fprintf(out, "\nTo customize, edit the file with your preferred editor:\n")
		fmt.Fprintf(out, "  $EDITOR %s\n\n", configPath)

		return nil
	},
}

// renderDefaultConfig returns the commented default config file
func renderDefaultConfig() ([]byte, error) {
	yamlData, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("error marshaling config: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# foodlabel configuration file\n")
	buf.WriteString("#\n")
	buf.WriteString("# Configuration hierarchy (highest to lowest priority):\n")
	buf.WriteString("#   1. CLI flags\n")
	buf.WriteString("#   2. Environment variables (FOODLABEL_*)\n")
	buf.WriteString("#   3. This config file\n")
	buf.WriteString("#   4. Built-in defaults\n\n")
	buf.Write(yamlData)
	buf.WriteString("\n# API keys are read from the environment only:\n")
	buf.WriteString("#   export OPENAI_API_KEY=sk-...\n")
	buf.WriteString("#   export ANTHROPIC_API_KEY=sk-ant-...\n")
	buf.WriteString("#   export OLLAMA_BASE_URL=http://localhost:11434\n")
	return buf.Bytes(), nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
