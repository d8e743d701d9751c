package model

// Config holds the complete foodlabel configuration.
// Field tags serve both viper (mapstructure) and `config init/show` (yaml).
type Config struct {
	Input        InputConfig        `yaml:"input" mapstructure:"input"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Verbose      bool               `yaml:"-" mapstructure:"verbose"`
}

// InputConfig describes where the food logs are read from
type InputConfig struct {
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"` // Directory holding one CSV per subject
	Pattern string `yaml:"pattern" mapstructure:"pattern"`   // Glob matched inside DataDir
	Column  string `yaml:"column" mapstructure:"column"`     // Free-text food column to label
}

// OutputConfig describes the label file and derived outputs
type OutputConfig struct {
	Path        string `yaml:"path" mapstructure:"path"`                 // Label mapping JSON file
	Indent      int    `yaml:"indent" mapstructure:"indent"`             // Spaces per JSON indent level
	EnsureASCII bool   `yaml:"ensure_ascii" mapstructure:"ensure_ascii"` // Escape non-ASCII as \uXXXX
	LabelColumn string `yaml:"label_column" mapstructure:"label_column"` // Column added by `apply`
}

// LLMConfig configures optional label suggestions.
// Suggestions are hints shown in the prompt; the operator's line is always what gets stored.
type LLMConfig struct {
	Provider  string   `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model     string   `yaml:"model" mapstructure:"model"`
	APIKey    string   `yaml:"-" mapstructure:"api_key"` // Never written to disk
	BaseURL   string   `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int      `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int      `yaml:"max_tokens" mapstructure:"max_tokens"`
	Classes   []string `yaml:"classes" mapstructure:"classes"`
}

// CacheConfig configures the suggestion cache
type CacheConfig struct {
	Enabled          bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir              string `yaml:"dir" mapstructure:"dir"`
	MemoryTTLMinutes int    `yaml:"memory_ttl_minutes" mapstructure:"memory_ttl_minutes"`
	DiskTTLHours     int    `yaml:"disk_ttl_hours" mapstructure:"disk_ttl_hours"`
}

// ConcurrencyConfig bounds the suggestion prefetch
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig throttles requests to the LLM provider
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// DefaultClasses are the meal classes the downstream charts group by.
var DefaultClasses = []string{"Meal", "Snack", "Beverage"}

// DefaultConfig returns the configuration that reproduces the original
// fixed behavior: ./data/*.csv in, food_classes.json out, no suggestions.
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			DataDir: "./data",
			Pattern: "*.csv",
			Column:  "logged_food",
		},
		Output: OutputConfig{
			Path:        "food_classes.json",
			Indent:      4,
			EnsureASCII: true,
			LabelColumn: "class",
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 16,
			Classes:   append([]string(nil), DefaultClasses...),
		},
		Cache: CacheConfig{
			Enabled:          true,
			Dir:              "",
			MemoryTTLMinutes: 60,
			DiskTTLHours:     24 * 30,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
	}
}
