package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Suggest proposes a class label for one food description
	Suggest(ctx context.Context, req SuggestRequest) (*SuggestResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SuggestRequest contains the input for a label suggestion
type SuggestRequest struct {
	// Food is the free-text description exactly as logged
	Food string

	// Classes is the allowlist of labels the model may answer with
	Classes []string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SuggestResponse contains the model's answer
type SuggestResponse struct {
	// Label is the normalized class, empty when the answer matched no class
	Label string

	// Raw is the untouched model output
	Raw string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Classes offered to the model
	Classes []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "",
		Timeout:   30,
		MaxTokens: 16,
		Classes:   []string{"Meal", "Snack", "Beverage"},
	}
}

const systemPrompt = "You classify entries from personal food logs. Answer with exactly one label from the list you are given and nothing else."

// BuildPrompt constructs the default prompt for a single food
func BuildPrompt(food string, classes []string) string {
	var b strings.Builder
	b.WriteString("Classify the following food log entry.\n\nAllowed labels:\n")
	for _, c := range classes {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	fmt.Fprintf(&b, "\nEntry: %q\n\nLabel:", food)
	return b.String()
}

// NormalizeLabel maps a raw model answer onto one of classes.
// Matching ignores case, surrounding quotes and trailing punctuation.
// The second return value is false when no class matched.
func NormalizeLabel(raw string, classes []string) (string, bool) {
	answer := strings.TrimSpace(raw)
	if i := strings.IndexByte(answer, '\n'); i >= 0 {
		answer = answer[:i]
	}
	answer = strings.Trim(answer, " \t\"'`*.,;:!")
	answer = strings.TrimPrefix(answer, "- ")
	if answer == "" {
		return "", false
	}

	for _, c := range classes {
		if strings.EqualFold(answer, c) {
			return c, true
		}
	}

	// "Label: Snack" and similar
	lower := strings.ToLower(answer)
	for _, c := range classes {
		if strings.HasSuffix(lower, " "+strings.ToLower(c)) {
			return c, true
		}
	}

	return "", false
}
