package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/foodlabel/internal/cache"
	"go.uber.org/zap"
)

// Suggester wraps a provider with caching for per-food label suggestions.
// A nil provider means suggestions are disabled.
type Suggester struct {
	provider Provider
	config   Config
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// SuggesterOption configures a Suggester
type SuggesterOption func(*Suggester)

// WithCache memoizes suggestions in c for ttl (0 uses the cache default)
func WithCache(c cache.Cache, ttl time.Duration) SuggesterOption {
	return func(s *Suggester) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithLogger sets the logger used for cache and provider diagnostics
func WithLogger(logger *zap.Logger) SuggesterOption {
	return func(s *Suggester) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSuggester creates a suggester for the configured provider
func NewSuggester(config Config, opts ...SuggesterOption) (*Suggester, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return NewSuggesterWithProvider(provider, config, opts...), nil
}

// NewSuggesterWithProvider creates a suggester around an existing provider
func NewSuggesterWithProvider(provider Provider, config Config, opts ...SuggesterOption) *Suggester {
	s := &Suggester{
		provider: provider,
		config:   config,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsEnabled reports whether a provider is configured
func (s *Suggester) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// ProviderName returns the configured provider name, or "" when disabled
func (s *Suggester) ProviderName() string {
	if !s.IsEnabled() {
		return ""
	}
	return s.provider.Name()
}

// IsAvailable reports whether the provider answers its health check
func (s *Suggester) IsAvailable(ctx context.Context) bool {
	return s.IsEnabled() && s.provider.IsAvailable(ctx)
}

// Suggest returns a class label for food, or "" when the model gave no usable answer
func (s *Suggester) Suggest(ctx context.Context, food string) (string, error) {
	if !s.IsEnabled() {
		return "", nil
	}

	key := cache.CacheKey(s.provider.Name() + "\x00" + s.config.Model + "\x00" + food)
	if s.cache != nil {
		if val, found := s.cache.Get(key); found {
			s.logger.Debug("Suggestion cache hit", zap.String("food", food))
			return string(val), nil
		}
	}

	resp, err := s.provider.Suggest(ctx, SuggestRequest{
		Food:      food,
		Classes:   s.config.Classes,
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("suggest %q: %w", food, err)
	}

	if resp.Label == "" {
		s.logger.Debug("Suggestion matched no class",
			zap.String("food", food),
			zap.String("raw", resp.Raw))
	}

	if s.cache != nil {
		if err := s.cache.Set(key, []byte(resp.Label), s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache suggestion", zap.String("food", food), zap.Error(err))
		}
	}

	return resp.Label, nil
}
