package worker

import (
	"context"
)

// Suggester proposes a label for one food
type Suggester interface {
	Suggest(ctx context.Context, food string) (string, error)
	ProviderName() string
}

// SuggestJob asks for one suggestion, respecting the shared limiter
type SuggestJob struct {
	Food      string
	Suggester Suggester
	Limiter   *Limiter
}

// Execute executes the suggestion job
func (j *SuggestJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.Suggester.ProviderName()); err != nil {
			return &SuggestResult{Food: j.Food, Error: err}
		}
	}

	label, err := j.Suggester.Suggest(ctx, j.Food)
	return &SuggestResult{
		Food:  j.Food,
		Label: label,
		Error: err,
	}
}

// SuggestResult represents the result of a suggestion job
type SuggestResult struct {
	Food  string
	Label string
	Error error
}

// GetError returns the error from the suggestion result
func (r *SuggestResult) GetError() error {
	return r.Error
}

// SuggestionBatch fetches suggestions for many foods concurrently
type SuggestionBatch struct {
	suggester   Suggester
	concurrency int
	limiter     *Limiter
}

// NewSuggestionBatch creates a new suggestion batch.
// requestsPerSecond <= 0 disables rate limiting.
func NewSuggestionBatch(suggester Suggester, concurrency int, requestsPerSecond float64, burst int) *SuggestionBatch {
	return &SuggestionBatch{
		suggester:   suggester,
		concurrency: concurrency,
		limiter:     NewLimiter(requestsPerSecond, burst),
	}
}

// Fetch returns the non-empty suggestions by food and the failed lookups.
// Foods whose lookup failed or produced no label are absent from the map.
func (b *SuggestionBatch) Fetch(ctx context.Context, foods []string) (map[string]string, []*SuggestResult) {
	suggestions := make(map[string]string, len(foods))
	if len(foods) == 0 {
		return suggestions, nil
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, food := range foods {
		job := &SuggestJob{
			Food:      food,
			Suggester: b.suggester,
			Limiter:   b.limiter,
		}
		if !pool.Submit(job) {
			break
		}
	}

	var failed []*SuggestResult
	for _, r := range pool.Wait() {
		res := r.(*SuggestResult)
		if res.Error != nil {
			failed = append(failed, res)
			continue
		}
		if res.Label != "" {
			suggestions[res.Food] = res.Label
		}
	}

	return suggestions, failed
}
