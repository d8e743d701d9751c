package pipeline

import (
	"context"
	"fmt"

	"github.com/ppiankov/foodlabel/internal/extract"
	"github.com/ppiankov/foodlabel/internal/loader"
	"github.com/ppiankov/foodlabel/internal/model"
	"github.com/ppiankov/foodlabel/internal/worker"
	"go.uber.org/zap"
)

// Labeler assigns a label to every food, in order
type Labeler interface {
	Label(ctx context.Context, foods []string, suggestions map[string]string) (*model.LabelSet, error)
}

// SuggestionFetcher produces optional label hints before labeling starts
type SuggestionFetcher interface {
	Fetch(ctx context.Context, foods []string) (map[string]string, []*worker.SuggestResult)
}

// Pipeline runs load → extract → label → write once, strictly forward
type Pipeline struct {
	loader      *loader.Loader
	extractor   *extract.FoodExtractor
	labeler     Labeler
	suggestions SuggestionFetcher // nil when suggestions are disabled
	writer      *JSONWriter
	config      *model.Config
	logger      *zap.Logger
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the pipeline logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithSuggestions enables label hints from fetcher
func WithSuggestions(fetcher SuggestionFetcher) Option {
	return func(p *Pipeline) {
		p.suggestions = fetcher
	}
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, labeler Labeler, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor: extract.NewFoodExtractor(cfg.Input.Column),
		labeler:   labeler,
		writer:    NewJSONWriter(cfg.Output.Indent, cfg.Output.EnsureASCII),
		config:    cfg,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.loader = loader.NewLoader(cfg.Input.Pattern, p.logger)
	return p
}

// Result contains everything a run produced
type Result struct {
	Table      *model.Table
	Foods      []string
	Labels     *model.LabelSet
	OutputPath string
}

// LoadFoods runs the loader and extractor stages
func (p *Pipeline) LoadFoods(ctx context.Context) (*model.Table, []string, error) {
	table, err := p.loader.Load(ctx, p.config.Input.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("load: %w", err)
	}

	foods, err := p.extractor.Extract(table)
	if err != nil {
		return nil, nil, fmt.Errorf("extract: %w", err)
	}

	p.logger.Info("Loaded food logs",
		zap.Int("files", len(table.Files)),
		zap.Int("rows", len(table.Rows)),
		zap.Int("distinct_foods", len(foods)))

	return table, foods, nil
}

// LoadTable runs only the loader stage
func (p *Pipeline) LoadTable(ctx context.Context) (*model.Table, error) {
	table, err := p.loader.Load(ctx, p.config.Input.DataDir)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return table, nil
}

// Run executes the full labeling pipeline.
// Nothing is written unless every food has been labeled.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	// 1-2. Load logs and extract distinct foods
	table, foods, err := p.LoadFoods(ctx)
	if err != nil {
		return nil, err
	}

	// 3. Optional hints (failures never stop the run)
	var suggestions map[string]string
	if p.suggestions != nil {
		var failed []*worker.SuggestResult
		suggestions, failed = p.suggestions.Fetch(ctx, suggestable(foods))
		for _, f := range failed {
			p.logger.Warn("Label suggestion failed", zap.String("food", f.Food), zap.Error(f.Error))
		}
		p.logger.Info("Fetched label suggestions",
			zap.Int("suggested", len(suggestions)),
			zap.Int("failed", len(failed)))
	}

	// 4. Ask the operator
	labels, err := p.labeler.Label(ctx, foods, suggestions)
	if err != nil {
		return nil, fmt.Errorf("label: %w", err)
	}

	// 5. Persist
	path := p.config.Output.Path
	if err := p.writer.Write(labels, path); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	p.logger.Info("Wrote food classes", zap.String("path", path), zap.Int("foods", labels.Len()))

	return &Result{
		Table:      table,
		Foods:      foods,
		Labels:     labels,
		OutputPath: path,
	}, nil
}

// suggestable drops the missing-food entry, which has no text to classify
func suggestable(foods []string) []string {
	out := make([]string, 0, len(foods))
	for _, f := range foods {
		if f != model.MissingFood {
			out = append(out, f)
		}
	}
	return out
}
