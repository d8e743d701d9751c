package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/foodlabel/internal/extract"
	"github.com/ppiankov/foodlabel/internal/labeler"
	"github.com/ppiankov/foodlabel/internal/loader"
	"github.com/ppiankov/foodlabel/internal/model"
	"github.com/ppiankov/foodlabel/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testConfig points a default config at a temp data dir and output file
func testConfig(t *testing.T, files map[string]string) *model.Config {
	t.Helper()
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	require.NoError(t, os.Mkdir(dataDir, 0755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, name), []byte(content), 0644))
	}

	cfg := model.DefaultConfig()
	cfg.Input.DataDir = dataDir
	cfg.Output.Path = filepath.Join(root, "food_classes.json")
	return cfg
}

func consoleLabeler(input string, out *bytes.Buffer) *labeler.Console {
	return labeler.NewConsole(strings.NewReader(input), out, zap.NewNop())
}

func TestPipeline_Run_TwoFiles(t *testing.T) {
	cfg := testConfig(t, map[string]string{
		"a.csv": "logged_food\napple\n",
		"b.csv": "logged_food\nbread\napple\n",
	})

	var prompts bytes.Buffer
	p := NewPipeline(cfg, consoleLabeler("fruit\ngrain\n", &prompts), WithLogger(zap.NewNop()))

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"apple", "bread"}, result.Foods)
	assert.Equal(t, "apple: bread: ", prompts.String())

	data, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"apple\": \"fruit\",\n    \"bread\": \"grain\"\n}", string(data))

	subjects := make([]int, 0, len(result.Table.Rows))
	for _, r := range result.Table.Rows {
		subjects = append(subjects, r.Subject)
	}
	assert.Equal(t, []int{1, 2, 2}, subjects)
}

func TestPipeline_Run_KeySetMatchesDistinctFoods(t *testing.T) {
	cfg := testConfig(t, map[string]string{
		"s1.csv": "logged_food,calorie\ntea,2\nrice,200\ntea,2\n",
		"s2.csv": "calorie,logged_food\n90,banana\n200,rice\n5,Tea\n",
		"s3.csv": "logged_food\n",
	})

	p := NewPipeline(cfg, consoleLabeler(strings.Repeat("x\n", 10), &bytes.Buffer{}))
	result, err := p.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Len(t, decoded, len(result.Foods))
	for _, f := range result.Foods {
		assert.Contains(t, decoded, f)
	}
	assert.Equal(t, []string{"tea", "rice", "banana", "Tea"}, result.Foods)
}

func TestPipeline_Run_EmptyLineLabel(t *testing.T) {
	cfg := testConfig(t, map[string]string{"a.csv": "logged_food\nwater\n"})

	p := NewPipeline(cfg, consoleLabeler("\n", &bytes.Buffer{}))
	_, err := p.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"water\": \"\"\n}", string(data))
}

func TestPipeline_Run_Deterministic(t *testing.T) {
	files := map[string]string{
		"a.csv": "logged_food\nsoup\ncafé\n",
		"b.csv": "logged_food\nbread\nsoup\n",
	}
	input := "Meal\nBeverage\nSnack\n"

	var outputs [][]byte
	for i := 0; i < 2; i++ {
		cfg := testConfig(t, files)
		_, err := NewPipeline(cfg, consoleLabeler(input, &bytes.Buffer{})).Run(context.Background())
		require.NoError(t, err)
		data, err := os.ReadFile(cfg.Output.Path)
		require.NoError(t, err)
		outputs = append(outputs, data)
	}

	assert.Equal(t, outputs[0], outputs[1])
}

func TestPipeline_Run_NoFilesFailsBeforeLabeling(t *testing.T) {
	cfg := testConfig(t, nil)

	var prompts bytes.Buffer
	_, err := NewPipeline(cfg, consoleLabeler("x\n", &prompts)).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, loader.ErrNoFiles))
	assert.Empty(t, prompts.String())

	_, statErr := os.Stat(cfg.Output.Path)
	assert.True(t, os.IsNotExist(statErr), "no output expected")
}

func TestPipeline_Run_MissingColumn(t *testing.T) {
	cfg := testConfig(t, map[string]string{"a.csv": "food\napple\n"})

	_, err := NewPipeline(cfg, consoleLabeler("x\n", &bytes.Buffer{})).Run(context.Background())
	assert.ErrorIs(t, err, extract.ErrColumnNotFound)
}

func TestPipeline_Run_InterruptedInputWritesNothing(t *testing.T) {
	cfg := testConfig(t, map[string]string{"a.csv": "logged_food\napple\nbread\n"})
	require.NoError(t, os.WriteFile(cfg.Output.Path, []byte("previous"), 0644))

	_, err := NewPipeline(cfg, consoleLabeler("fruit\n", &bytes.Buffer{})).Run(context.Background())
	assert.ErrorIs(t, err, labeler.ErrInputClosed)

	data, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

// stubFetcher implements SuggestionFetcher
type stubFetcher struct {
	suggestions map[string]string
	failed      []*worker.SuggestResult
	seen        []string
}

func (s *stubFetcher) Fetch(ctx context.Context, foods []string) (map[string]string, []*worker.SuggestResult) {
	s.seen = foods
	return s.suggestions, s.failed
}

func TestPipeline_Run_WithSuggestions(t *testing.T) {
	cfg := testConfig(t, map[string]string{"a.csv": "logged_food\ncoffee\nbagel\n"})

	fetcher := &stubFetcher{
		suggestions: map[string]string{"coffee": "Beverage"},
		failed:      []*worker.SuggestResult{{Food: "bagel", Error: errors.New("timeout")}},
	}

	var prompts bytes.Buffer
	p := NewPipeline(cfg, consoleLabeler("Beverage\nSnack\n", &prompts), WithSuggestions(fetcher))
	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"coffee", "bagel"}, fetcher.seen)
	assert.Equal(t, "coffee [Beverage]: bagel: ", prompts.String())

	label, _ := result.Labels.Get("bagel")
	assert.Equal(t, "Snack", label)
}

func TestPipeline_Run_MissingFoodsShareOneEntry(t *testing.T) {
	cfg := testConfig(t, map[string]string{
		"a.csv": "logged_food,kcal\napple,95\n,0\nNA,0\n",
		"b.csv": "kcal\n10\n",
	})

	var prompts bytes.Buffer
	fetcher := &stubFetcher{}
	p := NewPipeline(cfg, consoleLabeler("Snack\nnone\n", &prompts), WithSuggestions(fetcher))
	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"apple", model.MissingFood}, result.Foods)
	assert.Equal(t, []string{"apple"}, fetcher.seen)
	assert.Equal(t, "apple: nan: ", prompts.String())

	data, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"apple\": \"Snack\",\n    \"NaN\": \"none\"\n}", string(data))
}

func TestPipeline_Run_InvalidUTF8FailsBeforeLabeling(t *testing.T) {
	cfg := testConfig(t, map[string]string{"a.csv": "logged_food\n\xffcake\n\xfecake\n"})

	var prompts bytes.Buffer
	_, err := NewPipeline(cfg, consoleLabeler("one\ntwo\n", &prompts)).Run(context.Background())
	var perr *loader.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Empty(t, prompts.String())

	_, statErr := os.Stat(cfg.Output.Path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPipeline_Run_CustomColumn(t *testing.T) {
	cfg := testConfig(t, map[string]string{"a.csv": "simplified_food\noats\n"})
	cfg.Input.Column = "simplified_food"

	result, err := NewPipeline(cfg, consoleLabeler("Meal\n", &bytes.Buffer{})).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"oats"}, result.Foods)
}
