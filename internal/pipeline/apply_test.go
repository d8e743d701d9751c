package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/foodlabel/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLabels_KeepsFileOrder(t *testing.T) {
	labels, err := DecodeLabels(strings.NewReader("{\n    \"zucchini\": \"Meal\",\n    \"apple\": \"\",\n    \"caf\\u00e9\": \"Beverage\"\n}"))
	require.NoError(t, err)

	assert.Equal(t, []string{"zucchini", "apple", "café"}, labels.Keys())
	got, ok := labels.Get("apple")
	assert.True(t, ok)
	assert.Equal(t, "", got)
}

func TestDecodeLabels_RoundTripsWriterOutput(t *testing.T) {
	original := labelSet(t, "b", "x", "a", "y")
	decoded, err := DecodeLabels(bytes.NewReader(NewJSONWriter(4, true).Encode(original)))
	require.NoError(t, err)
	assert.Equal(t, original.Keys(), decoded.Keys())
}

func TestDecodeLabels_Errors(t *testing.T) {
	for name, doc := range map[string]string{
		"array":        `["apple"]`,
		"number value": `{"apple": 1}`,
		"duplicate":    `{"apple": "a", "apple": "b"}`,
		"truncated":    `{"apple": "a"`,
		"empty":        ``,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeLabels(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestReadLabels_MissingFile(t *testing.T) {
	_, err := ReadLabels(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestApplier_Apply(t *testing.T) {
	cfg := testConfig(t, map[string]string{
		"a.csv": "logged_food,hour\napple,8\n",
		"b.csv": "logged_food,hour,day\nbread,12,1\nkiwi,13,1\n,14,2\n",
	})
	table, err := NewPipeline(cfg, nil).LoadTable(context.Background())
	require.NoError(t, err)

	labels := labelSet(t, "apple", "Snack", "bread", "Meal")
	out := filepath.Join(t.TempDir(), "labeled.csv")

	stats, err := NewApplier("logged_food", "class").Apply(table, labels, out)
	require.NoError(t, err)

	assert.Equal(t, &ApplyStats{Rows: 4, Labeled: 2, Unlabeled: 2}, stats)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t,
		"logged_food,hour,subject,day,class\n"+
			"apple,8,1,,Snack\n"+
			"bread,12,2,1,Meal\n"+
			"kiwi,13,2,1,\n"+
			",14,2,2,\n",
		string(data))
}

func TestApplier_ReplacesExistingLabelColumn(t *testing.T) {
	table := &model.Table{
		Columns: []string{"logged_food", "class", "subject"},
		Rows: []model.Row{
			{Subject: 1, Fields: map[string]string{"logged_food": "tea", "class": "old"}},
		},
	}

	var buf bytes.Buffer
	_, err := NewApplier("", "").Encode(&buf, table, labelSet(t, "tea", "Beverage"))
	require.NoError(t, err)
	assert.Equal(t, "logged_food,subject,class\ntea,1,Beverage\n", buf.String())
}

func TestApplier_MissingFoodColumn(t *testing.T) {
	table := &model.Table{Columns: []string{"food", "subject"}}
	_, err := NewApplier("logged_food", "class").Apply(table, model.NewLabelSet(), filepath.Join(t.TempDir(), "x.csv"))
	assert.Error(t, err)
}
