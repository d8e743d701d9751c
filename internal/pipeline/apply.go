package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/foodlabel/internal/model"
)

// ReadLabels loads a label file, keeping the key order found in the file
func ReadLabels(path string) (*model.LabelSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open labels: %w", err)
	}
	defer func() { _ = f.Close() }()

	return DecodeLabels(f)
}

// DecodeLabels parses a flat JSON object of string keys to string values
func DecodeLabels(r io.Reader) (*model.LabelSet, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode labels: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("decode labels: expected JSON object")
	}

	labels := model.NewLabelSet()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode labels: %w", err)
		}
		key := keyTok.(string) // object keys are always strings

		var label string
		if err := dec.Decode(&label); err != nil {
			return nil, fmt.Errorf("decode label for %q: %w", key, err)
		}
		if err := labels.Set(key, label); err != nil {
			return nil, fmt.Errorf("decode labels: %w", err)
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode labels: %w", err)
	}

	return labels, nil
}

// ApplyStats summarizes an apply run
type ApplyStats struct {
	Rows      int
	Labeled   int
	Unlabeled int
}

// Applier joins a label set back onto the food logs
type Applier struct {
	foodColumn  string
	labelColumn string
}

// NewApplier creates an applier reading foodColumn and adding labelColumn
func NewApplier(foodColumn, labelColumn string) *Applier {
	if foodColumn == "" {
		foodColumn = "logged_food"
	}
	if labelColumn == "" {
		labelColumn = "class"
	}
	return &Applier{
		foodColumn:  foodColumn,
		labelColumn: labelColumn,
	}
}

// Header returns the output columns: the table's columns then the label column
func (a *Applier) Header(table *model.Table) []string {
	header := make([]string, 0, len(table.Columns)+1)
	for _, c := range table.Columns {
		if c != a.labelColumn {
			header = append(header, c)
		}
	}
	return append(header, a.labelColumn)
}

// Encode writes the labeled table as CSV to w.
// Missing cells and foods without a label are written as empty cells.
// Rows without a food take the label of model.MissingFood.
func (a *Applier) Encode(w io.Writer, table *model.Table, labels *model.LabelSet) (*ApplyStats, error) {
	header := a.Header(table)
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	stats := &ApplyStats{}
	record := make([]string, len(header))
	for _, row := range table.Rows {
		for i, col := range header[:len(header)-1] {
			v, _ := row.Get(col)
			record[i] = v
		}

		food, ok := row.Get(a.foodColumn)
		if !ok {
			food = model.MissingFood
		}
		label, ok := labels.Get(food)
		if ok {
			stats.Labeled++
		} else {
			stats.Unlabeled++
		}
		record[len(record)-1] = label

		if err := cw.Write(record); err != nil {
			return nil, fmt.Errorf("write row %d: %w", stats.Rows+1, err)
		}
		stats.Rows++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("flush: %w", err)
	}
	return stats, nil
}

// Apply writes the labeled table to path, replacing any existing file
func (a *Applier) Apply(table *model.Table, labels *model.LabelSet, path string) (*ApplyStats, error) {
	if !table.HasColumn(a.foodColumn) {
		return nil, fmt.Errorf("apply: column not found: %s", a.foodColumn)
	}

	var buf bytes.Buffer
	stats, err := a.Encode(&buf, table, labels)
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return nil, err
	}
	return stats, nil
}
