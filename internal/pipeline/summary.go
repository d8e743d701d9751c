package pipeline

import (
	"fmt"
	"io"
	"sort"

	"github.com/ppiankov/foodlabel/internal/model"
)

// Summarize counts foods per label, most common first, ties by label
func Summarize(labels *model.LabelSet) []model.LabelCount {
	counts := make(map[string]int)
	labels.Each(func(_, label string) {
		if label == "" {
			label = model.UnlabeledName
		}
		counts[label]++
	})

	out := make([]model.LabelCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, model.LabelCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

const rule = "═══════════════════════════════════════════════════════════"

// RenderSummary prints the label distribution of labels to w
func RenderSummary(w io.Writer, title string, labels *model.LabelSet) {
	counts := Summarize(labels)

	width := 0
	for _, c := range counts {
		if len(c.Label) > width {
			width = len(c.Label)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Foods:   %d\n", labels.Len())
	fmt.Fprintf(w, "  Labels:  %d\n", len(counts))
	if len(counts) > 0 {
		fmt.Fprintln(w)
	}
	for _, c := range counts {
		fmt.Fprintf(w, "  %-*s  %d\n", width, c.Label, c.Count)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
}
