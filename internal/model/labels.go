package model

import "fmt"

// UnlabeledName is how an empty label is reported in summaries
const UnlabeledName = "(unlabeled)"

// MissingFood is the single entry standing for every row without a food
// description. It is written as the "NaN" key and prompted as "nan".
const (
	MissingFood        = "NaN"
	MissingFoodDisplay = "nan"
)

// LabelSet maps each distinct food description to its operator label.
// Iteration follows insertion order.
type LabelSet struct {
	keys   []string
	labels map[string]string
}

// NewLabelSet creates an empty label set
func NewLabelSet() *LabelSet {
	return &LabelSet{labels: make(map[string]string)}
}

// Set records label for food. A food can be labeled only once.
func (s *LabelSet) Set(food, label string) error {
	if _, exists := s.labels[food]; exists {
		return fmt.Errorf("food already labeled: %q", food)
	}
	s.keys = append(s.keys, food)
	s.labels[food] = label
	return nil
}

// Get returns the label for food
func (s *LabelSet) Get(food string) (string, bool) {
	label, ok := s.labels[food]
	return label, ok
}

// Keys returns the foods in insertion order
func (s *LabelSet) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of labeled foods
func (s *LabelSet) Len() int {
	return len(s.keys)
}

// Each calls fn for every entry in insertion order
func (s *LabelSet) Each(fn func(food, label string)) {
	for _, k := range s.keys {
		fn(k, s.labels[k])
	}
}

// LabelCount is the number of foods sharing one label
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}
