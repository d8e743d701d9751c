package extract

import (
	"errors"
	"fmt"

	"github.com/ppiankov/foodlabel/internal/model"
)

// ErrColumnNotFound is returned when the food column is absent from every log
var ErrColumnNotFound = errors.New("column not found")

// FoodExtractor extracts the distinct food descriptions from a table
type FoodExtractor struct {
	column string
}

// NewFoodExtractor creates a new extractor for the given column
func NewFoodExtractor(column string) *FoodExtractor {
	if column == "" {
		column = "logged_food"
	}
	return &FoodExtractor{column: column}
}

// Column returns the column the extractor reads
func (e *FoodExtractor) Column() string {
	return e.column
}

// Extract returns the distinct values of the food column in first-occurrence order.
// Values are compared byte for byte; "Apple" and "apple " are different foods.
// Rows with a missing food all collapse into one model.MissingFood entry.
func (e *FoodExtractor) Extract(table *model.Table) ([]string, error) {
	if table == nil || !table.HasColumn(e.column) {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, e.column)
	}

	seen := make(map[string]bool)
	foods := make([]string, 0)
	for _, row := range table.Rows {
		food, ok := row.Get(e.column)
		if !ok {
			food = model.MissingFood
		}
		if !seen[food] {
			seen[food] = true
			foods = append(foods, food)
		}
	}

	return foods, nil
}
