package model

import "strconv"

// SubjectColumn is the synthetic column tagging each row with its source file.
const SubjectColumn = "subject"

// Table is the concatenation of every food log, in file discovery order.
type Table struct {
	Columns []string `json:"columns"` // Union of all headers, first-appearance order
	Rows    []Row    `json:"rows"`
	Files   []string `json:"files"` // Source files; Files[i] is subject i+1
}

// Row is one logged entry. Cells absent from Fields are missing values.
type Row struct {
	Subject int               `json:"subject"` // 1-based file discovery index
	Fields  map[string]string `json:"fields"`
}

// Get returns the cell value for column and whether it is present.
func (r Row) Get(column string) (string, bool) {
	if column == SubjectColumn {
		return strconv.Itoa(r.Subject), true
	}
	v, ok := r.Fields[column]
	return v, ok
}

// HasColumn reports whether column is part of the combined schema
func (t *Table) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// AddColumn appends column to the schema unless it is already known
func (t *Table) AddColumn(column string) {
	if !t.HasColumn(column) {
		t.Columns = append(t.Columns, column)
	}
}

// Subjects returns the number of rows contributed by each subject
func (t *Table) Subjects() map[int]int {
	counts := make(map[int]int, len(t.Files))
	for _, r := range t.Rows {
		counts[r.Subject]++
	}
	return counts
}
