package loader

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/foodlabel/internal/model"
	"go.uber.org/zap"
)

var (
	// ErrDirNotFound is returned when the data directory does not exist
	ErrDirNotFound = errors.New("data directory not found")

	// ErrNoFiles is returned when the data directory holds no matching files
	ErrNoFiles = errors.New("no CSV files found")
)

// ParseError reports a food log that is not a valid delimited-text table
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s line %d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Loader discovers food logs in a directory and concatenates them
type Loader struct {
	pattern string
	logger  *zap.Logger
}

// NewLoader creates a loader matching pattern (e.g. "*.csv")
func NewLoader(pattern string, logger *zap.Logger) *Loader {
	if pattern == "" {
		pattern = "*.csv"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		pattern: pattern,
		logger:  logger,
	}
}

// Discover returns the matching files in dir, sorted by name.
// The position of a file in the result is its subject number minus one.
func (l *Loader) Discover(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrDirNotFound, dir)
	}

	files, err := filepath.Glob(filepath.Join(dir, l.pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", l.pattern, err)
	}

	var regular []string
	for _, f := range files {
		if fi, err := os.Stat(f); err == nil && fi.Mode().IsRegular() {
			regular = append(regular, f)
		}
	}
	if len(regular) == 0 {
		return nil, fmt.Errorf("%w in %s (pattern %s)", ErrNoFiles, dir, l.pattern)
	}

	sort.Strings(regular)
	return regular, nil
}

// Load reads every food log in dir into a single table.
// Each row is tagged with the 1-based index of the file it came from.
func (l *Loader) Load(ctx context.Context, dir string) (*model.Table, error) {
	files, err := l.Discover(dir)
	if err != nil {
		return nil, err
	}

	table := &model.Table{}
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		subject := i + 1
		header, rows, err := readFile(file)
		if err != nil {
			return nil, err
		}

		for _, col := range header {
			table.AddColumn(col)
		}
		table.AddColumn(model.SubjectColumn)

		for _, fields := range rows {
			table.Rows = append(table.Rows, model.Row{Subject: subject, Fields: fields})
		}
		table.Files = append(table.Files, file)

		l.logger.Debug("Loaded food log",
			zap.String("file", file),
			zap.Int("subject", subject),
			zap.Int("rows", len(rows)),
			zap.Int("columns", len(header)))
	}

	return table, nil
}

// readFile parses one CSV file into its header and per-row cell maps
func readFile(path string) ([]string, []map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return parse(path, bufio.NewReader(f))
}

// naValues are the cell texts read as missing, in addition to the empty cell
var naValues = map[string]bool{
	"#N/A": true, "#N/A N/A": true, "#NA": true,
	"-1.#IND": true, "-1.#QNAN": true, "1.#IND": true, "1.#QNAN": true,
	"-NaN": true, "-nan": true, "NaN": true, "nan": true,
	"<NA>": true, "N/A": true, "NA": true, "n/a": true,
	"NULL": true, "null": true, "None": true,
}

// IsMissing reports whether a cell text denotes a missing value
func IsMissing(v string) bool {
	return v == "" || naValues[v]
}

func parse(name string, r io.Reader) ([]string, []map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	// A quote inside an unquoted field is kept as a literal character (12" sub)
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, &ParseError{File: name, Err: errors.New("no columns to parse from file")}
	}
	if err != nil {
		return nil, nil, wrapCSVError(name, err)
	}
	if err := checkUTF8(name, reader, header); err != nil {
		return nil, nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	header = dedupeHeader(header)

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, wrapCSVError(name, err)
		}

		if err := checkUTF8(name, reader, record); err != nil {
			return nil, nil, err
		}
		if len(record) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, nil, &ParseError{
				File: name,
				Line: line,
				Err:  fmt.Errorf("expected %d fields, saw %d", len(header), len(record)),
			}
		}

		fields := make(map[string]string, len(record))
		for i, v := range record {
			// Trailing cells of short records are missing too
			if IsMissing(v) {
				continue
			}
			fields[header[i]] = v
		}
		rows = append(rows, fields)
	}

	return header, rows, nil
}

// checkUTF8 rejects a record holding bytes that are not valid UTF-8
func checkUTF8(name string, reader *csv.Reader, record []string) error {
	for i, v := range record {
		if !utf8.ValidString(v) {
			line, col := reader.FieldPos(i)
			return &ParseError{
				File: name,
				Line: line,
				Err:  fmt.Errorf("invalid UTF-8 in field %d (column %d)", i+1, col),
			}
		}
	}
	return nil
}

func wrapCSVError(name string, err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{File: name, Line: csvErr.Line, Err: csvErr.Err}
	}
	return &ParseError{File: name, Err: err}
}

// dedupeHeader renames repeated column names to name.1, name.2, ...
func dedupeHeader(header []string) []string {
	seen := make(map[string]bool, len(header))
	out := make([]string, len(header))
	for i, name := range header {
		candidate := name
		for n := 1; seen[candidate]; n++ {
			candidate = name + "." + strconv.Itoa(n)
		}
		seen[candidate] = true
		out[i] = candidate
	}
	return out
}
