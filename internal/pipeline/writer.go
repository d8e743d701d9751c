package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf16"

	"github.com/ppiankov/foodlabel/internal/model"
)

// JSONWriter writes a label set as a pretty-printed JSON object.
// Keys keep label set order, entries are "key": "value" and the file has no
// trailing newline, so output is byte-stable across runs.
type JSONWriter struct {
	indent      int
	ensureASCII bool
}

// NewJSONWriter creates a writer; ensureASCII escapes every non-ASCII rune as \uXXXX
func NewJSONWriter(indent int, ensureASCII bool) *JSONWriter {
	if indent < 0 {
		indent = 0
	}
	return &JSONWriter{
		indent:      indent,
		ensureASCII: ensureASCII,
	}
}

// Encode renders labels to bytes
func (w *JSONWriter) Encode(labels *model.LabelSet) []byte {
	if labels == nil || labels.Len() == 0 {
		return []byte("{}")
	}

	pad := strings.Repeat(" ", w.indent)
	var buf bytes.Buffer
	buf.WriteString("{\n")
	first := true
	labels.Each(func(food, label string) {
		if !first {
			buf.WriteString(",\n")
		}
		first = false
		buf.WriteString(pad)
		w.writeString(&buf, food)
		buf.WriteString(": ")
		w.writeString(&buf, label)
	})
	buf.WriteString("\n}")
	return buf.Bytes()
}

// Write replaces path with the encoded labels.
// The file is written next to path and renamed into place.
func (w *JSONWriter) Write(labels *model.LabelSet, path string) error {
	return writeFileAtomic(path, w.Encode(labels))
}

func (w *JSONWriter) writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			switch {
			case r < 0x20:
				fmt.Fprintf(buf, `\u%04x`, r)
			case w.ensureASCII && r > 0x7e:
				if r > 0xffff {
					hi, lo := utf16.EncodeRune(r)
					fmt.Fprintf(buf, `\u%04x\u%04x`, hi, lo)
				} else {
					fmt.Fprintf(buf, `\u%04x`, r)
				}
			default:
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}

// writeFileAtomic writes data to a temp file in path's directory and renames it over path
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
