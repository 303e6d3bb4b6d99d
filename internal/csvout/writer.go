package csvout

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"aggcsv/internal/domain"
)

// Writer serializes documents against a resolved column set.
type Writer struct {
	sep  rune
	join string
}

// NewWriter creates a Writer using sep between fields. A zero sep selects
// DefaultSeparator.
func NewWriter(sep rune) *Writer {
	if sep == 0 {
		sep = DefaultSeparator
	}
	return &Writer{sep: sep, join: string(sep)}
}

// Separator returns the field separator.
func (w *Writer) Separator() rune { return w.sep }

// Header renders the header line without its terminating newline.
func (w *Writer) Header(cols []Column) string {
	return strings.Join(Labels(cols), w.join)
}

// Row renders one document without its terminating newline. Every column
// yields exactly one field; keys missing from doc yield an empty field.
func (w *Writer) Row(cols []Column, doc *domain.Object) string {
	fields := make([]string, len(cols))
	for i, c := range cols {
		val, ok := doc.Get(c.Key)
		if !ok {
			continue
		}
		fields[i] = w.cell(val)
	}
	return strings.Join(fields, w.join)
}

func (w *Writer) cell(v domain.Value) string {
	if items, ok := v.AsList(); ok {
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = item.String()
		}
		return quote(strings.Join(parts, w.join))
	}
	if s, ok := v.AsText(); ok {
		return escape(s, w.sep)
	}
	return v.String()
}

// Write renders the header and one row per document to out. Output is
// buffered and flushed once at the end.
func (w *Writer) Write(out io.Writer, cols []Column, docs []*domain.Object) (int, error) {
	bw := bufio.NewWriter(out)
	if _, err := fmt.Fprintln(bw, w.Header(cols)); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	for _, doc := range docs {
		if _, err := fmt.Fprintln(bw, w.Row(cols, doc)); err != nil {
			return 0, fmt.Errorf("write row: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("flush output: %w", err)
	}
	return len(docs), nil
}
