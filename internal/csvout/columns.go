// Package csvout renders aggregation result documents as delimited text.
//
// A field that contains the separator or holds a list is wrapped in double
// quotes, and nothing else is escaped. Double quotes inside a field are
// written as is, so output containing them is not valid RFC 4180 CSV.
package csvout

import (
	"sort"
	"strings"

	"aggcsv/internal/domain"
)

// DefaultSeparator separates fields when none is configured.
const DefaultSeparator = ','

// Column is one output column.
type Column struct {
	// Key is the field name as it appears in the documents.
	Key string
	// Label is the header text: Key, quoted when it contains the separator.
	Label string
}

// ResolveColumns returns the union of keys across docs, one column per
// distinct key, sorted by label.
func ResolveColumns(docs []*domain.Object, sep rune) []Column {
	seen := make(map[string]struct{})
	var cols []Column
	for _, doc := range docs {
		for _, key := range doc.Keys() {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			cols = append(cols, Column{Key: key, Label: escape(key, sep)})
		}
	}

	sort.SliceStable(cols, func(i, j int) bool { return cols[i].Label < cols[j].Label })
	return cols
}

// Labels returns the header labels of cols.
func Labels(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Label
	}
	return out
}

func escape(s string, sep rune) string {
	if strings.ContainsRune(s, sep) {
		return quote(s)
	}
	return s
}

func quote(s string) string {
	return `"` + s + `"`
}
