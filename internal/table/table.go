// Package table holds the raw, schema-less input model: a labelled table of
// string cells and read-only row views over it.
package table

import (
	"errors"
	"fmt"
	"strings"
)

// Table is one source dataset. Column names and order are whatever the
// upstream system produced.
type Table struct {
	Label   string     `json:"label"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

var ErrNoColumns = errors.New("table has no columns")

// Validate checks the structural contract the pipeline relies on. Rows
// shorter than the header are fine (missing cells read as empty); longer rows
// are not, because their extra cells cannot be attributed to a column.
func (t Table) Validate() error {
	if len(t.Columns) == 0 {
		return ErrNoColumns
	}
	seen := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		key := strings.ToLower(strings.TrimSpace(c))
		if key == "" {
			return fmt.Errorf("column %d has a blank name", i+1)
		}
		if j, dup := seen[key]; dup {
			return fmt.Errorf("duplicate column %q at positions %d and %d", c, j+1, i+1)
		}
		seen[key] = i
	}
	for i, row := range t.Rows {
		if len(row) > len(t.Columns) {
			return fmt.Errorf("row %d has %d cells but the header has %d columns", i+1, len(row), len(t.Columns))
		}
	}
	return nil
}

// Record returns a view over row i (0-based).
func (t Table) Record(i int) Record {
	return Record{columns: t.Columns, cells: t.Rows[i], index: t.indexFor()}
}

// Records returns views over every row in order.
func (t Table) Records() []Record {
	idx := t.indexFor()
	out := make([]Record, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = Record{columns: t.Columns, cells: row, index: idx}
	}
	return out
}

// Values returns up to limit non-empty trimmed values of column, in row order.
func (t Table) Values(column string, limit int) []string {
	pos := -1
	for i, c := range t.Columns {
		if c == column {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil
	}
	var out []string
	for _, row := range t.Rows {
		if limit > 0 && len(out) >= limit {
			break
		}
		if pos < len(row) {
			if v := strings.TrimSpace(row[pos]); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func (t Table) indexFor() map[string]int {
	idx := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		idx[c] = i
	}
	return idx
}

// Record is an ordered, read-only view of one row.
type Record struct {
	columns []string
	cells   []string
	index   map[string]int
}

// Get returns the cell under column, or "" when the column is unknown or the
// row is short.
func (r Record) Get(column string) string {
	if column == "" {
		return ""
	}
	i, ok := r.index[column]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return r.cells[i]
}

// Columns returns the column names in source order.
func (r Record) Columns() []string { return r.columns }
