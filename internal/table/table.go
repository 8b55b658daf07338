// Package table provides the minimal flat-table representation exchanged
// between the pipeline stages: ordered string columns, string cells, empty
// string (or a literal NaN) meaning null. It is the currency of master
// snapshots, the merged output, and quality reports.
package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Table is an ordered set of named columns over string-celled rows.
// A nil *Table is treated as absent, not as an empty table.
type Table struct {
	cols  []string
	index map[string]int
	rows  [][]string
}

// New creates an empty table with the given column order.
func New(cols ...string) *Table {
	t := &Table{
		cols:  append([]string(nil), cols...),
		index: make(map[string]int, len(cols)),
	}
	for i, c := range t.cols {
		t.index[c] = i
	}
	return t
}

// Columns returns the column names in order. The caller must not mutate it.
func (t *Table) Columns() []string { return t.cols }

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return len(t.rows) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Append adds one row. The row is padded or truncated to the column count.
func (t *Table) Append(row []string) {
	r := make([]string, len(t.cols))
	copy(r, row)
	t.rows = append(t.rows, r)
}

// AppendMap adds one row from a column-name-to-value map; columns absent
// from the map are null.
func (t *Table) AppendMap(values map[string]string) {
	r := make([]string, len(t.cols))
	for name, v := range values {
		if i, ok := t.index[name]; ok {
			r[i] = v
		}
	}
	t.rows = append(t.rows, r)
}

// Cell returns the cell at row i in the named column. The second return
// is false when the column does not exist.
func (t *Table) Cell(i int, name string) (string, bool) {
	j, ok := t.index[name]
	if !ok {
		return "", false
	}
	return t.rows[i][j], true
}

// Column returns all cells of the named column in row order, or nil if
// the column does not exist.
func (t *Table) Column(name string) []string {
	j, ok := t.index[name]
	if !ok {
		return nil
	}
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[j]
	}
	return out
}

// Row returns the raw cells of row i. The caller must not mutate it.
func (t *Table) Row(i int) []string { return t.rows[i] }

// RowMap returns row i as a column-name-to-value map.
func (t *Table) RowMap(i int) map[string]string {
	m := make(map[string]string, len(t.cols))
	for j, c := range t.cols {
		m[c] = t.rows[i][j]
	}
	return m
}

// IsNull reports whether a cell value represents a missing value:
// empty after trimming, or a literal NaN in any case (what pandas-era
// exports of the upstream feeds contain).
func IsNull(cell string) bool {
	cell = strings.TrimSpace(cell)
	return cell == "" || strings.EqualFold(cell, "nan")
}

// Float parses a cell as float64; ok is false for null or non-numeric cells.
func Float(cell string) (float64, bool) {
	if IsNull(cell) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatFloat renders a float with the shortest exact representation,
// matching how source feeds carry numbers ("60", "60.5").
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// validate checks structural sanity when reading external files.
func validate(header []string) error {
	seen := make(map[string]bool, len(header))
	for _, c := range header {
		if c == "" {
			return fmt.Errorf("empty column name in header")
		}
		if seen[c] {
			return fmt.Errorf("duplicate column %q in header", c)
		}
		seen[c] = true
	}
	return nil
}
