// Package table holds the in-memory transaction table that the advisor works
// on, plus loaders that build it from CSV, Excel, and BigQuery sources.
package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Row maps a normalized column name to a cell value. Cells are float64,
// string, or nil for empty.
type Row map[string]interface{}

// Table is an ordered sequence of rows sharing one ordered set of columns.
type Table struct {
	Columns []string
	Rows    []Row
}

// New builds a table from raw text records. Headers are normalized and cell
// types are inferred: numeric text becomes float64, blank becomes nil.
func New(columns []string, records [][]string) *Table {
	values := make([][]interface{}, len(records))
	for i, rec := range records {
		row := make([]interface{}, len(rec))
		for j, cell := range rec {
			row[j] = parseCell(cell)
		}
		values[i] = row
	}
	return FromValues(columns, values)
}

// FromValues builds a table from already-typed cells. Records shorter than
// the header are padded with nil; extra cells are dropped.
func FromValues(columns []string, records [][]interface{}) *Table {
	t := &Table{
		Columns: NormalizeColumns(columns),
		Rows:    make([]Row, 0, len(records)),
	}
	for _, rec := range records {
		row := make(Row, len(t.Columns))
		for j, col := range t.Columns {
			if j < len(rec) {
				row[col] = rec[j]
			} else {
				row[col] = nil
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// NormalizeColumn lowercases and trims a header.
func NormalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeColumns normalizes every header, naming blanks "unnamed: N" and
// suffixing duplicates with ".N" so that each column stays addressable.
func NormalizeColumns(columns []string) []string {
	out := make([]string, len(columns))
	seen := make(map[string]int, len(columns))
	for i, c := range columns {
		name := NormalizeColumn(c)
		if name == "" {
			name = fmt.Sprintf("unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		out[i] = name
	}
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether col is one of the table's columns.
func (t *Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Value returns the cell at row i, column col.
func (t *Table) Value(i int, col string) interface{} {
	return t.Rows[i][col]
}

// Set overwrites a cell, adding the column if it is new.
func (t *Table) Set(i int, col string, v interface{}) {
	if !t.HasColumn(col) {
		t.Columns = append(t.Columns, col)
		for _, r := range t.Rows {
			r[col] = nil
		}
	}
	t.Rows[i][col] = v
}

// Clone returns a deep copy. Mutating the copy never affects the original.
func (t *Table) Clone() *Table {
	c := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		row := make(Row, len(r))
		for k, v := range r {
			row[k] = v
		}
		c.Rows[i] = row
	}
	return c
}

// Preview returns the first n rows in column-oriented form:
// column -> row index -> value.
func (t *Table) Preview(n int) map[string]map[string]interface{} {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	out := make(map[string]map[string]interface{}, len(t.Columns))
	for _, col := range t.Columns {
		cells := make(map[string]interface{}, n)
		for i := 0; i < n; i++ {
			cells[strconv.Itoa(i)] = t.Rows[i][col]
		}
		out[col] = cells
	}
	return out
}

// CellString renders a cell as text. Whole floats print without a fraction.
func CellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// IsBlank reports whether a cell holds no usable value.
func IsBlank(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case float64:
		return math.IsNaN(val)
	}
	return false
}

func parseCell(raw string) interface{} {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return s
}
