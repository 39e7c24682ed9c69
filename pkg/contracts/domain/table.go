package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Table is a time-indexed set of numeric instrument channels.
// Values is row-major: Values[i][j] is column j of the row stamped Index[i].
// Missing observations are stored as NaN.
type Table struct {
	Columns []string
	Index   []time.Time
	Values  [][]float64
}

// NewTable creates an empty table with the given columns
func NewTable(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Index)
}

// ColumnIndex returns the position of the named column, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table carries the named column
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Column returns a copy of the named column's values
func (t *Table) Column(name string) ([]float64, bool) {
	j := t.ColumnIndex(name)
	if j < 0 {
		return nil, false
	}
	out := make([]float64, len(t.Values))
	for i, row := range t.Values {
		out[i] = row[j]
	}
	return out, true
}

// Value returns the value at row i of the named column. Unknown columns read as NaN.
func (t *Table) Value(i int, name string) float64 {
	j := t.ColumnIndex(name)
	if j < 0 {
		return math.NaN()
	}
	return t.Values[i][j]
}

// AppendRow adds a row while a table is being built.
// The values slice is copied; len(values) must equal len(t.Columns).
func (t *Table) AppendRow(ts time.Time, values []float64) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.Columns))
	}
	row := make([]float64, len(values))
	copy(row, values)
	t.Index = append(t.Index, ts)
	t.Values = append(t.Values, row)
	return nil
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	out := NewTable(t.Columns)
	out.Index = make([]time.Time, len(t.Index))
	copy(out.Index, t.Index)
	out.Values = make([][]float64, len(t.Values))
	for i, row := range t.Values {
		out.Values[i] = append([]float64(nil), row...)
	}
	return out
}

// WithColumn returns a copy of the table with the named column set to values.
// An existing column of that name is replaced, otherwise the column is appended.
func (t *Table) WithColumn(name string, values []float64) (*Table, error) {
	if len(values) != t.Len() {
		return nil, fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), t.Len())
	}

	out := t.Clone()
	j := out.ColumnIndex(name)
	if j < 0 {
		out.Columns = append(out.Columns, name)
		for i := range out.Values {
			out.Values[i] = append(out.Values[i], values[i])
		}
		return out, nil
	}
	for i := range out.Values {
		out.Values[i][j] = values[i]
	}
	return out, nil
}

// Select returns a copy restricted to the named columns, in the given order
func (t *Table) Select(columns ...string) (*Table, error) {
	idx := make([]int, len(columns))
	for k, name := range columns {
		j := t.ColumnIndex(name)
		if j < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		idx[k] = j
	}

	out := NewTable(columns)
	out.Index = append([]time.Time(nil), t.Index...)
	out.Values = make([][]float64, len(t.Values))
	for i, row := range t.Values {
		sel := make([]float64, len(idx))
		for k, j := range idx {
			sel[k] = row[j]
		}
		out.Values[i] = sel
	}
	return out, nil
}

// Filter returns a copy holding only the rows whose timestamp satisfies keep
func (t *Table) Filter(keep func(ts time.Time) bool) *Table {
	out := NewTable(t.Columns)
	for i, ts := range t.Index {
		if keep(ts) {
			out.Index = append(out.Index, ts)
			out.Values = append(out.Values, append([]float64(nil), t.Values[i]...))
		}
	}
	return out
}

// Map returns a copy with fn applied to every value
func (t *Table) Map(fn func(column string, v float64) float64) *Table {
	out := t.Clone()
	for _, row := range out.Values {
		for j := range row {
			row[j] = fn(out.Columns[j], row[j])
		}
	}
	return out
}

// IsSorted reports whether the index is non-decreasing
func (t *Table) IsSorted() bool {
	return sort.SliceIsSorted(t.Index, func(i, j int) bool {
		return t.Index[i].Before(t.Index[j])
	})
}

// Span returns the first and last timestamps of a sorted table
func (t *Table) Span() (time.Time, time.Time, bool) {
	if t.Len() == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t.Index[0], t.Index[len(t.Index)-1], true
}
