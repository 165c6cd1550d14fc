// Package table provides immutable, Arrow-backed in-memory tables and
// zero-copy row views over them.
//
// A Table is a set of equally long named columns. Operations that narrow or
// reorder rows (Take, Filter) return a view that shares the parent's arrays
// and only carries a row index list, so the loaded datasets can be shared
// freely between concurrent queries.
package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

// Table is an ordered collection of equally long named columns.
// A Table is never mutated after construction.
type Table struct {
	cols  []*column
	index map[string]int
	rows  []int // positions into the column arrays; nil means all rows in order
	base  int
}

// New assembles a table from columns. All columns must have the same length
// and distinct names.
func New(cols ...Col) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := t.index[c.name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.name)
		}
		if i == 0 {
			t.base = c.Len()
		} else if c.Len() != t.base {
			return nil, fmt.Errorf("%w: %q has %d values, want %d", ErrLengthMismatch, c.name, c.Len(), t.base)
		}
		t.index[c.name] = i
		t.cols = append(t.cols, newColumn(c))
	}
	return t, nil
}

// MustNew is like New but panics on error. Intended for fixtures.
func MustNew(cols ...Col) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of rows visible through this table.
func (t *Table) Len() int {
	if t.rows != nil {
		return len(t.rows)
	}
	return t.base
}

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.name
	}
	return names
}

// Has reports whether the table has a column with the given name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Kind returns the kind of the named column.
func (t *Table) Kind(name string) (Kind, bool) {
	c, ok := t.col(name)
	if !ok {
		return 0, false
	}
	return c.kind, true
}

// Schema describes the table columns as an Arrow schema.
func (t *Table) Schema() *arrow.Schema {
	fields := make([]arrow.Field, len(t.cols))
	for i, c := range t.cols {
		fields[i] = arrow.Field{Name: c.name, Type: c.arr.DataType(), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func (t *Table) col(name string) (*column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

func (t *Table) pos(row int) int {
	if t.rows != nil {
		return t.rows[row]
	}
	return row
}

// IsNull reports whether the cell is null. Missing columns read as null.
func (t *Table) IsNull(row int, name string) bool {
	c, ok := t.col(name)
	if !ok {
		return true
	}
	return c.arr.IsNull(t.pos(row))
}

// String returns the cell rendered as text. Nulls and missing columns give "".
func (t *Table) String(row int, name string) string {
	c, ok := t.col(name)
	if !ok {
		return ""
	}
	p := t.pos(row)
	if c.arr.IsNull(p) {
		return ""
	}
	switch c.kind {
	case String:
		return c.str.Value(p)
	case Int:
		return strconv.FormatInt(c.i64.Value(p), 10)
	case Float:
		return strconv.FormatFloat(c.f64.Value(p), 'f', -1, 64)
	default:
		return strconv.FormatBool(c.bln.Value(p))
	}
}

// Float returns the numeric value of a Float or Int cell.
// ok is false for nulls, missing columns and non-numeric columns.
func (t *Table) Float(row int, name string) (v float64, ok bool) {
	c, found := t.col(name)
	if !found {
		return 0, false
	}
	p := t.pos(row)
	if c.arr.IsNull(p) {
		return 0, false
	}
	switch c.kind {
	case Float:
		return c.f64.Value(p), true
	case Int:
		return float64(c.i64.Value(p)), true
	}
	return 0, false
}

// Int returns the value of an Int cell, or of a Float cell holding a whole number.
func (t *Table) Int(row int, name string) (v int64, ok bool) {
	c, found := t.col(name)
	if !found {
		return 0, false
	}
	p := t.pos(row)
	if c.arr.IsNull(p) {
		return 0, false
	}
	switch c.kind {
	case Int:
		return c.i64.Value(p), true
	case Float:
		f := c.f64.Value(p)
		if f == math.Trunc(f) {
			return int64(f), true
		}
	}
	return 0, false
}

// Bool returns the value of a Bool cell. Anything else reads as false.
func (t *Table) Bool(row int, name string) bool {
	c, ok := t.col(name)
	if !ok || c.kind != Bool {
		return false
	}
	p := t.pos(row)
	return !c.bln.IsNull(p) && c.bln.Value(p)
}

// Value returns the cell as string, int64, float64 or bool, or nil when null.
func (t *Table) Value(row int, name string) any {
	c, ok := t.col(name)
	if !ok {
		return nil
	}
	p := t.pos(row)
	if c.arr.IsNull(p) {
		return nil
	}
	switch c.kind {
	case String:
		return c.str.Value(p)
	case Int:
		return c.i64.Value(p)
	case Float:
		return c.f64.Value(p)
	default:
		return c.bln.Value(p)
	}
}

// Match reports whether the cell equals v. Comparison is tolerant of the
// caller's representation: an Int cell holding 2010 matches 2010, int64(2010),
// 2010.0 and "2010". Null cells never match.
func (t *Table) Match(row int, name string, v any) bool {
	c, ok := t.col(name)
	if !ok {
		return false
	}
	p := t.pos(row)
	if c.arr.IsNull(p) {
		return false
	}
	switch c.kind {
	case String:
		s, ok := asString(v)
		return ok && c.str.Value(p) == s
	case Int:
		f, ok := asFloat(v)
		return ok && float64(c.i64.Value(p)) == f
	case Float:
		f, ok := asFloat(v)
		return ok && c.f64.Value(p) == f
	default:
		b, ok := asBool(v)
		return ok && c.bln.Value(p) == b
	}
}

// Take returns a view holding the given rows, in the given order.
// Row numbers are relative to t.
func (t *Table) Take(rows []int) *Table {
	positions := make([]int, len(rows))
	for i, r := range rows {
		positions[i] = t.pos(r)
	}
	return &Table{cols: t.cols, index: t.index, rows: positions, base: t.base}
}

// Filter returns a view of the rows for which keep returns true.
func (t *Table) Filter(keep func(row int) bool) *Table {
	rows := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	return t.Take(rows)
}

// Select returns a view restricted to the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	out := &Table{index: make(map[string]int, len(names)), rows: t.rows, base: t.base}
	for _, n := range names {
		c, ok := t.col(n)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, n)
		}
		if _, dup := out.index[n]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, n)
		}
		out.index[n] = len(out.cols)
		out.cols = append(out.cols, c)
	}
	return out, nil
}

// Materialize copies the visible rows into fresh arrays. Tables that are not
// views are returned as is.
func (t *Table) Materialize() *Table {
	if t.rows == nil {
		return t
	}
	cols := make([]Col, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.take(t.rows)
	}
	return MustNew(cols...)
}

// With returns a materialized copy of the table with extra columns appended.
// Each extra column must have one value per visible row.
func (t *Table) With(extra ...Col) (*Table, error) {
	m := t.Materialize()
	cols := make([]Col, 0, len(m.cols)+len(extra))
	for _, c := range m.cols {
		cols = append(cols, Col{name: c.name, kind: c.kind, arr: c.arr})
	}
	return New(append(cols, extra...)...)
}

// WithBool returns a copy of the table with an extra boolean column computed
// per visible row.
func (t *Table) WithBool(name string, fn func(row int) bool) (*Table, error) {
	if t.Has(name) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
	}
	vals := make([]bool, t.Len())
	for i := range vals {
		vals[i] = fn(i)
	}
	return t.With(Bools(name, vals...))
}

func asString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case fmt.Stringer:
		return x.String(), true
	case nil:
		return "", false
	}
	return fmt.Sprint(v), true
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

func asBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(x)))
		return b, err == nil
	}
	return false, false
}
