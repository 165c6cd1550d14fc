package table

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Kind is the value type held by a column.
type Kind int

const (
	// String columns hold text. Empty cells are stored as "".
	String Kind = iota
	// Int columns hold 64-bit integers.
	Int
	// Float columns hold nullable 64-bit floats.
	Float
	// Bool columns hold flags such as is_country.
	Bool
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case String:
		return "String"
	case Int:
		return "Int"
	case Float:
		return "Float"
	case Bool:
		return "Bool"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Col is a named, fully built column waiting to be assembled into a Table.
type Col struct {
	name string
	kind Kind
	arr  arrow.Array
}

// Name returns the column name.
func (c Col) Name() string { return c.name }

// Len returns the number of values in the column.
func (c Col) Len() int { return c.arr.Len() }

var mem = memory.DefaultAllocator

// Strings builds a string column.
func Strings(name string, vals ...string) Col {
	b := array.NewStringBuilder(mem)
	defer b.Release()
	b.Reserve(len(vals))
	for _, v := range vals {
		b.Append(v)
	}
	return Col{name: name, kind: String, arr: b.NewStringArray()}
}

// Ints builds an integer column.
func Ints(name string, vals ...int64) Col {
	b := array.NewInt64Builder(mem)
	defer b.Release()
	b.Reserve(len(vals))
	for _, v := range vals {
		b.Append(v)
	}
	return Col{name: name, kind: Int, arr: b.NewInt64Array()}
}

// Floats builds a nullable float column. NaN values are stored as nulls.
func Floats(name string, vals ...float64) Col {
	b := array.NewFloat64Builder(mem)
	defer b.Release()
	b.Reserve(len(vals))
	for _, v := range vals {
		if math.IsNaN(v) {
			b.AppendNull()
			continue
		}
		b.Append(v)
	}
	return Col{name: name, kind: Float, arr: b.NewFloat64Array()}
}

// Bools builds a boolean column.
func Bools(name string, vals ...bool) Col {
	b := array.NewBooleanBuilder(mem)
	defer b.Release()
	b.Reserve(len(vals))
	for _, v := range vals {
		b.Append(v)
	}
	return Col{name: name, kind: Bool, arr: b.NewBooleanArray()}
}

// column is the typed, read-only storage behind a Table column.
type column struct {
	name string
	kind Kind
	arr  arrow.Array

	str *array.String
	i64 *array.Int64
	f64 *array.Float64
	bln *array.Boolean
}

func newColumn(c Col) *column {
	col := &column{name: c.name, kind: c.kind, arr: c.arr}
	switch a := c.arr.(type) {
	case *array.String:
		col.str = a
	case *array.Int64:
		col.i64 = a
	case *array.Float64:
		col.f64 = a
	case *array.Boolean:
		col.bln = a
	}
	return col
}

// take copies the values at the given base positions into a new Col.
func (c *column) take(positions []int) Col {
	switch c.kind {
	case String:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		for _, p := range positions {
			if c.str.IsNull(p) {
				b.AppendNull()
				continue
			}
			b.Append(c.str.Value(p))
		}
		return Col{name: c.name, kind: String, arr: b.NewStringArray()}
	case Int:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		for _, p := range positions {
			if c.i64.IsNull(p) {
				b.AppendNull()
				continue
			}
			b.Append(c.i64.Value(p))
		}
		return Col{name: c.name, kind: Int, arr: b.NewInt64Array()}
	case Float:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		for _, p := range positions {
			if c.f64.IsNull(p) {
				b.AppendNull()
				continue
			}
			b.Append(c.f64.Value(p))
		}
		return Col{name: c.name, kind: Float, arr: b.NewFloat64Array()}
	default:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		for _, p := range positions {
			if c.bln.IsNull(p) {
				b.AppendNull()
				continue
			}
			b.Append(c.bln.Value(p))
		}
		return Col{name: c.name, kind: Bool, arr: b.NewBooleanArray()}
	}
}
