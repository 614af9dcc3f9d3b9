// Package table implements the materialized, column-oriented table
// input the executor scans and joins over. spec.md §1 scopes catalog
// loading and DDL parsing out: callers hand this package already-typed
// columns (e.g. loaded from TOML fixtures by LoadFixtureFile, as the
// TPC-H end-to-end tests do), and it exposes them the way generated scan code reads them
// — one densely packed slice per column, addressed by tuple index.
package table

import "adaptql/internal/types"

// Column is one densely packed, tuple-id-addressed column of a fixed
// kind. Storage is unexported and type-specific per types.Kind so scans
// can read native-width values without a Value boxing allocation per
// tuple; Value is provided for predicate evaluation, the oracle
// comparator, and result formatting.
type Column struct {
	Name string
	Kind types.Kind

	bools    []bool
	ints16   []int16
	ints32   []int32
	ints64   []int64 // also backs DATE, unix-millis of civil midnight
	reals    []float64
	strs     []types.String
	enumVals []int32
	enumNS   int32
	enumReg  *types.EnumRegistry
	nulls    []bool
}

func NewBooleanColumn(name string, values []bool, nulls []bool) *Column {
	return &Column{Name: name, Kind: types.Boolean, bools: values, nulls: nulls}
}

func NewSmallIntColumn(name string, values []int16, nulls []bool) *Column {
	return &Column{Name: name, Kind: types.SmallInt, ints16: values, nulls: nulls}
}

func NewIntColumn(name string, values []int32, nulls []bool) *Column {
	return &Column{Name: name, Kind: types.Int, ints32: values, nulls: nulls}
}

func NewBigIntColumn(name string, values []int64, nulls []bool) *Column {
	return &Column{Name: name, Kind: types.BigInt, ints64: values, nulls: nulls}
}

func NewRealColumn(name string, values []float64, nulls []bool) *Column {
	return &Column{Name: name, Kind: types.Real, reals: values, nulls: nulls}
}

// NewDateColumn takes unix-millis-of-civil-midnight values, as produced
// by types.CivilDay.
func NewDateColumn(name string, values []int64, nulls []bool) *Column {
	return &Column{Name: name, Kind: types.Date, ints64: values, nulls: nulls}
}

func NewTextColumn(name string, values []types.String, nulls []bool) *Column {
	return &Column{Name: name, Kind: types.Text, strs: values, nulls: nulls}
}

func NewEnumColumn(name string, reg *types.EnumRegistry, namespace int32, values []int32, nulls []bool) *Column {
	return &Column{Name: name, Kind: types.Enum, enumVals: values, enumNS: namespace, enumReg: reg, nulls: nulls}
}

// Size returns the column's tuple count.
func (c *Column) Size() int32 {
	switch c.Kind {
	case types.Boolean:
		return int32(len(c.bools))
	case types.SmallInt:
		return int32(len(c.ints16))
	case types.Int:
		return int32(len(c.ints32))
	case types.BigInt, types.Date:
		return int32(len(c.ints64))
	case types.Real:
		return int32(len(c.reals))
	case types.Text:
		return int32(len(c.strs))
	case types.Enum:
		return int32(len(c.enumVals))
	}
	return 0
}

// IsNull reports whether tuple idx is NULL in this column.
func (c *Column) IsNull(idx int32) bool {
	return c.nulls != nil && c.nulls[idx]
}

// Value boxes tuple idx's value. Compiled predicate code should prefer
// the typed accessors below; Value exists for the interpreted reference
// path (internal/oracle, internal/resultset, tests).
func (c *Column) Value(idx int32) types.Value {
	if c.IsNull(idx) {
		return types.NullValue(c.Kind)
	}
	switch c.Kind {
	case types.Boolean:
		return types.BoolValue(c.bools[idx])
	case types.SmallInt:
		return types.SmallIntValue(c.ints16[idx])
	case types.Int:
		return types.IntValue(c.ints32[idx])
	case types.BigInt:
		return types.BigIntValue(c.ints64[idx])
	case types.Real:
		return types.RealValue(c.reals[idx])
	case types.Date:
		return types.DateValue(c.ints64[idx])
	case types.Text:
		return types.TextValue(c.strs[idx].String())
	case types.Enum:
		v := types.EnumValue(c.enumNS, c.enumVals[idx])
		if c.enumReg != nil {
			if resolved, err := c.enumReg.ResolveValue(v); err == nil {
				return resolved
			}
		}
		return v
	}
	panic("table: unknown column kind")
}

func (c *Column) Bool(idx int32) bool      { return c.bools[idx] }
func (c *Column) SmallInt(idx int32) int16 { return c.ints16[idx] }
func (c *Column) Int(idx int32) int32      { return c.ints32[idx] }
func (c *Column) BigInt(idx int32) int64   { return c.ints64[idx] }
func (c *Column) Real(idx int32) float64   { return c.reals[idx] }
func (c *Column) Date(idx int32) int64     { return c.ints64[idx] }
func (c *Column) Text(idx int32) *types.String { return &c.strs[idx] }
func (c *Column) Enum(idx int32) int32     { return c.enumVals[idx] }

// Table is a named, column-oriented relation: every Column has the same
// Size, the cardinality the executor's episode loop bounds episodes
// against.
type Table struct {
	Name    string
	Columns []*Column
	index   map[string]*Column
}

func New(name string, columns ...*Column) *Table {
	t := &Table{Name: name, Columns: columns, index: make(map[string]*Column, len(columns))}
	for _, c := range columns {
		t.index[c.Name] = c
	}
	return t
}

// Cardinality is the row count shared by every column.
func (t *Table) Cardinality() int32 {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Size()
}

// Column looks up a column by name, or nil if absent.
func (t *Table) Column(name string) *Column { return t.index[name] }
