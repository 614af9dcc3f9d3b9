package translate

import (
	"fmt"

	"adaptql/internal/table"
	"adaptql/internal/types"
)

// materializeRows builds an ad hoc, column-oriented table.Table out of
// already-evaluated Rows, for join/group-by/order-by inputs that are not
// a bare Scan (spec.md's physical plans otherwise assume every region
// reads directly off a catalog-resident table). ENUM columns degrade to
// TEXT, carrying their already-resolved display string: a materialized
// intermediate result has no single EnumRegistry namespace of its own to
// re-attach, and every downstream consumer (predicates, hashing, output)
// only ever needs the resolved string once a value has left its source
// column.
func materializeRows(name string, rows []Row) *table.Table {
	if len(rows) == 0 {
		return table.New(name)
	}
	width := len(rows[0])
	cols := make([]*table.Column, width)
	for c := 0; c < width; c++ {
		cols[c] = buildColumn(fmt.Sprintf("%s.%d", name, c), c, rows)
	}
	return table.New(name, cols...)
}

func buildColumn(colName string, colIdx int, rows []Row) *table.Column {
	n := len(rows)
	nulls := make([]bool, n)
	kind := firstNonNullKind(rows, colIdx)

	switch kind {
	case types.Boolean:
		vals := make([]bool, n)
		for i, r := range rows {
			if v := r[colIdx]; v.Null {
				nulls[i] = true
			} else {
				vals[i] = v.Bool
			}
		}
		return table.NewBooleanColumn(colName, vals, nulls)
	case types.SmallInt:
		vals := make([]int16, n)
		for i, r := range rows {
			if v := r[colIdx]; v.Null {
				nulls[i] = true
			} else {
				vals[i] = v.Int16
			}
		}
		return table.NewSmallIntColumn(colName, vals, nulls)
	case types.Int:
		vals := make([]int32, n)
		for i, r := range rows {
			if v := r[colIdx]; v.Null {
				nulls[i] = true
			} else {
				vals[i] = v.Int32
			}
		}
		return table.NewIntColumn(colName, vals, nulls)
	case types.BigInt:
		vals := make([]int64, n)
		for i, r := range rows {
			if v := r[colIdx]; v.Null {
				nulls[i] = true
			} else {
				vals[i] = v.Int64
			}
		}
		return table.NewBigIntColumn(colName, vals, nulls)
	case types.Date:
		vals := make([]int64, n)
		for i, r := range rows {
			if v := r[colIdx]; v.Null {
				nulls[i] = true
			} else {
				vals[i] = v.Int64
			}
		}
		return table.NewDateColumn(colName, vals, nulls)
	case types.Real:
		vals := make([]float64, n)
		for i, r := range rows {
			if v := r[colIdx]; v.Null {
				nulls[i] = true
			} else {
				vals[i] = v.Float64
			}
		}
		return table.NewRealColumn(colName, vals, nulls)
	default: // types.Text, types.Enum
		vals := make([]types.String, n)
		for i, r := range rows {
			v := r[colIdx]
			if v.Null {
				nulls[i] = true
				continue
			}
			if v.Kind == types.Enum {
				vals[i] = v.Str
			} else {
				vals[i] = v.Str
			}
		}
		return table.NewTextColumn(colName, vals, nulls)
	}
}

// firstNonNullKind finds colIdx's SQL kind from the first row where it is
// not NULL, falling back to TEXT (an all-NULL column carries no type
// information of its own at this layer).
func firstNonNullKind(rows []Row, colIdx int) types.Kind {
	for _, r := range rows {
		if !r[colIdx].Null {
			return r[colIdx].Kind
		}
	}
	return types.Text
}
