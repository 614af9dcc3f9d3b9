package translate

import (
	"encoding/binary"

	"adaptql/internal/executor"
	"adaptql/internal/plan/expression"
	"adaptql/internal/plan/operator"
	"adaptql/internal/runtime/vector"
	"adaptql/internal/types"
)

// CompileOrderBy lowers ORDER BY (spec.md's R3 sibling): the child is
// fully materialized, each row's tuple index is pushed onto a Vector,
// sorted with Keys/Descending as the comparator, then the sorted rows
// are replayed in order. A Vector of tuple indices (rather than the rows
// themselves) keeps the sorted element fixed-size regardless of row
// width, matching vector::sort's fixed-element-size contract.
func CompileOrderBy(o *operator.OrderBy, qs *executor.QueryState, opts Options, consume Consume) error {
	rows, err := collectRows(o.Child, qs, opts)
	if err != nil {
		return err
	}
	src := materializeRows("orderby.child", rows)
	ctx := newContext(src)

	v := vector.Create(4, len(rows)+1)
	defer v.Free()
	for i := range rows {
		binary.LittleEndian.PutUint32(v.PushBack(), uint32(i))
	}

	v.Sort(func(a, b []byte) bool {
		ia := int32(binary.LittleEndian.Uint32(a))
		ib := int32(binary.LittleEndian.Uint32(b))
		return less(ctx, o.Keys, o.Descending, ia, ib)
	})

	for i := 0; i < v.Size(); i++ {
		idx := int32(binary.LittleEndian.Uint32(v.Get(i)))
		if err := consume(rows[idx]); err != nil {
			return err
		}
	}
	return nil
}

// less compares tuples a and b under keys/descending, in key order: the
// first key that differs decides. A NULL sorts before any non-NULL value
// in an ascending key and after it in a descending one.
func less(ctx *expression.Context, keys []expression.Expression, descending []bool, a, b int32) bool {
	for k, e := range keys {
		ctx.Idx[0] = a
		va := e.Eval(ctx)
		ctx.Idx[0] = b
		vb := e.Eval(ctx)

		cmp := compareValues(va, vb)
		if cmp == 0 {
			continue
		}
		if k < len(descending) && descending[k] {
			return cmp > 0
		}
		return cmp < 0
	}
	return false
}

// compareValues returns -1, 0, or 1 comparing a and b, with NULL
// ordered before any non-NULL value.
func compareValues(a, b types.Value) int {
	if a.Null && b.Null {
		return 0
	}
	if a.Null {
		return -1
	}
	if b.Null {
		return 1
	}
	if lt, _ := types.LessThan(a, b); lt {
		return -1
	}
	if eq, _ := types.Equal(a, b); eq {
		return 0
	}
	return 1
}
