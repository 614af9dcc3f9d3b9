package translate

import (
	"fmt"

	"adaptql/internal/executor"
	"adaptql/internal/plan/expression"
	"adaptql/internal/plan/operator"
	"adaptql/internal/table"
)

// resolveTable materializes op into a single *table.Table: a bare Scan is
// returned directly (the common, zero-copy case for a join's base-table
// inputs), anything else is run to completion and its output rows
// collected into a fresh in-memory table (spec.md's physical plans do not
// otherwise need a join child to be anything but a table, but the
// operator tree is general enough to nest one, e.g. a join over the
// output of a Select).
func resolveTable(op operator.Operator, qs *executor.QueryState, opts Options, name string) (*table.Table, error) {
	if scan, ok := op.(*operator.Scan); ok {
		return scan.Table, nil
	}
	rows, err := collectRows(op, qs, opts)
	if err != nil {
		return nil, err
	}
	return materializeRows(name, rows), nil
}

// CompileHashJoin lowers the non-adaptive two-way join baseline (spec.md
// §4.9): build an equality index over the right side's key column, probe
// it once per left tuple. Matches a HashJoin translated into a single
// pass with no episode/budget bookkeeping at all — the non-adaptive
// baseline other regions are compared against in internal/oracle.
func CompileHashJoin(h *operator.HashJoin, qs *executor.QueryState, opts Options, consume Consume) error {
	left, err := resolveTable(h.Left, qs, opts, "hashjoin.left")
	if err != nil {
		return err
	}
	right, err := resolveTable(h.Right, qs, opts, "hashjoin.right")
	if err != nil {
		return err
	}

	rightCol, err := keyColumn(h.RightKey)
	if err != nil {
		return err
	}
	index := BuildIndex(rightCol, right.Cardinality())

	ctx := newContext(left, right)
	leftCard := left.Cardinality()
	for i := int32(0); i < leftCard; i++ {
		ctx.Idx[0] = i
		key := h.LeftKey.Eval(ctx)
		if key.Null {
			continue
		}
		b := index.GetBucket(key)
		for k := int32(0); k < b.Size(); k++ {
			ctx.Idx[1] = b.Get(k)
			if err := consume(allColumnsRow(ctx, left, right)); err != nil {
				return err
			}
		}
	}
	return nil
}

// keyColumn recognizes a bare ColumnRef join key (the only shape a
// column index can serve) and returns the column it reads.
func keyColumn(e expression.Expression) (*table.Column, error) {
	ref, ok := e.(*expression.ColumnRef)
	if !ok {
		return nil, fmt.Errorf("translate: hash join key must be a bare column reference, got %T", e)
	}
	return ref.Column, nil
}
