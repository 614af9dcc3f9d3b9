package translate

import (
	"adaptql/internal/plan/expression"
	"adaptql/internal/plan/operator"
)

// CompileScan lowers a bare operator.Scan: project every column of every
// tuple in the table, in tuple order. This is the base case every other
// translator eventually bottoms out at.
func CompileScan(s *operator.Scan, consume Consume) error {
	ctx := newContext(s.Table)
	card := s.Table.Cardinality()
	for i := int32(0); i < card; i++ {
		ctx.Idx[0] = i
		if err := consume(allColumnsRow(ctx, s.Table)); err != nil {
			return err
		}
	}
	return nil
}

// CompileLinearScanSelect lowers operator.Select the non-adaptive way
// (spec.md §4.9's baseline): evaluate every predicate, in the order
// given, against every tuple of the table the child scan produces. This
// is what skinner_scan_select = "none" compiles to, and what the
// end-to-end oracle comparisons (internal/oracle) run to get a reference
// output independent of the adaptive search's episode scheduling.
//
// child must ultimately bottom out at a single-table scan; Select only
// ever wraps a Scan or another Select in this engine's physical plans
// (a multi-table WHERE clause is expressed as a join condition, not a
// Select predicate).
func CompileLinearScanSelect(sel *operator.Select, consume Consume) error {
	scan, ctx, err := singleTableContext(sel.Child)
	if err != nil {
		return err
	}
	card := scan.Table.Cardinality()

	preds := sel.Predicates
	for inner, ok := sel.Child.(*operator.Select); ok; inner, ok = inner.Child.(*operator.Select) {
		preds = append(preds[:len(preds):len(preds)], inner.Predicates...)
	}

	for i := int32(0); i < card; i++ {
		ctx.Idx[0] = i
		ok := true
		for _, p := range preds {
			if !evalBool(p, ctx) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if err := consume(allColumnsRow(ctx, scan.Table)); err != nil {
			return err
		}
	}
	return nil
}

// singleTableContext unwraps a Scan (optionally nested under further
// Selects, whose predicates CompileLinearScanSelect folds into one
// predicate list) down to the single table it scans, returning a fresh
// Context bound to that table.
func singleTableContext(op operator.Operator) (*operator.Scan, *expression.Context, error) {
	switch n := op.(type) {
	case *operator.Scan:
		return n, newContext(n.Table), nil
	case *operator.Select:
		scan, ctx, err := singleTableContext(n.Child)
		if err != nil {
			return nil, nil, err
		}
		return scan, ctx, nil
	default:
		return nil, nil, errUnsupportedChild(op)
	}
}
