package translate

import (
	"sort"

	"github.com/pingcap/tidb/pkg/parser/opcode"

	"adaptql/internal/compile"
	"adaptql/internal/executor"
	"adaptql/internal/plan/expression"
	"adaptql/internal/plan/operator"
	"adaptql/internal/runtime/bucket"
	"adaptql/internal/types"
)

// CompileSkinnerScanSelect lowers the adaptive form of Select (spec.md
// §4.6.2): a single compiled handler, reinstalled with a fresh predicate
// order (and index-vs-scan choice per indexed predicate) before every
// episode, walking the underlying table's tuple-id space once in total
// regardless of how many episodes it takes: each episode resumes after
// the last tuple the previous ones completed. Unlike a join region, a
// scan-select region has only one physical level and scans its one
// table's tuple ids monotonically, so no dedup table is needed here —
// every tuple id is emitted at most once across the whole episode
// sequence; a tuple that ends an episode by failing a predicate is
// examined again by the next one (spec.md §4.7 scopes dedup to join
// regions specifically).
func CompileSkinnerScanSelect(n *operator.SkinnerScanSelect, qs *executor.QueryState, opts Options, consume Consume) error {
	scan, ctx, err := singleTableContext(n.Child)
	if err != nil {
		return err
	}
	tbl := scan.Table
	card := tbl.Cardinality()

	indexes := make(map[int]EqualityIndex, len(n.ColumnIndexes))
	for p, col := range n.ColumnIndexes {
		indexes[p] = BuildIndex(col, card)
	}

	var order, indexOrder []int
	install := func(idxOrder, o []int) {
		indexOrder = append(indexOrder[:0], idxOrder...)
		order = append(order[:0], o...)
	}

	state := compile.NewProgressState(1, len(n.Predicates))

	var consumeErr error
	done := false

	examine := func(i int32) bool {
		ctx.Idx[0] = i
		for _, p := range order {
			if !evalBool(n.Predicates[p], ctx) {
				return false
			}
		}
		return true
	}

	rawEntry := compile.Handler(func(budget int32, resumeProgress bool) int32 {
		startTuple := int32(0)
		if resumeProgress && state.Offset[0] >= 0 {
			startTuple = state.Offset[0] + 1
		}

		next := scanIterator(card, indexOrder, n.Predicates, indexes, startTuple)

		for {
			if done || consumeErr != nil {
				state.Idx[0] = card - 1
				return budget
			}
			tupleIdx, ok := next()
			if !ok {
				state.Idx[0] = card - 1
				return budget
			}

			budget--
			pass := examine(tupleIdx)
			if pass {
				ctx.Idx[0] = tupleIdx
				if err := consume(allColumnsRow(ctx, tbl)); err != nil {
					consumeErr = err
					done = true
				}
			}
			if !pass {
				if budget <= 0 {
					state.Idx[0] = tupleIdx
					state.TableCtr = 0
					return compile.StatusPredicateExhausted
				}
				continue
			}
			if budget <= 0 {
				state.Idx[0] = tupleIdx
				state.TableCtr = 0
				return compile.StatusBudgetExhausted
			}
		}
	})

	opts = opts.WithDefaults()
	entry, err := compileEntry(opts, "skinnerscanselect.entry", rawEntry)
	if err != nil {
		return err
	}

	budget := n.BudgetPerEpisode
	if budget == 0 {
		budget = opts.ScanSelectBudgetPerEpisode
	}
	if err := executor.RunScanSelect(qs, card, len(n.Predicates), n.IndexedPredicates, budget, n.Seed, n.Forget, install, entry, state); err != nil {
		return err
	}
	return consumeErr
}

// scanIterator returns a closure producing ascending tuple ids >= start
// to examine for one handler invocation: the sorted intersection of
// every index-selected predicate's bucket when indexOrder is non-empty,
// or the plain tuple-id range otherwise. Index-selected predicates are
// never re-evaluated as residual predicates (the caller's order already
// excludes them) since index membership already proves them true.
func scanIterator(card int32, indexOrder []int, predicates []expression.Expression, indexes map[int]EqualityIndex, start int32) func() (int32, bool) {
	if len(indexOrder) == 0 {
		i := start
		return func() (int32, bool) {
			if i >= card {
				return 0, false
			}
			v := i
			i++
			return v, true
		}
	}

	list := bucket.NewList()
	for _, p := range indexOrder {
		lit, ok := equalityLiteral(predicates[p])
		if !ok {
			continue
		}
		idx, ok := indexes[p]
		if !ok {
			continue
		}
		list.PushBack(idx.GetBucket(lit))
	}
	cands := bucket.Intersect(list)
	pos := sort.Search(len(cands), func(k int) bool { return cands[k] >= start })
	return func() (int32, bool) {
		if pos >= len(cands) {
			return 0, false
		}
		v := cands[pos]
		pos++
		return v, true
	}
}

// equalityLiteral recognizes `column = literal` (or `literal = column`),
// the only predicate shape spec.md's column indexes can serve, and
// returns the literal operand's value.
func equalityLiteral(e expression.Expression) (types.Value, bool) {
	cmp, ok := e.(*expression.Comparison)
	if !ok || cmp.Op != opcode.EQ {
		return types.Value{}, false
	}
	if lit, ok := cmp.Right.(*expression.Literal); ok {
		return lit.Value, true
	}
	if lit, ok := cmp.Left.(*expression.Literal); ok {
		return lit.Value, true
	}
	return types.Value{}, false
}
