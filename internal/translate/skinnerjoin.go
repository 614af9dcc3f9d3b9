package translate

import (
	"fmt"

	"github.com/pingcap/tidb/pkg/parser/opcode"

	"adaptql/internal/compile"
	"adaptql/internal/executor"
	"adaptql/internal/plan/expression"
	"adaptql/internal/plan/operator"
	"adaptql/internal/runtime/dedup"
	"adaptql/internal/table"
	"adaptql/internal/types"
)

// equiCondition is one `left.col = right.col` join condition resolved to
// the two table positions (indexes into the SkinnerJoin's Tables slice)
// and columns it binds.
type equiCondition struct {
	tableA, tableB int
	colA, colB     *table.Column
}

// CompileSkinnerJoin lowers an adaptive N-way join (spec.md §4.6): one
// generic handler per level, reading the table currently occupying that
// level from a shared, install-mutated order slice (the "permutable"
// strategy spec.md §4.6.4 names, rather than recompiling a fresh handler
// chain per sampled order). Output tuples are deduplicated across orders
// via internal/runtime/dedup, since two different table orders can
// legitimately rediscover the same joined tuple combination (spec.md
// §4.7).
func CompileSkinnerJoin(n *operator.SkinnerJoin, qs *executor.QueryState, opts Options, consume Consume) error {
	numTables := len(n.Tables)
	tables := make([]*table.Table, numTables)
	for i, child := range n.Tables {
		t, err := resolveTable(child, qs, opts, fmt.Sprintf("skinnerjoin.%d", i))
		if err != nil {
			return err
		}
		tables[i] = t
	}

	conditions, err := resolveEquiConditions(n.Conditions, tables)
	if err != nil {
		return err
	}

	// One equality index per (table, column) pair that appears as the
	// inner side of some condition, built once up front and reused
	// regardless of which order puts that table at which level.
	indexes := make(map[*table.Column]EqualityIndex)
	for _, c := range conditions {
		if _, ok := indexes[c.colA]; !ok {
			indexes[c.colA] = BuildIndex(c.colA, tables[c.tableA].Cardinality())
		}
		if _, ok := indexes[c.colB]; !ok {
			indexes[c.colB] = BuildIndex(c.colB, tables[c.tableB].Cardinality())
		}
	}

	ctx := newContext(tables...)
	order := make([]int, numTables)
	for i := range order {
		order[i] = i
	}
	install := func(o []int) { copy(order, o) }

	cardinalities := make([]int32, numTables)
	for i, t := range tables {
		cardinalities[i] = t.Cardinality()
	}

	state := compile.NewProgressState(numTables, 0)
	dedupTable := dedup.New(numTables)
	defer dedupTable.Free()

	var consumeErr error

	// boundConditionsAt returns the conditions that become checkable once
	// order[level] is bound, given order[:level] already bound: those
	// whose other side is among order[:level] and whose own side is
	// order[level]'s table.
	boundConditionsAt := func(level int) []equiCondition {
		thisTable := order[level]
		boundSoFar := make(map[int]bool, level)
		for i := 0; i < level; i++ {
			boundSoFar[order[i]] = true
		}
		var out []equiCondition
		for _, c := range conditions {
			if c.tableA == thisTable && boundSoFar[c.tableB] {
				out = append(out, c)
			} else if c.tableB == thisTable && boundSoFar[c.tableA] {
				out = append(out, equiCondition{tableA: c.tableB, tableB: c.tableA, colA: c.colB, colB: c.colA})
			}
		}
		return out
	}

	var levelHandler func(level int) compile.Handler
	levelHandler = func(level int) compile.Handler {
		return func(budget int32, resumeProgress bool) int32 {
			tableIdx := order[level]
			tbl := tables[tableIdx]
			card := cardinalities[tableIdx]
			bound := boundConditionsAt(level)

			start := int32(0)
			if resumeProgress && state.Offset[level] >= 0 {
				start = state.Offset[level]
			}

			next := joinCandidates(ctx, tbl, card, bound, indexes, start)
			first := resumeProgress

			for {
				i, ok := next()
				if !ok {
					state.Idx[level] = card - 1
					return budget
				}

				budget--
				ctx.Idx[tableIdx] = i
				passed := true
				for _, c := range bound {
					if !conditionHolds(ctx, c) {
						passed = false
						break
					}
				}

				if !passed {
					if budget <= 0 {
						state.Idx[level] = i
						state.TableCtr = level
						return compile.StatusPredicateExhausted
					}
					continue
				}

				if level == numTables-1 {
					tuple := make([]int32, numTables)
					for t := 0; t < numTables; t++ {
						tuple[t] = ctx.Idx[t]
					}
					if dedupTable.Insert(tuple) {
						if err := consume(allColumnsRow(ctx, tables...)); err != nil {
							consumeErr = err
							state.Idx[level] = card - 1
							return budget
						}
					}
				} else {
					childResumed := first && i == start
					status := levelHandler(level+1)(budget, childResumed)
					if status < 0 {
						state.Idx[level] = i
						return status
					}
					budget = status
				}

				first = false
				if budget <= 0 {
					state.Idx[level] = i
					state.TableCtr = level
					return compile.StatusBudgetExhausted
				}
			}
		}
	}

	rawEntry := compile.Handler(func(budget int32, resumeProgress bool) int32 {
		return levelHandler(0)(budget, resumeProgress)
	})
	opts = opts.WithDefaults()
	entry, err := compileEntry(opts, "skinnerjoin.entry", rawEntry)
	if err != nil {
		return err
	}

	joinInstall := executor.JoinInstaller(func(o []int) { install(o) })

	budget := n.BudgetPerEpisode
	if budget == 0 {
		budget = opts.BudgetPerEpisode
	}
	if err := executor.RunJoin(qs, cardinalities, budget, n.Seed, joinInstall, entry, state, dedupTable.Size); err != nil {
		return err
	}
	return consumeErr
}

// joinCandidates returns an ascending tuple-id iterator over tbl's rows
// from start onward, narrowed to the equality-index bucket of the first
// bound condition whose column is indexed, falling back to a plain range
// scan when none is (spec.md §4.6.2 leaves index-vs-scan a per-level
// choice; this translator makes the simplest sound choice rather than
// adding it as a further search dimension).
func joinCandidates(ctx *expression.Context, tbl *table.Table, card int32, bound []equiCondition, indexes map[*table.Column]EqualityIndex, start int32) func() (int32, bool) {
	for _, c := range bound {
		idx, ok := indexes[c.colA]
		if !ok {
			continue
		}
		outerVal := c.colB.Value(ctx.Idx[c.tableB])
		if outerVal.Null {
			return func() (int32, bool) { return 0, false }
		}
		b := idx.GetBucket(outerVal)
		pos := bucketSearch(b, start)
		return func() (int32, bool) {
			if pos >= b.Size() {
				return 0, false
			}
			v := b.Get(pos)
			pos++
			return v, true
		}
	}

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

func bucketSearch(b interface {
	Size() int32
	Get(int32) int32
}, start int32) int32 {
	lo, hi := int32(0), b.Size()
	for lo < hi {
		mid := (lo + hi) / 2
		if b.Get(mid) < start {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func conditionHolds(ctx *expression.Context, c equiCondition) bool {
	a := c.colA.Value(ctx.Idx[c.tableA])
	b := c.colB.Value(ctx.Idx[c.tableB])
	eq, isNull := types.Equal(a, b)
	return !isNull && eq
}

func resolveEquiConditions(exprs []expression.Expression, tables []*table.Table) ([]equiCondition, error) {
	out := make([]equiCondition, 0, len(exprs))
	for _, e := range exprs {
		cmp, ok := e.(*expression.Comparison)
		if !ok || cmp.Op != opcode.EQ {
			return nil, fmt.Errorf("translate: skinner join condition must be a column equality, got %T", e)
		}
		la, ok := cmp.Left.(*expression.ColumnRef)
		if !ok {
			return nil, fmt.Errorf("translate: skinner join condition left side must be a column reference")
		}
		rb, ok := cmp.Right.(*expression.ColumnRef)
		if !ok {
			return nil, fmt.Errorf("translate: skinner join condition right side must be a column reference")
		}
		out = append(out, equiCondition{tableA: la.TableIdx, tableB: rb.TableIdx, colA: la.Column, colB: rb.Column})
	}
	return out, nil
}
