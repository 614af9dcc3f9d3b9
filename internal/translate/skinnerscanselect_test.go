package translate

import (
	"testing"

	"github.com/pingcap/tidb/pkg/parser/opcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"adaptql/internal/executor"
	"adaptql/internal/plan/expression"
	"adaptql/internal/plan/operator"
	"adaptql/internal/table"
	"adaptql/internal/types"
)

func TestCompileSkinnerScanSelectMatchesLinearBaseline(t *testing.T) {
	tbl := intTable("t", 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	col := tbl.Column("t.v")

	predicates := []expression.Expression{
		&expression.Comparison{
			Op:    opcode.GT,
			Left:  &expression.ColumnRef{TableIdx: 0, Column: col},
			Right: &expression.Literal{Value: types.IntValue(3)},
		},
		&expression.Comparison{
			Op:    opcode.LE,
			Left:  &expression.ColumnRef{TableIdx: 0, Column: col},
			Right: &expression.Literal{Value: types.IntValue(8)},
		},
	}

	n := &operator.SkinnerScanSelect{
		Child:            &operator.Scan{Table: tbl},
		Predicates:       predicates,
		BudgetPerEpisode: 2,
		Seed:             7,
	}

	qs := executor.NewQueryState(zap.NewNop())
	var got []int32
	require.NoError(t, CompileSkinnerScanSelect(n, qs, Options{}, func(r Row) error {
		got = append(got, r[0].Int32)
		return nil
	}))

	var want []int32
	for _, v := range []int32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10} {
		if v > 3 && v <= 8 {
			want = append(want, v)
		}
	}
	assert.ElementsMatch(t, want, got)
	assert.Len(t, got, len(want))
}

func TestCompileSkinnerScanSelectUsesEqualityIndex(t *testing.T) {
	tbl := intTable("t", 5, 1, 5, 2, 5, 3)
	col := tbl.Column("t.v")

	predicates := []expression.Expression{
		&expression.Comparison{
			Op:    opcode.EQ,
			Left:  &expression.ColumnRef{TableIdx: 0, Column: col},
			Right: &expression.Literal{Value: types.IntValue(5)},
		},
	}

	n := &operator.SkinnerScanSelect{
		Child:            &operator.Scan{Table: tbl},
		Predicates:       predicates,
		IndexedPredicates: []int{0},
		ColumnIndexes:    map[int]*table.Column{0: col},
		BudgetPerEpisode: 5,
		Seed:             1,
	}

	qs := executor.NewQueryState(zap.NewNop())
	var got []int32
	require.NoError(t, CompileSkinnerScanSelect(n, qs, Options{}, func(r Row) error {
		got = append(got, r[0].Int32)
		return nil
	}))

	assert.ElementsMatch(t, []int32{5, 5, 5}, got)
}

// TestCompileSkinnerScanSelectSeedBudgetMatrix exercises every combination
// of seed and episode budget the UCT agent might resume under, including a
// budget tight enough (5) to force resumption mid-episode: every
// combination must match the same linear-scan answer regardless of how
// the search happened to explore its predicate-ordering tree.
func TestCompileSkinnerScanSelectSeedBudgetMatrix(t *testing.T) {
	seeds := []int64{100, 420, 1337}
	budgets := []int32{5, 10000}

	tbl := intTable("t", 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	col := tbl.Column("t.v")

	predicates := []expression.Expression{
		&expression.Comparison{
			Op:    opcode.GT,
			Left:  &expression.ColumnRef{TableIdx: 0, Column: col},
			Right: &expression.Literal{Value: types.IntValue(3)},
		},
		&expression.Comparison{
			Op:    opcode.LE,
			Left:  &expression.ColumnRef{TableIdx: 0, Column: col},
			Right: &expression.Literal{Value: types.IntValue(8)},
		},
	}

	var want []int32
	for _, v := range []int32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10} {
		if v > 3 && v <= 8 {
			want = append(want, v)
		}
	}

	for _, seed := range seeds {
		for _, budget := range budgets {
			n := &operator.SkinnerScanSelect{
				Child:            &operator.Scan{Table: tbl},
				Predicates:       predicates,
				BudgetPerEpisode: budget,
				Seed:             seed,
			}

			qs := executor.NewQueryState(zap.NewNop())
			var got []int32
			require.NoError(t, CompileSkinnerScanSelect(n, qs, Options{}, func(r Row) error {
				got = append(got, r[0].Int32)
				return nil
			}))

			assert.ElementsMatchf(t, want, got, "seed=%d budget=%d", seed, budget)
			assert.Lenf(t, got, len(want), "seed=%d budget=%d", seed, budget)
		}
	}
}
