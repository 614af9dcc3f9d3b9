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
)

// TestCompileSkinnerJoinMatchesBruteForceBaseline checks that the adaptive
// three-way join produces the same tuple combinations as evaluating the
// join conditions by brute force, regardless of which table order the
// search happens to explore first.
func TestCompileSkinnerJoinMatchesBruteForceBaseline(t *testing.T) {
	a := intTable("a", 1, 2, 3)
	b := intTable("b", 2, 3, 4)
	c := intTable("c", 3, 4, 5)

	n := &operator.SkinnerJoin{
		Tables: []operator.Operator{
			&operator.Scan{Table: a},
			&operator.Scan{Table: b},
			&operator.Scan{Table: c},
		},
		Conditions: []expression.Expression{
			&expression.Comparison{
				Op:    opcode.EQ,
				Left:  &expression.ColumnRef{TableIdx: 0, Column: a.Column("a.v")},
				Right: &expression.ColumnRef{TableIdx: 1, Column: b.Column("b.v")},
			},
			&expression.Comparison{
				Op:    opcode.EQ,
				Left:  &expression.ColumnRef{TableIdx: 1, Column: b.Column("b.v")},
				Right: &expression.ColumnRef{TableIdx: 2, Column: c.Column("c.v")},
			},
		},
		BudgetPerEpisode: 3,
		Seed:             42,
	}

	qs := executor.NewQueryState(zap.NewNop())
	var got [][3]int32
	require.NoError(t, CompileSkinnerJoin(n, qs, Options{}, func(r Row) error {
		got = append(got, [3]int32{r[0].Int32, r[1].Int32, r[2].Int32})
		return nil
	}))

	var want [][3]int32
	for _, av := range []int32{1, 2, 3} {
		for _, bv := range []int32{2, 3, 4} {
			if av != bv {
				continue
			}
			for _, cv := range []int32{3, 4, 5} {
				if bv == cv {
					want = append(want, [3]int32{av, bv, cv})
				}
			}
		}
	}

	assert.ElementsMatch(t, want, got)
	assert.Len(t, got, len(want))
}

func TestResolveEquiConditionsRejectsNonEquality(t *testing.T) {
	a := intTable("a", 1)
	_, err := resolveEquiConditions([]expression.Expression{
		&expression.Comparison{
			Op:    opcode.GT,
			Left:  &expression.ColumnRef{TableIdx: 0, Column: a.Column("a.v")},
			Right: &expression.Literal{},
		},
	}, []*table.Table{a})
	assert.Error(t, err)
}
