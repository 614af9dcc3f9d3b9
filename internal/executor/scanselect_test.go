package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"adaptql/internal/compile"
)

// fakeScanSelectHandler emulates, for tests only, what compiled code
// would do: walk tuples from the last committed progress forward,
// spending one unit of budget per tuple regardless of how many
// predicates it takes to reject it, in whatever predicate order the
// installer most recently bound.
func fakeScanSelectHandler(state *compile.ProgressState, cardinality int32, predicates []func(int32) bool, order *[]int, matches *[]int32) compile.Handler {
	return func(budget int32, resumeProgress bool) int32 {
		i := state.Progress[0] + 1
		for ; i < cardinality; i++ {
			ok := true
			for _, p := range *order {
				if !predicates[p](i) {
					ok = false
					break
				}
			}
			if ok {
				*matches = append(*matches, i)
			}
			budget--
			if budget <= 0 {
				state.Idx[0] = i
				state.TableCtr = 0
				if ok {
					return compile.StatusBudgetExhausted
				}
				return compile.StatusPredicateExhausted
			}
		}
		state.Idx[0] = cardinality - 1
		state.TableCtr = 0
		return budget
	}
}

func TestRunScanSelectVisitsEveryTupleExactlyOnce(t *testing.T) {
	const cardinality = int32(37)
	predicates := []func(int32) bool{
		func(v int32) bool { return v%3 == 0 },
		func(v int32) bool { return v > 5 },
	}

	var order []int
	var matches []int32
	state := compile.NewProgressState(1, len(predicates))
	handler := fakeScanSelectHandler(state, cardinality, predicates, &order, &matches)

	install := func(indexOrder, o []int) { order = append(order[:0], o...) }

	qs := NewQueryState(zap.NewNop())
	require.NoError(t, RunScanSelect(qs, cardinality, len(predicates), nil, 5, 1337, false, install, handler, state))

	var want []int32
	for v := int32(0); v < cardinality; v++ {
		if v%3 == 0 && v > 5 {
			want = append(want, v)
		}
	}
	assert.Equal(t, want, matches)
	assert.Equal(t, cardinality-1, state.Progress[0])
}

func TestRunScanSelectWithLargeBudgetFinishesInOneEpisode(t *testing.T) {
	const cardinality = int32(10)
	predicates := []func(int32) bool{func(int32) bool { return true }}

	var order []int
	var matches []int32
	state := compile.NewProgressState(1, len(predicates))
	handler := fakeScanSelectHandler(state, cardinality, predicates, &order, &matches)
	install := func(indexOrder, o []int) { order = append(order[:0], o...) }

	qs := NewQueryState(zap.NewNop())
	require.NoError(t, RunScanSelect(qs, cardinality, len(predicates), nil, 10_000, 7, false, install, handler, state))

	assert.Len(t, matches, int(cardinality))
}
