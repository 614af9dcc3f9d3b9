// Package compile defines the execution-side contract between generated
// code and the adaptive executor: the table-function ABI, the per-region
// flag/progress/offset/idx arrays, and the budget plumbing described in
// spec.md §4.5 and §6.2/§6.3 (kushdb's compile/translators/*). Nothing in
// this package "generates" anything — internal/ir owns IR-to-native-code
// lowering — this package is the shape that lowered code and the executor
// both agree to.
package compile

// Handler is the table-function ABI from spec.md §4.5/§6.2: one compiled
// function per join/scan-select level, callable by the adaptive executor
// between episodes.
//
//	budget:         remaining tuple-evaluations this invocation may spend.
//	resumeProgress: true iff this is the first call after an episode
//	                transition and the callee should fast-forward to its
//	                Offset before doing real work.
//
// Returns:
//
//	>= 0: this level finished its scan; the return value is the budget
//	      left over for the caller.
//	  -1: budget exhausted; Idx/TableCtr were written before returning.
//	  -2: a predicate failed on the last tuple examined and budget hit
//	      zero in the same step; same resume semantics as -1.
type Handler func(budget int32, resumeProgress bool) int32

const (
	StatusBudgetExhausted    int32 = -1
	StatusPredicateExhausted int32 = -2
)

// Flags holds, for an adaptive region with numPredicates predicates and
// numLevels table/predicate positions, one byte per (predicate, level)
// pair: 1 when the predicate is evaluable at that level under the
// currently installed order (spec.md §3.7's flags[p,t]).
type Flags struct {
	numPredicates, numLevels int
	data                     []byte
}

func NewFlags(numPredicates, numLevels int) *Flags {
	return &Flags{
		numPredicates: numPredicates,
		numLevels:     numLevels,
		data:          make([]byte, numPredicates*numLevels),
	}
}

func (f *Flags) index(p, t int) int { return p*f.numLevels + t }

func (f *Flags) Set(p, t int, v bool) {
	if v {
		f.data[f.index(p, t)] = 1
	} else {
		f.data[f.index(p, t)] = 0
	}
}

func (f *Flags) Get(p, t int) bool { return f.data[f.index(p, t)] != 0 }

// Reset clears every flag, used when a new order is installed before the
// translator re-derives which predicates bind at which level.
func (f *Flags) Reset() {
	for i := range f.data {
		f.data[i] = 0
	}
}
