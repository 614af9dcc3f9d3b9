package executor

import (
	"math/rand"

	"go.uber.org/zap"

	"adaptql/internal/compile"
	"adaptql/internal/uct"
)

// ScanSelectInstaller binds a sampled index order and predicate order
// into the region's compiled flags/index-array before the entry handler
// is invoked for the next episode.
type ScanSelectInstaller func(indexOrder, order []int)

// scanSelectEnvironment adapts one scan-select region (its entry handler,
// installer and progress state) to uct.Environment.
type scanSelectEnvironment struct {
	qs          *QueryState
	cardinality int32
	budget      int32
	install     ScanSelectInstaller
	entry       compile.Handler
	state       *compile.ProgressState
}

func (e *scanSelectEnvironment) Execute(indexOrder, order []int) float64 {
	initial := e.state.Progress[0]

	e.install(indexOrder, order)
	e.state.Flags.Reset()
	// A scan-select region has exactly one physical level (one table), so
	// its Flags array is allocated with NumLevels == 1: every active
	// predicate is simply marked bound at level 0, and the installed
	// order itself (not a per-level flag) is what tells the compiled
	// handler which predicates to evaluate and in what sequence.
	for _, predicate := range order {
		e.state.Flags.Set(predicate, 0, true)
	}
	// The single level scans the same table under every predicate order,
	// so each episode resumes right after the last committed tuple.
	e.state.Offset[0] = e.state.Progress[0]

	status := e.entry(e.budget, true)

	rawIdx := e.state.Idx[0]
	final := uct.ComputeLastCompletedTuple(rawIdx, status)
	if status >= 0 {
		final = e.cardinality - 1
	}

	// Commit's status>=0 branch walks every level of state, so the
	// cardinalities slice it receives must match NumLevels in length (one
	// level here, for the region's one physical table).
	levelCardinalities := make([]int32, e.state.NumLevels)
	for i := range levelCardinalities {
		levelCardinalities[i] = e.cardinality
	}
	if err := e.state.Commit(status, levelCardinalities); err != nil {
		e.qs.Logger.Panic("negative progress in scan-select region", zap.Error(err))
	}

	reward := uct.Reward(initial, final, e.cardinality)
	e.qs.Logger.Debug("scan-select episode",
		zap.Int32("initial_last_completed", initial),
		zap.Int32("final_last_completed", final),
		zap.Int32("status", status),
		zap.Float64("reward", reward),
	)
	return reward
}

// RunScanSelect drives a single scan-select region's episode loop to
// completion (spec.md §4.6.1): it samples orders from a UCT agent and
// invokes entry between samples until every tuple has been accounted
// for.
func RunScanSelect(
	qs *QueryState,
	cardinality int32,
	numPredicates int,
	indexPredicates []int,
	budgetPerEpisode int32,
	seed int64,
	forget bool,
	install ScanSelectInstaller,
	entry compile.Handler,
	state *compile.ProgressState,
) error {
	env := &scanSelectEnvironment{
		qs:          qs,
		cardinality: cardinality,
		budget:      budgetPerEpisode,
		install:     install,
		entry:       entry,
		state:       state,
	}

	rng := rand.New(rand.NewSource(seed))
	agent := uct.NewScanSelectAgent(numPredicates, indexPredicates, env, forget, rng)

	for !state.Done([]int32{cardinality}) {
		agent.Act()
	}
	return nil
}
