package executor

import (
	"math/rand"

	"go.uber.org/zap"

	"adaptql/internal/compile"
	"adaptql/internal/uct"
)

// JoinInstaller binds a sampled table order into the region's per-level
// handler bindings before handlers[0] is invoked for the next episode.
// Unlike scan-select, a join region's handler chain is positional: level
// k's handler is whichever table order[k] compiled to.
type JoinInstaller func(order []int)

type joinEnvironment struct {
	qs            *QueryState
	cardinalities []int32
	budget        int32
	install       JoinInstaller
	entry         compile.Handler
	state         *compile.ProgressState
	dedupSize     func() int
}

func (e *joinEnvironment) Execute(order []int) float64 {
	initial := e.state.Progress[0]

	e.install(order)
	e.state.InstallOrder(order)

	status := e.entry(e.budget, true)

	if err := e.state.Commit(status, e.cardinalities); err != nil {
		e.qs.Logger.Panic("negative progress in join region", zap.Error(err))
	}

	final := e.state.Progress[0]
	reward := uct.Reward(initial, final, e.cardinalities[0])

	fields := []zap.Field{
		zap.Int32("initial_last_completed", initial),
		zap.Int32("final_last_completed", final),
		zap.Int32("status", status),
		zap.Float64("reward", reward),
	}
	if e.dedupSize != nil {
		fields = append(fields, zap.Int("dedup_size", e.dedupSize()))
	}
	e.qs.Logger.Debug("join episode", fields...)
	return reward
}

// RunJoin drives a single join region's episode loop to completion: it
// samples table orders from a UCT agent and invokes the level-0 handler
// between samples (spec.md §4.6.1/§4.6.2) until level 0's table has been
// fully walked under some order. dedupSize, if non-nil, is only used for
// structured logging of join-result dedup growth (spec.md §4.7).
func RunJoin(
	qs *QueryState,
	cardinalities []int32,
	budgetPerEpisode int32,
	seed int64,
	install JoinInstaller,
	entry compile.Handler,
	state *compile.ProgressState,
	dedupSize func() int,
) error {
	env := &joinEnvironment{
		qs:            qs,
		cardinalities: cardinalities,
		budget:        budgetPerEpisode,
		install:       install,
		entry:         entry,
		state:         state,
		dedupSize:     dedupSize,
	}

	rng := rand.New(rand.NewSource(seed))
	agent := uct.NewJoinOrderAgent(len(cardinalities), env, rng)

	for !state.Done(cardinalities) {
		agent.Act()
	}
	return nil
}
