package uct

import "math/rand"

// ScanSelectAgent owns one IndexNode search tree across the episodes of a
// single scan-select region and optionally resets it ("forgets") at
// rounds 10, 100, 1000, ... to bound the tree's memory of early,
// low-quality statistics (spec.md §4.6.2, kushdb's scan_select_forget
// flag).
type ScanSelectAgent struct {
	environment     Environment
	numPredicates   int
	indexPredicates []int
	roundCtr        int
	shouldForget    bool
	nextForget      int
	root            *IndexNode
	rng             *rand.Rand

	order      []int
	indexOrder []int
}

// NewScanSelectAgent constructs an agent. rng should be seeded
// deterministically by the caller (spec.md §6.5's scan_select_seed) so
// runs are reproducible.
func NewScanSelectAgent(numPredicates int, indexPredicates []int, env Environment, shouldForget bool, rng *rand.Rand) *ScanSelectAgent {
	a := &ScanSelectAgent{
		environment:     env,
		numPredicates:   numPredicates,
		indexPredicates: indexPredicates,
		shouldForget:    shouldForget,
		nextForget:      10,
		rng:             rng,
	}
	a.root = NewIndexRoot(a.roundCtr, env, numPredicates, indexPredicates, rng)
	return a
}

// Act runs exactly one episode: it samples an index/predicate order from
// the tree, which in turn invokes Environment.Execute and feeds the
// reward back into the visited nodes.
func (a *ScanSelectAgent) Act() {
	a.roundCtr++
	a.order = a.order[:0]
	a.indexOrder = a.indexOrder[:0]
	a.root.Sample(a.roundCtr, &a.indexOrder, &a.order)

	if a.shouldForget && a.roundCtr == a.nextForget {
		a.root = NewIndexRoot(a.roundCtr, a.environment, a.numPredicates, a.indexPredicates, a.rng)
		a.nextForget *= 10
	}
}
