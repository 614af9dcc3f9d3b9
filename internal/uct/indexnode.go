package uct

import "math/rand"

// IndexNode decides, for each indexed predicate in turn, whether to use
// its column index (action 1) or fall back to evaluating it by linear
// scan alongside the rest (action 0). Once every indexed predicate has
// been decided, control passes to a PredicateOrderNode subtree that
// orders the remaining (non-indexed, plus any index predicate that was
// not selected) predicates.
type IndexNode struct {
	environment     Environment
	createdIn       int
	numPredicates   int
	indexPredicates []int
	currentIdx      int

	evaluated map[int]bool

	numActions int
	children   []*IndexNode
	predOrder  *PredicateOrderNode

	numVisits       int
	priorityActions []int
	numTries        []int
	accReward       []float64

	rng *rand.Rand
}

// NewIndexRoot builds the root of a scan-select episode's search tree.
// indexPredicates lists, in a fixed arbitrary order, the predicates that
// have a usable column index; every other predicate in [0, numPredicates)
// is only ever linearly scanned.
func NewIndexRoot(roundCtr int, env Environment, numPredicates int, indexPredicates []int, rng *rand.Rand) *IndexNode {
	return newIndexNode(roundCtr, env, numPredicates, indexPredicates, 0, map[int]bool{}, rng)
}

func newIndexChild(roundCtr int, parent *IndexNode, selected bool) *IndexNode {
	evaluated := copySet(parent.evaluated)
	if selected {
		evaluated[parent.indexPredicates[parent.currentIdx]] = true
	}
	return newIndexNode(roundCtr, parent.environment, parent.numPredicates, parent.indexPredicates, parent.currentIdx+1, evaluated, parent.rng)
}

func newIndexNode(roundCtr int, env Environment, numPredicates int, indexPredicates []int, currentIdx int, evaluated map[int]bool, rng *rand.Rand) *IndexNode {
	numActions := 2
	if currentIdx == len(indexPredicates) {
		numActions = 1
	}
	n := &IndexNode{
		environment:     env,
		createdIn:       roundCtr,
		numPredicates:   numPredicates,
		indexPredicates: indexPredicates,
		currentIdx:      currentIdx,
		evaluated:       evaluated,
		numActions:      numActions,
		children:        make([]*IndexNode, numActions),
		numTries:        make([]int, numActions),
		accReward:       make([]float64, numActions),
		rng:             rng,
	}
	for i := 0; i < numActions; i++ {
		n.priorityActions = append(n.priorityActions, i)
	}
	return n
}

// Sample descends the tree once and returns the resulting episode's
// reward, appending chosen index predicates to indexOrder and the
// eventual predicate evaluation order to order.
func (n *IndexNode) Sample(roundCtr int, indexOrder, order *[]int) float64 {
	if n.numActions == 1 {
		canExpand := n.createdIn != roundCtr
		if canExpand && n.predOrder == nil {
			n.predOrder = NewPredicateOrderRoot(roundCtr, n)
		}

		var reward float64
		if n.predOrder != nil {
			reward = n.predOrder.Sample(roundCtr, indexOrder, order)
		} else {
			reward = n.playout(indexOrder, order)
		}
		n.updateStatistics(0, reward)
		return reward
	}

	action := selectAction(&n.priorityActions, n.numActions, n.numVisits, n.numTries, n.accReward, n.rng)
	selected := action == 1
	if selected {
		*indexOrder = append(*indexOrder, n.indexPredicates[n.currentIdx])
	}

	canExpand := n.createdIn != roundCtr
	if canExpand && n.children[action] == nil {
		n.children[action] = newIndexChild(roundCtr, n, selected)
	}

	var reward float64
	if child := n.children[action]; child != nil {
		reward = child.Sample(roundCtr, indexOrder, order)
	} else {
		reward = n.playout(indexOrder, order)
	}
	n.updateStatistics(action, reward)
	return reward
}

func (n *IndexNode) playout(indexOrder, order *[]int) float64 {
	for i := n.currentIdx + 1; i < len(n.indexPredicates); i++ {
		if n.rng.Intn(2) == 1 {
			*indexOrder = append(*indexOrder, n.indexPredicates[i])
		}
	}

	chosen := map[int]bool{}
	for _, p := range *indexOrder {
		chosen[p] = true
	}
	var rest []int
	for i := 0; i < n.numPredicates; i++ {
		if !chosen[i] {
			rest = append(rest, i)
		}
	}
	n.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	*order = append(*order, rest...)
	return n.environment.Execute(*indexOrder, *order)
}

func (n *IndexNode) updateStatistics(action int, reward float64) {
	n.numVisits++
	n.numTries[action]++
	n.accReward[action] += reward
}
