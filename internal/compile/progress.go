package compile

import "fmt"

// ProgressState is the per-region episode bookkeeping from spec.md §3.7:
// progress/offset/idx arrays indexed by level (table or predicate
// position in the *currently installed* order), plus table_ctr, the
// level a handler was suspended at when it returned a non-terminal
// status.
//
// progress[level] is the largest tuple index at level known to have been
// fully processed under some previously tried order that agreed with the
// current one on levels 0..level. It is only ever advanced via Commit,
// never written directly by callers, so ProgressState can enforce the
// monotonic non-decreasing invariant (spec.md §8 property 2) and the
// negative-progress fatal check (spec.md §7).
type ProgressState struct {
	NumLevels int

	Progress []int32
	Offset   []int32
	Idx      []int32
	TableCtr int

	Flags           *Flags
	NumResultTuples int

	prevOrder []int
}

// NewProgressState allocates a region's progress state for a region with
// numLevels table/predicate positions and numPredicates predicates (for
// the Flags array; pass 0 if the region has no predicate-order flags).
func NewProgressState(numLevels, numPredicates int) *ProgressState {
	s := &ProgressState{
		NumLevels: numLevels,
		Progress:  make([]int32, numLevels),
		Offset:    make([]int32, numLevels),
		Idx:       make([]int32, numLevels),
	}
	for i := range s.Progress {
		s.Progress[i] = -1
		s.Offset[i] = -1
		s.Idx[i] = -1
	}
	if numPredicates > 0 {
		s.Flags = NewFlags(numPredicates, numLevels)
	}
	return s
}

// InstallOrder implements safe resumption (spec.md §4.6.3): order[level]
// names which table/predicate now occupies level. Levels that agree with
// the previously installed order's prefix keep their committed Offset;
// levels from the first divergence point on are reset so a handler bound
// to a different table at that level does not inherit a stale cursor.
func (s *ProgressState) InstallOrder(order []int) {
	divergence := 0
	for divergence < len(order) && divergence < len(s.prevOrder) {
		if order[divergence] != s.prevOrder[divergence] {
			break
		}
		divergence++
	}
	for level := 0; level < divergence; level++ {
		s.Offset[level] = s.Progress[level]
	}
	for level := divergence; level < s.NumLevels; level++ {
		s.Offset[level] = -1
	}
	s.prevOrder = append(s.prevOrder[:0], order...)
	if s.Flags != nil {
		s.Flags.Reset()
	}
}

// Commit folds one episode's outcome (the handler[0] return status, and
// whatever the handler chain left in Idx/TableCtr) into Progress. Levels
// strictly above TableCtr were walked completely up to their current Idx
// this episode; TableCtr itself advanced to Idx[TableCtr], minus one if
// the episode ended on a failed predicate rather than a clean budget cut.
// status >= 0 means the whole region finished: every level is marked
// complete through cardinalities-1.
func (s *ProgressState) Commit(status int32, cardinalities []int32) error {
	if status >= 0 {
		for level := 0; level < s.NumLevels; level++ {
			s.Progress[level] = cardinalities[level] - 1
		}
		return nil
	}

	for level := 0; level < s.TableCtr; level++ {
		if s.Idx[level] < s.Progress[level] {
			return fmt.Errorf("compile: negative progress at level %d: idx=%d < progress=%d", level, s.Idx[level], s.Progress[level])
		}
		if s.Idx[level] > s.Progress[level] {
			s.Progress[level] = s.Idx[level]
		}
	}

	lastCompleted := s.Idx[s.TableCtr]
	if status == StatusPredicateExhausted {
		lastCompleted--
	}
	if lastCompleted < s.Progress[s.TableCtr] {
		return fmt.Errorf("compile: negative progress at level %d: last_completed=%d < progress=%d", s.TableCtr, lastCompleted, s.Progress[s.TableCtr])
	}
	s.Progress[s.TableCtr] = lastCompleted
	return nil
}

// Done reports whether every tuple at level 0 (the outer-most table of
// the region) has been accounted for.
func (s *ProgressState) Done(cardinalities []int32) bool {
	if len(cardinalities) == 0 {
		return true
	}
	return s.Progress[0] >= cardinalities[0]-1
}
