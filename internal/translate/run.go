package translate

import (
	"adaptql/internal/executor"
	"adaptql/internal/plan/operator"
)

// Run lowers op and drives it to completion, calling consume once per
// output row. It is the single entry point cmd/adaptql and this
// package's end-to-end tests use; every translator in this
// package beyond the top level is reachable only through it (or,
// recursively, through materialize, for a join/group-by/order-by child
// that is not a bare Scan).
func Run(op operator.Operator, qs *executor.QueryState, opts Options, consume Consume) error {
	r := &runner{qs: qs, opts: opts.WithDefaults(), consume: consume}
	op.Accept(r)
	return r.err
}

// collectRows runs op the same way Run does, but gathers every row into
// a slice instead of streaming it — used by join/group-by/order-by
// translators that need all of a non-Scan child's output materialized
// before they can proceed (build the probe side of a hash join, bucket
// rows by group key, or sort).
func collectRows(op operator.Operator, qs *executor.QueryState, opts Options) ([]Row, error) {
	var rows []Row
	err := Run(op, qs, opts, func(r Row) error {
		rows = append(rows, append(Row(nil), r...))
		return nil
	})
	return rows, err
}

// runner implements operator.Visitor, dispatching each concrete operator
// type to its translator. Visitor methods have no return value, so
// errors are captured on the struct and surfaced by Run after Accept
// returns.
type runner struct {
	qs      *executor.QueryState
	opts    Options
	consume Consume
	err     error
}

func (r *runner) VisitScan(s *operator.Scan) {
	r.err = CompileScan(s, r.consume)
}

func (r *runner) VisitSelect(s *operator.Select) {
	if r.opts.SkinnerScanSelect {
		r.err = CompileSkinnerScanSelect(&operator.SkinnerScanSelect{
			Child:      s.Child,
			Predicates: s.Predicates,
			Seed:       r.opts.Seed,
			Forget:     r.opts.ScanSelectForget,
		}, r.qs, r.opts, r.consume)
		return
	}
	r.err = CompileLinearScanSelect(s, r.consume)
}

func (r *runner) VisitSkinnerScanSelect(s *operator.SkinnerScanSelect) {
	r.err = CompileSkinnerScanSelect(s, r.qs, r.opts, r.consume)
}

func (r *runner) VisitHashJoin(h *operator.HashJoin) {
	r.err = CompileHashJoin(h, r.qs, r.opts, r.consume)
}

func (r *runner) VisitSkinnerJoin(s *operator.SkinnerJoin) {
	r.err = CompileSkinnerJoin(s, r.qs, r.opts, r.consume)
}

func (r *runner) VisitGroupByAggregate(g *operator.GroupByAggregate) {
	r.err = CompileGroupByAggregate(g, r.qs, r.opts, r.consume)
}

func (r *runner) VisitOrderBy(o *operator.OrderBy) {
	r.err = CompileOrderBy(o, r.qs, r.opts, r.consume)
}
