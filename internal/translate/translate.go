// Package translate is the operator-translator layer spec.md §2 calls
// "operator translators (produce IR calling R1-R7 and obeying C3)": it
// lowers an internal/plan/operator tree into the handlers, progress
// state, and installer closures the adaptive executor (internal/executor)
// and the two backends (internal/ir/asmbackend, internal/ir/llvmbackend)
// expect, wiring them directly to the physical runtime primitives
// (internal/runtime/*).
//
// This package plays the role kushdb's compile/translators/*.cc tree
// plays: one translator per physical operator, each emitting code (here,
// Go closures obeying the compile.Handler ABI) that calls the runtime
// primitives by the same contract spec.md §6.1 describes, and that
// cooperates with the adaptive executor via the shared flag/progress/
// offset/idx arrays from spec.md §3.7.
package translate

import (
	"fmt"

	"adaptql/internal/compile"
	"adaptql/internal/ir"
	"adaptql/internal/plan/expression"
	"adaptql/internal/plan/operator"
	"adaptql/internal/table"
	"adaptql/internal/types"
)

// Row is one fully projected output tuple, ready for internal/resultset
// or internal/oracle to consume.
type Row []types.Value

// Consume receives one output row. Non-adaptive operators (Scan, Select,
// HashJoin, the eventual GroupByAggregate/OrderBy materialization) call
// it directly; SkinnerJoin calls it only for rows the dedup table reports
// as new (spec.md §4.7/§4.8), and SkinnerScanSelect once per qualifying
// tuple id.
type Consume func(Row) error

// Options configures the adaptive regions a translation produces, the
// Go-side equivalent of spec.md §6.5's configuration surface. A zero
// Options uses the spec's stated defaults.
type Options struct {
	BudgetPerEpisode           int32
	ScanSelectBudgetPerEpisode int32
	Seed                       int64
	ScanSelectForget           bool
	// SkinnerScanSelect selects whether Select nodes compile to the
	// adaptive (true) or linear (false) scan-select path, independent of
	// whatever operator.SkinnerScanSelect nodes the plan already names
	// explicitly (spec.md §6.5's skinner_scan_select option only governs
	// translation of operator.Select; an explicit SkinnerScanSelect node
	// is always adaptive).
	SkinnerScanSelect bool

	// Backend selects which internal/ir.Backend compiles each adaptive
	// region's table functions before the executor invokes them. A zero
	// value defaults to ir.Assembler.
	Backend ir.Kind
}

// DefaultBudget is spec.md §6.5's default budget_per_episode /
// scan_select_budget_per_episode.
const DefaultBudget = int32(10000)

// WithDefaults fills any zero field of o with spec.md §6.5's defaults.
func (o Options) WithDefaults() Options {
	if o.BudgetPerEpisode == 0 {
		o.BudgetPerEpisode = DefaultBudget
	}
	if o.ScanSelectBudgetPerEpisode == 0 {
		o.ScanSelectBudgetPerEpisode = DefaultBudget
	}
	if o.Backend == "" {
		o.Backend = ir.Assembler
	}
	return o
}

// compileEntry declares name as a level-(-1) table function producing
// handler in a fresh one-function Program, runs it through opts.Backend,
// and returns the handler the backend hands back — routing every
// adaptive region's entry point through the declared IR contract
// (spec.md §1/§6.1) instead of invoking the translator-built closure
// directly.
func compileEntry(opts Options, name string, handler compile.Handler) (compile.Handler, error) {
	backend, err := ir.Get(opts.Backend)
	if err != nil {
		return nil, fmt.Errorf("translate: %s: %w", name, err)
	}
	prog := &ir.Program{Name: name}
	prog.Define(name, -1, handler)
	mod, err := backend.Compile(prog)
	if err != nil {
		return nil, fmt.Errorf("translate: %s: backend compile failed: %w", name, err)
	}
	return mod.MustLookup(name), nil
}

// newContext returns a reusable expression.Context bound to one or more
// tables, threaded through every translator so predicate/condition
// evaluation never allocates per tuple.
func newContext(tables ...*table.Table) *expression.Context {
	return &expression.Context{
		Tables: tables,
		Idx:    make([]int32, len(tables)),
	}
}

// projectRow evaluates exprs against ctx into a freshly allocated Row.
func projectRow(ctx *expression.Context, exprs []expression.Expression) Row {
	row := make(Row, len(exprs))
	for i, e := range exprs {
		row[i] = e.Eval(ctx)
	}
	return row
}

// allColumnsRow projects every column of every bound table, in table
// then column order — the default projection for a bare Scan or a join
// with no explicit output-expression list (`SELECT *`).
func allColumnsRow(ctx *expression.Context, tables ...*table.Table) Row {
	var n int
	for _, t := range tables {
		n += len(t.Columns)
	}
	row := make(Row, 0, n)
	for ti, t := range tables {
		for _, c := range t.Columns {
			row = append(row, c.Value(ctx.Idx[ti]))
		}
	}
	return row
}

// evalBool evaluates e against ctx, treating NULL as false (SQL WHERE
// semantics: a row is retained only when its predicate is definitely
// true).
func evalBool(e expression.Expression, ctx *expression.Context) bool {
	v := e.Eval(ctx)
	return !v.Null && v.Bool
}

// errUnsupportedChild reports that a translator was asked to lower an
// operator.Operator shape it does not recognize — always a bug in plan
// construction rather than a user-facing error, since plans are built
// internally from an already-validated query, never parsed from
// untrusted input at this layer.
func errUnsupportedChild(op operator.Operator) error {
	return fmt.Errorf("translate: unsupported operator %T", op)
}
