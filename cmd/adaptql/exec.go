package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"adaptql/internal/config"
	"adaptql/internal/executor"
	"adaptql/internal/ir"
	"adaptql/internal/plan/expression"
	"adaptql/internal/plan/operator"
	"adaptql/internal/resultset"
	"adaptql/internal/translate"
)

// builtPlan is a plan command's output: the operator tree to run and the
// column names its rows project.
type builtPlan struct {
	op      operator.Operator
	columns []string
}

// translateOptions derives internal/translate.Options from a loaded
// config.Config, the bridge between the on-disk options surface and the
// in-process one translate.Run actually consumes.
func translateOptions(cfg config.Config) translate.Options {
	backend := ir.Assembler
	if cfg.Backend == config.BackendLLVM {
		backend = ir.LLVM
	}
	return translate.Options{
		BudgetPerEpisode:           cfg.BudgetPerEpisode,
		ScanSelectBudgetPerEpisode: cfg.ScanSelectBudgetPerEpisode,
		Seed:                       cfg.ScanSelectSeed,
		SkinnerScanSelect:          cfg.SkinnerScanSelect == config.ScanSelectPermute,
		Backend:                    backend,
	}
}

// runPlan executes plan and streams its rows through an
// internal/resultset.Printer to stdout, or — when flags.explain is set —
// prints the operator tree instead of running anything.
func runPlan(flags *globalFlags, plan builtPlan) error {
	if flags.explain {
		explainOperator(os.Stdout, plan.op, 0)
		return nil
	}

	cfg, err := flags.loadConfig()
	if err != nil {
		return err
	}
	logger, err := flags.newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	printer, err := resultset.NewPrinter(resultset.Format(flags.format), os.Stdout, plan.columns)
	if err != nil {
		return err
	}

	qs := executor.NewQueryState(logger)
	opts := translateOptions(cfg)

	runErr := translate.Run(plan.op, qs, opts, func(row translate.Row) error {
		return printer.WriteRow(row)
	})
	if closeErr := printer.Close(); closeErr != nil && runErr == nil {
		runErr = closeErr
	}
	return runErr
}

// explainOperator prints op's shape, indented one level per nesting
// depth — an interpreter's-eye view of what translate.Run would compile
// and drive, without compiling or driving it.
func explainOperator(w io.Writer, op operator.Operator, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	fmt.Fprintf(w, "%s%s\n", indent, describeOperator(op))
	for _, c := range op.Children() {
		explainOperator(w, c, depth+1)
	}
}

func describeOperator(op operator.Operator) string {
	switch n := op.(type) {
	case *operator.Scan:
		return fmt.Sprintf("Scan(%s)", n.Table.Name)
	case *operator.Select:
		return fmt.Sprintf("Select(%s)", describeExprs(n.Predicates))
	case *operator.SkinnerScanSelect:
		return fmt.Sprintf("SkinnerScanSelect(%s, budget=%d, seed=%d)", describeExprs(n.Predicates), n.BudgetPerEpisode, n.Seed)
	case *operator.HashJoin:
		return fmt.Sprintf("HashJoin(%s = %s)", describeExpr(n.LeftKey), describeExpr(n.RightKey))
	case *operator.SkinnerJoin:
		return fmt.Sprintf("SkinnerJoin(%d tables, %s, budget=%d, seed=%d)", len(n.Tables), describeExprs(n.Conditions), n.BudgetPerEpisode, n.Seed)
	case *operator.GroupByAggregate:
		return fmt.Sprintf("GroupByAggregate(keys=%s, aggregates=%d)", describeExprs(n.GroupKeys), len(n.Aggregates))
	case *operator.OrderBy:
		return fmt.Sprintf("OrderBy(%s)", describeExprs(n.Keys))
	default:
		return fmt.Sprintf("%T", op)
	}
}

func describeExprs(exprs []expression.Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = describeExpr(e)
	}
	return strings.Join(parts, " AND ")
}
