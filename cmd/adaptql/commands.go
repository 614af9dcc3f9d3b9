package main

import (
	"fmt"

	"github.com/pingcap/tidb/pkg/parser/opcode"
	"github.com/spf13/cobra"

	"adaptql/internal/plan/expression"
	"adaptql/internal/plan/operator"
	"adaptql/internal/table"
)

// operatorGroup builds the "run" or "explain" parent command, each
// nesting the same five operator subcommands: "run" executes a plan and
// prints its rows, "explain" prints its operator tree instead — the two
// top-level verbs spec.md's CLI section names, each specialized per
// physical operator the way cmd/smf nests diff/migrate/apply under one
// root rather than taking a single generic "query" subcommand.
func operatorGroup(use string, flags *globalFlags, explain bool) *cobra.Command {
	group := &cobra.Command{
		Use:   use,
		Short: map[bool]string{false: "Run a plan against a fixture", true: "Print a plan's operator tree without running it"}[explain],
		PersistentPreRunE: func(*cobra.Command, []string) error {
			flags.explain = explain
			return nil
		},
	}
	group.AddCommand(scanCmd(flags))
	group.AddCommand(filterCmd(flags))
	group.AddCommand(joinCmd(flags))
	group.AddCommand(groupByCmd(flags))
	group.AddCommand(orderByCmd(flags))
	return group
}

// scanCmd runs a bare full scan of one fixture table — `SELECT * FROM t`.
func scanCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <table>",
		Short: "Scan every row of a fixture table",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := flags.requireFixture(); err != nil {
				return err
			}
			lt, err := loadFixtureTables(flags.fixture)
			if err != nil {
				return err
			}
			tbl, err := lt.table(args[0])
			if err != nil {
				return err
			}
			plan := builtPlan{op: &operator.Scan{Table: tbl}, columns: columnNames(tbl)}
			return runPlan(flags, plan)
		},
	}
}

// filterFlags configures the filter subcommand: whether to compile the
// predicate to the adaptive scan-select region or the linear baseline,
// and (when adaptive) the episode budget, RNG seed, and forget mode
// spec.md §4.6.2/§6.5 expose for scan-select regions specifically.
type filterFlags struct {
	adaptive bool
	budget   int32
	seed     int64
	forget   bool
	index    bool
}

func filterCmd(flags *globalFlags) *cobra.Command {
	ff := &filterFlags{}
	cmd := &cobra.Command{
		Use:   "filter <table.column> <op> <value>",
		Short: "Filter a table by one comparison predicate (op: = != < <= > >=)",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := flags.requireFixture(); err != nil {
				return err
			}
			lt, err := loadFixtureTables(flags.fixture)
			if err != nil {
				return err
			}
			tbl, col, err := lt.resolveColumn(args[0])
			if err != nil {
				return err
			}
			op, err := parseOpcode(args[1])
			if err != nil {
				return err
			}
			lit, err := parseLiteral(col.Kind, args[2])
			if err != nil {
				return err
			}

			scan := &operator.Scan{Table: tbl}
			pred := &expression.Comparison{
				Op:    op,
				Left:  &expression.ColumnRef{TableIdx: 0, Column: col},
				Right: &expression.Literal{Value: lit},
			}

			var planOp operator.Operator
			if ff.adaptive {
				node := &operator.SkinnerScanSelect{
					Child:            scan,
					Predicates:       []expression.Expression{pred},
					BudgetPerEpisode: ff.budget,
					Seed:             ff.seed,
					Forget:           ff.forget,
				}
				if ff.index {
					node.IndexedPredicates = []int{0}
					node.ColumnIndexes = map[int]*table.Column{0: col}
				}
				planOp = node
			} else {
				planOp = &operator.Select{Child: scan, Predicates: []expression.Expression{pred}}
			}

			plan := builtPlan{op: planOp, columns: columnNames(tbl)}
			return runPlan(flags, plan)
		},
	}
	cmd.Flags().BoolVar(&ff.adaptive, "adaptive", false, "Compile to the adaptive scan-select region instead of the linear baseline")
	cmd.Flags().Int32Var(&ff.budget, "budget", 0, "Episode budget (0 uses the configured default)")
	cmd.Flags().Int64Var(&ff.seed, "seed", 0, "UCT agent RNG seed")
	cmd.Flags().BoolVar(&ff.forget, "forget", false, "Discard the learned search tree after rounds 10, 100, 1000, ...")
	cmd.Flags().BoolVar(&ff.index, "index", false, "Evaluate the predicate through an equality index instead of a full scan")
	return cmd
}

// joinFlags configures the join subcommand analogously to filterFlags,
// but for the adaptive N-way join region (spec.md §4.6).
type joinFlags struct {
	adaptive bool
	budget   int32
	seed     int64
}

func joinCmd(flags *globalFlags) *cobra.Command {
	jf := &joinFlags{}
	cmd := &cobra.Command{
		Use:   "join <left.column> <right.column>",
		Short: "Equi-join two fixture tables on one column each",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := flags.requireFixture(); err != nil {
				return err
			}
			lt, err := loadFixtureTables(flags.fixture)
			if err != nil {
				return err
			}
			leftTbl, leftCol, err := lt.resolveColumn(args[0])
			if err != nil {
				return err
			}
			rightTbl, rightCol, err := lt.resolveColumn(args[1])
			if err != nil {
				return err
			}
			if leftTbl.Name == rightTbl.Name {
				return fmt.Errorf("adaptql: join requires two distinct tables, got %q twice", leftTbl.Name)
			}

			leftScan := &operator.Scan{Table: leftTbl}
			rightScan := &operator.Scan{Table: rightTbl}

			var planOp operator.Operator
			if jf.adaptive {
				planOp = &operator.SkinnerJoin{
					Tables: []operator.Operator{leftScan, rightScan},
					Conditions: []expression.Expression{
						&expression.Comparison{
							Op:    opcode.EQ,
							Left:  &expression.ColumnRef{TableIdx: 0, Column: leftCol},
							Right: &expression.ColumnRef{TableIdx: 1, Column: rightCol},
						},
					},
					BudgetPerEpisode: jf.budget,
					Seed:             jf.seed,
				}
			} else {
				planOp = &operator.HashJoin{
					Left:     leftScan,
					Right:    rightScan,
					LeftKey:  &expression.ColumnRef{TableIdx: 0, Column: leftCol},
					RightKey: &expression.ColumnRef{TableIdx: 1, Column: rightCol},
				}
			}

			plan := builtPlan{op: planOp, columns: columnNames(leftTbl, rightTbl)}
			return runPlan(flags, plan)
		},
	}
	cmd.Flags().BoolVar(&jf.adaptive, "adaptive", false, "Compile to the adaptive N-way join region instead of a hash join")
	cmd.Flags().Int32Var(&jf.budget, "budget", 0, "Episode budget (0 uses the configured default)")
	cmd.Flags().Int64Var(&jf.seed, "seed", 0, "UCT agent RNG seed")
	return cmd
}

func groupByCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groupby <table.key-column> <agg> <table.value-column>",
		Short: "Group by one column and compute one aggregate (agg: sum count min max avg)",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := flags.requireFixture(); err != nil {
				return err
			}
			lt, err := loadFixtureTables(flags.fixture)
			if err != nil {
				return err
			}
			tbl, keyCol, err := lt.resolveColumn(args[0])
			if err != nil {
				return err
			}
			_, valCol, err := lt.resolveColumn(args[2])
			if err != nil {
				return err
			}
			fn, err := parseAggFunc(args[1])
			if err != nil {
				return err
			}

			node := &operator.GroupByAggregate{
				Child:     &operator.Scan{Table: tbl},
				GroupKeys: []expression.Expression{&expression.ColumnRef{TableIdx: 0, Column: keyCol}},
				Aggregates: []operator.Aggregate{
					{Func: fn, Expr: &expression.ColumnRef{TableIdx: 0, Column: valCol}},
				},
			}
			plan := builtPlan{op: node, columns: []string{keyCol.Name, args[1] + "(" + valCol.Name + ")"}}
			return runPlan(flags, plan)
		},
	}
	return cmd
}

func parseAggFunc(s string) (operator.AggregateFunc, error) {
	switch s {
	case "sum":
		return operator.AggSum, nil
	case "count":
		return operator.AggCount, nil
	case "min":
		return operator.AggMin, nil
	case "max":
		return operator.AggMax, nil
	case "avg":
		return operator.AggAvg, nil
	default:
		return 0, fmt.Errorf("adaptql: unsupported aggregate %q (want one of sum count min max avg)", s)
	}
}

func orderByCmd(flags *globalFlags) *cobra.Command {
	var desc bool
	cmd := &cobra.Command{
		Use:   "orderby <table.column>",
		Short: "Sort a table by one column",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := flags.requireFixture(); err != nil {
				return err
			}
			lt, err := loadFixtureTables(flags.fixture)
			if err != nil {
				return err
			}
			tbl, col, err := lt.resolveColumn(args[0])
			if err != nil {
				return err
			}
			node := &operator.OrderBy{
				Child:      &operator.Scan{Table: tbl},
				Keys:       []expression.Expression{&expression.ColumnRef{TableIdx: 0, Column: col}},
				Descending: []bool{desc},
			}
			plan := builtPlan{op: node, columns: columnNames(tbl)}
			return runPlan(flags, plan)
		},
	}
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending instead of ascending")
	return cmd
}
