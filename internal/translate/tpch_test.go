package translate

import (
	"testing"

	"github.com/pingcap/tidb/pkg/parser/opcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"adaptql/internal/executor"
	"adaptql/internal/oracle"
	"adaptql/internal/plan/expression"
	"adaptql/internal/plan/operator"
	"adaptql/internal/table"
	"adaptql/internal/types"
)

// loadTPCHTable loads the single table named tableName out of the
// fixture at path, failing the test if the fixture or the table is
// missing.
func loadTPCHTable(t *testing.T, path, tableName string) *table.Table {
	t.Helper()
	tables, err := table.LoadFixtureFile(path)
	require.NoError(t, err)
	for _, tbl := range tables {
		if tbl.Name == tableName {
			return tbl
		}
	}
	t.Fatalf("table %q not found in %s", tableName, path)
	return nil
}

// loadExpectedRows loads the single "result" table out of an
// *_expected.toml fixture and converts it into oracle.Rows, column order
// significant (must match the engine's own emission order).
func loadExpectedRows(t *testing.T, path string) []oracle.Row {
	t.Helper()
	tbl := loadTPCHTable(t, path, "result")
	card := tbl.Cardinality()
	rows := make([]oracle.Row, card)
	for i := int32(0); i < card; i++ {
		row := make(oracle.Row, len(tbl.Columns))
		for c, col := range tbl.Columns {
			row[c] = col.Value(i)
		}
		rows[i] = row
	}
	return rows
}

func toOracleRows(rows []Row) []oracle.Row {
	out := make([]oracle.Row, len(rows))
	for i, r := range rows {
		out[i] = oracle.Row(r)
	}
	return out
}

// runTPCHQuery runs GROUP BY + ORDER BY over joinOp's output (a
// SkinnerJoin, not a bare Scan), materializing between each
// stage: CompileGroupByAggregate/CompileOrderBy both internally
// materialize their own child's rows into a fresh table.Table and
// evaluate GroupKeys/Aggregates/Keys against ctx.Idx positions into that
// table's columns, so a ColumnRef built against the join's original
// input tables would read the wrong row order once the join resolves
// out of order. Staging every operator manually, one real
// *table.Table at a time, keeps every ColumnRef pointed at the table
// whose row order it actually describes.
func runTPCHQuery(t *testing.T, joinOp operator.Operator, opts Options, groupKeyIdx []int, aggExprFn func(joined *table.Table) []operator.Aggregate, orderKeyIdx int, descending bool) []Row {
	t.Helper()
	qs := executor.NewQueryState(zap.NewNop())

	joinRows, err := collectRows(joinOp, qs, opts)
	require.NoError(t, err)
	joined := materializeRows("joined", joinRows)

	groupKeys := make([]expression.Expression, len(groupKeyIdx))
	for i, idx := range groupKeyIdx {
		groupKeys[i] = &expression.ColumnRef{TableIdx: 0, Column: joined.Columns[idx]}
	}

	g := &operator.GroupByAggregate{
		Child:      &operator.Scan{Table: joined},
		GroupKeys:  groupKeys,
		Aggregates: aggExprFn(joined),
	}

	groupRows, err := collectRows(g, qs, opts)
	require.NoError(t, err)
	grouped := materializeRows("grouped", groupRows)

	ob := &operator.OrderBy{
		Child:      &operator.Scan{Table: grouped},
		Keys:       []expression.Expression{&expression.ColumnRef{TableIdx: 0, Column: grouped.Columns[orderKeyIdx]}},
		Descending: []bool{descending},
	}

	out, err := collectRows(ob, qs, opts)
	require.NoError(t, err)
	return out
}

// TestTPCHQ3ShippingPriority runs the Q3 ("shipping priority") join
// chain against testdata/tpch/q03.toml across the low- and
// high-budget ends of spec.md's configuration surface, checking the
// output against testdata/tpch/q03_expected.toml via
// internal/oracle.CompareMultisets. Grounded on the original kushdb
// end-to-end test's q03_skinner_dc_test.cc predicate literals.
func TestTPCHQ3ShippingPriority(t *testing.T) {
	const in = "../../testdata/tpch/q03.toml"
	const want = "../../testdata/tpch/q03_expected.toml"

	customer := loadTPCHTable(t, in, "customer")
	orders := loadTPCHTable(t, in, "orders")
	lineitem := loadTPCHTable(t, in, "lineitem")
	expected := loadExpectedRows(t, want)

	for _, budget := range []int32{5, 10000} {
		join := &operator.SkinnerJoin{
			Tables: []operator.Operator{
				&operator.Scan{Table: customer},
				&operator.Scan{Table: orders},
				&operator.Scan{Table: lineitem},
			},
			Conditions: []expression.Expression{
				&expression.Comparison{
					Op:    opcode.EQ,
					Left:  &expression.ColumnRef{TableIdx: 0, Column: customer.Column("customer.c_custkey")},
					Right: &expression.ColumnRef{TableIdx: 1, Column: orders.Column("orders.o_custkey")},
				},
				&expression.Comparison{
					Op:    opcode.EQ,
					Left:  &expression.ColumnRef{TableIdx: 1, Column: orders.Column("orders.o_orderkey")},
					Right: &expression.ColumnRef{TableIdx: 2, Column: lineitem.Column("lineitem.l_orderkey")},
				},
			},
			BudgetPerEpisode: budget,
			Seed:             1,
		}

		// Column layout of the join's allColumnsRow (tables in the order
		// given above): 0 c_custkey, 1 o_orderdate, 2 o_shippriority,
		// 3 o_custkey, 4 o_orderkey, 5 l_orderkey, 6 l_extendedprice,
		// 7 l_discount.
		rows := runTPCHQuery(t, join, Options{BudgetPerEpisode: budget, Seed: 1},
			[]int{4, 1, 2}, // o_orderkey (= l_orderkey), o_orderdate, o_shippriority
			func(joined *table.Table) []operator.Aggregate {
				return []operator.Aggregate{
					{
						Func: operator.AggSum,
						Expr: &expression.Arithmetic{
							Op:    opcode.Mul,
							Left:  &expression.ColumnRef{TableIdx: 0, Column: joined.Columns[6]},
							Right: &expression.Arithmetic{
								Op:    opcode.Minus,
								Left:  &expression.Literal{Value: types.RealValue(1)},
								Right: &expression.ColumnRef{TableIdx: 0, Column: joined.Columns[7]},
							},
						},
					},
				}
			},
			3, true, // revenue desc
		)

		assert.NoErrorf(t, oracle.CompareMultisets(toOracleRows(rows), expected), "budget=%d", budget)
	}
}

// TestTPCHQ5LocalSupplierVolume runs the Q5 ("local supplier volume")
// six-way join chain against testdata/tpch/q05.toml across the low- and
// high-budget ends of spec.md's configuration surface, checking that
// Canada (a nation outside the filtered region) is excluded from the
// result regardless of which table order the adaptive join explores
// first. Grounded on the original kushdb end-to-end test's
// q05_skinner_dc_test.cc predicate literals and join shape.
func TestTPCHQ5LocalSupplierVolume(t *testing.T) {
	const in = "../../testdata/tpch/q05.toml"
	const want = "../../testdata/tpch/q05_expected.toml"

	region := loadTPCHTable(t, in, "region")
	nation := loadTPCHTable(t, in, "nation")
	customer := loadTPCHTable(t, in, "customer")
	orders := loadTPCHTable(t, in, "orders")
	lineitem := loadTPCHTable(t, in, "lineitem")
	supplier := loadTPCHTable(t, in, "supplier")
	expected := loadExpectedRows(t, want)

	for _, budget := range []int32{5, 10000} {
		join := &operator.SkinnerJoin{
			Tables: []operator.Operator{
				&operator.Scan{Table: region},
				&operator.Scan{Table: nation},
				&operator.Scan{Table: customer},
				&operator.Scan{Table: orders},
				&operator.Scan{Table: lineitem},
				&operator.Scan{Table: supplier},
			},
			Conditions: []expression.Expression{
				&expression.Comparison{
					Op:    opcode.EQ,
					Left:  &expression.ColumnRef{TableIdx: 0, Column: region.Column("region.r_regionkey")},
					Right: &expression.ColumnRef{TableIdx: 1, Column: nation.Column("nation.n_regionkey")},
				},
				&expression.Comparison{
					Op:    opcode.EQ,
					Left:  &expression.ColumnRef{TableIdx: 1, Column: nation.Column("nation.n_nationkey")},
					Right: &expression.ColumnRef{TableIdx: 2, Column: customer.Column("customer.c_nationkey")},
				},
				&expression.Comparison{
					Op:    opcode.EQ,
					Left:  &expression.ColumnRef{TableIdx: 2, Column: customer.Column("customer.c_custkey")},
					Right: &expression.ColumnRef{TableIdx: 3, Column: orders.Column("orders.o_custkey")},
				},
				&expression.Comparison{
					Op:    opcode.EQ,
					Left:  &expression.ColumnRef{TableIdx: 3, Column: orders.Column("orders.o_orderkey")},
					Right: &expression.ColumnRef{TableIdx: 4, Column: lineitem.Column("lineitem.l_orderkey")},
				},
				&expression.Comparison{
					Op:    opcode.EQ,
					Left:  &expression.ColumnRef{TableIdx: 4, Column: lineitem.Column("lineitem.l_suppkey")},
					Right: &expression.ColumnRef{TableIdx: 5, Column: supplier.Column("supplier.s_suppkey")},
				},
				&expression.Comparison{
					Op:    opcode.EQ,
					Left:  &expression.ColumnRef{TableIdx: 2, Column: customer.Column("customer.c_nationkey")},
					Right: &expression.ColumnRef{TableIdx: 5, Column: supplier.Column("supplier.s_nationkey")},
				},
			},
			BudgetPerEpisode: budget,
			Seed:             7,
		}

		// Column layout of the join's allColumnsRow (tables in the order
		// given above): 0 r_regionkey, 1 n_nationkey, 2 n_regionkey,
		// 3 n_name, 4 c_custkey, 5 c_nationkey, 6 o_custkey, 7 o_orderkey,
		// 8 l_extendedprice, 9 l_discount, 10 l_orderkey, 11 l_suppkey,
		// 12 s_suppkey, 13 s_nationkey.
		rows := runTPCHQuery(t, join, Options{BudgetPerEpisode: budget, Seed: 7},
			[]int{3}, // n_name
			func(joined *table.Table) []operator.Aggregate {
				return []operator.Aggregate{
					{
						Func: operator.AggSum,
						Expr: &expression.Arithmetic{
							Op:    opcode.Mul,
							Left:  &expression.ColumnRef{TableIdx: 0, Column: joined.Columns[8]},
							Right: &expression.Arithmetic{
								Op:    opcode.Minus,
								Left:  &expression.Literal{Value: types.RealValue(1)},
								Right: &expression.ColumnRef{TableIdx: 0, Column: joined.Columns[9]},
							},
						},
					},
				}
			},
			1, true, // revenue desc
		)

		assert.NoErrorf(t, oracle.CompareMultisets(toOracleRows(rows), expected), "budget=%d", budget)
	}
}
