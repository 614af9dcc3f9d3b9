package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"adaptql/internal/executor"
	"adaptql/internal/plan/expression"
	"adaptql/internal/plan/operator"
	"adaptql/internal/table"
	"adaptql/internal/types"
)

func twoColTable(name string, keys []int32, vals []int32) *table.Table {
	kc := table.NewIntColumn(name+".k", keys, nil)
	vc := table.NewIntColumn(name+".v", vals, nil)
	return table.New(name, kc, vc)
}

func TestCompileGroupByAggregateSumsAndCountsPerGroup(t *testing.T) {
	tbl := twoColTable("t",
		[]int32{1, 1, 2, 2, 2},
		[]int32{10, 20, 1, 2, 3},
	)
	scan := &operator.Scan{Table: tbl}

	g := &operator.GroupByAggregate{
		Child: scan,
		GroupKeys: []expression.Expression{
			&expression.ColumnRef{TableIdx: 0, Column: tbl.Column("t.k")},
		},
		Aggregates: []operator.Aggregate{
			{Func: operator.AggSum, Expr: &expression.ColumnRef{TableIdx: 0, Column: tbl.Column("t.v")}},
			{Func: operator.AggCount, Expr: &expression.ColumnRef{TableIdx: 0, Column: tbl.Column("t.v")}},
		},
	}

	qs := executor.NewQueryState(zap.NewNop())
	results := map[int32][2]int64{}
	require.NoError(t, CompileGroupByAggregate(g, qs, Options{}, func(r Row) error {
		key := r[0].Int32
		sum := int64(r[1].Float64)
		count := r[2].Int64
		results[key] = [2]int64{sum, count}
		return nil
	}))

	assert.Equal(t, [2]int64{30, 2}, results[1])
	assert.Equal(t, [2]int64{6, 3}, results[2])
}

func TestCompileGroupByAggregateMinMax(t *testing.T) {
	tbl := twoColTable("t",
		[]int32{1, 1, 1},
		[]int32{5, 1, 9},
	)
	scan := &operator.Scan{Table: tbl}

	g := &operator.GroupByAggregate{
		Child: scan,
		GroupKeys: []expression.Expression{
			&expression.ColumnRef{TableIdx: 0, Column: tbl.Column("t.k")},
		},
		Aggregates: []operator.Aggregate{
			{Func: operator.AggMin, Expr: &expression.ColumnRef{TableIdx: 0, Column: tbl.Column("t.v")}},
			{Func: operator.AggMax, Expr: &expression.ColumnRef{TableIdx: 0, Column: tbl.Column("t.v")}},
		},
	}

	qs := executor.NewQueryState(zap.NewNop())
	var rows []Row
	require.NoError(t, CompileGroupByAggregate(g, qs, Options{}, func(r Row) error {
		rows = append(rows, r)
		return nil
	}))

	require.Len(t, rows, 1)
	assert.Equal(t, types.RealValue(1), rows[0][1])
	assert.Equal(t, types.RealValue(9), rows[0][2])
}

func TestCompileGroupByAggregateAvgAndCountSkipNulls(t *testing.T) {
	kc := table.NewIntColumn("t.k", []int32{1, 1, 1, 2, 2}, nil)
	vc := table.NewIntColumn("t.v", []int32{10, 20, 0, 5, 0}, []bool{false, false, true, false, true})
	tbl := table.New("t", kc, vc)
	scan := &operator.Scan{Table: tbl}

	g := &operator.GroupByAggregate{
		Child: scan,
		GroupKeys: []expression.Expression{
			&expression.ColumnRef{TableIdx: 0, Column: tbl.Column("t.k")},
		},
		Aggregates: []operator.Aggregate{
			{Func: operator.AggAvg, Expr: &expression.ColumnRef{TableIdx: 0, Column: tbl.Column("t.v")}},
			{Func: operator.AggCount, Expr: nil},
			{Func: operator.AggCount, Expr: &expression.ColumnRef{TableIdx: 0, Column: tbl.Column("t.v")}},
		},
	}

	qs := executor.NewQueryState(zap.NewNop())
	type result struct {
		avg       types.Value
		countStar int64
		countCol  int64
	}
	results := map[int32]result{}
	require.NoError(t, CompileGroupByAggregate(g, qs, Options{}, func(r Row) error {
		key := r[0].Int32
		results[key] = result{avg: r[1], countStar: r[2].Int64, countCol: r[3].Int64}
		return nil
	}))

	assert.Equal(t, types.RealValue(15), results[1].avg)
	assert.Equal(t, int64(3), results[1].countStar)
	assert.Equal(t, int64(2), results[1].countCol)

	assert.Equal(t, types.RealValue(5), results[2].avg)
	assert.Equal(t, int64(2), results[2].countStar)
	assert.Equal(t, int64(1), results[2].countCol)
}

func TestCompileGroupByAggregateAvgAllNullIsNull(t *testing.T) {
	kc := table.NewIntColumn("t.k", []int32{1, 1}, nil)
	vc := table.NewIntColumn("t.v", []int32{0, 0}, []bool{true, true})
	tbl := table.New("t", kc, vc)
	scan := &operator.Scan{Table: tbl}

	g := &operator.GroupByAggregate{
		Child: scan,
		GroupKeys: []expression.Expression{
			&expression.ColumnRef{TableIdx: 0, Column: tbl.Column("t.k")},
		},
		Aggregates: []operator.Aggregate{
			{Func: operator.AggAvg, Expr: &expression.ColumnRef{TableIdx: 0, Column: tbl.Column("t.v")}},
		},
	}

	qs := executor.NewQueryState(zap.NewNop())
	var rows []Row
	require.NoError(t, CompileGroupByAggregate(g, qs, Options{}, func(r Row) error {
		rows = append(rows, r)
		return nil
	}))

	require.Len(t, rows, 1)
	assert.True(t, rows[0][1].Null)
}
