package expression

import (
	"testing"

	"github.com/pingcap/tidb/pkg/parser/opcode"
	"github.com/stretchr/testify/assert"

	"adaptql/internal/table"
	"adaptql/internal/types"
)

func ctxFor(tbl *table.Table, idx int32) *Context {
	return &Context{Tables: []*table.Table{tbl}, Idx: []int32{idx}}
}

func TestComparisonThreeValuedWithNull(t *testing.T) {
	tbl := table.New("t", table.NewIntColumn("a", []int32{1, 2, 3}, []bool{false, true, false}))
	col := &ColumnRef{TableIdx: 0, Column: tbl.Column("a")}
	cmp := &Comparison{Op: opcode.EQ, Left: col, Right: &Literal{Value: types.IntValue(2)}}

	assert.False(t, cmp.Eval(ctxFor(tbl, 0)).Bool)
	assert.True(t, cmp.Eval(ctxFor(tbl, 1)).Null, "comparison against a null operand is unknown")
	assert.False(t, cmp.Eval(ctxFor(tbl, 2)).Bool)
}

func TestLogicalAndShortCircuitsOnFalseEvenWithNull(t *testing.T) {
	falseLit := &Literal{Value: types.BoolValue(false)}
	nullLit := &Literal{Value: types.NullValue(types.Boolean)}
	and := &Logical{Op: opcode.LogicAnd, Left: falseLit, Right: nullLit}

	v := and.Eval(&Context{})
	assert.False(t, v.Null)
	assert.False(t, v.Bool)
}

func TestLogicalOrIsNullWhenNeitherSideIsTrue(t *testing.T) {
	nullLit := &Literal{Value: types.NullValue(types.Boolean)}
	falseLit := &Literal{Value: types.BoolValue(false)}
	or := &Logical{Op: opcode.LogicOr, Left: nullLit, Right: falseLit}

	assert.True(t, or.Eval(&Context{}).Null)
}

func TestArithmeticDivisionByZeroIsNull(t *testing.T) {
	div := &Arithmetic{Op: opcode.Div, Left: &Literal{Value: types.IntValue(4)}, Right: &Literal{Value: types.IntValue(0)}}
	assert.True(t, div.Eval(&Context{}).Null)
}

func TestArithmeticPromotesToRealWhenEitherOperandIsReal(t *testing.T) {
	add := &Arithmetic{Op: opcode.Plus, Left: &Literal{Value: types.IntValue(2)}, Right: &Literal{Value: types.RealValue(0.5)}}
	v := add.Eval(&Context{})
	assert.Equal(t, types.Real, v.Kind)
	assert.InDelta(t, 2.5, v.Float64, 1e-9)
}

func TestLikeMatchesWildcardPattern(t *testing.T) {
	like := &Like{Left: &Literal{Value: types.TextValue("hello world")}, Right: &Literal{Value: types.TextValue("hello%")}}
	assert.True(t, like.Eval(&Context{}).Bool)
}
