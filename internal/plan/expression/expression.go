// Package expression is the engine's scalar expression IR: the trees a
// physical plan's predicates, join conditions, and projected/aggregated
// columns are built from. Operator codes reuse
// github.com/pingcap/tidb/pkg/parser/opcode rather than a hand-rolled
// enum, the same way the teacher's SQL surface reuses a parser package's
// vocabulary instead of inventing its own (spec.md's physical plan
// arrives already typed and already bound to a catalog — see
// internal/table — so this package never needs a name-resolution pass,
// only evaluation).
package expression

import (
	"github.com/pingcap/tidb/pkg/parser/opcode"

	"adaptql/internal/table"
	"adaptql/internal/types"
)

// Expression evaluates to a types.Value against one bound tuple index
// per input table. Ctx supplies those tuple indexes; a leaf ColumnRef
// reads ctx.Idx[tableIdx] and looks the value up in its Column.
type Expression interface {
	Eval(ctx *Context) types.Value
}

// Context binds the tuple index currently active at each level of the
// region being evaluated (spec.md §3.7's Idx array), plus the tables
// those levels scan.
type Context struct {
	Tables []*table.Table
	Idx    []int32
}

// ColumnRef reads one column of one bound table.
type ColumnRef struct {
	TableIdx int
	Column   *table.Column
}

func (c *ColumnRef) Eval(ctx *Context) types.Value {
	return c.Column.Value(ctx.Idx[c.TableIdx])
}

// Literal is a constant value.
type Literal struct{ Value types.Value }

func (l *Literal) Eval(*Context) types.Value { return l.Value }

// Comparison applies a comparison opcode (EQ, LT, LE, GT, GE, NE) to two
// operands, following the three-valued semantics in types.Equal/LessThan:
// a null operand makes the whole comparison return a null BOOLEAN.
type Comparison struct {
	Op    opcode.Op
	Left  Expression
	Right Expression
}

func (c *Comparison) Eval(ctx *Context) types.Value {
	l := c.Left.Eval(ctx)
	r := c.Right.Eval(ctx)
	if l.Null || r.Null {
		return types.NullValue(types.Boolean)
	}

	switch c.Op {
	case opcode.EQ:
		eq, _ := types.Equal(l, r)
		return types.BoolValue(eq)
	case opcode.NE:
		eq, _ := types.Equal(l, r)
		return types.BoolValue(!eq)
	case opcode.LT:
		lt, _ := types.LessThan(l, r)
		return types.BoolValue(lt)
	case opcode.LE:
		lt, _ := types.LessThan(l, r)
		eq, _ := types.Equal(l, r)
		return types.BoolValue(lt || eq)
	case opcode.GT:
		lt, _ := types.LessThan(l, r)
		eq, _ := types.Equal(l, r)
		return types.BoolValue(!lt && !eq)
	case opcode.GE:
		lt, _ := types.LessThan(l, r)
		return types.BoolValue(!lt)
	default:
		panic("expression: unsupported comparison opcode")
	}
}

// Logical applies AND/OR/NOT with SQL three-valued truth tables.
type Logical struct {
	Op          opcode.Op
	Left, Right Expression // Right is nil for Not
}

func (e *Logical) Eval(ctx *Context) types.Value {
	l := e.Left.Eval(ctx)
	switch e.Op {
	case opcode.Not:
		if l.Null {
			return l
		}
		return types.BoolValue(!l.Bool)
	case opcode.LogicAnd:
		r := e.Right.Eval(ctx)
		if (!l.Null && !l.Bool) || (!r.Null && !r.Bool) {
			return types.BoolValue(false)
		}
		if l.Null || r.Null {
			return types.NullValue(types.Boolean)
		}
		return types.BoolValue(true)
	case opcode.LogicOr:
		r := e.Right.Eval(ctx)
		if (!l.Null && l.Bool) || (!r.Null && r.Bool) {
			return types.BoolValue(true)
		}
		if l.Null || r.Null {
			return types.NullValue(types.Boolean)
		}
		return types.BoolValue(false)
	default:
		panic("expression: unsupported logical opcode")
	}
}

// Arithmetic applies +, -, *, / over REAL/integral operands, widening
// integral kinds to int64 (types.Value.AsInt64) and producing a BIGINT
// result; REAL operands produce a REAL result. Division by zero returns
// NULL rather than panicking, matching SQL's NULL-on-error convention for
// this engine (spec.md leaves error-vs-null on arithmetic faults
// unspecified; DESIGN.md records this as a resolved Open Question).
type Arithmetic struct {
	Op          opcode.Op
	Left, Right Expression
}

func (a *Arithmetic) Eval(ctx *Context) types.Value {
	l := a.Left.Eval(ctx)
	r := a.Right.Eval(ctx)
	if l.Null || r.Null {
		if l.Kind == types.Real || r.Kind == types.Real {
			return types.NullValue(types.Real)
		}
		return types.NullValue(types.BigInt)
	}

	if l.Kind == types.Real || r.Kind == types.Real {
		lf, rf := asFloat(l), asFloat(r)
		switch a.Op {
		case opcode.Plus:
			return types.RealValue(lf + rf)
		case opcode.Minus:
			return types.RealValue(lf - rf)
		case opcode.Mul:
			return types.RealValue(lf * rf)
		case opcode.Div:
			if rf == 0 {
				return types.NullValue(types.Real)
			}
			return types.RealValue(lf / rf)
		}
		panic("expression: unsupported arithmetic opcode")
	}

	li, ri := l.AsInt64(), r.AsInt64()
	switch a.Op {
	case opcode.Plus:
		return types.BigIntValue(li + ri)
	case opcode.Minus:
		return types.BigIntValue(li - ri)
	case opcode.Mul:
		return types.BigIntValue(li * ri)
	case opcode.Div:
		if ri == 0 {
			return types.NullValue(types.BigInt)
		}
		return types.BigIntValue(li / ri)
	}
	panic("expression: unsupported arithmetic opcode")
}

func asFloat(v types.Value) float64 {
	if v.Kind == types.Real {
		return v.Float64
	}
	return float64(v.AsInt64())
}

// Like applies SQL LIKE; Right must evaluate to a TEXT literal pattern.
type Like struct {
	Left, Right Expression
}

func (l *Like) Eval(ctx *Context) types.Value {
	lv := l.Left.Eval(ctx)
	rv := l.Right.Eval(ctx)
	if lv.Null || rv.Null {
		return types.NullValue(types.Boolean)
	}
	return types.BoolValue(types.Like(&lv.Str, &rv.Str))
}
