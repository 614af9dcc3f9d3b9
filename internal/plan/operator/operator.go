// Package operator is the engine's physical plan tree: the operators
// internal/translate lowers into C3-contract handlers. The shape mirrors
// kushdb's plan/operator hierarchy (Operator/UnaryOperator/BinaryOperator
// plus one concrete type per physical strategy) translated into a small
// Go interface and a Visitor, in place of the C++ original's abstract
// base class plus double-dispatch Accept overloads.
package operator

import (
	"adaptql/internal/plan/expression"
	"adaptql/internal/table"
)

// Operator is one node of a physical plan. Every concrete operator type
// in this package implements it.
type Operator interface {
	Children() []Operator
	Accept(v Visitor)
}

// Visitor dispatches over the concrete operator types, the idiomatic Go
// substitute for kushdb's OperatorVisitor double dispatch.
type Visitor interface {
	VisitScan(*Scan)
	VisitSelect(*Select)
	VisitSkinnerScanSelect(*SkinnerScanSelect)
	VisitHashJoin(*HashJoin)
	VisitSkinnerJoin(*SkinnerJoin)
	VisitGroupByAggregate(*GroupByAggregate)
	VisitOrderBy(*OrderBy)
}

// Scan reads every tuple of a base table in index order. It is a leaf:
// joins and scan-selects sit above it in the tree.
type Scan struct {
	Table *table.Table
}

func (s *Scan) Children() []Operator { return nil }
func (s *Scan) Accept(v Visitor)     { v.VisitScan(s) }

// Select evaluates Predicates, in the fixed order given, over Child —
// the non-adaptive baseline translate.CompileLinearScanSelect targets
// (spec.md §4.9's "simd"/linear baseline).
type Select struct {
	Child      Operator
	Predicates []expression.Expression
}

func (s *Select) Children() []Operator { return []Operator{s.Child} }
func (s *Select) Accept(v Visitor)     { v.VisitSelect(s) }

// SkinnerScanSelect is the adaptive form of Select: Predicates are
// evaluated in an order the UCT agent chooses per episode, and
// IndexedPredicates names which predicates additionally have a usable
// column index the agent may choose to scan through instead (spec.md
// §4.6.2).
type SkinnerScanSelect struct {
	Child              Operator
	Predicates         []expression.Expression
	IndexedPredicates  []int // indexes into Predicates
	ColumnIndexes      map[int]*table.Column
	BudgetPerEpisode   int32
	Seed               int64
	Forget             bool
}

func (s *SkinnerScanSelect) Children() []Operator { return []Operator{s.Child} }
func (s *SkinnerScanSelect) Accept(v Visitor)      { v.VisitSkinnerScanSelect(s) }

// HashJoin builds an equality index over the right side's key and probes
// it once per left tuple; the non-adaptive baseline for joining two inputs.
type HashJoin struct {
	Left, Right         Operator
	LeftKey, RightKey   expression.Expression
}

func (h *HashJoin) Children() []Operator { return []Operator{h.Left, h.Right} }
func (h *HashJoin) Accept(v Visitor)      { v.VisitHashJoin(h) }

// SkinnerJoin adaptively orders Tables (and, within each level, decides
// index-vs-scan) across episodes, deduplicating output across orders via
// internal/runtime/dedup (spec.md §4.6, §4.7).
type SkinnerJoin struct {
	Tables           []Operator
	Conditions       []expression.Expression
	BudgetPerEpisode int32
	Seed             int64
}

func (s *SkinnerJoin) Children() []Operator { return s.Tables }
func (s *SkinnerJoin) Accept(v Visitor)      { v.VisitSkinnerJoin(s) }

// GroupByAggregate computes one AggregateHashTable-backed aggregation
// per distinct value of GroupKeys.
type GroupByAggregate struct {
	Child      Operator
	GroupKeys  []expression.Expression
	Aggregates []Aggregate
}

// AggregateFunc identifies a supported aggregate function.
type AggregateFunc int

const (
	AggSum AggregateFunc = iota
	AggCount
	AggMin
	AggMax
	AggAvg
)

type Aggregate struct {
	Func AggregateFunc
	Expr expression.Expression
}

func (g *GroupByAggregate) Children() []Operator { return []Operator{g.Child} }
func (g *GroupByAggregate) Accept(v Visitor)      { v.VisitGroupByAggregate(g) }

// OrderBy sorts Child's output by Keys, ascending unless Descending[i] is
// set for that key.
type OrderBy struct {
	Child      Operator
	Keys       []expression.Expression
	Descending []bool
}

func (o *OrderBy) Children() []Operator { return []Operator{o.Child} }
func (o *OrderBy) Accept(v Visitor)      { v.VisitOrderBy(o) }
