package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pingcap/tidb/pkg/parser/opcode"

	"adaptql/internal/plan/expression"
	"adaptql/internal/table"
	"adaptql/internal/types"
)

// loadedTables indexes a fixture's tables by name and remembers the
// original load order, so a plan command can resolve "customer.c_name"
// style column references (the name internal/table/fixture.go already
// qualifies every column with) against the right *table.Table.
type loadedTables struct {
	byName map[string]*table.Table
	order  []string
}

func loadFixtureTables(path string) (*loadedTables, error) {
	tables, err := table.LoadFixtureFile(path)
	if err != nil {
		return nil, err
	}
	lt := &loadedTables{byName: make(map[string]*table.Table, len(tables))}
	for _, t := range tables {
		lt.byName[t.Name] = t
		lt.order = append(lt.order, t.Name)
	}
	return lt, nil
}

func (lt *loadedTables) table(name string) (*table.Table, error) {
	t, ok := lt.byName[name]
	if !ok {
		return nil, fmt.Errorf("adaptql: no table %q in fixture (loaded: %s)", name, strings.Join(lt.order, ", "))
	}
	return t, nil
}

// resolveColumn splits a "table.column" reference, loads the table, and
// looks up the column. The fixture loader always names columns this way
// (internal/table/fixture.go), so this is the one place plan-building
// commands need to parse a column reference from the command line.
func (lt *loadedTables) resolveColumn(ref string) (*table.Table, *table.Column, error) {
	t, col, ok := strings.Cut(ref, ".")
	if !ok {
		return nil, nil, fmt.Errorf("adaptql: column reference %q must be \"table.column\"", ref)
	}
	tbl, err := lt.table(t)
	if err != nil {
		return nil, nil, err
	}
	c := tbl.Column(ref)
	if c == nil {
		return nil, nil, fmt.Errorf("adaptql: table %q has no column %q", t, col)
	}
	return tbl, c, nil
}

// parseOpcode translates a CLI comparison operator to the opcode package's
// vocabulary, the one expression.Comparison speaks.
func parseOpcode(s string) (opcode.Op, error) {
	switch s {
	case "=", "==":
		return opcode.EQ, nil
	case "!=", "<>":
		return opcode.NE, nil
	case "<":
		return opcode.LT, nil
	case "<=":
		return opcode.LE, nil
	case ">":
		return opcode.GT, nil
	case ">=":
		return opcode.GE, nil
	default:
		return 0, fmt.Errorf("adaptql: unsupported operator %q (want one of = != < <= > >=)", s)
	}
}

// parseLiteral converts a command-line string to a types.Value of the
// given kind, the way a real SQL layer's literal-folding pass would bind
// an untyped literal to its predicate's column type.
func parseLiteral(kind types.Kind, s string) (types.Value, error) {
	switch kind {
	case types.Boolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return types.Value{}, fmt.Errorf("adaptql: %q is not a boolean: %w", s, err)
		}
		return types.BoolValue(b), nil
	case types.SmallInt:
		n, err := strconv.ParseInt(s, 10, 16)
		if err != nil {
			return types.Value{}, fmt.Errorf("adaptql: %q is not a smallint: %w", s, err)
		}
		return types.SmallIntValue(int16(n)), nil
	case types.Int:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return types.Value{}, fmt.Errorf("adaptql: %q is not an int: %w", s, err)
		}
		return types.IntValue(int32(n)), nil
	case types.BigInt:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return types.Value{}, fmt.Errorf("adaptql: %q is not a bigint: %w", s, err)
		}
		return types.BigIntValue(n), nil
	case types.Real:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return types.Value{}, fmt.Errorf("adaptql: %q is not a real: %w", s, err)
		}
		return types.RealValue(f), nil
	case types.Date:
		d, err := types.ParseCivilDay(s)
		if err != nil {
			return types.Value{}, err
		}
		return types.DateValue(d), nil
	case types.Text:
		return types.TextValue(s), nil
	default:
		return types.Value{}, fmt.Errorf("adaptql: literals of kind %s are not supported from the command line", kind)
	}
}

// columnNames returns the qualified names of every column of the given
// tables, in table-then-column order — the header row for a projection
// that selects everything (a bare Scan or join result).
func columnNames(tables ...*table.Table) []string {
	var names []string
	for _, t := range tables {
		for _, c := range t.Columns {
			names = append(names, c.Name)
		}
	}
	return names
}

// describeExpr renders an expression.Expression for --explain output.
// It only needs to recognize the shapes this CLI itself builds.
func describeExpr(e expression.Expression) string {
	switch v := e.(type) {
	case *expression.ColumnRef:
		return v.Column.Name
	case *expression.Literal:
		return valueString(v.Value)
	case *expression.Comparison:
		return fmt.Sprintf("(%s %s %s)", describeExpr(v.Left), opSymbol(v.Op), describeExpr(v.Right))
	default:
		return fmt.Sprintf("%T", e)
	}
}

// valueString renders a literal value for --explain output.
func valueString(v types.Value) string {
	if v.Null {
		return "NULL"
	}
	switch v.Kind {
	case types.Boolean:
		return strconv.FormatBool(v.Bool)
	case types.SmallInt:
		return strconv.FormatInt(int64(v.Int16), 10)
	case types.Int:
		return strconv.FormatInt(int64(v.Int32), 10)
	case types.BigInt, types.Date:
		return strconv.FormatInt(v.Int64, 10)
	case types.Real:
		return strconv.FormatFloat(v.Float64, 'g', -1, 64)
	case types.Text:
		return v.Str.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// opSymbol renders a comparison opcode back to the CLI symbol that
// produced it; opcode.Op's own String method uses SQL keyword spellings
// (e.g. "eq") rather than the operators --explain's audience types.
func opSymbol(op opcode.Op) string {
	switch op {
	case opcode.EQ:
		return "="
	case opcode.NE:
		return "!="
	case opcode.LT:
		return "<"
	case opcode.LE:
		return "<="
	case opcode.GT:
		return ">"
	case opcode.GE:
		return ">="
	default:
		return "?"
	}
}
