package table

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"adaptql/internal/types"
)

// fixtureFile is the top-level shape of a table fixture TOML document,
// the table/column analog of the teacher's migration-schema TOML format
// (internal/parser/toml in the example pack): plain top-level
// [[tables]] entries, each carrying its columns' already-typed values
// rather than a dialect-specific DDL description, since this engine has
// no DDL of its own to parse (spec.md scopes catalog/DDL loading out).
type fixtureFile struct {
	Tables []fixtureTable `toml:"tables"`
}

type fixtureTable struct {
	Name    string           `toml:"name"`
	Columns []fixtureColumn  `toml:"columns"`
}

type fixtureColumn struct {
	Name   string   `toml:"name"`
	Kind   string   `toml:"kind"`
	Nulls  []bool   `toml:"nulls"`
	Bools  []bool   `toml:"bool_values"`
	Ints   []int64  `toml:"int_values"`
	Reals  []float64 `toml:"real_values"`
	Texts  []string `toml:"text_values"`
	// Dates are given as "YYYY-MM-DD" strings and converted via
	// types.ParseCivilDay, matching how the TPC-H fixtures spell DATE
	// columns in their source .tbl files.
	Dates []string `toml:"date_values"`
}

// LoadFixtureFile opens path and parses it as a table fixture document.
func LoadFixtureFile(path string) ([]*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table: open fixture %q: %w", path, err)
	}
	defer f.Close()
	return LoadFixture(f)
}

// LoadFixture reads a TOML fixture document from r and builds one
// *Table per [[tables]] entry, in document order.
func LoadFixture(r io.Reader) ([]*Table, error) {
	var doc fixtureFile
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("table: fixture decode error: %w", err)
	}

	tables := make([]*Table, 0, len(doc.Tables))
	for _, ft := range doc.Tables {
		tbl, err := buildFixtureTable(ft)
		if err != nil {
			return nil, fmt.Errorf("table: fixture table %q: %w", ft.Name, err)
		}
		tables = append(tables, tbl)
	}
	return tables, nil
}

func buildFixtureTable(ft fixtureTable) (*Table, error) {
	cols := make([]*Column, 0, len(ft.Columns))
	for _, fc := range ft.Columns {
		col, err := buildFixtureColumn(ft.Name, fc)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return New(ft.Name, cols...), nil
}

func buildFixtureColumn(tableName string, fc fixtureColumn) (*Column, error) {
	name := tableName + "." + fc.Name
	switch fc.Kind {
	case "boolean":
		return NewBooleanColumn(name, fc.Bools, fc.Nulls), nil
	case "smallint":
		vals := make([]int16, len(fc.Ints))
		for i, v := range fc.Ints {
			vals[i] = int16(v)
		}
		return NewSmallIntColumn(name, vals, fc.Nulls), nil
	case "int":
		vals := make([]int32, len(fc.Ints))
		for i, v := range fc.Ints {
			vals[i] = int32(v)
		}
		return NewIntColumn(name, vals, fc.Nulls), nil
	case "bigint":
		return NewBigIntColumn(name, fc.Ints, fc.Nulls), nil
	case "real":
		return NewRealColumn(name, fc.Reals, fc.Nulls), nil
	case "text":
		vals := make([]types.String, len(fc.Texts))
		for i, s := range fc.Texts {
			vals[i] = types.NewString(s)
		}
		return NewTextColumn(name, vals, fc.Nulls), nil
	case "date":
		vals := make([]int64, len(fc.Dates))
		for i, s := range fc.Dates {
			day, err := types.ParseCivilDay(s)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", fc.Name, err)
			}
			vals[i] = day
		}
		return NewDateColumn(name, vals, fc.Nulls), nil
	default:
		return nil, fmt.Errorf("column %q: unsupported kind %q", fc.Name, fc.Kind)
	}
}
