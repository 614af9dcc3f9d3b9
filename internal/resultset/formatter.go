// Package resultset streams a query's materialized output rows to a
// sink, generalizing kushdb's runtime/printer.cc typed print_* functions
// (spec.md §4.9) the way the teacher's internal/output package offers
// one Formatter per output need: this package offers one Printer per
// output form (human-readable, JSON, SQL literal), selected the same
// way the teacher selects a diff/migration formatter.
package resultset

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"adaptql/internal/types"
)

// Format identifies one of the supported output forms.
type Format string

const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
	FormatSQL   Format = "sql"
)

// Printer is spec.md §4.8's output-materialization sink: the adaptive
// executor's consume function calls WriteRow once per deduplicated
// result tuple, in whatever (nondeterministic, per spec.md §5) order the
// dedup table yields them, then Close once the region is exhausted.
type Printer interface {
	WriteRow(row []types.Value) error
	Close() error
}

// NewPrinter constructs a Printer for the given format, writing to w.
// columns names each row position, for the JSON and human-readable forms
// (SQL-literal output only needs position, matching a VALUES list).
func NewPrinter(format Format, w io.Writer, columns []string) (Printer, error) {
	switch format {
	case "", FormatHuman:
		return &humanPrinter{w: w, columns: columns}, nil
	case FormatJSON:
		return &jsonPrinter{w: w, columns: columns}, nil
	case FormatSQL:
		return &sqlPrinter{w: w}, nil
	default:
		return nil, fmt.Errorf("resultset: unsupported format %q; use 'human', 'json', or 'sql'", format)
	}
}

// humanPrinter writes one tab-separated line per row, the same flat
// textual form the teacher's own CLI layer uses for its progress/status
// lines (plain fmt.Fprintf, no table-drawing library).
type humanPrinter struct {
	w        io.Writer
	columns  []string
	wroteHdr bool
}

func (p *humanPrinter) WriteRow(row []types.Value) error {
	if !p.wroteHdr && len(p.columns) > 0 {
		if _, err := fmt.Fprintln(p.w, strings.Join(p.columns, "\t")); err != nil {
			return fmt.Errorf("resultset: write header: %w", err)
		}
		p.wroteHdr = true
	}
	fields := make([]string, len(row))
	for i, v := range row {
		fields[i] = printValue(v)
	}
	if _, err := fmt.Fprintln(p.w, strings.Join(fields, "\t")); err != nil {
		return fmt.Errorf("resultset: write row: %w", err)
	}
	return nil
}

func (p *humanPrinter) Close() error { return nil }

// jsonPrinter emits a JSON array of {column: value} objects, streamed
// incrementally (one encode per row, bracketed by WriteRow/Close) rather
// than buffered wholesale, since a query's result set is not bounded by
// spec.md to fit in memory twice over.
type jsonPrinter struct {
	w       io.Writer
	columns []string
	n       int
}

func (p *jsonPrinter) WriteRow(row []types.Value) error {
	if p.n == 0 {
		if _, err := fmt.Fprint(p.w, "["); err != nil {
			return fmt.Errorf("resultset: write json open: %w", err)
		}
	} else {
		if _, err := fmt.Fprint(p.w, ","); err != nil {
			return fmt.Errorf("resultset: write json separator: %w", err)
		}
	}
	p.n++

	obj := make(map[string]any, len(row))
	for i, v := range row {
		name := fmt.Sprintf("col%d", i)
		if i < len(p.columns) {
			name = p.columns[i]
		}
		obj[name] = jsonValue(v)
	}
	enc, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("resultset: marshal row: %w", err)
	}
	if _, err := p.w.Write(enc); err != nil {
		return fmt.Errorf("resultset: write json row: %w", err)
	}
	return nil
}

func (p *jsonPrinter) Close() error {
	if p.n == 0 {
		_, err := fmt.Fprint(p.w, "[]")
		return err
	}
	_, err := fmt.Fprint(p.w, "]")
	return err
}

// sqlPrinter emits one SQL-literal tuple per row, e.g. (1, 'x', NULL).
type sqlPrinter struct {
	w io.Writer
}

func (p *sqlPrinter) WriteRow(row []types.Value) error {
	fields := make([]string, len(row))
	for i, v := range row {
		fields[i] = sqlLiteral(v)
	}
	_, err := fmt.Fprintf(p.w, "(%s)\n", strings.Join(fields, ", "))
	if err != nil {
		return fmt.Errorf("resultset: write sql row: %w", err)
	}
	return nil
}

func (p *sqlPrinter) Close() error { return nil }

func printValue(v types.Value) string {
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
	case types.BigInt:
		return strconv.FormatInt(v.Int64, 10)
	case types.Real:
		return strconv.FormatFloat(v.Float64, 'g', -1, 64)
	case types.Date:
		return types.DateToTime(v.Int64).Format("2006-01-02")
	case types.Text:
		return v.Str.String()
	case types.Enum:
		return v.Str.String()
	default:
		return fmt.Sprintf("<%v>", v.Kind)
	}
}

func jsonValue(v types.Value) any {
	if v.Null {
		return nil
	}
	switch v.Kind {
	case types.Boolean:
		return v.Bool
	case types.SmallInt:
		return v.Int16
	case types.Int:
		return v.Int32
	case types.BigInt:
		return v.Int64
	case types.Real:
		return v.Float64
	case types.Date:
		return types.DateToTime(v.Int64).Format("2006-01-02")
	case types.Text, types.Enum:
		return v.Str.String()
	default:
		return nil
	}
}

func sqlLiteral(v types.Value) string {
	if v.Null {
		return "NULL"
	}
	switch v.Kind {
	case types.Text, types.Enum:
		return "'" + strings.ReplaceAll(v.Str.String(), "'", "''") + "'"
	case types.Date:
		return "DATE '" + types.DateToTime(v.Int64).Format("2006-01-02") + "'"
	default:
		return printValue(v)
	}
}
