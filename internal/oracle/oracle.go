// Package oracle implements spec.md §8 testable property 1's "reference
// non-adaptive executor": given the engine's own output and an
// independently produced one, report whether their row multisets agree,
// with a tolerance for REAL columns matching kushdb's CHECK_EQ_TBL
// end-to-end comparator (spec.md E5's "1e-5 tolerance for REAL columns").
// Row order is explicitly not part of the comparison — spec.md §5 states
// adaptive emission order is nondeterministic across episodes, so every
// end-to-end scenario sorts before comparing.
package oracle

import (
	"fmt"
	"sort"
	"strings"

	"adaptql/internal/types"
)

// RealTolerance is the absolute difference under which two REAL values
// are considered equal, matching kushdb's CHECK_EQ_TBL default.
const RealTolerance = 1e-5

// Row is one output tuple, column order significant (matches it against
// the same position in the other side's rows).
type Row []types.Value

// CompareMultisets reports whether got and want contain the same rows as
// multisets (duplicates matter, order does not), per spec.md testable
// property 1. On mismatch it returns a human-readable diff summary as
// the error, not just a boolean, so a failing end-to-end test points
// directly at the discrepancy.
func CompareMultisets(got, want []Row) error {
	if len(got) != len(want) {
		return fmt.Errorf("oracle: row count mismatch: got %d rows, want %d", len(got), len(want))
	}

	gotSorted := sortedCopy(got)
	wantSorted := sortedCopy(want)

	used := make([]bool, len(wantSorted))
	var unmatched []Row
	for _, g := range gotSorted {
		matched := false
		for i, w := range wantSorted {
			if used[i] {
				continue
			}
			if rowsEqual(g, w) {
				used[i] = true
				matched = true
				break
			}
		}
		if !matched {
			unmatched = append(unmatched, g)
		}
	}

	if len(unmatched) == 0 {
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "oracle: %d row(s) present in actual output with no matching expected row:\n", len(unmatched))
	for _, r := range unmatched {
		fmt.Fprintf(&sb, "  %s\n", formatRow(r))
	}
	return fmt.Errorf("%s", sb.String())
}

func rowsEqual(a, b Row) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !valuesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b types.Value) bool {
	if a.Null != b.Null {
		return false
	}
	if a.Null {
		return true
	}
	if a.Kind == types.Real || b.Kind == types.Real {
		af, bf := asFloat(a), asFloat(b)
		diff := af - bf
		if diff < 0 {
			diff = -diff
		}
		return diff <= RealTolerance
	}
	eq, isNull := types.Equal(a, b)
	return !isNull && eq
}

func asFloat(v types.Value) float64 {
	if v.Kind == types.Real {
		return v.Float64
	}
	return float64(v.AsInt64())
}

func sortedCopy(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	sort.Slice(out, func(i, j int) bool { return formatRow(out[i]) < formatRow(out[j]) })
	return out
}

func formatRow(r Row) string {
	fields := make([]string, len(r))
	for i, v := range r {
		fields[i] = formatValue(v)
	}
	return strings.Join(fields, "|")
}

func formatValue(v types.Value) string {
	if v.Null {
		return "<null>"
	}
	switch v.Kind {
	case types.Text, types.Enum:
		return v.Str.String()
	case types.Real:
		return fmt.Sprintf("%.5f", v.Float64)
	default:
		return fmt.Sprintf("%d", v.AsInt64())
	}
}
