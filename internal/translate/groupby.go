package translate

import (
	"encoding/binary"
	"math"

	"adaptql/internal/executor"
	"adaptql/internal/plan/expression"
	"adaptql/internal/plan/operator"
	"adaptql/internal/runtime/hashtable"
	"adaptql/internal/types"
)

// groupKeyWindow bounds a composite group key to a fixed-size payload
// window rather than a side table keyed by (blockIdx, blockOffset);
// spec.md leaves GROUP BY key width unbounded. Encoded composite keys
// longer than this window are truncated to it, so two keys that agree on
// their first groupKeyWindow bytes fall into the same group.
const groupKeyWindow = 56

// groupHashSize is the leading hash field InsertOrUpdate/Resize stamp
// into every payload; the group key bytes start right after it so
// Resize's rehash never reads back key bytes as a hash.
const groupHashSize = 4
const groupHeaderSize = groupHashSize + groupKeyWindow

// CompileGroupByAggregate lowers GROUP BY/aggregate (spec.md's R3): the
// child is materialized (its expressions are bound to real columns, so a
// row-streaming context cannot evaluate them), then every row is folded
// into an AggregateHashTable keyed by the group key, accumulating
// SUM/COUNT/MIN/MAX/AVG per group in a fixed float64 slot per aggregate.
func CompileGroupByAggregate(g *operator.GroupByAggregate, qs *executor.QueryState, opts Options, consume Consume) error {
	rows, err := collectRows(g.Child, qs, opts)
	if err != nil {
		return err
	}
	src := materializeRows("groupby.child", rows)
	ctx := newContext(src)

	// AVG needs its own count-of-non-null-inputs slot alongside the shared
	// running-sum slot every aggregate gets; avgCountOffsets[a] is -1 for
	// every non-AVG aggregate.
	mainSlots := 8 * len(g.Aggregates)
	avgCountOffsets := make([]int, len(g.Aggregates))
	avgExtra := 0
	for a, agg := range g.Aggregates {
		if agg.Func == operator.AggAvg {
			avgCountOffsets[a] = groupHeaderSize + mainSlots + avgExtra
			avgExtra += 8
		} else {
			avgCountOffsets[a] = -1
		}
	}

	payloadSize := groupHeaderSize + mainSlots + avgExtra
	ht := hashtable.New(payloadSize, 0)
	defer ht.Free()

	var groupKeyValues [][]types.Value
	var groupPayloads [][]byte

	card := src.Cardinality()
	for i := int32(0); i < card; i++ {
		ctx.Idx[0] = i

		keyVals := make([]types.Value, len(g.GroupKeys))
		for k, e := range g.GroupKeys {
			keyVals[k] = e.Eval(ctx)
		}
		hash := compositeHash(keyVals)
		keyBytes := encodeGroupKey(keyVals)

		payload, isNew := ht.InsertOrUpdate(hash, func(p []byte) bool {
			return string(p[groupHashSize:groupHeaderSize]) == string(keyBytes)
		})
		if isNew {
			copy(payload[groupHashSize:groupHeaderSize], keyBytes)
			groupKeyValues = append(groupKeyValues, keyVals)
			groupPayloads = append(groupPayloads, payload)
			for a, agg := range g.Aggregates {
				off := groupHeaderSize + 8*a
				switch agg.Func {
				case operator.AggMin:
					binary.LittleEndian.PutUint64(payload[off:], math.Float64bits(math.Inf(1)))
				case operator.AggMax:
					binary.LittleEndian.PutUint64(payload[off:], math.Float64bits(math.Inf(-1)))
				}
			}
		}

		for a, agg := range g.Aggregates {
			off := groupHeaderSize + 8*a
			accumulate(payload, off, avgCountOffsets[a], agg, ctx)
		}
	}

	for gi, keyVals := range groupKeyValues {
		payload := groupPayloads[gi]
		outRow := make(Row, 0, len(keyVals)+len(g.Aggregates))
		outRow = append(outRow, keyVals...)
		for a, agg := range g.Aggregates {
			off := groupHeaderSize + 8*a
			acc := math.Float64frombits(binary.LittleEndian.Uint64(payload[off : off+8]))
			var avgCount float64
			if co := avgCountOffsets[a]; co >= 0 {
				avgCount = math.Float64frombits(binary.LittleEndian.Uint64(payload[co : co+8]))
			}
			outRow = append(outRow, finalizeAggregate(agg, acc, avgCount))
		}
		if err := consume(outRow); err != nil {
			return err
		}
	}
	return nil
}

// accumulate folds the tuple currently bound in ctx into an aggregate's
// slots within payload. COUNT(*) (agg.Expr == nil) counts unconditionally;
// COUNT(expr) and SUM/AVG/MIN/MAX all skip a NULL evaluation of expr. AVG
// additionally bumps its own count-of-non-null-inputs slot at avgCountOff
// so finalizeAggregate can divide by the right denominator.
func accumulate(payload []byte, off, avgCountOff int, agg operator.Aggregate, ctx *expression.Context) {
	slot := payload[off : off+8]

	if agg.Func == operator.AggCount {
		if agg.Expr != nil {
			if agg.Expr.Eval(ctx).Null {
				return
			}
		}
		cur := math.Float64frombits(binary.LittleEndian.Uint64(slot))
		cur++
		binary.LittleEndian.PutUint64(slot, math.Float64bits(cur))
		return
	}

	v := agg.Expr.Eval(ctx)
	if v.Null {
		return
	}
	n := asNumeric(v)
	cur := math.Float64frombits(binary.LittleEndian.Uint64(slot))
	switch agg.Func {
	case operator.AggSum, operator.AggAvg:
		cur += n
	case operator.AggMin:
		if n < cur {
			cur = n
		}
	case operator.AggMax:
		if n > cur {
			cur = n
		}
	}
	binary.LittleEndian.PutUint64(slot, math.Float64bits(cur))

	if agg.Func == operator.AggAvg {
		countSlot := payload[avgCountOff : avgCountOff+8]
		count := math.Float64frombits(binary.LittleEndian.Uint64(countSlot))
		count++
		binary.LittleEndian.PutUint64(countSlot, math.Float64bits(count))
	}
}

// finalizeAggregate converts an accumulator slot (and, for AVG, its paired
// count-of-non-null-inputs slot) into its output value. AVG over a group
// with no non-null inputs yields SQL NULL rather than dividing by zero.
func finalizeAggregate(agg operator.Aggregate, acc, avgCount float64) types.Value {
	switch agg.Func {
	case operator.AggCount:
		return types.BigIntValue(int64(acc))
	case operator.AggAvg:
		if avgCount == 0 {
			return types.NullValue(types.Real)
		}
		return types.RealValue(acc / avgCount)
	default:
		return types.RealValue(acc)
	}
}

func asNumeric(v types.Value) float64 {
	if v.Kind == types.Real {
		return v.Float64
	}
	return float64(v.AsInt64())
}

func compositeHash(vals []types.Value) int32 {
	var h int32
	for _, v := range vals {
		h = (h << 1) ^ types.Hash32(v)
	}
	return h
}

func encodeGroupKey(vals []types.Value) []byte {
	buf := make([]byte, 0, groupKeyWindow)
	for _, v := range vals {
		buf = append(buf, valueKeyBytes(v)...)
	}
	if len(buf) > groupKeyWindow {
		buf = buf[:groupKeyWindow]
	}
	out := make([]byte, groupKeyWindow)
	copy(out, buf)
	return out
}

func valueKeyBytes(v types.Value) []byte {
	if v.Null {
		return []byte{0}
	}
	switch v.Kind {
	case types.Text, types.Enum:
		return []byte(v.Str.String())
	default:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(v.AsInt64()))
		return b[:]
	}
}
