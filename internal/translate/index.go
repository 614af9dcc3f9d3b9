package translate

import (
	"adaptql/internal/runtime/bucket"
	"adaptql/internal/runtime/columnindex"
	"adaptql/internal/table"
	"adaptql/internal/types"
)

// EqualityIndex is a built column index over one column, addressed by
// types.Value rather than by the concrete Go key type, so a join or
// scan-select translator can pick an index strategy without a type
// switch at every lookup site. BuildIndex below is the only constructor;
// it dispatches to the concrete columnindex.Memory[K] variant matching
// the column's Kind, matching spec.md §3.2's per-type index family.
type EqualityIndex interface {
	GetBucket(v types.Value) bucket.Bucket
}

type booleanIndex struct{ m *columnindex.BooleanIndex }

func (i booleanIndex) GetBucket(v types.Value) bucket.Bucket { return i.m.GetBucket(v.Bool) }

type smallIntIndex struct{ m *columnindex.SmallIntIndex }

func (i smallIntIndex) GetBucket(v types.Value) bucket.Bucket { return i.m.GetBucket(v.Int16) }

type intIndex struct{ m *columnindex.IntIndex }

func (i intIndex) GetBucket(v types.Value) bucket.Bucket { return i.m.GetBucket(v.Int32) }

// bigIntIndex also serves DATE and ENUM keys, which widen to int64
// before indexing (spec.md §3.2).
type bigIntIndex struct{ m *columnindex.BigIntIndex }

func (i bigIntIndex) GetBucket(v types.Value) bucket.Bucket { return i.m.GetBucket(enumOrIntKey(v)) }

type realIndex struct{ m *columnindex.RealIndex }

func (i realIndex) GetBucket(v types.Value) bucket.Bucket { return i.m.GetBucket(v.Float64) }

type textIndex struct{ m *columnindex.TextIndex }

func (i textIndex) GetBucket(v types.Value) bucket.Bucket { return i.m.GetBucket(v.Str.String()) }

// enumOrIntKey widens an integral/DATE value to int64 directly, or folds
// an ENUM's (namespace, id) pair into one int64 key via HashCombine so
// distinct enum namespaces never collide in a shared BIGINT-keyed index.
func enumOrIntKey(v types.Value) int64 {
	if v.Kind == types.Enum {
		h := int32(v.EnumNamespace)
		types.HashCombine(&h, int64(v.EnumID))
		return int64(h)<<32 | int64(uint32(v.EnumID))
	}
	return v.AsInt64()
}

// BuildIndex builds an equality index over col, skipping NULLs (spec.md
// §3.2: nulls are never indexed since NULL never equals anything,
// including another NULL, under SQL equality). card is the column's
// cardinality.
func BuildIndex(col *table.Column, card int32) EqualityIndex {
	switch col.Kind {
	case types.Boolean:
		m := columnindex.NewMemory[bool]()
		for i := int32(0); i < card; i++ {
			if !col.IsNull(i) {
				m.Insert(col.Bool(i), i)
			}
		}
		m.Build()
		return booleanIndex{m}
	case types.SmallInt:
		m := columnindex.NewMemory[int16]()
		for i := int32(0); i < card; i++ {
			if !col.IsNull(i) {
				m.Insert(col.SmallInt(i), i)
			}
		}
		m.Build()
		return smallIntIndex{m}
	case types.Int:
		m := columnindex.NewMemory[int32]()
		for i := int32(0); i < card; i++ {
			if !col.IsNull(i) {
				m.Insert(col.Int(i), i)
			}
		}
		m.Build()
		return intIndex{m}
	case types.BigInt, types.Date:
		m := columnindex.NewMemory[int64]()
		for i := int32(0); i < card; i++ {
			if !col.IsNull(i) {
				m.Insert(col.BigInt(i), i)
			}
		}
		m.Build()
		return bigIntIndex{m}
	case types.Real:
		m := columnindex.NewMemory[float64]()
		for i := int32(0); i < card; i++ {
			if !col.IsNull(i) {
				m.Insert(col.Real(i), i)
			}
		}
		m.Build()
		return realIndex{m}
	case types.Text:
		m := columnindex.NewMemory[string]()
		for i := int32(0); i < card; i++ {
			if !col.IsNull(i) {
				m.Insert(col.Text(i).String(), i)
			}
		}
		m.Build()
		return textIndex{m}
	case types.Enum:
		m := columnindex.NewMemory[int64]()
		for i := int32(0); i < card; i++ {
			if !col.IsNull(i) {
				m.Insert(enumOrIntKey(col.Value(i)), i)
			}
		}
		m.Build()
		return bigIntIndex{m}
	default:
		panic("translate: unsupported column kind for index build")
	}
}
