// Package types provides the owned, three-valued SQL scalar representation
// shared by every runtime primitive and every generated handler. It mirrors
// the kushdb runtime's value proxies (runtime/string.cc, compile/proxy/value)
// as plain Go values: a SQL value is always paired with a null flag, and
// operations over them never panic on a null operand, since predicates are
// expected to have already been guarded by a three-valued AND/OR above them.
package types

import "fmt"

// Kind identifies one of the SQL scalar types supported by the engine.
type Kind uint8

const (
	Boolean Kind = iota
	SmallInt
	Int
	BigInt
	Real
	Date
	Text
	Enum
)

func (k Kind) String() string {
	switch k {
	case Boolean:
		return "BOOLEAN"
	case SmallInt:
		return "SMALLINT"
	case Int:
		return "INT"
	case BigInt:
		return "BIGINT"
	case Real:
		return "REAL"
	case Date:
		return "DATE"
	case Text:
		return "TEXT"
	case Enum:
		return "ENUM"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is a single SQL scalar, tagged with its Kind and null flag. Exactly
// one of the typed fields is meaningful, selected by Kind; Str holds the
// TEXT payload and also backs the resolved ENUM display string.
type Value struct {
	Kind    Kind
	Null    bool
	Bool    bool
	Int16   int16
	Int32   int32
	Int64   int64
	Float64 float64
	// EnumID and EnumNamespace are populated when Kind == Enum; Str is left
	// empty until resolved via an EnumRegistry (see enum.go).
	EnumID        int32
	EnumNamespace int32
	Str           String
}

// NullValue returns a null value of the given kind.
func NullValue(k Kind) Value { return Value{Kind: k, Null: true} }

func BoolValue(b bool) Value      { return Value{Kind: Boolean, Bool: b} }
func SmallIntValue(v int16) Value { return Value{Kind: SmallInt, Int16: v} }
func IntValue(v int32) Value      { return Value{Kind: Int, Int32: v} }
func BigIntValue(v int64) Value   { return Value{Kind: BigInt, Int64: v} }
func RealValue(v float64) Value   { return Value{Kind: Real, Float64: v} }
func DateValue(unixMillis int64) Value {
	return Value{Kind: Date, Int64: unixMillis}
}
func TextValue(s string) Value {
	return Value{Kind: Text, Str: NewString(s)}
}
func EnumValue(namespace int32, id int32) Value {
	return Value{Kind: Enum, EnumNamespace: namespace, EnumID: id}
}

// AsInt64 widens any integral (SMALLINT/INT/BIGINT/DATE) or boolean value to
// an int64, for use by hash/key-construction code that treats all integral
// SQL types uniformly. Panics if v is not integral — callers are expected to
// have already dispatched on Kind.
func (v Value) AsInt64() int64 {
	switch v.Kind {
	case Boolean:
		if v.Bool {
			return 1
		}
		return 0
	case SmallInt:
		return int64(v.Int16)
	case Int:
		return int64(v.Int32)
	case BigInt, Date:
		return v.Int64
	default:
		panic(fmt.Sprintf("AsInt64: not an integral kind: %v", v.Kind))
	}
}

// Equal implements three-valued equality: returns (result, isNull). A
// comparison against a null operand is unknown, not false.
func Equal(a, b Value) (bool, bool) {
	if a.Null || b.Null {
		return false, true
	}
	switch a.Kind {
	case Boolean:
		return a.Bool == b.Bool, false
	case SmallInt:
		return a.Int16 == b.Int16, false
	case Int:
		return a.Int32 == b.Int32, false
	case BigInt, Date:
		return a.Int64 == b.Int64, false
	case Real:
		return a.Float64 == b.Float64, false
	case Text:
		return Equals(&a.Str, &b.Str), false
	case Enum:
		return a.EnumNamespace == b.EnumNamespace && a.EnumID == b.EnumID, false
	default:
		panic(fmt.Sprintf("Equal: unsupported kind %v", a.Kind))
	}
}

// LessThan implements three-valued '<'; see Equal for the null convention.
func LessThan(a, b Value) (bool, bool) {
	if a.Null || b.Null {
		return false, true
	}
	switch a.Kind {
	case SmallInt:
		return a.Int16 < b.Int16, false
	case Int:
		return a.Int32 < b.Int32, false
	case BigInt, Date:
		return a.Int64 < b.Int64, false
	case Real:
		return a.Float64 < b.Float64, false
	case Text:
		return LessThanStr(&a.Str, &b.Str), false
	default:
		panic(fmt.Sprintf("LessThan: unsupported kind %v", a.Kind))
	}
}

// Hash32 returns a 32-bit hash of v suitable as an AggregateHashTable or
// column-index key hash. Integral kinds hash their widened int64 value.
// It hashes one value; callers hashing a composite key (e.g. a GROUP BY
// over several columns) fold the per-column results together themselves.
func Hash32(v Value) int32 {
	if v.Null {
		return 0
	}
	switch v.Kind {
	case Boolean:
		if v.Bool {
			return 1
		}
		return 0
	case Real:
		return hash64To32(int64(v.Float64))
	case Text:
		return int32(Hash(&v.Str))
	case Enum:
		h := hash64To32(int64(v.EnumNamespace))
		HashCombine(&h, int64(v.EnumID))
		return h
	default:
		return hash64To32(v.AsInt64())
	}
}

func hash64To32(v int64) int32 {
	h := int32(v)
	HashCombine(&h, v>>32)
	return h
}

// HashCombine folds v into *hash using the same mixing constant kushdb's
// runtime/hash_table.cc uses for composite join/group-by keys.
func HashCombine(hash *int32, v int64) {
	*hash ^= int32(v) + int32(-0x61c88647) + (*hash << 6) + (*hash >> 2) // 0x9e3779b9 as int32
}
