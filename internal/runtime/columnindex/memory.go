// Package columnindex implements the two column-index variants from
// spec.md §3.2/§4.3: a memory index (kushdb's runtime/memory_column_index.cc)
// built in-process during a scan, and a disk index (compile/proxy/
// disk_column_index.cc) that is an mmap-backed read-only view over a
// previously persisted index.
//
// Both map a typed key to a Bucket (internal/runtime/bucket): a sorted,
// ascending sequence of tuple indices. Nulls are never indexed — callers
// are expected to have filtered them before calling Insert, exactly as
// spec.md §3.2 requires.
package columnindex

import "adaptql/internal/runtime/bucket"

// Memory is a generic in-memory column index over any comparable key type
// K, replacing kushdb's eight per-type CreateXIndex/InsertXIndex/
// GetBucketXIndex entry points with one monomorphic-per-instantiation Go
// generic type; each SQL type still gets its own concrete index (see the
// type aliases below), matching the "templated per-type code" the DESIGN
// NOTES call for keeping behind a small dispatch surface.
type Memory[K comparable] struct {
	builders map[K]*bucket.Builder
	buckets  map[K]bucket.Bucket
	built    bool
}

// NewMemory constructs an empty, buildable column index.
func NewMemory[K comparable]() *Memory[K] {
	return &Memory[K]{builders: make(map[K]*bucket.Builder)}
}

// Insert appends tupleIdx to key's bucket. Insert must not be called after
// Build.
func (m *Memory[K]) Insert(key K, tupleIdx int32) {
	if m.built {
		panic("columnindex: Insert called after Build")
	}
	b, ok := m.builders[key]
	if !ok {
		b = bucket.NewBuilder()
		m.builders[key] = b
	}
	b.Add(tupleIdx)
}

// Build finalizes every key's bucket. GetBucket may only be called after
// Build.
func (m *Memory[K]) Build() {
	m.buckets = make(map[K]bucket.Bucket, len(m.builders))
	for k, b := range m.builders {
		m.buckets[k] = b.Finish()
	}
	m.builders = nil
	m.built = true
}

// GetBucket returns the bucket view for key, or bucket.Empty if key was
// never inserted.
func (m *Memory[K]) GetBucket(key K) bucket.Bucket {
	if !m.built {
		panic("columnindex: GetBucket called before Build")
	}
	if b, ok := m.buckets[key]; ok {
		return b
	}
	return bucket.Empty
}

// KeyCount returns the number of distinct keys in the index.
func (m *Memory[K]) KeyCount() int {
	if m.built {
		return len(m.buckets)
	}
	return len(m.builders)
}

// Free releases the index's storage.
func (m *Memory[K]) Free() {
	m.builders = nil
	m.buckets = nil
}

// Per-SQL-type variants (spec.md §3.2). SMALLINT and INT keep their own
// int16/int32 key width; BIGINT, DATE and ENUM share the int64 key (DATE
// and BIGINT already are one; ENUM keys combine namespace and id via
// types.HashCombine before indexing, done by the translator, not here).
type (
	BooleanIndex  = Memory[bool]
	SmallIntIndex = Memory[int16]
	IntIndex      = Memory[int32]
	BigIntIndex   = Memory[int64]
	RealIndex     = Memory[float64]
	// TextIndex keys on the Go string content of an owned types.String;
	// types.String.String() is a cheap alias-free conversion since the
	// index owns its own copy of the key once inserted as a map key.
	TextIndex = Memory[string]
)
