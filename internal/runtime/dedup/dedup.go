// Package dedup implements the tuple-idx dedup table from spec.md §3.6/§4.7:
// a set of fixed-length int32 arrays (one slot per joined base table), used
// to deduplicate join result tuples that different episodes — tried under
// different orders — may have rediscovered independently.
package dedup

import "encoding/binary"

// Table is a set of int32 tuples, each numTables long.
type Table struct {
	numTables int
	seen      map[string]struct{}
	size      int
}

// New constructs an empty dedup table for a join over numTables base
// tables.
func New(numTables int) *Table {
	return &Table{numTables: numTables, seen: make(map[string]struct{})}
}

// Insert records tuple (len(tuple) must equal numTables) and reports
// whether it was new. Output is emitted by the caller only when wasNew is
// true (spec.md §4.7).
func (t *Table) Insert(tuple []int32) (wasNew bool) {
	if len(tuple) != t.numTables {
		panic("dedup: tuple length does not match table arity")
	}
	key := encodeKey(tuple)
	if _, ok := t.seen[key]; ok {
		return false
	}
	t.seen[key] = struct{}{}
	t.size++
	return true
}

// Size returns the number of distinct tuples recorded so far. Per spec.md
// §8 property 2, this never decreases over the lifetime of a query.
func (t *Table) Size() int { return t.size }

// Iterate visits every distinct tuple. The slice passed to fn is reused
// between calls; fn must not retain it.
func (t *Table) Iterate(fn func(tuple []int32)) {
	buf := make([]int32, t.numTables)
	for key := range t.seen {
		decodeKey(key, buf)
		fn(buf)
	}
}

// Free releases the table's storage.
func (t *Table) Free() {
	t.seen = nil
	t.size = 0
}

func encodeKey(tuple []int32) string {
	buf := make([]byte, len(tuple)*4)
	for i, v := range tuple {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	return string(buf)
}

func decodeKey(key string, out []int32) {
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32([]byte(key[i*4 : i*4+4])))
	}
}
