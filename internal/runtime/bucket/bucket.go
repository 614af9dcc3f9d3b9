// Package bucket implements the column-index bucket and bucket-list
// primitives from spec.md §3.3/§4.4 (kushdb's runtime/column_index_bucket.cc
// and compile/proxy/vector.cc's BucketList use). A bucket is a sorted,
// ascending view over int32 tuple ids; a bucket list is a non-owning,
// growable array of such views.
//
// Buckets are built with github.com/RoaringBitmap/roaring (the same
// compact, sorted-integer-set structure ethdb/bitmapdb.go in the example
// pack uses for tuple-id sets): a Builder accumulates one key's tuple ids
// in a roaring bitmap, and Finish copies them out into the sorted []int32
// a Bucket holds, which gives the random-access view the handler ABI
// expects.
package bucket

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// Bucket is a read-only, sorted-ascending view over a set of tuple indices.
type Bucket struct {
	values []int32 // always ascending; materialized once from the bitmap.
}

// Empty is the canonical empty bucket, returned by a column index lookup
// for a key that was never inserted.
var Empty = Bucket{}

// Size returns the number of tuple ids in the bucket.
func (b Bucket) Size() int32 { return int32(len(b.values)) }

// Get returns the tuple id at position idx.
func (b Bucket) Get(idx int32) int32 { return b.values[idx] }

// Values exposes the underlying sorted slice without copying. Callers must
// treat it as read-only.
func (b Bucket) Values() []int32 { return b.values }

// FastForward returns the smallest index i such that b[i] >= prevTuple, or
// b.Size() if no such index exists (spec.md §8 property 4). It is a binary
// search, used at the start of every episode to resume a bucket scan
// without re-emitting already-processed tuples.
func FastForward(b Bucket, prevTuple int32) int32 {
	n := len(b.values)
	i := sort.Search(n, func(i int) bool { return b.values[i] >= prevTuple })
	return int32(i)
}

// Builder accumulates tuple indices for one key during column-index build
// (spec.md §4.3's "inserts always arrive in ascending tuple-idx order
// during build, so append-only suffices" — the roaring bitmap keeps them
// sorted regardless of insertion order, which is a strict relaxation of
// that invariant, not a violation of it).
type Builder struct {
	bm *roaring.Bitmap
}

func NewBuilder() *Builder {
	return &Builder{bm: roaring.New()}
}

func (bld *Builder) Add(tupleIdx int32) {
	bld.bm.Add(uint32(tupleIdx))
}

// Finish materializes the accumulated tuple ids into an immutable, sorted
// Bucket.
func (bld *Builder) Finish() Bucket {
	u32 := bld.bm.ToArray()
	values := make([]int32, len(u32))
	for i, v := range u32 {
		values[i] = int32(v)
	}
	return Bucket{values: values}
}

// FromSorted wraps an already-sorted-ascending slice as a Bucket without
// going through the roaring bitmap, for tests and for the disk column index
// (§R5), which reads a persisted sorted array directly.
func FromSorted(values []int32) Bucket {
	return Bucket{values: values}
}
