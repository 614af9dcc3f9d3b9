package bucket

import "container/heap"

// List is a growable, non-owning array of Bucket views (spec.md §3.3). It
// does not take ownership of the underlying buckets — Bucket already owns
// its materialized slice independently.
type List struct {
	buckets []Bucket
}

func NewList() *List { return &List{} }

func (l *List) PushBack(b Bucket) { l.buckets = append(l.buckets, b) }
func (l *List) Size() int32       { return int32(len(l.buckets)) }
func (l *List) Get(i int32) Bucket { return l.buckets[i] }
func (l *List) Empty() bool       { return len(l.buckets) == 0 }

type heapItem struct {
	value    int32
	listIdx  int32
}

type minHeap []heapItem

func (h minHeap) Len() int            { return len(h) }
func (h minHeap) Less(i, j int) bool  { return h[i].value < h[j].value }
func (h minHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)         { *h = append(*h, x.(heapItem)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// SortedMerge emits, across a bucket list and a per-bucket cursor array
// (one entry per bucket, the index of the next unconsumed value in that
// bucket), up to len(result) values from the merge of all buckets in
// ascending order, advancing only the bucket each emitted value came from.
// This is spec.md §4.4's "sorted merge that emits the min at each step and
// advances only that bucket" — the form of sorted union the executor uses
// to probe many equality-predicate indexes in lock-step; set semantics
// (true intersection) are layered on top by the caller, by checking that a
// run of consecutive emitted values covers every bucket.
//
// cursors is mutated in place. Returns the number of values written into
// result.
func SortedMerge(l *List, cursors []int32, result []int32) int32 {
	if l.Empty() {
		return 0
	}

	h := make(minHeap, 0, len(l.buckets))
	for i, b := range l.buckets {
		if cursors[i] < b.Size() {
			h = append(h, heapItem{value: b.Get(cursors[i]), listIdx: int32(i)})
		}
	}
	heap.Init(&h)

	var n int32
	maxN := int32(len(result))
	for h.Len() > 0 && n < maxN {
		item := heap.Pop(&h).(heapItem)
		result[n] = item.value
		n++

		cursors[item.listIdx]++
		b := l.buckets[item.listIdx]
		if cursors[item.listIdx] < b.Size() {
			heap.Push(&h, heapItem{value: b.Get(cursors[item.listIdx]), listIdx: item.listIdx})
		}
	}
	return n
}

// NewCursors returns a zeroed cursor array sized for l, the initial state
// before any SortedMerge calls (or after fast-forwarding every bucket to
// its episode-resume position via FastForward).
func NewCursors(l *List) []int32 {
	return make([]int32, l.Size())
}

// Intersect computes the true sorted intersection of every bucket in l,
// the set-semantics layer spec.md §4.4 describes generated code building on
// top of the raw sorted merge: it galloping-advances each bucket's cursor
// to the current candidate value and only emits that value once every
// bucket's cursor lands on it.
func Intersect(l *List) []int32 {
	n := l.Size()
	if n == 0 {
		return nil
	}

	cursors := make([]int32, n)
	var result []int32

	for {
		var candidate int32 = -1
		exhausted := false
		for i := int32(0); i < n; i++ {
			b := l.Get(i)
			if cursors[i] >= b.Size() {
				exhausted = true
				break
			}
			v := b.Get(cursors[i])
			if v > candidate {
				candidate = v
			}
		}
		if exhausted {
			return result
		}

		allMatch := true
		for i := int32(0); i < n; i++ {
			b := l.Get(i)
			pos := cursors[i] + fastForwardFrom(b.Values()[cursors[i]:], candidate)
			cursors[i] = pos
			if pos >= b.Size() || b.Get(pos) != candidate {
				allMatch = false
			}
		}

		if allMatch {
			result = append(result, candidate)
			for i := int32(0); i < n; i++ {
				cursors[i]++
			}
		}
	}
}

func fastForwardFrom(values []int32, target int32) int32 {
	lo, hi := 0, len(values)
	for lo < hi {
		mid := (lo + hi) / 2
		if values[mid] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return int32(lo)
}
