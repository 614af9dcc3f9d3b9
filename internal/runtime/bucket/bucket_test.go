package bucket

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestFastForwardLaw is spec.md §8 property 4, verbatim: bucket
// {0,4,5,8,9} queried at every value from -infinity to 11.
func TestFastForwardLaw(t *testing.T) {
	b := FromSorted([]int32{0, 4, 5, 8, 9})

	cases := []struct {
		prev int32
		want int32
	}{
		{math.MinInt32, 0},
		{-1, 0},
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 1},
		{4, 1},
		{5, 2},
		{6, 3},
		{7, 3},
		{8, 3},
		{9, 4},
		{10, 5},
		{11, 5},
	}

	for _, tc := range cases {
		got := FastForward(b, tc.prev)
		assert.Equal(t, tc.want, got, "FastForward(prev=%d)", tc.prev)
	}
}

func TestFastForwardEmptyBucket(t *testing.T) {
	b := Empty
	assert.Equal(t, int32(0), FastForward(b, 5))
}

func TestBuilderProducesSortedBucket(t *testing.T) {
	bld := NewBuilder()
	for _, v := range []int32{9, 1, 4, 1, 8, 0, 5} {
		bld.Add(v)
	}
	b := bld.Finish()

	want := []int32{0, 1, 4, 5, 8, 9} // roaring dedups repeated adds
	assert.Equal(t, want, b.Values())
}

func TestIntersectionOfSingletons(t *testing.T) {
	l := NewList()
	l.PushBack(FromSorted([]int32{7}))
	l.PushBack(FromSorted([]int32{7}))
	l.PushBack(FromSorted([]int32{7}))

	got := Intersect(l)
	assert.Equal(t, []int32{7}, got)

	l2 := NewList()
	l2.PushBack(FromSorted([]int32{7}))
	l2.PushBack(FromSorted([]int32{8}))
	assert.Empty(t, Intersect(l2))
}

func TestIntersectionOfMultipleBuckets(t *testing.T) {
	l := NewList()
	l.PushBack(FromSorted([]int32{1, 2, 3, 5, 8, 13}))
	l.PushBack(FromSorted([]int32{2, 3, 5, 7, 11, 13}))
	l.PushBack(FromSorted([]int32{0, 3, 5, 13, 21}))

	got := Intersect(l)
	assert.Equal(t, []int32{3, 5, 13}, got)
}

func TestSortedMergeEmitsAscendingAcrossBuckets(t *testing.T) {
	l := NewList()
	l.PushBack(FromSorted([]int32{1, 4, 9}))
	l.PushBack(FromSorted([]int32{2, 3, 10}))

	cursors := NewCursors(l)
	result := make([]int32, 10)
	n := SortedMerge(l, cursors, result)

	require := assert.New(t)
	require.Equal(int32(6), n)
	want := []int32{1, 2, 3, 4, 9, 10}
	require.Equal(want, result[:n])
}
