package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsertReportsNewOnlyOnce(t *testing.T) {
	tbl := New(3)

	assert.True(t, tbl.Insert([]int32{1, 2, 3}))
	assert.False(t, tbl.Insert([]int32{1, 2, 3}))
	assert.True(t, tbl.Insert([]int32{1, 2, 4}))

	assert.Equal(t, 2, tbl.Size())
}

func TestSizeNeverDecreases(t *testing.T) {
	tbl := New(2)
	prev := 0
	inputs := [][]int32{{0, 0}, {0, 1}, {0, 0}, {1, 0}, {0, 1}, {2, 2}}
	for _, in := range inputs {
		tbl.Insert(in)
		assert.GreaterOrEqual(t, tbl.Size(), prev)
		prev = tbl.Size()
	}
	assert.Equal(t, 4, tbl.Size())
}

func TestIterateVisitsEveryDistinctTuple(t *testing.T) {
	tbl := New(2)
	want := map[[2]int32]bool{
		{0, 0}: true, {0, 1}: true, {5, 5}: true,
	}
	for k := range want {
		tbl.Insert(k[:])
	}

	got := map[[2]int32]bool{}
	tbl.Iterate(func(tuple []int32) {
		got[[2]int32{tuple[0], tuple[1]}] = true
	})
	assert.Equal(t, want, got)
}
