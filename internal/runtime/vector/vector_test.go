package vector

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func putInt32(b []byte, v int32) { binary.LittleEndian.PutUint32(b, uint32(v)) }
func getInt32(b []byte) int32    { return int32(binary.LittleEndian.Uint32(b)) }

func TestPushBackGrowsAndPreservesContent(t *testing.T) {
	v := Create(4, 1)
	for i := int32(0); i < 100; i++ {
		putInt32(v.PushBack(), i)
	}
	require.Equal(t, 100, v.Size())
	for i := int32(0); i < 100; i++ {
		assert.Equal(t, i, getInt32(v.Get(int(i))))
	}
}

func TestSortOrdersByComparator(t *testing.T) {
	v := Create(4, 4)
	for _, x := range []int32{5, 3, 8, 1, 9, 2} {
		putInt32(v.PushBack(), x)
	}

	v.Sort(func(a, b []byte) bool { return getInt32(a) < getInt32(b) })

	var prev int32 = -1 << 31
	for i := 0; i < v.Size(); i++ {
		cur := getInt32(v.Get(i))
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestFreeResetsSize(t *testing.T) {
	v := Create(4, 1)
	v.PushBack()
	v.Free()
	assert.Equal(t, 0, v.Size())
}
