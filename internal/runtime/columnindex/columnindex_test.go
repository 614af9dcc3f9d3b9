package columnindex

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adaptql/internal/runtime/bucket"
)

func TestMemoryIndexInsertAndGetBucket(t *testing.T) {
	idx := NewMemory[int32]()
	idx.Insert(10, 0)
	idx.Insert(10, 3)
	idx.Insert(10, 7)
	idx.Insert(20, 1)
	idx.Build()

	b := idx.GetBucket(10)
	assert.Equal(t, []int32{0, 3, 7}, b.Values())

	assert.Equal(t, int32(0), idx.GetBucket(999).Size())
}

func TestMemoryTextIndex(t *testing.T) {
	idx := NewMemory[string]()
	idx.Insert("alice", 1)
	idx.Insert("bob", 2)
	idx.Insert("alice", 5)
	idx.Build()

	assert.Equal(t, []int32{1, 5}, idx.GetBucket("alice").Values())
	assert.Equal(t, []int32{2}, idx.GetBucket("bob").Values())
}

func TestDiskIndexRoundTrip(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "idx.keys")
	payloadPath := filepath.Join(dir, "idx.payload")

	keys := []int64{1, 5, 9}
	buckets := []bucket.Bucket{
		bucket.FromSorted([]int32{0, 2, 4}),
		bucket.FromSorted([]int32{1}),
		bucket.FromSorted([]int32{3, 6, 7, 8}),
	}

	require.NoError(t, BuildDiskIndex(keyPath, payloadPath, keys, buckets))

	d, err := OpenDisk(keyPath, payloadPath)
	require.NoError(t, err)
	defer d.Close()

	assert.Equal(t, []int32{0, 2, 4}, d.GetBucket(1).Values())
	assert.Equal(t, []int32{1}, d.GetBucket(5).Values())
	assert.Equal(t, []int32{3, 6, 7, 8}, d.GetBucket(9).Values())
	assert.Equal(t, int32(0), d.GetBucket(100).Size())
}
