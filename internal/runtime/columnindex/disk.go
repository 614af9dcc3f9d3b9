package columnindex

import (
	"encoding/binary"
	"fmt"
	"os"
	"sort"

	"golang.org/x/sys/unix"

	"adaptql/internal/runtime/bucket"
)

// Disk is a read-only column index backed by two persisted files: a
// key-ordered index file (sorted int64 keys plus per-key payload byte
// offsets) and a bucket payload file (each key's sorted int32 tuple ids,
// back to back). Both files are mmap'd read-only, per spec.md §6.4's
// "implementation-defined, provided GetBucket returns a bucket view with
// the same semantics as the memory variant" — persisting is a one-shot
// operation done by a prior query run via BuildDiskIndex, loading is a
// zero-copy-into-process mmap done here via golang.org/x/sys/unix.
//
// File layout (little-endian):
//
//	key file:     [uint32 numKeys][int64 keys...][uint64 offsets (numKeys+1)]
//	payload file: [int32 tuple ids, concatenated per key in key order]
type Disk struct {
	keys    []int64
	offsets []uint64 // len(keys)+1; offsets[i]..offsets[i+1] bounds key i's tuple ids, in int32 units.

	keyMmap     []byte
	payloadMmap []byte
}

// BuildDiskIndex persists an already-built, sorted (key, bucket) set to
// disk in the layout OpenDisk expects. keys must be sorted ascending and
// buckets[i] must already be sorted ascending (spec.md §3.2).
func BuildDiskIndex(keyPath, payloadPath string, keys []int64, buckets []bucket.Bucket) error {
	if len(keys) != len(buckets) {
		return fmt.Errorf("columnindex: keys/buckets length mismatch: %d vs %d", len(keys), len(buckets))
	}

	offsets := make([]uint64, len(keys)+1)
	var cursor uint64
	for i, b := range buckets {
		offsets[i] = cursor
		cursor += uint64(b.Size())
	}
	offsets[len(keys)] = cursor

	keyFile, err := os.Create(keyPath)
	if err != nil {
		return fmt.Errorf("columnindex: create key file: %w", err)
	}
	defer keyFile.Close()

	if err := binary.Write(keyFile, binary.LittleEndian, uint32(len(keys))); err != nil {
		return fmt.Errorf("columnindex: write key count: %w", err)
	}
	if err := binary.Write(keyFile, binary.LittleEndian, keys); err != nil {
		return fmt.Errorf("columnindex: write keys: %w", err)
	}
	if err := binary.Write(keyFile, binary.LittleEndian, offsets); err != nil {
		return fmt.Errorf("columnindex: write offsets: %w", err)
	}

	payloadFile, err := os.Create(payloadPath)
	if err != nil {
		return fmt.Errorf("columnindex: create payload file: %w", err)
	}
	defer payloadFile.Close()

	for _, b := range buckets {
		if err := binary.Write(payloadFile, binary.LittleEndian, b.Values()); err != nil {
			return fmt.Errorf("columnindex: write payload: %w", err)
		}
	}

	return nil
}

// OpenDisk mmaps keyPath and payloadPath read-only and parses the key/offset
// header eagerly (small; 16 bytes per distinct key).
func OpenDisk(keyPath, payloadPath string) (*Disk, error) {
	keyMmap, err := mmapFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("columnindex: mmap key file: %w", err)
	}
	payloadMmap, err := mmapFile(payloadPath)
	if err != nil {
		_ = unix.Munmap(keyMmap)
		return nil, fmt.Errorf("columnindex: mmap payload file: %w", err)
	}

	if len(keyMmap) < 4 {
		return nil, fmt.Errorf("columnindex: key file too small")
	}
	numKeys := int(binary.LittleEndian.Uint32(keyMmap))

	d := &Disk{
		keys:        make([]int64, numKeys),
		offsets:     make([]uint64, numKeys+1),
		keyMmap:     keyMmap,
		payloadMmap: payloadMmap,
	}

	pos := 4
	for i := 0; i < numKeys; i++ {
		d.keys[i] = int64(binary.LittleEndian.Uint64(keyMmap[pos:]))
		pos += 8
	}
	for i := 0; i <= numKeys; i++ {
		d.offsets[i] = binary.LittleEndian.Uint64(keyMmap[pos:])
		pos += 8
	}

	return d, nil
}

func mmapFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := int(info.Size())
	if size == 0 {
		return []byte{}, nil
	}

	return unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
}

// GetBucket returns a read-only bucket view over key's tuple ids, decoded
// out of the mmap'd payload region, or bucket.Empty if key is absent.
func (d *Disk) GetBucket(key int64) bucket.Bucket {
	i := sort.Search(len(d.keys), func(i int) bool { return d.keys[i] >= key })
	if i >= len(d.keys) || d.keys[i] != key {
		return bucket.Empty
	}

	start := d.offsets[i] * 4
	end := d.offsets[i+1] * 4
	raw := d.payloadMmap[start:end]

	values := make([]int32, len(raw)/4)
	for j := range values {
		values[j] = int32(binary.LittleEndian.Uint32(raw[j*4:]))
	}
	return bucket.FromSorted(values)
}

// Close unmaps both backing files.
func (d *Disk) Close() error {
	var firstErr error
	if d.keyMmap != nil {
		if err := unix.Munmap(d.keyMmap); err != nil {
			firstErr = err
		}
		d.keyMmap = nil
	}
	if d.payloadMmap != nil {
		if err := unix.Munmap(d.payloadMmap); err != nil && firstErr == nil {
			firstErr = err
		}
		d.payloadMmap = nil
	}
	return firstErr
}
