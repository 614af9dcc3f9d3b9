// Package hashtable implements the aggregate hash table described in
// spec.md §3.5/§4.2 (kushdb's compile/proxy/aggregate_hash_table.cc +
// runtime/aggregate_hash_table.cc): an open-addressed map from a 32-bit hash
// to a variable-size, caller-defined "payload" — grouping key bytes
// followed by per-aggregator accumulator state — stored in contiguous
// 256-KiB blocks rather than one-malloc-per-row.
//
// Per spec.md §9's "arena-with-indices" design note, no raw pointer into a
// block ever escapes the table's API surface: a payload is always handed
// out as a Go byte slice that aliases the owning block, and is only ever
// addressed internally by (blockIdx, blockOffset).
package hashtable

import (
	"encoding/binary"

	"github.com/c2h5oh/datasize"
)

// blockSize is the 256-KiB payload arena page size (spec.md §3.5). Using
// c2h5oh/datasize here instead of a bare integer constant follows the same
// idiom ethdb/bitmapdb.ShardLimit uses for its own block-size constant.
var blockSize = int(256 * datasize.KB)

const initialCapacity = 1024

// resizeLoadFactor is the size/capacity ratio past which Resize is called,
// per spec.md §4.2 ("≈0.5 recommended").
const resizeLoadFactor = 0.5

type entry struct {
	salt        uint16
	blockOffset uint16
	blockIdx    int32 // 0 means empty; real payloads start at block 1.
}

// AggregateHashTable is the hash table described above. The zero value is
// not usable; construct with New.
type AggregateHashTable struct {
	payloadSize int
	hashOffset  int // byte offset within a payload of its stored hash field.

	entries []entry
	mask    uint32
	size    int

	blocks     [][]byte // blocks[0] is reserved/unused.
	lastOffset int       // write cursor within the top (last) block.
}

// New constructs a table whose payloads are payloadSize bytes, with a
// 4-byte int32 hash field at byte offset hashOffset within each payload.
func New(payloadSize, hashOffset int) *AggregateHashTable {
	if payloadSize < hashOffset+4 {
		panic("hashtable: payload too small to hold its own hash field")
	}
	ht := &AggregateHashTable{
		payloadSize: payloadSize,
		hashOffset:  hashOffset,
		entries:     make([]entry, initialCapacity),
		mask:        uint32(initialCapacity - 1),
		blocks:      [][]byte{nil},
	}
	ht.allocateBlock()
	return ht
}

func (ht *AggregateHashTable) allocateBlock() {
	ht.blocks = append(ht.blocks, make([]byte, blockSize))
	ht.lastOffset = 0
}

// payload returns the byte slice for a live (blockIdx, blockOffset) pair.
func (ht *AggregateHashTable) payload(blockIdx int32, blockOffset uint16) []byte {
	b := ht.blocks[blockIdx]
	return b[blockOffset : int(blockOffset)+ht.payloadSize]
}

func salt16(hash int32) uint16 { return uint16(uint32(hash) >> 16) }

// InsertOrUpdate probes for an entry whose salt matches hash's high bits
// and whose payload keyEq reports as a match. If found, it returns that
// payload and false. Otherwise it allocates a new payload at the current
// write cursor (advancing to a new block first if it would overflow the
// current one), stamps the hash into the payload's reserved hash field,
// installs a new entry, resizes if the load factor threshold is now
// exceeded, and returns the new payload and true.
func (ht *AggregateHashTable) InsertOrUpdate(hash int32, keyEq func(payload []byte) bool) (payload []byte, isNew bool) {
	salt := salt16(hash)
	idx := uint32(hash) & ht.mask
	for {
		e := &ht.entries[idx]
		if e.blockIdx == 0 {
			break
		}
		if e.salt == salt {
			p := ht.payload(e.blockIdx, e.blockOffset)
			if keyEq(p) {
				return p, false
			}
		}
		idx = (idx + 1) & ht.mask
	}

	if ht.lastOffset+ht.payloadSize > blockSize {
		ht.allocateBlock()
	}
	blockIdx := int32(len(ht.blocks) - 1)
	blockOffset := uint16(ht.lastOffset)
	ht.lastOffset += ht.payloadSize

	p := ht.payload(blockIdx, blockOffset)
	for i := range p {
		p[i] = 0
	}
	binary.LittleEndian.PutUint32(p[ht.hashOffset:], uint32(hash))

	probe := uint32(hash) & ht.mask
	for ht.entries[probe].blockIdx != 0 {
		probe = (probe + 1) & ht.mask
	}
	ht.entries[probe] = entry{salt: salt, blockOffset: blockOffset, blockIdx: blockIdx}
	ht.size++

	if float64(ht.size)/float64(len(ht.entries)) > resizeLoadFactor {
		ht.Resize()
	}

	return p, true
}

// Resize doubles the entries table's capacity and rehashes every live
// payload from the blocks into it. Payload storage itself is untouched, so
// any payload slice obtained before Resize remains valid after it.
func (ht *AggregateHashTable) Resize() {
	newCapacity := len(ht.entries) * 2
	newMask := uint32(newCapacity - 1)
	newEntries := make([]entry, newCapacity)

	ht.Iterate(func(blockIdx int32, blockOffset uint16, p []byte) {
		hash := int32(binary.LittleEndian.Uint32(p[ht.hashOffset:]))
		salt := salt16(hash)
		idx := uint32(hash) & newMask
		for newEntries[idx].blockIdx != 0 {
			idx = (idx + 1) & newMask
		}
		newEntries[idx] = entry{salt: salt, blockOffset: blockOffset, blockIdx: blockIdx}
	})

	ht.entries = newEntries
	ht.mask = newMask
}

// Iterate visits every live payload in block/offset order, along with the
// (blockIdx, blockOffset) pair addressing it.
func (ht *AggregateHashTable) Iterate(fn func(blockIdx int32, blockOffset uint16, payload []byte)) {
	for blockIdx := 1; blockIdx < len(ht.blocks); blockIdx++ {
		end := blockSize
		if blockIdx == len(ht.blocks)-1 {
			end = ht.lastOffset
		}
		for offset := 0; offset+ht.payloadSize <= end; offset += ht.payloadSize {
			fn(int32(blockIdx), uint16(offset), ht.payload(int32(blockIdx), uint16(offset)))
		}
	}
}

// Size returns the number of live payloads.
func (ht *AggregateHashTable) Size() int { return ht.size }

// Free releases the table's storage.
func (ht *AggregateHashTable) Free() {
	ht.entries = nil
	ht.blocks = nil
	ht.size = 0
}
