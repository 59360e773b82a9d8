package ecs

import (
	"math"
	"strconv"
)

// Handle encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on release to invalidate stale refs.
// Generations start at 1, so the zero Handle is never valid.
type Handle uint64

// Null is the handle that never refers to anything.
const Null Handle = 0

func NewHandle(index uint32, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) Index() uint32      { return uint32(h) }
func (h Handle) Generation() uint32 { return uint32(h >> 32) }
func (h Handle) IsNull() bool       { return h.Generation() == 0 }

func (h Handle) String() string {
	return strconv.FormatUint(uint64(h.Index()), 10) + ":" + strconv.FormatUint(uint64(h.Generation()), 10)
}

// HandleTable allocates generational handles with a free list of released indices.
type HandleTable struct {
	generations []uint32
	freeList    []uint32
	live        int
}

func NewHandleTable() *HandleTable {
	return &HandleTable{
		generations: make([]uint32, 0, 256),
		freeList:    make([]uint32, 0, 64),
	}
}

// Create returns a fresh handle, reusing the most recently released index.
func (t *HandleTable) Create() Handle {
	t.live++
	if n := len(t.freeList); n > 0 {
		idx := t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		return NewHandle(idx, t.generations[idx])
	}
	idx := uint32(len(t.generations))
	t.generations = append(t.generations, 1)
	return NewHandle(idx, 1)
}

// Valid reports whether h is the live handle stored at its index.
func (t *HandleTable) Valid(h Handle) bool {
	idx := h.Index()
	if int(idx) >= len(t.generations) || h.IsNull() {
		return false
	}
	return t.generations[idx] == h.Generation()
}

// Release invalidates h. An index whose generation is exhausted is retired
// instead of recycled so a wrapped generation can never alias an old handle.
func (t *HandleTable) Release(h Handle) bool {
	if !t.Valid(h) {
		return false
	}
	idx := h.Index()
	t.live--
	if t.generations[idx] == math.MaxUint32 {
		t.generations[idx] = 0
		return true
	}
	t.generations[idx]++
	t.freeList = append(t.freeList, idx)
	return true
}

// Len returns the number of live handles.
func (t *HandleTable) Len() int { return t.live }
