package ecs

import "go.uber.org/zap"

const tombstone = -1

// SparseSet maps handles to dense positions. sparse is indexed by
// Handle.Index(); dense holds the contained handles. For every contained
// handle h, dense[sparse[h.Index()]] == h (generation included).
//
// Erase swaps the removed element with the last one and pops, so dense
// order changes on erase. Walking dense from the back while erasing the
// element being visited never disturbs elements that were already visited.
type SparseSet struct {
	sparse []int
	dense  []Handle
	log    *zap.Logger
}

// NewSparseSet returns an empty set. log receives contract violations and
// may be nil.
func NewSparseSet(log *zap.Logger) *SparseSet {
	return &SparseSet{log: log}
}

// Reserve grows the sparse array to hold at least n indices.
func (s *SparseSet) Reserve(n int) {
	if n <= len(s.sparse) {
		return
	}
	newLen := max(len(s.sparse)*2, n)
	grown := make([]int, newLen)
	copy(grown, s.sparse)
	for i := len(s.sparse); i < newLen; i++ {
		grown[i] = tombstone
	}
	s.sparse = grown
}

// Insert adds h. It is a no-op when h is already contained.
func (s *SparseSet) Insert(h Handle) {
	if s.Contains(h) {
		return
	}
	idx := int(h.Index())
	s.Reserve(idx + 1)
	s.dense = append(s.dense, h)
	s.sparse[idx] = len(s.dense) - 1
}

// Erase removes h by moving the last dense element into its slot.
// Erasing an absent handle is a contract violation and is ignored.
func (s *SparseSet) Erase(h Handle) {
	pos, ok := s.IndexOf(h)
	if !ok {
		violation(s.log, "sparse set: erase of absent handle", zap.Stringer("handle", h))
		return
	}
	last := len(s.dense) - 1
	moved := s.dense[last]
	s.dense[pos] = moved
	s.sparse[moved.Index()] = pos
	s.dense = s.dense[:last]
	s.sparse[h.Index()] = tombstone
}

// Contains reports whether h is in the set.
func (s *SparseSet) Contains(h Handle) bool {
	_, ok := s.IndexOf(h)
	return ok
}

// IndexOf returns the dense position of h.
func (s *SparseSet) IndexOf(h Handle) (int, bool) {
	idx := int(h.Index())
	if idx >= len(s.sparse) {
		return 0, false
	}
	pos := s.sparse[idx]
	if pos < 0 || pos >= len(s.dense) || s.dense[pos] != h {
		return 0, false
	}
	return pos, true
}

func (s *SparseSet) Len() int { return len(s.dense) }

// At returns the handle stored at dense position i.
func (s *SparseSet) At(i int) Handle { return s.dense[i] }

// Keys returns the dense handle slice. It is only valid until the next mutation.
func (s *SparseSet) Keys() []Handle { return s.dense }

func (s *SparseSet) Clear() {
	for _, h := range s.dense {
		s.sparse[h.Index()] = tombstone
	}
	s.dense = s.dense[:0]
}

// EachReverse visits every handle from the back of the dense array.
// fn may erase the handle it is visiting.
func (s *SparseSet) EachReverse(fn func(h Handle)) {
	for i := len(s.dense) - 1; i >= 0; i-- {
		if i >= len(s.dense) {
			continue
		}
		fn(s.dense[i])
	}
}
