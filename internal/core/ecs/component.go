package ecs

import (
	"reflect"

	"go.uber.org/zap"
)

// Pool is the type-erased view of a component pool the ComponentMgr keeps
// per registered type, so it can expire and sweep entities across all pools.
type Pool interface {
	Type() reflect.Type
	Contains(h Handle) bool
	Erase(h Handle)
	Clear()
	Len() int
}

// ComponentPool pairs a SparseSet with a dense value array.
// components[i] belongs to set.At(i); both arrays are swap-erased together.
// Pointers handed out stay valid until the pool is next mutated.
type ComponentPool[T any] struct {
	set        SparseSet
	components []T
	log        *zap.Logger
}

func NewComponentPool[T any](log *zap.Logger) *ComponentPool[T] {
	return &ComponentPool[T]{
		set:        SparseSet{log: log},
		components: make([]T, 0, 64),
		log:        log,
	}
}

func (p *ComponentPool[T]) Type() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

// Insert stores v for h and returns a pointer to the stored value.
// Inserting over an existing value is a contract violation; the existing
// value is returned untouched.
func (p *ComponentPool[T]) Insert(h Handle, v T) *T {
	if pos, ok := p.set.IndexOf(h); ok {
		violation(p.log, "component pool: duplicate insert", zap.Stringer("handle", h), zap.Stringer("type", p.Type()))
		return &p.components[pos]
	}
	p.set.Insert(h)
	p.components = append(p.components, v)
	return &p.components[len(p.components)-1]
}

// Get returns the value stored for h.
func (p *ComponentPool[T]) Get(h Handle) (*T, bool) {
	pos, ok := p.set.IndexOf(h)
	if !ok {
		return nil, false
	}
	return &p.components[pos], true
}

// Erase removes h's value. Erasing an absent handle is a contract violation.
func (p *ComponentPool[T]) Erase(h Handle) {
	pos, ok := p.set.IndexOf(h)
	if !ok {
		violation(p.log, "component pool: erase of absent handle", zap.Stringer("handle", h), zap.Stringer("type", p.Type()))
		return
	}
	last := len(p.components) - 1
	p.components[pos] = p.components[last]
	var zero T
	p.components[last] = zero
	p.components = p.components[:last]
	p.set.Erase(h)
}

func (p *ComponentPool[T]) Contains(h Handle) bool { return p.set.Contains(h) }
func (p *ComponentPool[T]) Len() int               { return len(p.components) }

func (p *ComponentPool[T]) Clear() {
	p.set.Clear()
	clear(p.components)
	p.components = p.components[:0]
}

// EachReverse visits every value from the back of the dense array.
// fn may erase the handle it is visiting.
func (p *ComponentPool[T]) EachReverse(fn func(Handle, *T)) {
	for i := len(p.components) - 1; i >= 0; i-- {
		if i >= len(p.components) {
			continue
		}
		fn(p.set.At(i), &p.components[i])
	}
}

// ResourcePool is a ComponentPool that allocates its own handles.
// Renderer-side resources such as meshes live here rather than on entities.
type ResourcePool[T any] struct {
	handles *HandleTable
	pool    *ComponentPool[T]
}

func NewResourcePool[T any](log *zap.Logger) *ResourcePool[T] {
	return &ResourcePool[T]{
		handles: NewHandleTable(),
		pool:    NewComponentPool[T](log),
	}
}

// Add stores v under a freshly allocated handle.
func (r *ResourcePool[T]) Add(v T) (Handle, *T) {
	h := r.handles.Create()
	return h, r.pool.Insert(h, v)
}

func (r *ResourcePool[T]) Get(h Handle) (*T, bool) {
	if !r.handles.Valid(h) {
		return nil, false
	}
	return r.pool.Get(h)
}

// Remove erases the value and releases its handle.
func (r *ResourcePool[T]) Remove(h Handle) bool {
	if !r.handles.Valid(h) {
		return false
	}
	r.pool.Erase(h)
	return r.handles.Release(h)
}

func (r *ResourcePool[T]) Valid(h Handle) bool { return r.handles.Valid(h) }
func (r *ResourcePool[T]) Len() int            { return r.pool.Len() }

func (r *ResourcePool[T]) Each(fn func(Handle, *T)) {
	r.pool.EachReverse(fn)
}
