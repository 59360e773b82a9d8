package ecs

import (
	"errors"
	"reflect"

	"go.uber.org/zap"
)

var (
	ErrStaleHandle        = errors.New("ecs: stale entity handle")
	ErrDuplicateComponent = errors.New("ecs: entity already owns component")
)

// expiryQueue holds handles whose component of one type is waiting for the
// end-of-tick sweep.
type expiryQueue struct {
	handles []Handle
	queued  map[Handle]struct{}
}

func (q *expiryQueue) push(h Handle) {
	if _, ok := q.queued[h]; ok {
		return
	}
	if q.queued == nil {
		q.queued = make(map[Handle]struct{}, 16)
	}
	q.queued[h] = struct{}{}
	q.handles = append(q.handles, h)
}

func (q *expiryQueue) reset() {
	q.handles = q.handles[:0]
	clear(q.queued)
}

// ComponentMgr owns one pool per component type, created lazily on first
// use. Destruction is deferred: Destroy only queues, RemoveExpired erases.
type ComponentMgr struct {
	pools   map[reflect.Type]Pool
	order   []reflect.Type
	expired map[reflect.Type]*expiryQueue
	log     *zap.Logger
}

func NewComponentMgr(log *zap.Logger) *ComponentMgr {
	if log == nil {
		log = zap.NewNop()
	}
	return &ComponentMgr{
		pools:   make(map[reflect.Type]Pool, 16),
		order:   make([]reflect.Type, 0, 16),
		expired: make(map[reflect.Type]*expiryQueue, 16),
		log:     log,
	}
}

// PoolOf returns T's pool, creating it when create is set.
// A registered pool of a different concrete type is a contract violation.
func PoolOf[T any](m *ComponentMgr, create bool) *ComponentPool[T] {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if p, ok := m.pools[t]; ok {
		cp, ok := p.(*ComponentPool[T])
		if !ok {
			violation(m.log, "component pool type mismatch", zap.Stringer("type", t))
			return nil
		}
		return cp
	}
	if !create {
		return nil
	}
	cp := NewComponentPool[T](m.log)
	m.pools[t] = cp
	m.order = append(m.order, t)
	m.expired[t] = &expiryQueue{}
	return cp
}

// Create attaches v to h in T's pool.
func Create[T any](m *ComponentMgr, h Handle, v T) (*T, error) {
	p := PoolOf[T](m, true)
	if p == nil {
		return nil, ErrDuplicateComponent
	}
	if existing, ok := p.Get(h); ok {
		violation(m.log, "entity already owns component",
			zap.Stringer("handle", h), zap.Stringer("type", reflect.TypeOf((*T)(nil)).Elem()))
		return existing, ErrDuplicateComponent
	}
	return p.Insert(h, v), nil
}

// Get returns h's T, including one that is queued for destruction.
func Get[T any](m *ComponentMgr, h Handle) (*T, bool) {
	p := PoolOf[T](m, false)
	if p == nil {
		return nil, false
	}
	return p.Get(h)
}

func Has[T any](m *ComponentMgr, h Handle) bool {
	p := PoolOf[T](m, false)
	return p != nil && p.Contains(h)
}

// Len returns the number of stored T components, expired ones included.
func Len[T any](m *ComponentMgr) int {
	p := PoolOf[T](m, false)
	if p == nil {
		return 0
	}
	return p.Len()
}

// Each applies fn to every stored T in reverse dense order. Values queued
// for destruction are still visited until the sweep runs.
func Each[T any](m *ComponentMgr, fn func(Handle, *T)) {
	p := PoolOf[T](m, false)
	if p == nil {
		return
	}
	p.EachReverse(fn)
}

// Destroy queues h's T for the end-of-tick sweep.
func Destroy[T any](m *ComponentMgr, h Handle) bool {
	return m.DestroyType(h, reflect.TypeOf((*T)(nil)).Elem())
}

// IsExpired reports whether h's T is queued for destruction.
func IsExpired[T any](m *ComponentMgr, h Handle) bool {
	q, ok := m.expired[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return false
	}
	_, queued := q.queued[h]
	return queued
}

// DestroyType queues h's component of type t for the end-of-tick sweep.
func (m *ComponentMgr) DestroyType(h Handle, t reflect.Type) bool {
	p, ok := m.pools[t]
	if !ok || !p.Contains(h) {
		violation(m.log, "destroy of component the entity does not own",
			zap.Stringer("handle", h), zap.Stringer("type", t))
		return false
	}
	m.expired[t].push(h)
	return true
}

// ExpireAll queues every component h owns.
func (m *ComponentMgr) ExpireAll(h Handle) int {
	n := 0
	for _, t := range m.order {
		if m.pools[t].Contains(h) {
			m.expired[t].push(h)
			n++
		}
	}
	return n
}

// RemoveExpired erases every queued component, type by type in
// registration order, and empties the queues.
func (m *ComponentMgr) RemoveExpired() int {
	n := 0
	for _, t := range m.order {
		q := m.expired[t]
		if len(q.handles) == 0 {
			continue
		}
		p := m.pools[t]
		for _, h := range q.handles {
			if p.Contains(h) {
				p.Erase(h)
				n++
			}
		}
		q.reset()
	}
	return n
}

// Types returns the registered component types in registration order.
func (m *ComponentMgr) Types() []reflect.Type {
	return append([]reflect.Type(nil), m.order...)
}

// Clear drops every component and pending expiry.
func (m *ComponentMgr) Clear() {
	for _, t := range m.order {
		m.pools[t].Clear()
		m.expired[t].reset()
	}
}
