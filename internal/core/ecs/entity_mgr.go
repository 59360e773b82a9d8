package ecs

import (
	"github.com/lumen3d/lumen/internal/core/event"
	"go.uber.org/zap"
)

// EntityMgr allocates entity handles and defers their release to the
// end-of-tick sweep, so a destroyed entity stays readable for the rest of
// the tick.
type EntityMgr struct {
	table      *HandleTable
	components *ComponentMgr
	bus        *event.Bus
	expired    []Handle
	queued     map[Handle]struct{}
	log        *zap.Logger
}

func NewEntityMgr(components *ComponentMgr, bus *event.Bus, log *zap.Logger) *EntityMgr {
	if log == nil {
		log = zap.NewNop()
	}
	return &EntityMgr{
		table:      NewHandleTable(),
		components: components,
		bus:        bus,
		expired:    make([]Handle, 0, 64),
		queued:     make(map[Handle]struct{}, 64),
		log:        log,
	}
}

// Create allocates an entity and publishes EntityCreated.
func (m *EntityMgr) Create() Handle {
	h := m.table.Create()
	event.Publish(m.bus, EntityCreated{Entity: h})
	return h
}

// Destroy publishes EntityDestroyed, queues h for release and marks all of
// its components expired. Stale or already-destroyed handles are ignored.
func (m *EntityMgr) Destroy(h Handle) bool {
	if !m.table.Valid(h) {
		return false
	}
	if _, ok := m.queued[h]; ok {
		return false
	}
	event.Publish(m.bus, EntityDestroyed{Entity: h})
	m.queued[h] = struct{}{}
	m.expired = append(m.expired, h)
	m.components.ExpireAll(h)
	return true
}

// RemoveExpired releases every queued handle, bumping its generation.
// Components still attached are queued again so the component sweep that
// follows erases them before the index can be reused.
func (m *EntityMgr) RemoveExpired() int {
	n := 0
	for _, h := range m.expired {
		m.components.ExpireAll(h)
		if m.table.Release(h) {
			n++
		}
	}
	if n > 0 {
		m.log.Debug("released entities", zap.Int("count", n))
	}
	m.expired = m.expired[:0]
	clear(m.queued)
	return n
}

// Valid reports whether h has not been released yet. Entities destroyed
// this tick are still valid until the sweep.
func (m *EntityMgr) Valid(h Handle) bool { return m.table.Valid(h) }

// Alive reports whether h is valid and not queued for destruction.
func (m *EntityMgr) Alive(h Handle) bool {
	if !m.table.Valid(h) {
		return false
	}
	_, queued := m.queued[h]
	return !queued
}

// Len returns the number of allocated entities, destroyed-but-unswept included.
func (m *EntityMgr) Len() int { return m.table.Len() }
