package ecs

import (
	"time"

	"github.com/lumen3d/lumen/internal/core/event"
	"github.com/lumen3d/lumen/internal/core/system"
	"go.uber.org/zap"
)

// ECS is the top-level container. It composes the entity, component,
// system and event managers and owns the per-tick ordering:
// systems, then queued events, then entity release, then component sweep.
type ECS struct {
	Entities   *EntityMgr
	Components *ComponentMgr
	Systems    *system.Runner
	Events     *event.Bus

	log  *zap.Logger
	tick uint64
}

func New(log *zap.Logger) *ECS {
	if log == nil {
		log = zap.NewNop()
	}
	bus := event.NewBus()
	components := NewComponentMgr(log.Named("components"))
	return &ECS{
		Entities:   NewEntityMgr(components, bus, log.Named("entities")),
		Components: components,
		Systems:    system.NewRunner(),
		Events:     bus,
		log:        log,
	}
}

func (w *ECS) Logger() *zap.Logger { return w.log }

// Tick returns the number of completed Update calls.
func (w *ECS) Tick() uint64 { return w.tick }

func (w *ECS) CreateEntity() Handle { return w.Entities.Create() }

// DestroyEntity marks h for destruction at the end of the current tick.
func (w *ECS) DestroyEntity(h Handle) bool { return w.Entities.Destroy(h) }

func (w *ECS) Valid(h Handle) bool { return w.Entities.Valid(h) }
func (w *ECS) Alive(h Handle) bool { return w.Entities.Alive(h) }

func (w *ECS) AddSystem(s system.System) { w.Systems.Register(s) }

// Update runs one tick. A system error aborts the tick before the event
// flush and the sweeps.
func (w *ECS) Update(dt time.Duration) error {
	if err := w.Systems.Tick(dt); err != nil {
		return err
	}
	w.Events.Flush()
	w.Entities.RemoveExpired()
	w.Components.RemoveExpired()
	w.tick++
	return nil
}

// AddComponent attaches v to a live entity. Entities destroyed this tick
// are rejected with ErrStaleHandle.
func AddComponent[T any](w *ECS, h Handle, v T) (*T, error) {
	if !w.Entities.Alive(h) {
		return nil, ErrStaleHandle
	}
	return Create(w.Components, h, v)
}

// GetComponent returns h's T, or false for stale handles and missing components.
func GetComponent[T any](w *ECS, h Handle) (*T, bool) {
	if !w.Entities.Valid(h) {
		return nil, false
	}
	return Get[T](w.Components, h)
}

func HasComponent[T any](w *ECS, h Handle) bool {
	return w.Entities.Valid(h) && Has[T](w.Components, h)
}

// RemoveComponent queues h's T for removal at the end of the tick.
func RemoveComponent[T any](w *ECS, h Handle) bool {
	return Destroy[T](w.Components, h)
}

// ForEach applies fn to every T.
func ForEach[T any](w *ECS, fn func(Handle, *T)) {
	Each(w.Components, fn)
}
