package system

import "time"

// System is the interface every ECS system implements. Embed Base to get
// the scheduling state and no-op PreUpdate/PostUpdate hooks.
type System interface {
	SystemBase() *Base
	PreUpdate(dt time.Duration)
	Update(dt time.Duration) error
	PostUpdate(dt time.Duration)
}

// Base carries the scheduling state the Runner drives: a system is due once
// the time accumulated since its last run reaches its interval. A zero
// interval means every tick.
type Base struct {
	name        string
	priority    uint32
	active      bool
	interval    time.Duration
	sinceLast   time.Duration
	needsUpdate bool
	runner      *Runner
}

func NewBase(name string, priority uint32) Base {
	return Base{name: name, priority: priority, active: true}
}

func (b *Base) SystemBase() *Base { return b }

func (b *Base) PreUpdate(time.Duration)  {}
func (b *Base) PostUpdate(time.Duration) {}

func (b *Base) Name() string     { return b.name }
func (b *Base) Priority() uint32 { return b.priority }

// SetPriority changes the execution order; the owning Runner re-sorts
// before its next tick.
func (b *Base) SetPriority(p uint32) {
	if b.priority == p {
		return
	}
	b.priority = p
	if b.runner != nil {
		b.runner.sorted = false
	}
}

func (b *Base) Active() bool                   { return b.active }
func (b *Base) SetActive(on bool)              { b.active = on }
func (b *Base) NeedsUpdate() bool              { return b.needsUpdate }
func (b *Base) MarkForUpdate()                 { b.needsUpdate = true }
func (b *Base) SinceLastUpdate() time.Duration { return b.sinceLast }

func (b *Base) UpdateInterval() time.Duration { return b.interval }
func (b *Base) SetUpdateInterval(d time.Duration) {
	if d < 0 {
		d = 0
	}
	b.interval = d
}
