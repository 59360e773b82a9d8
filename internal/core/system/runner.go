package system

import (
	"fmt"
	"sort"
	"time"
)

// Runner executes systems in descending priority each tick, in three
// phases: every due system's PreUpdate, then every Update, then every
// PostUpdate. A system's "updated this tick" output is therefore visible
// to all other systems' Update before anyone's PostUpdate clears it.
type Runner struct {
	systems []System
	sorted  bool
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
	}
}

func (r *Runner) Register(s System) {
	s.SystemBase().runner = r
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Tick advances every active system's timer by dt and runs the due ones.
// Inactive systems are skipped entirely, timers included. Each phase hook
// receives the time elapsed since that system last ran.
// An Update error aborts the tick.
func (r *Runner) Tick(dt time.Duration) error {
	r.ensureSorted()

	for _, s := range r.systems {
		b := s.SystemBase()
		if !b.active {
			continue
		}
		b.sinceLast += dt
		if b.sinceLast >= b.interval {
			b.needsUpdate = true
		}
		if b.needsUpdate {
			s.PreUpdate(b.sinceLast)
		}
	}

	for _, s := range r.systems {
		b := s.SystemBase()
		if !b.active || !b.needsUpdate {
			continue
		}
		if err := s.Update(b.sinceLast); err != nil {
			return fmt.Errorf("system %s: %w", b.name, err)
		}
	}

	for _, s := range r.systems {
		b := s.SystemBase()
		if !b.active || !b.needsUpdate {
			continue
		}
		s.PostUpdate(b.sinceLast)
		b.needsUpdate = false
		b.sinceLast = 0
	}
	return nil
}

// Systems returns the systems in execution order.
func (r *Runner) Systems() []System {
	r.ensureSorted()
	return append([]System(nil), r.systems...)
}

// Find returns the first registered system of type T.
func Find[T System](r *Runner) (T, bool) {
	for _, s := range r.systems {
		if t, ok := s.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// ensureSorted orders systems by descending priority. Equal priorities
// keep registration order.
func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].SystemBase().priority > r.systems[j].SystemBase().priority
		})
		r.sorted = true
	}
}
