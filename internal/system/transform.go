package system

import (
	"time"

	"github.com/lumen3d/lumen/internal/component"
	"github.com/lumen3d/lumen/internal/core/ecs"
	"github.com/lumen3d/lumen/internal/core/event"
	coresys "github.com/lumen3d/lumen/internal/core/system"
)

// Execution priorities, highest first.
const (
	PriorityScript    uint32 = 1100
	PriorityTransform uint32 = 1000
	PriorityCamera    uint32 = 900
	PriorityModel     uint32 = 800
	PriorityRender    uint32 = 100
	PriorityCleanup   uint32 = 0
)

// TransformSystem resolves every active Transform's world matrix.
// Update phase: resolve along each ancestor chain, parents first.
// PostUpdate phase: clear Updated on every transform, so the flag is
// visible to all systems' Update in exactly the tick it was set.
//
// Parent chains must be acyclic; a cycle recurses without bound.
type TransformSystem struct {
	coresys.Base
	w       *ecs.ECS
	pass    uint64
	changed []ecs.Handle
}

func NewTransformSystem(w *ecs.ECS) *TransformSystem {
	return &TransformSystem{
		Base: coresys.NewBase("transform", PriorityTransform),
		w:    w,
	}
}

func (s *TransformSystem) Update(_ time.Duration) error {
	s.pass++
	ecs.ForEach(s.w, func(h ecs.Handle, t *component.Transform) {
		if t.Active {
			s.resolve(h, t)
		}
	})
	for _, h := range s.changed {
		event.Enqueue(s.w.Events, component.TransformChanged{Entity: h})
	}
	s.changed = s.changed[:0]
	return nil
}

// resolve brings t.World up to date. A parent that moved this tick forces
// its children to recompute even if their own TRS did not change. Each
// transform is resolved at most once per pass.
func (s *TransformSystem) resolve(h ecs.Handle, t *component.Transform) {
	if t.Resolved == s.pass {
		return
	}
	if parent, ok := ecs.GetComponent[component.Transform](s.w, t.Parent); ok {
		s.resolve(t.Parent, parent)
		if parent.Updated {
			t.NeedsUpdate = true
		}
		if t.NeedsUpdate {
			t.World = parent.World.Mul4(t.Local())
			s.markUpdated(h, t)
		}
	} else if t.NeedsUpdate {
		t.World = t.Local()
		s.markUpdated(h, t)
	}
	t.Resolved = s.pass
}

func (s *TransformSystem) markUpdated(h ecs.Handle, t *component.Transform) {
	t.NeedsUpdate = false
	t.Updated = true
	s.changed = append(s.changed, h)
}

// ResolveNow brings one transform and its ancestors up to date outside the
// regular pass, e.g. for tools that read World between ticks.
func (s *TransformSystem) ResolveNow(h ecs.Handle) (*component.Transform, bool) {
	t, ok := ecs.GetComponent[component.Transform](s.w, h)
	if !ok {
		return nil, false
	}
	s.pass++
	s.resolve(h, t)
	return t, true
}

func (s *TransformSystem) PostUpdate(_ time.Duration) {
	ecs.ForEach(s.w, func(_ ecs.Handle, t *component.Transform) {
		t.Updated = false
	})
}
