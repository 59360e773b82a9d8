package system

import (
	"time"

	"github.com/lumen3d/lumen/internal/component"
	"github.com/lumen3d/lumen/internal/core/ecs"
	coresys "github.com/lumen3d/lumen/internal/core/system"
	"github.com/lumen3d/lumen/internal/geom"
)

// CameraSystem derives each active camera's view and projection matrices
// from its Transform. Cameras without a Transform are skipped.
type CameraSystem struct {
	coresys.Base
	w *ecs.ECS
}

func NewCameraSystem(w *ecs.ECS) *CameraSystem {
	return &CameraSystem{
		Base: coresys.NewBase("camera", PriorityCamera),
		w:    w,
	}
}

func (s *CameraSystem) Update(_ time.Duration) error {
	ecs.ForEach2(s.w, func(_ ecs.Handle, tr *component.Transform, c *component.Camera) {
		if !c.Active {
			return
		}
		c.View = geom.WorldToView(tr.World)
		c.Proj = component.ProjectionMatrix(c)
		c.ViewProj = c.Proj.Mul4(c.View)
	})
	return nil
}

// ModelSystem moves every model part's bounding volumes into world space.
type ModelSystem struct {
	coresys.Base
	w *ecs.ECS
}

func NewModelSystem(w *ecs.ECS) *ModelSystem {
	return &ModelSystem{
		Base: coresys.NewBase("model", PriorityModel),
		w:    w,
	}
}

func (s *ModelSystem) Update(_ time.Duration) error {
	ecs.ForEach2(s.w, func(_ ecs.Handle, tr *component.Transform, m *component.Model) {
		for i := range m.Children {
			c := &m.Children[i]
			c.AABB = c.Local.Transform(tr.World)
			c.Sphere = c.Local.Sphere().Transform(tr.World)
		}
	})
	return nil
}
