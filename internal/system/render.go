package system

import (
	"time"

	coresys "github.com/lumen3d/lumen/internal/core/system"
	"github.com/lumen3d/lumen/internal/render"
)

// RenderSystem draws a frame every tick it runs. Device failures are
// returned and abort the tick.
type RenderSystem struct {
	coresys.Base
	renderer *render.Renderer
}

func NewRenderSystem(r *render.Renderer) *RenderSystem {
	return &RenderSystem{
		Base:     coresys.NewBase("render", PriorityRender),
		renderer: r,
	}
}

func (s *RenderSystem) Renderer() *render.Renderer { return s.renderer }

func (s *RenderSystem) Update(_ time.Duration) error {
	return s.renderer.Render()
}
