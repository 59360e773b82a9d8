package render

import (
	"github.com/go-gl/mathgl/mgl32"
)

// DepthPass writes depth only. The LightPass uses it for every shadow
// camera, restricted to shadow casters.
type DepthPass struct {
	drawer *modelDrawer
}

func NewDepthPass(dev Device, scene Scene) *DepthPass {
	return &DepthPass{drawer: &modelDrawer{dev: dev, scene: scene}}
}

// BindFixedState binds the depth-only shaders.
func (p *DepthPass) BindFixedState() {
	p.drawer.dev.BindVertexShader("depth")
	p.drawer.dev.BindPixelShader("")
}

// RenderShadowCasters draws every shadow-casting part visible to
// worldToLight followed by lightToProjection.
func (p *DepthPass) RenderShadowCasters(worldToLight, lightToProjection mgl32.Mat4) (int, error) {
	return p.drawer.draw(lightToProjection.Mul4(worldToLight), shadowCasters, false)
}
