package render

import (
	"github.com/lumen3d/lumen/internal/component"
)

// ForwardPass shades opaque parts, then transparent parts, with the
// camera's BRDF.
type ForwardPass struct {
	dev    Device
	drawer *modelDrawer
}

func NewForwardPass(dev Device, scene Scene) *ForwardPass {
	return &ForwardPass{dev: dev, drawer: &modelDrawer{dev: dev, scene: scene}}
}

func brdfShader(prefix, brdf string) string {
	if brdf == "" {
		brdf = "lambertian"
	}
	return prefix + "_" + brdf
}

// Render returns the number of draws issued.
func (p *ForwardPass) Render(cam *component.Camera) (int, error) {
	p.dev.BindVertexShader("transform")
	p.dev.BindPixelShader(brdfShader("forward", cam.BRDF))
	n, err := p.drawer.draw(cam.ViewProj, opaqueChildren, true)
	if err != nil {
		return n, err
	}
	m, err := p.RenderTransparent(cam)
	return n + m, err
}

// RenderTransparent draws only the transparent parts.
func (p *ForwardPass) RenderTransparent(cam *component.Camera) (int, error) {
	p.dev.BindVertexShader("transform")
	p.dev.BindPixelShader(brdfShader("transparent", cam.BRDF))
	return p.drawer.draw(cam.ViewProj, transparentChildren, true)
}

// DeferredPass fills a G-buffer with opaque parts and shades it with one
// full-screen triangle.
type DeferredPass struct {
	dev    Device
	drawer *modelDrawer
}

func NewDeferredPass(dev Device, scene Scene) *DeferredPass {
	return &DeferredPass{dev: dev, drawer: &modelDrawer{dev: dev, scene: scene}}
}

func (p *DeferredPass) Render(cam *component.Camera) (int, error) {
	p.dev.BindVertexShader("transform")
	p.dev.BindPixelShader("gbuffer")
	n, err := p.drawer.draw(cam.ViewProj, opaqueChildren, true)
	if err != nil {
		return n, err
	}
	p.dev.BindVertexShader("fullscreen")
	p.dev.BindPixelShader(brdfShader("deferred", cam.BRDF))
	p.dev.Draw(3, 0)
	return n + 1, nil
}

// FalseColorPass replaces shading with a debug visualisation of the
// opaque geometry.
type FalseColorPass struct {
	dev    Device
	drawer *modelDrawer
	Mode   string
}

func NewFalseColorPass(dev Device, scene Scene) *FalseColorPass {
	return &FalseColorPass{dev: dev, drawer: &modelDrawer{dev: dev, scene: scene}, Mode: "normal"}
}

func (p *FalseColorPass) Render(cam *component.Camera) (int, error) {
	p.dev.BindVertexShader("transform")
	p.dev.BindPixelShader("false_color_" + p.Mode)
	return p.drawer.draw(cam.ViewProj, opaqueChildren, true)
}
