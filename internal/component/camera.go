package component

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Projection selects how a camera maps view space to clip space.
type Projection uint8

const (
	Perspective Projection = iota
	Orthographic
)

func (p Projection) String() string {
	switch p {
	case Perspective:
		return "perspective"
	case Orthographic:
		return "orthographic"
	default:
		return "unknown"
	}
}

// RenderMode selects the pass a camera's opaque geometry goes through.
type RenderMode uint8

const (
	Forward RenderMode = iota
	Deferred
	FalseColor
)

func (m RenderMode) String() string {
	switch m {
	case Forward:
		return "forward"
	case Deferred:
		return "deferred"
	case FalseColor:
		return "false_color"
	default:
		return "unknown"
	}
}

// ParseRenderMode maps a config or scene name to a RenderMode.
func ParseRenderMode(s string) (RenderMode, bool) {
	switch s {
	case "", "forward":
		return Forward, true
	case "deferred":
		return Deferred, true
	case "false_color":
		return FalseColor, true
	default:
		return Forward, false
	}
}

// Viewport is a pixel rectangle of the output surface.
type Viewport struct {
	X, Y          float32
	Width, Height float32
}

// Camera holds the settings shared by both projection kinds. FOV and
// Aspect apply to Perspective, Width and Height to Orthographic.
type Camera struct {
	Projection Projection
	FOV        float32 // vertical, radians
	Aspect     float32
	Width      float32
	Height     float32
	Near       float32
	Far        float32

	Viewport   Viewport
	RenderMode RenderMode
	BRDF       string
	Active     bool

	// Written by CameraSystem.
	View     mgl32.Mat4
	Proj     mgl32.Mat4
	ViewProj mgl32.Mat4
}

func NewPerspectiveCamera(fov, aspect, near, far float32) Camera {
	return Camera{
		Projection: Perspective,
		FOV:        fov,
		Aspect:     aspect,
		Near:       near,
		Far:        far,
		Active:     true,
		View:       mgl32.Ident4(),
		Proj:       mgl32.Ident4(),
		ViewProj:   mgl32.Ident4(),
	}
}

func NewOrthographicCamera(width, height, near, far float32) Camera {
	return Camera{
		Projection: Orthographic,
		Width:      width,
		Height:     height,
		Near:       near,
		Far:        far,
		Active:     true,
		View:       mgl32.Ident4(),
		Proj:       mgl32.Ident4(),
		ViewProj:   mgl32.Ident4(),
	}
}

// ProjectionMatrix computes the view-to-projection matrix of c.
func ProjectionMatrix(c *Camera) mgl32.Mat4 {
	switch c.Projection {
	case Orthographic:
		w, h := c.Width/2, c.Height/2
		return mgl32.Ortho(-w, w, -h, h, c.Near, c.Far)
	default:
		aspect := c.Aspect
		if aspect == 0 && c.Viewport.Height != 0 {
			aspect = c.Viewport.Width / c.Viewport.Height
		}
		if aspect == 0 {
			aspect = 1
		}
		return mgl32.Perspective(c.FOV, aspect, c.Near, c.Far)
	}
}
