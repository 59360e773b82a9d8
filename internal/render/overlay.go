package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lumen3d/lumen/internal/component"
	"github.com/lumen3d/lumen/internal/core/ecs"
	"github.com/lumen3d/lumen/internal/geom"
)

// SkyPass draws the sky texture behind everything with one full-screen
// triangle.
type SkyPass struct {
	dev Device
}

func NewSkyPass(dev Device) *SkyPass { return &SkyPass{dev: dev} }

func (p *SkyPass) Render(texture string) {
	if texture == "" {
		return
	}
	p.dev.BindVertexShader("sky")
	p.dev.BindPixelShader("sky")
	p.dev.BindTexture(SlotSkyTexture, texture)
	p.dev.Draw(3, 0)
}

// boxLineVertices is a line list of the twelve box edges.
const boxLineVertices = 24

// BoundingVolumePass draws the world AABBs of model parts and lights as
// wireframe boxes.
type BoundingVolumePass struct {
	dev    Device
	scene  Scene
	object constantBuffer[ObjectData]
}

func NewBoundingVolumePass(dev Device, scene Scene) *BoundingVolumePass {
	return &BoundingVolumePass{dev: dev, scene: scene}
}

// Render returns the number of boxes drawn.
func (p *BoundingVolumePass) Render(cam *component.Camera) (int, error) {
	frustum := geom.NewFrustum(cam.ViewProj)
	var boxes []geom.AABB
	ecs.ForEach2(p.scene.World, func(_ ecs.Handle, tr *component.Transform, m *component.Model) {
		if !tr.Active || !m.Active {
			return
		}
		for i := range m.Children {
			boxes = append(boxes, m.Children[i].AABB)
		}
	})
	ecs.ForEach2(p.scene.World, func(_ ecs.Handle, tr *component.Transform, l *component.PointLight) {
		if tr.Active && l.Active {
			boxes = append(boxes, l.AABB().Transform(tr.World))
		}
	})
	ecs.ForEach2(p.scene.World, func(_ ecs.Handle, tr *component.Transform, l *component.SpotLight) {
		if tr.Active && l.Active {
			boxes = append(boxes, l.AABB().Transform(tr.World))
		}
	})

	p.dev.BindRasterState(RasterState{Cull: CullNone, Wireframe: true})
	p.dev.BindVertexShader("bounding_volume")
	p.dev.BindPixelShader("line")
	n := 0
	for _, b := range boxes {
		if !frustum.IntersectsAABB(b) {
			continue
		}
		c, e := b.Center(), b.Extents()
		obj := ObjectData{
			ObjectToWorld: geom.TRS(c, mgl32.Vec3{}, e),
		}
		obj.ObjectToProjection = cam.ViewProj.Mul4(obj.ObjectToWorld)
		if err := p.object.Update(p.dev, obj); err != nil {
			return n, err
		}
		p.dev.BindConstantBuffer(SlotObject, p.object.ID())
		p.dev.Draw(boxLineVertices, 0)
		n++
	}
	return n, nil
}

// TextPass draws screen-space text lines with a sprite font.
type TextPass struct {
	dev  Device
	text constantBuffer[TextLine]
}

// TextLine is one line of overlay text at a pixel position.
type TextLine struct {
	X, Y float32
	Text string
}

func NewTextPass(dev Device) *TextPass { return &TextPass{dev: dev} }

// Render draws each line as one quad per glyph.
func (p *TextPass) Render(lines []TextLine) error {
	if len(lines) == 0 {
		return nil
	}
	p.dev.BindVertexShader("sprite")
	p.dev.BindPixelShader("sprite")
	for _, l := range lines {
		if l.Text == "" {
			continue
		}
		if err := p.text.Update(p.dev, l); err != nil {
			return err
		}
		p.dev.BindConstantBuffer(SlotText, p.text.ID())
		p.dev.Draw(uint32(6*len(l.Text)), 0)
	}
	return nil
}
