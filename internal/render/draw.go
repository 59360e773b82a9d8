package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lumen3d/lumen/internal/component"
	"github.com/lumen3d/lumen/internal/core/ecs"
	"github.com/lumen3d/lumen/internal/geom"
)

// Scene is the data every pass reads: the ECS and the mesh resources its
// models point at.
type Scene struct {
	World  *ecs.ECS
	Meshes *ecs.ResourcePool[component.Mesh]
}

// childFilter selects which model parts a pass draws.
type childFilter func(m *component.Model, c *component.ModelChild) bool

func opaqueChildren(_ *component.Model, c *component.ModelChild) bool { return !c.Material.Transparent }

func transparentChildren(_ *component.Model, c *component.ModelChild) bool {
	return c.Material.Transparent
}

func shadowCasters(m *component.Model, c *component.ModelChild) bool {
	return m.CastShadows && !c.Material.Transparent
}

// modelDrawer issues one indexed draw per visible model child.
type modelDrawer struct {
	dev    Device
	scene  Scene
	object constantBuffer[ObjectData]
}

// draw renders every child accepted by keep whose world AABB intersects
// the frustum of worldToProj. Materials are bound when withMaterial is set.
// It returns the number of draws issued.
func (d *modelDrawer) draw(worldToProj mgl32.Mat4, keep childFilter, withMaterial bool) (int, error) {
	frustum := geom.NewFrustum(worldToProj)
	draws := 0
	var firstErr error
	ecs.ForEach2(d.scene.World, func(h ecs.Handle, tr *component.Transform, m *component.Model) {
		if firstErr != nil || !tr.Active || !m.Active {
			return
		}
		mesh, ok := d.scene.Meshes.Get(m.Mesh)
		if !ok {
			return
		}
		bound := false
		for i := range m.Children {
			c := &m.Children[i]
			if !keep(m, c) || c.IndexCount == 0 {
				continue
			}
			if !frustum.IntersectsAABB(c.AABB) {
				continue
			}
			obj := ObjectData{
				ObjectToWorld:      tr.World,
				ObjectToProjection: worldToProj.Mul4(tr.World),
				BaseColor:          c.Material.BaseColor,
				Roughness:          c.Material.Roughness,
				Metalness:          c.Material.Metalness,
			}
			if err := d.object.Update(d.dev, obj); err != nil {
				firstErr = err
				return
			}
			d.dev.BindConstantBuffer(SlotObject, d.object.ID())
			if withMaterial {
				bindMaterial(d.dev, &c.Material)
			}
			if !bound {
				d.dev.BindMesh(mesh.Resource)
				bound = true
			}
			d.dev.DrawIndexed(c.IndexCount, c.StartIndex)
			draws++
		}
	})
	return draws, firstErr
}

var materialSlots = [component.MaxTextures]Slot{
	component.BaseColorTexture: SlotBaseColorTexture,
	component.MaterialTexture:  SlotMaterialTexture,
	component.NormalTexture:    SlotNormalTexture,
}

// bindMaterial binds the texture slots the material fills. Empty slots
// are left alone; the shader falls back to the constant factors.
func bindMaterial(dev Device, m *component.Material) {
	for i, name := range m.Textures {
		if name == "" {
			continue
		}
		dev.BindTexture(materialSlots[i], name)
	}
}
