package component

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lumen3d/lumen/internal/core/ecs"
	"github.com/lumen3d/lumen/internal/geom"
)

// Texture slots a material may fill.
const (
	BaseColorTexture = iota
	MaterialTexture
	NormalTexture
	MaxTextures
)

// Material is the per-part shading input. Empty texture slots fall back to
// the constant factors.
type Material struct {
	Name        string
	BaseColor   mgl32.Vec4
	Roughness   float32
	Metalness   float32
	Transparent bool
	// LightInteraction is false for emissive or unlit parts.
	LightInteraction bool
	Textures         [MaxTextures]string
}

func DefaultMaterial() Material {
	return Material{
		Name:             "default",
		BaseColor:        mgl32.Vec4{1, 1, 1, 1},
		Roughness:        0.5,
		LightInteraction: true,
	}
}

// HasTexture reports whether slot is bound.
func (m *Material) HasTexture(slot int) bool {
	return slot >= 0 && slot < MaxTextures && m.Textures[slot] != ""
}

// Mesh is shared geometry referenced by models through the scene's
// ResourcePool. Resource is the device buffer id.
type Mesh struct {
	Name        string
	Resource    uint32
	VertexCount uint32
	IndexCount  uint32
	Bounds      geom.AABB
	Positions   []mgl32.Vec3
	Indices     []uint32
}

// ModelChild is one drawable part. AABB and Sphere are world space and are
// rewritten every tick by ModelSystem.
type ModelChild struct {
	Name       string
	Material   Material
	StartIndex uint32
	IndexCount uint32
	Local      geom.AABB

	AABB   geom.AABB
	Sphere geom.Sphere
}

// Model draws a mesh through its children.
type Model struct {
	Mesh        ecs.Handle
	Children    []ModelChild
	CastShadows bool
	Active      bool
}

// NewModel returns a model with a single child spanning the whole mesh.
func NewModel(meshHandle ecs.Handle, mesh *Mesh, mat Material) Model {
	return Model{
		Mesh: meshHandle,
		Children: []ModelChild{{
			Name:       mesh.Name,
			Material:   mat,
			IndexCount: mesh.IndexCount,
			Local:      mesh.Bounds,
			AABB:       mesh.Bounds,
			Sphere:     mesh.Bounds.Sphere(),
		}},
		CastShadows: true,
		Active:      true,
	}
}

// Script attaches a Lua chunk to an entity. The chunk defines an
// update(entity, dt) function called every tick.
type Script struct {
	Path   string
	Source string
	Active bool
}
