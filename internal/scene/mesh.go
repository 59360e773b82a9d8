package scene

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lumen3d/lumen/internal/component"
	"github.com/lumen3d/lumen/internal/core/ecs"
	"github.com/lumen3d/lumen/internal/geom"
)

const sphereSegments, sphereRings = 16, 8

// MeshLibrary shares primitive meshes between the models of a scene. A
// mesh is keyed by primitive kind and size.
type MeshLibrary struct {
	pool  *ecs.ResourcePool[component.Mesh]
	byKey map[string]ecs.Handle
	next  uint32
}

func NewMeshLibrary(pool *ecs.ResourcePool[component.Mesh]) *MeshLibrary {
	return &MeshLibrary{pool: pool, byKey: make(map[string]ecs.Handle)}
}

func (l *MeshLibrary) Pool() *ecs.ResourcePool[component.Mesh] { return l.pool }

// Get returns the mesh for kind at size, creating it on first use.
func (l *MeshLibrary) Get(kind string, size float32) (ecs.Handle, *component.Mesh, error) {
	if size <= 0 {
		size = 1
	}
	key := fmt.Sprintf("%s:%g", kind, size)
	if h, ok := l.byKey[key]; ok {
		if m, ok := l.pool.Get(h); ok {
			return h, m, nil
		}
	}
	mesh, err := Primitive(kind, size)
	if err != nil {
		return ecs.Null, nil, err
	}
	l.next++
	mesh.Resource = l.next
	h, m := l.pool.Add(mesh)
	l.byKey[key] = h
	return h, m, nil
}

// Primitive generates the geometry of a built-in mesh. size is the half
// extent of a cube or plane and the radius of a sphere.
func Primitive(kind string, size float32) (component.Mesh, error) {
	var pos []mgl32.Vec3
	var idx []uint32
	switch kind {
	case "cube":
		pos, idx = cube(size)
	case "plane":
		pos, idx = plane(size)
	case "sphere":
		pos, idx = sphere(size)
	default:
		return component.Mesh{}, fmt.Errorf("%w: %q", ErrUnknownMesh, kind)
	}
	return component.Mesh{
		Name:        fmt.Sprintf("%s:%g", kind, size),
		VertexCount: uint32(len(pos)),
		IndexCount:  uint32(len(idx)),
		Bounds:      geom.FromPoints(pos...),
		Positions:   pos,
		Indices:     idx,
	}, nil
}

func cube(h float32) ([]mgl32.Vec3, []uint32) {
	pos := []mgl32.Vec3{
		{-h, -h, -h}, {h, -h, -h}, {h, h, -h}, {-h, h, -h},
		{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h},
	}
	idx := []uint32{
		4, 5, 6, 4, 6, 7, // +Z
		1, 0, 3, 1, 3, 2, // -Z
		5, 1, 2, 5, 2, 6, // +X
		0, 4, 7, 0, 7, 3, // -X
		7, 6, 2, 7, 2, 3, // +Y
		0, 1, 5, 0, 5, 4, // -Y
	}
	return pos, idx
}

// plane lies in XZ facing +Y.
func plane(h float32) ([]mgl32.Vec3, []uint32) {
	pos := []mgl32.Vec3{{-h, 0, h}, {h, 0, h}, {h, 0, -h}, {-h, 0, -h}}
	return pos, []uint32{0, 1, 2, 0, 2, 3}
}

// sphere is a UV sphere with poles on Y.
func sphere(r float32) ([]mgl32.Vec3, []uint32) {
	pos := make([]mgl32.Vec3, 0, (sphereRings+1)*(sphereSegments+1))
	for ring := 0; ring <= sphereRings; ring++ {
		theta := math32.Pi * float32(ring) / sphereRings
		st, ct := math32.Sin(theta), math32.Cos(theta)
		for seg := 0; seg <= sphereSegments; seg++ {
			phi := 2 * math32.Pi * float32(seg) / sphereSegments
			sp, cp := math32.Sin(phi), math32.Cos(phi)
			pos = append(pos, mgl32.Vec3{r * st * cp, r * ct, r * st * sp})
		}
	}
	idx := make([]uint32, 0, sphereRings*sphereSegments*6)
	const stride = sphereSegments + 1
	for ring := uint32(0); ring < sphereRings; ring++ {
		for seg := uint32(0); seg < sphereSegments; seg++ {
			a := ring*stride + seg
			b := a + stride
			idx = append(idx, a, b, a+1, a+1, b, b+1)
		}
	}
	return pos, idx
}
