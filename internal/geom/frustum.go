package geom

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Plane is n·p + D = 0 with a unit normal pointing into the kept half-space.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

func planeFromRow(v mgl32.Vec4) Plane {
	n := v.Vec3()
	l := n.Len()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: n.Mul(1 / l), D: v[3] / l}
}

// Distance returns the signed distance from p to the plane.
func (p Plane) Distance(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum is the six clip planes of a world-to-projection matrix,
// ordered left, right, bottom, top, near, far.
type Frustum [6]Plane

// NewFrustum extracts the planes of viewProj (OpenGL clip space, z in [-w, w]).
func NewFrustum(viewProj mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)
	return Frustum{
		planeFromRow(r3.Add(r0)),
		planeFromRow(r3.Sub(r0)),
		planeFromRow(r3.Add(r1)),
		planeFromRow(r3.Sub(r1)),
		planeFromRow(r3.Add(r2)),
		planeFromRow(r3.Sub(r2)),
	}
}

// IntersectsSphere reports whether s is at least partly inside.
func (f Frustum) IntersectsSphere(s Sphere) bool {
	for _, p := range f {
		if p.Distance(s.Center) < -s.Radius {
			return false
		}
	}
	return true
}

// IntersectsAABB reports whether b is at least partly inside. It is
// conservative: boxes near a frustum corner may be reported as visible.
func (f Frustum) IntersectsAABB(b AABB) bool {
	if b.IsEmpty() {
		return false
	}
	for _, p := range f {
		var pos mgl32.Vec3
		for i := 0; i < 3; i++ {
			if p.Normal[i] >= 0 {
				pos[i] = b.Max[i]
			} else {
				pos[i] = b.Min[i]
			}
		}
		if p.Distance(pos) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether pt lies inside every plane.
func (f Frustum) ContainsPoint(pt mgl32.Vec3) bool {
	for _, p := range f {
		if p.Distance(pt) < 0 {
			return false
		}
	}
	return true
}

// Corners returns the world-space corners of the volume whose
// world-to-projection matrix is viewProj.
func Corners(viewProj mgl32.Mat4) [8]mgl32.Vec3 {
	inv := viewProj.Inv()
	var out [8]mgl32.Vec3
	i := 0
	for _, z := range []float32{-1, 1} {
		for _, y := range []float32{-1, 1} {
			for _, x := range []float32{-1, 1} {
				out[i] = mgl32.TransformCoordinate(mgl32.Vec3{x, y, z}, inv)
				i++
			}
		}
	}
	return out
}

// VolumeAABB bounds the volume whose world-to-projection matrix is viewProj.
func VolumeAABB(viewProj mgl32.Mat4) AABB {
	c := Corners(viewProj)
	return FromPoints(c[:]...)
}
