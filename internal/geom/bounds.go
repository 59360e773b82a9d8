// Package geom holds the bounding volumes, frustum tests and transform
// composition shared by the components, systems and render passes.
package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyAABB returns a box that contains nothing and grows on Expand.
func EmptyAABB() AABB {
	inf := math32.Inf(1)
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// CubeAABB returns the box of half-size h centred on the origin.
func CubeAABB(h float32) AABB {
	return AABB{Min: mgl32.Vec3{-h, -h, -h}, Max: mgl32.Vec3{h, h, h}}
}

func FromPoints(points ...mgl32.Vec3) AABB {
	b := EmptyAABB()
	for _, p := range points {
		b = b.Expand(p)
	}
	return b
}

func (b AABB) IsEmpty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

func (b AABB) Expand(p mgl32.Vec3) AABB {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
	return b
}

func (b AABB) Center() mgl32.Vec3  { return b.Min.Add(b.Max).Mul(0.5) }
func (b AABB) Extents() mgl32.Vec3 { return b.Max.Sub(b.Min).Mul(0.5) }

func (b AABB) Corners() [8]mgl32.Vec3 {
	return [8]mgl32.Vec3{
		{b.Min[0], b.Min[1], b.Min[2]},
		{b.Max[0], b.Min[1], b.Min[2]},
		{b.Min[0], b.Max[1], b.Min[2]},
		{b.Max[0], b.Max[1], b.Min[2]},
		{b.Min[0], b.Min[1], b.Max[2]},
		{b.Max[0], b.Min[1], b.Max[2]},
		{b.Min[0], b.Max[1], b.Max[2]},
		{b.Max[0], b.Max[1], b.Max[2]},
	}
}

// Transform returns the box spanning the eight transformed corners.
func (b AABB) Transform(m mgl32.Mat4) AABB {
	if b.IsEmpty() {
		return b
	}
	out := EmptyAABB()
	for _, c := range b.Corners() {
		out = out.Expand(mgl32.TransformCoordinate(c, m))
	}
	return out
}

// Sphere returns the sphere enclosing the box.
func (b AABB) Sphere() Sphere {
	return Sphere{Center: b.Center(), Radius: b.Extents().Len()}
}

func (b AABB) ContainsPoint(p mgl32.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Sphere is a bounding sphere.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// Transform moves the centre by m and scales the radius by m's largest
// axis scale.
func (s Sphere) Transform(m mgl32.Mat4) Sphere {
	return Sphere{
		Center: mgl32.TransformCoordinate(s.Center, m),
		Radius: s.Radius * MaxScale(m),
	}
}

// MaxScale returns the length of m's longest basis vector.
func MaxScale(m mgl32.Mat4) float32 {
	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	return math32.Max(sx, math32.Max(sy, sz))
}

// ConeSphere returns the smallest sphere enclosing a cone whose apex sits at
// the origin, opening along -Z with the given half-angle and length.
func ConeSphere(halfAngle, length float32) Sphere {
	if halfAngle > math32.Pi/4 {
		r := length * math32.Tan(halfAngle)
		return Sphere{Center: mgl32.Vec3{0, 0, -length}, Radius: r}
	}
	cos := math32.Cos(halfAngle)
	r := length / (2 * cos * cos)
	return Sphere{Center: mgl32.Vec3{0, 0, -r}, Radius: r}
}
