package geom

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func testCamera() mgl32.Mat4 {
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	return proj.Mul4(view)
}

func TestFrustumSphere(t *testing.T) {
	f := NewFrustum(testCamera())

	tests := []struct {
		name   string
		sphere Sphere
		want   bool
	}{
		{"in front", Sphere{Center: mgl32.Vec3{0, 0, -10}, Radius: 1}, true},
		{"behind eye", Sphere{Center: mgl32.Vec3{0, 0, 10}, Radius: 1}, false},
		{"straddles far plane", Sphere{Center: mgl32.Vec3{0, 0, -103}, Radius: 5}, true},
		{"past far plane", Sphere{Center: mgl32.Vec3{0, 0, -110}, Radius: 5}, false},
		{"far left", Sphere{Center: mgl32.Vec3{-50, 0, -10}, Radius: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.IntersectsSphere(tt.sphere))
		})
	}
}

func TestFrustumAABB(t *testing.T) {
	f := NewFrustum(testCamera())
	assert.True(t, f.IntersectsAABB(AABB{Min: mgl32.Vec3{-1, -1, -11}, Max: mgl32.Vec3{1, 1, -9}}))
	assert.False(t, f.IntersectsAABB(AABB{Min: mgl32.Vec3{-1, -1, 5}, Max: mgl32.Vec3{1, 1, 6}}))
	assert.False(t, f.IntersectsAABB(EmptyAABB()))
}

func TestCornersRoundTrip(t *testing.T) {
	vp := testCamera()
	b := VolumeAABB(vp)
	assert.InDelta(t, -100, b.Min[2], 1e-2)
	assert.InDelta(t, -0.1, b.Max[2], 1e-3)
	for _, c := range Corners(vp) {
		assert.True(t, b.ContainsPoint(c))
	}
}

func TestTRSOrder(t *testing.T) {
	m := TRS(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0, math32.Pi / 2, 0}, mgl32.Vec3{2, 2, 2})
	p := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, m)
	// scaled to 2, yawed onto -Z, then moved
	assert.InDelta(t, 1, p[0], 1e-5)
	assert.InDelta(t, 2, p[1], 1e-5)
	assert.InDelta(t, 1, p[2], 1e-5)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, Origin(m))
}

func TestAABBTransform(t *testing.T) {
	b := CubeAABB(1).Transform(mgl32.Translate3D(5, 0, 0).Mul4(mgl32.Scale3D(2, 1, 1)))
	assert.Equal(t, mgl32.Vec3{3, -1, -1}, b.Min)
	assert.Equal(t, mgl32.Vec3{7, 1, 1}, b.Max)
	assert.Equal(t, EmptyAABB(), EmptyAABB().Transform(mgl32.Ident4()))
}

func TestConeSphereContainsCone(t *testing.T) {
	for _, deg := range []float32{10, 30, 45, 60, 80} {
		half := mgl32.DegToRad(deg)
		s := ConeSphere(half, 10)
		r := 10 * math32.Tan(half)
		apex := mgl32.Vec3{}
		rim := mgl32.Vec3{r, 0, -10}
		assert.LessOrEqual(t, apex.Sub(s.Center).Len(), s.Radius+1e-3, "apex at %v deg", deg)
		assert.LessOrEqual(t, rim.Sub(s.Center).Len(), s.Radius+1e-3, "rim at %v deg", deg)
	}
}

func TestCubeFacesLookAlongAxes(t *testing.T) {
	for i, face := range CubeFaces {
		v := LookDirection(mgl32.Vec3{}, face.Forward, face.Up)
		p := mgl32.TransformCoordinate(face.Forward, v)
		assert.InDelta(t, -1, p[2], 1e-5, "face %d", i)
	}
}
