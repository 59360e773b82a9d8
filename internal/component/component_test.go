package component

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lumen3d/lumen/internal/geom"
	"github.com/stretchr/testify/assert"
)

func TestTransformSettersMarkDirty(t *testing.T) {
	tr := NewTransform()
	tr.NeedsUpdate = false

	tr.SetTranslation(mgl32.Vec3{1, 2, 3})
	assert.True(t, tr.NeedsUpdate)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, tr.Translation())

	tr.NeedsUpdate = false
	tr.AddRotation(mgl32.Vec3{0, 1, 0})
	assert.True(t, tr.NeedsUpdate)

	tr.NeedsUpdate = false
	tr.SetParent(42)
	assert.True(t, tr.NeedsUpdate)
}

func TestTransformLocal(t *testing.T) {
	tr := NewTransformTRS(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{2, 2, 2})
	p := mgl32.TransformCoordinate(mgl32.Vec3{1, 1, 1}, tr.Local())
	assert.Equal(t, mgl32.Vec3{3, 2, 2}, p)
}

func TestProjectionMatrix(t *testing.T) {
	persp := NewPerspectiveCamera(mgl32.DegToRad(90), 1, 1, 10)
	assert.True(t, geom.Approx(mgl32.Perspective(mgl32.DegToRad(90), 1, 1, 10), ProjectionMatrix(&persp), 1e-6))

	ortho := NewOrthographicCamera(4, 2, 0, 10)
	assert.True(t, geom.Approx(mgl32.Ortho(-2, 2, -1, 1, 0, 10), ProjectionMatrix(&ortho), 1e-6))

	noAspect := NewPerspectiveCamera(1, 0, 1, 10)
	noAspect.Viewport = Viewport{Width: 200, Height: 100}
	assert.True(t, geom.Approx(mgl32.Perspective(1, 2, 1, 10), ProjectionMatrix(&noAspect), 1e-6))
}

func TestParseRenderMode(t *testing.T) {
	for _, m := range []RenderMode{Forward, Deferred, FalseColor} {
		got, ok := ParseRenderMode(m.String())
		assert.True(t, ok)
		assert.Equal(t, m, got)
	}
	_, ok := ParseRenderMode("raytraced")
	assert.False(t, ok)
}

func TestPointLightBounds(t *testing.T) {
	l := NewPointLight(0.1, 5)
	assert.Equal(t, float32(5), l.Sphere().Radius)
	assert.Equal(t, geom.CubeAABB(5), l.AABB())

	l.SetRange(0.1, 8)
	assert.Equal(t, float32(8), l.Sphere().Radius)
	assert.Equal(t, geom.CubeAABB(8), l.AABB())
}

func TestSpotLightBounds(t *testing.T) {
	l := NewSpotLight(0.1, 10, math32.Pi/4, math32.Pi/8)
	assert.InDelta(t, 10, l.AABB().Max[0], 1e-4)
	assert.Equal(t, float32(-10), l.AABB().Min[2])

	l.SetAngles(math32.Pi, 2*math32.Pi)
	assert.Less(t, l.Umbra(), float32(math32.Pi/2))
	assert.Equal(t, l.Umbra(), l.Penumbra())
}

func TestLightRangeClamps(t *testing.T) {
	l := NewPointLight(-1, 0)
	assert.Greater(t, l.Near(), float32(0))
	assert.Greater(t, l.Range(), l.Near())
}

func TestMaterialTextures(t *testing.T) {
	m := DefaultMaterial()
	assert.False(t, m.HasTexture(BaseColorTexture))
	m.Textures[NormalTexture] = "brick_n.png"
	assert.True(t, m.HasTexture(NormalTexture))
	assert.False(t, m.HasTexture(MaxTextures))
}
