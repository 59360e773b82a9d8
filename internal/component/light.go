package component

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lumen3d/lumen/internal/geom"
)

// LightType tags the three light kinds. The LightPass keeps one buffer pair
// and one shadow atlas per type.
type LightType uint8

const (
	DirectionalLightType LightType = iota
	PointLightType
	SpotLightType
	LightTypeCount
)

func (t LightType) String() string {
	switch t {
	case DirectionalLightType:
		return "directional"
	case PointLightType:
		return "point"
	case SpotLightType:
		return "spot"
	default:
		return "unknown"
	}
}

// Light holds the fields every light kind shares.
type Light struct {
	Color       mgl32.Vec3
	Intensity   float32
	CastShadows bool
	Active      bool
}

func defaultLight() Light {
	return Light{Color: mgl32.Vec3{1, 1, 1}, Intensity: 1, Active: true}
}

// Radiance is Color scaled by Intensity.
func (l *Light) Radiance() mgl32.Vec3 { return l.Color.Mul(l.Intensity) }

const minLightNear = 0.01

// DirectionalLight shines along its transform's -Z axis. Its shadow volume
// is an orthographic box Size wide and Depth long in front of the light.
type DirectionalLight struct {
	Light

	size  mgl32.Vec2
	depth float32
	aabb  geom.AABB
}

func NewDirectionalLight(size mgl32.Vec2, depth float32) DirectionalLight {
	l := DirectionalLight{Light: defaultLight()}
	l.SetProjection(size, depth)
	return l
}

func (l *DirectionalLight) Size() mgl32.Vec2 { return l.size }
func (l *DirectionalLight) Depth() float32   { return l.depth }
func (l *DirectionalLight) AABB() geom.AABB  { return l.aabb }

func (l *DirectionalLight) SetProjection(size mgl32.Vec2, depth float32) {
	l.size = mgl32.Vec2{math32.Max(size[0], minLightNear), math32.Max(size[1], minLightNear)}
	l.depth = math32.Max(depth, 2*minLightNear)
	w, h := l.size[0]/2, l.size[1]/2
	l.aabb = geom.AABB{Min: mgl32.Vec3{-w, -h, -l.depth}, Max: mgl32.Vec3{w, h, 0}}
}

// LightToProjection maps light view space to clip space.
func (l *DirectionalLight) LightToProjection() mgl32.Mat4 {
	w, h := l.size[0]/2, l.size[1]/2
	return mgl32.Ortho(-w, w, -h, h, minLightNear, l.depth)
}

// PointLight radiates in every direction up to Range. Shadows use a cube map.
type PointLight struct {
	Light

	near   float32
	rng    float32
	aabb   geom.AABB
	sphere geom.Sphere
}

func NewPointLight(near, rng float32) PointLight {
	l := PointLight{Light: defaultLight()}
	l.SetRange(near, rng)
	return l
}

func (l *PointLight) Near() float32       { return l.near }
func (l *PointLight) Range() float32      { return l.rng }
func (l *PointLight) AABB() geom.AABB     { return l.aabb }
func (l *PointLight) Sphere() geom.Sphere { return l.sphere }

// SetRange sets the clipping distances and recomputes the bounds.
func (l *PointLight) SetRange(near, rng float32) {
	l.near = math32.Max(near, minLightNear)
	l.rng = math32.Max(rng, l.near+minLightNear)
	l.aabb = geom.CubeAABB(l.rng)
	l.sphere = geom.Sphere{Radius: l.rng}
}

// LightToProjection is the projection of one cube face.
func (l *PointLight) LightToProjection() mgl32.Mat4 {
	return mgl32.Perspective(math32.Pi/2, 1, l.near, l.rng)
}

// SpotLight is a cone along -Z with full intensity inside Penumbra and
// falloff out to Umbra. Both are half-angles in radians.
type SpotLight struct {
	Light

	near     float32
	rng      float32
	umbra    float32
	penumbra float32
	aabb     geom.AABB
	sphere   geom.Sphere
}

func NewSpotLight(near, rng, umbra, penumbra float32) SpotLight {
	l := SpotLight{Light: defaultLight()}
	l.SetRange(near, rng)
	l.SetAngles(umbra, penumbra)
	return l
}

func (l *SpotLight) Near() float32       { return l.near }
func (l *SpotLight) Range() float32      { return l.rng }
func (l *SpotLight) Umbra() float32      { return l.umbra }
func (l *SpotLight) Penumbra() float32   { return l.penumbra }
func (l *SpotLight) AABB() geom.AABB     { return l.aabb }
func (l *SpotLight) Sphere() geom.Sphere { return l.sphere }

func (l *SpotLight) SetRange(near, rng float32) {
	l.near = math32.Max(near, minLightNear)
	l.rng = math32.Max(rng, l.near+minLightNear)
	l.updateBounds()
}

// SetAngles clamps umbra below a right angle and penumbra to umbra.
func (l *SpotLight) SetAngles(umbra, penumbra float32) {
	l.umbra = math32.Min(math32.Max(umbra, 0.001), math32.Pi/2-0.001)
	l.penumbra = math32.Min(math32.Max(penumbra, 0), l.umbra)
	l.updateBounds()
}

func (l *SpotLight) updateBounds() {
	if l.umbra == 0 {
		return
	}
	r := l.rng * math32.Tan(l.umbra)
	l.aabb = geom.AABB{Min: mgl32.Vec3{-r, -r, -l.rng}, Max: mgl32.Vec3{r, r, 0}}
	l.sphere = geom.ConeSphere(l.umbra, l.rng)
}

// LightToProjection covers the umbra cone.
func (l *SpotLight) LightToProjection() mgl32.Mat4 {
	return mgl32.Perspective(2*l.umbra, 1, l.near, l.rng)
}
