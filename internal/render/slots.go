package render

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Fixed pipeline slots shared with the shaders.
const (
	SlotCamera Slot = iota
	SlotObject
	SlotLightSummary
	SlotText
)

const (
	SlotDirectionalLights Slot = iota
	SlotShadowedDirectionalLights
	SlotPointLights
	SlotShadowedPointLights
	SlotSpotLights
	SlotShadowedSpotLights
	SlotDirectionalShadowMaps
	SlotPointShadowMaps
	SlotSpotShadowMaps
	SlotBaseColorTexture
	SlotMaterialTexture
	SlotNormalTexture
	SlotSkyTexture
	SlotGBuffer
)

type DirectionalLightData struct {
	Radiance  mgl32.Vec3
	Direction mgl32.Vec3
}

type ShadowedDirectionalLightData struct {
	DirectionalLightData
	WorldToProjection mgl32.Mat4
}

type PointLightData struct {
	Position mgl32.Vec3
	Radiance mgl32.Vec3
	Range    float32
}

// ShadowedPointLightData carries the two projection terms the shader needs
// to turn a cube-map sample back into view depth.
type ShadowedPointLightData struct {
	PointLightData
	WorldToLight mgl32.Mat4
	Projection   mgl32.Vec2
}

type SpotLightData struct {
	Position    mgl32.Vec3
	Direction   mgl32.Vec3
	Radiance    mgl32.Vec3
	Range       float32
	CosUmbra    float32
	CosPenumbra float32
}

type ShadowedSpotLightData struct {
	SpotLightData
	WorldToProjection mgl32.Mat4
}

// LightSummary is the light-count and fog constant buffer.
type LightSummary struct {
	Directional         uint32
	ShadowedDirectional uint32
	Point               uint32
	ShadowedPoint       uint32
	Spot                uint32
	ShadowedSpot        uint32
	FogDensity          float32
	FogColor            mgl32.Vec3
}

// CameraData is bound once per camera.
type CameraData struct {
	WorldToView       mgl32.Mat4
	ViewToProjection  mgl32.Mat4
	WorldToProjection mgl32.Mat4
	Position          mgl32.Vec3
}

// ObjectData is updated per draw.
type ObjectData struct {
	ObjectToWorld      mgl32.Mat4
	ObjectToProjection mgl32.Mat4
	BaseColor          mgl32.Vec4
	Roughness          float32
	Metalness          float32
}
