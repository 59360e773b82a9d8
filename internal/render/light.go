package render

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lumen3d/lumen/internal/component"
	"github.com/lumen3d/lumen/internal/config"
	"github.com/lumen3d/lumen/internal/core/ecs"
	"github.com/lumen3d/lumen/internal/core/event"
	"github.com/lumen3d/lumen/internal/geom"
	"go.uber.org/zap"
)

// ShadowCamera is one depth render into a shadow atlas slice.
type ShadowCamera struct {
	Type              component.LightType
	Light             ecs.Handle
	Map               int
	Face              int
	WorldToLight      mgl32.Mat4
	LightToProjection mgl32.Mat4
}

// LightPass gathers the lights visible to a camera, renders their shadow
// maps and binds the light buffers and atlases for the shading passes.
// All per-frame state is rebuilt on every Render.
type LightPass struct {
	dev   Device
	scene Scene
	depth *DepthPass
	cfg   config.RenderingConfig
	log   *zap.Logger

	atlases [component.LightTypeCount]*ShadowAtlas

	directionalBuf         *dynamicBuffer[DirectionalLightData]
	shadowedDirectionalBuf *dynamicBuffer[ShadowedDirectionalLightData]
	pointBuf               *dynamicBuffer[PointLightData]
	shadowedPointBuf       *dynamicBuffer[ShadowedPointLightData]
	spotBuf                *dynamicBuffer[SpotLightData]
	shadowedSpotBuf        *dynamicBuffer[ShadowedSpotLightData]
	summaryBuf             constantBuffer[LightSummary]

	directional         []DirectionalLightData
	shadowedDirectional []ShadowedDirectionalLightData
	point               []PointLightData
	shadowedPoint       []ShadowedPointLightData
	spot                []SpotLightData
	shadowedSpot        []ShadowedSpotLightData
	cameras             []ShadowCamera
	casterDraws         int
}

func NewLightPass(dev Device, scene Scene, depth *DepthPass, cfg config.RenderingConfig, log *zap.Logger) *LightPass {
	if log == nil {
		log = zap.NewNop()
	}
	p := &LightPass{
		dev:                    dev,
		scene:                  scene,
		depth:                  depth,
		cfg:                    cfg,
		log:                    log,
		directionalBuf:         newDynamicBuffer[DirectionalLightData](StructuredBuffer),
		shadowedDirectionalBuf: newDynamicBuffer[ShadowedDirectionalLightData](StructuredBuffer),
		pointBuf:               newDynamicBuffer[PointLightData](StructuredBuffer),
		shadowedPointBuf:       newDynamicBuffer[ShadowedPointLightData](StructuredBuffer),
		spotBuf:                newDynamicBuffer[SpotLightData](StructuredBuffer),
		shadowedSpotBuf:        newDynamicBuffer[ShadowedSpotLightData](StructuredBuffer),
	}
	for t := range p.atlases {
		p.atlases[t] = NewShadowAtlas(component.LightType(t))
	}
	return p
}

// SetConfig takes effect on the next Render. Changed shadow settings
// rebuild the affected atlases then.
func (p *LightPass) SetConfig(cfg config.RenderingConfig) { p.cfg = cfg }

func (p *LightPass) shadowConfig(t component.LightType) config.ShadowMapConfig {
	switch t {
	case component.DirectionalLightType:
		return p.cfg.DirectionalShadows
	case component.PointLightType:
		return p.cfg.PointShadows
	default:
		return p.cfg.SpotShadows
	}
}

// Render runs the pass for a camera with the given world-to-projection
// matrix. Device creation failures are returned.
func (p *LightPass) Render(worldToProjection mgl32.Mat4) error {
	p.reset()
	frustum := geom.NewFrustum(worldToProjection)

	p.gatherDirectional()
	p.gatherPoint(frustum)
	p.gatherSpot(frustum)

	if err := p.provision(); err != nil {
		return err
	}
	if err := p.renderShadowMaps(); err != nil {
		return err
	}
	return p.publish()
}

func (p *LightPass) reset() {
	p.directional = p.directional[:0]
	p.shadowedDirectional = p.shadowedDirectional[:0]
	p.point = p.point[:0]
	p.shadowedPoint = p.shadowedPoint[:0]
	p.spot = p.spot[:0]
	p.shadowedSpot = p.shadowedSpot[:0]
	p.cameras = p.cameras[:0]
	p.casterDraws = 0
}

// gatherDirectional keeps every active directional light. Directional
// lights light the whole scene, so they are not culled.
func (p *LightPass) gatherDirectional() {
	ecs.ForEach2(p.scene.World, func(h ecs.Handle, tr *component.Transform, l *component.DirectionalLight) {
		if !tr.Active || !l.Active {
			return
		}
		data := DirectionalLightData{
			Radiance:  l.Radiance(),
			Direction: tr.Forward(),
		}
		if !l.CastShadows {
			p.directional = append(p.directional, data)
			return
		}
		worldToLight := geom.WorldToView(tr.World)
		lightToProj := l.LightToProjection()
		p.cameras = append(p.cameras, ShadowCamera{
			Type:              component.DirectionalLightType,
			Light:             h,
			Map:               len(p.shadowedDirectional),
			WorldToLight:      worldToLight,
			LightToProjection: lightToProj,
		})
		p.shadowedDirectional = append(p.shadowedDirectional, ShadowedDirectionalLightData{
			DirectionalLightData: data,
			WorldToProjection:    lightToProj.Mul4(worldToLight),
		})
	})
}

// gatherPoint drops point lights whose range sphere lies outside the
// camera frustum. Shadowed survivors get one camera per cube face.
func (p *LightPass) gatherPoint(frustum geom.Frustum) {
	ecs.ForEach2(p.scene.World, func(h ecs.Handle, tr *component.Transform, l *component.PointLight) {
		if !tr.Active || !l.Active {
			return
		}
		pos := tr.WorldPosition()
		if !frustum.IntersectsSphere(geom.Sphere{Center: pos, Radius: l.Range()}) {
			return
		}
		data := PointLightData{
			Position: pos,
			Radiance: l.Radiance(),
			Range:    l.Range(),
		}
		if !l.CastShadows {
			p.point = append(p.point, data)
			return
		}
		lightToProj := l.LightToProjection()
		m := len(p.shadowedPoint)
		for face, f := range geom.CubeFaces {
			p.cameras = append(p.cameras, ShadowCamera{
				Type:              component.PointLightType,
				Light:             h,
				Map:               m,
				Face:              face,
				WorldToLight:      geom.LookDirection(pos, f.Forward, f.Up),
				LightToProjection: lightToProj,
			})
		}
		p.shadowedPoint = append(p.shadowedPoint, ShadowedPointLightData{
			PointLightData: data,
			WorldToLight:   mgl32.Translate3D(-pos[0], -pos[1], -pos[2]),
			Projection:     mgl32.Vec2{lightToProj[10], lightToProj[14]},
		})
	})
}

// gatherSpot drops spot lights whose light volume lies outside the camera
// frustum.
func (p *LightPass) gatherSpot(frustum geom.Frustum) {
	ecs.ForEach2(p.scene.World, func(h ecs.Handle, tr *component.Transform, l *component.SpotLight) {
		if !tr.Active || !l.Active {
			return
		}
		worldToLight := geom.WorldToView(tr.World)
		lightToProj := l.LightToProjection()
		worldToProj := lightToProj.Mul4(worldToLight)
		if !frustum.IntersectsAABB(geom.VolumeAABB(worldToProj)) {
			return
		}
		data := SpotLightData{
			Position:    tr.WorldPosition(),
			Direction:   tr.Forward(),
			Radiance:    l.Radiance(),
			Range:       l.Range(),
			CosUmbra:    math32.Cos(l.Umbra()),
			CosPenumbra: math32.Cos(l.Penumbra()),
		}
		if !l.CastShadows {
			p.spot = append(p.spot, data)
			return
		}
		p.cameras = append(p.cameras, ShadowCamera{
			Type:              component.SpotLightType,
			Light:             h,
			Map:               len(p.shadowedSpot),
			WorldToLight:      worldToLight,
			LightToProjection: lightToProj,
		})
		p.shadowedSpot = append(p.shadowedSpot, ShadowedSpotLightData{
			SpotLightData:     data,
			WorldToProjection: worldToProj,
		})
	})
}

func (p *LightPass) required(t component.LightType) int {
	switch t {
	case component.DirectionalLightType:
		return len(p.shadowedDirectional)
	case component.PointLightType:
		return len(p.shadowedPoint)
	default:
		return len(p.shadowedSpot)
	}
}

func (p *LightPass) provision() error {
	for _, a := range p.atlases {
		cfg := p.shadowConfig(a.Type())
		rebuilt, err := a.Provision(p.dev, p.required(a.Type()), cfg)
		if err != nil {
			return err
		}
		if !rebuilt {
			continue
		}
		p.log.Debug("shadow atlas rebuilt",
			zap.Stringer("type", a.Type()),
			zap.Int("capacity", a.Capacity()),
			zap.Uint32("resolution", cfg.Resolution))
		event.Enqueue(p.scene.World.Events, ShadowAtlasResized{
			Type:     a.Type(),
			Capacity: a.Capacity(),
			Config:   cfg,
		})
	}
	return nil
}

// renderShadowMaps draws every shadow camera in the order it was queued.
// Viewport and raster state are bound once per light type.
func (p *LightPass) renderShadowMaps() error {
	if len(p.cameras) == 0 {
		return nil
	}
	p.depth.BindFixedState()
	current := component.LightTypeCount
	for _, cam := range p.cameras {
		atlas := p.atlases[cam.Type]
		if cam.Type != current {
			p.dev.BindViewport(atlas.Viewport())
			p.dev.BindRasterState(atlas.RasterState())
			current = cam.Type
		}
		p.dev.BindDepthTarget(atlas.Texture(), atlas.Slice(cam.Map, cam.Face))
		n, err := p.depth.RenderShadowCasters(cam.WorldToLight, cam.LightToProjection)
		if err != nil {
			return fmt.Errorf("%s shadow map %d face %d: %w", cam.Type, cam.Map, cam.Face, err)
		}
		p.casterDraws += n
	}
	return nil
}

func (p *LightPass) publish() error {
	if err := p.directionalBuf.Update(p.dev, p.directional); err != nil {
		return err
	}
	if err := p.shadowedDirectionalBuf.Update(p.dev, p.shadowedDirectional); err != nil {
		return err
	}
	if err := p.pointBuf.Update(p.dev, p.point); err != nil {
		return err
	}
	if err := p.shadowedPointBuf.Update(p.dev, p.shadowedPoint); err != nil {
		return err
	}
	if err := p.spotBuf.Update(p.dev, p.spot); err != nil {
		return err
	}
	if err := p.shadowedSpotBuf.Update(p.dev, p.shadowedSpot); err != nil {
		return err
	}
	if err := p.summaryBuf.Update(p.dev, p.Summary()); err != nil {
		return err
	}

	p.dev.BindStructuredBuffer(SlotDirectionalLights, p.directionalBuf.ID())
	p.dev.BindStructuredBuffer(SlotShadowedDirectionalLights, p.shadowedDirectionalBuf.ID())
	p.dev.BindStructuredBuffer(SlotPointLights, p.pointBuf.ID())
	p.dev.BindStructuredBuffer(SlotShadowedPointLights, p.shadowedPointBuf.ID())
	p.dev.BindStructuredBuffer(SlotSpotLights, p.spotBuf.ID())
	p.dev.BindStructuredBuffer(SlotShadowedSpotLights, p.shadowedSpotBuf.ID())
	p.dev.BindShaderResource(SlotDirectionalShadowMaps, p.atlases[component.DirectionalLightType].Texture())
	p.dev.BindShaderResource(SlotPointShadowMaps, p.atlases[component.PointLightType].Texture())
	p.dev.BindShaderResource(SlotSpotShadowMaps, p.atlases[component.SpotLightType].Texture())
	p.dev.BindConstantBuffer(SlotLightSummary, p.summaryBuf.ID())
	return nil
}

// Summary returns the light counts and fog settings of the last Render.
func (p *LightPass) Summary() LightSummary {
	return LightSummary{
		Directional:         uint32(len(p.directional)),
		ShadowedDirectional: uint32(len(p.shadowedDirectional)),
		Point:               uint32(len(p.point)),
		ShadowedPoint:       uint32(len(p.shadowedPoint)),
		Spot:                uint32(len(p.spot)),
		ShadowedSpot:        uint32(len(p.shadowedSpot)),
		FogDensity:          p.cfg.Fog.Density,
		FogColor:            mgl32.Vec3(p.cfg.Fog.Color),
	}
}

func (p *LightPass) Atlas(t component.LightType) *ShadowAtlas { return p.atlases[t] }

func (p *LightPass) DirectionalLights() []DirectionalLightData { return p.directional }
func (p *LightPass) ShadowedDirectionalLights() []ShadowedDirectionalLightData {
	return p.shadowedDirectional
}
func (p *LightPass) PointLights() []PointLightData                 { return p.point }
func (p *LightPass) ShadowedPointLights() []ShadowedPointLightData { return p.shadowedPoint }
func (p *LightPass) SpotLights() []SpotLightData                   { return p.spot }
func (p *LightPass) ShadowedSpotLights() []ShadowedSpotLightData   { return p.shadowedSpot }

// ShadowCameras returns the shadow cameras of the last Render in render order.
func (p *LightPass) ShadowCameras() []ShadowCamera { return p.cameras }

// CasterDraws is the number of depth draws issued for shadow maps.
func (p *LightPass) CasterDraws() int { return p.casterDraws }
