package render

import (
	"fmt"

	"github.com/lumen3d/lumen/internal/component"
	"github.com/lumen3d/lumen/internal/config"
)

// ShadowAtlas is a fixed-capacity array of depth maps for one light type.
// A point-light map is a cube, so it spans six slices.
type ShadowAtlas struct {
	lightType   component.LightType
	facesPerMap int

	texture  TextureID
	capacity int
	cfg      config.ShadowMapConfig
}

func NewShadowAtlas(t component.LightType) *ShadowAtlas {
	faces := 1
	if t == component.PointLightType {
		faces = 6
	}
	return &ShadowAtlas{lightType: t, facesPerMap: faces}
}

func (a *ShadowAtlas) Type() component.LightType      { return a.lightType }
func (a *ShadowAtlas) Texture() TextureID             { return a.texture }
func (a *ShadowAtlas) Capacity() int                  { return a.capacity }
func (a *ShadowAtlas) Config() config.ShadowMapConfig { return a.cfg }
func (a *ShadowAtlas) FacesPerMap() int               { return a.facesPerMap }
func (a *ShadowAtlas) Slices() int                    { return a.capacity * a.facesPerMap }

// Slice returns the texture slice of one face of one map.
func (a *ShadowAtlas) Slice(m, face int) int { return m*a.facesPerMap + face }

// Provision makes room for required maps under cfg, then clears every
// slice. The atlas is rebuilt at exactly max(required, 1) maps when it is
// too small or cfg changed; a shrinking requirement alone keeps it as is.
// It reports whether the atlas was rebuilt.
func (a *ShadowAtlas) Provision(dev Device, required int, cfg config.ShadowMapConfig) (bool, error) {
	rebuilt := false
	if a.capacity == 0 || required > a.capacity || cfg != a.cfg {
		size := max(required, 1)
		tex, err := dev.CreateDepthAtlas(cfg.Resolution, size*a.facesPerMap)
		if err != nil {
			return false, fmt.Errorf("create %s shadow atlas (%d maps): %w", a.lightType, size, err)
		}
		if a.capacity != 0 {
			dev.ReleaseTexture(a.texture)
		}
		a.texture = tex
		a.capacity = size
		a.cfg = cfg
		rebuilt = true
	}
	for i := 0; i < a.Slices(); i++ {
		dev.ClearDepth(a.texture, i)
	}
	return rebuilt, nil
}

// RasterState is the depth-biased state for rendering into the atlas.
func (a *ShadowAtlas) RasterState() RasterState {
	return RasterState{
		Cull:                 CullBack,
		DepthBias:            a.cfg.DepthBias,
		SlopeScaledDepthBias: a.cfg.SlopeScaledDepthBias,
		DepthBiasClamp:       a.cfg.DepthBiasClamp,
	}
}

// Viewport covers one slice.
func (a *ShadowAtlas) Viewport() component.Viewport {
	r := float32(a.cfg.Resolution)
	return component.Viewport{Width: r, Height: r}
}

// ShadowAtlasResized is enqueued whenever an atlas is rebuilt.
type ShadowAtlasResized struct {
	Type     component.LightType
	Capacity int
	Config   config.ShadowMapConfig
}
