package render

import (
	"fmt"

	"github.com/lumen3d/lumen/internal/component"
	"github.com/lumen3d/lumen/internal/config"
	"github.com/lumen3d/lumen/internal/core/ecs"
	"go.uber.org/zap"
)

// Stats describes the last rendered frame.
type Stats struct {
	Frame         uint64
	Cameras       int
	Draws         int
	ShadowCameras int
	ShadowDraws   int
	Boxes         int
	Lights        LightSummary
}

// Renderer draws the scene once per active camera: light pass, the pass
// selected by the camera's render mode, sky, then debug overlays.
type Renderer struct {
	dev   Device
	scene Scene
	cfg   config.RenderingConfig
	log   *zap.Logger

	depth      *DepthPass
	light      *LightPass
	forward    *ForwardPass
	deferred   *DeferredPass
	falseColor *FalseColorPass
	sky        *SkyPass
	bounds     *BoundingVolumePass
	text       *TextPass

	camera constantBuffer[CameraData]
	stats  Stats
}

func NewRenderer(dev Device, scene Scene, cfg config.RenderingConfig, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	depth := NewDepthPass(dev, scene)
	return &Renderer{
		dev:        dev,
		scene:      scene,
		cfg:        cfg,
		log:        log,
		depth:      depth,
		light:      NewLightPass(dev, scene, depth, cfg, log.Named("light")),
		forward:    NewForwardPass(dev, scene),
		deferred:   NewDeferredPass(dev, scene),
		falseColor: NewFalseColorPass(dev, scene),
		sky:        NewSkyPass(dev),
		bounds:     NewBoundingVolumePass(dev, scene),
		text:       NewTextPass(dev),
	}
}

// SetConfig swaps the rendering settings used from the next frame on.
func (r *Renderer) SetConfig(cfg config.RenderingConfig) {
	r.cfg = cfg
	r.light.SetConfig(cfg)
}

func (r *Renderer) Config() config.RenderingConfig { return r.cfg }
func (r *Renderer) LightPass() *LightPass          { return r.light }
func (r *Renderer) Stats() Stats                   { return r.stats }

type activeCamera struct {
	handle ecs.Handle
	cam    *component.Camera
	tr     *component.Transform
}

// Render draws one frame. Device failures abort the frame.
func (r *Renderer) Render() error {
	var cams []activeCamera
	ecs.ForEach2(r.scene.World, func(h ecs.Handle, tr *component.Transform, c *component.Camera) {
		if tr.Active && c.Active {
			cams = append(cams, activeCamera{handle: h, cam: c, tr: tr})
		}
	})

	r.stats = Stats{Frame: r.stats.Frame + 1, Cameras: len(cams)}
	for _, ac := range cams {
		if err := r.renderCamera(ac); err != nil {
			return fmt.Errorf("camera %s: %w", ac.handle, err)
		}
	}
	return nil
}

func (r *Renderer) renderCamera(ac activeCamera) error {
	cam := ac.cam
	if err := r.light.Render(cam.ViewProj); err != nil {
		return fmt.Errorf("light pass: %w", err)
	}
	r.stats.ShadowCameras += len(r.light.ShadowCameras())
	r.stats.ShadowDraws += r.light.CasterDraws()
	r.stats.Lights = r.light.Summary()

	r.dev.BindViewport(cam.Viewport)
	r.dev.BindRasterState(RasterState{Cull: CullBack})
	err := r.camera.Update(r.dev, CameraData{
		WorldToView:       cam.View,
		ViewToProjection:  cam.Proj,
		WorldToProjection: cam.ViewProj,
		Position:          ac.tr.WorldPosition(),
	})
	if err != nil {
		return err
	}
	r.dev.BindConstantBuffer(SlotCamera, r.camera.ID())

	var n int
	switch cam.RenderMode {
	case component.Deferred:
		n, err = r.deferred.Render(cam)
		if err == nil {
			var m int
			m, err = r.forward.RenderTransparent(cam)
			n += m
		}
	case component.FalseColor:
		n, err = r.falseColor.Render(cam)
	default:
		n, err = r.forward.Render(cam)
	}
	r.stats.Draws += n
	if err != nil {
		return fmt.Errorf("%s pass: %w", cam.RenderMode, err)
	}

	r.sky.Render(r.cfg.Sky)

	if r.cfg.DrawBoundingVolumes {
		boxes, err := r.bounds.Render(cam)
		r.stats.Boxes += boxes
		if err != nil {
			return fmt.Errorf("bounding volume pass: %w", err)
		}
	}
	if r.cfg.DrawStats {
		if err := r.text.Render(r.statLines(cam)); err != nil {
			return fmt.Errorf("text pass: %w", err)
		}
	}
	return nil
}

func (r *Renderer) statLines(cam *component.Camera) []TextLine {
	l := r.stats.Lights
	x, y := cam.Viewport.X+8, cam.Viewport.Y+8
	return []TextLine{
		{X: x, Y: y, Text: fmt.Sprintf("frame %d  %s", r.stats.Frame, cam.RenderMode)},
		{X: x, Y: y + 16, Text: fmt.Sprintf("lights d=%d/%d p=%d/%d s=%d/%d",
			l.Directional, l.ShadowedDirectional, l.Point, l.ShadowedPoint, l.Spot, l.ShadowedSpot)},
		{X: x, Y: y + 32, Text: fmt.Sprintf("draws %d  shadow %d", r.stats.Draws, r.stats.ShadowDraws)},
	}
}
