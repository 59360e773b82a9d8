package render

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lumen3d/lumen/internal/component"
	"github.com/lumen3d/lumen/internal/config"
	"github.com/lumen3d/lumen/internal/core/ecs"
	"github.com/lumen3d/lumen/internal/core/event"
	"github.com/lumen3d/lumen/internal/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	w      *ecs.ECS
	meshes *ecs.ResourcePool[component.Mesh]
	rec    *Recorder
	scene  Scene
	cfg    config.RenderingConfig
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	w := ecs.New(nil)
	meshes := ecs.NewResourcePool[component.Mesh](nil)
	return &fixture{
		w:      w,
		meshes: meshes,
		rec:    NewRecorder(),
		scene:  Scene{World: w, Meshes: meshes},
		cfg:    config.Default().Rendering,
	}
}

// place creates an entity with an already resolved transform.
func (f *fixture) place(t *testing.T, pos mgl32.Vec3) ecs.Handle {
	t.Helper()
	e := f.w.CreateEntity()
	tr := component.NewTransformTRS(pos, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	tr.World = tr.Local()
	tr.NeedsUpdate = false
	_, err := ecs.AddComponent(f.w, e, tr)
	require.NoError(t, err)
	return e
}

func (f *fixture) camera(t *testing.T, mode component.RenderMode) *component.Camera {
	t.Helper()
	e := f.place(t, mgl32.Vec3{})
	c := component.NewPerspectiveCamera(mgl32.DegToRad(60), 1, 0.1, 100)
	c.RenderMode = mode
	c.BRDF = "lambertian"
	c.Viewport = component.Viewport{Width: 640, Height: 640}
	c.View = geom.WorldToView(mgl32.Ident4())
	c.Proj = component.ProjectionMatrix(&c)
	c.ViewProj = c.Proj.Mul4(c.View)
	cam, err := ecs.AddComponent(f.w, e, c)
	require.NoError(t, err)
	return cam
}

func (f *fixture) pointLight(t *testing.T, pos mgl32.Vec3, rng float32, shadows bool) ecs.Handle {
	t.Helper()
	e := f.place(t, pos)
	l := component.NewPointLight(0.1, rng)
	l.CastShadows = shadows
	_, err := ecs.AddComponent(f.w, e, l)
	require.NoError(t, err)
	return e
}

func (f *fixture) model(t *testing.T, pos mgl32.Vec3, mat component.Material) {
	t.Helper()
	h, mesh := f.meshes.Add(component.Mesh{
		Name:       "cube",
		Resource:   7,
		IndexCount: 36,
		Bounds:     geom.CubeAABB(0.5),
	})
	e := f.place(t, pos)
	m := component.NewModel(h, mesh, mat)
	m.Children[0].AABB = mesh.Bounds.Transform(mgl32.Translate3D(pos[0], pos[1], pos[2]))
	_, err := ecs.AddComponent(f.w, e, m)
	require.NoError(t, err)
}

func pointShadows() config.ShadowMapConfig {
	return config.ShadowMapConfig{Resolution: 512, DepthBias: 100, SlopeScaledDepthBias: 1}
}

func TestShadowAtlasSizing(t *testing.T) {
	rec := NewRecorder()
	a := NewShadowAtlas(component.PointLightType)
	cfg := pointShadows()

	rebuilt, err := a.Provision(rec, 4, cfg)
	require.NoError(t, err)
	assert.True(t, rebuilt)
	assert.Equal(t, 4, a.Capacity())
	first := a.Texture()

	rec.Reset()
	rebuilt, err = a.Provision(rec, 2, cfg)
	require.NoError(t, err)
	assert.False(t, rebuilt, "fewer lights never shrink the atlas")
	assert.Equal(t, 4, a.Capacity())
	assert.Equal(t, first, a.Texture())
	assert.Equal(t, 0, rec.Count(OpCreateDepthAtlas))
	assert.Equal(t, 4*6, rec.Count(OpClearDepth), "every cube face is cleared")

	rec.Reset()
	rebuilt, err = a.Provision(rec, 6, cfg)
	require.NoError(t, err)
	assert.True(t, rebuilt)
	assert.Equal(t, 6, a.Capacity())
	slices, ok := rec.Slices(a.Texture())
	require.True(t, ok)
	assert.Equal(t, 36, slices)
	_, ok = rec.Slices(first)
	assert.False(t, ok, "old atlas released")
}

func TestShadowAtlasConfigChangeRebuildsToRequirement(t *testing.T) {
	rec := NewRecorder()
	a := NewShadowAtlas(component.SpotLightType)
	cfg := pointShadows()

	_, err := a.Provision(rec, 5, cfg)
	require.NoError(t, err)

	cfg.DepthBiasClamp = 0.5
	rebuilt, err := a.Provision(rec, 2, cfg)
	require.NoError(t, err)
	assert.True(t, rebuilt)
	assert.Equal(t, 2, a.Capacity(), "a config change rebuilds at the new, smaller size")

	cfg.Resolution = 256
	rebuilt, err = a.Provision(rec, 0, cfg)
	require.NoError(t, err)
	assert.True(t, rebuilt)
	assert.Equal(t, 1, a.Capacity(), "capacity never drops below one")

	rebuilt, err = a.Provision(rec, 0, cfg)
	require.NoError(t, err)
	assert.False(t, rebuilt)
}

func TestShadowAtlasCreateFailure(t *testing.T) {
	rec := NewRecorder()
	rec.FailCreate = ErrDeviceLost
	a := NewShadowAtlas(component.DirectionalLightType)

	_, err := a.Provision(rec, 1, pointShadows())
	assert.ErrorIs(t, err, ErrDeviceLost)
	assert.Equal(t, 0, a.Capacity())
}

func TestLightPassCullsFarPointLight(t *testing.T) {
	f := newFixture(t)
	cam := f.camera(t, component.Forward)
	f.pointLight(t, mgl32.Vec3{0, 0, -10}, 5, false)
	f.pointLight(t, mgl32.Vec3{0, 0, -(cam.Far + 10)}, 5, false)

	lp := NewLightPass(f.rec, f.scene, NewDepthPass(f.rec, f.scene), f.cfg, nil)
	require.NoError(t, lp.Render(cam.ViewProj))
	require.Len(t, lp.PointLights(), 1)
	assert.Equal(t, mgl32.Vec3{0, 0, -10}, lp.PointLights()[0].Position)

	// only the far light in the scene
	g := newFixture(t)
	cam = g.camera(t, component.Forward)
	g.pointLight(t, mgl32.Vec3{0, 0, -(cam.Far + 10)}, 5, true)
	lp = NewLightPass(g.rec, g.scene, NewDepthPass(g.rec, g.scene), g.cfg, nil)
	require.NoError(t, lp.Render(cam.ViewProj))
	assert.Empty(t, lp.PointLights())
	assert.Empty(t, lp.ShadowedPointLights())
	assert.Empty(t, lp.ShadowCameras())
	assert.Equal(t, 1, lp.Atlas(component.PointLightType).Capacity())
}

func TestLightPassShadowCameraOrder(t *testing.T) {
	f := newFixture(t)
	cam := f.camera(t, component.Forward)
	f.model(t, mgl32.Vec3{0, 0, -5}, component.DefaultMaterial())

	spot := f.place(t, mgl32.Vec3{0, 0, -1})
	sl := component.NewSpotLight(0.1, 20, mgl32.DegToRad(30), mgl32.DegToRad(20))
	sl.CastShadows = true
	_, err := ecs.AddComponent(f.w, spot, sl)
	require.NoError(t, err)

	point := f.pointLight(t, mgl32.Vec3{2, 0, -5}, 10, true)

	dir := f.place(t, mgl32.Vec3{0, 10, 0})
	dl := component.NewDirectionalLight(mgl32.Vec2{50, 50}, 100)
	dl.CastShadows = true
	_, err = ecs.AddComponent(f.w, dir, dl)
	require.NoError(t, err)

	lp := NewLightPass(f.rec, f.scene, NewDepthPass(f.rec, f.scene), f.cfg, nil)
	require.NoError(t, lp.Render(cam.ViewProj))

	cams := lp.ShadowCameras()
	require.Len(t, cams, 1+6+1)
	assert.Equal(t, component.DirectionalLightType, cams[0].Type)
	assert.Equal(t, dir, cams[0].Light)
	for face := 0; face < 6; face++ {
		c := cams[1+face]
		assert.Equal(t, component.PointLightType, c.Type)
		assert.Equal(t, point, c.Light)
		assert.Equal(t, face, c.Face)
	}
	assert.Equal(t, component.SpotLightType, cams[7].Type)
	assert.Equal(t, spot, cams[7].Light)

	targets := f.rec.Filter(OpBindDepthTarget)
	require.Len(t, targets, 8)
	pointTex := uint32(lp.Atlas(component.PointLightType).Texture())
	for face := 0; face < 6; face++ {
		assert.Equal(t, pointTex, targets[1+face].ID)
		assert.Equal(t, face, targets[1+face].Slice)
	}

	// one viewport and raster state per light type
	assert.Equal(t, 3, f.rec.Count(OpBindViewport))
	assert.Equal(t, 3, f.rec.Count(OpBindRasterState))

	s := lp.Summary()
	assert.Equal(t, uint32(1), s.ShadowedDirectional)
	assert.Equal(t, uint32(1), s.ShadowedPoint)
	assert.Equal(t, uint32(1), s.ShadowedSpot)
}

func TestLightPassPublishesFixedSlots(t *testing.T) {
	f := newFixture(t)
	cam := f.camera(t, component.Forward)
	lp := NewLightPass(f.rec, f.scene, NewDepthPass(f.rec, f.scene), f.cfg, nil)
	require.NoError(t, lp.Render(cam.ViewProj))

	var sb []Slot
	for _, c := range f.rec.Filter(OpBindStructuredBuffer) {
		sb = append(sb, c.Slot)
	}
	assert.Equal(t, []Slot{
		SlotDirectionalLights, SlotShadowedDirectionalLights,
		SlotPointLights, SlotShadowedPointLights,
		SlotSpotLights, SlotShadowedSpotLights,
	}, sb)

	var srv []Slot
	for _, c := range f.rec.Filter(OpBindShaderResource) {
		srv = append(srv, c.Slot)
	}
	assert.Equal(t, []Slot{SlotDirectionalShadowMaps, SlotPointShadowMaps, SlotSpotShadowMaps}, srv)
	assert.Equal(t, 1, f.rec.Count(OpBindConstantBuffer))
}

func TestLightPassAtlasEvents(t *testing.T) {
	f := newFixture(t)
	cam := f.camera(t, component.Forward)
	var resized []ShadowAtlasResized
	event.Subscribe(f.w.Events, func(ev ShadowAtlasResized) { resized = append(resized, ev) })

	lights := make([]ecs.Handle, 0, 4)
	for i := 0; i < 4; i++ {
		lights = append(lights, f.pointLight(t, mgl32.Vec3{float32(i), 0, -10}, 5, true))
	}
	lp := NewLightPass(f.rec, f.scene, NewDepthPass(f.rec, f.scene), f.cfg, nil)
	require.NoError(t, lp.Render(cam.ViewProj))
	require.NoError(t, f.w.Update(time.Millisecond))
	assert.Len(t, resized, 3, "first frame builds all three atlases")
	assert.Equal(t, 4, lp.Atlas(component.PointLightType).Capacity())

	resized = nil
	for _, h := range lights[:2] {
		l, ok := ecs.GetComponent[component.PointLight](f.w, h)
		require.True(t, ok)
		l.Active = false
	}
	require.NoError(t, lp.Render(cam.ViewProj))
	require.NoError(t, f.w.Update(time.Millisecond))
	assert.Empty(t, resized)
	assert.Equal(t, 4, lp.Atlas(component.PointLightType).Capacity())

	cfg := f.cfg
	cfg.PointShadows.Resolution = 1024
	lp.SetConfig(cfg)
	require.NoError(t, lp.Render(cam.ViewProj))
	require.NoError(t, f.w.Update(time.Millisecond))
	require.Len(t, resized, 1)
	assert.Equal(t, component.PointLightType, resized[0].Type)
	assert.Equal(t, 2, resized[0].Capacity)
}

func pixelShaders(rec *Recorder) []string {
	var out []string
	for _, c := range rec.Filter(OpBindPixelShader) {
		out = append(out, c.Name)
	}
	return out
}

func TestRendererPassOrder(t *testing.T) {
	tests := []struct {
		mode component.RenderMode
		want []string
	}{
		{component.Forward, []string{"", "forward_lambertian", "transparent_lambertian", "sky"}},
		{component.Deferred, []string{"", "gbuffer", "deferred_lambertian", "transparent_lambertian", "sky"}},
		{component.FalseColor, []string{"", "false_color_normal", "sky"}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			f := newFixture(t)
			f.camera(t, tt.mode)
			f.model(t, mgl32.Vec3{0, 0, -5}, component.DefaultMaterial())
			f.pointLight(t, mgl32.Vec3{0, 2, -5}, 10, true)

			r := NewRenderer(f.rec, f.scene, f.cfg, nil)
			require.NoError(t, r.Render())
			assert.Equal(t, tt.want, pixelShaders(f.rec))
			assert.Equal(t, 1, r.Stats().Cameras)
			assert.Equal(t, 6, r.Stats().ShadowCameras)
		})
	}
}

func TestRendererRendersEveryActiveCamera(t *testing.T) {
	f := newFixture(t)
	f.camera(t, component.Forward)
	f.camera(t, component.Forward)
	off := f.camera(t, component.Forward)
	off.Active = false

	r := NewRenderer(f.rec, f.scene, f.cfg, nil)
	require.NoError(t, r.Render())
	assert.Equal(t, 2, r.Stats().Cameras)
	assert.Equal(t, []string{
		"forward_lambertian", "transparent_lambertian", "sky",
		"forward_lambertian", "transparent_lambertian", "sky",
	}, pixelShaders(f.rec))
}

func TestRendererDrawsVisibleParts(t *testing.T) {
	f := newFixture(t)
	f.camera(t, component.Forward)
	f.model(t, mgl32.Vec3{0, 0, -5}, component.DefaultMaterial())
	f.model(t, mgl32.Vec3{0, 0, 5}, component.DefaultMaterial())
	glass := component.DefaultMaterial()
	glass.Transparent = true
	glass.Textures[component.BaseColorTexture] = "glass.png"
	f.model(t, mgl32.Vec3{1, 0, -5}, glass)

	cfg := f.cfg
	cfg.DrawBoundingVolumes = true
	cfg.DrawStats = true
	r := NewRenderer(f.rec, f.scene, cfg, nil)
	require.NoError(t, r.Render())

	assert.Equal(t, 2, r.Stats().Draws, "the box behind the camera is culled")
	assert.Equal(t, 2, r.Stats().Boxes)
	assert.Equal(t, 2, f.rec.Count(OpDrawIndexed))
	textures := f.rec.Filter(OpBindTexture)
	require.NotEmpty(t, textures)
	assert.Equal(t, "glass.png", textures[0].Name)
}

func TestRendererPropagatesDeviceFailure(t *testing.T) {
	f := newFixture(t)
	f.camera(t, component.Forward)
	f.rec.FailCreate = ErrDeviceLost

	r := NewRenderer(f.rec, f.scene, f.cfg, nil)
	err := r.Render()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeviceLost)
	assert.Contains(t, err.Error(), "light pass")
}

func TestDynamicBufferReleasesOnGrow(t *testing.T) {
	rec := NewRecorder()
	b := newDynamicBuffer[uint32](StructuredBuffer)

	require.NoError(t, b.Update(rec, nil))
	first := b.ID()
	n, ok := rec.BufferLen(first)
	require.True(t, ok)
	assert.Equal(t, 1, n, "an empty upload still creates one element")

	require.NoError(t, b.Update(rec, []uint32{1}))
	assert.Equal(t, first, b.ID(), "fits without regrowing")

	require.NoError(t, b.Update(rec, []uint32{1, 2, 3}))
	second := b.ID()
	assert.NotEqual(t, first, second)
	_, ok = rec.BufferLen(first)
	assert.False(t, ok, "the outgrown buffer is released")
	n, ok = rec.BufferLen(second)
	require.True(t, ok)
	assert.Equal(t, 3, n)
	assert.Equal(t, 1, rec.Count(OpReleaseBuffer))

	assert.ErrorIs(t, rec.UpdateBuffer(first, []uint32{1}), ErrDeviceLost)
}
