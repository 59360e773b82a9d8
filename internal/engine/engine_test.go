package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lumen3d/lumen/internal/component"
	"github.com/lumen3d/lumen/internal/config"
	"github.com/lumen3d/lumen/internal/core/ecs"
	"github.com/lumen3d/lumen/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tick = 16 * time.Millisecond

const sceneYAML = `
name: test
entities:
  - name: cam
    transform: {translation: [0, 0, 10]}
    camera: {fov: 60, viewport: [0, 0, 320, 240]}
  - name: box
    model: {mesh: cube}
    transform: {}
    script: {path: step.lua}
  - name: lamp
    transform: {parent: box, translation: [0, 3, 0]}
    point_light: {range: 10, cast_shadows: true}
`

const stepLua = `
function update(entity, dt)
	local x, y, z = get_translation(entity)
	set_translation(entity, x + 1, y, z)
end
`

type fixture struct {
	dir    string
	cfg    *config.Config
	rec    *render.Recorder
	engine *Engine
}

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	scripts := filepath.Join(dir, "scripts")
	require.NoError(t, os.Mkdir(scripts, 0o755))
	write(t, filepath.Join(scripts, "step.lua"), stepLua)
	write(t, filepath.Join(dir, "scene.yaml"), sceneYAML)
	cfgPath := filepath.Join(dir, "lumen.toml")
	write(t, cfgPath, "")

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	cfg.Scripting.Dir = scripts

	rec := render.NewRecorder()
	e, err := New(cfg, cfgPath, rec, nil)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	require.NoError(t, e.LoadScene(filepath.Join(dir, "scene.yaml")))
	return &fixture{dir: dir, cfg: cfg, rec: rec, engine: e}
}

func (f *fixture) transform(t *testing.T, name string) *component.Transform {
	t.Helper()
	tr, ok := ecs.GetComponent[component.Transform](f.engine.World, f.engine.Entities()[name])
	require.True(t, ok)
	return tr
}

func TestEngineRunsScene(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.Tick(tick))
	require.NoError(t, f.engine.Tick(tick))

	assert.Equal(t, mgl32.Vec3{2, 0, 0}, f.transform(t, "box").WorldPosition())
	assert.Equal(t, mgl32.Vec3{2, 3, 0}, f.transform(t, "lamp").WorldPosition())

	st := f.engine.Renderer.Stats()
	assert.Equal(t, uint64(2), st.Frame)
	assert.Equal(t, 1, st.Cameras)
	assert.Equal(t, 1, st.Draws)
	assert.Equal(t, 6, st.ShadowCameras)
}

func TestEngineReloadsConfig(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.Tick(tick))
	atlas := f.engine.Renderer.LightPass().Atlas(component.PointLightType)
	first := atlas.Texture()

	write(t, filepath.Join(f.dir, "lumen.toml"), "[rendering.point_shadows]\nresolution = 128\n")
	f.engine.FileChanged(filepath.Join(f.dir, "lumen.toml"))
	assert.Equal(t, uint32(128), f.engine.Config().Rendering.PointShadows.Resolution)

	require.NoError(t, f.engine.Tick(tick))
	assert.NotEqual(t, first, atlas.Texture(), "config change rebuilds the atlas")
	assert.Equal(t, uint32(128), atlas.Config().Resolution)

	// a broken file keeps the running config
	write(t, filepath.Join(f.dir, "lumen.toml"), "[rendering\n")
	f.engine.FileChanged(filepath.Join(f.dir, "lumen.toml"))
	assert.Equal(t, uint32(128), f.engine.Config().Rendering.PointShadows.Resolution)

	// other toml files are ignored
	other := filepath.Join(f.dir, "other.toml")
	write(t, other, "[rendering.point_shadows]\nresolution = 64\n")
	f.engine.FileChanged(other)
	assert.Equal(t, uint32(128), f.engine.Config().Rendering.PointShadows.Resolution)
}

func TestEngineReloadsSceneAndScripts(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.Tick(tick))
	oldBox := f.engine.Entities()["box"]

	write(t, filepath.Join(f.dir, "scripts", "step.lua"), `
function update(entity, dt)
	local x, y, z = get_translation(entity)
	set_translation(entity, x, y + 5, z)
end
`)
	f.engine.FileChanged(filepath.Join(f.dir, "scripts", "step.lua"))
	require.NoError(t, f.engine.Tick(tick))
	assert.Equal(t, mgl32.Vec3{1, 5, 0}, f.transform(t, "box").WorldPosition())

	f.engine.FileChanged(filepath.Join(f.dir, "scene.yaml"))
	require.NoError(t, f.engine.Tick(tick))
	assert.False(t, f.engine.World.Valid(oldBox))
	assert.Equal(t, 3, f.engine.World.Entities.Len())
	assert.Equal(t, 3, f.engine.Destroyed())

	// a scene that fails to build leaves the current one running
	write(t, filepath.Join(f.dir, "scene.yaml"), "entities:\n  - name: a\n    transform: {parent: nobody}\n")
	f.engine.FileChanged(filepath.Join(f.dir, "scene.yaml"))
	require.NoError(t, f.engine.Tick(tick))
	assert.Len(t, f.engine.Entities(), 3)
	assert.Equal(t, 3, f.engine.World.Entities.Len())
}
