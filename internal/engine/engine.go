package engine

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/lumen3d/lumen/internal/component"
	"github.com/lumen3d/lumen/internal/config"
	"github.com/lumen3d/lumen/internal/core/ecs"
	"github.com/lumen3d/lumen/internal/render"
	"github.com/lumen3d/lumen/internal/scene"
	"github.com/lumen3d/lumen/internal/scripting"
	"github.com/lumen3d/lumen/internal/system"
	"go.uber.org/zap"
)

// Engine wires the ECS, the systems, the renderer and the loaded scene.
// Single-goroutine access only (engine loop).
type Engine struct {
	cfg        *config.Config
	configPath string
	log        *zap.Logger

	World    *ecs.ECS
	Device   render.Device
	Meshes   *scene.MeshLibrary
	Renderer *render.Renderer

	transforms *system.TransformSystem
	scripts    *system.ScriptSystem
	cleanup    *system.CleanupSystem
	lua        *scripting.Engine

	scenePath string
	entities  map[string]ecs.Handle
}

// New builds an engine drawing to dev. configPath may be empty when cfg
// did not come from a file; it is used to recognise config reloads.
func New(cfg *config.Config, configPath string, dev render.Device, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	w := ecs.New(log.Named("ecs"))
	meshes := scene.NewMeshLibrary(ecs.NewResourcePool[component.Mesh](log.Named("meshes")))
	renderer := render.NewRenderer(dev, render.Scene{World: w, Meshes: meshes.Pool()}, cfg.Rendering, log.Named("render"))

	e := &Engine{
		cfg:        cfg,
		configPath: configPath,
		log:        log,
		World:      w,
		Device:     dev,
		Meshes:     meshes,
		Renderer:   renderer,
		transforms: system.NewTransformSystem(w),
		cleanup:    system.NewCleanupSystem(w, log.Named("cleanup")),
	}

	if cfg.Scripting.Enabled {
		lua, err := scripting.NewEngine(cfg.Scripting.Dir, log.Named("lua"))
		if err != nil {
			return nil, fmt.Errorf("scripting: %w", err)
		}
		e.lua = lua
		e.scripts = system.NewScriptSystem(w, lua, log.Named("script"))
		w.AddSystem(e.scripts)
	}
	w.AddSystem(e.transforms)
	w.AddSystem(system.NewCameraSystem(w))
	w.AddSystem(system.NewModelSystem(w))
	w.AddSystem(system.NewRenderSystem(renderer))
	w.AddSystem(e.cleanup)
	return e, nil
}

func (e *Engine) Config() *config.Config { return e.cfg }

// Entities returns the current scene's entities by name.
func (e *Engine) Entities() map[string]ecs.Handle { return e.entities }

// Transforms exposes the transform system for out-of-tick resolves.
func (e *Engine) Transforms() *system.TransformSystem { return e.transforms }

// LoadScene replaces the current scene with the one at path.
func (e *Engine) LoadScene(path string) error {
	d, err := scene.Load(path)
	if err != nil {
		return err
	}
	d.ScriptDir = e.cfg.Scripting.Dir
	d.RenderMode = e.cfg.Rendering.RenderMode
	d.BRDF = e.cfg.Rendering.BRDF

	names, err := scene.Build(e.World, d, e.Meshes)
	if err != nil {
		return fmt.Errorf("build scene %s: %w", path, err)
	}
	e.unloadScene()
	e.scenePath = path
	e.entities = names
	e.log.Info("scene loaded", zap.String("scene", d.Name), zap.Int("entities", len(names)))
	return nil
}

func (e *Engine) unloadScene() {
	for _, h := range e.entities {
		e.World.DestroyEntity(h)
	}
	e.entities = nil
}

// Tick advances the world by dt.
func (e *Engine) Tick(dt time.Duration) error {
	return e.World.Update(dt)
}

// FileChanged applies a hot reload for a changed config, scene or script
// file. Reload failures are logged and the previous state is kept.
func (e *Engine) FileChanged(path string) {
	switch {
	case config.IsConfigFile(path) && samePath(path, e.configPath):
		cfg, err := config.Load(path)
		if err != nil {
			e.log.Warn("config reload failed", zap.String("path", path), zap.Error(err))
			return
		}
		e.cfg.Rendering = cfg.Rendering
		e.Renderer.SetConfig(cfg.Rendering)
		e.log.Info("rendering config reloaded", zap.String("path", path))
	case config.IsSceneFile(path) && samePath(path, e.scenePath):
		if err := e.LoadScene(e.scenePath); err != nil {
			e.log.Warn("scene reload failed", zap.String("path", path), zap.Error(err))
		}
	case config.IsScriptFile(path) && e.scripts != nil:
		if n := e.scripts.Reload(path); n > 0 {
			e.log.Info("script reloaded", zap.String("path", path), zap.Int("entities", n))
		}
	}
}

func samePath(a, b string) bool {
	if b == "" {
		return false
	}
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return aa == bb
}

// Destroyed returns the number of entities destroyed since start.
func (e *Engine) Destroyed() int { return e.cleanup.Destroyed() }

func (e *Engine) Close() {
	if e.lua != nil {
		e.lua.Close()
	}
}
