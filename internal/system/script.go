package system

import (
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lumen3d/lumen/internal/component"
	"github.com/lumen3d/lumen/internal/core/ecs"
	"github.com/lumen3d/lumen/internal/core/event"
	coresys "github.com/lumen3d/lumen/internal/core/system"
	"github.com/lumen3d/lumen/internal/scripting"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ScriptSystem runs each entity's Lua update(entity, dt) before the
// TransformSystem, so scripted movement is resolved in the same tick.
// A script that fails to load or raises an error is logged and disabled.
type ScriptSystem struct {
	coresys.Base
	w      *ecs.ECS
	engine *scripting.Engine
	log    *zap.Logger
	loaded map[ecs.Handle]string
}

func NewScriptSystem(w *ecs.ECS, engine *scripting.Engine, log *zap.Logger) *ScriptSystem {
	if log == nil {
		log = zap.NewNop()
	}
	s := &ScriptSystem{
		Base:   coresys.NewBase("script", PriorityScript),
		w:      w,
		engine: engine,
		log:    log,
		loaded: make(map[ecs.Handle]string),
	}
	s.registerAPI()
	event.Subscribe(w.Events, func(ev ecs.EntityDestroyed) {
		if _, ok := s.loaded[ev.Entity]; ok {
			delete(s.loaded, ev.Entity)
			engine.Unload(uint64(ev.Entity))
		}
	})
	return s
}

func (s *ScriptSystem) Update(dt time.Duration) error {
	secs := dt.Seconds()
	ecs.ForEach(s.w, func(h ecs.Handle, sc *component.Script) {
		if !sc.Active || !s.w.Alive(h) {
			return
		}
		if err := s.ensureLoaded(h, sc); err != nil {
			s.log.Error("script load failed", zap.Stringer("entity", h), zap.String("path", sc.Path), zap.Error(err))
			sc.Active = false
			return
		}
		if err := s.engine.CallUpdate(uint64(h), uint64(h), secs); err != nil {
			s.log.Error("script error", zap.Stringer("entity", h), zap.String("path", sc.Path), zap.Error(err))
			sc.Active = false
		}
	})
	return nil
}

func (s *ScriptSystem) ensureLoaded(h ecs.Handle, sc *component.Script) error {
	src := sc.Source
	if src == "" {
		data, err := os.ReadFile(sc.Path)
		if err != nil {
			return fmt.Errorf("read script %s: %w", sc.Path, err)
		}
		src = string(data)
		sc.Source = src
	}
	if prev, ok := s.loaded[h]; ok && prev == src {
		return nil
	}
	name := sc.Path
	if name == "" {
		name = h.String()
	}
	if err := s.engine.LoadChunk(uint64(h), name, src); err != nil {
		return err
	}
	s.loaded[h] = src
	return nil
}

// Reload re-reads every script loaded from path and re-enables it.
// It returns the number of entities affected.
func (s *ScriptSystem) Reload(path string) int {
	if path == "" {
		return 0
	}
	n := 0
	ecs.ForEach(s.w, func(_ ecs.Handle, sc *component.Script) {
		if sc.Path != path {
			return
		}
		sc.Source = ""
		sc.Active = true
		n++
	})
	return n
}

// --- Lua API ---

func (s *ScriptSystem) registerAPI() {
	s.engine.Register("get_translation", s.luaGetTranslation)
	s.engine.Register("set_translation", s.luaSetTranslation)
	s.engine.Register("get_rotation", s.luaGetRotation)
	s.engine.Register("set_rotation", s.luaSetRotation)
	s.engine.Register("set_intensity", s.luaSetIntensity)
	s.engine.Register("destroy", s.luaDestroy)
}

func (s *ScriptSystem) transformArg(L *lua.LState) *component.Transform {
	h := ecs.Handle(scripting.CheckEntity(L, 1))
	t, ok := ecs.GetComponent[component.Transform](s.w, h)
	if !ok {
		L.ArgError(1, "entity has no transform")
		return nil
	}
	return t
}

func vecArgs(L *lua.LState, first int) mgl32.Vec3 {
	return mgl32.Vec3{
		scripting.CheckFloat(L, first),
		scripting.CheckFloat(L, first+1),
		scripting.CheckFloat(L, first+2),
	}
}

func pushVec(L *lua.LState, v mgl32.Vec3) int {
	L.Push(lua.LNumber(v[0]))
	L.Push(lua.LNumber(v[1]))
	L.Push(lua.LNumber(v[2]))
	return 3
}

func (s *ScriptSystem) luaGetTranslation(L *lua.LState) int {
	return pushVec(L, s.transformArg(L).Translation())
}

func (s *ScriptSystem) luaSetTranslation(L *lua.LState) int {
	t := s.transformArg(L)
	t.SetTranslation(vecArgs(L, 2))
	return 0
}

func (s *ScriptSystem) luaGetRotation(L *lua.LState) int {
	return pushVec(L, s.transformArg(L).Rotation())
}

func (s *ScriptSystem) luaSetRotation(L *lua.LState) int {
	t := s.transformArg(L)
	t.SetRotation(vecArgs(L, 2))
	return 0
}

// luaSetIntensity sets the intensity of whichever light the entity has.
func (s *ScriptSystem) luaSetIntensity(L *lua.LState) int {
	h := ecs.Handle(scripting.CheckEntity(L, 1))
	v := scripting.CheckFloat(L, 2)
	if l, ok := ecs.GetComponent[component.DirectionalLight](s.w, h); ok {
		l.Intensity = v
		return 0
	}
	if l, ok := ecs.GetComponent[component.PointLight](s.w, h); ok {
		l.Intensity = v
		return 0
	}
	if l, ok := ecs.GetComponent[component.SpotLight](s.w, h); ok {
		l.Intensity = v
		return 0
	}
	L.ArgError(1, "entity has no light")
	return 0
}

func (s *ScriptSystem) luaDestroy(L *lua.LState) int {
	h := ecs.Handle(scripting.CheckEntity(L, 1))
	L.Push(lua.LBool(s.w.DestroyEntity(h)))
	return 1
}
