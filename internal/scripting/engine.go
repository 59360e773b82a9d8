package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for entity scripts.
// Single-goroutine access only (engine loop).
//
// Library scripts loaded from the scripts directory define globals. Each
// entity chunk runs in its own environment table that falls back to the
// globals, so two entities may both define update().
type Engine struct {
	vm     *lua.LState
	log    *zap.Logger
	chunks map[uint64]*lua.LTable
}

// NewEngine creates a Lua engine and loads all library scripts from the
// given directory. A missing directory is not an error.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log, chunks: make(map[uint64]*lua.LTable)}
	e.Register("log", e.luaLog)

	if scriptsDir != "" {
		if err := e.loadDir(filepath.Join(scriptsDir, "lib")); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load lib scripts: %w", err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Register exposes a Go function as a Lua global.
func (e *Engine) Register(name string, fn lua.LGFunction) {
	e.vm.SetGlobal(name, e.vm.NewFunction(fn))
}

// LoadChunk compiles source and runs it inside a fresh environment bound
// to key, replacing any chunk previously loaded under that key.
func (e *Engine) LoadChunk(key uint64, name, source string) error {
	fn, err := e.vm.Load(strings.NewReader(source), name)
	if err != nil {
		return fmt.Errorf("compile %s: %w", name, err)
	}
	env := e.vm.NewTable()
	mt := e.vm.NewTable()
	mt.RawSetString("__index", e.vm.G.Global)
	e.vm.SetMetatable(env, mt)
	e.vm.SetFEnv(fn, env)

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	e.chunks[key] = env
	return nil
}

// Unload forgets the chunk bound to key.
func (e *Engine) Unload(key uint64) { delete(e.chunks, key) }

func (e *Engine) Loaded(key uint64) bool {
	_, ok := e.chunks[key]
	return ok
}

// CallUpdate calls the chunk's update(entity, dt) function. A chunk
// without one is skipped.
func (e *Engine) CallUpdate(key uint64, entity uint64, dt float64) error {
	env, ok := e.chunks[key]
	if !ok {
		return nil
	}
	fn, ok := env.RawGetString("update").(*lua.LFunction)
	if !ok {
		return nil
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, EntityValue(entity), lua.LNumber(dt)); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return nil
}

// Call invokes a global function and returns its first result.
func (e *Engine) Call(name string, args ...lua.LValue) (lua.LValue, error) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return lua.LNil, fmt.Errorf("lua function %s not found", name)
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		return lua.LNil, fmt.Errorf("lua call %s: %w", name, err)
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return result, nil
}

// Global returns a global value, for tests and tools.
func (e *Engine) Global(name string) lua.LValue { return e.vm.GetGlobal(name) }

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}

// --- Lua helpers ---

// EntityValue packs an entity handle for Lua. Handles stay exact while the
// generation is below 2^21.
func EntityValue(h uint64) lua.LValue { return lua.LNumber(h) }

// CheckEntity reads an entity handle argument.
func CheckEntity(L *lua.LState, n int) uint64 {
	return uint64(L.CheckNumber(n))
}

// CheckFloat reads a number argument as float32.
func CheckFloat(L *lua.LState, n int) float32 {
	return float32(L.CheckNumber(n))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
