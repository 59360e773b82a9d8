package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func TestEngineLoadsLibraryScripts(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib")
	require.NoError(t, os.MkdirAll(lib, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(lib, "b.lua"), []byte("function twice(x) return base * x end"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(lib, "a.lua"), []byte("base = 2"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(lib, "notes.txt"), []byte("not lua"), 0o644))

	e, err := NewEngine(dir, nil)
	require.NoError(t, err)
	defer e.Close()

	got, err := e.Call("twice", lua.LNumber(21))
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(42), got)

	_, err = e.Call("missing")
	assert.Error(t, err)
}

func TestEngineMissingDirIsEmpty(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "none"), nil)
	require.NoError(t, err)
	defer e.Close()
	assert.Equal(t, lua.LNumber(1), e.Global("API_VERSION"))
}

func TestEngineBrokenLibraryFails(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib")
	require.NoError(t, os.MkdirAll(lib, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(lib, "bad.lua"), []byte("function ("), 0o644))

	_, err := NewEngine(dir, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.lua")
}

func TestChunksHaveSeparateEnvironments(t *testing.T) {
	e, err := NewEngine("", nil)
	require.NoError(t, err)
	defer e.Close()

	calls := map[uint64]float64{}
	e.Register("record", func(L *lua.LState) int {
		calls[CheckEntity(L, 1)] += float64(L.CheckNumber(2))
		return 0
	})

	require.NoError(t, e.LoadChunk(1, "a", "function update(entity, dt) record(entity, dt) end"))
	require.NoError(t, e.LoadChunk(2, "b", "function update(entity, dt) record(entity, dt * 10) end"))
	require.NoError(t, e.LoadChunk(3, "c", "x = 1"))

	require.NoError(t, e.CallUpdate(1, 100, 0.5))
	require.NoError(t, e.CallUpdate(2, 200, 0.5))
	require.NoError(t, e.CallUpdate(3, 300, 0.5))
	require.NoError(t, e.CallUpdate(4, 400, 0.5))

	assert.Equal(t, map[uint64]float64{100: 0.5, 200: 5}, calls)
	assert.Equal(t, lua.LNil, e.Global("update"), "chunk globals stay in the chunk")

	e.Unload(1)
	assert.False(t, e.Loaded(1))
}

func TestChunkErrors(t *testing.T) {
	e, err := NewEngine("", nil)
	require.NoError(t, err)
	defer e.Close()

	assert.Error(t, e.LoadChunk(1, "syntax", "function update("))
	assert.False(t, e.Loaded(1))

	require.NoError(t, e.LoadChunk(2, "boom", "function update() error('boom') end"))
	err = e.CallUpdate(2, 1, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
