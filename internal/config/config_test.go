package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "lumen.toml", `
[engine]
tick_rate = "20ms"
max_ticks = 3

[rendering]
render_mode = "deferred"

[rendering.point_shadows]
resolution = 256
depth_bias = 50
slope_scaled_depth_bias = 2.5

[logging]
level = "debug"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 20*time.Millisecond, cfg.Engine.TickRate)
	assert.Equal(t, uint64(3), cfg.Engine.MaxTicks)
	assert.Equal(t, "deferred", cfg.Rendering.RenderMode)
	assert.Equal(t, ShadowMapConfig{Resolution: 256, DepthBias: 50, SlopeScaledDepthBias: 2.5}, cfg.Rendering.PointShadows)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// untouched sections keep their defaults
	assert.Equal(t, defaults().Rendering.SpotShadows, cfg.Rendering.SpotShadows)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "scripts", cfg.Scripting.Dir)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", "[engine\n", "parse config"},
		{"zero resolution", "[rendering.spot_shadows]\nresolution = 0\n", "spot_shadows.resolution"},
		{"bad mode", "[rendering]\nrender_mode = \"raytraced\"\n", "render_mode"},
		{"bad tick", "[engine]\ntick_rate = \"0s\"\n", "tick_rate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, dir, tt.name+".toml", tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Load(filepath.Join(dir, "missing.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatchedFileKinds(t *testing.T) {
	assert.True(t, IsConfigFile("config/lumen.TOML"))
	assert.True(t, IsSceneFile("scenes/demo.yml"))
	assert.True(t, IsScriptFile("scripts/spin.lua"))
	assert.False(t, IsWatchedFile("notes.txt"))
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	path := writeFile(t, dir, "lumen.toml", "[engine]\n")
	writeFile(t, dir, "ignored.txt", "x")

	select {
	case got := <-w.Events:
		assert.Equal(t, path, got)
	case <-time.After(2 * time.Second):
		t.Fatal("no event for config write")
	}
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}

func TestWatcherReportsFinalWriteOnce(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(dir, "scene.yaml")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = f.WriteString("name: half")
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	_, err = f.WriteString("\nentities: []\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	select {
	case got := <-w.Events:
		assert.Equal(t, path, got)
		body, err := os.ReadFile(got)
		require.NoError(t, err)
		assert.Equal(t, "name: half\nentities: []\n", string(body))
	case <-time.After(2 * time.Second):
		t.Fatal("no event for scene write")
	}

	select {
	case got := <-w.Events:
		t.Fatalf("burst reported twice: %s", got)
	case <-time.After(3 * reloadDebounce):
	}
}
