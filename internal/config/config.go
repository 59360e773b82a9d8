package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Engine    EngineConfig    `toml:"engine"`
	Rendering RenderingConfig `toml:"rendering"`
	Logging   LoggingConfig   `toml:"logging"`
	Scripting ScriptingConfig `toml:"scripting"`
}

type EngineConfig struct {
	TickRate time.Duration `toml:"tick_rate"`
	MaxTicks uint64        `toml:"max_ticks"` // 0 = run until signalled
	Scene    string        `toml:"scene"`
	Headless bool          `toml:"headless"`
	Width    int           `toml:"width"`
	Height   int           `toml:"height"`
}

// ShadowMapConfig is compared field by field when the LightPass decides
// whether a shadow atlas must be rebuilt.
type ShadowMapConfig struct {
	Resolution           uint32  `toml:"resolution"`
	DepthBias            int32   `toml:"depth_bias"`
	SlopeScaledDepthBias float32 `toml:"slope_scaled_depth_bias"`
	DepthBiasClamp       float32 `toml:"depth_bias_clamp"`
}

type FogConfig struct {
	Density float32    `toml:"density"`
	Color   [3]float32 `toml:"color"`
}

type RenderingConfig struct {
	DirectionalShadows  ShadowMapConfig `toml:"directional_shadows"`
	PointShadows        ShadowMapConfig `toml:"point_shadows"`
	SpotShadows         ShadowMapConfig `toml:"spot_shadows"`
	Fog                 FogConfig       `toml:"fog"`
	BRDF                string          `toml:"brdf"`
	RenderMode          string          `toml:"render_mode"` // "forward", "deferred" or "false_color"
	Sky                 string          `toml:"sky"`
	DrawBoundingVolumes bool            `toml:"draw_bounding_volumes"`
	DrawStats           bool            `toml:"draw_stats"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type ScriptingConfig struct {
	Dir     string `toml:"dir"`
	Enabled bool   `toml:"enabled"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration used when no file exists.
func Default() *Config { return defaults() }

func (c *Config) validate() error {
	if c.Engine.TickRate <= 0 {
		return fmt.Errorf("engine.tick_rate must be positive, got %s", c.Engine.TickRate)
	}
	for name, sm := range map[string]ShadowMapConfig{
		"directional_shadows": c.Rendering.DirectionalShadows,
		"point_shadows":       c.Rendering.PointShadows,
		"spot_shadows":        c.Rendering.SpotShadows,
	} {
		if sm.Resolution == 0 {
			return fmt.Errorf("rendering.%s.resolution must be positive", name)
		}
	}
	switch c.Rendering.RenderMode {
	case "forward", "deferred", "false_color":
	default:
		return fmt.Errorf("rendering.render_mode %q is not forward, deferred or false_color", c.Rendering.RenderMode)
	}
	return nil
}

func defaultShadowMap(resolution uint32) ShadowMapConfig {
	return ShadowMapConfig{
		Resolution:           resolution,
		DepthBias:            100,
		SlopeScaledDepthBias: 1.0,
		DepthBiasClamp:       0.0,
	}
}

func defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			TickRate: 16 * time.Millisecond,
			Scene:    "scenes/demo.yaml",
			Headless: true,
			Width:    1280,
			Height:   720,
		},
		Rendering: RenderingConfig{
			DirectionalShadows: defaultShadowMap(2048),
			PointShadows:       defaultShadowMap(512),
			SpotShadows:        defaultShadowMap(1024),
			Fog: FogConfig{
				Density: 0.0,
				Color:   [3]float32{0.5, 0.5, 0.5},
			},
			BRDF:       "cook_torrance",
			RenderMode: "forward",
			Sky:        "sky.dds",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Scripting: ScriptingConfig{
			Dir:     "scripts",
			Enabled: true,
		},
	}
}
