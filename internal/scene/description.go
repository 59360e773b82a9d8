package scene

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Description is a scene file: a flat list of named entities. Parents are
// referenced by name and may appear after their children.
type Description struct {
	Name     string   `yaml:"name"`
	Entities []Entity `yaml:"entities"`

	// Set by the caller, not read from YAML. ScriptDir is prepended to
	// relative script paths; RenderMode and BRDF apply to cameras that
	// leave them empty.
	ScriptDir  string `yaml:"-"`
	RenderMode string `yaml:"-"`
	BRDF       string `yaml:"-"`
}

// Entity lists the components of one scene entity. Angles are in degrees.
type Entity struct {
	Name             string                `yaml:"name"`
	Transform        *TransformDesc        `yaml:"transform"`
	Camera           *CameraDesc           `yaml:"camera"`
	DirectionalLight *DirectionalLightDesc `yaml:"directional_light"`
	PointLight       *PointLightDesc       `yaml:"point_light"`
	SpotLight        *SpotLightDesc        `yaml:"spot_light"`
	Model            *ModelDesc            `yaml:"model"`
	Script           *ScriptDesc           `yaml:"script"`
}

type TransformDesc struct {
	Parent      string      `yaml:"parent"`
	Translation [3]float32  `yaml:"translation"`
	Rotation    [3]float32  `yaml:"rotation"` // pitch, yaw, roll
	Scaling     *[3]float32 `yaml:"scaling"`
	Inactive    bool        `yaml:"inactive"`
}

type CameraDesc struct {
	Projection string      `yaml:"projection"` // perspective | orthographic
	FOV        float32     `yaml:"fov"`
	Aspect     float32     `yaml:"aspect"`
	Width      float32     `yaml:"width"`
	Height     float32     `yaml:"height"`
	Near       float32     `yaml:"near"`
	Far        float32     `yaml:"far"`
	Viewport   *[4]float32 `yaml:"viewport"` // x, y, width, height
	RenderMode string      `yaml:"render_mode"`
	BRDF       string      `yaml:"brdf"`
}

type LightDesc struct {
	Color       *[3]float32 `yaml:"color"`
	Intensity   *float32    `yaml:"intensity"`
	CastShadows bool        `yaml:"cast_shadows"`
}

type DirectionalLightDesc struct {
	LightDesc `yaml:",inline"`
	Size      [2]float32 `yaml:"size"`
	Depth     float32    `yaml:"depth"`
}

type PointLightDesc struct {
	LightDesc `yaml:",inline"`
	Near      float32 `yaml:"near"`
	Range     float32 `yaml:"range"`
}

type SpotLightDesc struct {
	LightDesc `yaml:",inline"`
	Near      float32 `yaml:"near"`
	Range     float32 `yaml:"range"`
	Umbra     float32 `yaml:"umbra"`
	Penumbra  float32 `yaml:"penumbra"`
}

type ModelDesc struct {
	Mesh        string       `yaml:"mesh"` // cube | plane | sphere
	Size        float32      `yaml:"size"`
	Material    MaterialDesc `yaml:"material"`
	CastShadows *bool        `yaml:"cast_shadows"`
}

type MaterialDesc struct {
	Name             string      `yaml:"name"`
	BaseColor        *[4]float32 `yaml:"base_color"`
	Roughness        *float32    `yaml:"roughness"`
	Metalness        float32     `yaml:"metalness"`
	Transparent      bool        `yaml:"transparent"`
	Unlit            bool        `yaml:"unlit"`
	BaseColorTexture string      `yaml:"base_color_texture"`
	MaterialTexture  string      `yaml:"material_texture"`
	NormalTexture    string      `yaml:"normal_texture"`
}

type ScriptDesc struct {
	Path   string `yaml:"path"`
	Source string `yaml:"source"`
}

// Load reads and parses a scene file.
func Load(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	if d.Name == "" {
		d.Name = filepath.Base(path)
	}
	return d, nil
}

// Parse decodes a scene description from YAML.
func Parse(data []byte) (*Description, error) {
	var d Description
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return &d, nil
}
