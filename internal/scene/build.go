package scene

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lumen3d/lumen/internal/component"
	"github.com/lumen3d/lumen/internal/core/ecs"
)

var (
	ErrUnknownMesh       = errors.New("unknown mesh primitive")
	ErrUnknownParent     = errors.New("unknown parent")
	ErrParentCycle       = errors.New("parent cycle")
	ErrDuplicateName     = errors.New("duplicate entity name")
	ErrUnknownProjection = errors.New("unknown projection")
	ErrUnknownRenderMode = errors.New("unknown render mode")
)

// Build creates the entities of d in w and returns them by name. Meshes
// are created in lib. On error every entity created so far is destroyed.
func Build(w *ecs.ECS, d *Description, lib *MeshLibrary) (map[string]ecs.Handle, error) {
	if err := checkParents(d); err != nil {
		return nil, err
	}
	byName := make(map[string]ecs.Handle, len(d.Entities))
	created := make([]ecs.Handle, 0, len(d.Entities))
	fail := func(err error) (map[string]ecs.Handle, error) {
		for _, h := range created {
			w.DestroyEntity(h)
		}
		return nil, err
	}

	for i := range d.Entities {
		ed := &d.Entities[i]
		h := w.CreateEntity()
		created = append(created, h)
		if ed.Name != "" {
			byName[ed.Name] = h
		}
		if err := buildEntity(w, h, ed, d, lib); err != nil {
			return fail(fmt.Errorf("entity %q: %w", ed.Name, err))
		}
	}

	for i := range d.Entities {
		ed := &d.Entities[i]
		if ed.Transform == nil || ed.Transform.Parent == "" {
			continue
		}
		t, ok := ecs.GetComponent[component.Transform](w, created[i])
		if !ok {
			continue
		}
		t.SetParent(byName[ed.Transform.Parent])
	}
	return byName, nil
}

// checkParents validates names and parent references without touching the
// world. Scene files are rejected rather than relying on the transform
// system to cope with a cycle.
func checkParents(d *Description) error {
	parents := make(map[string]string, len(d.Entities))
	for _, ed := range d.Entities {
		if ed.Name == "" {
			continue
		}
		if _, dup := parents[ed.Name]; dup {
			return fmt.Errorf("entity %q: %w", ed.Name, ErrDuplicateName)
		}
		parents[ed.Name] = ""
		if ed.Transform != nil {
			parents[ed.Name] = ed.Transform.Parent
		}
	}
	for _, ed := range d.Entities {
		if ed.Transform == nil || ed.Transform.Parent == "" {
			continue
		}
		if _, ok := parents[ed.Transform.Parent]; !ok {
			return fmt.Errorf("entity %q: %w %q", ed.Name, ErrUnknownParent, ed.Transform.Parent)
		}
		seen := map[string]bool{ed.Name: true}
		for p := ed.Transform.Parent; p != ""; p = parents[p] {
			if seen[p] {
				return fmt.Errorf("entity %q: %w", ed.Name, ErrParentCycle)
			}
			seen[p] = true
		}
	}
	return nil
}

func buildEntity(w *ecs.ECS, h ecs.Handle, ed *Entity, d *Description, lib *MeshLibrary) error {
	if td := ed.Transform; td != nil {
		scaling := mgl32.Vec3{1, 1, 1}
		if td.Scaling != nil {
			scaling = mgl32.Vec3(*td.Scaling)
		}
		t := component.NewTransformTRS(mgl32.Vec3(td.Translation), degrees(td.Rotation), scaling)
		t.Active = !td.Inactive
		if _, err := ecs.AddComponent(w, h, t); err != nil {
			return err
		}
	}
	if cd := ed.Camera; cd != nil {
		c, err := camera(cd, d)
		if err != nil {
			return err
		}
		if _, err := ecs.AddComponent(w, h, c); err != nil {
			return err
		}
	}
	if ld := ed.DirectionalLight; ld != nil {
		l := component.NewDirectionalLight(mgl32.Vec2(ld.Size), ld.Depth)
		ld.apply(&l.Light)
		if _, err := ecs.AddComponent(w, h, l); err != nil {
			return err
		}
	}
	if ld := ed.PointLight; ld != nil {
		l := component.NewPointLight(ld.Near, ld.Range)
		ld.apply(&l.Light)
		if _, err := ecs.AddComponent(w, h, l); err != nil {
			return err
		}
	}
	if ld := ed.SpotLight; ld != nil {
		l := component.NewSpotLight(ld.Near, ld.Range, mgl32.DegToRad(ld.Umbra), mgl32.DegToRad(ld.Penumbra))
		ld.apply(&l.Light)
		if _, err := ecs.AddComponent(w, h, l); err != nil {
			return err
		}
	}
	if md := ed.Model; md != nil {
		mh, mesh, err := lib.Get(md.Mesh, md.Size)
		if err != nil {
			return err
		}
		m := component.NewModel(mh, mesh, md.Material.material())
		if md.CastShadows != nil {
			m.CastShadows = *md.CastShadows
		}
		if _, err := ecs.AddComponent(w, h, m); err != nil {
			return err
		}
	}
	if sd := ed.Script; sd != nil {
		path := sd.Path
		if path != "" && d.ScriptDir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(d.ScriptDir, path)
		}
		if _, err := ecs.AddComponent(w, h, component.Script{Path: path, Source: sd.Source, Active: true}); err != nil {
			return err
		}
	}
	return nil
}

func camera(cd *CameraDesc, d *Description) (component.Camera, error) {
	near, far := cd.Near, cd.Far
	if near <= 0 {
		near = 0.1
	}
	if far <= near {
		far = 1000
	}
	var c component.Camera
	switch cd.Projection {
	case "", "perspective":
		fov := cd.FOV
		if fov <= 0 {
			fov = 60
		}
		c = component.NewPerspectiveCamera(mgl32.DegToRad(fov), cd.Aspect, near, far)
	case "orthographic":
		width, height := cd.Width, cd.Height
		if width <= 0 {
			width = 10
		}
		if height <= 0 {
			height = width
			if cd.Aspect > 0 {
				height = width / cd.Aspect
			}
		}
		c = component.NewOrthographicCamera(width, height, near, far)
	default:
		return c, fmt.Errorf("%w %q", ErrUnknownProjection, cd.Projection)
	}
	mode := cd.RenderMode
	if mode == "" {
		mode = d.RenderMode
	}
	if mode != "" {
		m, ok := component.ParseRenderMode(mode)
		if !ok {
			return c, fmt.Errorf("%w %q", ErrUnknownRenderMode, mode)
		}
		c.RenderMode = m
	}
	c.BRDF = cd.BRDF
	if c.BRDF == "" {
		c.BRDF = d.BRDF
	}
	if v := cd.Viewport; v != nil {
		c.Viewport = component.Viewport{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	}
	return c, nil
}

func (ld *LightDesc) apply(l *component.Light) {
	if ld.Color != nil {
		l.Color = mgl32.Vec3(*ld.Color)
	}
	if ld.Intensity != nil {
		l.Intensity = *ld.Intensity
	}
	l.CastShadows = ld.CastShadows
}

func (md *MaterialDesc) material() component.Material {
	m := component.DefaultMaterial()
	if md.Name != "" {
		m.Name = md.Name
	}
	if md.BaseColor != nil {
		m.BaseColor = mgl32.Vec4(*md.BaseColor)
	}
	if md.Roughness != nil {
		m.Roughness = *md.Roughness
	}
	m.Metalness = md.Metalness
	m.Transparent = md.Transparent
	m.LightInteraction = !md.Unlit
	m.Textures[component.BaseColorTexture] = md.BaseColorTexture
	m.Textures[component.MaterialTexture] = md.MaterialTexture
	m.Textures[component.NormalTexture] = md.NormalTexture
	return m
}

func degrees(v [3]float32) mgl32.Vec3 {
	return mgl32.Vec3{mgl32.DegToRad(v[0]), mgl32.DegToRad(v[1]), mgl32.DegToRad(v[2])}
}
