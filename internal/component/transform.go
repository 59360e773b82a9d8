package component

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lumen3d/lumen/internal/core/ecs"
	"github.com/lumen3d/lumen/internal/geom"
)

// Transform is an entity's local translation, rotation and scaling plus
// the object-to-world matrix TransformSystem resolves from its parent chain.
//
// World is correct whenever NeedsUpdate is false. Updated is set in the
// tick World was recomputed and cleared in TransformSystem's PostUpdate.
// Parent is a plain handle; cycles are not detected.
type Transform struct {
	Parent ecs.Handle

	translation mgl32.Vec3
	rotation    mgl32.Vec3 // pitch, yaw, roll in radians
	scaling     mgl32.Vec3

	World       mgl32.Mat4
	NeedsUpdate bool
	Updated     bool
	Active      bool

	// Resolved is the TransformSystem pass that last resolved this transform.
	Resolved uint64
}

// NewTransform returns an active identity transform that needs resolving.
func NewTransform() Transform {
	return Transform{
		scaling:     mgl32.Vec3{1, 1, 1},
		World:       mgl32.Ident4(),
		NeedsUpdate: true,
		Active:      true,
	}
}

// NewTransformTRS is NewTransform with the local TRS set.
func NewTransformTRS(translation, rotation, scaling mgl32.Vec3) Transform {
	t := NewTransform()
	t.translation = translation
	t.rotation = rotation
	t.scaling = scaling
	return t
}

func (t *Transform) Translation() mgl32.Vec3 { return t.translation }
func (t *Transform) Rotation() mgl32.Vec3    { return t.rotation }
func (t *Transform) Scaling() mgl32.Vec3     { return t.scaling }

func (t *Transform) SetTranslation(v mgl32.Vec3) {
	t.translation = v
	t.NeedsUpdate = true
}

func (t *Transform) SetRotation(v mgl32.Vec3) {
	t.rotation = v
	t.NeedsUpdate = true
}

func (t *Transform) SetScaling(v mgl32.Vec3) {
	t.scaling = v
	t.NeedsUpdate = true
}

func (t *Transform) AddTranslation(v mgl32.Vec3) { t.SetTranslation(t.translation.Add(v)) }
func (t *Transform) AddRotation(v mgl32.Vec3)    { t.SetRotation(t.rotation.Add(v)) }

func (t *Transform) SetParent(p ecs.Handle) {
	t.Parent = p
	t.NeedsUpdate = true
}

// Local returns the object-to-parent matrix.
func (t *Transform) Local() mgl32.Mat4 {
	return geom.TRS(t.translation, t.rotation, t.scaling)
}

func (t *Transform) WorldPosition() mgl32.Vec3 { return geom.Origin(t.World) }
func (t *Transform) Forward() mgl32.Vec3       { return geom.Forward(t.World) }

// TransformChanged is enqueued for every entity whose world matrix was
// recomputed during the tick.
type TransformChanged struct {
	Entity ecs.Handle
}
