package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// RotationRPY builds the rotation for rot = {pitch, yaw, roll} in radians.
// Roll is applied first, then pitch, then yaw.
func RotationRPY(rot mgl32.Vec3) mgl32.Mat4 {
	return mgl32.HomogRotate3DY(rot[1]).
		Mul4(mgl32.HomogRotate3DX(rot[0])).
		Mul4(mgl32.HomogRotate3DZ(rot[2]))
}

// TRS composes scale, then rotation, then translation.
func TRS(translation, rotation, scaling mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(translation[0], translation[1], translation[2]).
		Mul4(RotationRPY(rotation)).
		Mul4(mgl32.Scale3D(scaling[0], scaling[1], scaling[2]))
}

// Origin returns the translation column of m.
func Origin(m mgl32.Mat4) mgl32.Vec3 {
	return m.Col(3).Vec3()
}

// Forward returns the normalized -Z axis of m.
func Forward(m mgl32.Mat4) mgl32.Vec3 {
	f := m.Col(2).Vec3().Mul(-1)
	if f.Len() == 0 {
		return mgl32.Vec3{0, 0, -1}
	}
	return f.Normalize()
}

// WorldToView inverts a rigid object-to-world matrix after dropping scale.
func WorldToView(world mgl32.Mat4) mgl32.Mat4 {
	x := world.Col(0).Vec3()
	y := world.Col(1).Vec3()
	z := world.Col(2).Vec3()
	if x.Len() != 0 {
		x = x.Normalize()
	}
	if y.Len() != 0 {
		y = y.Normalize()
	}
	if z.Len() != 0 {
		z = z.Normalize()
	}
	rigid := mgl32.Mat4{}
	rigid.SetCol(0, x.Vec4(0))
	rigid.SetCol(1, y.Vec4(0))
	rigid.SetCol(2, z.Vec4(0))
	rigid.SetCol(3, world.Col(3))
	return rigid.Inv()
}

// CubeFace is one of the six fixed view rotations of a cube shadow map.
type CubeFace struct {
	Forward mgl32.Vec3
	Up      mgl32.Vec3
}

// CubeFaces lists the faces in +X, -X, +Y, -Y, +Z, -Z order.
var CubeFaces = [6]CubeFace{
	{Forward: mgl32.Vec3{1, 0, 0}, Up: mgl32.Vec3{0, -1, 0}},
	{Forward: mgl32.Vec3{-1, 0, 0}, Up: mgl32.Vec3{0, -1, 0}},
	{Forward: mgl32.Vec3{0, 1, 0}, Up: mgl32.Vec3{0, 0, 1}},
	{Forward: mgl32.Vec3{0, -1, 0}, Up: mgl32.Vec3{0, 0, -1}},
	{Forward: mgl32.Vec3{0, 0, 1}, Up: mgl32.Vec3{0, -1, 0}},
	{Forward: mgl32.Vec3{0, 0, -1}, Up: mgl32.Vec3{0, -1, 0}},
}

// LookDirection returns the world-to-view matrix of an eye at pos facing dir.
func LookDirection(pos, dir, up mgl32.Vec3) mgl32.Mat4 {
	c := pos.Add(dir)
	return mgl32.LookAtV(pos, c, up)
}

// Approx reports whether a and b match element-wise within eps.
func Approx(a, b mgl32.Mat4, eps float32) bool {
	for i := range a {
		if math32.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}
