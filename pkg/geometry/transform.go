package geometry

import "github.com/go-gl/mathgl/mgl32"

// ToMGL converts the vector to a mathgl vector
func (v Vector3) ToMGL() mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

// FromMGL converts a mathgl vector
func FromMGL(v mgl32.Vec3) Vector3 {
	return Vector3{X: v[0], Y: v[1], Z: v[2]}
}

// TransformPoint applies an affine transform to a position (w = 1)
func TransformPoint(m mgl32.Mat4, p Vector3) Vector3 {
	return FromMGL(mgl32.TransformCoordinate(p.ToMGL(), m))
}

// TransformDirection applies a 3x3 linear transform to a direction and
// renormalizes it
func TransformDirection(m mgl32.Mat3, d Vector3) Vector3 {
	return FromMGL(m.Mul3x1(d.ToMGL())).Normalize()
}

// NormalMatrix returns the inverse-transpose of the upper 3x3 block of m,
// which keeps normals perpendicular under non-uniform scaling
func NormalMatrix(m mgl32.Mat4) mgl32.Mat3 {
	upper := m.Mat3()
	if upper.Det() == 0 {
		return upper
	}
	return upper.Inv().Transpose()
}

// Rotation builds a rotation from Euler angles in degrees (applied X, then Y, then Z)
func Rotation(xDeg, yDeg, zDeg float32) mgl32.Mat4 {
	rx := mgl32.HomogRotate3DX(mgl32.DegToRad(xDeg))
	ry := mgl32.HomogRotate3DY(mgl32.DegToRad(yDeg))
	rz := mgl32.HomogRotate3DZ(mgl32.DegToRad(zDeg))
	return rz.Mul4(ry).Mul4(rx)
}
