package obb

// Quat is a unit quaternion representing a rotation.
type Quat struct {
	X, Y, Z, W float32
}

// IdentityQuat returns the identity rotation.
func IdentityQuat() Quat {
	return Quat{W: 1}
}

// Mul composes two rotations: q.Mul(r) applies r first, then q.
func (q Quat) Mul(r Quat) Quat {
	return Quat{
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
	}
}

// Conjugate returns the inverse rotation of a unit quaternion.
func (q Quat) Conjugate() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// RotateVec3 rotates v by q.
func (q Quat) RotateVec3(v Vec3) Vec3 {
	qv := Vec3{X: q.X, Y: q.Y, Z: q.Z}
	uv := cross3(qv, v)
	uuv := cross3(qv, uv)
	// v + 2*(w*uv + uuv)
	return Vec3{
		X: v.X + 2*(q.W*uv.X+uuv.X),
		Y: v.Y + 2*(q.W*uv.Y+uuv.Y),
		Z: v.Z + 2*(q.W*uv.Z+uuv.Z),
	}
}

func cross3(a, b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

// Mat4 returns the homogeneous rotation matrix equivalent to q.
func (q Quat) Mat4() Mat4 {
	x2, y2, z2 := q.X+q.X, q.Y+q.Y, q.Z+q.Z
	xx, xy, xz := q.X*x2, q.X*y2, q.X*z2
	yy, yz, zz := q.Y*y2, q.Y*z2, q.Z*z2
	wx, wy, wz := q.W*x2, q.W*y2, q.W*z2

	return FromColumns(
		Vec4{X: 1 - (yy + zz), Y: xy + wz, Z: xz - wy, W: 0},
		Vec4{X: xy - wz, Y: 1 - (xx + zz), Z: yz + wx, W: 0},
		Vec4{X: xz + wy, Y: yz - wx, Z: 1 - (xx + yy), W: 0},
		Vec4{W: 1},
	)
}

// Transform is a rigid-plus-scale transform: scale, then rotate, then
// translate, matching the composition order used throughout the original
// builder and OBB code.
type Transform struct {
	Translation Vec3
	Rotation    Quat
	Scale       Vec3
}

// IdentityTransform returns the identity rigid transform (no scale, no
// rotation, no translation).
func IdentityTransform() Transform {
	return Transform{Scale: Vec3{X: 1, Y: 1, Z: 1}, Rotation: IdentityQuat()}
}

// TransformPoint applies t to a point: scale, then rotate, then translate.
func (t Transform) TransformPoint(p Vec3) Vec3 {
	scaled := Vec3{X: p.X * t.Scale.X, Y: p.Y * t.Scale.Y, Z: p.Z * t.Scale.Z}
	rotated := t.Rotation.RotateVec3(scaled)
	return Vec3{X: rotated.X + t.Translation.X, Y: rotated.Y + t.Translation.Y, Z: rotated.Z + t.Translation.Z}
}

// Mul composes two transforms: t.Mul(rhs) yields the transform that applies
// rhs first, then t, matching Bevy-style TRS composition used by the
// original builder's `apply_transform`.
func (t Transform) Mul(rhs Transform) Transform {
	return Transform{
		Translation: t.TransformPoint(rhs.Translation),
		Rotation:    t.Rotation.Mul(rhs.Rotation),
		Scale:       Vec3{X: t.Scale.X * rhs.Scale.X, Y: t.Scale.Y * rhs.Scale.Y, Z: t.Scale.Z * rhs.Scale.Z},
	}
}

// ComputeMatrix builds the homogeneous affine matrix for t: scale, then
// rotate, then translate, i.e. M = Translation * Rotation * Scale.
func (t Transform) ComputeMatrix() Mat4 {
	scaleM := NonUniformScaleMat4(t.Scale)
	rotM := t.Rotation.Mat4()
	return rotM.Mul(scaleM).AppendTranslation(t.Translation)
}

// IsIdentityScale reports whether t's scale is exactly (1,1,1), matching the
// original builder's intentional exact floating point equality test used to
// reject any tree-level transform that carries a scale.
func (t Transform) IsIdentityScale() bool {
	return t.Scale.X == 1 && t.Scale.Y == 1 && t.Scale.Z == 1
}
