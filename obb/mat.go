package obb

import "github.com/chewxy/math32"

// Mat4 is a general 4x4 matrix stored column-major: Cols[0..2] are the
// basis columns, Cols[3] is the translation column. A well-formed affine
// transform has Cols[i].W == 0 for i<3 and Cols[3].W == 1.
type Mat4 struct {
	Cols [4]Vec4
}

// IdentityMat4 returns the 4x4 identity matrix.
func IdentityMat4() Mat4 {
	return Mat4{Cols: [4]Vec4{
		{X: 1},
		{Y: 1},
		{Z: 1},
		{W: 1},
	}}
}

// ZeroMat4 returns the all-zero 4x4 matrix.
func ZeroMat4() Mat4 {
	return Mat4{}
}

// FromColumns builds a matrix from its four columns.
func FromColumns(c0, c1, c2, c3 Vec4) Mat4 {
	return Mat4{Cols: [4]Vec4{c0, c1, c2, c3}}
}

// TranslationMat4 returns the affine matrix that translates points by t.
func TranslationMat4(t Vec3) Mat4 {
	m := IdentityMat4()
	m.Cols[3] = Extend(t, 1)
	return m
}

// NonUniformScaleMat4 returns the affine matrix that scales each axis
// independently by s's components.
func NonUniformScaleMat4(s Vec3) Mat4 {
	return Mat4{Cols: [4]Vec4{
		{X: s.X},
		{Y: s.Y},
		{Z: s.Z},
		{W: 1},
	}}
}

// Col returns the i-th column.
func (m Mat4) Col(i int) Vec4 { return m.Cols[i] }

// Row returns the i-th row.
func (m Mat4) Row(i int) Vec4 {
	return Vec4{X: m.Cols[0].array()[i], Y: m.Cols[1].array()[i], Z: m.Cols[2].array()[i], W: m.Cols[3].array()[i]}
}

// MulVec4 computes m*v.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return addVec4(addVec4(scaleVec4(v.X, m.Cols[0]), scaleVec4(v.Y, m.Cols[1])), addVec4(scaleVec4(v.Z, m.Cols[2]), scaleVec4(v.W, m.Cols[3])))
}

// Mul computes the matrix product m*rhs.
func (m Mat4) Mul(rhs Mat4) Mat4 {
	return Mat4{Cols: [4]Vec4{
		m.MulVec4(rhs.Cols[0]),
		m.MulVec4(rhs.Cols[1]),
		m.MulVec4(rhs.Cols[2]),
		m.MulVec4(rhs.Cols[3]),
	}}
}

// AppendTranslation returns Translation(t)*m, i.e. m followed by a
// translation of t in the resulting (post-m) frame.
func (m Mat4) AppendTranslation(t Vec3) Mat4 {
	return TranslationMat4(t).Mul(m)
}

// Transpose returns the matrix transpose.
func (m Mat4) Transpose() Mat4 {
	return Mat4{Cols: [4]Vec4{m.Row(0), m.Row(1), m.Row(2), m.Row(3)}}
}

// array returns the matrix flattened column-major, matching the wire
// format's column-major convention.
func (m Mat4) array() [16]float32 {
	var out [16]float32
	for c := 0; c < 4; c++ {
		col := m.Cols[c].array()
		copy(out[c*4:c*4+4], col[:])
	}
	return out
}

// mat4FromArray rebuilds a Mat4 from its column-major flattened form, the
// inverse of [Mat4.array].
func mat4FromArray(a [16]float32) Mat4 {
	var m Mat4
	for c := 0; c < 4; c++ {
		var col [4]float32
		copy(col[:], a[c*4:c*4+4])
		m.Cols[c] = vec4FromArray4(col)
	}
	return m
}

// Determinant computes the 4x4 determinant via cofactor expansion.
func (m Mat4) Determinant() float32 {
	a := m.array()
	// a is column-major: a[col*4+row]
	e := func(r, c int) float32 { return a[c*4+r] }
	m00, m01, m02, m03 := e(0, 0), e(0, 1), e(0, 2), e(0, 3)
	m10, m11, m12, m13 := e(1, 0), e(1, 1), e(1, 2), e(1, 3)
	m20, m21, m22, m23 := e(2, 0), e(2, 1), e(2, 2), e(2, 3)
	m30, m31, m32, m33 := e(3, 0), e(3, 1), e(3, 2), e(3, 3)

	b00 := m00*m11 - m01*m10
	b01 := m00*m12 - m02*m10
	b02 := m00*m13 - m03*m10
	b03 := m01*m12 - m02*m11
	b04 := m01*m13 - m03*m11
	b05 := m02*m13 - m03*m12
	b06 := m20*m31 - m21*m30
	b07 := m20*m32 - m22*m30
	b08 := m20*m33 - m23*m30
	b09 := m21*m32 - m22*m31
	b10 := m21*m33 - m23*m31
	b11 := m22*m33 - m23*m32

	return b00*b11 - b01*b10 + b02*b09 + b03*b08 - b04*b07 + b05*b06
}

// Inverse returns the inverse of m and whether m was non-singular, via
// Gauss-Jordan elimination on [m | I]. On failure (a badly conditioned
// pivot, per epstol) it returns the zero matrix and false, never
// NaN/Inf-polluted garbage.
func (m Mat4) Inverse() (Mat4, bool) {
	if math32.Abs(m.Determinant()) < epstol {
		return ZeroMat4(), false
	}

	// a[row][col], augmented with the identity in cols 4..7.
	var a [4][8]float32
	for row := 0; row < 4; row++ {
		r := m.Row(row).array()
		copy(a[row][:4], r[:])
		a[row][4+row] = 1
	}

	for col := 0; col < 4; col++ {
		pivot := col
		best := math32.Abs(a[col][col])
		for row := col + 1; row < 4; row++ {
			if v := math32.Abs(a[row][col]); v > best {
				best = v
				pivot = row
			}
		}
		if best < epstol {
			return ZeroMat4(), false
		}
		a[col], a[pivot] = a[pivot], a[col]

		inv := 1 / a[col][col]
		for k := 0; k < 8; k++ {
			a[col][k] *= inv
		}
		for row := 0; row < 4; row++ {
			if row == col {
				continue
			}
			factor := a[row][col]
			if factor == 0 {
				continue
			}
			for k := 0; k < 8; k++ {
				a[row][k] -= factor * a[col][k]
			}
		}
	}

	result := Mat4{}
	for row := 0; row < 4; row++ {
		var r [4]float32
		copy(r[:], a[row][4:8])
		rv := vec4FromArray4(r)
		setRow(&result, row, rv)
	}
	return result, true
}

func vec4FromArray4(a [4]float32) Vec4 {
	return Vec4{X: a[0], Y: a[1], Z: a[2], W: a[3]}
}

func setRow(m *Mat4, row int, v Vec4) {
	va := v.array()
	for col := 0; col < 4; col++ {
		switch row {
		case 0:
			m.Cols[col].X = va[col]
		case 1:
			m.Cols[col].Y = va[col]
		case 2:
			m.Cols[col].Z = va[col]
		case 3:
			m.Cols[col].W = va[col]
		}
	}
}
