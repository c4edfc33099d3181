package obb

import (
	"slices"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/mat"
)

// OBB is an oriented bounding box: an affine frame (matrix) mapping the unit
// cube [-1,1]^3 into world space, plus its scale and the matrices needed to
// go back into box space without recomputing an inverse on every query.
type OBB struct {
	// Matrix maps box-local coordinates to world coordinates.
	Matrix Mat4
	// Scale holds the box's half-extents along its own local axes, as a
	// direction (w=0).
	Scale Vec4
	// FullInverse is Matrix's general inverse, used for containment and
	// distance queries in box-local space.
	FullInverse Mat4
	// TransInverse is the inverse of Matrix with scale divided out, used to
	// transform directions/points that should not be rescaled.
	TransInverse Mat4
}

// Unit returns the canonical unit box: the unit cube centered at the origin.
func Unit() OBB {
	return OBB{
		Matrix:       IdentityMat4(),
		Scale:        Vec4{X: 1, Y: 1, Z: 1},
		FullInverse:  IdentityMat4(),
		TransInverse: IdentityMat4(),
	}
}

// Zero returns the sentinel "empty" OBB used in place of NaN whenever a
// query or merge has no meaningful box to report. Its FullInverse's diagonal
// is set to +Inf so that DistanceTo/Contains always fail safely rather than
// returning a finite-looking garbage value.
func Zero() OBB {
	inf := math32.Inf(1)
	return OBB{
		Matrix: Mat4{},
		Scale:  Vec4{},
		FullInverse: Mat4{Cols: [4]Vec4{
			{X: inf},
			{Y: inf},
			{Z: inf},
			{W: 1},
		}},
		TransInverse: Mat4{},
	}
}

// IsZero reports whether b is (within a couple ULPs) the [Zero] sentinel.
func (b OBB) IsZero() bool {
	return approxEqualULP(b.Scale.X, 0, 2) && approxEqualULP(b.Scale.Y, 0, 2) && approxEqualULP(b.Scale.Z, 0, 2)
}

// FromTransform builds the OBB that is the unit cube carried by t.
func FromTransform(t Transform) OBB {
	matrix := t.ComputeMatrix()
	inv, ok := matrix.Inverse()
	if !ok {
		return Zero()
	}
	transOnly := Transform{Translation: t.Translation, Rotation: t.Rotation, Scale: Vec3{X: 1, Y: 1, Z: 1}}
	transInv, ok := transOnly.ComputeMatrix().Inverse()
	if !ok {
		return Zero()
	}
	return OBB{
		Matrix:       matrix,
		Scale:        Extend(t.Scale, 0),
		FullInverse:  inv,
		TransInverse: transInv,
	}
}

// ApplyTransform returns the OBB obtained by carrying b through an
// additional rigid+scale transform t, without recomputing either inverse
// from scratch.
func (b OBB) ApplyTransform(t Transform) OBB {
	newMatrix := t.ComputeMatrix().Mul(b.Matrix)
	newScale := Vec4{X: b.Scale.X * t.Scale.X, Y: b.Scale.Y * t.Scale.Y, Z: b.Scale.Z * t.Scale.Z}

	tInv, ok := t.ComputeMatrix().Inverse()
	if !ok {
		return Zero()
	}
	newFullInverse := b.FullInverse.Mul(tInv)

	transOnly := Transform{Translation: t.Translation, Rotation: t.Rotation, Scale: Vec3{X: 1, Y: 1, Z: 1}}
	transOnlyInv, ok := transOnly.ComputeMatrix().Inverse()
	if !ok {
		return Zero()
	}
	newTransInverse := b.TransInverse.Mul(transOnlyInv)

	return OBB{Matrix: newMatrix, Scale: newScale, FullInverse: newFullInverse, TransInverse: newTransInverse}
}

// Verts returns the box's 8 corners in world space, in the fixed order
// (±1,±1,±1) with z varying fastest.
func (b OBB) Verts() [8]Vec4 {
	var out [8]Vec4
	i := 0
	for _, sx := range [2]float32{-1, 1} {
		for _, sy := range [2]float32{-1, 1} {
			for _, sz := range [2]float32{-1, 1} {
				out[i] = b.Matrix.MulVec4(Vec4{X: sx, Y: sy, Z: sz, W: 1})
				i++
			}
		}
	}
	return out
}

// InBoxBasis maps a world-space homogeneous point/direction into the box's
// local unit-cube basis using the full inverse (scale included).
func (b OBB) InBoxBasis(p Vec4) Vec4 {
	return b.FullInverse.MulVec4(p)
}

// InBoxTransBasis maps a world-space homogeneous point/direction into the
// box's local basis using only the rigid (translation+rotation) part of the
// inverse, leaving scale untouched.
func (b OBB) InBoxTransBasis(p Vec4) Vec4 {
	return b.TransInverse.MulVec4(p)
}

// InParentBasis maps a point expressed in b's local unit-cube basis back out
// to the parent (pre-transform) frame, i.e. the inverse of InBoxBasis.
func (b OBB) InParentBasis(p Vec4) Vec4 {
	return b.Matrix.MulVec4(p)
}

// DistanceTo returns the signed distance from p to the surface of b: 0 or
// negative when p is inside, positive outside. Matches the original's
// rounded-box formula applied in box-local space. The [Zero] sentinel is
// +Inf away from every point.
func (b OBB) DistanceTo(p Vec3) float32 {
	if b.IsZero() {
		return math32.Inf(1)
	}
	local := b.InBoxBasis(Extend(p, 1)).Truncate()
	q := Vec3{
		X: math32.Abs(local.X) - 1,
		Y: math32.Abs(local.Y) - 1,
		Z: math32.Abs(local.Z) - 1,
	}
	q = Vec3{X: q.X * b.Scale.X, Y: q.Y * b.Scale.Y, Z: q.Z * b.Scale.Z}
	outside := Vec3{X: math32.Max(q.X, 0), Y: math32.Max(q.Y, 0), Z: math32.Max(q.Z, 0)}
	lenOutside := math32.Sqrt(outside.X*outside.X + outside.Y*outside.Y + outside.Z*outside.Z)
	inside := math32.Min(math32.Max(q.X, math32.Max(q.Y, q.Z)), 0)
	return lenOutside + inside
}

// MaxDistance returns the maximum Euclidean distance from p to any of b's
// 8 corners, used as the conservative upper bound during nearest-neighbor
// pruning.
func (b OBB) MaxDistance(p Vec3) float32 {
	corners := b.Verts()
	max := float32(0)
	first := true
	for _, c := range corners {
		d := Vec3{X: c.X - p.X, Y: c.Y - p.Y, Z: c.Z - p.Z}
		dist := math32.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
		if first || dist > max {
			max = dist
			first = false
		}
	}
	return max
}

// Contains reports whether p lies within b, inclusive of the boundary.
func (b OBB) Contains(p Vec3) bool {
	local := b.InBoxBasis(Extend(p, 1)).Truncate()
	amax := math32.Max(math32.Abs(local.X), math32.Max(math32.Abs(local.Y), math32.Abs(local.Z)))
	return amax <= 1
}

// BoundingBoxBlock converts b into the flat wire-format representation
// consumed by the stack-machine evaluator and (conceptually) a GPU buffer.
type BoundingBoxBlock struct {
	Matrix       [16]float32
	Scale        [4]float32
	FullInverse  [16]float32
	TransInverse [16]float32
}

// BoundingBoxBlock returns b's wire-format block.
func (b OBB) BoundingBoxBlock() BoundingBoxBlock {
	return BoundingBoxBlock{
		Matrix:       b.Matrix.array(),
		Scale:        b.Scale.array(),
		FullInverse:  b.FullInverse.array(),
		TransInverse: b.TransInverse.array(),
	}
}

// OBB reconstructs the full [OBB] this block was packed from, for callers
// (such as the flat-buffer evaluator) that only have wire-format blocks on
// hand.
func (blk BoundingBoxBlock) OBB() OBB {
	return OBB{
		Matrix:       mat4FromArray(blk.Matrix),
		Scale:        vec4FromArray4(blk.Scale),
		FullInverse:  mat4FromArray(blk.FullInverse),
		TransInverse: mat4FromArray(blk.TransInverse),
	}
}

// InBoxTransBasis maps a world-space homogeneous point/direction into the
// box's local basis, as [OBB.InBoxTransBasis], without fully reconstructing
// an [OBB] at the call site.
func (blk BoundingBoxBlock) InBoxTransBasis(p Vec4) Vec4 {
	return mat4FromArray(blk.TransInverse).MulVec4(p)
}

// Merge fits an OBB to the corner point cloud of boxes via PCA: the box
// contains every box in boxes, but is not in general the smallest-volume
// such box. Returns [Zero] for an empty or degenerate input rather than
// producing NaNs.
func Merge(boxes []OBB) OBB {
	if len(boxes) == 0 {
		return Zero()
	}
	if len(boxes) == 1 {
		return boxes[0]
	}

	var corners []Vec3
	for _, b := range boxes {
		if b.IsZero() {
			continue
		}
		for _, v := range b.Verts() {
			corners = append(corners, v.Truncate())
		}
	}
	if len(corners) == 0 {
		return Zero()
	}

	var mean Vec3
	for _, c := range corners {
		mean.X += c.X
		mean.Y += c.Y
		mean.Z += c.Z
	}
	n := float32(len(corners))
	mean.X /= n
	mean.Y /= n
	mean.Z /= n

	var cov [3][3]float64
	for _, c := range corners {
		d := Vec3{X: c.X - mean.X, Y: c.Y - mean.Y, Z: c.Z - mean.Z}
		da := [3]float64{float64(d.X), float64(d.Y), float64(d.Z)}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				cov[i][j] += da[i] * da[j]
			}
		}
	}
	covData := make([]float64, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			covData[i*3+j] = cov[i][j] / float64(n)
		}
	}
	symCov := mat.NewSymDense(3, covData)

	var eig mat.EigenSym
	ok := eig.Factorize(symCov, true)
	if !ok {
		return Zero()
	}
	var eigenvectors mat.Dense
	eig.VectorsTo(&eigenvectors)

	var basis [3]Vec3
	for col := 0; col < 3; col++ {
		basis[col] = Vec3{
			X: float32(eigenvectors.At(0, col)),
			Y: float32(eigenvectors.At(1, col)),
			Z: float32(eigenvectors.At(2, col)),
		}
	}
	// Ensure a right-handed basis so the resulting box matrix isn't a
	// reflection.
	cr := cross3(basis[0], basis[1])
	if cr.X*basis[2].X+cr.Y*basis[2].Y+cr.Z*basis[2].Z < 0 {
		basis[2] = Vec3{X: -basis[2].X, Y: -basis[2].Y, Z: -basis[2].Z}
	}

	eigenRot := FromColumns(
		Extend(basis[0], 0),
		Extend(basis[1], 0),
		Extend(basis[2], 0),
		Vec4{W: 1},
	)
	eigenRotInv := eigenRot.Transpose() // orthonormal, so transpose is inverse.

	min := Vec3{X: math32.Inf(1), Y: math32.Inf(1), Z: math32.Inf(1)}
	max := Vec3{X: math32.Inf(-1), Y: math32.Inf(-1), Z: math32.Inf(-1)}
	for _, c := range corners {
		centered := Vec3{X: c.X - mean.X, Y: c.Y - mean.Y, Z: c.Z - mean.Z}
		proj := eigenRotInv.MulVec4(Extend(centered, 0)).Truncate()
		min.X, max.X = math32.Min(min.X, proj.X), math32.Max(max.X, proj.X)
		min.Y, max.Y = math32.Min(min.Y, proj.Y), math32.Max(max.Y, proj.Y)
		min.Z, max.Z = math32.Min(min.Z, proj.Z), math32.Max(max.Z, proj.Z)
	}

	centroidLocal := Vec3{X: (min.X + max.X) / 2, Y: (min.Y + max.Y) / 2, Z: (min.Z + max.Z) / 2}
	scale := Vec3{X: (max.X - min.X) / 2, Y: (max.Y - min.Y) / 2, Z: (max.Z - min.Z) / 2}
	if scale.X <= 0 || scale.Y <= 0 || scale.Z <= 0 {
		return Zero()
	}

	matrix := TranslationMat4(mean).Mul(eigenRot).Mul(TranslationMat4(centroidLocal)).Mul(NonUniformScaleMat4(scale))

	merged := OBB{Matrix: matrix, Scale: Extend(scale, 0)}
	inv, ok := matrix.Inverse()
	if !ok {
		return Zero()
	}
	merged.FullInverse = inv
	rotOnly := eigenRot.AppendTranslation(mean).Mul(TranslationMat4(centroidLocal))
	transInv, ok := rotOnly.Inverse()
	if !ok {
		return Zero()
	}
	merged.TransInverse = transInv
	return merged
}

// Split partitions boxes into two roughly-equal halves by sorting their
// centers along the longest local axis of ref and splitting at the median,
// mirroring the original's longest-local-axis bisection used to build a
// binary BVH out of a flat union's children.
func Split(ref OBB, boxes []OBB) (left, right []int) {
	axis := longestLocalAxis(ref)
	proj := make([]centerIdx, len(boxes))
	for i, b := range boxes {
		center := b.Matrix.MulVec4(Vec4{W: 1}).Truncate()
		proj[i] = centerIdx{proj: dot3(center, axis), idx: i}
	}
	slices.SortFunc(proj, func(a, b centerIdx) int {
		switch {
		case a.proj < b.proj:
			return -1
		case a.proj > b.proj:
			return 1
		default:
			return 0
		}
	})

	mid := len(proj) / 2
	left = make([]int, 0, len(proj)-mid)
	right = make([]int, 0, mid)
	for i, p := range proj {
		if i < mid {
			right = append(right, p.idx)
		} else {
			left = append(left, p.idx)
		}
	}
	return left, right
}

func longestLocalAxis(b OBB) Vec3 {
	cols := [3]Vec3{b.Matrix.Cols[0].Truncate(), b.Matrix.Cols[1].Truncate(), b.Matrix.Cols[2].Truncate()}
	best := 0
	bestLen := lengthVec3(cols[0])
	for i := 1; i < 3; i++ {
		l := lengthVec3(cols[i])
		if l > bestLen {
			bestLen = l
			best = i
		}
	}
	return cols[best]
}

func lengthVec3(v Vec3) float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func dot3(a, b Vec3) float32 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

type centerIdx struct {
	proj float32
	idx  int
}

func approxEqualULP(a, b float32, maxULPs int) bool {
	if a == b {
		return true
	}
	diff := math32.Abs(a - b)
	if diff < 1e-12 {
		return true
	}
	scale := math32.Max(math32.Abs(a), math32.Abs(b))
	return diff <= scale*float32(maxULPs)*1.1920929e-7 // float32 machine epsilon
}
