package obb

import (
	"testing"

	"github.com/chewxy/math32"
)

func approxFloat(t *testing.T, got, want, tol float32) {
	t.Helper()
	if math32.Abs(got-want) > tol {
		t.Errorf("got %v, want %v (tol %v)", got, want, tol)
	}
}

func TestUnitBox(t *testing.T) {
	u := Unit()
	if u.IsZero() {
		t.Fatal("unit box reported as zero")
	}
	corners := u.Verts()
	if len(corners) != 8 {
		t.Fatalf("want 8 corners, got %d", len(corners))
	}
	for _, c := range corners {
		if math32.Abs(c.X) != 1 || math32.Abs(c.Y) != 1 || math32.Abs(c.Z) != 1 {
			t.Errorf("unit box corner not at unit extent: %+v", c)
		}
	}
	if !u.Contains(Vec3{}) {
		t.Error("unit box should contain the origin")
	}
	if u.Contains(Vec3{X: 2}) {
		t.Error("unit box should not contain (2,0,0)")
	}
}

func TestZeroBoxFailsSafe(t *testing.T) {
	z := Zero()
	if !z.IsZero() {
		t.Fatal("Zero() not reported as zero")
	}
	// Distance/contains queries against the zero sentinel must never panic
	// or silently return a misleadingly small/negative distance.
	d := z.DistanceTo(Vec3{X: 100, Y: 100, Z: 100})
	if math32.IsNaN(d) {
		t.Error("zero box distance query produced NaN")
	}
}

func TestFromTransformRoundTrip(t *testing.T) {
	tr := Transform{
		Translation: Vec3{X: 3, Y: -2, Z: 5},
		Rotation:    IdentityQuat(),
		Scale:       Vec3{X: 2, Y: 1, Z: 4},
	}
	b := FromTransform(tr)
	if b.IsZero() {
		t.Fatal("valid transform produced zero box")
	}
	// The box's local origin should round-trip back to the translation.
	world := b.InParentBasis(Vec4{W: 1})
	approxFloat(t, world.X, tr.Translation.X, 1e-4)
	approxFloat(t, world.Y, tr.Translation.Y, 1e-4)
	approxFloat(t, world.Z, tr.Translation.Z, 1e-4)

	local := b.InBoxBasis(Extend(world.Truncate(), 1))
	approxFloat(t, local.X, 0, 1e-4)
	approxFloat(t, local.Y, 0, 1e-4)
	approxFloat(t, local.Z, 0, 1e-4)
}

func TestDistanceToMatchesRoundedBoxFormula(t *testing.T) {
	u := Unit()
	// Directly outside the +X face.
	d := u.DistanceTo(Vec3{X: 2})
	approxFloat(t, d, 1, 1e-4)
	// Center is strictly inside: negative distance.
	d = u.DistanceTo(Vec3{})
	if d >= 0 {
		t.Errorf("expected negative distance at box center, got %v", d)
	}
}

func TestMaxDistanceIsConservativeUpperBound(t *testing.T) {
	u := Unit()
	p := Vec3{X: 5}
	maxD := u.MaxDistance(p)
	d := u.DistanceTo(p)
	if maxD < d {
		t.Errorf("MaxDistance (%v) should never be less than DistanceTo (%v)", maxD, d)
	}
}

// TestMergeTwoUnitCubes covers scenario S5: merging two unit cubes centered
// at (-2,0,0) and (2,0,0) should produce a single box whose half-extent
// along X covers both, i.e. at least 3 (1 unit half-extent + 2 units
// separation) and whose center sits at the origin.
func TestMergeTwoUnitCubes(t *testing.T) {
	left := FromTransform(Transform{
		Translation: Vec3{X: -2},
		Rotation:    IdentityQuat(),
		Scale:       Vec3{X: 1, Y: 1, Z: 1},
	})
	right := FromTransform(Transform{
		Translation: Vec3{X: 2},
		Rotation:    IdentityQuat(),
		Scale:       Vec3{X: 1, Y: 1, Z: 1},
	})
	merged := Merge([]OBB{left, right})
	if merged.IsZero() {
		t.Fatal("merge of two valid boxes produced zero box")
	}

	for _, corner := range [2]Vec3{{X: -3}, {X: 3}} {
		if !merged.Contains(corner) && merged.DistanceTo(corner) > 1e-2 {
			t.Errorf("merged box does not contain/touch expected extreme corner %+v (dist=%v)",
				corner, merged.DistanceTo(corner))
		}
	}
	origin := merged.InBoxBasis(Vec4{W: 1})
	if math32.Abs(origin.X) > 1 || math32.Abs(origin.Y) > 1 || math32.Abs(origin.Z) > 1 {
		t.Errorf("world origin maps outside merged box local space: %+v", origin)
	}
}

func TestMergeEmptyAndSingle(t *testing.T) {
	if !Merge(nil).IsZero() {
		t.Error("merging zero boxes should return the zero sentinel")
	}
	u := Unit()
	got := Merge([]OBB{u})
	if got.Matrix != u.Matrix {
		t.Error("merging a single box should return it unchanged")
	}
}

func TestSplitPartitionsAllIndices(t *testing.T) {
	boxes := []OBB{
		FromTransform(Transform{Translation: Vec3{X: -3}, Rotation: IdentityQuat(), Scale: Vec3{X: 1, Y: 1, Z: 1}}),
		FromTransform(Transform{Translation: Vec3{X: -1}, Rotation: IdentityQuat(), Scale: Vec3{X: 1, Y: 1, Z: 1}}),
		FromTransform(Transform{Translation: Vec3{X: 1}, Rotation: IdentityQuat(), Scale: Vec3{X: 1, Y: 1, Z: 1}}),
		FromTransform(Transform{Translation: Vec3{X: 3}, Rotation: IdentityQuat(), Scale: Vec3{X: 1, Y: 1, Z: 1}}),
	}
	merged := Merge(boxes)
	left, right := Split(merged, boxes)
	if len(left)+len(right) != len(boxes) {
		t.Fatalf("split dropped indices: left=%v right=%v", left, right)
	}
	seen := make(map[int]bool)
	for _, i := range append(append([]int{}, left...), right...) {
		if seen[i] {
			t.Fatalf("index %d appears in both halves", i)
		}
		seen[i] = true
	}
}

func TestMat4InverseIdentity(t *testing.T) {
	inv, ok := IdentityMat4().Inverse()
	if !ok {
		t.Fatal("identity matrix should be invertible")
	}
	if inv != IdentityMat4() {
		t.Errorf("inverse of identity should be identity, got %+v", inv)
	}
}

func TestMat4InverseRoundTrip(t *testing.T) {
	m := TranslationMat4(Vec3{X: 1, Y: 2, Z: 3}).Mul(NonUniformScaleMat4(Vec3{X: 2, Y: 0.5, Z: 4}))
	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("well-conditioned matrix reported singular")
	}
	prod := m.Mul(inv)
	id := IdentityMat4()
	for c := 0; c < 4; c++ {
		got := prod.Cols[c].array()
		want := id.Cols[c].array()
		for i := range got {
			approxFloat(t, got[i], want[i], 1e-3)
		}
	}
}

// TestTransformCompositionMatchesSequentialApplication covers the universal
// invariant that composing two transforms and applying the result once must
// agree with applying them sequentially.
func TestTransformCompositionMatchesSequentialApplication(t *testing.T) {
	inner := Transform{Translation: Vec3{X: 1, Y: 0, Z: 0}, Rotation: IdentityQuat(), Scale: Vec3{X: 1, Y: 1, Z: 1}}
	outer := Transform{Translation: Vec3{X: 0, Y: 2, Z: 0}, Rotation: IdentityQuat(), Scale: Vec3{X: 1, Y: 1, Z: 1}}
	p := Vec3{X: 3, Y: 4, Z: 5}

	sequential := outer.TransformPoint(inner.TransformPoint(p))
	composed := outer.Mul(inner).TransformPoint(p)

	approxFloat(t, composed.X, sequential.X, 1e-4)
	approxFloat(t, composed.Y, sequential.Y, 1e-4)
	approxFloat(t, composed.Z, sequential.Z, 1e-4)
}

func TestMat4InverseSingular(t *testing.T) {
	singular := Mat4{} // all-zero, determinant 0
	_, ok := singular.Inverse()
	if ok {
		t.Fatal("zero matrix should not be invertible")
	}
}
