package obbtree

import (
	"strings"
	"testing"

	"github.com/soypat/obbtree/obb"
)

func TestBuilderPanicsOnUnfilledSlot(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic finalizing a CaaClone with no child")
		}
	}()
	var bld Builder
	bld.Operation(CaaClone{}).Finalize()
}

func TestBuilderRejectsNonIdentityScaleTransform(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic from a Transform call carrying non-identity scale")
		}
	}()
	var bld Builder
	bld.Primitive(Sphere{Radius: 1}).
		Transform(obb.Transform{Rotation: obb.IdentityQuat(), Scale: obb.Vec3{X: 2, Y: 1, Z: 1}})
}

func TestBuilderAccumulatesErrorsWhenFlagged(t *testing.T) {
	var bld Builder
	bld.SetFlags(FlagNoBuildPanic)
	bld.Operation(CaaClone{}).Finalize()
	if bld.Err() == nil {
		t.Fatal("expected an accumulated error for an unfilled CaaClone")
	}
	bld.ClearErrors()
	if bld.Err() != nil {
		t.Fatal("ClearErrors should reset the accumulated error state")
	}
}

func TestBuilderRejectsSlotOnPrimitive(t *testing.T) {
	var bld Builder
	bld.SetFlags(FlagNoBuildPanic)
	bld.Primitive(Sphere{Radius: 1}).With(bld.Primitive(Sphere{Radius: 1}))
	if bld.Err() == nil {
		t.Fatal("expected an error adding a slot to a primitive")
	}
}

func TestUnionEmptyIsNullEverywhere(t *testing.T) {
	var bld Builder
	root := bld.Operation(Union{}).Finalize()
	if !root.IsEmpty() {
		t.Fatal("empty union should report IsEmpty")
	}
	if got := root.NearestNeighbor(obb.Vec3{}); !isInf(got) {
		t.Errorf("empty union should evaluate to +Inf, got %v", got)
	}

	expanded := Expand(root)
	if !expanded.IsNull() {
		t.Fatal("expanding an empty union should produce the null sentinel")
	}
	buf := MakeBuffer(expanded)
	if len(buf.Downtree) != 0 {
		t.Fatalf("expected empty buffer, got %d entries", len(buf.Downtree))
	}
}

func isInf(f float32) bool {
	return f > 3.0e38 || f < -3.0e38
}

func TestFinalizeSucceedsWithExactRequiredSlots(t *testing.T) {
	var bld Builder
	root := bld.Operation(CaaClone{Displacement: obb.Vec3{X: 1}, NegLimit: obb.Vec3{X: -1}, PosLimit: obb.Vec3{X: 1}}).
		With(bld.Primitive(Sphere{Radius: 1})).
		Finalize()
	if bld.Err() != nil {
		t.Fatalf("finalizing a CaaClone with its one required slot filled should not error: %v", bld.Err())
	}
	if len(root.Slots) != 1 {
		t.Fatalf("expected exactly 1 slot, got %d", len(root.Slots))
	}
}

func TestDebugStringMentionsElementTypes(t *testing.T) {
	var bld Builder
	root := bld.Operation(Union{}).
		With(bld.Primitive(Sphere{Radius: 1})).
		With(bld.Primitive(BoxFrame{Dimension: obb.Vec3{X: 1, Y: 1, Z: 1}, Thickness: 0.1})).
		Finalize()
	s := root.DebugString()
	if !strings.Contains(s, "Sphere") || !strings.Contains(s, "BoxFrame") || !strings.Contains(s, "Union") {
		t.Errorf("debug string missing expected element names: %q", s)
	}
}
