package obbtree

import (
	"testing"

	"github.com/soypat/obbtree/obb"
)

func TestExpandPrimitiveIsLeaf(t *testing.T) {
	var bld Builder
	root := bld.Primitive(Sphere{Radius: 1}).Finalize()
	e := Expand(root)
	if !e.IsPrimitive() {
		t.Fatal("expanding a bare primitive should yield a primitive ExpandedNode")
	}
	if e.Slots != nil {
		t.Error("a primitive ExpandedNode should have no slots")
	}
}

func TestExpandCaaCloneHasNullSecondSlot(t *testing.T) {
	var bld Builder
	root := bld.Operation(CaaClone{Displacement: obb.Vec3{X: 1}, NegLimit: obb.Vec3{X: -1}, PosLimit: obb.Vec3{X: 1}}).
		With(bld.Primitive(Sphere{Radius: 1})).
		Finalize()
	e := Expand(root)
	if !e.IsOperation() {
		t.Fatal("expanding CaaClone should yield an operation node")
	}
	if e.Slots[0].IsNull() {
		t.Error("CaaClone's slot 0 should carry the real child")
	}
	if !e.Slots[1].IsNull() {
		t.Error("CaaClone's slot 1 should always be null")
	}
}

func TestExpandUnionTwoChildren(t *testing.T) {
	var bld Builder
	root := bld.Operation(Union{}).
		With(bld.Primitive(Sphere{Radius: 1})).
		With(bld.Primitive(Sphere{Radius: 2})).
		Finalize()
	e := Expand(root)
	if !e.IsOperation() {
		t.Fatal("expanding a two-child union should yield an operation node")
	}
	if e.Slots[0].IsNull() || e.Slots[1].IsNull() {
		t.Error("both slots of a two-child union should be populated")
	}
}

func TestNullSentinelNeverDescended(t *testing.T) {
	n := Null()
	if !n.IsNull() {
		t.Fatal("Null() should report IsNull")
	}
	got := n.NearestNeighbor(obb.Vec3{X: 100, Y: 100, Z: 100})
	if got < 1e30 {
		t.Errorf("null node should evaluate to +Inf, got %v", got)
	}
}
