package obbtree

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/obbtree/obb"
)

func TestReconstructElementRoundTrip(t *testing.T) {
	sphere := Sphere{Radius: 2.5}
	got := reconstructElement(OpSphere, true, sphere.DTBlock(), OpSpecificBlock{})
	gotSphere, ok := got.(Sphere)
	if !ok {
		t.Fatalf("expected Sphere, got %T", got)
	}
	if gotSphere.Radius != sphere.Radius {
		t.Errorf("radius mismatch: got %v, want %v", gotSphere.Radius, sphere.Radius)
	}

	bf := BoxFrame{Dimension: obb.Vec3{X: 1, Y: 2, Z: 3}, Thickness: 0.2}
	got = reconstructElement(OpBoxFrame, true, bf.DTBlock(), OpSpecificBlock{})
	gotBF, ok := got.(BoxFrame)
	if !ok {
		t.Fatalf("expected BoxFrame, got %T", got)
	}
	if gotBF.Dimension != bf.Dimension || gotBF.Thickness != bf.Thickness {
		t.Errorf("box frame mismatch: got %+v, want %+v", gotBF, bf)
	}

	u := Union{SmoothRadius: 0.5}
	got = reconstructElement(OpUnion, false, OpSpecificBlock{}, u.UTBlock())
	gotU, ok := got.(Union)
	if !ok {
		t.Fatalf("expected Union, got %T", got)
	}
	if gotU.SmoothRadius != u.SmoothRadius {
		t.Errorf("smooth radius mismatch: got %v, want %v", gotU.SmoothRadius, u.SmoothRadius)
	}

	clone := CaaClone{Displacement: obb.Vec3{X: 5}, NegLimit: obb.Vec3{X: -2}, PosLimit: obb.Vec3{X: 2}}
	got = reconstructElement(OpCaaClone, false, clone.DTBlock(), OpSpecificBlock{})
	gotClone, ok := got.(CaaClone)
	if !ok {
		t.Fatalf("expected CaaClone, got %T", got)
	}
	if gotClone.Displacement != clone.Displacement || gotClone.NegLimit != clone.NegLimit || gotClone.PosLimit != clone.PosLimit {
		t.Errorf("clone mismatch: got %+v, want %+v", gotClone, clone)
	}
}

func TestBoxFrameDistanceAtOrigin(t *testing.T) {
	// A thin box frame's center is inside the hollow interior, so its
	// distance to the nearest strut should be positive (outside the thin
	// shell region near the edges only).
	bf := BoxFrame{Dimension: obb.Vec3{X: 2, Y: 2, Z: 2}, Thickness: 0.1}
	d := bf.DistanceTo(obb.Vec3{})
	if d <= 0 {
		t.Errorf("expected positive distance from box-frame center to nearest strut, got %v", d)
	}
}

func TestCaaCloneRoundDivClamp(t *testing.T) {
	got := roundDivClamp(15, 10, -1, 1)
	if got != 1 {
		t.Errorf("roundDivClamp(15,10,-1,1) = %v, want 1 (clamped)", got)
	}
	got = roundDivClamp(0, 10, -1, 1)
	if got != 0 {
		t.Errorf("roundDivClamp(0,10,-1,1) = %v, want 0", got)
	}
	got = roundDivClamp(3, 0, -1, 1)
	if got != 0 {
		t.Errorf("roundDivClamp with zero displacement should return 0, got %v", got)
	}
}

func TestDefaultElementUptreeTakesMinimum(t *testing.T) {
	var e DefaultElement
	got := e.Uptree([]float32{5, 2, float32(math32.Inf(1)), 3})
	if got != 2 {
		t.Errorf("Uptree min = %v, want 2", got)
	}
}
