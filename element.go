package obbtree

import (
	"github.com/chewxy/math32"
	"github.com/soypat/obbtree/obb"
)

// ElementInfo describes the shape of an [Element]'s slots: how many
// accumulating slots and how many drawn (geometry-carrying) slots it has,
// which together are the children a non-union operator needs before it can
// be finalized (see [ElementInfo.NumSlots]), and whether it behaves like a
// union (variable arity, slots never "fill up").
type ElementInfo struct {
	NumAccSlots   int
	NumDrawnSlots int
	IsPrimitive   bool
	OpID          uint32
	IsUnion       bool
}

// NumSlots returns the element's required slot count, i.e. the number of
// children a non-union operator must have before it can be finalized: the
// accumulating slots plus the drawn (geometry-carrying) slots.
func (e ElementInfo) NumSlots() int {
	return e.NumAccSlots + e.NumDrawnSlots
}

func primitiveInfo(opID uint32) ElementInfo {
	return ElementInfo{IsPrimitive: true, OpID: opID}
}

func strictInfo(opID uint32, accSlots, drawnSlots int) ElementInfo {
	return ElementInfo{NumAccSlots: accSlots, NumDrawnSlots: drawnSlots, OpID: opID}
}

func unionInfo(opID uint32) ElementInfo {
	return ElementInfo{IsUnion: true, OpID: opID}
}

// Element is a node's payload: a primitive SDF or an operator combining its
// children. Implementations are small value types; the tree structure
// itself (slots, children) lives in [DenseNode].
type Element interface {
	Info() ElementInfo
	// Bbox returns the element's own local-space bounding box, given the
	// (already-merged) bounding boxes of its children, if any.
	Bbox(children []obb.OBB) obb.OBB
	// Downtree maps a query point from this element's parent frame into
	// the frame each child should be queried in. For primitives this is
	// never called.
	Downtree(p obb.Vec3) []obb.Vec3
	// Uptree combines the per-child nearest-neighbor distances computed
	// in Downtree's frames back into this element's own distance.
	Uptree(childDistances []float32) float32
	// DistanceTo is only ever called on primitives: the signed distance
	// from p (already in local space) to the primitive's surface.
	DistanceTo(p obb.Vec3) float32
	// DTBlock and UTBlock pack the element's parameters into the flat
	// wire-format blocks consumed by the stack-machine evaluator.
	DTBlock() OpSpecificBlock
	UTBlock() OpSpecificBlock
}

// DefaultElement implements sensible defaults for every [Element] method,
// mirroring the original trait's default method bodies. Concrete element
// types embed it and override only what they change.
type DefaultElement struct{}

// Downtree defaults to nil: callers interpret a missing entry as the
// identity map, querying a child at the same point as the parent. Unions
// rely entirely on this default.
func (DefaultElement) Downtree(p obb.Vec3) []obb.Vec3 {
	return nil
}

// Uptree defaults to taking the minimum across children, the behavior any
// ordinary union-like combination wants.
func (DefaultElement) Uptree(childDistances []float32) float32 {
	min := float32(math32.Inf(1))
	for _, d := range childDistances {
		if d < min {
			min = d
		}
	}
	return min
}

// DistanceTo defaults to the distance from the origin, i.e. treats the
// element as a point. Only meaningful overridden by primitives.
func (DefaultElement) DistanceTo(p obb.Vec3) float32 {
	return lengthVec3(p)
}

// DTBlock defaults to the all-zero block.
func (DefaultElement) DTBlock() OpSpecificBlock { return OpSpecificBlock{} }

// UTBlock defaults to the all-zero block.
func (DefaultElement) UTBlock() OpSpecificBlock { return OpSpecificBlock{} }

func lengthVec3(v obb.Vec3) float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Op codes for the closed catalog of elements this module supports.
const (
	OpSphere   uint32 = 0
	OpUnion    uint32 = 0
	OpCaaClone uint32 = 1
	OpBoxFrame uint32 = 5
)

// Sphere is a primitive element: the signed distance field of a solid ball
// of the given radius centered at the origin.
type Sphere struct {
	DefaultElement
	Radius float32
}

// Info reports Sphere as a primitive occupying op code [OpSphere].
func (Sphere) Info() ElementInfo { return primitiveInfo(OpSphere) }

// Bbox returns the axis-aligned cube bounding the sphere.
func (s Sphere) Bbox(children []obb.OBB) obb.OBB {
	return obb.FromTransform(obb.Transform{
		Rotation: obb.IdentityQuat(),
		Scale:    obb.Vec3{X: s.Radius, Y: s.Radius, Z: s.Radius},
	})
}

// DistanceTo returns the signed distance from p to the sphere's surface.
func (s Sphere) DistanceTo(p obb.Vec3) float32 {
	return lengthVec3(p) - s.Radius
}

// DTBlock packs the sphere's radius as the block's first float.
func (s Sphere) DTBlock() OpSpecificBlock {
	var b OpSpecificBlock
	b.Floats[0] = s.Radius
	return b
}

// BoxFrame is a primitive element: the SDF of a hollow rectangular frame
// (a box with its faces replaced by thin struts), parameterized by its
// full extents and strut thickness.
type BoxFrame struct {
	DefaultElement
	Dimension obb.Vec3
	Thickness float32
}

// Info reports BoxFrame as a primitive occupying op code [OpBoxFrame].
func (BoxFrame) Info() ElementInfo { return primitiveInfo(OpBoxFrame) }

// Bbox returns the axis-aligned box bounding the frame.
func (bf BoxFrame) Bbox(children []obb.OBB) obb.OBB {
	return obb.FromTransform(obb.Transform{
		Rotation: obb.IdentityQuat(),
		Scale:    bf.Dimension,
	})
}

// DistanceTo returns the signed distance from p to the box-frame's surface.
// Lifted from the CPU box-frame evaluator this catalog is grounded on,
// adapted from a batched evaluation to a single point.
func (bf BoxFrame) DistanceTo(p obb.Vec3) float32 {
	e := bf.Thickness
	b := obb.Vec3{X: bf.Dimension.X / 2, Y: bf.Dimension.Y / 2, Z: bf.Dimension.Z / 2}

	px, py, pz := math32.Abs(p.X)-b.X, math32.Abs(p.Y)-b.Y, math32.Abs(p.Z)-b.Z
	qx, qy, qz := math32.Abs(px+e)-e, math32.Abs(py+e)-e, math32.Abs(pz+e)-e

	d1 := boxFrameLeg(px, qy, qz)
	d2 := boxFrameLeg(qx, py, qz)
	d3 := boxFrameLeg(qx, qy, pz)
	return math32.Min(d1, math32.Min(d2, d3))
}

func boxFrameLeg(x, y, z float32) float32 {
	outside := obb.Vec3{X: math32.Max(x, 0), Y: math32.Max(y, 0), Z: math32.Max(z, 0)}
	lenOutside := math32.Sqrt(outside.X*outside.X + outside.Y*outside.Y + outside.Z*outside.Z)
	inside := math32.Min(math32.Max(x, math32.Max(y, z)), 0)
	return lenOutside + inside
}

// DTBlock packs dimension (as a direction vec4) and thickness.
func (bf BoxFrame) DTBlock() OpSpecificBlock {
	var blk OpSpecificBlock
	blk.Vec4s[0] = obb.Extend(bf.Dimension, 0)
	blk.Floats[0] = bf.Thickness
	return blk
}

// Union is a variable-arity operator: its bounding box is the PCA merge of
// its children's boxes, and its distance is the minimum across children.
// SmoothRadius is carried through to the flat buffer for a smooth-union
// evaluator to consume even though the nearest-neighbor distance query
// itself uses a hard minimum (see spec.md §4.3/§4.8).
type Union struct {
	DefaultElement
	SmoothRadius float32
}

// Info reports Union as a variable-arity union occupying op code [OpUnion].
func (Union) Info() ElementInfo { return unionInfo(OpUnion) }

// Bbox merges the children's boxes via PCA fitting.
func (Union) Bbox(children []obb.OBB) obb.OBB {
	return obb.Merge(children)
}

// UTBlock packs the smooth-union blending radius.
func (u Union) UTBlock() OpSpecificBlock {
	var blk OpSpecificBlock
	blk.Floats[0] = u.SmoothRadius
	return blk
}

// CaaClone is a continuous axis-aligned lattice clone operator: it
// replicates its single child along up to three axes at a fixed spacing,
// clamped to an inclusive integer lattice range.
type CaaClone struct {
	DefaultElement
	Displacement obb.Vec3
	NegLimit     obb.Vec3
	PosLimit     obb.Vec3
}

// Info reports CaaClone as a strict single-slot operator at op code
// [OpCaaClone]: it always has exactly one real (drawn) child and no
// accumulating slots of its own.
func (CaaClone) Info() ElementInfo { return strictInfo(OpCaaClone, 0, 1) }

// Bbox computes the lattice's own bounding box, ignoring the child's bbox
// entirely: translation centers it between the limits, scale spans the full
// neg-to-pos range. This matches the original element verbatim (it does not
// grow the box by the cloned primitive's own extent).
func (c CaaClone) Bbox(children []obb.OBB) obb.OBB {
	center := obb.Vec3{
		X: (c.NegLimit.X + c.PosLimit.X) / 2 * c.Displacement.X,
		Y: (c.NegLimit.Y + c.PosLimit.Y) / 2 * c.Displacement.Y,
		Z: (c.NegLimit.Z + c.PosLimit.Z) / 2 * c.Displacement.Z,
	}
	scale := obb.Vec3{
		X: (c.PosLimit.X - c.NegLimit.X) * c.Displacement.X,
		Y: (c.PosLimit.Y - c.NegLimit.Y) * c.Displacement.Y,
		Z: (c.PosLimit.Z - c.NegLimit.Z) * c.Displacement.Z,
	}
	return obb.FromTransform(obb.Transform{
		Translation: center,
		Rotation:    obb.IdentityQuat(),
		Scale:       scale,
	})
}

// Downtree maps the query point into the nearest lattice cell using the
// clamp-round-subtract formulation (spec.md's chosen resolution of the
// downtree open question, see SPEC_FULL.md §1.1.2): round to the nearest
// cell index, clamp that index to the configured limits, then subtract the
// cell's displacement back out.
func (c CaaClone) Downtree(p obb.Vec3) []obb.Vec3 {
	idx := obb.Vec3{
		X: roundDivClamp(p.X, c.Displacement.X, c.NegLimit.X, c.PosLimit.X),
		Y: roundDivClamp(p.Y, c.Displacement.Y, c.NegLimit.Y, c.PosLimit.Y),
		Z: roundDivClamp(p.Z, c.Displacement.Z, c.NegLimit.Z, c.PosLimit.Z),
	}
	local := obb.Vec3{
		X: p.X - idx.X*c.Displacement.X,
		Y: p.Y - idx.Y*c.Displacement.Y,
		Z: p.Z - idx.Z*c.Displacement.Z,
	}
	// Slot 0 carries the real child; slot 1 is a permanent null (the
	// expansion step never populates a second child for CaaClone).
	return []obb.Vec3{local, local}
}

// Uptree passes through the one live branch (slot 0). This is the resolved
// behavior from SPEC_FULL.md §1.1.3: numerically identical to taking the
// minimum since slot 1's distance is always +Inf.
func (CaaClone) Uptree(childDistances []float32) float32 {
	if len(childDistances) == 0 {
		return float32(math32.Inf(1))
	}
	return childDistances[0]
}

func roundDivClamp(x, disp, neg, pos float32) float32 {
	if disp == 0 {
		return 0
	}
	idx := math32.Round(x / disp)
	if idx < neg {
		idx = neg
	}
	if idx > pos {
		idx = pos
	}
	return idx
}

// DTBlock packs displacement, negative and positive lattice limits.
func (c CaaClone) DTBlock() OpSpecificBlock {
	var blk OpSpecificBlock
	blk.Vec4s[0] = obb.Extend(c.Displacement, 0)
	blk.Vec4s[1] = obb.Extend(c.NegLimit, 0)
	blk.Vec4s[2] = obb.Extend(c.PosLimit, 0)
	return blk
}
