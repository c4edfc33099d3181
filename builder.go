package obbtree

import (
	"errors"
	"fmt"

	"github.com/soypat/obbtree/obb"
)

// Flags is a bitmask controlling [Builder] error-handling behavior.
type Flags uint64

const (
	// FlagNoBuildPanic controls panicking behavior on builder contract
	// violations (slot overflow, finalizing with unfilled slots, setting a
	// slot on a primitive). If set these errors do not panic, instead
	// accumulating for later inspection with [Builder.Err].
	FlagNoBuildPanic Flags = 1 << iota
)

// Builder wraps node construction, providing a choice of error handling
// strategy: panic immediately (the default, useful for catching programmer
// errors during development) or accumulate errors for later inspection,
// mirroring the teacher's own accumulate-or-panic [Builder] pattern.
type Builder struct {
	flags     Flags
	accumErrs []error
}

// Flags returns the builder's current flag bitmask.
func (bld *Builder) Flags() Flags { return bld.flags }

// SetFlags replaces the builder's flag bitmask.
func (bld *Builder) SetFlags(flags Flags) { bld.flags = flags }

// Err returns errors accumulated during node construction when
// [FlagNoBuildPanic] is set. The returned error implements Unwrap() []error.
func (bld *Builder) Err() error {
	if len(bld.accumErrs) == 0 {
		return nil
	}
	return errors.Join(bld.accumErrs...)
}

// ClearErrors clears accumulated errors such that [Builder.Err] returns nil
// on the next call.
func (bld *Builder) ClearErrors() {
	bld.accumErrs = bld.accumErrs[:0]
}

func (bld *Builder) buildErrorf(msg string, args ...any) {
	if bld.flags&FlagNoBuildPanic == 0 {
		panic(fmt.Sprintf(msg, args...))
	}
	bld.accumErrs = append(bld.accumErrs, fmt.Errorf(msg, args...))
}

// Node is the transient, mutable representation of a tree node while it is
// under construction. Call [Node.Finalize] once all required slots are
// filled to obtain an immutable [DenseNode].
type Node struct {
	bld       *Builder
	elem      Element
	slots     []*Node
	transform obb.Transform
}

// Primitive starts a new leaf node wrapping a primitive [Element].
func (bld *Builder) Primitive(e Element) *Node {
	info := e.Info()
	if !info.IsPrimitive {
		bld.buildErrorf("Primitive called with non-primitive element")
	}
	return &Node{bld: bld, elem: e, transform: obb.IdentityTransform()}
}

// Operation starts a new operator node wrapping an operator [Element]. No
// slots are filled yet; use [Node.With] to add children.
func (bld *Builder) Operation(e Element) *Node {
	info := e.Info()
	if info.IsPrimitive {
		bld.buildErrorf("Operation called with primitive element")
	}
	return &Node{bld: bld, elem: e, transform: obb.IdentityTransform()}
}

// With appends a child to n's slots. Panics (or accumulates, per
// [FlagNoBuildPanic]) if n is a primitive or if its slots are already full
// for a non-union operator.
func (n *Node) With(child *Node) *Node {
	info := n.elem.Info()
	if info.IsPrimitive {
		n.bld.buildErrorf("Can't set slots on primitive!")
		return n
	}
	if !info.IsUnion && len(n.slots) >= info.NumSlots() {
		n.bld.buildErrorf("Slots already full!")
		return n
	}
	n.slots = append(n.slots, child)
	return n
}

// Transform composes t onto n's accumulated transform: subsequent
// transforms apply on top of, not instead of, prior ones. Only rigid
// (translation+rotation) transforms are accepted here: t must carry an
// exactly-identity scale, an intentional restriction preserved from the
// original builder (non-uniform scale belongs to an element's own bbox
// formula, e.g. Sphere's radius or CaaClone's limits, never to a tree-level
// transform).
func (n *Node) Transform(t obb.Transform) *Node {
	if !t.IsIdentityScale() {
		n.bld.buildErrorf("Transform called with non-identity scale!")
		return n
	}
	n.transform = n.transform.Mul(t)
	return n
}

// Finalize asserts that n's slots are completely filled (unions are always
// considered full) and returns the immutable [DenseNode], applying n's
// accumulated transform to the node's own bounding box only (SPEC_FULL.md
// §1.1.4: transform is applied at finalize time, not deferred to query
// time). Children keep their own already-finalized boxes: they are always
// queried in their own local frame, so applying the parent's transform to
// them as well would double it.
func (n *Node) Finalize() DenseNode {
	info := n.elem.Info()
	if !info.IsPrimitive && !info.IsUnion && len(n.slots) < info.NumSlots() {
		n.bld.buildErrorf("Tried finalizing SDF node without all required slots filled!")
	}

	children := make([]DenseNode, len(n.slots))
	childBoxes := make([]obb.OBB, len(n.slots))
	for i, s := range n.slots {
		children[i] = s.Finalize()
		childBoxes[i] = children[i].Bbox
	}

	bbox := n.elem.Bbox(childBoxes).ApplyTransform(n.transform)

	return DenseNode{
		Elem:      n.elem,
		Slots:     children,
		Bbox:      bbox,
		Transform: n.transform,
	}
}
