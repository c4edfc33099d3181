package obbtree

import (
	"github.com/soypat/obbtree/obb"
)

// ExpandedNode is the strict binary form of a [DenseNode]: every operator
// has exactly two children, "null" leaves (+Inf everywhere) standing in for
// a union's missing slots after repeated PCA-axis bisection, or for a
// strict operator's unused slot (e.g. [CaaClone]'s slot 1).
type ExpandedNode struct {
	Slots  *[2]ExpandedNode
	Bbox   obb.OBB
	Elem   Element
	isNull bool
}

// Null returns the null sentinel leaf: always +Inf, never pruned into.
func Null() ExpandedNode {
	return ExpandedNode{Bbox: obb.Zero(), isNull: true}
}

// PrimitiveExpanded returns a leaf wrapping a primitive element.
func PrimitiveExpanded(elem Element, bbox obb.OBB) ExpandedNode {
	return ExpandedNode{Elem: elem, Bbox: bbox}
}

// SimpleOperation returns a strict operator's expanded form: its one real
// child in slot 0, a permanent null in slot 1.
func SimpleOperation(elem Element, bbox obb.OBB, child ExpandedNode) ExpandedNode {
	return ExpandedNode{
		Elem:  elem,
		Bbox:  bbox,
		Slots: &[2]ExpandedNode{child, Null()},
	}
}

// BinaryOperation returns an operator's expanded form with both real
// children already determined (used by union bisection).
func BinaryOperation(elem Element, bbox obb.OBB, left, right ExpandedNode) ExpandedNode {
	return ExpandedNode{
		Elem:  elem,
		Bbox:  bbox,
		Slots: &[2]ExpandedNode{left, right},
	}
}

// IsNull reports whether n is the null sentinel.
func (n ExpandedNode) IsNull() bool { return n.isNull }

// IsPrimitive reports whether n is a leaf wrapping a real element.
func (n ExpandedNode) IsPrimitive() bool {
	return !n.isNull && n.Slots == nil
}

// IsOperation reports whether n is an interior (non-null, non-primitive)
// node.
func (n ExpandedNode) IsOperation() bool {
	return !n.isNull && n.Slots != nil
}

// Expand converts a [DenseNode] into its strict-binary [ExpandedNode] form.
// Non-union operators with exactly one required slot become
// [SimpleOperation]s; unions recursively bisect their children by merging
// and splitting along the merged box's longest local axis until only pairs
// remain, matching the original union-expansion algorithm.
func Expand(n DenseNode) ExpandedNode {
	info := n.Elem.Info()
	if info.IsPrimitive {
		return PrimitiveExpanded(n.Elem, n.Bbox)
	}
	if !info.IsUnion {
		if len(n.Slots) == 0 {
			return SimpleOperation(n.Elem, n.Bbox, Null())
		}
		return SimpleOperation(n.Elem, n.Bbox, Expand(n.Slots[0]))
	}
	return expandUnion(n.Elem, n.Slots)
}

func expandUnion(elem Element, children []DenseNode) ExpandedNode {
	switch len(children) {
	case 0:
		return Null()
	case 1:
		return Expand(children[0])
	case 2:
		l, r := Expand(children[0]), Expand(children[1])
		bbox := obb.Merge([]obb.OBB{l.Bbox, r.Bbox})
		return BinaryOperation(elem, bbox, l, r)
	}

	boxes := make([]obb.OBB, len(children))
	for i, c := range children {
		boxes[i] = c.Bbox
	}
	merged := obb.Merge(boxes)
	leftIdx, rightIdx := obb.Split(merged, boxes)

	leftChildren := make([]DenseNode, len(leftIdx))
	for i, idx := range leftIdx {
		leftChildren[i] = children[idx]
	}
	rightChildren := make([]DenseNode, len(rightIdx))
	for i, idx := range rightIdx {
		rightChildren[i] = children[idx]
	}

	left := expandUnion(elem, leftChildren)
	right := expandUnion(elem, rightChildren)
	return BinaryOperation(elem, merged, left, right)
}
