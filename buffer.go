package obbtree

import "github.com/soypat/obbtree/obb"

// OpSpecificBlock carries an element's parameters in the flat wire format:
// two 4x4 matrices, three homogeneous vectors and two scalars, enough to
// cover every element in the catalog (sphere radius, box-frame
// dimension/thickness, union smooth radius, clone displacement/limits)
// without a variant tag.
type OpSpecificBlock struct {
	Mat4s  [2][16]float32
	Vec4s  [3]obb.Vec4
	Floats [2]float32
}

// SdfOperationBlock is one entry of the downtree pass: visited once per
// node, in pre-order, as the stack-machine evaluator walks down the tree.
type SdfOperationBlock struct {
	OpCode        uint32
	IsPrimitive   bool
	ParentIsUnion bool
	// Len is the number of downtree entries in this node's subtree
	// excluding the node's own entry, i.e. a descendant count, backpatched
	// once the subtree finishes writing. A leaf's Len is always 0; a
	// node's full subtree (itself included) spans 1+Len entries.
	Len   uint32
	Level uint32

	OpSpecific  OpSpecificBlock
	BoundingBox obb.BoundingBoxBlock
	// OtherBox holds the *sibling's* bounding box (SPEC_FULL.md §1.1.1).
	// The root has no sibling, so its OtherBox is the zero/empty sentinel.
	// [SdfTreeBuffer.NearestNeighbor] reads neither OtherBox nor
	// ParentIsUnion: it prunes no entry of the buffer.
	OtherBox obb.BoundingBoxBlock
}

// SdfOperationUptreeBlock is one entry of the uptree pass, index-aligned
// with its [SdfOperationBlock] counterpart: the stack-machine evaluator
// folds child distances back up the tree by visiting indices high to low,
// which always reaches a node's children before the node itself since
// children are appended strictly after their parent's index.
type SdfOperationUptreeBlock struct {
	OpCode        uint32
	ParentIsUnion bool
	OpSpecific    OpSpecificBlock
	Level         uint32
}

// SdfTreeBuffer is the flattened Euler-tour encoding of an [ExpandedNode]
// tree: two parallel arrays consumed by a branchless stack-machine
// evaluator instead of a recursive walk.
type SdfTreeBuffer struct {
	Downtree []SdfOperationBlock
	Uptree   []SdfOperationUptreeBlock
}

// MakeEmptyBuffer returns a zero-length [SdfTreeBuffer], the encoding of an
// entirely empty tree.
func MakeEmptyBuffer() SdfTreeBuffer {
	return SdfTreeBuffer{}
}

// MakeBuffer performs the Euler-tour DFS over root and returns its flat
// encoding.
func MakeBuffer(root ExpandedNode) SdfTreeBuffer {
	var buf SdfTreeBuffer
	writeNode(&buf, root, obb.Zero(), false, 0)
	return buf
}

func writeNode(buf *SdfTreeBuffer, n ExpandedNode, sibling obb.OBB, parentIsUnion bool, level uint32) {
	if n.IsNull() {
		return
	}

	downIdx := len(buf.Downtree)
	var opCode uint32
	var dtBlock, utBlock OpSpecificBlock
	isPrimitive := n.IsPrimitive()
	if n.Elem != nil {
		opCode = n.Elem.Info().OpID
		dtBlock = n.Elem.DTBlock()
		utBlock = n.Elem.UTBlock()
	}

	buf.Downtree = append(buf.Downtree, SdfOperationBlock{
		OpCode:        opCode,
		IsPrimitive:   isPrimitive,
		ParentIsUnion: parentIsUnion,
		Level:         level,
		OpSpecific:    dtBlock,
		BoundingBox:   n.Bbox.BoundingBoxBlock(),
		OtherBox:      sibling.BoundingBoxBlock(),
	})
	// Reserve the index-aligned uptree slot now; it is filled in below,
	// after any children have appended their own entries past downIdx.
	buf.Uptree = append(buf.Uptree, SdfOperationUptreeBlock{})

	if n.IsOperation() {
		isUnion := n.Elem.Info().IsUnion
		writeNode(buf, n.Slots[0], n.Slots[1].Bbox, isUnion, level+1)
		writeNode(buf, n.Slots[1], n.Slots[0].Bbox, isUnion, level+1)
	}

	buf.Downtree[downIdx].Len = uint32(len(buf.Downtree) - downIdx - 1)
	buf.Uptree[downIdx] = SdfOperationUptreeBlock{
		OpCode:        opCode,
		ParentIsUnion: parentIsUnion,
		OpSpecific:    utBlock,
		Level:         level,
	}
}
