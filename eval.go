package obbtree

import (
	"github.com/chewxy/math32"
	"github.com/soypat/obbtree/obb"
)

// NearestNeighbor evaluates the signed distance from p to n's subtree by
// recursively walking the expanded binary tree. Null branches always
// contribute +Inf and are never descended into.
func (n ExpandedNode) NearestNeighbor(p obb.Vec3) float32 {
	if n.IsNull() {
		return float32(math32.Inf(1))
	}
	if n.IsPrimitive() {
		local := n.Bbox.InBoxTransBasis(obb.Extend(p, 1)).Truncate()
		return n.Elem.DistanceTo(local)
	}

	left, right := n.Slots[0], n.Slots[1]
	minMaxDist := math32.Min(boundMaxDist(left, p), boundMaxDist(right, p))

	type branch struct {
		node ExpandedNode
		idx  int
		min  float32
	}
	branches := [2]branch{
		{node: left, idx: 0, min: boundMinDist(left, p)},
		{node: right, idx: 1, min: boundMinDist(right, p)},
	}
	if branches[0].min > branches[1].min {
		branches[0], branches[1] = branches[1], branches[0]
	}

	downtrees := n.Elem.Downtree(p)
	childDist := [2]float32{float32(math32.Inf(1)), float32(math32.Inf(1))}
	best := float32(math32.Inf(1))
	for _, br := range branches {
		if br.node.IsNull() || br.min > minMaxDist || br.min > best {
			continue
		}
		q := p
		if br.idx < len(downtrees) {
			q = downtrees[br.idx]
		}
		d := br.node.NearestNeighbor(q)
		childDist[br.idx] = d
		if d < best {
			best = d
		}
	}
	return n.Elem.Uptree(childDist[:])
}

// boundMinDist returns the bounding box's minimum possible distance to p,
// always +Inf for a null node regardless of its (meaningless) box fields.
func boundMinDist(n ExpandedNode, p obb.Vec3) float32 {
	if n.IsNull() {
		return float32(math32.Inf(1))
	}
	return math32.Max(n.Bbox.DistanceTo(p), 0)
}

// boundMaxDist returns the bounding box's maximum possible distance to p,
// always +Inf for a null node so it can never tighten minMaxDist below a
// real sibling's bound.
func boundMaxDist(n ExpandedNode, p obb.Vec3) float32 {
	if n.IsNull() {
		return float32(math32.Inf(1))
	}
	return n.Bbox.MaxDistance(p)
}

// reconstructElement rebuilds the [Element] value a flat-buffer entry
// describes from its op code and packed parameter blocks, so the
// stack-machine evaluator can call DistanceTo/Downtree/Uptree without
// keeping the original tree around.
func reconstructElement(opCode uint32, isPrimitive bool, dt, ut OpSpecificBlock) Element {
	switch {
	case isPrimitive && opCode == OpSphere:
		return Sphere{Radius: dt.Floats[0]}
	case isPrimitive && opCode == OpBoxFrame:
		return BoxFrame{Dimension: dt.Vec4s[0].Truncate(), Thickness: dt.Floats[0]}
	case !isPrimitive && opCode == OpCaaClone:
		return CaaClone{
			Displacement: dt.Vec4s[0].Truncate(),
			NegLimit:     dt.Vec4s[1].Truncate(),
			PosLimit:     dt.Vec4s[2].Truncate(),
		}
	default: // !isPrimitive && opCode == OpUnion
		return Union{SmoothRadius: ut.Floats[0]}
	}
}

// NearestNeighbor evaluates the signed distance from p to the tree encoded
// in buf using two linear passes over the flat downtree/uptree arrays
// instead of recursion: a forward pass propagates the query point down to
// each node through each operator's Downtree mapping (the identity for
// unions), and at a primitive leaf rebases it into the primitive's own
// box-local frame just before the distance formula needs it (using each
// node's Len to locate children without pointers), and a backward pass
// folds child distances back up via each node's Uptree combiner. Because
// the arrays are in pre-order, processing indices from high to low in the
// backward pass always visits a node's children before the node itself.
// No subtree is pruned: every entry of buf is evaluated.
func (buf SdfTreeBuffer) NearestNeighbor(p obb.Vec3) float32 {
	n := len(buf.Downtree)
	if n == 0 {
		return float32(math32.Inf(1))
	}

	points := make([]obb.Vec3, n)
	points[0] = p

	childLo := make([]int, n)
	childHi := make([]int, n)
	for i := range buf.Downtree {
		childLo[i] = -1
		childHi[i] = -1
	}

	for i := 0; i < n; i++ {
		blk := buf.Downtree[i]
		p := points[i]

		if blk.IsPrimitive {
			local := blk.BoundingBox.InBoxTransBasis(obb.Extend(p, 1)).Truncate()
			points[i] = local
			continue
		}
		span := 1 + int(blk.Len)
		end := i + span
		if i+1 >= end {
			continue // operator with no recorded children (shouldn't happen in practice)
		}
		c0 := i + 1
		childLo[i] = c0
		c0Span := 1 + int(buf.Downtree[c0].Len)
		c1 := c0 + c0Span
		if c1 < end {
			childHi[i] = c1
		}

		elem := reconstructElement(blk.OpCode, false, blk.OpSpecific, buf.Uptree[i].OpSpecific)
		downtrees := elem.Downtree(p)
		if childLo[i] >= 0 {
			q := p
			if len(downtrees) > 0 {
				q = downtrees[0]
			}
			points[childLo[i]] = q
		}
		if childHi[i] >= 0 {
			q := p
			if len(downtrees) > 1 {
				q = downtrees[1]
			}
			points[childHi[i]] = q
		}
	}

	results := make([]float32, n)
	for i := n - 1; i >= 0; i-- {
		blk := buf.Downtree[i]
		if blk.IsPrimitive {
			elem := reconstructElement(blk.OpCode, true, blk.OpSpecific, OpSpecificBlock{})
			results[i] = elem.DistanceTo(points[i])
			continue
		}
		var childDist []float32
		if childLo[i] >= 0 {
			childDist = append(childDist, results[childLo[i]])
		}
		if childHi[i] >= 0 {
			childDist = append(childDist, results[childHi[i]])
		}
		elem := reconstructElement(blk.OpCode, false, blk.OpSpecific, buf.Uptree[i].OpSpecific)
		results[i] = elem.Uptree(childDist)
	}
	return results[0]
}
