package obbtree

import (
	"bytes"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/obbtree/obb"
)

// DenseNode is the immutable n-ary tree produced by [Node.Finalize]: every
// node carries its element, its (possibly empty) children, the merged
// bounding box for its own subtree, and the rigid transform that was baked
// into that box at finalize time.
type DenseNode struct {
	Elem      Element
	Slots     []DenseNode
	Bbox      obb.OBB
	Transform obb.Transform
}

// IsPrimitive reports whether n is a leaf.
func (n DenseNode) IsPrimitive() bool {
	return n.Elem.Info().IsPrimitive
}

// IsEmpty reports whether n is a union with no children, the one shape that
// legitimately has neither slots nor a meaningful bbox.
func (n DenseNode) IsEmpty() bool {
	info := n.Elem.Info()
	return info.IsUnion && len(n.Slots) == 0
}

// nodeDistInfo bounds a subtree's distance to a query point: every point on
// or inside the subtree's geometry is known to be within [Min, Max] of the
// query point.
type nodeDistInfo struct {
	min, max float32
}

func bboxDistInfo(b obb.OBB, p obb.Vec3) nodeDistInfo {
	d := b.DistanceTo(p)
	return nodeDistInfo{min: math32.Max(d, 0), max: b.MaxDistance(p)}
}

// NearestNeighbor evaluates the signed distance from p to n's subtree by
// walking the dense tree directly: primitives evaluate their own formula,
// unions sort children by their minimum possible distance and prune any
// child whose minimum distance exceeds the best maximum distance found so
// far. This mirrors the original dense-tree nearest-neighbor algorithm and
// exists primarily as a third, independent cross-check against the
// expanded-tree and flat-buffer evaluators (SPEC_FULL.md §5).
func (n DenseNode) NearestNeighbor(p obb.Vec3) float32 {
	if n.IsEmpty() {
		return float32(math32.Inf(1))
	}
	if n.IsPrimitive() {
		local := n.Bbox.InBoxTransBasis(obb.Extend(p, 1)).Truncate()
		return n.Elem.DistanceTo(local)
	}

	downtrees := n.Elem.Downtree(p)

	type scored struct {
		idx  int
		info nodeDistInfo
	}
	scoredChildren := make([]scored, len(n.Slots))
	minMaxDist := float32(math32.Inf(1))
	for i, c := range n.Slots {
		q := p
		if i < len(downtrees) {
			q = downtrees[i]
		}
		info := bboxDistInfo(c.Bbox, q)
		scoredChildren[i] = scored{idx: i, info: info}
		if info.max < minMaxDist {
			minMaxDist = info.max
		}
	}

	for i := 1; i < len(scoredChildren); i++ {
		for j := i; j > 0 && scoredChildren[j].info.min < scoredChildren[j-1].info.min; j-- {
			scoredChildren[j], scoredChildren[j-1] = scoredChildren[j-1], scoredChildren[j]
		}
	}

	childDistances := make([]float32, len(n.Slots))
	for i := range childDistances {
		childDistances[i] = float32(math32.Inf(1))
	}
	best := float32(math32.Inf(1))
	for _, sc := range scoredChildren {
		if sc.info.min > minMaxDist || sc.info.min > best {
			break
		}
		i := sc.idx
		q := p
		if i < len(downtrees) {
			q = downtrees[i]
		}
		d := n.Slots[i].NearestNeighbor(q)
		childDistances[i] = d
		if d < best {
			best = d
		}
	}
	return n.Elem.Uptree(childDistances)
}

// DebugString returns a breadth-first text dump of n's subtree: one line
// per node naming its element type, slot count and box scale.
func (n DenseNode) DebugString() string {
	var buf bytes.Buffer
	n.WriteDebugTree(&buf)
	return buf.String()
}

// WriteDebugTree writes a breadth-first text dump of n's subtree to w.
func (n DenseNode) WriteDebugTree(w *bytes.Buffer) {
	queue := []DenseNode{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		fmt.Fprintf(w, "%T slots=%d scale=(%.4g,%.4g,%.4g)\n",
			cur.Elem, len(cur.Slots), cur.Bbox.Scale.X, cur.Bbox.Scale.Y, cur.Bbox.Scale.Z)
		queue = append(queue, cur.Slots...)
	}
}
