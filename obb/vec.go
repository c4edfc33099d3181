// Package obb implements oriented bounding box algebra: fitting, merging,
// splitting and distance/containment queries against the boxes used to
// prune a signed distance field operator tree.
package obb

import (
	"github.com/soypat/geometry/ms3"
)

// Vec3 is a plain 3-component point or direction. It is an alias of
// [ms3.Vec] so callers can use the [ms3] package's arithmetic helpers
// (Add, Sub, AbsElem, MaxElem, Scale, MulElem, Norm...) directly.
type Vec3 = ms3.Vec

// Vec4 is a homogeneous 4-component vector. The w component is 1 for
// points and 0 for directions, matching the conventions used throughout
// the OBB matrices.
type Vec4 struct {
	X, Y, Z, W float32
}

// Extend promotes a Vec3 to a Vec4 with the given w component.
func Extend(v Vec3, w float32) Vec4 {
	return Vec4{X: v.X, Y: v.Y, Z: v.Z, W: w}
}

// Truncate drops the w component of a Vec4.
func (v Vec4) Truncate() Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

func addVec4(a, b Vec4) Vec4 {
	return Vec4{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z, W: a.W + b.W}
}

func scaleVec4(k float32, v Vec4) Vec4 {
	return Vec4{X: k * v.X, Y: k * v.Y, Z: k * v.Z, W: k * v.W}
}

// array returns the vector's components as [x,y,z,w].
func (v Vec4) array() [4]float32 {
	return [4]float32{v.X, v.Y, v.Z, v.W}
}
