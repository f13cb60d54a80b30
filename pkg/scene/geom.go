package scene

import "math"

// =============================================================================
// Vec3
// =============================================================================

// Vec3 is a point or extent in scene units.
type Vec3 struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	Z float64 `json:"z" bson:"z"`
}

// V is shorthand for Vec3{x, y, z}.
func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// Uniform returns a vector with all components set to s.
func Uniform(s float64) Vec3 { return Vec3{X: s, Y: s, Z: s} }

// Add returns the component-wise sum v+o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns the component-wise difference v-o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Mul scales every component by s.
func (v Vec3) Mul(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func minVec(a, b Vec3) Vec3 {
	return Vec3{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)}
}

func maxVec(a, b Vec3) Vec3 {
	return Vec3{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)}
}

// =============================================================================
// AABB
// =============================================================================

// AABB is an axis-aligned bounding box. The zero value is the degenerate
// box at the origin, which is what a node without geometry reports.
type AABB struct {
	Min Vec3 `json:"min" bson:"min"`
	Max Vec3 `json:"max" bson:"max"`
}

// Box returns the box centered on center with full extents size.
func Box(center, size Vec3) AABB {
	half := size.Mul(0.5)
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// Union returns the smallest box containing both a and b.
func (a AABB) Union(b AABB) AABB {
	return AABB{Min: minVec(a.Min, b.Min), Max: maxVec(a.Max, b.Max)}
}

// Size returns the extents along each axis.
func (a AABB) Size() Vec3 { return a.Max.Sub(a.Min) }

// Center returns the box midpoint.
func (a AABB) Center() Vec3 { return a.Min.Add(a.Max).Mul(0.5) }

// Width is the X extent.
func (a AABB) Width() float64 { return a.Max.X - a.Min.X }

// Height is the Y extent.
func (a AABB) Height() float64 { return a.Max.Y - a.Min.Y }

// Depth is the Z extent.
func (a AABB) Depth() float64 { return a.Max.Z - a.Min.Z }

// IsZero reports whether the box is the zero value.
func (a AABB) IsZero() bool { return a == AABB{} }

// Transform maps a local box into its parent's space through a uniform
// scale followed by a translation.
func (a AABB) Transform(pos Vec3, scale float64) AABB {
	lo := a.Min.Mul(scale).Add(pos)
	hi := a.Max.Mul(scale).Add(pos)
	return AABB{Min: minVec(lo, hi), Max: maxVec(lo, hi)}
}

// Overlaps reports whether the interiors of a and b intersect. Boxes that
// only share a face do not overlap.
func (a AABB) Overlaps(b AABB) bool {
	return a.Min.X < b.Max.X && b.Min.X < a.Max.X &&
		a.Min.Y < b.Max.Y && b.Min.Y < a.Max.Y &&
		a.Min.Z < b.Max.Z && b.Min.Z < a.Max.Z
}

// Contains reports whether p lies inside or on the box.
func (a AABB) Contains(p Vec3) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X &&
		p.Y >= a.Min.Y && p.Y <= a.Max.Y &&
		p.Z >= a.Min.Z && p.Z <= a.Max.Z
}
