package model

import "math"

// Point represents a 2D point in page coordinates.
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BBox is an axis-aligned bounding box in page coordinates. The origin is the
// top-left corner of the page and Y increases downward, matching the
// coordinate convention of extraction collaborators. X0/Y0 is the top-left
// corner of the box, X1/Y1 the bottom-right.
type BBox struct {
	X0, Y0, X1, Y1 float64
}

// NewBBox creates a bounding box, normalizing corner order.
func NewBBox(x0, y0, x1, y1 float64) BBox {
	return BBox{
		X0: math.Min(x0, x1),
		Y0: math.Min(y0, y1),
		X1: math.Max(x0, x1),
		Y1: math.Max(y0, y1),
	}
}

// Width returns the horizontal extent of the box.
func (b BBox) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the vertical extent of the box.
func (b BBox) Height() float64 {
	return b.Y1 - b.Y0
}

// Center returns the center point of the box.
func (b BBox) Center() Point {
	return Point{
		X: (b.X0 + b.X1) / 2,
		Y: (b.Y0 + b.Y1) / 2,
	}
}

// Contains checks whether a point lies inside the box (edges inclusive).
func (b BBox) Contains(p Point) bool {
	return p.X >= b.X0 && p.X <= b.X1 && p.Y >= b.Y0 && p.Y <= b.Y1
}

// Intersects checks whether two boxes overlap.
func (b BBox) Intersects(other BBox) bool {
	return !(b.X1 < other.X0 || b.X0 > other.X1 ||
		b.Y1 < other.Y0 || b.Y0 > other.Y1)
}

// Intersection returns the overlapping region of two boxes, or the zero box
// when they do not overlap.
func (b BBox) Intersection(other BBox) BBox {
	if !b.Intersects(other) {
		return BBox{}
	}
	return BBox{
		X0: math.Max(b.X0, other.X0),
		Y0: math.Max(b.Y0, other.Y0),
		X1: math.Min(b.X1, other.X1),
		Y1: math.Min(b.Y1, other.Y1),
	}
}

// Union returns the smallest box covering both boxes.
func (b BBox) Union(other BBox) BBox {
	return BBox{
		X0: math.Min(b.X0, other.X0),
		Y0: math.Min(b.Y0, other.Y0),
		X1: math.Max(b.X1, other.X1),
		Y1: math.Max(b.Y1, other.Y1),
	}
}

// Area returns the area of the box.
func (b BBox) Area() float64 {
	if !b.IsValid() {
		return 0
	}
	return b.Width() * b.Height()
}

// OverlapRatio calculates the overlap with another box relative to the
// smaller of the two areas. Returns a value between 0 and 1.
func (b BBox) OverlapRatio(other BBox) float64 {
	if !b.Intersects(other) {
		return 0
	}
	minArea := math.Min(b.Area(), other.Area())
	if minArea == 0 {
		return 0
	}
	return b.Intersection(other).Area() / minArea
}

// IsValid reports whether the box has positive dimensions. Primitives with
// invalid boxes violate the input contract and are skipped with a warning.
func (b BBox) IsValid() bool {
	return b.X1 > b.X0 && b.Y1 > b.Y0
}

// HorizontalOverlap returns the length of the shared X range of two boxes.
func (b BBox) HorizontalOverlap(other BBox) float64 {
	left := math.Max(b.X0, other.X0)
	right := math.Min(b.X1, other.X1)
	if right <= left {
		return 0
	}
	return right - left
}

// VerticalOverlap returns the length of the shared Y range of two boxes.
func (b BBox) VerticalOverlap(other BBox) float64 {
	top := math.Max(b.Y0, other.Y0)
	bottom := math.Min(b.Y1, other.Y1)
	if bottom <= top {
		return 0
	}
	return bottom - top
}
