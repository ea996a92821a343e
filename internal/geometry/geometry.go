package geometry

import "math"

// Point represents a 2D point in world space.
type Point struct {
	X, Y float64
}

// Segment represents a line segment between two points.
type Segment struct {
	A, B Point
}

// Rect is an axis-aligned rectangle in world space.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 {
	return r.MaxX - r.MinX
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 {
	return r.MaxY - r.MinY
}

// Distance calculates the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// IsFacing checks if a segment is facing towards a given point.
// Uses the cross product to determine if the point is on the "front" side.
func IsFacing(seg Segment, point Point) bool {
	dx1 := seg.B.X - seg.A.X
	dy1 := seg.B.Y - seg.A.Y
	dx2 := point.X - seg.A.X
	dy2 := point.Y - seg.A.Y

	cross := dx1*dy2 - dy1*dx2
	return cross > 0
}

// SegmentDistance returns the shortest distance from a point to a segment.
func SegmentDistance(p Point, seg Segment) float64 {
	dx := seg.B.X - seg.A.X
	dy := seg.B.Y - seg.A.Y

	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		// Degenerate segment, both endpoints coincide
		return Distance(p, seg.A)
	}

	// Project p onto the segment, clamped to [0, 1]
	t := ((p.X-seg.A.X)*dx + (p.Y-seg.A.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	closest := Point{
		X: seg.A.X + t*dx,
		Y: seg.A.Y + t*dy,
	}
	return Distance(p, closest)
}
