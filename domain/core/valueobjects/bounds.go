package valueobjects

import "math"

// Bounds is an axis-aligned rectangle in graph coordinates with non-negative
// extents.
type Bounds struct {
	left   float64
	top    float64
	width  float64
	height float64
}

// NewBoundsFromCorners builds bounds spanning two arbitrary corners. The
// result is normalized so width and height are never negative.
func NewBoundsFromCorners(a, b Position) Bounds {
	return Bounds{
		left:   math.Min(a.x, b.x),
		top:    math.Min(a.y, b.y),
		width:  math.Abs(b.x - a.x),
		height: math.Abs(b.y - a.y),
	}
}

// BoundsOf returns the smallest bounds containing every position. ok is false
// for an empty input.
func BoundsOf(positions []Position) (Bounds, bool) {
	if len(positions) == 0 {
		return Bounds{}, false
	}
	minX, minY := positions[0].x, positions[0].y
	maxX, maxY := minX, minY
	for _, p := range positions[1:] {
		minX = math.Min(minX, p.x)
		minY = math.Min(minY, p.y)
		maxX = math.Max(maxX, p.x)
		maxY = math.Max(maxY, p.y)
	}
	return Bounds{left: minX, top: minY, width: maxX - minX, height: maxY - minY}, true
}

func (b Bounds) Left() float64   { return b.left }
func (b Bounds) Top() float64    { return b.top }
func (b Bounds) Width() float64  { return b.width }
func (b Bounds) Height() float64 { return b.height }
func (b Bounds) Right() float64  { return b.left + b.width }
func (b Bounds) Bottom() float64 { return b.top + b.height }

// Center returns the center point
func (b Bounds) Center() Position {
	return Position{x: b.left + b.width/2, y: b.top + b.height/2}
}

// Contains reports whether p lies inside the bounds, edges included
func (b Bounds) Contains(p Position) bool {
	return p.x >= b.left && p.x <= b.Right() &&
		p.y >= b.top && p.y <= b.Bottom()
}

// Pad grows the bounds by amount on every side
func (b Bounds) Pad(amount float64) Bounds {
	return Bounds{
		left:   b.left - amount,
		top:    b.top - amount,
		width:  b.width + 2*amount,
		height: b.height + 2*amount,
	}
}
