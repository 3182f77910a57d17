package valueobjects

import (
	"math"

	pkgerrors "brain2-canvas/pkg/errors"
)

// Position is a value object representing a point in graph coordinates
type Position struct {
	x float64
	y float64
}

// NewPosition creates a position with validation
func NewPosition(x, y float64) (Position, error) {
	if !isValidCoordinate(x) || !isValidCoordinate(y) {
		return Position{}, pkgerrors.NewValidationError("invalid coordinates: must be finite numbers")
	}
	return Position{x: x, y: y}, nil
}

// Origin returns the position at (0, 0)
func Origin() Position {
	return Position{}
}

// X returns the X coordinate
func (p Position) X() float64 {
	return p.x
}

// Y returns the Y coordinate
func (p Position) Y() float64 {
	return p.y
}

// DistanceTo calculates the Euclidean distance to another position
func (p Position) DistanceTo(other Position) float64 {
	dx := p.x - other.x
	dy := p.y - other.y
	return math.Sqrt(dx*dx + dy*dy)
}

// Equals checks if two positions are equal
func (p Position) Equals(other Position) bool {
	const epsilon = 1e-9
	return math.Abs(p.x-other.x) < epsilon &&
		math.Abs(p.y-other.y) < epsilon
}

// Translate moves the position by the given offsets
func (p Position) Translate(dx, dy float64) (Position, error) {
	return NewPosition(p.x+dx, p.y+dy)
}

// Delta returns the offset from other to p
func (p Position) Delta(other Position) (dx, dy float64) {
	return p.x - other.x, p.y - other.y
}

// Midpoint calculates the midpoint between two positions
func (p Position) Midpoint(other Position) Position {
	return p.Lerp(other, 0.5)
}

// Lerp interpolates between p (t=0) and other (t=1)
func (p Position) Lerp(other Position, t float64) Position {
	return Position{
		x: p.x + (other.x-p.x)*t,
		y: p.y + (other.y-p.y)*t,
	}
}

// isValidCoordinate checks if a coordinate is a valid finite number
func isValidCoordinate(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
