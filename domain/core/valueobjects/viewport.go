package valueobjects

import (
	pkgerrors "brain2-canvas/pkg/errors"
)

// Viewport is the visible rectangle, in graph coordinates, mapped onto the
// screen. Width and height are always positive.
type Viewport struct {
	left   float64
	top    float64
	width  float64
	height float64
}

// NewViewport creates a viewport with validation
func NewViewport(left, top, width, height float64) (Viewport, error) {
	if !isValidCoordinate(left) || !isValidCoordinate(top) {
		return Viewport{}, pkgerrors.NewValidationError("viewport origin must be finite")
	}
	if !isValidCoordinate(width) || !isValidCoordinate(height) || width <= 0 || height <= 0 {
		return Viewport{}, pkgerrors.NewValidationError("viewport width and height must be positive")
	}
	return Viewport{left: left, top: top, width: width, height: height}, nil
}

func (v Viewport) Left() float64   { return v.left }
func (v Viewport) Top() float64    { return v.top }
func (v Viewport) Width() float64  { return v.width }
func (v Viewport) Height() float64 { return v.height }

// Bounds returns the visible area as bounds
func (v Viewport) Bounds() Bounds {
	return Bounds{left: v.left, top: v.top, width: v.width, height: v.height}
}

// Center returns the center of the visible area
func (v Viewport) Center() Position {
	return v.Bounds().Center()
}

// Pan shifts the viewport by a fraction of its size along each axis
func (v Viewport) Pan(fx, fy float64) (Viewport, error) {
	return NewViewport(v.left+v.width*fx, v.top+v.height*fy, v.width, v.height)
}

// Resize returns a viewport of the given size whose left/top move by the size
// delta weighted with the anchor fraction. An anchor of (0.5, 0.5) keeps the
// center fixed; the pointer fraction keeps the point under the pointer fixed.
func (v Viewport) Resize(width, height, anchorFX, anchorFY float64) (Viewport, error) {
	left := v.left - (width-v.width)*anchorFX
	top := v.top - (height-v.height)*anchorFY
	return NewViewport(left, top, width, height)
}

// Equals checks if two viewports are equal
func (v Viewport) Equals(other Viewport) bool {
	return Position{x: v.left, y: v.top}.Equals(Position{x: other.left, y: other.top}) &&
		Position{x: v.width, y: v.height}.Equals(Position{x: other.width, y: other.height})
}
