package entities

import (
	"math"

	"brain2-canvas/domain/core/valueobjects"
)

// LinkGeometry is everything a renderer needs to draw a link path
type LinkGeometry struct {
	LinkID        valueobjects.LinkID
	Source        valueobjects.Position
	Target        valueobjects.Position
	LabelAnchor   valueobjects.Position
	BendPoint     valueobjects.Position
	Label         string
	Bidirectional bool
}

// ComputeLinkGeometry derives the path of a link from its endpoint positions.
// The label anchor sits at anchorPos along the line, the bend point at the
// midpoint; both are pushed off the line by bender along the unit normal.
func ComputeLinkGeometry(l *Link, source, target valueobjects.Position) LinkGeometry {
	nx, ny := unitNormal(source, target)
	offset := func(p valueobjects.Position) valueobjects.Position {
		moved, err := p.Translate(nx*l.bender, ny*l.bender)
		if err != nil {
			return p
		}
		return moved
	}

	return LinkGeometry{
		LinkID:        l.id,
		Source:        source,
		Target:        target,
		LabelAnchor:   offset(source.Lerp(target, l.anchorPos)),
		BendPoint:     offset(source.Midpoint(target)),
		Label:         l.label,
		Bidirectional: l.bidirectional,
	}
}

func unitNormal(a, b valueobjects.Position) (float64, float64) {
	dx, dy := b.Delta(a)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return 0, 0
	}
	return -dy / length, dx / length
}
