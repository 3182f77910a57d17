package handlers

import (
	"context"
	"math"

	"brain2-canvas/application/queries"
	"brain2-canvas/application/queries/bus"
	"brain2-canvas/domain/core/aggregates"
	pkgerrors "brain2-canvas/pkg/errors"
)

// GetGraphDataHandler returns the graph with its statistics
type GetGraphDataHandler struct {
	reader queries.CanvasReader
}

// NewGetGraphDataHandler creates a new handler
func NewGetGraphDataHandler(reader queries.CanvasReader) *GetGraphDataHandler {
	return &GetGraphDataHandler{reader: reader}
}

// Handle executes the query
func (h *GetGraphDataHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.GetGraphDataQuery)
	if !ok {
		return nil, unexpected(query)
	}

	snap := h.reader.Snapshot()
	hidden := 0
	for _, n := range snap.Nodes {
		if n.Hidden {
			hidden++
		}
	}
	if !q.IncludeHidden {
		snap = visibleOnly(snap)
	}
	snap.Viewport = aggregates.SnapshotViewport(h.reader.Viewport())

	return &queries.GetGraphDataResult{
		Graph: snap,
		Stats: computeStats(snap, hidden),
	}, nil
}

// GetNodeHandler returns a single node
type GetNodeHandler struct {
	reader queries.CanvasReader
}

// NewGetNodeHandler creates a new handler
func NewGetNodeHandler(reader queries.CanvasReader) *GetNodeHandler {
	return &GetNodeHandler{reader: reader}
}

// Handle executes the query
func (h *GetNodeHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.GetNodeQuery)
	if !ok {
		return nil, unexpected(query)
	}
	for _, n := range h.reader.Snapshot().Nodes {
		if n.ID == q.NodeID {
			node := n
			return &node, nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("node " + q.NodeID)
}

func visibleOnly(snap aggregates.GraphSnapshot) aggregates.GraphSnapshot {
	out := snap
	out.Nodes = make([]aggregates.NodeSnapshot, 0, len(snap.Nodes))
	out.Links = make([]aggregates.LinkSnapshot, 0, len(snap.Links))
	for _, n := range snap.Nodes {
		if !n.Hidden {
			out.Nodes = append(out.Nodes, n)
		}
	}
	for _, l := range snap.Links {
		if !l.Hidden {
			out.Links = append(out.Links, l)
		}
	}
	return out
}

func computeStats(snap aggregates.GraphSnapshot, hidden int) queries.GraphStats {
	stats := queries.GraphStats{
		NodeCount:   len(snap.Nodes),
		LinkCount:   len(snap.Links),
		HiddenCount: hidden,
	}
	if n := len(snap.Nodes); n > 1 {
		stats.Density = float64(stats.LinkCount) / float64(n*(n-1))
	}
	if len(snap.Nodes) == 0 {
		return stats
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range snap.Nodes {
		minX, maxX = math.Min(minX, n.X), math.Max(maxX, n.X)
		minY, maxY = math.Min(minY, n.Y), math.Max(maxY, n.Y)
	}
	stats.Extent = &queries.ExtentView{Left: minX, Top: minY, Width: maxX - minX, Height: maxY - minY}
	return stats
}
