package mcpserver

import (
	"math"

	"canvasnotes/internal/domain"
	"canvasnotes/internal/geometry"
)

const (
	GridSize = 30.0
	Padding  = 30.0 // one grid cell between elements
	MaxRowW  = 1800.0
)

// LayoutEngine handles automatic placement of elements on the canvas
// so that MCP-created elements don't overlap existing ones.
type LayoutEngine struct {
	gridSize float64
	padding  float64
	maxRowW  float64
}

func NewLayoutEngine() *LayoutEngine {
	return &LayoutEngine{
		gridSize: GridSize,
		padding:  Padding,
		maxRowW:  MaxRowW,
	}
}

// snap rounds v to the nearest grid point.
func (le *LayoutEngine) snap(v float64) float64 {
	return math.Round(v/le.gridSize) * le.gridSize
}

// NextPosition finds the next free grid position for an element of size
// (newW, newH), scanning from the page origin (DefaultX, DefaultY).
func (le *LayoutEngine) NextPosition(existing []domain.Element, newW, newH float64) (float64, float64) {
	originX, originY := domain.DefaultX, domain.DefaultY
	if len(existing) == 0 {
		return originX, originY
	}

	occupied := make([]geometry.Rect, len(existing))
	for i, e := range existing {
		occupied[i] = e.Bounds().RotatedBounds(e.Rotation).Inset(le.padding)
	}

	// Scan rows top-to-bottom, columns left-to-right
	candidate := geometry.Rect{W: newW, H: newH}
	for y := 0.0; y < 100000; y += le.gridSize {
		for x := 0.0; x < le.maxRowW; x += le.gridSize {
			candidate.X = originX + le.snap(x)
			candidate.Y = originY + le.snap(y)

			overlaps := false
			for _, occ := range occupied {
				if candidate.Intersects(occ) {
					overlaps = true
					break
				}
			}
			if !overlaps {
				return candidate.X, candidate.Y
			}
		}
	}

	// Fallback: place below all existing elements
	maxY := 0.0
	for _, r := range occupied {
		maxY = max(maxY, r.Bottom())
	}
	return originX, le.snap(maxY)
}

// ArrangeGroup places elements in rows starting from (startX, startY),
// wrapping at the maximum row width. It modifies positions in-place.
func (le *LayoutEngine) ArrangeGroup(elems []domain.Element, startX, startY float64) []domain.Element {
	x := le.snap(startX)
	y := le.snap(startY)
	rowHeight := 0.0

	for i := range elems {
		if x > le.snap(startX) && x+elems[i].Width > le.snap(startX)+le.maxRowW {
			x = le.snap(startX)
			y += le.snap(rowHeight + le.padding)
			rowHeight = 0
		}
		elems[i].X = x
		elems[i].Y = y
		rowHeight = max(rowHeight, elems[i].Height)
		x += le.snap(elems[i].Width + le.padding)
	}

	return elems
}
