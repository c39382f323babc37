package chessgrid

import (
	"fmt"
	"sort"

	"github.com/golang/geo/r2"
)

// Corner slots of Corners.
const (
	TopLeft = iota
	TopRight
	BottomLeft
	BottomRight
)

// Corners holds the four board corners in the fixed order
// top-left, top-right, bottom-left, bottom-right.
type Corners [4]r2.Point

// TopLeft returns the top-left corner.
func (c Corners) TopLeft() r2.Point { return c[TopLeft] }

// TopRight returns the top-right corner.
func (c Corners) TopRight() r2.Point { return c[TopRight] }

// BottomLeft returns the bottom-left corner.
func (c Corners) BottomLeft() r2.Point { return c[BottomLeft] }

// BottomRight returns the bottom-right corner.
func (c Corners) BottomRight() r2.Point { return c[BottomRight] }

func (c Corners) String() string {
	return fmt.Sprintf("tl(%.1f,%.1f) tr(%.1f,%.1f) bl(%.1f,%.1f) br(%.1f,%.1f)",
		c[0].X, c[0].Y, c[1].X, c[1].Y, c[2].X, c[2].Y, c[3].X, c[3].Y)
}

// RectCorners returns the corners of an axis aligned width x height raster,
// in the same slot order as OrderCorners.
func RectCorners(width, height int) Corners {
	w := float64(width - 1)
	h := float64(height - 1)
	return Corners{
		{X: 0, Y: 0},
		{X: w, Y: 0},
		{X: 0, Y: h},
		{X: w, Y: h},
	}
}

// OrderCorners puts 4 unordered points into top-left, top-right, bottom-left, bottom-right order.
//
// The two points with the smallest y are the top pair and the other two the bottom pair;
// each pair is then ordered by x. This is an axis aligned heuristic: it does not check that
// the points form a convex quadrilateral, and a board rotated by more than about 45 degrees,
// or two points with nearly the same y, can come out mis-ordered. Exact ties keep input order.
func OrderCorners(points []r2.Point) (Corners, error) {
	if len(points) != 4 {
		return Corners{}, fmt.Errorf("%w: need 4 points, got %d", ErrInvalidInput, len(points))
	}

	sorted := make([]r2.Point, 4)
	copy(sorted, points)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y < sorted[j].Y
	})

	top := sorted[:2]
	bottom := sorted[2:]

	byX := func(pts []r2.Point) {
		sort.SliceStable(pts, func(i, j int) bool {
			return pts[i].X < pts[j].X
		})
	}
	byX(top)
	byX(bottom)

	return Corners{top[0], top[1], bottom[0], bottom[1]}, nil
}

// IsConvex reports whether the corners, walked around the perimeter
// (top-left, top-right, bottom-right, bottom-left), form a convex quadrilateral.
// A false result usually means OrderCorners mis-ordered a strongly rotated board.
func (c Corners) IsConvex() bool {
	ring := [4]r2.Point{c[TopLeft], c[TopRight], c[BottomRight], c[BottomLeft]}

	sign := 0
	for i := range ring {
		o, a, b := ring[i], ring[(i+1)%4], ring[(i+2)%4]
		cross := a.Sub(o).Cross(b.Sub(a))
		switch {
		case cross > 0:
			if sign < 0 {
				return false
			}
			sign = 1
		case cross < 0:
			if sign > 0 {
				return false
			}
			sign = -1
		default:
			return false
		}
	}
	return true
}
