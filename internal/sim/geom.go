package sim

import (
	"cmp"
	"slices"

	"github.com/zyedidia/generic/mapset"
)

// Cell is an integer grid coordinate. Origin is the top-left corner.
type Cell struct {
	X int
	Y int
}

// CellSet is an unordered set of unique cells (walls, floors, visited tiles).
type CellSet = mapset.Set[Cell]

// NewCellSet returns a set holding the given cells.
func NewCellSet(cells ...Cell) CellSet {
	s := mapset.New[Cell]()
	for _, c := range cells {
		s.Put(c)
	}
	return s
}

// CellsOf returns the members of s as a slice in row-major order.
func CellsOf(s CellSet) []Cell {
	out := make([]Cell, 0, s.Size())
	s.Each(func(c Cell) {
		out = append(out, c)
	})
	sortCells(out)
	return out
}

// sortCells orders cells row-major (y, then x).
func sortCells(cells []Cell) {
	slices.SortFunc(cells, func(a, b Cell) int {
		if a.Y != b.Y {
			return cmp.Compare(a.Y, b.Y)
		}
		return cmp.Compare(a.X, b.X)
	})
}

func cellLess(a, b Cell) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

// Altitude is the sensor height above the ground plane for aerial surveys,
// in cells.
const Altitude = 10

// distanceEpsilon keeps 1/d² finite when the detector sits on a source.
const distanceEpsilon = 0.1

// DistanceSquared2D returns the squared ground-plane distance plus a small
// epsilon.
func DistanceSquared2D(a, b Cell) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	return dx*dx + dy*dy + distanceEpsilon
}

// DistanceSquared3D is DistanceSquared2D for a sensor flying Altitude cells
// above the ground.
func DistanceSquared3D(a, b Cell) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	return dx*dx + dy*dy + Altitude*Altitude + distanceEpsilon
}

// Chebyshev returns the king-move distance between two cells.
func Chebyshev(a, b Cell) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Line returns the 8-connected Bresenham walk between a and b, endpoints
// included. The walk always runs from the lexicographically smaller endpoint
// so Line(a,b) and Line(b,a) visit the same cells.
func Line(a, b Cell) []Cell {
	if cellLess(b, a) {
		a, b = b, a
	}
	dx := abs(b.X - a.X)
	dy := abs(b.Y - a.Y)
	sx := 1
	if a.X > b.X {
		sx = -1
	}
	sy := 1
	if a.Y > b.Y {
		sy = -1
	}
	err := dx - dy

	out := make([]Cell, 0, max(dx, dy)+1)
	x, y := a.X, a.Y
	for {
		out = append(out, Cell{X: x, Y: y})
		if x == b.X && y == b.Y {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
	return out
}

// Visibility reports whether no occluder lies strictly between a and b on
// the rasterised line. The endpoints themselves never block.
func Visibility(a, b Cell, occluders CellSet) bool {
	if a == b {
		return true
	}
	walk := Line(a, b)
	for _, c := range walk[1 : len(walk)-1] {
		if occluders.Has(c) {
			return false
		}
	}
	return true
}

// Rect is an axis-aligned cell rectangle, half-open on the right and bottom.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether c lies inside r.
func (r Rect) Contains(c Cell) bool {
	return c.X >= r.X && c.X < r.X+r.W && c.Y >= r.Y && c.Y < r.Y+r.H
}

// InGrid reports whether c lies inside a width×height grid.
func InGrid(c Cell, width, height int) bool {
	return c.X >= 0 && c.X < width && c.Y >= 0 && c.Y < height
}
