package sim

import (
	"fmt"
	"math/rand"
	"slices"
)

const (
	buildingMargin     = 5  // cells of exterior kept around the building
	partitionInset     = 4  // partitions stay this far from the outer walls
	partitionSpacing   = 5  // min distance between parallel partitions
	partitionAttempts  = 50 // rejection-sampling budget per orientation
	minSegmentHeight   = 4  // vertical partition segments shorter than this are skipped
	doorwayWidth       = 2
	minBuildingGridDim = 2*buildingMargin + 2*partitionInset
)

// MinGridSize is the smallest width and height GenerateBuilding accepts.
const MinGridSize = minBuildingGridDim

// Building is a generated layout: perimeter walls with a front door plus
// internal partitions with doorways.
type Building struct {
	Width  int
	Height int
	Walls  CellSet
	Floors CellSet
	// FloorCells lists Floors in row-major order.
	FloorCells []Cell
	// Door holds the two gap cells in the bottom perimeter wall.
	Door [doorwayWidth]Cell
	// Inner is the floor rectangle enclosed by the perimeter.
	Inner       Rect
	HPartitions []int // y of each horizontal partition
	VPartitions []int // x of each vertical partition
}

// randInclusive returns a uniform integer in [lo, hi].
func randInclusive(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// GenerateBuilding lays out a random building on a width×height grid.
// Floors are the full inner rectangle; walls that overlap it are not removed
// from Floors, so renderers must draw walls after floors.
func GenerateBuilding(width, height int, rng *rand.Rand) (*Building, error) {
	if width < minBuildingGridDim || height < minBuildingGridDim {
		return nil, fmt.Errorf("%dx%d (need at least %dx%d): %w",
			width, height, minBuildingGridDim, minBuildingGridDim, ErrGridTooSmall)
	}

	left := buildingMargin
	right := width - buildingMargin
	top := buildingMargin
	bottom := height - buildingMargin

	b := &Building{
		Width:  width,
		Height: height,
		Walls:  NewCellSet(),
		Floors: NewCellSet(),
		Inner:  Rect{X: left, Y: top, W: right - left, H: bottom - top},
	}

	for y := top; y < bottom; y++ {
		for x := left; x < right; x++ {
			c := Cell{X: x, Y: y}
			b.Floors.Put(c)
			b.FloorCells = append(b.FloorCells, c)
		}
	}

	wall := func(x, y int) { b.Walls.Put(Cell{X: x, Y: y}) }

	// Perimeter. The front door sits in the bottom wall.
	doorX := width / 2
	b.Door = [doorwayWidth]Cell{{X: doorX, Y: bottom}, {X: doorX + 1, Y: bottom}}
	for x := left; x <= right; x++ {
		wall(x, top)
		if x != doorX && x != doorX+1 {
			wall(x, bottom)
		}
	}
	for y := top; y <= bottom; y++ {
		wall(left, y)
		wall(right, y)
	}

	b.HPartitions = pickPartitions(rng, 1+rng.Intn(2), top+partitionInset, bottom-partitionInset)
	b.VPartitions = pickPartitions(rng, 1+rng.Intn(2), left+partitionInset, right-partitionInset)

	for _, py := range b.HPartitions {
		gap := randInclusive(rng, left+2, right-3)
		for x := left + 1; x < right; x++ {
			if x != gap && x != gap+1 {
				wall(x, py)
			}
		}
	}

	bounds := append([]int{top}, b.HPartitions...)
	bounds = append(bounds, bottom)
	slices.Sort(bounds)
	for _, px := range b.VPartitions {
		for i := 0; i+1 < len(bounds); i++ {
			segStart := bounds[i] + 1
			segEnd := bounds[i+1]
			if segEnd-segStart < minSegmentHeight {
				continue
			}
			gap := randInclusive(rng, segStart+1, segEnd-3)
			for y := segStart; y < segEnd; y++ {
				if y != gap && y != gap+1 {
					wall(px, y)
				}
			}
		}
	}

	return b, nil
}

// pickPartitions draws up to want positions in [lo, hi] that are at least
// partitionSpacing apart. It gives up after partitionAttempts draws and
// returns however many it placed.
func pickPartitions(rng *rand.Rand, want, lo, hi int) []int {
	out := make([]int, 0, want)
	for attempt := 0; attempt < partitionAttempts && len(out) < want; attempt++ {
		p := randInclusive(rng, lo, hi)
		ok := true
		for _, q := range out {
			if abs(p-q) < partitionSpacing {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, p)
		}
	}
	return out
}

// IsWall reports whether c is a wall cell.
func (b *Building) IsWall(c Cell) bool {
	return b.Walls.Has(c)
}

// TeachingEnclosure returns the small three-sided box used by teaching mode:
// two short side walls flanking the grid centre and a front wall above it,
// leaving the bottom open.
func TeachingEnclosure(width, height int) CellSet {
	cx, cy := width/2, height/2
	walls := NewCellSet()
	for y := cy - 1; y <= cy+1; y++ {
		walls.Put(Cell{X: cx - 2, Y: y})
		walls.Put(Cell{X: cx + 2, Y: y})
	}
	for x := cx - 1; x <= cx+1; x++ {
		walls.Put(Cell{X: x, Y: cy - 2})
	}
	return walls
}
