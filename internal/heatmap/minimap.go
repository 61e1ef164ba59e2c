package heatmap

import (
	"fmt"
	"image"
	"image/color"

	"github.com/Garsondee/Rad-Mapper/internal/sim"
)

// DefaultMinimapWidth is the live minimap width in pixels.
const DefaultMinimapWidth = 220

var (
	colorMinimapFloor = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	colorDetector     = color.RGBA{R: 0, G: 255, B: 0, A: 255}
)

// MinimapInput is the live survey state the HUD minimap shows.
type MinimapInput struct {
	Width    int // pixels; 0 uses DefaultMinimapWidth
	Counts   [][]float64
	Floors   sim.CellSet
	Walls    sim.CellSet
	Visited  sim.CellSet
	Detector sim.Cell
	Aerial   bool
}

// MinimapScale is the count that saturates the minimap trail colour.
func MinimapScale(aerial bool) float64 {
	if aerial {
		return 50
	}
	return 500
}

// Minimap draws the compact survey map: floors, the visited trail coloured
// by its latest count, walls and the detector.
func Minimap(in MinimapInput) (*image.RGBA, error) {
	if in.Width == 0 {
		in.Width = DefaultMinimapWidth
	}
	gridH := len(in.Counts)
	if in.Width < 0 || gridH == 0 || len(in.Counts[0]) == 0 {
		return nil, fmt.Errorf("minimap width %d, grid %d rows: %w", in.Width, gridH, ErrInvalidInput)
	}
	gridW := len(in.Counts[0])
	h := max(1, in.Width*gridH/gridW)

	l := layout{
		gridW: gridW, gridH: gridH,
		mapW: in.Width, mapH: h,
		sx: float64(in.Width) / float64(gridW),
		sy: float64(h) / float64(gridH),
	}
	img := image.NewRGBA(image.Rect(0, 0, in.Width, h))
	fill(img, img.Bounds(), colorBackground)

	in.Floors.Each(func(c sim.Cell) {
		fill(img, l.cellRect(c), colorMinimapFloor)
	})
	scale := MinimapScale(in.Aerial)
	in.Visited.Each(func(c sim.Cell) {
		if !sim.InGrid(c, gridW, gridH) || len(in.Counts[c.Y]) <= c.X {
			return
		}
		fill(img, l.cellRect(c), trailColor(in.Counts[c.Y][c.X]/scale))
	})
	in.Walls.Each(func(c sim.Cell) {
		fill(img, l.cellRect(c), colorWall)
	})

	fillCircle(img, int(float64(in.Detector.X)*l.sx), int(float64(in.Detector.Y)*l.sy), 3, colorDetector)
	return img, nil
}
