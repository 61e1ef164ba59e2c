package heatmap

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/Garsondee/Rad-Mapper/internal/sim"
)

// ErrInvalidInput is returned when a render request is malformed.
var ErrInvalidInput = errors.New("heatmap: invalid input")

var (
	colorBackground = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	colorFloor      = color.RGBA{R: 50, G: 50, B: 50, A: 255}
	colorWall       = color.RGBA{R: 180, G: 180, B: 180, A: 255}
	colorBarBorder  = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	colorMarker     = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	colorMarkerRing = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

const (
	barMargin    = 6
	barMinWidth  = 12
	barTop       = 40
	barBottomPad = 30
	labelGap     = 3
	markerRing   = 2
	markerMinRad = 4
)

// Input is everything Render needs. Counts is indexed [y][x] and fixes the
// grid size.
type Input struct {
	Width    int // output size in pixels
	Height   int
	Counts   [][]float64
	Floors   sim.CellSet
	Walls    sim.CellSet
	MaxScale float64
	Sources  []sim.Cell // drawn as markers; nil hides them
	Aerial   bool
}

// MaxScaleFor is the colour-scale maximum used for finished maps.
func MaxScaleFor(aerial bool) float64 {
	if aerial {
		return 150
	}
	return 10000
}

// layout is the pixel geometry derived from an Input.
type layout struct {
	gridW, gridH int
	mapW, mapH   int
	sx, sy       float64
	barX, barW   int
	labelW       int
}

func (in Input) layout() layout {
	l := layout{gridH: len(in.Counts)}
	if l.gridH > 0 {
		l.gridW = len(in.Counts[0])
	}
	l.barW = max(barMinWidth, in.Width/36)
	l.labelW = textWidth(scaleLabel(in.MaxScale))
	reserve := barMargin + l.barW + 4 + l.labelW + barMargin
	l.mapW = in.Width - reserve
	l.mapH = in.Height
	if l.gridW > 0 && l.gridH > 0 {
		l.sx = float64(l.mapW) / float64(l.gridW)
		l.sy = float64(l.mapH) / float64(l.gridH)
	}
	l.barX = l.mapW + barMargin
	return l
}

// cellRect is the pixel rectangle for grid cell c, at least 1x1.
func (l layout) cellRect(c sim.Cell) image.Rectangle {
	x := int(float64(c.X) * l.sx)
	y := int(float64(c.Y) * l.sy)
	return image.Rect(x, y, x+max(1, int(l.sx)), y+max(1, int(l.sy)))
}

func (in Input) validate() error {
	if in.Width <= 0 || in.Height <= 0 {
		return fmt.Errorf("size %dx%d: %w", in.Width, in.Height, ErrInvalidInput)
	}
	if len(in.Counts) == 0 || len(in.Counts[0]) == 0 {
		return fmt.Errorf("empty count grid: %w", ErrInvalidInput)
	}
	if !(in.MaxScale > 0) || math.IsInf(in.MaxScale, 0) {
		return fmt.Errorf("max scale %v: %w", in.MaxScale, ErrInvalidInput)
	}
	gridW := len(in.Counts[0])
	for y, row := range in.Counts {
		if len(row) != gridW {
			return fmt.Errorf("row %d has %d cells, want %d: %w", y, len(row), gridW, ErrInvalidInput)
		}
		for x, v := range row {
			if v < 0 || math.IsNaN(v) {
				return fmt.Errorf("count %v at (%d,%d): %w", v, x, y, ErrInvalidInput)
			}
		}
	}
	for _, s := range in.Sources {
		if !sim.InGrid(s, gridW, len(in.Counts)) {
			return fmt.Errorf("marker %v outside %dx%d grid: %w", s, gridW, len(in.Counts), ErrInvalidInput)
		}
	}
	if l := in.layout(); l.mapW <= 0 {
		return fmt.Errorf("width %d leaves no room beside the %dpx scale bar: %w",
			in.Width, in.Width-l.mapW, ErrInvalidInput)
	}
	return nil
}

// Render draws a finished map with a colour-scale bar on the right. It is a
// pure function of its input.
func Render(in Input) (*image.RGBA, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	l := in.layout()
	img := image.NewRGBA(image.Rect(0, 0, in.Width, in.Height))
	fill(img, img.Bounds(), colorBackground)

	in.Floors.Each(func(c sim.Cell) {
		fill(img, l.cellRect(c), colorFloor)
	})
	for y, row := range in.Counts {
		for x, v := range row {
			c := sim.Cell{X: x, Y: y}
			if v > 0 && in.Floors.Has(c) {
				fill(img, l.cellRect(c), Hot(Intensity(v, in.MaxScale, in.Aerial)))
			}
		}
	}
	in.Walls.Each(func(c sim.Cell) {
		fill(img, l.cellRect(c), colorWall)
	})

	radius := max(markerMinRad, int(math.Min(l.sx, l.sy)))
	for _, s := range in.Sources {
		cx := int(float64(s.X)*l.sx + l.sx/2)
		cy := int(float64(s.Y)*l.sy + l.sy/2)
		fillCircle(img, cx, cy, radius, colorMarker)
		strokeCircle(img, cx, cy, radius, markerRing, colorMarkerRing)
	}

	drawScaleBar(img, l, in.MaxScale)
	return img, nil
}

func drawScaleBar(img *image.RGBA, l layout, maxScale float64) {
	top, bottom := barTop, l.mapH-barBottomPad
	h := bottom - top
	if h <= 0 {
		return
	}
	for i := 0; i < h; i++ {
		frac := 1 - float64(i)/float64(h)
		fill(img, image.Rect(l.barX, top+i, l.barX+l.barW, top+i+1), Hot(frac))
	}
	strokeRect(img, image.Rect(l.barX, top, l.barX+l.barW, bottom), colorBarBorder)

	lx := l.barX + l.barW + labelGap
	lh := labelHeight()
	drawLabel(img, "CPS", l.barX, top-lh-4)
	drawLabel(img, scaleLabel(maxScale), lx, top-2)
	drawLabel(img, scaleLabel(math.Floor(maxScale/2)), lx, top+h/2-lh/2)
	drawLabel(img, "0", lx, bottom-lh+2)
}

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func strokeRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	fill(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), c)
	fill(img, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), c)
	fill(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), c)
	fill(img, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), c)
}

func fillCircle(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	b := img.Bounds()
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r && image.Pt(x, y).In(b) {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

// strokeCircle paints the outermost width pixels of a radius-r disc.
func strokeCircle(img *image.RGBA, cx, cy, r, width int, c color.RGBA) {
	inner := max(0, r-width)
	b := img.Bounds()
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			d2 := dx*dx + dy*dy
			if d2 <= r*r && d2 > inner*inner && image.Pt(x, y).In(b) {
				img.SetRGBA(x, y, c)
			}
		}
	}
}
