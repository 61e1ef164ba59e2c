package heatmap

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Garsondee/Rad-Mapper/internal/sim"
)

func near(a, b uint8) bool {
	d := int(a) - int(b)
	return d >= -1 && d <= 1
}

func TestHot_ColourLaw(t *testing.T) {
	for _, tc := range []struct {
		t    float64
		want color.RGBA
	}{
		{0, color.RGBA{A: 255}},
		{0.5, color.RGBA{R: 255, G: 128, A: 255}},
		{1, color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{-2, color.RGBA{A: 255}},
		{7, color.RGBA{R: 255, G: 255, B: 255, A: 255}},
	} {
		got := Hot(tc.t)
		if !near(got.R, tc.want.R) || !near(got.G, tc.want.G) || !near(got.B, tc.want.B) || got.A != 255 {
			t.Fatalf("Hot(%v) = %v, want about %v", tc.t, got, tc.want)
		}
	}
}

func TestIntensity(t *testing.T) {
	if got := Intensity(75, 150, true); got != 0.5 {
		t.Fatalf("aerial linear = %v, want 0.5", got)
	}
	if got := Intensity(300, 150, true); got != 1 {
		t.Fatalf("aerial clamp = %v, want 1", got)
	}
	want := math.Log1p(100) / math.Log1p(10000)
	if got := Intensity(100, 10000, false); math.Abs(got-want) > 1e-12 {
		t.Fatalf("ground log = %v, want %v", got, want)
	}
	if Intensity(0, 10000, false) != 0 {
		t.Fatal("zero count should map to 0")
	}
}

// testInput is a 10x10 grid: floors in the middle 8x8, a wall column at x=5,
// and a hot spot at (2,2).
func testInput() Input {
	counts := make([][]float64, 10)
	for y := range counts {
		counts[y] = make([]float64, 10)
	}
	counts[2][2] = 10000
	counts[7][7] = 40
	floors := sim.NewCellSet()
	for y := 1; y < 9; y++ {
		for x := 1; x < 9; x++ {
			floors.Put(sim.Cell{X: x, Y: y})
		}
	}
	walls := sim.NewCellSet()
	for y := 0; y < 10; y++ {
		walls.Put(sim.Cell{X: 5, Y: y})
	}
	return Input{
		Width:    400,
		Height:   300,
		Counts:   counts,
		Floors:   floors,
		Walls:    walls,
		MaxScale: 10000,
	}
}

func mustRender(t *testing.T, in Input) *image.RGBA {
	t.Helper()
	img, err := Render(in)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return img
}

// centre returns the pixel colour at the middle of grid cell c.
func centre(img *image.RGBA, in Input, c sim.Cell) color.RGBA {
	l := in.layout()
	r := l.cellRect(c)
	return img.RGBAAt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}

func TestRender_Idempotent(t *testing.T) {
	in := testInput()
	in.Sources = []sim.Cell{{X: 2, Y: 2}}
	a := mustRender(t, in)
	b := mustRender(t, in)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Fatal("two renders of the same input differ")
	}
}

func TestRender_DrawOrder(t *testing.T) {
	in := testInput()
	in.Counts[4][5] = 500 // a count under a wall cell
	img := mustRender(t, in)

	if got := centre(img, in, sim.Cell{X: 0, Y: 0}); got != colorBackground {
		t.Fatalf("exterior = %v, want background", got)
	}
	if got := centre(img, in, sim.Cell{X: 3, Y: 3}); got != colorFloor {
		t.Fatalf("empty floor = %v, want floor colour", got)
	}
	if got := centre(img, in, sim.Cell{X: 2, Y: 2}); got != Hot(1) {
		t.Fatalf("saturated cell = %v, want %v", got, Hot(1))
	}
	if got := centre(img, in, sim.Cell{X: 5, Y: 4}); got != colorWall {
		t.Fatalf("wall over a count = %v, want wall colour", got)
	}
	want := Hot(Intensity(40, 10000, false))
	if got := centre(img, in, sim.Cell{X: 7, Y: 7}); got != want {
		t.Fatalf("warm cell = %v, want %v", got, want)
	}
}

func TestRender_CountOffFloorNotDrawn(t *testing.T) {
	in := testInput()
	in.Counts[0][0] = 10000
	img := mustRender(t, in)
	if got := centre(img, in, sim.Cell{X: 0, Y: 0}); got != colorBackground {
		t.Fatalf("count outside the floors painted %v", got)
	}
}

func TestRender_SourceMarkerOnTop(t *testing.T) {
	in := testInput()
	in.Sources = []sim.Cell{{X: 5, Y: 5}}
	img := mustRender(t, in)
	if got := centre(img, in, sim.Cell{X: 5, Y: 5}); got != colorMarker {
		t.Fatalf("marker centre = %v, want green over the wall", got)
	}
}

func TestRender_ScaleBar(t *testing.T) {
	in := testInput()
	img := mustRender(t, in)
	l := in.layout()
	mid := l.barX + l.barW/2

	if got := img.RGBAAt(mid, barTop+1); got.R != 255 || got.G != 255 || got.B < 240 {
		t.Fatalf("bar top = %v, want white-hot", got)
	}
	bottom := in.Height - barBottomPad
	if got := img.RGBAAt(mid, bottom-2); got.G != 0 || got.B != 0 || got.R > 10 {
		t.Fatalf("bar bottom = %v, want near black", got)
	}
	if got := img.RGBAAt(l.barX, barTop+20); got != colorBarBorder {
		t.Fatalf("bar border = %v", got)
	}
	if l.barW != max(12, in.Width/36) {
		t.Fatalf("bar width = %d", l.barW)
	}
}

func TestRender_MinimumCellSize(t *testing.T) {
	counts := make([][]float64, 400)
	for y := range counts {
		counts[y] = make([]float64, 400)
	}
	in := Input{Width: 200, Height: 100, Counts: counts, MaxScale: 1,
		Walls: sim.NewCellSet(sim.Cell{X: 399, Y: 399})}
	img := mustRender(t, in)
	r := in.layout().cellRect(sim.Cell{X: 399, Y: 399})
	if r.Dx() != 1 || r.Dy() != 1 {
		t.Fatalf("cell rect %v, want 1x1", r)
	}
	if got := img.RGBAAt(r.Min.X, r.Min.Y); got != colorWall {
		t.Fatalf("sub-pixel wall not drawn: %v", got)
	}
}

func TestRender_RejectsInvalidInput(t *testing.T) {
	for name, mut := range map[string]func(*Input){
		"zero width":      func(in *Input) { in.Width = 0 },
		"negative height": func(in *Input) { in.Height = -1 },
		"empty grid":      func(in *Input) { in.Counts = nil },
		"ragged rows":     func(in *Input) { in.Counts[3] = in.Counts[3][:4] },
		"negative count":  func(in *Input) { in.Counts[1][1] = -5 },
		"NaN count":       func(in *Input) { in.Counts[1][1] = math.NaN() },
		"zero max":        func(in *Input) { in.MaxScale = 0 },
		"marker off grid": func(in *Input) { in.Sources = []sim.Cell{{X: 10, Y: 0}} },
		"no map room":     func(in *Input) { in.Width = 40 },
	} {
		in := testInput()
		mut(&in)
		if _, err := Render(in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: err = %v, want ErrInvalidInput", name, err)
		}
	}
}

func TestMinimap(t *testing.T) {
	in := testInput()
	visited := sim.NewCellSet(sim.Cell{X: 2, Y: 2}, sim.Cell{X: 7, Y: 7})
	img, err := Minimap(MinimapInput{
		Counts:   in.Counts,
		Floors:   in.Floors,
		Walls:    in.Walls,
		Visited:  visited,
		Detector: sim.Cell{X: 8, Y: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != DefaultMinimapWidth || img.Bounds().Dy() != DefaultMinimapWidth {
		t.Fatalf("minimap size %v, want square for a square grid", img.Bounds())
	}
	// 22px per cell.
	if got := img.RGBAAt(2*22+11, 2*22+11); got != trailColor(1) {
		t.Fatalf("hot trail = %v, want red", got)
	}
	if got := img.RGBAAt(7*22+11, 7*22+11); got != trailColor(40.0/500) {
		t.Fatalf("cool trail = %v", got)
	}
	if got := img.RGBAAt(3*22+11, 3*22+11); got != colorMinimapFloor {
		t.Fatalf("unvisited floor = %v", got)
	}
	if got := img.RGBAAt(8*22, 1*22); got != colorDetector {
		t.Fatalf("detector dot = %v", got)
	}
	if _, err := Minimap(MinimapInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty minimap: %v", err)
	}
}

func TestSideBySide(t *testing.T) {
	red := image.NewRGBA(image.Rect(0, 0, 50, 50))
	fill(red, red.Bounds(), color.RGBA{R: 255, A: 255})
	out := SideBySide(200, 100, red, nil)
	if got := out.RGBAAt(50, 50); got.R != 255 {
		t.Fatalf("left half = %v, want red", got)
	}
	if got := out.RGBAAt(150, 50); got != colorBackground {
		t.Fatalf("missing right half = %v, want background", got)
	}
}

func TestWritePNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plots", FileName("ground"))
	img := mustRender(t, testInput())
	n, err := WritePNG(path, img)
	if err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 || info.Size() != n {
		t.Fatalf("wrote %d bytes, file has %d", n, info.Size())
	}
}
