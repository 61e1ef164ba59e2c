package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Rad-Mapper/internal/sim"
)

const (
	debugCharW  = 6  // ebitenutil debug font glyph width at 1x
	debugLineH  = 16 // ebitenutil debug font line height at 1x
	lowBattery  = 25 // battery percent below which the readout turns red
	hudPad      = 8
	minimapEdge = 8
)

var (
	colorHUDText    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorBatteryOK  = color.RGBA{R: 0, G: 200, B: 255, A: 255}
	colorBatteryLow = color.RGBA{R: 255, G: 80, B: 80, A: 255}
	colorCoverage   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	colorPeak       = color.RGBA{R: 255, G: 200, B: 0, A: 255}
	colorTitle      = color.RGBA{R: 255, G: 105, B: 180, A: 255}
	colorPanel      = color.RGBA{A: 170}
)

// hudLine is one coloured line of the stats panel.
type hudLine struct {
	text string
	col  color.RGBA
}

// formatCPS renders a count rate for display.
func formatCPS(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

// hudLines returns the stats panel content for the running session.
func hudLines(s *sim.Session, r sim.Reading) []hudLine {
	lines := []hudLine{{fmt.Sprintf("CPS: %s", formatCPS(r.CPS)), colorHUDText}}
	switch s.Mode {
	case sim.ModeGroundMapping, sim.ModeAerialMapping:
		bat := s.BatteryPercent()
		batCol := colorBatteryOK
		if bat <= lowBattery {
			batCol = colorBatteryLow
		}
		peak, _ := s.Peak()
		lines = append(lines,
			hudLine{fmt.Sprintf("Battery: %.0f%%", bat), batCol},
			hudLine{fmt.Sprintf("Coverage: %.0f%%", 100*s.Coverage()), colorCoverage},
			hudLine{fmt.Sprintf("Peak CPS: %s", formatCPS(peak)), colorPeak},
		)
	case sim.ModeSpectrum:
		lines = append(lines, hudLine{
			fmt.Sprintf("Sources measured: %d/%d", s.MeasuredCount(), len(s.Sources)), colorPeak,
		})
	case sim.ModeTeaching:
		if s.IsMeasured(0) {
			lines = append(lines, hudLine{"Source: " + s.Sources[0].Isotope.String(), colorPeak})
		}
	}
	return lines
}

// modeHint is the one-line prompt shown at the top of the play area.
func modeHint(s *sim.Session) string {
	near := s.NearSource(sim.MeasureRadius)
	switch s.Mode {
	case sim.ModeTeaching:
		if near >= 0 {
			return "Source in reach: press SPACE to measure its spectrum"
		}
		return "Walk to the source and press SPACE to measure its spectrum"
	case sim.ModeSpectrum:
		if near >= 0 && !s.IsMeasured(near) {
			return "Source in reach: press SPACE to measure"
		}
		return "Walk to a source and press SPACE to measure"
	default:
		return "WASD/arrows move  C copy report  ESC menu"
	}
}

// measurementText describes a measured source's spectrum lines.
func measurementText(src sim.Source) string {
	peaks := src.Isotope.PeakEnergiesKeV()
	text := "Measured " + src.Isotope.String() + ": peaks"
	for i, e := range peaks {
		if i > 0 {
			text += ","
		}
		text += " " + humanize.Comma(int64(e))
	}
	return text + " keV"
}

// instructions returns the pre-start briefing for a mode.
func instructions(m sim.Mode, st sim.Settings) (string, []string) {
	switch m {
	case sim.ModeGroundMapping:
		return "Ground Mapping - Instructions", []string{
			"One or more hidden radioactive sources",
			"are inside the building. Map the radiation",
			"and locate them.",
			"",
			"Use WASD or arrow keys to move.",
			"Higher CPS readings mean you are closer.",
			"Walls attenuate the radiation, so readings",
			"behind walls will be lower.",
			"",
			fmt.Sprintf("You have %d seconds before the battery runs out.", st.GroundSeconds),
			"",
			"Press SPACE to begin!",
		}
	case sim.ModeAerialMapping:
		return "Aerial Mapping - Instructions", []string{
			"You are piloting a drone above the building.",
			"",
			"Use WASD or arrow keys to fly. The drone",
			"passes over walls, so you can cover the",
			"whole area.",
			"Readings from the air are weaker, but give",
			"a broader overview.",
			"",
			fmt.Sprintf("You have %d seconds - cover as much as you can!", st.AerialSeconds),
			"",
			"Press SPACE to begin!",
		}
	case sim.ModeTeaching:
		return "Teaching Mode", []string{
			"A single source sits behind a small shield.",
			"Watch the CPS rise as you approach, and drop",
			"when the shield is between you and it.",
			"",
			"Stand next to the source and press SPACE to",
			"measure its spectrum.",
			"",
			"Press SPACE to begin!",
		}
	default:
		return "Spectrum ID", []string{
			"Five tagged sources are scattered around.",
			"Walk up to each one and press SPACE to",
			"measure it and identify the isotope.",
			"",
			"Press SPACE to begin!",
		}
	}
}

// drawPanel draws lines on a translucent panel with its top-right corner at
// (right, top).
func drawPanel(screen *ebiten.Image, lines []hudLine, right, top int) {
	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l.text))
	}
	w := maxLen*debugCharW + 2*hudPad + 8
	h := len(lines)*debugLineH + 2*hudPad
	x := right - w
	vector.FillRect(screen, float32(x), float32(top), float32(w), float32(h), colorPanel, false)
	for i, l := range lines {
		y := top + hudPad + i*debugLineH
		vector.FillRect(screen, float32(x+hudPad), float32(y+5), 4, 6, l.col, false)
		ebitenutil.DebugPrintAt(screen, l.text, x+hudPad+8, y)
	}
}

// drawHint draws a centred one-line banner at the top of the play area.
func drawHint(screen *ebiten.Image, text string, playW int) {
	w := len(text)*debugCharW + 10
	x := (playW - w) / 2
	vector.FillRect(screen, float32(x), 4, float32(w), float32(debugLineH+4), colorPanel, false)
	ebitenutil.DebugPrintAt(screen, text, x+5, 5)
}

// drawMinimap blits the minimap in the bottom-left corner with a border and
// caption.
func drawMinimap(screen, minimap *ebiten.Image, screenH int) {
	if minimap == nil {
		return
	}
	b := minimap.Bounds()
	x := minimapEdge
	y := screenH - b.Dy() - 40
	vector.StrokeRect(screen, float32(x-2), float32(y-2), float32(b.Dx()+4), float32(b.Dy()+4), 2, colorHUDText, false)
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(float64(x), float64(y))
	screen.DrawImage(minimap, &op)
	ebitenutil.DebugPrintAt(screen, "Minimap", x, y-debugLineH-2)
}

// textCache renders debug-font strings once so they can be drawn scaled.
type textCache map[string]*ebiten.Image

// draw paints s at (x, y) scaled by scale, centred horizontally on x when
// centred is set.
func (tc textCache) draw(screen *ebiten.Image, s string, x, y int, scale float64, centred bool, clr color.Color) {
	img, ok := tc[s]
	if !ok {
		img = ebiten.NewImage(max(1, len(s)*debugCharW), debugLineH)
		ebitenutil.DebugPrintAt(img, s, 0, 0)
		tc[s] = img
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(scale, scale)
	if centred {
		x -= int(float64(img.Bounds().Dx()) * scale / 2)
	}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	screen.DrawImage(img, &op)
}

// drawOverlay dims the screen and draws a titled block of centred lines.
func (tc textCache) drawOverlay(screen *ebiten.Image, title string, lines []string, w, h int) {
	vector.FillRect(screen, 0, 0, float32(w), float32(h), color.RGBA{A: 200}, false)
	y := h / 6
	tc.draw(screen, title, w/2, y, 3, true, colorTitle)
	y += 3*debugLineH + 24
	for _, l := range lines {
		tc.draw(screen, l, w/2, y, 2, true, colorHUDText)
		y += 2*debugLineH + 4
	}
}
