package heatmap

import (
	"image"
	"image/color"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var labelFace font.Face = basicfont.Face7x13

func scaleLabel(v float64) string {
	return strconv.Itoa(int(v))
}

func textWidth(s string) int {
	return font.MeasureString(labelFace, s).Ceil()
}

func labelHeight() int {
	return labelFace.Metrics().Height.Ceil()
}

// drawLabel writes s with its top-left corner at (x, y): a black one-pixel
// halo first, then white text on top.
func drawLabel(img *image.RGBA, s string, x, y int) {
	baseline := y + labelFace.Metrics().Ascent.Ceil()
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx != 0 || dy != 0 {
				drawText(img, s, x+dx, baseline+dy, color.Black)
			}
		}
	}
	drawText(img, s, x, baseline, color.White)
}

func drawText(img *image.RGBA, s string, x, baseline int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: labelFace,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}
