package heatmap

import (
	"image/color"
	"math"
)

// Hot maps t in [0,1] onto the classic black-red-yellow-white ramp. Values
// outside the range are clamped.
func Hot(t float64) color.RGBA {
	t = clamp01(t)
	switch {
	case t < 1.0/3:
		return color.RGBA{R: uint8(t * 3 * 255), A: 255}
	case t < 2.0/3:
		return color.RGBA{R: 255, G: uint8((t - 1.0/3) * 3 * 255), A: 255}
	default:
		return color.RGBA{R: 255, G: 255, B: uint8(min(255, (t-2.0/3)*3*255)), A: 255}
	}
}

// Intensity normalises a count against the scale maximum. Aerial maps are
// linear; ground maps are logarithmic so faint trails stay visible next to
// a source that pegs the ceiling.
func Intensity(count, maxScale float64, aerial bool) float64 {
	if count <= 0 || maxScale <= 0 {
		return 0
	}
	if aerial {
		return math.Min(1, count/maxScale)
	}
	return math.Min(1, math.Log1p(count)/math.Log1p(maxScale))
}

// trailColor is the minimap's blue (cold) to red (hot) ramp.
func trailColor(i float64) color.RGBA {
	i = clamp01(i)
	return color.RGBA{R: uint8(255 * i), G: 50, B: uint8(255 * (1 - i)), A: 255}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(1, v)
}
