package sim

import (
	"math"
	"math/rand"
)

// Modality is how the detector senses the field.
type Modality uint8

const (
	Ground Modality = iota // walking survey, walls occlude
	Aerial                 // drone survey above the roofline, no occlusion
)

func (m Modality) String() string {
	switch m {
	case Ground:
		return "ground"
	case Aerial:
		return "aerial"
	default:
		return "unknown"
	}
}

// SignalModel holds the constants of one detector profile.
type SignalModel struct {
	Modality Modality
	// Background is the mean of the Poisson background term.
	Background float64
	// Strength is the source constant for a clear line of sight (mean = Strength/d²).
	Strength float64
	// OccludedStrength replaces Strength when a wall blocks the line.
	OccludedStrength float64
	// Ceiling clamps the total sample.
	Ceiling float64
	// OccludedCeiling, when non-zero, clamps the total instead of Ceiling while
	// any source is occluded.
	OccludedCeiling float64
}

// GroundProfile is the walking survey detector.
func GroundProfile() SignalModel {
	return SignalModel{
		Modality:         Ground,
		Background:       7,
		Strength:         10000,
		OccludedStrength: 5000,
		Ceiling:          10000,
	}
}

// AerialProfile is the drone detector. Background is a third of the ground
// value because the drone picks up less ground scatter.
func AerialProfile() SignalModel {
	return SignalModel{
		Modality:   Aerial,
		Background: 7.0 / 3.0,
		Strength:   10000,
		Ceiling:    10000,
	}
}

// TeachingProfile is the ground detector with the lower clamp teaching mode
// applies behind its enclosure.
func TeachingProfile() SignalModel {
	p := GroundProfile()
	p.OccludedCeiling = 5000
	return p
}

// sourceMean returns the noise-free mean contribution of one source and
// whether its line of sight is blocked.
func (m SignalModel) sourceMean(detector, source Cell, walls CellSet) (float64, bool) {
	if m.Modality == Aerial {
		return m.Strength / DistanceSquared3D(detector, source), false
	}
	d2 := DistanceSquared2D(detector, source)
	if !Visibility(detector, source, walls) {
		return m.OccludedStrength / d2, true
	}
	return m.Strength / d2, false
}

// Sample draws one noisy count rate at the detector cell. It consumes rng
// and has no other side effects; call it every tick, moved or not.
func (m SignalModel) Sample(rng *rand.Rand, detector Cell, sources []Source, walls CellSet) float64 {
	total := Poisson(rng, m.Background)
	occluded := false
	for _, s := range sources {
		mean, blocked := m.sourceMean(detector, s.Cell, walls)
		occluded = occluded || blocked
		total += Poisson(rng, mean)
	}
	return math.Min(total, m.ceiling(occluded))
}

// ExpectedMean is the mean of Sample before the ceiling is applied.
func (m SignalModel) ExpectedMean(detector Cell, sources []Source, walls CellSet) float64 {
	total := m.Background
	for _, s := range sources {
		mean, _ := m.sourceMean(detector, s.Cell, walls)
		total += mean
	}
	return total
}

func (m SignalModel) ceiling(occluded bool) float64 {
	if occluded && m.OccludedCeiling > 0 {
		return m.OccludedCeiling
	}
	return m.Ceiling
}
