package sim

import "math/rand"

// Isotope tags a source for the spectrum identification exercises.
type Isotope uint8

const (
	IsotopeUnknown Isotope = iota
	Cs137
	Co60
	Eu152
	NatU
	isotopeCount
)

// Isotopes lists every taggable isotope.
var Isotopes = []Isotope{Cs137, Co60, Eu152, NatU}

func (i Isotope) String() string {
	switch i {
	case Cs137:
		return "Cs-137"
	case Co60:
		return "Co-60"
	case Eu152:
		return "Eu-152"
	case NatU:
		return "Nat. Uranium"
	default:
		return "unknown"
	}
}

// PeakEnergiesKeV returns the main gamma lines a spectrum plot would show.
func (i Isotope) PeakEnergiesKeV() []float64 {
	switch i {
	case Cs137:
		return []float64{662}
	case Co60:
		return []float64{1173, 1332}
	case Eu152:
		return []float64{122, 344, 779, 964, 1408}
	case NatU:
		return []float64{186, 352, 609, 1120, 1764}
	default:
		return nil
	}
}

// Source is a hidden emitter. It never moves during a session.
type Source struct {
	Cell
	Isotope Isotope
}

// SourceCells strips the tags from sources.
func SourceCells(sources []Source) []Cell {
	out := make([]Cell, len(sources))
	for i, s := range sources {
		out[i] = s.Cell
	}
	return out
}

const (
	sourceAttempts        = 100
	mappingSourceInset    = 6
	mappingSourceSpacing  = 4
	spectrumSourceInset   = 4
	spectrumSourceSpacing = 5
	spectrumSourceCount   = 5
	spectrumMinDistinct   = 3
	isotopeDrawAttempts   = 20
)

// tooClose reports whether c is within spacing of any placed source on both
// axes.
func tooClose(c Cell, placed []Source, spacing int) bool {
	for _, p := range placed {
		if abs(c.X-p.X) < spacing && abs(c.Y-p.Y) < spacing {
			return true
		}
	}
	return false
}

// PlaceMappingSources hides between 1 and maxSources sources inside the
// building area, off walls and spaced apart. A source that cannot be placed
// within the attempt budget is dropped.
func PlaceMappingSources(rng *rand.Rand, b *Building, maxSources int) []Source {
	maxSources = max(1, maxSources)
	want := randInclusive(rng, 1, maxSources)
	out := make([]Source, 0, want)
	for len(out) < want {
		placed := false
		for attempt := 0; attempt < sourceAttempts; attempt++ {
			c := Cell{
				X: randInclusive(rng, mappingSourceInset, b.Width-mappingSourceInset),
				Y: randInclusive(rng, mappingSourceInset, b.Height-mappingSourceInset),
			}
			if b.IsWall(c) || tooClose(c, out, mappingSourceSpacing) {
				continue
			}
			out = append(out, Source{Cell: c})
			placed = true
			break
		}
		if !placed {
			break
		}
	}
	return out
}

// TeachingSource is the single source at the grid centre with a random tag.
func TeachingSource(rng *rand.Rand, width, height int) Source {
	return Source{
		Cell:    Cell{X: width / 2, Y: height / 2},
		Isotope: Isotopes[rng.Intn(len(Isotopes))],
	}
}

// spectrumIsotopes draws spectrumSourceCount tags with at least
// spectrumMinDistinct different isotopes.
func spectrumIsotopes(rng *rand.Rand) []Isotope {
	draw := func() []Isotope {
		out := make([]Isotope, spectrumSourceCount)
		for i := range out {
			out[i] = Isotopes[rng.Intn(len(Isotopes))]
		}
		return out
	}
	distinct := func(tags []Isotope) int {
		var seen [isotopeCount]bool
		n := 0
		for _, t := range tags {
			if !seen[t] {
				seen[t] = true
				n++
			}
		}
		return n
	}

	tags := draw()
	for attempt := 0; attempt < isotopeDrawAttempts && distinct(tags) < spectrumMinDistinct; attempt++ {
		tags = draw()
	}
	if distinct(tags) < spectrumMinDistinct {
		// Force the variety: overwrite the head with a rotation of the catalogue.
		offset := rng.Intn(len(Isotopes))
		for i := 0; i < spectrumMinDistinct; i++ {
			tags[i] = Isotopes[(offset+i)%len(Isotopes)]
		}
	}
	rng.Shuffle(len(tags), func(i, j int) { tags[i], tags[j] = tags[j], tags[i] })
	return tags
}

// PlaceSpectrumSources scatters five tagged sources for spectrum
// identification. When spacing cannot be met within the attempt budget the
// last candidate is used anyway.
func PlaceSpectrumSources(rng *rand.Rand, width, height int) []Source {
	tags := spectrumIsotopes(rng)
	out := make([]Source, 0, len(tags))
	for _, iso := range tags {
		var c Cell
		for attempt := 0; attempt < sourceAttempts; attempt++ {
			c = Cell{
				X: randInclusive(rng, spectrumSourceInset, width-spectrumSourceInset),
				Y: randInclusive(rng, spectrumSourceInset, height-spectrumSourceInset),
			}
			if !tooClose(c, out, spectrumSourceSpacing) {
				break
			}
		}
		out = append(out, Source{Cell: c, Isotope: iso})
	}
	return out
}
