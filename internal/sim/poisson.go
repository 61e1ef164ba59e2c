package sim

import (
	"math"
	"math/rand"
)

// poissonKnuthLimit is the mean above which Poisson switches from Knuth's
// multiplication method to transformed rejection.
const poissonKnuthLimit = 30

// Poisson draws a Poisson-distributed count with the given mean.
// Non-positive means return 0.
func Poisson(rng *rand.Rand, lambda float64) float64 {
	switch {
	case lambda <= 0:
		return 0
	case lambda < poissonKnuthLimit:
		return poissonKnuth(rng, lambda)
	default:
		return poissonPTRS(rng, lambda)
	}
}

func poissonKnuth(rng *rand.Rand, lambda float64) float64 {
	limit := math.Exp(-lambda)
	k := 0
	p := rng.Float64()
	for p > limit {
		k++
		p *= rng.Float64()
	}
	return float64(k)
}

// poissonPTRS is Hörmann's transformed rejection with squeeze, valid for
// lambda >= 10.
func poissonPTRS(rng *rand.Rand, lambda float64) float64 {
	slam := math.Sqrt(lambda)
	loglam := math.Log(lambda)
	b := 0.931 + 2.53*slam
	a := -0.059 + 0.02483*b
	invAlpha := 1.1239 + 1.1328/(b-3.4)
	vr := 0.9277 - 3.6224/(b-2)

	for {
		u := rng.Float64() - 0.5
		v := rng.Float64()
		us := 0.5 - math.Abs(u)
		k := math.Floor((2*a/us+b)*u + lambda + 0.43)
		if us >= 0.07 && v <= vr {
			return k
		}
		if k < 0 || (us < 0.013 && v > us) {
			continue
		}
		lg, _ := math.Lgamma(k + 1)
		if math.Log(v)+math.Log(invAlpha)-math.Log(a/(us*us)+b) <= -lambda+k*loglam-lg {
			return k
		}
	}
}
