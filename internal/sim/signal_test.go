package sim

import (
	"math"
	"math/rand"
	"testing"
)

func sampleMean(m SignalModel, rng *rand.Rand, det Cell, sources []Source, walls CellSet, n int) float64 {
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += m.Sample(rng, det, sources, walls)
	}
	return sum / float64(n)
}

func TestSample_GroundMeanMatchesInverseSquare(t *testing.T) {
	rng := rand.New(rand.NewSource(1)) // #nosec G404 -- test only
	det := Cell{X: 0, Y: 0}
	sources := []Source{{Cell: Cell{X: 10, Y: 0}}}
	m := GroundProfile()

	want := 7 + 10000/100.1
	if got := m.ExpectedMean(det, sources, CellSet{}); math.Abs(got-want) > 1e-9 {
		t.Fatalf("ExpectedMean = %v, want %v", got, want)
	}
	got := sampleMean(m, rng, det, sources, CellSet{}, 10000)
	if math.Abs(got-want) > 0.1*want {
		t.Fatalf("sample mean = %.2f, want within 10%% of %.2f", got, want)
	}
}

func TestSample_MonotoneWithDistance(t *testing.T) {
	rng := rand.New(rand.NewSource(2)) // #nosec G404 -- test only
	sources := []Source{{Cell: Cell{X: 0, Y: 0}}}
	m := GroundProfile()
	prev := math.Inf(1)
	for _, d := range []int{2, 4, 8, 16} {
		got := sampleMean(m, rng, Cell{X: d, Y: 0}, sources, CellSet{}, 2000)
		if got >= prev {
			t.Fatalf("mean at distance %d = %.1f, not below %.1f", d, got, prev)
		}
		prev = got
	}
}

func TestSample_WallHalvesGroundSignal(t *testing.T) {
	det, src := Cell{X: 0, Y: 0}, Cell{X: 6, Y: 0}
	sources := []Source{{Cell: src}}
	walls := NewCellSet(Cell{X: 3, Y: 0})
	m := GroundProfile()

	clear := m.ExpectedMean(det, sources, CellSet{}) - m.Background
	blocked := m.ExpectedMean(det, sources, walls) - m.Background
	if math.Abs(blocked-clear/2) > 1e-9 {
		t.Fatalf("occluded mean %.3f, want half of %.3f", blocked, clear)
	}
}

func TestSample_AerialIgnoresWalls(t *testing.T) {
	det, src := Cell{X: 0, Y: 0}, Cell{X: 6, Y: 0}
	sources := []Source{{Cell: src}}
	walls := NewCellSet(Cell{X: 3, Y: 0})
	m := AerialProfile()

	a := m.ExpectedMean(det, sources, CellSet{})
	b := m.ExpectedMean(det, sources, walls)
	if a != b {
		t.Fatalf("aerial mean changed with walls: %v vs %v", a, b)
	}
	want := 7.0/3.0 + 10000/DistanceSquared3D(det, src)
	if math.Abs(a-want) > 1e-9 {
		t.Fatalf("aerial mean = %v, want %v", a, want)
	}
}

func TestSample_ClampedToCeiling(t *testing.T) {
	rng := rand.New(rand.NewSource(3)) // #nosec G404 -- test only
	c := Cell{X: 5, Y: 5}
	m := GroundProfile()
	for i := 0; i < 50; i++ {
		if got := m.Sample(rng, c, []Source{{Cell: c}}, CellSet{}); got != m.Ceiling {
			t.Fatalf("sample on the source = %v, want ceiling %v", got, m.Ceiling)
		}
	}
}

func TestTeachingProfile_OccludedCeiling(t *testing.T) {
	m := TeachingProfile()
	if m.ceiling(true) != 5000 {
		t.Fatalf("occluded ceiling = %v, want 5000", m.ceiling(true))
	}
	if m.ceiling(false) != 10000 {
		t.Fatalf("clear ceiling = %v, want 10000", m.ceiling(false))
	}
	if GroundProfile().ceiling(true) != 10000 {
		t.Fatal("ground profile should not lower its ceiling when occluded")
	}
}

func TestSample_NoSourcesIsBackground(t *testing.T) {
	rng := rand.New(rand.NewSource(4)) // #nosec G404 -- test only
	got := sampleMean(GroundProfile(), rng, Cell{}, nil, CellSet{}, 5000)
	if math.Abs(got-7) > 0.5 {
		t.Fatalf("background mean = %.2f, want about 7", got)
	}
}

func TestPoisson_MeanAndVariance(t *testing.T) {
	rng := rand.New(rand.NewSource(5)) // #nosec G404 -- test only
	for _, lambda := range []float64{0.5, 4, 29, 30, 250, 5000} {
		const n = 20000
		sum, sumSq := 0.0, 0.0
		for i := 0; i < n; i++ {
			k := Poisson(rng, lambda)
			if k < 0 || k != math.Floor(k) {
				t.Fatalf("λ=%v: draw %v is not a non-negative integer", lambda, k)
			}
			sum += k
			sumSq += k * k
		}
		mean := sum / n
		variance := sumSq/n - mean*mean
		if math.Abs(mean-lambda) > 0.05*lambda+0.05 {
			t.Fatalf("λ=%v: mean %.3f", lambda, mean)
		}
		if math.Abs(variance-lambda) > 0.1*lambda+0.1 {
			t.Fatalf("λ=%v: variance %.3f", lambda, variance)
		}
	}
}

func TestPoisson_NonPositiveMean(t *testing.T) {
	rng := rand.New(rand.NewSource(6)) // #nosec G404 -- test only
	if Poisson(rng, 0) != 0 || Poisson(rng, -3) != 0 {
		t.Fatal("non-positive means must draw 0")
	}
}
