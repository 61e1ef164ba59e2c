package sim

import (
	"math"
	"math/rand"
	"testing"
)

func TestLine_IncludesEndpoints(t *testing.T) {
	walk := Line(Cell{X: 2, Y: 3}, Cell{X: 9, Y: 5})
	if walk[0] != (Cell{X: 2, Y: 3}) {
		t.Fatalf("first cell = %v, want (2,3)", walk[0])
	}
	if walk[len(walk)-1] != (Cell{X: 9, Y: 5}) {
		t.Fatalf("last cell = %v, want (9,5)", walk[len(walk)-1])
	}
	if len(walk) != 8 {
		t.Fatalf("len = %d, want 8 (one cell per major-axis step)", len(walk))
	}
}

func TestLine_EightConnected(t *testing.T) {
	walk := Line(Cell{X: 0, Y: 0}, Cell{X: 13, Y: -7})
	for i := 1; i < len(walk); i++ {
		if Chebyshev(walk[i-1], walk[i]) != 1 {
			t.Fatalf("step %d: %v -> %v is not a king move", i, walk[i-1], walk[i])
		}
	}
}

func TestLine_SameCellsBothDirections(t *testing.T) {
	rng := rand.New(rand.NewSource(7)) // #nosec G404 -- test only
	for i := 0; i < 500; i++ {
		a := Cell{X: rng.Intn(40), Y: rng.Intn(30)}
		b := Cell{X: rng.Intn(40), Y: rng.Intn(30)}
		ab := NewCellSet(Line(a, b)...)
		ba := Line(b, a)
		if ab.Size() != len(ba) {
			t.Fatalf("%v<->%v: walk lengths differ (%d vs %d)", a, b, ab.Size(), len(ba))
		}
		for _, c := range ba {
			if !ab.Has(c) {
				t.Fatalf("%v<->%v: %v only on the reverse walk", a, b, c)
			}
		}
	}
}

func TestVisibility_Symmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(11)) // #nosec G404 -- test only
	walls := NewCellSet()
	for i := 0; i < 120; i++ {
		walls.Put(Cell{X: rng.Intn(40), Y: rng.Intn(30)})
	}
	for i := 0; i < 2000; i++ {
		a := Cell{X: rng.Intn(40), Y: rng.Intn(30)}
		b := Cell{X: rng.Intn(40), Y: rng.Intn(30)}
		if Visibility(a, b, walls) != Visibility(b, a, walls) {
			t.Fatalf("Visibility(%v,%v) != Visibility(%v,%v)", a, b, b, a)
		}
	}
}

func TestVisibility_SelfAlwaysVisible(t *testing.T) {
	c := Cell{X: 4, Y: 4}
	if !Visibility(c, c, NewCellSet(c)) {
		t.Fatal("a cell must always see itself, even a wall cell")
	}
}

func TestVisibility_EndpointsNeverBlock(t *testing.T) {
	a, b := Cell{X: 0, Y: 0}, Cell{X: 5, Y: 0}
	if !Visibility(a, b, NewCellSet(a, b)) {
		t.Fatal("walls on the endpoints should not occlude")
	}
}

func TestVisibility_BlockedByWallBetween(t *testing.T) {
	walls := NewCellSet(Cell{X: 3, Y: 0})
	if Visibility(Cell{X: 0, Y: 0}, Cell{X: 6, Y: 0}, walls) {
		t.Fatal("expected wall at (3,0) to block the row")
	}
	if !Visibility(Cell{X: 0, Y: 1}, Cell{X: 6, Y: 1}, walls) {
		t.Fatal("wall on the row above should not block")
	}
}

func TestVisibility_NilOccluders(t *testing.T) {
	var none CellSet
	if !Visibility(Cell{X: 0, Y: 0}, Cell{X: 9, Y: 9}, none) {
		t.Fatal("an empty occluder set blocks nothing")
	}
}

func TestDistanceSquared(t *testing.T) {
	a, b := Cell{X: 1, Y: 2}, Cell{X: 4, Y: 6}
	if got := DistanceSquared2D(a, b); math.Abs(got-25.1) > 1e-9 {
		t.Fatalf("2D = %v, want 25.1", got)
	}
	if got := DistanceSquared3D(a, b); math.Abs(got-125.1) > 1e-9 {
		t.Fatalf("3D = %v, want 125.1", got)
	}
	if got := DistanceSquared2D(a, a); got != 0.1 {
		t.Fatalf("2D on the same cell = %v, want the 0.1 epsilon", got)
	}
}

func TestCellsOf_RowMajor(t *testing.T) {
	got := CellsOf(NewCellSet(Cell{X: 3, Y: 1}, Cell{X: 0, Y: 2}, Cell{X: 1, Y: 1}))
	want := []Cell{{X: 1, Y: 1}, {X: 3, Y: 1}, {X: 0, Y: 2}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("CellsOf = %v, want %v", got, want)
		}
	}
}
