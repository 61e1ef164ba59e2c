package game

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// menuTickRate is the update rate of every non-simulation screen, and the
// frame rate assumed when ebiten reports none (SyncWithFPS).
const menuTickRate = ebiten.DefaultTPS

// ticker converts ebiten's fixed frame rate into a slower simulation rate
// with a fractional accumulator.
type ticker struct {
	rate  int // simulation ticks per second
	accum float64
}

func newTicker(rate int) ticker {
	return ticker{rate: rate}
}

// advance accumulates one frame at tps frames per second and returns how
// many simulation ticks are due.
func (t *ticker) advance(tps int) int {
	if t.rate <= 0 {
		return 0
	}
	if tps <= 0 {
		tps = menuTickRate
	}
	t.accum += float64(t.rate) / float64(tps)
	n := 0
	for t.accum >= 1.0 {
		t.accum -= 1.0
		n++
	}
	return n
}

// step is the simulated time covered by one tick.
func (t ticker) step() time.Duration {
	if t.rate <= 0 {
		return 0
	}
	return time.Second / time.Duration(t.rate)
}
