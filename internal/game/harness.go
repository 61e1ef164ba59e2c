package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Garsondee/Rad-Mapper/internal/sim"
)

// Walker chooses the detector's next move. Headless runs and tests use it
// in place of the keyboard.
type Walker interface {
	Next(s *sim.Session) sim.Direction
}

// SweepWalker covers the grid in a serpentine (boustrophedon) sweep: rows
// Lane cells apart, alternating direction, taking the shortest passable
// route to each target. Targets that cannot be reached are skipped.
type SweepWalker struct {
	targets []sim.Cell
	next    int
	path    []sim.Cell
}

// NewSweepWalker plans a sweep over s's floors, or the whole grid when the
// session has no floors.
func NewSweepWalker(s *sim.Session, lane int) *SweepWalker {
	lane = max(1, lane)
	w := &SweepWalker{}
	useFloors := s.Floors.Size() > 0
	row := 0
	for y := 0; y < s.Height; y++ {
		if y%lane != 0 {
			continue
		}
		for i := 0; i < s.Width; i++ {
			x := i
			if row%2 == 1 {
				x = s.Width - 1 - i
			}
			c := sim.Cell{X: x, Y: y}
			if useFloors && !s.Floors.Has(c) {
				continue
			}
			if !passable(s, c) {
				continue
			}
			w.targets = append(w.targets, c)
		}
		row++
	}
	return w
}

// Remaining is the number of sweep targets not yet reached or skipped.
func (w *SweepWalker) Remaining() int {
	return len(w.targets) - w.next
}

// Next implements Walker.
func (w *SweepWalker) Next(s *sim.Session) sim.Direction {
	at := s.Detector()
	for w.next < len(w.targets) {
		target := w.targets[w.next]
		if s.Visited().Has(target) {
			w.next++
			w.path = nil
			continue
		}
		if target == at {
			// Stay put for a tick so the cell gets sampled.
			w.next++
			w.path = nil
			return sim.DirNone
		}
		if len(w.path) == 0 || manhattan(at, w.path[0]) != 1 {
			w.path = route(s, at, target)
			if w.path == nil {
				w.next++
				continue
			}
		}
		step := w.path[0]
		w.path = w.path[1:]
		return directionTo(at, step)
	}
	return sim.DirNone
}

func passable(s *sim.Session, c sim.Cell) bool {
	if !sim.InGrid(c, s.Width, s.Height) {
		return false
	}
	return s.Modality() == sim.Aerial || !s.Walls.Has(c)
}

func manhattan(a, b sim.Cell) int {
	dx, dy := a.X-b.X, a.Y-b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

var stepOrder = [4]sim.Direction{sim.DirUp, sim.DirRight, sim.DirDown, sim.DirLeft}

// route returns the 4-connected shortest path from a to b, excluding a, or
// nil when b is unreachable.
func route(s *sim.Session, a, b sim.Cell) []sim.Cell {
	prev := map[sim.Cell]sim.Cell{a: a}
	queue := []sim.Cell{a}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == b {
			var path []sim.Cell
			for c != a {
				path = append(path, c)
				c = prev[c]
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path
		}
		for _, d := range stepOrder {
			dx, dy := d.Delta()
			n := sim.Cell{X: c.X + dx, Y: c.Y + dy}
			if _, seen := prev[n]; seen || !passable(s, n) {
				continue
			}
			prev[n] = c
			queue = append(queue, n)
		}
	}
	return nil
}

func directionTo(from, to sim.Cell) sim.Direction {
	switch {
	case to.X < from.X:
		return sim.DirLeft
	case to.X > from.X:
		return sim.DirRight
	case to.Y < from.Y:
		return sim.DirUp
	case to.Y > from.Y:
		return sim.DirDown
	default:
		return sim.DirNone
	}
}

// runConfig collects HeadlessRun options.
type runConfig struct {
	mode       sim.Mode
	width      int
	height     int
	seed       int64
	duration   time.Duration
	maxSources int
	lane       int
	verbose    bool
}

// RunOption configures a HeadlessRun.
type RunOption func(*runConfig)

// WithMode selects the exercise to run.
func WithMode(m sim.Mode) RunOption {
	return func(c *runConfig) { c.mode = m }
}

// WithGridSize sets the grid dimensions in cells.
func WithGridSize(w, h int) RunOption {
	return func(c *runConfig) {
		c.width = w
		c.height = h
	}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) RunOption {
	return func(c *runConfig) { c.seed = seed }
}

// WithDuration overrides the mapping countdown, rounded up to whole seconds.
func WithDuration(d time.Duration) RunOption {
	return func(c *runConfig) { c.duration = d }
}

// WithMaxSources caps how many sources a mapping run hides.
func WithMaxSources(n int) RunOption {
	return func(c *runConfig) { c.maxSources = n }
}

// WithLane sets the sweep row spacing.
func WithLane(n int) RunOption {
	return func(c *runConfig) { c.lane = n }
}

// WithVerbose records per-tick samples in the session log.
func WithVerbose(v bool) RunOption {
	return func(c *runConfig) { c.verbose = v }
}

// HeadlessRun drives one session without a window, at the mode's tick rate.
type HeadlessRun struct {
	Session *sim.Session
	Walker  Walker
	ticker  ticker
}

// NewHeadlessRun builds a session from opts and plans a sweep over it.
func NewHeadlessRun(opts ...RunOption) (*HeadlessRun, error) {
	cfg := runConfig{
		mode:       sim.ModeGroundMapping,
		width:      40,
		height:     30,
		seed:       1,
		maxSources: sim.DefaultSettings().MaxSources,
		lane:       2,
	}
	for _, o := range opts {
		o(&cfg)
	}
	rng := rand.New(rand.NewSource(cfg.seed)) // #nosec G404 -- simulation only

	var (
		s   *sim.Session
		err error
	)
	switch cfg.mode {
	case sim.ModeGroundMapping, sim.ModeAerialMapping:
		st := sim.DefaultSettings()
		st.MaxSources = cfg.maxSources
		if cfg.duration > 0 {
			secs := int((cfg.duration + time.Second - 1) / time.Second)
			st.GroundSeconds, st.AerialSeconds = secs, secs
		}
		s, err = sim.NewMappingSession(cfg.mode, cfg.width, cfg.height, st, rng)
	case sim.ModeTeaching:
		s, err = sim.NewTeachingSession(cfg.width, cfg.height, rng)
	case sim.ModeSpectrum:
		s, err = sim.NewSpectrumSession(cfg.width, cfg.height, rng)
	default:
		err = fmt.Errorf("mode %d: %w", cfg.mode, sim.ErrInvalidSession)
	}
	if err != nil {
		return nil, err
	}
	s.Log.SetVerbose(cfg.verbose)
	return &HeadlessRun{
		Session: s,
		Walker:  NewSweepWalker(s, cfg.lane),
		ticker:  newTicker(cfg.mode.TickRate()),
	}, nil
}

// Step advances the session by one tick.
func (h *HeadlessRun) Step() sim.Reading {
	return h.Session.Step(h.Walker.Next(h.Session), h.ticker.step())
}

// Run steps until the session expires or maxTicks have run, and returns the
// number of ticks taken.
func (h *HeadlessRun) Run(maxTicks int) int {
	n := 0
	for n < maxTicks && !h.Session.Expired() {
		h.Step()
		n++
	}
	return n
}
