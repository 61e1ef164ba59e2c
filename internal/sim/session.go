package sim

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Mode is the kind of exercise a session runs.
type Mode uint8

const (
	ModeGroundMapping Mode = iota // walk a building, find 1..N sources
	ModeAerialMapping             // fly over a building, find 1..N sources
	ModeTeaching                  // one source behind a small enclosure
	ModeSpectrum                  // five tagged sources to measure up close
)

func (m Mode) String() string {
	switch m {
	case ModeGroundMapping:
		return "ground"
	case ModeAerialMapping:
		return "aerial"
	case ModeTeaching:
		return "teaching"
	case ModeSpectrum:
		return "spectrum"
	default:
		return "unknown"
	}
}

// Modality returns the sensing modality the mode uses.
func (m Mode) Modality() Modality {
	if m == ModeAerialMapping {
		return Aerial
	}
	return Ground
}

// TickRate is the number of simulation ticks per second for the mode. Aerial
// ticks faster so the weaker per-tick signal still paints a smooth trail.
func (m Mode) TickRate() int {
	if m == ModeAerialMapping {
		return 25
	}
	return 10
}

// Direction is one tick of movement intent from the input collaborator.
type Direction uint8

const (
	DirNone Direction = iota
	DirLeft
	DirRight
	DirUp
	DirDown
)

// Delta returns the cell offset for the direction.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	default:
		return 0, 0
	}
}

// SessionState is the countdown state of a session.
type SessionState uint8

const (
	StateActive SessionState = iota
	StateExpired
)

func (s SessionState) String() string {
	if s == StateExpired {
		return "expired"
	}
	return "active"
}

// untimedDuration stands in for "no battery limit" in teaching and spectrum
// sessions.
const untimedDuration = 10000 * time.Second

// SessionConfig describes a session before it starts.
type SessionConfig struct {
	Mode     Mode
	Width    int
	Height   int
	Walls    CellSet // the zero value means no walls
	Floors   CellSet // the zero value means no floor cells
	Sources  []Source
	Start    Cell
	Duration time.Duration
	Signal   SignalModel
	Rand     *rand.Rand // nil seeds from the clock
	Verbose  bool
}

// Reading is the result of one tick.
type Reading struct {
	Cell    Cell
	CPS     float64
	Moved   bool
	NewCell bool
	Active  bool // false once the session has expired; nothing was sampled
}

// Session is one timed play-through. It is owned by a single caller and is
// not safe for concurrent use.
type Session struct {
	ID      uuid.UUID
	Mode    Mode
	Width   int
	Height  int
	Walls   CellSet
	Floors  CellSet
	Sources []Source
	Log     *SimLog

	counts   [][]float64
	visited  CellSet
	measured []bool
	detector Cell
	peak     float64
	peakCell Cell
	elapsed  time.Duration
	duration time.Duration
	tick     int
	state    SessionState
	signal   SignalModel
	rng      *rand.Rand
}

// NewSession validates cfg and starts an active session.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("grid %dx%d: %w", cfg.Width, cfg.Height, ErrInvalidSession)
	}
	if cfg.Duration <= 0 {
		return nil, fmt.Errorf("duration %v: %w", cfg.Duration, ErrInvalidSession)
	}
	if cfg.Walls.Size() == 0 {
		cfg.Walls = NewCellSet()
	}
	if cfg.Floors.Size() == 0 {
		cfg.Floors = NewCellSet()
	}
	if !InGrid(cfg.Start, cfg.Width, cfg.Height) {
		return nil, fmt.Errorf("start %v outside %dx%d grid: %w", cfg.Start, cfg.Width, cfg.Height, ErrInvalidSession)
	}
	if cfg.Mode.Modality() == Ground && cfg.Walls.Has(cfg.Start) {
		return nil, fmt.Errorf("start %v is a wall: %w", cfg.Start, ErrInvalidSession)
	}
	for _, s := range cfg.Sources {
		if !InGrid(s.Cell, cfg.Width, cfg.Height) {
			return nil, fmt.Errorf("source %v outside %dx%d grid: %w", s.Cell, cfg.Width, cfg.Height, ErrInvalidSession)
		}
	}
	if cfg.Signal.Ceiling <= 0 {
		if cfg.Mode.Modality() == Aerial {
			cfg.Signal = AerialProfile()
		} else {
			cfg.Signal = GroundProfile()
		}
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 -- game only
	}

	counts := make([][]float64, cfg.Height)
	for y := range counts {
		counts[y] = make([]float64, cfg.Width)
	}

	s := &Session{
		ID:       uuid.New(),
		Mode:     cfg.Mode,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Walls:    cfg.Walls,
		Floors:   cfg.Floors,
		Sources:  append([]Source(nil), cfg.Sources...),
		Log:      NewSimLog(cfg.Verbose),
		counts:   counts,
		visited:  NewCellSet(),
		measured: make([]bool, len(cfg.Sources)),
		detector: cfg.Start,
		duration: cfg.Duration,
		signal:   cfg.Signal,
		rng:      cfg.Rand,
	}
	s.Log.Add(0, "session", "start",
		fmt.Sprintf("mode=%s grid=%dx%d sources=%d duration=%v", s.Mode, s.Width, s.Height, len(s.Sources), s.duration),
		float64(len(s.Sources)))
	return s, nil
}

// DetectorStart is where every survey begins: bottom centre, outside the
// building's front door.
func DetectorStart(width, height int) Cell {
	return Cell{X: width / 2, Y: height - 2}
}

// NewMappingSession generates a building, hides sources in it and starts a
// ground or aerial survey sized by settings.
func NewMappingSession(mode Mode, width, height int, settings Settings, rng *rand.Rand) (*Session, error) {
	if mode != ModeGroundMapping && mode != ModeAerialMapping {
		return nil, fmt.Errorf("mode %s is not a mapping mode: %w", mode, ErrInvalidSession)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 -- game only
	}
	b, err := GenerateBuilding(width, height, rng)
	if err != nil {
		return nil, fmt.Errorf("generate building: %w", err)
	}
	profile := GroundProfile()
	if mode == ModeAerialMapping {
		profile = AerialProfile()
	}
	return NewSession(SessionConfig{
		Mode:     mode,
		Width:    width,
		Height:   height,
		Walls:    b.Walls,
		Floors:   b.Floors,
		Sources:  PlaceMappingSources(rng, b, settings.MaxSources),
		Start:    DetectorStart(width, height),
		Duration: settings.Duration(mode),
		Signal:   profile,
		Rand:     rng,
	})
}

// NewTeachingSession starts the untimed single-source tutorial.
func NewTeachingSession(width, height int, rng *rand.Rand) (*Session, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 -- game only
	}
	return NewSession(SessionConfig{
		Mode:     ModeTeaching,
		Width:    width,
		Height:   height,
		Walls:    TeachingEnclosure(width, height),
		Sources:  []Source{TeachingSource(rng, width, height)},
		Start:    DetectorStart(width, height),
		Duration: untimedDuration,
		Signal:   TeachingProfile(),
		Rand:     rng,
	})
}

// NewSpectrumSession starts the untimed spectrum identification walk.
func NewSpectrumSession(width, height int, rng *rand.Rand) (*Session, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 -- game only
	}
	return NewSession(SessionConfig{
		Mode:     ModeSpectrum,
		Width:    width,
		Height:   height,
		Sources:  PlaceSpectrumSources(rng, width, height),
		Start:    DetectorStart(width, height),
		Duration: untimedDuration,
		Signal:   GroundProfile(),
		Rand:     rng,
	})
}

// canEnter reports whether the detector may occupy c.
func (s *Session) canEnter(c Cell) bool {
	if !InGrid(c, s.Width, s.Height) {
		return false
	}
	return s.Mode.Modality() == Aerial || !s.Walls.Has(c)
}

// Step runs one tick: apply movement, sample the field at the detector,
// record the sample and advance the clock by dt. Once the session has
// expired Step does nothing.
func (s *Session) Step(dir Direction, dt time.Duration) Reading {
	if s.state == StateExpired {
		return Reading{Cell: s.detector}
	}
	s.tick++

	moved := false
	if dx, dy := dir.Delta(); dx != 0 || dy != 0 {
		next := Cell{X: s.detector.X + dx, Y: s.detector.Y + dy}
		if s.canEnter(next) {
			s.detector = next
			moved = true
		} else {
			s.Log.AddVerbose(s.tick, "move", "blocked", fmt.Sprintf("(%d,%d)", next.X, next.Y), 0)
		}
	}

	c := s.detector
	cps := s.signal.Sample(s.rng, c, s.Sources, s.Walls)
	s.counts[c.Y][c.X] = cps

	newCell := !s.visited.Has(c)
	if newCell {
		s.visited.Put(c)
		s.Log.AddVerbose(s.tick, "coverage", "new_cell", fmt.Sprintf("(%d,%d)", c.X, c.Y), s.Coverage())
	}
	s.Log.AddVerbose(s.tick, "signal", "sample", fmt.Sprintf("%.0f cps at (%d,%d)", cps, c.X, c.Y), cps)
	if cps > s.peak {
		s.peak = cps
		s.peakCell = c
		s.Log.Add(s.tick, "signal", "peak", fmt.Sprintf("%.0f cps at (%d,%d)", cps, c.X, c.Y), cps)
	}

	s.elapsed += dt
	if s.Remaining() <= 0 {
		s.state = StateExpired
		s.Log.Add(s.tick, "session", "expired",
			fmt.Sprintf("coverage=%.1f%% peak=%.0f", 100*s.Coverage(), s.peak), s.Coverage())
	}

	return Reading{Cell: c, CPS: cps, Moved: moved, NewCell: newCell, Active: true}
}

// Expire ends the session early, e.g. when the player quits to the menu.
func (s *Session) Expire() {
	if s.state == StateExpired {
		return
	}
	s.state = StateExpired
	s.Log.Add(s.tick, "session", "abandoned", fmt.Sprintf("remaining=%v", s.Remaining()), 0)
}

// State returns the countdown state.
func (s *Session) State() SessionState { return s.state }

// Expired reports whether the countdown has finished.
func (s *Session) Expired() bool { return s.state == StateExpired }

// Tick is the number of ticks processed so far.
func (s *Session) Tick() int { return s.tick }

// Detector is the current detector cell.
func (s *Session) Detector() Cell { return s.detector }

// Peak is the highest sample seen so far and where it was taken.
func (s *Session) Peak() (float64, Cell) { return s.peak, s.peakCell }

// CountAt returns the latest sample recorded at c, or 0 outside the grid.
func (s *Session) CountAt(c Cell) float64 {
	if !InGrid(c, s.Width, s.Height) {
		return 0
	}
	return s.counts[c.Y][c.X]
}

// Counts returns the live count grid, indexed [y][x]. Callers must not
// modify it; use Snapshot for a private copy.
func (s *Session) Counts() [][]float64 { return s.counts }

// Visited returns the live visited set. Callers must not modify it.
func (s *Session) Visited() CellSet { return s.visited }

// Coverage is |visited| / |floors|, with the denominator floored at 1.
// Cells visited outside the building count too.
func (s *Session) Coverage() float64 {
	return float64(s.visited.Size()) / float64(max(1, s.Floors.Size()))
}

// Remaining is the time left on the countdown, never negative.
func (s *Session) Remaining() time.Duration {
	return max(0, s.duration-s.elapsed)
}

// Duration is the full countdown length.
func (s *Session) Duration() time.Duration { return s.duration }

// BatteryPercent is the share of the countdown left, 0-100.
func (s *Session) BatteryPercent() float64 {
	return 100 * float64(s.Remaining()) / float64(max(1, s.duration))
}

// Modality is the sensing modality of the session.
func (s *Session) Modality() Modality { return s.Mode.Modality() }

// MeasureRadius is how close (king moves) the detector must be to take a
// spectrum measurement.
const MeasureRadius = 1

// NearSource returns the index of the first source within radius (Chebyshev)
// of the detector, or -1.
func (s *Session) NearSource(radius int) int {
	for i, src := range s.Sources {
		if Chebyshev(s.detector, src.Cell) <= radius {
			return i
		}
	}
	return -1
}

// MarkMeasured records that the player measured source i's spectrum.
func (s *Session) MarkMeasured(i int) bool {
	if i < 0 || i >= len(s.measured) {
		return false
	}
	if !s.measured[i] {
		s.measured[i] = true
		s.Log.Add(s.tick, "spectrum", "measured", s.Sources[i].Isotope.String(), float64(i))
	}
	return true
}

// IsMeasured reports whether source i has been measured.
func (s *Session) IsMeasured(i int) bool {
	return i >= 0 && i < len(s.measured) && s.measured[i]
}

// Measured returns a copy of the per-source measured flags.
func (s *Session) Measured() []bool {
	return append([]bool(nil), s.measured...)
}

// MeasuredCount is the number of distinct sources measured.
func (s *Session) MeasuredCount() int {
	n := 0
	for _, m := range s.measured {
		if m {
			n++
		}
	}
	return n
}

// Snapshot copies the session's final state for later display.
func (s *Session) Snapshot() Result {
	counts := make([][]float64, len(s.counts))
	for y, row := range s.counts {
		counts[y] = append([]float64(nil), row...)
	}
	return Result{
		SessionID: s.ID,
		Mode:      s.Mode,
		Width:     s.Width,
		Height:    s.Height,
		Counts:    counts,
		Walls:     s.Walls,
		Floors:    s.Floors,
		Sources:   append([]Source(nil), s.Sources...),
		Peak:      s.peak,
		PeakCell:  s.peakCell,
		Coverage:  s.Coverage(),
		Visited:   s.visited.Size(),
		Ticks:     s.tick,
	}
}

// Resize returns a new session on a width×height grid carrying over this
// session's progress. Only the overlapping sub-rectangle of the count grid
// survives; walls, floors and visited cells outside the new grid are dropped
// and the detector is clamped inside. Resizing fails if a source would fall
// outside the grid.
func (s *Session) Resize(width, height int) (*Session, error) {
	inside := func(set CellSet) CellSet {
		out := NewCellSet()
		set.Each(func(c Cell) {
			if InGrid(c, width, height) {
				out.Put(c)
			}
		})
		return out
	}

	det := Cell{X: min(s.detector.X, width-1), Y: min(s.detector.Y, height-1)}
	ns, err := NewSession(SessionConfig{
		Mode:     s.Mode,
		Width:    width,
		Height:   height,
		Walls:    inside(s.Walls),
		Floors:   inside(s.Floors),
		Sources:  s.Sources,
		Start:    det,
		Duration: s.duration,
		Signal:   s.signal,
		Rand:     s.rng,
	})
	if err != nil {
		return nil, fmt.Errorf("resize to %dx%d: %w", width, height, err)
	}

	for y := 0; y < min(height, s.Height); y++ {
		copy(ns.counts[y][:min(width, s.Width)], s.counts[y])
	}
	ns.ID = s.ID
	ns.Log = s.Log
	ns.visited = inside(s.visited)
	copy(ns.measured, s.measured)
	ns.peak = s.peak
	ns.peakCell = s.peakCell
	ns.elapsed = s.elapsed
	ns.tick = s.tick
	ns.state = s.state
	ns.Log.Add(s.tick, "session", "resize", fmt.Sprintf("%dx%d -> %dx%d", s.Width, s.Height, width, height), 0)
	return ns, nil
}
