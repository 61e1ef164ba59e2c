package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/Garsondee/Rad-Mapper/internal/game"
	"github.com/Garsondee/Rad-Mapper/internal/heatmap"
	"github.com/Garsondee/Rad-Mapper/internal/logger"
	"github.com/Garsondee/Rad-Mapper/internal/sim"
)

var errUsage = errors.New("usage")

type runStats struct {
	runIndex int
	seed     int64

	result   sim.Result
	ticks    int
	peakMiss float64 // -1 when the run had no sources

	firstPeakTick int
	lastPeakTick  int // tick the final peak was recorded
	peakChanges   int
	blockedMoves  int // only recorded with -verbose

	log *sim.SimLog
}

type options struct {
	runs     int
	mode     string
	width    int
	height   int
	duration time.Duration
	maxTicks int
	seedBase int64
	seedStep int64
	out      string
	copy     bool
	verbose  bool
}

func main() {
	var o options
	flag.IntVar(&o.runs, "runs", 5, "number of headless survey runs")
	flag.StringVar(&o.mode, "mode", "ground", "exercise: ground, aerial, teaching or spectrum")
	flag.IntVar(&o.width, "width", 40, "grid width in cells")
	flag.IntVar(&o.height, "height", 30, "grid height in cells")
	flag.DurationVar(&o.duration, "duration", 0, "mapping time per run (0 = default settings)")
	flag.IntVar(&o.maxTicks, "max-ticks", 6000, "tick cap per run for the untimed teaching and spectrum exercises")
	flag.Int64Var(&o.seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&o.seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&o.out, "out", "", "directory for per-run heatmaps (empty = skip)")
	flag.BoolVar(&o.copy, "copy", false, "copy the final report to the clipboard")
	flag.BoolVar(&o.verbose, "verbose", false, "record per-tick events (enables blocked_moves)")
	flag.Parse()

	logger.Init()
	if err := run(o, logger.Log); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Println("error:", err)
			os.Exit(2)
		}
		logger.Log.WithError(err).Fatal("headless report failed")
	}
}

func parseMode(name string) (sim.Mode, error) {
	switch strings.ToLower(name) {
	case "ground":
		return sim.ModeGroundMapping, nil
	case "aerial":
		return sim.ModeAerialMapping, nil
	case "teaching":
		return sim.ModeTeaching, nil
	case "spectrum":
		return sim.ModeSpectrum, nil
	default:
		return 0, fmt.Errorf("unsupported mode %q (supported: ground, aerial, teaching, spectrum): %w", name, errUsage)
	}
}

func (o options) validate() error {
	if o.runs <= 0 {
		return fmt.Errorf("-runs must be > 0: %w", errUsage)
	}
	if o.maxTicks <= 0 {
		return fmt.Errorf("-max-ticks must be > 0: %w", errUsage)
	}
	if o.width < sim.MinGridSize || o.height < sim.MinGridSize {
		return fmt.Errorf("grid must be at least %dx%d: %w", sim.MinGridSize, sim.MinGridSize, errUsage)
	}
	if o.duration < 0 {
		return fmt.Errorf("-duration must not be negative: %w", errUsage)
	}
	return nil
}

func run(o options, log *logrus.Logger) error {
	if err := o.validate(); err != nil {
		return err
	}
	mode, err := parseMode(o.mode)
	if err != nil {
		return err
	}
	if o.out != "" {
		if err := os.MkdirAll(o.out, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", o.out, err)
		}
	}

	var report strings.Builder
	fmt.Fprintf(&report, "=== Headless Survey Report ===\n")
	fmt.Fprintf(&report, "mode=%s runs=%d grid=%dx%d seed_base=%d seed_step=%d\n\n",
		mode, o.runs, o.width, o.height, o.seedBase, o.seedStep)

	all := make([]runStats, 0, o.runs)
	for i := 0; i < o.runs; i++ {
		seed := o.seedBase + int64(i)*o.seedStep
		rs, err := runSurvey(i+1, seed, mode, o)
		if err != nil {
			return fmt.Errorf("run %d: %w", i+1, err)
		}
		all = append(all, rs)
		report.WriteString(formatRun(rs))
		log.WithFields(logrus.Fields{"run": rs.runIndex, "seed": seed, "ticks": rs.ticks}).Debug("run finished")
		if o.verbose {
			log.WithField("run", rs.runIndex).Debug("session log:\n" + rs.log.Format())
		}

		if o.out != "" {
			if err := writeHeatmap(o.out, rs, log); err != nil {
				return err
			}
		}
	}
	report.WriteString(formatAggregate(all))

	text := report.String()
	fmt.Print(text)
	if o.copy {
		if err := game.CopyReport(text); err != nil {
			log.WithError(err).Warn("report not copied")
		} else {
			log.Info("report copied to clipboard")
		}
	}
	return nil
}

func runSurvey(runIndex int, seed int64, mode sim.Mode, o options) (runStats, error) {
	opts := []game.RunOption{
		game.WithMode(mode),
		game.WithGridSize(o.width, o.height),
		game.WithSeed(seed),
		game.WithVerbose(o.verbose),
	}
	if o.duration > 0 {
		opts = append(opts, game.WithDuration(o.duration))
	}
	hr, err := game.NewHeadlessRun(opts...)
	if err != nil {
		return runStats{}, err
	}
	ticks := hr.Run(o.maxTicks)
	if !hr.Session.Expired() {
		hr.Session.Expire()
	}
	return collectStats(runIndex, seed, hr.Session.Snapshot(), ticks, hr.Session.Log), nil
}

func collectStats(runIndex int, seed int64, res sim.Result, ticks int, sl *sim.SimLog) runStats {
	rs := runStats{
		runIndex:      runIndex,
		seed:          seed,
		result:        res,
		ticks:         ticks,
		peakMiss:      game.PeakMiss(res),
		firstPeakTick: -1,
		lastPeakTick:  -1,
		peakChanges:   sl.Count("signal", "peak"),
		blockedMoves:  sl.Count("move", "blocked"),
		log:           sl,
	}
	if e, ok := sl.First("signal", "peak"); ok {
		rs.firstPeakTick = e.Tick
	}
	if e, ok := sl.Last("signal", "peak"); ok {
		rs.lastPeakTick = e.Tick
	}
	return rs
}

func formatRun(rs runStats) string {
	var b strings.Builder
	res := rs.result
	fmt.Fprintf(&b, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Fprintf(&b, "ticks=%s coverage=%.1f%% visited=%s sources=%d\n",
		humanize.Comma(int64(rs.ticks)), 100*res.Coverage, humanize.Comma(int64(res.Visited)), len(res.Sources))
	fmt.Fprintf(&b, "peak=%s cps at (%d,%d) first_peak_tick=%d last_peak_tick=%d peak_changes=%d\n",
		humanize.Commaf(roundTo(res.Peak, 1)), res.PeakCell.X, res.PeakCell.Y, rs.firstPeakTick, rs.lastPeakTick, rs.peakChanges)
	fmt.Fprintf(&b, "peak_miss=%s blocked_moves=%d\n", missString(rs.peakMiss), rs.blockedMoves)
	b.WriteByte('\n')
	return b.String()
}

func formatAggregate(all []runStats) string {
	var (
		coverageSum float64
		peakSum     float64
		missSum     float64
		missRuns    int
		tickSum     int
		firstPeaks  []int
	)
	for _, rs := range all {
		coverageSum += rs.result.Coverage
		peakSum += rs.result.Peak
		tickSum += rs.ticks
		if rs.peakMiss >= 0 {
			missSum += rs.peakMiss
			missRuns++
		}
		if rs.firstPeakTick >= 0 {
			firstPeaks = append(firstPeaks, rs.firstPeakTick)
		}
	}
	n := len(all)

	var b strings.Builder
	b.WriteString("=== Aggregate ===\n")
	fmt.Fprintf(&b, "runs=%d\n", n)
	fmt.Fprintf(&b, "avg_coverage=%.1f%% avg_peak=%s cps avg_ticks=%.1f\n",
		100*avgFloat(coverageSum, n), humanize.Commaf(roundTo(avgFloat(peakSum, n), 1)), avg(tickSum, n))
	if missRuns > 0 {
		fmt.Fprintf(&b, "avg_peak_miss=%.1f cells (%d runs with sources)\n", missSum/float64(missRuns), missRuns)
	} else {
		b.WriteString("avg_peak_miss=n/a\n")
	}
	fmt.Fprintf(&b, "avg_first_peak_tick=%s\n", avgTickString(firstPeaks))
	return b.String()
}

func writeHeatmap(dir string, rs runStats, log *logrus.Logger) error {
	res := rs.result
	img, err := heatmap.Render(heatmap.Input{
		Width:    res.Width * 20,
		Height:   res.Height * 20,
		Counts:   res.Counts,
		Floors:   res.Floors,
		Walls:    res.Walls,
		MaxScale: heatmap.MaxScaleFor(res.Modality() == sim.Aerial),
		Sources:  sim.SourceCells(res.Sources),
		Aerial:   res.Modality() == sim.Aerial,
	})
	if err != nil {
		return fmt.Errorf("render run %d: %w", rs.runIndex, err)
	}
	name := fmt.Sprintf("run%02d_%s", rs.runIndex, heatmap.FileName(res.Modality().String()))
	path := filepath.Join(dir, name)
	n, err := heatmap.WritePNG(path, img)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"path": path, "size": humanize.Bytes(uint64(n))}).Info("heatmap saved")
	return nil
}

func roundTo(v float64, places int) float64 {
	p := 1.0
	for i := 0; i < places; i++ {
		p *= 10
	}
	return float64(int64(v*p+0.5)) / p
}

func missString(d float64) string {
	if d < 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", d)
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgFloat(sum float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return sum / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}
