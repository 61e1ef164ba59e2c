package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/Garsondee/Rad-Mapper/internal/sim"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func baseOptions() options {
	return options{runs: 2, mode: "ground", width: 40, height: 30, maxTicks: 600, seedBase: 42, seedStep: 1}
}

func TestParseMode(t *testing.T) {
	m, err := parseMode("Aerial")
	if err != nil || m != sim.ModeAerialMapping {
		t.Fatalf("parseMode(Aerial) = %v, %v", m, err)
	}
	m, err = parseMode("spectrum")
	if err != nil || m != sim.ModeSpectrum {
		t.Fatalf("parseMode(spectrum) = %v, %v", m, err)
	}
	if _, err := parseMode("radar"); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error for radar, got %v", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	o := baseOptions()
	o.width = 10
	if err := o.validate(); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error for a small grid, got %v", err)
	}
	o = baseOptions()
	o.runs = 0
	if err := o.validate(); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error for zero runs, got %v", err)
	}
	if err := baseOptions().validate(); err != nil {
		t.Fatalf("default options rejected: %v", err)
	}
}

func TestRunSurvey_Deterministic(t *testing.T) {
	o := baseOptions()
	a, err := runSurvey(1, 7, sim.ModeGroundMapping, o)
	if err != nil {
		t.Fatal(err)
	}
	b, err := runSurvey(1, 7, sim.ModeGroundMapping, o)
	if err != nil {
		t.Fatal(err)
	}
	if a.result.Peak != b.result.Peak || a.result.PeakCell != b.result.PeakCell || a.ticks != b.ticks {
		t.Fatalf("same seed diverged: %+v vs %+v", a.result.PeakCell, b.result.PeakCell)
	}
	// 35 s at 10 Hz.
	if a.ticks != 350 {
		t.Fatalf("ticks = %d, want 350", a.ticks)
	}
	if a.firstPeakTick < 1 || a.peakChanges < 1 {
		t.Fatalf("no peak events recorded: first=%d changes=%d", a.firstPeakTick, a.peakChanges)
	}
	if a.lastPeakTick < a.firstPeakTick {
		t.Fatalf("last peak tick %d before first %d", a.lastPeakTick, a.firstPeakTick)
	}
}

func TestRunSurvey_TeachingStopsAtTickCap(t *testing.T) {
	o := baseOptions()
	o.maxTicks = 120
	rs, err := runSurvey(1, 3, sim.ModeTeaching, o)
	if err != nil {
		t.Fatal(err)
	}
	if rs.ticks != 120 {
		t.Fatalf("ticks = %d, want the 120 cap", rs.ticks)
	}
	if rs.peakMiss < 0 {
		t.Fatal("teaching run has a source, peak miss must be known")
	}
}

func TestRunSurvey_SpectrumStopsAtTickCap(t *testing.T) {
	o := baseOptions()
	o.maxTicks = 90
	rs, err := runSurvey(1, 5, sim.ModeSpectrum, o)
	if err != nil {
		t.Fatal(err)
	}
	if rs.ticks != 90 {
		t.Fatalf("ticks = %d, want the 90 cap", rs.ticks)
	}
	if len(rs.result.Sources) != 5 {
		t.Fatalf("spectrum run has %d sources, want 5", len(rs.result.Sources))
	}
}

func TestFormatAggregate(t *testing.T) {
	all := []runStats{
		{result: sim.Result{Coverage: 0.5, Peak: 100}, ticks: 100, peakMiss: 2, firstPeakTick: 4},
		{result: sim.Result{Coverage: 0.25, Peak: 300}, ticks: 200, peakMiss: -1, firstPeakTick: -1},
	}
	got := formatAggregate(all)
	for _, want := range []string{
		"runs=2",
		"avg_coverage=37.5%",
		"avg_peak=200 cps",
		"avg_ticks=150.0",
		"avg_peak_miss=2.0 cells (1 runs with sources)",
		"avg_first_peak_tick=4.0",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("aggregate missing %q:\n%s", want, got)
		}
	}
}

func TestRun_WritesHeatmaps(t *testing.T) {
	o := baseOptions()
	o.runs = 1
	o.mode = "aerial"
	o.out = t.TempDir()

	stdout := os.Stdout
	devnull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer devnull.Close()
	os.Stdout = devnull
	defer func() { os.Stdout = stdout }()

	if err := run(o, quietLogger()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(o.out, "run01_heatmap_aerial.png")); err != nil {
		t.Fatalf("heatmap not written: %v", err)
	}
}
