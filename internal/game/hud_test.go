package game

import (
	"strings"
	"testing"
	"time"

	"github.com/Garsondee/Rad-Mapper/internal/sim"
)

func newHUDSession(t *testing.T, mode sim.Mode, sources []sim.Source) *sim.Session {
	t.Helper()
	s, err := sim.NewSession(sim.SessionConfig{
		Mode: mode, Width: 10, Height: 10, Sources: sources,
		Start: sim.Cell{X: 5, Y: 5}, Duration: 10 * time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestHUDLines_MappingShowsBatteryCoveragePeak(t *testing.T) {
	s := newHUDSession(t, sim.ModeGroundMapping, nil)
	r := s.Step(sim.DirNone, 9*time.Second)
	lines := hudLines(s, r)
	if len(lines) != 4 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[1].text != "Battery: 10%" || lines[1].col != colorBatteryLow {
		t.Fatalf("battery line = %+v", lines[1])
	}
	if !strings.HasPrefix(lines[3].text, "Peak CPS: ") {
		t.Fatalf("peak line = %q", lines[3].text)
	}
}

func TestHUDLines_Spectrum(t *testing.T) {
	s := newHUDSession(t, sim.ModeSpectrum, []sim.Source{{Cell: sim.Cell{X: 5, Y: 6}, Isotope: sim.Cs137}})
	s.MarkMeasured(0)
	lines := hudLines(s, sim.Reading{CPS: 1234.6})
	if lines[0].text != "CPS: 1,235" {
		t.Fatalf("cps line = %q", lines[0].text)
	}
	if lines[1].text != "Sources measured: 1/1" {
		t.Fatalf("score line = %q", lines[1].text)
	}
}

func TestModeHint_NearSource(t *testing.T) {
	s := newHUDSession(t, sim.ModeSpectrum, []sim.Source{{Cell: sim.Cell{X: 6, Y: 6}, Isotope: sim.Co60}})
	if !strings.Contains(modeHint(s), "in reach") {
		t.Fatalf("hint = %q", modeHint(s))
	}
	s.MarkMeasured(0)
	if strings.Contains(modeHint(s), "in reach") {
		t.Fatal("measured source still prompted")
	}
}

func TestMeasurementText(t *testing.T) {
	got := measurementText(sim.Source{Isotope: sim.Co60})
	if got != "Measured Co-60: peaks 1,173, 1,332 keV" {
		t.Fatalf("text = %q", got)
	}
}
