package game

import (
	"fmt"
	"math"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"

	"github.com/Garsondee/Rad-Mapper/internal/sim"
)

// reportEventLimit caps how many log lines a session report quotes.
const reportEventLimit = 25

// PeakMiss is the Euclidean distance in cells from the result's peak reading
// to the nearest source, or -1 when there are no sources.
func PeakMiss(res sim.Result) float64 {
	best := -1.0
	for _, s := range res.Sources {
		dx := float64(s.X - res.PeakCell.X)
		dy := float64(s.Y - res.PeakCell.Y)
		d := math.Hypot(dx, dy)
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

// FormatReport renders a plain-text summary of a finished session: headline
// numbers, the hidden sources and the most recent log events.
func FormatReport(res sim.Result, entries []sim.SimLogEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- Rad Mapper session report ---\n")
	fmt.Fprintf(&b, "session=%s mode=%s grid=%dx%d ticks=%s\n",
		res.SessionID, res.Mode, res.Width, res.Height, humanize.Comma(int64(res.Ticks)))
	fmt.Fprintf(&b, "coverage=%s%% (%s cells) peak=%s cps at (%d,%d)\n",
		humanize.FormatFloat("#,###.#", 100*res.Coverage),
		humanize.Comma(int64(res.Visited)),
		humanize.Commaf(math.Round(res.Peak)),
		res.PeakCell.X, res.PeakCell.Y)
	if miss := PeakMiss(res); miss >= 0 {
		fmt.Fprintf(&b, "peak-to-source distance=%.1f cells\n", miss)
	}

	b.WriteString("sources:\n")
	if len(res.Sources) == 0 {
		b.WriteString("  (none)\n")
	}
	for i, s := range res.Sources {
		tag := ""
		if s.Isotope != sim.IsotopeUnknown {
			tag = " " + s.Isotope.String()
		}
		fmt.Fprintf(&b, "  %d) (%d,%d)%s\n", i+1, s.X, s.Y, tag)
	}

	if len(entries) > 0 {
		if len(entries) > reportEventLimit {
			fmt.Fprintf(&b, "events (last %d of %s):\n", reportEventLimit, humanize.Comma(int64(len(entries))))
			entries = entries[len(entries)-reportEventLimit:]
		} else {
			b.WriteString("events:\n")
		}
		for _, e := range entries {
			b.WriteString("  ")
			b.WriteString(e.String())
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// CopyReport places text on the system clipboard.
func CopyReport(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard unsupported on this platform")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("copy report: %w", err)
	}
	return nil
}
