package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Rad-Mapper/internal/sim"
)

const (
	logPanelWidth = 300
	logMaxEntries = 40
	logLineHeight = 14
)

// EventEntry is a single line in the on-screen event panel.
type EventEntry struct {
	Tick     int
	Category string
	Message  string
}

// EventLog is a ring buffer of recent session events rendered on-screen.
type EventLog struct {
	entries []EventEntry
	head    int
	count   int
	synced  int // SimLog entries already copied in
}

// NewEventLog creates an event log with a fixed capacity.
func NewEventLog() *EventLog {
	return &EventLog{
		entries: make([]EventEntry, logMaxEntries),
	}
}

// Add appends an entry, overwriting the oldest when full.
func (el *EventLog) Add(tick int, category, msg string) {
	el.entries[el.head] = EventEntry{
		Tick:     tick,
		Category: category,
		Message:  msg,
	}
	el.head = (el.head + 1) % logMaxEntries
	if el.count < logMaxEntries {
		el.count++
	}
}

// Recent returns entries in chronological order (oldest first).
func (el *EventLog) Recent() []EventEntry {
	result := make([]EventEntry, el.count)
	for i := 0; i < el.count; i++ {
		idx := (el.head - el.count + i + logMaxEntries) % logMaxEntries
		result[i] = el.entries[idx]
	}
	return result
}

// Sync copies SimLog entries added since the last call and returns them.
func (el *EventLog) Sync(sl *sim.SimLog) []sim.SimLogEntry {
	all := sl.Entries()
	if el.synced > len(all) {
		el.synced = 0
	}
	fresh := all[el.synced:]
	for _, e := range fresh {
		el.Add(e.Tick, e.Category, e.Key+" "+e.Value)
	}
	el.synced = len(all)
	return fresh
}

// Reset empties the log for a new session.
func (el *EventLog) Reset() {
	el.head, el.count, el.synced = 0, 0, 0
}

var categoryColors = map[string]color.RGBA{
	"session":  {R: 90, G: 170, B: 255, A: 255},
	"signal":   {R: 255, G: 200, B: 0, A: 255},
	"coverage": {R: 0, G: 220, B: 90, A: 255},
	"spectrum": {R: 255, G: 105, B: 180, A: 255},
}

// Draw renders the panel at panelX spanning panelH pixels.
func (el *EventLog) Draw(screen *ebiten.Image, panelX, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), float32(panelH), color.RGBA{R: 10, G: 10, B: 14, A: 230}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 60, G: 60, B: 80, A: 255}, false)
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), 16, color.RGBA{R: 24, G: 24, B: 36, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "EVENTS", panelX+8, 0)

	entries := el.Recent()
	maxVisible := (panelH - 24) / logLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}

	y := 20
	for i, e := range entries {
		if i >= len(entries)-3 {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(logPanelWidth-4), float32(logLineHeight), color.RGBA{R: 30, G: 30, B: 46, A: 160}, false)
		}
		dot, ok := categoryColors[e.Category]
		if !ok {
			dot = color.RGBA{R: 160, G: 160, B: 160, A: 255}
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+4), 3, 5, dot, false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%4d %s", e.Tick, e.Message), panelX+12, y-1)
		y += logLineHeight
	}
}
