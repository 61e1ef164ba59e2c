package sim

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded session event.
type SimLogEntry struct {
	Tick     int
	Category string  // session, move, signal, coverage
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] signal    peak             1203 cps at (12,9)
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-9s %-16s %s", e.Tick, e.Category, e.Key, e.Value)
}

// SimLog collects structured events for one session. It is unbounded and
// machine-readable; the front-end keeps its own short ring for display.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-tick sample entries
// are also recorded.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// SetVerbose switches per-tick recording on or off from now on.
func (sl *SimLog) SetVerbose(v bool) {
	sl.verbose = v
}

// Add records a new entry.
func (sl *SimLog) Add(tick int, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// matches reports whether e is in category and has key. An empty argument
// matches anything.
func (e SimLogEntry) matches(category, key string) bool {
	return (category == "" || e.Category == category) && (key == "" || e.Key == key)
}

// Count is the number of entries for category/key.
func (sl *SimLog) Count(category, key string) int {
	n := 0
	for _, e := range sl.entries {
		if e.matches(category, key) {
			n++
		}
	}
	return n
}

// First returns the earliest entry for category/key.
func (sl *SimLog) First(category, key string) (SimLogEntry, bool) {
	for _, e := range sl.entries {
		if e.matches(category, key) {
			return e, true
		}
	}
	return SimLogEntry{}, false
}

// Last returns the latest entry for category/key.
func (sl *SimLog) Last(category, key string) (SimLogEntry, bool) {
	for i := len(sl.entries) - 1; i >= 0; i-- {
		if sl.entries[i].matches(category, key) {
			return sl.entries[i], true
		}
	}
	return SimLogEntry{}, false
}

// Format renders the whole log, one String() line per entry.
func (sl *SimLog) Format() string {
	lines := make([]string, len(sl.entries))
	for i, e := range sl.entries {
		lines[i] = e.String() + "\n"
	}
	return strings.Join(lines, "")
}
