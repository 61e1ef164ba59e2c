package sim

import (
	"fmt"
	"time"
)

// Settings are the player-tunable knobs from the settings screen.
type Settings struct {
	GroundSeconds int
	AerialSeconds int
	MaxSources    int
	CellSize      int // pixels per grid cell in the game window
}

// SettingField selects one Settings value for Adjust.
type SettingField uint8

const (
	FieldGroundSeconds SettingField = iota
	FieldAerialSeconds
	FieldMaxSources
	FieldCellSize
	settingFieldCount
)

// SettingFields lists the fields in settings-screen order.
var SettingFields = []SettingField{FieldGroundSeconds, FieldAerialSeconds, FieldMaxSources, FieldCellSize}

func (f SettingField) String() string {
	switch f {
	case FieldGroundSeconds:
		return "Ground Mapping Time"
	case FieldAerialSeconds:
		return "Aerial Mapping Time"
	case FieldMaxSources:
		return "Max Sources"
	case FieldCellSize:
		return "Cell Size"
	default:
		return "unknown"
	}
}

type settingRange struct {
	lo, hi, step int
}

var settingRanges = [settingFieldCount]settingRange{
	FieldGroundSeconds: {10, 120, 5},
	FieldAerialSeconds: {10, 120, 5},
	FieldMaxSources:    {1, 5, 1},
	FieldCellSize:      {8, 64, 2},
}

// DefaultSettings returns the out-of-the-box configuration.
func DefaultSettings() Settings {
	return Settings{
		GroundSeconds: 35,
		AerialSeconds: 20,
		MaxSources:    3,
		CellSize:      30,
	}
}

func (s *Settings) field(f SettingField) *int {
	switch f {
	case FieldGroundSeconds:
		return &s.GroundSeconds
	case FieldAerialSeconds:
		return &s.AerialSeconds
	case FieldMaxSources:
		return &s.MaxSources
	case FieldCellSize:
		return &s.CellSize
	default:
		return nil
	}
}

// Get returns the current value of f.
func (s Settings) Get(f SettingField) int {
	if p := s.field(f); p != nil {
		return *p
	}
	return 0
}

// Adjust moves f by delta steps, clamped to the field's range. It reports
// whether the value changed.
func (s *Settings) Adjust(f SettingField, delta int) bool {
	p := s.field(f)
	if p == nil {
		return false
	}
	r := settingRanges[f]
	next := min(r.hi, max(r.lo, *p+delta*r.step))
	if next == *p {
		return false
	}
	*p = next
	return true
}

// Validate checks every field against its range.
func (s Settings) Validate() error {
	for _, f := range SettingFields {
		v, r := s.Get(f), settingRanges[f]
		if v < r.lo || v > r.hi {
			return fmt.Errorf("%s = %d, want %d..%d: %w", f, v, r.lo, r.hi, ErrSettingOutOfRange)
		}
	}
	return nil
}

// Duration returns the countdown length for a mapping mode.
func (s Settings) Duration(m Mode) time.Duration {
	switch m {
	case ModeGroundMapping:
		return time.Duration(s.GroundSeconds) * time.Second
	case ModeAerialMapping:
		return time.Duration(s.AerialSeconds) * time.Second
	default:
		return untimedDuration
	}
}
