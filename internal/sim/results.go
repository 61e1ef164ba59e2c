package sim

import "github.com/google/uuid"

// Result is the frozen state of a finished session, kept for the comparison
// view.
type Result struct {
	SessionID uuid.UUID
	Mode      Mode
	Width     int
	Height    int
	Counts    [][]float64
	Walls     CellSet
	Floors    CellSet
	Sources   []Source
	Peak      float64
	PeakCell  Cell
	Coverage  float64
	Visited   int
	Ticks     int
}

// Modality is the sensing modality the result was recorded with.
func (r Result) Modality() Modality { return r.Mode.Modality() }

// ResultCache keeps the last finished result per modality.
type ResultCache struct {
	last map[Modality]Result
}

// NewResultCache returns an empty cache.
func NewResultCache() *ResultCache {
	return &ResultCache{last: make(map[Modality]Result)}
}

// Store replaces the cached result for r's modality.
func (c *ResultCache) Store(r Result) {
	c.last[r.Modality()] = r
}

// Get returns the cached result for m, if any.
func (c *ResultCache) Get(m Modality) (Result, bool) {
	r, ok := c.last[m]
	return r, ok
}

// Complete reports whether both a ground and an aerial result are cached.
func (c *ResultCache) Complete() bool {
	_, g := c.last[Ground]
	_, a := c.last[Aerial]
	return g && a
}

// Clear drops every cached result.
func (c *ResultCache) Clear() {
	clear(c.last)
}
