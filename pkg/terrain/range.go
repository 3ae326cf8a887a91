package terrain

import "math"

// Range is the normalization domain of a grid.
type Range struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Span returns End - Start.
func (r Range) Span() float64 { return r.End - r.Start }

// Valid reports whether Start < End.
func (r Range) Valid() bool { return r.Start < r.End }

// Contains reports whether v lies in the closed interval [Start, End].
func (r Range) Contains(v float64) bool { return v >= r.Start && v <= r.End }

// Tracker accumulates the minimum and maximum of the values it observes.
// The zero value is ready to use.
type Tracker struct {
	min, max float64
	n        int
}

// Observe extends the tracked interval to include v. NaN is ignored.
func (t *Tracker) Observe(v float64) {
	if math.IsNaN(v) {
		return
	}
	if t.n == 0 {
		t.min, t.max = v, v
	} else {
		t.min = min(t.min, v)
		t.max = max(t.max, v)
	}
	t.n++
}

// Count returns the number of values observed.
func (t *Tracker) Count() int { return t.n }

// Range returns the observed interval, or the zero Range if nothing was observed.
func (t *Tracker) Range() Range {
	if t.n == 0 {
		return Range{}
	}
	return Range{Start: t.min, End: t.max}
}
