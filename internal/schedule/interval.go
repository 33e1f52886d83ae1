// Package schedule implements the context-aware daily schedule: non-overlapping
// event days, travel-time augmentation of located events, a weather-aware
// optimization pass, and rescheduling suggestions.
package schedule

import "time"

// Interval is a time range with Start strictly before End.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewInterval builds an Interval, rejecting end ≤ start with ErrInvalidInterval.
func NewInterval(start, end time.Time) (Interval, error) {
	if !end.After(start) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether the two intervals share any instant.
// Touching endpoints do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && iv.End.After(other.Start)
}

// Contains reports whether t falls within [Start, End], endpoints included.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && !t.After(iv.End)
}

// Duration returns the interval's length.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}
