// Package habit implements the habit ledger: per-habit completion logs,
// frequency-aware streak accounting, and the enrichment data the analytics
// reports are folded from.
package habit

import (
	"fmt"
	"time"

	"github.com/dvergara/daykeeper/internal/geo"
)

// FrequencyKind names how often a habit is meant to recur.
type FrequencyKind string

const (
	Daily   FrequencyKind = "daily"
	Weekly  FrequencyKind = "weekly"
	Monthly FrequencyKind = "monthly"
	Custom  FrequencyKind = "custom"
)

// Frequency is a habit's recurrence rule. EveryDays applies to Custom only.
type Frequency struct {
	Kind      FrequencyKind `json:"kind"`
	EveryDays int           `json:"every_days,omitempty"`
}

// Validate rejects unknown kinds and non-positive custom intervals.
func (f Frequency) Validate() error {
	switch f.Kind {
	case Daily, Weekly, Monthly:
		return nil
	case Custom:
		if f.EveryDays <= 0 {
			return fmt.Errorf("%w: custom interval must be positive, got %d", ErrInvalidFrequency, f.EveryDays)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, f.Kind)
	}
}

// TimeOfDay is a clock time with no date attached.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Habit is a tracked recurring activity.
//
// CurrentStreak, BestStreak, LastCompletion, Locations, and Conditions are
// derived fields: they are recomputed by CompleteHabit and never edited
// directly.
type Habit struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Frequency        Frequency        `json:"frequency"`
	StartDate        *time.Time       `json:"start_date,omitempty"`
	Completions      []time.Time      `json:"completions"`
	CurrentStreak    int              `json:"current_streak"`
	BestStreak       int              `json:"best_streak"`
	LastCompletion   *time.Time       `json:"last_completion,omitempty"`
	WeatherDependent bool             `json:"weather_dependent"`
	Reminder         *TimeOfDay       `json:"reminder,omitempty"`
	Locations        []geo.Coordinate `json:"locations,omitempty"`
	Conditions       []string         `json:"conditions,omitempty"`
}
