package habit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dvergara/daykeeper/internal/analytics"
	"github.com/dvergara/daykeeper/internal/geo"
	"github.com/dvergara/daykeeper/internal/provider"
)

// timeNow is a package-level variable for testability.
// Tests can replace this to control time in assertions.
var timeNow = time.Now

// LocationProvider yields the device's current position, best effort.
type LocationProvider interface {
	Current(ctx context.Context) (geo.Coordinate, bool)
}

// WeatherProvider answers current conditions at a coordinate.
type WeatherProvider interface {
	Current(ctx context.Context, at geo.Coordinate) (provider.Weather, error)
}

// ReminderScheduler registers a recurring reminder for a habit. Delivery is
// fire and forget; scheduling failures are swallowed by the ledger.
type ReminderScheduler interface {
	Schedule(id, title, body string, at TimeOfDay, repeats bool) error
}

// HabitStore is the durable save/load collaborator for habits.
type HabitStore interface {
	SaveHabit(h *Habit) error
}

// Ledger owns all habits. Operations serialize on one mutex held for their
// full duration, enrichment calls included: two concurrent completions of
// the same habit never interleave their read-modify-write.
type Ledger struct {
	mu     sync.Mutex
	habits map[string]*Habit

	location  LocationProvider
	weather   WeatherProvider
	reminders ReminderScheduler
	persist   HabitStore
}

// NewLedger creates a habit ledger. Any collaborator may be nil: a nil
// location or weather provider degrades enrichment to "absent", a nil
// reminder scheduler skips reminder registration, a nil store skips
// persistence.
func NewLedger(location LocationProvider, weather WeatherProvider, reminders ReminderScheduler, persist HabitStore) *Ledger {
	return &Ledger{
		habits:    make(map[string]*Habit),
		location:  location,
		weather:   weather,
		reminders: reminders,
		persist:   persist,
	}
}

// Restore seeds the ledger with previously persisted habits. Meant for
// startup rehydration only; it does not write through or re-register
// reminders; the caller does that explicitly if wanted.
func (l *Ledger) Restore(habits []*Habit) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, h := range habits {
		l.habits[h.ID] = h
	}
}

// CreateHabit registers a habit, persists it, and, when a reminder time is
// set, schedules the reminder best effort (scheduling failure is not
// surfaced).
func (l *Ledger) CreateHabit(h Habit) (Habit, error) {
	if err := h.Frequency.Validate(); err != nil {
		return Habit{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if h.ID == "" {
		h.ID = uuid.NewString()
	} else if _, ok := l.habits[h.ID]; ok {
		return Habit{}, fmt.Errorf("%w: %q", ErrHabitExists, h.ID)
	}

	stored := h
	l.habits[h.ID] = &stored

	if err := l.saveLocked(&stored); err != nil {
		delete(l.habits, h.ID)
		return Habit{}, err
	}

	if h.Reminder != nil && l.reminders != nil {
		body := fmt.Sprintf("Time for %s", h.Title)
		_ = l.reminders.Schedule(h.ID, h.Title, body, *h.Reminder, true)
	}
	return h, nil
}

// CompleteHabit records a completion at the given instant (zero means now).
//
// The streak step and the completion append always happen; the location and
// weather enrichment afterwards is best effort and any failure there is
// swallowed; the completion has already succeeded and is not rolled back.
func (l *Ledger) CompleteHabit(ctx context.Context, id string, at time.Time) (Habit, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	h, ok := l.habits[id]
	if !ok {
		return Habit{}, fmt.Errorf("%w: %q", ErrHabitNotFound, id)
	}
	if at.IsZero() {
		at = timeNow()
	}

	if continuesStreak(h.LastCompletion, at, h.Frequency) {
		h.CurrentStreak++
		if h.CurrentStreak > h.BestStreak {
			h.BestStreak = h.CurrentStreak
		}
	} else {
		h.CurrentStreak = 1
	}

	h.Completions = append(h.Completions, at)
	last := at
	h.LastCompletion = &last

	// Best-effort enrichment. Absence of a fix, or a weather failure,
	// leaves the completion untouched.
	if loc, ok := l.currentLocation(ctx); ok {
		h.Locations = append(h.Locations, loc)
		if h.WeatherDependent && l.weather != nil {
			if w, err := l.weather.Current(ctx, loc); err == nil {
				h.Conditions = append(h.Conditions, w.Condition)
			}
		}
	}

	if err := l.saveLocked(h); err != nil {
		return Habit{}, err
	}
	return *h, nil
}

// Habit returns a copy of the stored habit.
func (l *Ledger) Habit(id string) (Habit, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.habits[id]
	if !ok {
		return Habit{}, fmt.Errorf("%w: %q", ErrHabitNotFound, id)
	}
	return *h, nil
}

// Analytics folds the habit's completion log into a report: totals, streaks,
// completion rate, the most common completion times, the top location
// clusters, and the weather-condition histogram. Read only.
func (l *Ledger) Analytics(id string) (analytics.Report, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	h, ok := l.habits[id]
	if !ok {
		return analytics.Report{}, fmt.Errorf("%w: %q", ErrHabitNotFound, id)
	}

	report := analytics.Report{
		TotalCompletions: len(h.Completions),
		CurrentStreak:    h.CurrentStreak,
		BestStreak:       h.BestStreak,
		CommonTimes:      analytics.TopCompletionTimes(h.Completions, 3),
		CommonLocations:  analytics.ClusterLocations(h.Locations),
		WeatherPatterns:  analytics.ConditionHistogram(h.Conditions),
	}

	if h.StartDate != nil {
		if days := calendarDayGap(*h.StartDate, timeNow()); days > 0 {
			report.CompletionRate = float64(len(h.Completions)) / float64(days)
		}
	}
	return report, nil
}

func (l *Ledger) saveLocked(h *Habit) error {
	if l.persist == nil {
		return nil
	}
	if err := l.persist.SaveHabit(h); err != nil {
		return fmt.Errorf("habit: save %q: %w", h.ID, err)
	}
	return nil
}

func (l *Ledger) currentLocation(ctx context.Context) (geo.Coordinate, bool) {
	if l.location == nil {
		return geo.Coordinate{}, false
	}
	return l.location.Current(ctx)
}
