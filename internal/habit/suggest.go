package habit

import (
	"context"
	"time"

	"github.com/dvergara/daykeeper/internal/analytics"
	"github.com/dvergara/daykeeper/internal/provider"
)

// SuggestOptimalTime proposes an instant today for completing the habit.
//
// Candidates are the habit's completion-time buckets, tried in descending
// frequency. For a weather-dependent habit with a current location fix, a
// candidate whose forecast hour mentions rain is skipped; when the forecast
// itself cannot be fetched the candidates pass unfiltered (the lookup is
// best effort here, unlike the advisor's required fetch). With no completion
// history the reminder time is the fallback; with neither, ErrNoSuggestion.
func (l *Ledger) SuggestOptimalTime(ctx context.Context, id string) (time.Time, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	h, ok := l.habits[id]
	if !ok {
		return time.Time{}, ErrHabitNotFound
	}

	now := timeNow()
	todayAt := func(at TimeOfDay) time.Time {
		return time.Date(now.Year(), now.Month(), now.Day(), at.Hour, at.Minute, 0, 0, now.Location())
	}

	rainy := l.rainyHoursToday(ctx, h, now)

	for _, c := range analytics.TopCompletionTimes(h.Completions, 0) {
		candidate := todayAt(TimeOfDay{Hour: c.Hour, Minute: c.Minute})
		if rainy[candidate.Hour()] {
			continue
		}
		return candidate, nil
	}

	if h.Reminder != nil {
		candidate := todayAt(*h.Reminder)
		if !rainy[candidate.Hour()] {
			return candidate, nil
		}
	}
	return time.Time{}, ErrNoSuggestion
}

// rainyHoursToday returns the set of today's hours whose forecast mentions
// rain, for weather-dependent habits only. Best effort: no fix or a failed
// fetch yields an empty set.
func (l *Ledger) rainyHoursToday(ctx context.Context, h *Habit, now time.Time) map[int]bool {
	rainy := make(map[int]bool)
	if !h.WeatherDependent || l.weather == nil {
		return rainy
	}
	loc, ok := l.currentLocation(ctx)
	if !ok {
		return rainy
	}
	w, err := l.weather.Current(ctx, loc)
	if err != nil {
		return rainy
	}

	for _, entry := range w.Hourly {
		if entry.Time.Year() == now.Year() && entry.Time.YearDay() == now.YearDay() && provider.MentionsRain(entry.Condition) {
			rainy[entry.Time.Hour()] = true
		}
	}
	return rainy
}
