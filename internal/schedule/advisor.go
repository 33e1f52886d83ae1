package schedule

import (
	"context"
	"time"

	"github.com/dvergara/daykeeper/internal/provider"
)

// ReasonWeather marks suggestions produced for rain-flagged events.
const ReasonWeather = "weather"

// Suggestion proposes a replacement slot for an event flagged for
// rescheduling.
type Suggestion struct {
	Event  Event    `json:"event"`
	Slot   Interval `json:"slot"`
	Reason string   `json:"reason"`
}

// SuggestRescheduling proposes a replacement slot for every event in the day
// flagged NeedsRescheduling.
//
// Candidates come from the day's open gaps. Outdoor located events drop
// candidates that overlap a forecast hour mentioning rain; when that forecast
// fetch fails the event is skipped rather than suggested blindly. The first
// suitable candidate wins. An event with no suitable candidate simply
// produces no suggestion; absence is not an error.
func (s *Store) SuggestRescheduling(ctx context.Context, date Date) ([]Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day, ok := s.days[date]
	if !ok {
		return nil, ErrDayNotFound
	}

	var suggestions []Suggestion
	for _, ev := range day.Events {
		if !ev.NeedsRescheduling {
			continue
		}

		slots := findAvailableTimeSlots(day, s.cfg, ev.Interval.Duration())

		if ev.Outdoor && ev.Location != nil && s.weather != nil {
			w, err := s.weather.Current(ctx, ev.Location.Coordinate)
			if err != nil {
				// Do not suggest blindly for this event.
				continue
			}
			slots = dropRainySlots(slots, w)
		}

		if len(slots) == 0 {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Event:  *ev,
			Slot:   slots[0],
			Reason: ReasonWeather,
		})
	}
	return suggestions, nil
}

// findAvailableTimeSlots walks the day's gaps in order and emits at most one
// duration-sized slot per gap, even when the gap could hold several. The
// cursor starts at the day window's start and jumps to each event's end; the
// trailing gap up to the window's end gets the same single-slot treatment.
func findAvailableTimeSlots(day *Day, cfg Config, duration time.Duration) []Interval {
	cursor := day.Date.At(cfg.DayStart)
	dayEnd := day.Date.At(cfg.DayEnd)

	var slots []Interval
	for _, ev := range day.Events {
		if ev.Interval.Start.Sub(cursor) >= duration {
			slots = append(slots, Interval{Start: cursor, End: cursor.Add(duration)})
		}
		cursor = ev.Interval.End
	}
	if dayEnd.Sub(cursor) >= duration {
		slots = append(slots, Interval{Start: cursor, End: cursor.Add(duration)})
	}
	return slots
}

// dropRainySlots removes candidates overlapping a forecast hour whose
// condition mentions rain. Each hourly entry covers the hour starting at its
// timestamp.
func dropRainySlots(slots []Interval, w provider.Weather) []Interval {
	var rainy []Interval
	for _, h := range w.Hourly {
		if provider.MentionsRain(h.Condition) {
			rainy = append(rainy, Interval{Start: h.Time, End: h.Time.Add(time.Hour)})
		}
	}

	out := slots[:0]
	for _, slot := range slots {
		blocked := false
		for _, hour := range rainy {
			if slot.Overlaps(hour) {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, slot)
		}
	}
	return out
}
