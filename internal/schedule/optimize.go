package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/dvergara/daykeeper/internal/provider"
)

// travelBufferFactor pads the routed leg duration when rebalancing adjacent
// events (20% safety margin).
const travelBufferFactor = 1.2

// Optimize runs the maintenance pass over a stored day.
//
// Step A flags outdoor events for rescheduling when the current-location
// forecast calls for rain. The location fix is best effort (no fix, no
// flagging); the weather fetch itself is required and its failure aborts the
// whole call before anything is persisted.
//
// Step B walks adjacent pairs once, front to back, and pushes the later event
// out so it starts no earlier than the previous event's end plus a padded
// travel buffer. Durations are preserved, not truncated. A shift to events[i+1]
// is visible when the pass reaches the (i+1, i+2) pair, but earlier pairs are
// never re-checked, and pairs where either side lacks a location are skipped
// entirely. Not a fixpoint; a late shift can leave an earlier pair tight.
func (s *Store) Optimize(ctx context.Context, date Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	day, ok := s.days[date]
	if !ok {
		return ErrDayNotFound
	}

	// Step A: rain flagging.
	if loc, ok := s.currentLocation(ctx); ok && s.weather != nil {
		w, err := s.weather.Current(ctx, loc)
		if err != nil {
			return fmt.Errorf("schedule: weather lookup: %w", err)
		}
		if provider.MentionsRain(w.Condition) {
			for _, ev := range day.Events {
				if ev.Outdoor {
					ev.NeedsRescheduling = true
				}
			}
		}
	}

	// Step B: travel buffer cascade.
	for i := 0; i+1 < len(day.Events); i++ {
		cur, next := day.Events[i], day.Events[i+1]
		if cur.Location == nil || next.Location == nil {
			continue
		}
		if s.routes == nil {
			continue
		}

		dirs, err := s.routes.Directions(ctx, cur.Location.Coordinate, next.Location.Coordinate)
		if err != nil {
			return fmt.Errorf("schedule: route lookup between %q and %q: %w", cur.Title, next.Title, err)
		}
		leg, ok := dirs.FirstLeg()
		if !ok {
			continue
		}

		buffer := time.Duration(float64(leg.Duration) * travelBufferFactor)
		earliestStart := cur.Interval.End.Add(buffer)
		if next.Interval.Start.Before(earliestStart) {
			d := next.Interval.Duration()
			next.Interval.Start = earliestStart
			next.Interval.End = earliestStart.Add(d)
		}
	}

	return s.saveLocked(day)
}
