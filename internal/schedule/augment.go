package schedule

import (
	"context"
	"fmt"
)

// augmentRoute folds travel time into a located event before it is stored.
//
// The current-location lookup is best effort: with no fix the event comes
// back unchanged. The directions query is required: its failure aborts the
// surrounding AddEvent with nothing inserted.
//
// On success the first route's first leg becomes the travel estimate, and the
// event's start shifts earlier by exactly that duration with the end left
// alone, so the activity window shrinks by the travel time. Preserve this
// arithmetic; downstream expects it.
func (s *Store) augmentRoute(ctx context.Context, ev Event) (Event, error) {
	origin, ok := s.currentLocation(ctx)
	if !ok {
		return ev, nil
	}
	if s.routes == nil {
		return ev, nil
	}

	dirs, err := s.routes.Directions(ctx, origin, ev.Location.Coordinate)
	if err != nil {
		return Event{}, fmt.Errorf("schedule: route lookup for %q: %w", ev.Title, err)
	}

	leg, ok := dirs.FirstLeg()
	if !ok {
		return ev, nil
	}

	ev.Route = &RouteInfo{EstimatedDuration: leg.Duration}
	ev.Interval.Start = ev.Interval.Start.Add(-leg.Duration)
	return ev, nil
}
