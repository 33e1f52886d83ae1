package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dvergara/daykeeper/internal/geo"
	"github.com/dvergara/daykeeper/internal/provider"
)

// LocationProvider yields the device's current position, best effort.
// Absence (false) is not an error anywhere it is consumed.
type LocationProvider interface {
	Current(ctx context.Context) (geo.Coordinate, bool)
}

// RouteProvider answers directions between two coordinates. Required call:
// failure propagates to the operation that needed it.
type RouteProvider interface {
	Directions(ctx context.Context, from, to geo.Coordinate) (provider.Directions, error)
}

// WeatherProvider answers current conditions plus hourly forecast at a
// coordinate. Required where the optimizer and advisor consume it.
type WeatherProvider interface {
	Current(ctx context.Context, at geo.Coordinate) (provider.Weather, error)
}

// DayStore is the durable save/load collaborator. In-memory state stays the
// source of truth during the process lifetime; days are written through after
// every mutation and reloaded at startup.
type DayStore interface {
	SaveDay(day *Day) error
}

// Config holds the schedule store's tunables.
type Config struct {
	// DayStart and DayEnd bound the gap search as offsets from local
	// midnight. The defaults cover the whole day.
	DayStart time.Duration
	DayEnd   time.Duration
}

// DefaultConfig returns a whole-day gap window.
func DefaultConfig() Config {
	return Config{DayStart: 0, DayEnd: 24 * time.Hour}
}

// Store owns all schedule days. Every operation takes the one mutex for its
// full duration, provider calls included: one writer at a time, and a slow
// routing or weather call blocks queued operations on this instance. Timeout
// policy is inherited from the providers' own contracts.
type Store struct {
	mu   sync.Mutex
	days map[Date]*Day

	cfg      Config
	location LocationProvider
	routes   RouteProvider
	weather  WeatherProvider
	persist  DayStore
}

// NewStore creates a schedule store. The location provider may be nil
// (treated as "no fix available"); weather may be nil when no optimizer or
// advisor pass will run; persist may be nil for a purely in-memory store.
func NewStore(cfg Config, location LocationProvider, routes RouteProvider, weather WeatherProvider, persist DayStore) *Store {
	if cfg.DayEnd == 0 {
		cfg = DefaultConfig()
	}
	return &Store{
		days:     make(map[Date]*Day),
		cfg:      cfg,
		location: location,
		routes:   routes,
		weather:  weather,
		persist:  persist,
	}
}

// Restore seeds the store with previously persisted days. Meant for startup
// rehydration only; it does not write through.
func (s *Store) Restore(days []*Day) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range days {
		s.days[d.Date] = d
	}
}

// CreateDay returns the day for the given date, creating an empty one if
// none exists yet. Idempotent.
func (s *Store) CreateDay(date Date) Day {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotDay(s.dayLocked(date))
}

// Day returns a snapshot of the stored day, or ErrDayNotFound.
func (s *Store) Day(date Date) (Day, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.days[date]
	if !ok {
		return Day{}, ErrDayNotFound
	}
	return snapshotDay(d), nil
}

// AddEvent inserts an event into the given date's day.
//
// The conflict check runs against the interval as submitted; route
// augmentation afterwards may shift the start earlier, and that shifted
// interval is what gets stored. An augmented event can therefore overlap a
// neighbor undetected. Downstream consumers expect exactly this ordering;
// do not reorder the steps.
func (s *Store) AddEvent(ctx context.Context, date Date, ev Event) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !ev.Interval.End.After(ev.Interval.Start) {
		return Event{}, ErrInvalidInterval
	}

	day := s.dayLocked(date)
	for _, existing := range day.Events {
		if existing.Interval.Overlaps(ev.Interval) {
			return Event{}, &ConflictError{Conflicting: *existing}
		}
	}

	if ev.Location != nil {
		augmented, err := s.augmentRoute(ctx, ev)
		if err != nil {
			return Event{}, err
		}
		ev = augmented
	}

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	stored := ev
	day.Events = append(day.Events, &stored)
	sortEventsLocked(day)

	if err := s.saveLocked(day); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// dayLocked returns the day for date, lazily creating it. Caller holds s.mu.
func (s *Store) dayLocked(date Date) *Day {
	d, ok := s.days[date]
	if !ok {
		d = &Day{Date: date}
		s.days[date] = d
	}
	return d
}

// sortEventsLocked re-sorts a day ascending by start. The sort is stable so
// ties keep their insertion order.
func sortEventsLocked(day *Day) {
	sort.SliceStable(day.Events, func(i, j int) bool {
		return day.Events[i].Interval.Start.Before(day.Events[j].Interval.Start)
	})
}

func (s *Store) saveLocked(day *Day) error {
	if s.persist == nil {
		return nil
	}
	if err := s.persist.SaveDay(day); err != nil {
		return fmt.Errorf("schedule: save day %s: %w", day.Date, err)
	}
	return nil
}

// currentLocation wraps the best-effort location lookup; a nil provider
// behaves like "no fix".
func (s *Store) currentLocation(ctx context.Context) (geo.Coordinate, bool) {
	if s.location == nil {
		return geo.Coordinate{}, false
	}
	return s.location.Current(ctx)
}

func snapshotDay(d *Day) Day {
	out := Day{Date: d.Date, Events: make([]*Event, 0, len(d.Events))}
	for _, ev := range d.Events {
		copied := *ev
		out.Events = append(out.Events, &copied)
	}
	return out
}
