package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvergara/daykeeper/internal/geo"
	"github.com/dvergara/daykeeper/internal/provider"
)

func outdoorEvent(title string, start, end time.Time) Event {
	ev := plainEvent(title, start, end)
	ev.Outdoor = true
	return ev
}

func fix() stubLocation {
	return stubLocation{coord: geo.Coordinate{Lat: 40.7, Lon: -74.0}, ok: true}
}

func TestOptimize_DayNotFound(t *testing.T) {
	s := bareStore()
	if err := s.Optimize(context.Background(), testDate); !errors.Is(err, ErrDayNotFound) {
		t.Errorf("err = %v, want ErrDayNotFound", err)
	}
}

func TestOptimize_RainFlagsOutdoorEventsOnly(t *testing.T) {
	weather := &stubWeather{weather: provider.Weather{Condition: "Rain"}}
	s := NewStore(DefaultConfig(), fix(), nil, weather, nil)
	ctx := context.Background()

	if _, err := s.AddEvent(ctx, testDate, outdoorEvent("run", at(7, 0), at(8, 0))); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, err := s.AddEvent(ctx, testDate, plainEvent("desk work", at(9, 0), at(10, 0))); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if err := s.Optimize(ctx, testDate); err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	day, _ := s.Day(testDate)
	for _, ev := range day.Events {
		want := ev.Outdoor
		if ev.NeedsRescheduling != want {
			t.Errorf("%q NeedsRescheduling = %v, want %v", ev.Title, ev.NeedsRescheduling, want)
		}
	}
	if weather.calls != 1 {
		t.Errorf("weather calls = %d, want exactly 1", weather.calls)
	}
}

func TestOptimize_RainMatchIsSubstringCaseInsensitive(t *testing.T) {
	tests := []struct {
		condition string
		flagged   bool
	}{
		{"Rain", true},
		{"Light rain", true},
		{"RAIN", true},
		{"Drizzle", false},
		{"Clear", false},
	}
	for _, tt := range tests {
		t.Run(tt.condition, func(t *testing.T) {
			weather := &stubWeather{weather: provider.Weather{Condition: tt.condition}}
			s := NewStore(DefaultConfig(), fix(), nil, weather, nil)
			ctx := context.Background()
			if _, err := s.AddEvent(ctx, testDate, outdoorEvent("run", at(7, 0), at(8, 0))); err != nil {
				t.Fatalf("insert failed: %v", err)
			}
			if err := s.Optimize(ctx, testDate); err != nil {
				t.Fatalf("Optimize failed: %v", err)
			}
			day, _ := s.Day(testDate)
			if day.Events[0].NeedsRescheduling != tt.flagged {
				t.Errorf("flagged = %v, want %v", day.Events[0].NeedsRescheduling, tt.flagged)
			}
		})
	}
}

func TestOptimize_WeatherFailureAbortsBeforeSave(t *testing.T) {
	weather := &stubWeather{err: errors.New("service down")}
	rec := &saveRecorder{}
	s := NewStore(DefaultConfig(), fix(), nil, weather, rec)
	ctx := context.Background()

	if _, err := s.AddEvent(ctx, testDate, outdoorEvent("run", at(7, 0), at(8, 0))); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	rec.saves = 0

	if err := s.Optimize(ctx, testDate); err == nil {
		t.Fatal("expected weather failure to abort Optimize")
	}
	if rec.saves != 0 {
		t.Errorf("saves = %d, want 0 after aborted pass", rec.saves)
	}
}

func TestOptimize_NoLocationFixSkipsWeatherStep(t *testing.T) {
	weather := &stubWeather{weather: provider.Weather{Condition: "Rain"}}
	s := NewStore(DefaultConfig(), stubLocation{ok: false}, nil, weather, nil)
	ctx := context.Background()

	if _, err := s.AddEvent(ctx, testDate, outdoorEvent("run", at(7, 0), at(8, 0))); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := s.Optimize(ctx, testDate); err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if weather.calls != 0 {
		t.Errorf("weather calls = %d, want 0 without a fix", weather.calls)
	}
	day, _ := s.Day(testDate)
	if day.Events[0].NeedsRescheduling {
		t.Error("event flagged without a weather fetch")
	}
}

// --- Travel buffer cascade ---

func locatedAt(title string, start, end time.Time, lat, lon float64) Event {
	ev := plainEvent(title, start, end)
	ev.Location = &Location{Coordinate: geo.Coordinate{Lat: lat, Lon: lon}}
	return ev
}

// seedDay inserts events without any providers attached so intervals land
// exactly as written, then returns a store that shares the same day map.
func seedDay(t *testing.T, s *Store, events ...Event) {
	t.Helper()
	ctx := context.Background()
	for _, ev := range events {
		if _, err := s.AddEvent(ctx, testDate, ev); err != nil {
			t.Fatalf("seed insert %q failed: %v", ev.Title, err)
		}
	}
}

func TestOptimize_BufferCascadePushesTightNeighbor(t *testing.T) {
	// 10 minute leg → 12 minute buffer. Second event starts only 5 minutes
	// after the first ends, so it shifts to end+12m with duration preserved.
	routes := &stubRoutes{duration: 10 * time.Minute}
	s := NewStore(DefaultConfig(), stubLocation{ok: false}, routes, nil, nil)
	seedDay(t, s,
		locatedAt("a", at(9, 0), at(10, 0), 40.0, -73.0),
		locatedAt("b", at(10, 5), at(10, 35), 40.1, -73.1),
	)

	if err := s.Optimize(context.Background(), testDate); err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	day, _ := s.Day(testDate)
	b := day.Events[1]
	if !b.Interval.Start.Equal(at(10, 12)) {
		t.Errorf("b start = %v, want 10:12", b.Interval.Start)
	}
	if !b.Interval.End.Equal(at(10, 42)) {
		t.Errorf("b end = %v, want 10:42 (30m duration preserved)", b.Interval.End)
	}
}

func TestOptimize_BufferCascadeLeavesLooseNeighborAlone(t *testing.T) {
	routes := &stubRoutes{duration: 10 * time.Minute}
	s := NewStore(DefaultConfig(), stubLocation{ok: false}, routes, nil, nil)
	seedDay(t, s,
		locatedAt("a", at(9, 0), at(10, 0), 40.0, -73.0),
		locatedAt("b", at(11, 0), at(11, 30), 40.1, -73.1),
	)

	if err := s.Optimize(context.Background(), testDate); err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	day, _ := s.Day(testDate)
	if !day.Events[1].Interval.Start.Equal(at(11, 0)) {
		t.Errorf("b start = %v, want untouched 11:00", day.Events[1].Interval.Start)
	}
}

func TestOptimize_ShiftPropagatesForwardOnly(t *testing.T) {
	// Three tight located events. The shift applied to b is visible when
	// the pass compares (b, c), so c shifts too, but nothing re-checks
	// the (a, b) pair afterwards. Single forward pass, not a fixpoint.
	routes := &stubRoutes{duration: 10 * time.Minute}
	s := NewStore(DefaultConfig(), stubLocation{ok: false}, routes, nil, nil)
	seedDay(t, s,
		locatedAt("a", at(9, 0), at(10, 0), 40.0, -73.0),
		locatedAt("b", at(10, 0), at(10, 30), 40.1, -73.1),
		locatedAt("c", at(10, 30), at(11, 0), 40.2, -73.2),
	)

	if err := s.Optimize(context.Background(), testDate); err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	day, _ := s.Day(testDate)
	b, c := day.Events[1], day.Events[2]
	if !b.Interval.Start.Equal(at(10, 12)) || !b.Interval.End.Equal(at(10, 42)) {
		t.Errorf("b = %v–%v, want 10:12–10:42", b.Interval.Start, b.Interval.End)
	}
	// c's earliest start builds on b's shifted end: 10:42 + 12m = 10:54.
	if !c.Interval.Start.Equal(at(10, 54)) || !c.Interval.End.Equal(at(11, 24)) {
		t.Errorf("c = %v–%v, want 10:54–11:24", c.Interval.Start, c.Interval.End)
	}
}

func TestOptimize_PairsWithoutLocationsAreSkipped(t *testing.T) {
	routes := &stubRoutes{duration: 10 * time.Minute}
	s := NewStore(DefaultConfig(), stubLocation{ok: false}, routes, nil, nil)
	seedDay(t, s,
		locatedAt("a", at(9, 0), at(10, 0), 40.0, -73.0),
		plainEvent("unlocated", at(10, 0), at(10, 30)),
		locatedAt("c", at(10, 30), at(11, 0), 40.2, -73.2),
	)

	if err := s.Optimize(context.Background(), testDate); err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	day, _ := s.Day(testDate)
	if !day.Events[1].Interval.Start.Equal(at(10, 0)) {
		t.Errorf("unlocated event moved to %v, want untouched", day.Events[1].Interval.Start)
	}
	if !day.Events[2].Interval.Start.Equal(at(10, 30)) {
		t.Errorf("c moved to %v, want untouched (no located pair)", day.Events[2].Interval.Start)
	}
	if routes.calls != 0 {
		t.Errorf("routing calls = %d, want 0", routes.calls)
	}
}

func TestOptimize_RoutingFailureAborts(t *testing.T) {
	routes := &stubRoutes{err: errors.New("timeout")}
	s := NewStore(DefaultConfig(), stubLocation{ok: false}, routes, nil, nil)
	seedDay(t, s,
		locatedAt("a", at(9, 0), at(10, 0), 40.0, -73.0),
		locatedAt("b", at(10, 5), at(10, 35), 40.1, -73.1),
	)

	if err := s.Optimize(context.Background(), testDate); err == nil {
		t.Fatal("expected routing failure to abort Optimize")
	}
}

func TestOptimize_PersistsDay(t *testing.T) {
	rec := &saveRecorder{}
	s := NewStore(DefaultConfig(), stubLocation{ok: false}, nil, nil, rec)
	seedDay(t, s, plainEvent("x", at(9, 0), at(10, 0)))
	rec.saves = 0

	if err := s.Optimize(context.Background(), testDate); err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if rec.saves != 1 {
		t.Errorf("saves = %d, want 1", rec.saves)
	}
}
