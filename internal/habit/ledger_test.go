package habit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvergara/daykeeper/internal/geo"
	"github.com/dvergara/daykeeper/internal/provider"
)

// --- Stub collaborators ---

type stubLocation struct {
	coord geo.Coordinate
	ok    bool
}

func (s stubLocation) Current(ctx context.Context) (geo.Coordinate, bool) {
	return s.coord, s.ok
}

type stubWeather struct {
	weather provider.Weather
	err     error
	calls   int
}

func (s *stubWeather) Current(ctx context.Context, at geo.Coordinate) (provider.Weather, error) {
	s.calls++
	if s.err != nil {
		return provider.Weather{}, s.err
	}
	return s.weather, nil
}

type reminderRecorder struct {
	scheduled []string
	err       error
}

func (r *reminderRecorder) Schedule(id, title, body string, at TimeOfDay, repeats bool) error {
	r.scheduled = append(r.scheduled, id)
	return r.err
}

type habitSaveRecorder struct {
	saves int
	err   error
}

func (r *habitSaveRecorder) SaveHabit(h *Habit) error {
	r.saves++
	return r.err
}

func bareLedger() *Ledger {
	return NewLedger(nil, nil, nil, nil)
}

func mustCreate(t *testing.T, l *Ledger, h Habit) Habit {
	t.Helper()
	created, err := l.CreateHabit(h)
	if err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}
	return created
}

// --- CreateHabit ---

func TestCreateHabit_AssignsIDAndPersists(t *testing.T) {
	rec := &habitSaveRecorder{}
	l := NewLedger(nil, nil, nil, rec)

	created := mustCreate(t, l, Habit{Title: "Meditate", Frequency: Frequency{Kind: Daily}})
	if created.ID == "" {
		t.Error("created habit has empty ID")
	}
	if rec.saves != 1 {
		t.Errorf("saves = %d, want 1", rec.saves)
	}
}

func TestCreateHabit_RejectsInvalidFrequency(t *testing.T) {
	l := bareLedger()
	_, err := l.CreateHabit(Habit{Title: "x", Frequency: Frequency{Kind: "sometimes"}})
	if !errors.Is(err, ErrInvalidFrequency) {
		t.Errorf("err = %v, want ErrInvalidFrequency", err)
	}
}

func TestCreateHabit_RejectsDuplicateID(t *testing.T) {
	l := bareLedger()
	mustCreate(t, l, Habit{ID: "h1", Title: "x", Frequency: Frequency{Kind: Daily}})
	_, err := l.CreateHabit(Habit{ID: "h1", Title: "y", Frequency: Frequency{Kind: Daily}})
	if !errors.Is(err, ErrHabitExists) {
		t.Errorf("err = %v, want ErrHabitExists", err)
	}
}

func TestCreateHabit_SchedulesReminderWhenSet(t *testing.T) {
	rem := &reminderRecorder{}
	l := NewLedger(nil, nil, rem, nil)

	mustCreate(t, l, Habit{ID: "h1", Title: "Stretch", Frequency: Frequency{Kind: Daily},
		Reminder: &TimeOfDay{Hour: 7, Minute: 30}})
	if len(rem.scheduled) != 1 || rem.scheduled[0] != "h1" {
		t.Errorf("scheduled = %v, want [h1]", rem.scheduled)
	}

	mustCreate(t, l, Habit{ID: "h2", Title: "Read", Frequency: Frequency{Kind: Daily}})
	if len(rem.scheduled) != 1 {
		t.Errorf("reminder scheduled for habit without reminder time")
	}
}

func TestCreateHabit_ReminderFailureNotSurfaced(t *testing.T) {
	rem := &reminderRecorder{err: errors.New("scheduler down")}
	l := NewLedger(nil, nil, rem, nil)

	if _, err := l.CreateHabit(Habit{Title: "Stretch", Frequency: Frequency{Kind: Daily},
		Reminder: &TimeOfDay{Hour: 7, Minute: 0}}); err != nil {
		t.Errorf("CreateHabit surfaced reminder failure: %v", err)
	}
}

// --- CompleteHabit: streak accounting ---

func TestCompleteHabit_UnknownHabit(t *testing.T) {
	l := bareLedger()
	_, err := l.CompleteHabit(context.Background(), "nope", time.Time{})
	if !errors.Is(err, ErrHabitNotFound) {
		t.Errorf("err = %v, want ErrHabitNotFound", err)
	}
}

func TestCompleteHabit_DailyStreakIncrementsAndResets(t *testing.T) {
	// Meditate daily: Mon then Tue ⇒ streak 2/2; following Fri (3-day gap)
	// ⇒ current resets to 1, best stays 2.
	l := bareLedger()
	ctx := context.Background()
	mustCreate(t, l, Habit{ID: "med", Title: "Meditate", Frequency: Frequency{Kind: Daily}})

	mon := day(2026, 3, 2)
	if _, err := l.CompleteHabit(ctx, "med", mon); err != nil {
		t.Fatalf("complete Mon failed: %v", err)
	}
	h, err := l.CompleteHabit(ctx, "med", day(2026, 3, 3))
	if err != nil {
		t.Fatalf("complete Tue failed: %v", err)
	}
	if h.CurrentStreak != 2 || h.BestStreak != 2 {
		t.Errorf("after Tue: streak = %d/%d, want 2/2", h.CurrentStreak, h.BestStreak)
	}

	h, err = l.CompleteHabit(ctx, "med", day(2026, 3, 6))
	if err != nil {
		t.Fatalf("complete Fri failed: %v", err)
	}
	if h.CurrentStreak != 1 {
		t.Errorf("after Fri: current = %d, want 1", h.CurrentStreak)
	}
	if h.BestStreak != 2 {
		t.Errorf("after Fri: best = %d, want 2", h.BestStreak)
	}
}

func TestCompleteHabit_WeeklyStreak(t *testing.T) {
	l := bareLedger()
	ctx := context.Background()
	mustCreate(t, l, Habit{ID: "w", Title: "Review", Frequency: Frequency{Kind: Weekly}})

	if _, err := l.CompleteHabit(ctx, "w", day(2026, 3, 2)); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	h, _ := l.CompleteHabit(ctx, "w", day(2026, 3, 8)) // 6 days
	if h.CurrentStreak != 2 {
		t.Errorf("6-day gap: current = %d, want 2", h.CurrentStreak)
	}
	h, _ = l.CompleteHabit(ctx, "w", day(2026, 3, 16)) // 8 days
	if h.CurrentStreak != 1 {
		t.Errorf("8-day gap: current = %d, want 1", h.CurrentStreak)
	}
}

func TestCompleteHabit_BestStreakNeverDecreases(t *testing.T) {
	l := bareLedger()
	ctx := context.Background()
	mustCreate(t, l, Habit{ID: "d", Title: "x", Frequency: Frequency{Kind: Daily}})

	best := 0
	dates := []time.Time{
		day(2026, 3, 2), day(2026, 3, 3), day(2026, 3, 4), // streak 3
		day(2026, 3, 10),                 // reset
		day(2026, 3, 11), day(2026, 3, 12), // streak 3 again
		day(2026, 3, 20), // reset
	}
	for _, d := range dates {
		h, err := l.CompleteHabit(ctx, "d", d)
		if err != nil {
			t.Fatalf("complete %v failed: %v", d, err)
		}
		if h.BestStreak < best {
			t.Fatalf("best streak decreased: %d -> %d at %v", best, h.BestStreak, d)
		}
		best = h.BestStreak
	}
	if best != 3 {
		t.Errorf("final best = %d, want 3", best)
	}
}

func TestCompleteHabit_AppendsCompletionAndSetsLast(t *testing.T) {
	l := bareLedger()
	ctx := context.Background()
	mustCreate(t, l, Habit{ID: "d", Title: "x", Frequency: Frequency{Kind: Daily}})

	first := day(2026, 3, 2)
	later := day(2026, 3, 2).Add(4 * time.Hour)
	l.CompleteHabit(ctx, "d", first)
	h, err := l.CompleteHabit(ctx, "d", later)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	// Duplicates on the same day count separately.
	if len(h.Completions) != 2 {
		t.Errorf("completions = %d, want 2", len(h.Completions))
	}
	if h.LastCompletion == nil || !h.LastCompletion.Equal(later) {
		t.Errorf("last completion = %v, want %v", h.LastCompletion, later)
	}
}

func TestCompleteHabit_ZeroTimeMeansNow(t *testing.T) {
	fixed := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	restore := timeNow
	timeNow = func() time.Time { return fixed }
	defer func() { timeNow = restore }()

	l := bareLedger()
	mustCreate(t, l, Habit{ID: "d", Title: "x", Frequency: Frequency{Kind: Daily}})
	h, err := l.CompleteHabit(context.Background(), "d", time.Time{})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if h.LastCompletion == nil || !h.LastCompletion.Equal(fixed) {
		t.Errorf("last completion = %v, want injected now %v", h.LastCompletion, fixed)
	}
}

// --- CompleteHabit: best-effort enrichment ---

func TestCompleteHabit_EnrichmentAppendsLocationAndWeather(t *testing.T) {
	loc := stubLocation{coord: geo.Coordinate{Lat: 40.0, Lon: -73.0}, ok: true}
	weather := &stubWeather{weather: provider.Weather{Condition: "Clear"}}
	l := NewLedger(loc, weather, nil, nil)
	ctx := context.Background()
	mustCreate(t, l, Habit{ID: "run", Title: "Run", Frequency: Frequency{Kind: Daily}, WeatherDependent: true})

	h, err := l.CompleteHabit(ctx, "run", day(2026, 3, 2))
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if len(h.Locations) != 1 || h.Locations[0] != loc.coord {
		t.Errorf("locations = %v, want [%v]", h.Locations, loc.coord)
	}
	if len(h.Conditions) != 1 || h.Conditions[0] != "Clear" {
		t.Errorf("conditions = %v, want [Clear]", h.Conditions)
	}
}

func TestCompleteHabit_NoWeatherFetchWhenNotWeatherDependent(t *testing.T) {
	loc := stubLocation{coord: geo.Coordinate{Lat: 40.0, Lon: -73.0}, ok: true}
	weather := &stubWeather{weather: provider.Weather{Condition: "Clear"}}
	l := NewLedger(loc, weather, nil, nil)
	mustCreate(t, l, Habit{ID: "read", Title: "Read", Frequency: Frequency{Kind: Daily}})

	h, err := l.CompleteHabit(context.Background(), "read", day(2026, 3, 2))
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if weather.calls != 0 {
		t.Errorf("weather calls = %d, want 0", weather.calls)
	}
	if len(h.Locations) != 1 {
		t.Errorf("locations = %d, want 1 (location is appended regardless)", len(h.Locations))
	}
}

func TestCompleteHabit_EnrichmentFailuresSwallowed(t *testing.T) {
	loc := stubLocation{coord: geo.Coordinate{Lat: 40.0, Lon: -73.0}, ok: true}
	weather := &stubWeather{err: errors.New("service down")}
	l := NewLedger(loc, weather, nil, nil)
	mustCreate(t, l, Habit{ID: "run", Title: "Run", Frequency: Frequency{Kind: Daily}, WeatherDependent: true})

	h, err := l.CompleteHabit(context.Background(), "run", day(2026, 3, 2))
	if err != nil {
		t.Fatalf("weather failure should not fail the completion: %v", err)
	}
	if h.CurrentStreak != 1 {
		t.Errorf("streak = %d, want 1 (completion counted)", h.CurrentStreak)
	}
	if len(h.Conditions) != 0 {
		t.Errorf("conditions = %v, want empty", h.Conditions)
	}
}

func TestCompleteHabit_NoLocationFixSkipsAllEnrichment(t *testing.T) {
	weather := &stubWeather{weather: provider.Weather{Condition: "Rain"}}
	l := NewLedger(stubLocation{ok: false}, weather, nil, nil)
	mustCreate(t, l, Habit{ID: "run", Title: "Run", Frequency: Frequency{Kind: Daily}, WeatherDependent: true})

	h, err := l.CompleteHabit(context.Background(), "run", day(2026, 3, 2))
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if len(h.Locations) != 0 || len(h.Conditions) != 0 {
		t.Errorf("enrichment ran without a fix: locations=%v conditions=%v", h.Locations, h.Conditions)
	}
	if weather.calls != 0 {
		t.Errorf("weather calls = %d, want 0", weather.calls)
	}
}

// --- Analytics ---

func TestAnalytics_UnknownHabit(t *testing.T) {
	l := bareLedger()
	if _, err := l.Analytics("nope"); !errors.Is(err, ErrHabitNotFound) {
		t.Errorf("err = %v, want ErrHabitNotFound", err)
	}
}

func TestAnalytics_CompletionRate(t *testing.T) {
	fixed := time.Date(2026, 3, 12, 12, 0, 0, 0, time.UTC)
	restore := timeNow
	timeNow = func() time.Time { return fixed }
	defer func() { timeNow = restore }()

	l := bareLedger()
	ctx := context.Background()
	start := day(2026, 3, 2) // 10 days before fixed now
	mustCreate(t, l, Habit{ID: "d", Title: "x", Frequency: Frequency{Kind: Daily}, StartDate: &start})
	for i := 0; i < 5; i++ {
		if _, err := l.CompleteHabit(ctx, "d", day(2026, 3, 2+i)); err != nil {
			t.Fatalf("complete failed: %v", err)
		}
	}

	report, err := l.Analytics("d")
	if err != nil {
		t.Fatalf("Analytics failed: %v", err)
	}
	if report.TotalCompletions != 5 {
		t.Errorf("total = %d, want 5", report.TotalCompletions)
	}
	if report.CompletionRate != 0.5 {
		t.Errorf("rate = %f, want 0.5", report.CompletionRate)
	}
}

func TestAnalytics_RateZeroWithoutStartDate(t *testing.T) {
	l := bareLedger()
	mustCreate(t, l, Habit{ID: "d", Title: "x", Frequency: Frequency{Kind: Daily}})
	l.CompleteHabit(context.Background(), "d", day(2026, 3, 2))

	report, err := l.Analytics("d")
	if err != nil {
		t.Fatalf("Analytics failed: %v", err)
	}
	if report.CompletionRate != 0 {
		t.Errorf("rate = %f, want 0", report.CompletionRate)
	}
}

func TestAnalytics_RateZeroWhenStartedToday(t *testing.T) {
	fixed := time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC)
	restore := timeNow
	timeNow = func() time.Time { return fixed }
	defer func() { timeNow = restore }()

	l := bareLedger()
	start := day(2026, 3, 2)
	mustCreate(t, l, Habit{ID: "d", Title: "x", Frequency: Frequency{Kind: Daily}, StartDate: &start})
	l.CompleteHabit(context.Background(), "d", day(2026, 3, 2))

	report, _ := l.Analytics("d")
	if report.CompletionRate != 0 {
		t.Errorf("rate = %f, want 0 (zero-day denominator)", report.CompletionRate)
	}
}
