// Package server wires all daykeeper components and creates the MCP server
// instance.
//
// This is the composition root: it creates the concrete providers and stores
// and injects them into the schedule and habit services. No business logic
// lives here, only wiring.
package server

import (
	"fmt"
	"log"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dvergara/daykeeper/internal/config"
	"github.com/dvergara/daykeeper/internal/geo"
	"github.com/dvergara/daykeeper/internal/habit"
	"github.com/dvergara/daykeeper/internal/notify"
	"github.com/dvergara/daykeeper/internal/provider"
	"github.com/dvergara/daykeeper/internal/schedule"
	"github.com/dvergara/daykeeper/internal/store"
	"github.com/dvergara/daykeeper/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools registered and
// prior state rehydrated from the database. An empty configPath uses the
// default config location.
//
// The returned cleanup function stops the reminder scheduler and closes the
// database, and must be called on shutdown (typically via defer). It is
// always non-nil.
func New(configPath string) (*server.MCPServer, func(), error) {
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, noop, fmt.Errorf("loading config: %w", err)
	}

	// --- Persistence ---

	storeCfg := store.DefaultConfig()
	if cfg.DataDir != "" {
		storeCfg.DataDir = cfg.DataDir
	}
	db, err := store.New(storeCfg)
	if err != nil {
		return nil, noop, fmt.Errorf("opening store: %w", err)
	}

	// --- Providers ---
	//
	// The location provider is a fixed home coordinate from config. Without
	// one, location-aware behavior (route augmentation, weather checks,
	// completion enrichment) degrades to "no fix" and is skipped.

	var location provider.StaticLocation
	if cfg.Home != nil {
		location.Coord = &geo.Coordinate{Lat: cfg.Home.Lat, Lon: cfg.Home.Lon}
	}
	routing := provider.NewRoutingClient(cfg.RoutingURL)
	weather := provider.NewWeatherClient(cfg.WeatherURL)

	// --- Reminders ---

	reminders := notify.New(nil, log.Default())

	// --- Services ---

	scheduleCfg := schedule.Config{
		DayStart: hours(cfg.DayStartHour),
		DayEnd:   hours(cfg.DayEndHour),
	}
	days := schedule.NewStore(scheduleCfg, location, routing, weather, db)
	ledger := habit.NewLedger(location, weather, reminders, db)

	// --- Rehydrate prior state ---

	storedDays, err := db.LoadDays()
	if err != nil {
		db.Close()
		return nil, noop, fmt.Errorf("loading days: %w", err)
	}
	days.Restore(storedDays)

	storedHabits, err := db.LoadHabits()
	if err != nil {
		db.Close()
		return nil, noop, fmt.Errorf("loading habits: %w", err)
	}
	ledger.Restore(storedHabits)

	// Reminder registrations do not survive restarts, so re-register for
	// every restored habit that carries one.
	for _, h := range storedHabits {
		if h.Reminder == nil {
			continue
		}
		body := fmt.Sprintf("Time for %s", h.Title)
		if err := reminders.Schedule(h.ID, h.Title, body, *h.Reminder, true); err != nil {
			log.Printf("WARNING: reminder for %q not registered: %v", h.Title, err)
		}
	}
	reminders.Start()

	log.Printf("daykeeper: restored %d days, %d habits", len(storedDays), len(storedHabits))

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"daykeeper",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register schedule tools ---

	createDay := tools.NewCreateDayTool(days)
	s.AddTool(createDay.Definition(), createDay.Handle)

	addEvent := tools.NewAddEventTool(days)
	s.AddTool(addEvent.Definition(), addEvent.Handle)

	optimize := tools.NewOptimizeTool(days)
	s.AddTool(optimize.Definition(), optimize.Handle)

	reschedule := tools.NewSuggestReschedulingTool(days)
	s.AddTool(reschedule.Definition(), reschedule.Handle)

	// --- Register habit tools ---

	createHabit := tools.NewCreateHabitTool(ledger)
	s.AddTool(createHabit.Definition(), createHabit.Handle)

	completeHabit := tools.NewCompleteHabitTool(ledger)
	s.AddTool(completeHabit.Definition(), completeHabit.Handle)

	analytics := tools.NewHabitAnalyticsTool(ledger)
	s.AddTool(analytics.Definition(), analytics.Handle)

	suggestTime := tools.NewSuggestTimeTool(ledger)
	s.AddTool(suggestTime.Definition(), suggestTime.Handle)

	cleanup := func() {
		reminders.Stop()
		if err := db.Close(); err != nil {
			log.Printf("WARNING: store close: %v", err)
		}
	}
	return s, cleanup, nil
}

// noop is the cleanup returned when initialization fails partway.
func noop() {}

func hours(h int) time.Duration {
	return time.Duration(h) * time.Hour
}

// serverInstructions tells the client how to use the daykeeper tools.
func serverInstructions() string {
	return `You have access to daykeeper, a daily schedule and habit tracking MCP server.

## Schedules

A schedule is built one calendar day at a time:
- schedule_create_day prepares a day (idempotent).
- schedule_add_event adds an event. Events must not overlap. Give lat/lon for
  events at a place: daykeeper estimates travel time from the current position
  and pulls the event start earlier to cover it.
- schedule_optimize reviews a day: when rain is in the forecast, outdoor
  events get flagged for rescheduling, and events sitting too close behind
  their predecessor's travel time are pushed back.
- schedule_suggest_rescheduling proposes open slots for flagged events,
  avoiding rain hours for outdoor ones.

Typical flow: create the day, add events as the user describes them, then
optimize once the day is populated. If the user mentions weather concerns or
events get flagged, follow up with schedule_suggest_rescheduling.

## Habits

- habit_create registers a habit with a frequency (daily, weekly, monthly, or
  custom with every_days). An optional reminder time schedules a daily
  notification. Mark weather_dependent for outdoor habits.
- habit_complete records a completion and maintains the streak. Pass 'at'
  only when logging a past completion; omit it for "just did it now".
- habit_analytics reports streaks, completion rate, common completion times,
  frequent locations, and weather patterns.
- habit_suggest_time proposes the best time today based on past completions,
  avoiding forecast rain for weather-dependent habits.

## Important

- Dates are YYYY-MM-DD; event times are HH:MM on that date or full RFC 3339.
- Overlapping events are rejected with the conflicting event named. Relay
  the conflict to the user rather than silently adjusting times.
- Streak rules depend on frequency: daily allows a 1-day gap, weekly 7 days,
  monthly the next calendar month, custom the configured every_days.`
}
