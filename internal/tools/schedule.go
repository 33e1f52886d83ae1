// Package tools exposes the schedule and habit operations as MCP tools.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dvergara/daykeeper/internal/geo"
	"github.com/dvergara/daykeeper/internal/schedule"
)

const clockLayout = "15:04"

// parseEventTime resolves a tool-supplied time string against a calendar day.
// It accepts a bare clock time ("09:30"), resolved on the given date, or a
// full RFC 3339 timestamp.
func parseEventTime(date schedule.Date, s string) (time.Time, error) {
	if t, err := time.Parse(clockLayout, s); err == nil {
		return date.At(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q is neither HH:MM nor RFC 3339", s)
	}
	return t, nil
}

func formatEvent(ev schedule.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s - %s", ev.Title,
		ev.Interval.Start.Format(clockLayout), ev.Interval.End.Format(clockLayout))
	if ev.Route != nil {
		fmt.Fprintf(&b, " (includes %s travel)", ev.Route.EstimatedDuration)
	}
	if ev.NeedsRescheduling {
		b.WriteString(" [needs rescheduling]")
	}
	return b.String()
}

// ─── CreateDayTool ──────────────────────────────────────────────────────────

// CreateDayTool handles the schedule_create_day MCP tool.
type CreateDayTool struct {
	store *schedule.Store
}

// NewCreateDayTool creates a CreateDayTool backed by the given store.
func NewCreateDayTool(store *schedule.Store) *CreateDayTool {
	return &CreateDayTool{store: store}
}

// Definition returns the MCP tool definition for schedule_create_day.
func (t *CreateDayTool) Definition() mcp.Tool {
	return mcp.NewTool("schedule_create_day",
		mcp.WithDescription(
			"Create an empty schedule for a calendar day. Safe to call twice: an existing day is returned unchanged.",
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Calendar day in YYYY-MM-DD form"),
		),
	)
}

// Handle processes the schedule_create_day tool call.
func (t *CreateDayTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := schedule.ParseDate(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("'date' must be a YYYY-MM-DD calendar day"), nil
	}

	day := t.store.CreateDay(date)
	return mcp.NewToolResultText(fmt.Sprintf("Day %s ready (%d events)", day.Date, len(day.Events))), nil
}

// ─── AddEventTool ───────────────────────────────────────────────────────────

// AddEventTool handles the schedule_add_event MCP tool.
type AddEventTool struct {
	store *schedule.Store
}

// NewAddEventTool creates an AddEventTool backed by the given store.
func NewAddEventTool(store *schedule.Store) *AddEventTool {
	return &AddEventTool{store: store}
}

// Definition returns the MCP tool definition for schedule_add_event.
func (t *AddEventTool) Definition() mcp.Tool {
	return mcp.NewTool("schedule_add_event",
		mcp.WithDescription(
			"Add an event to a day's schedule. Overlapping events are rejected. For events with a location, "+
				"travel time from the current position is estimated and the event start is pulled earlier to cover it.",
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Calendar day in YYYY-MM-DD form"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Event title"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Start time, HH:MM on the given day or RFC 3339"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("End time, HH:MM on the given day or RFC 3339"),
		),
		mcp.WithString("description",
			mcp.Description("Free-form details"),
		),
		mcp.WithNumber("lat",
			mcp.Description("Event latitude. Supply together with lon to attach a location."),
		),
		mcp.WithNumber("lon",
			mcp.Description("Event longitude"),
		),
		mcp.WithString("address",
			mcp.Description("Human-readable address for the location"),
		),
		mcp.WithBoolean("outdoor",
			mcp.Description("Whether the event happens outdoors (affects weather-based rescheduling)"),
		),
		mcp.WithNumber("priority",
			mcp.Description("Relative priority, higher is more important"),
		),
	)
}

// Handle processes the schedule_add_event tool call.
func (t *AddEventTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := schedule.ParseDate(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("'date' must be a YYYY-MM-DD calendar day"), nil
	}
	title := req.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}

	start, err := parseEventTime(date, req.GetString("start", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid 'start': %v", err)), nil
	}
	end, err := parseEventTime(date, req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid 'end': %v", err)), nil
	}

	ev := schedule.Event{
		Title:       title,
		Description: req.GetString("description", ""),
		Interval:    schedule.Interval{Start: start, End: end},
		Outdoor:     req.GetBool("outdoor", false),
		Priority:    int(req.GetFloat("priority", 0)),
	}

	lat := req.GetFloat("lat", 0)
	lon := req.GetFloat("lon", 0)
	if lat != 0 || lon != 0 {
		ev.Location = &schedule.Location{
			Coordinate: geo.Coordinate{Lat: lat, Lon: lon},
			Address:    req.GetString("address", ""),
		}
	}

	added, err := t.store.AddEvent(ctx, date, ev)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add event: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Added to %s: %s (ID: %s)", date, formatEvent(added), added.ID)), nil
}

// ─── OptimizeTool ───────────────────────────────────────────────────────────

// OptimizeTool handles the schedule_optimize MCP tool.
type OptimizeTool struct {
	store *schedule.Store
}

// NewOptimizeTool creates an OptimizeTool backed by the given store.
func NewOptimizeTool(store *schedule.Store) *OptimizeTool {
	return &OptimizeTool{store: store}
}

// Definition returns the MCP tool definition for schedule_optimize.
func (t *OptimizeTool) Definition() mcp.Tool {
	return mcp.NewTool("schedule_optimize",
		mcp.WithDescription(
			"Optimize a day's schedule: flag outdoor events for rescheduling when rain is expected, and push "+
				"back events that sit too close behind the travel time from their predecessor.",
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Calendar day in YYYY-MM-DD form"),
		),
	)
}

// Handle processes the schedule_optimize tool call.
func (t *OptimizeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := schedule.ParseDate(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("'date' must be a YYYY-MM-DD calendar day"), nil
	}

	if err := t.store.Optimize(ctx, date); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to optimize: %v", err)), nil
	}

	day, err := t.store.Day(date)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read day back: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Optimized %s (%d events):\n", date, len(day.Events))
	for _, ev := range day.Events {
		fmt.Fprintf(&b, "- %s\n", formatEvent(*ev))
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── SuggestReschedulingTool ────────────────────────────────────────────────

// SuggestReschedulingTool handles the schedule_suggest_rescheduling MCP tool.
type SuggestReschedulingTool struct {
	store *schedule.Store
}

// NewSuggestReschedulingTool creates a SuggestReschedulingTool backed by the
// given store.
func NewSuggestReschedulingTool(store *schedule.Store) *SuggestReschedulingTool {
	return &SuggestReschedulingTool{store: store}
}

// Definition returns the MCP tool definition for schedule_suggest_rescheduling.
func (t *SuggestReschedulingTool) Definition() mcp.Tool {
	return mcp.NewTool("schedule_suggest_rescheduling",
		mcp.WithDescription(
			"Suggest alternative time slots for events flagged as needing rescheduling. Outdoor events avoid "+
				"slots that fall in forecast rain hours.",
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Calendar day in YYYY-MM-DD form"),
		),
	)
}

// Handle processes the schedule_suggest_rescheduling tool call.
func (t *SuggestReschedulingTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := schedule.ParseDate(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("'date' must be a YYYY-MM-DD calendar day"), nil
	}

	suggestions, err := t.store.SuggestRescheduling(ctx, date)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to suggest rescheduling: %v", err)), nil
	}
	if len(suggestions) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No rescheduling suggestions for %s", date)), nil
	}

	data, err := json.MarshalIndent(suggestions, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode suggestions: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
