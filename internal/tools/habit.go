package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dvergara/daykeeper/internal/habit"
)

// ─── CreateHabitTool ────────────────────────────────────────────────────────

// CreateHabitTool handles the habit_create MCP tool.
type CreateHabitTool struct {
	ledger *habit.Ledger
}

// NewCreateHabitTool creates a CreateHabitTool backed by the given ledger.
func NewCreateHabitTool(ledger *habit.Ledger) *CreateHabitTool {
	return &CreateHabitTool{ledger: ledger}
}

// Definition returns the MCP tool definition for habit_create.
func (t *CreateHabitTool) Definition() mcp.Tool {
	return mcp.NewTool("habit_create",
		mcp.WithDescription(
			"Create a habit to track. Frequency controls how streaks are counted; an optional reminder time "+
				"registers a daily notification.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Habit title (e.g. 'Morning run')"),
		),
		mcp.WithString("frequency",
			mcp.Required(),
			mcp.Description("How often: daily, weekly, monthly, or custom"),
		),
		mcp.WithNumber("every_days",
			mcp.Description("For custom frequency, the maximum day gap that keeps the streak alive"),
		),
		mcp.WithBoolean("weather_dependent",
			mcp.Description("Whether completions should record the weather and time suggestions avoid rain"),
		),
		mcp.WithNumber("reminder_hour",
			mcp.Description("Reminder hour (0-23). Supply together with reminder_minute."),
		),
		mcp.WithNumber("reminder_minute",
			mcp.Description("Reminder minute (0-59)"),
		),
	)
}

// Handle processes the habit_create tool call.
func (t *CreateHabitTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}

	h := habit.Habit{
		Title: title,
		Frequency: habit.Frequency{
			Kind:      habit.FrequencyKind(req.GetString("frequency", "")),
			EveryDays: int(req.GetFloat("every_days", 0)),
		},
		WeatherDependent: req.GetBool("weather_dependent", false),
	}

	hour := req.GetFloat("reminder_hour", -1)
	if hour >= 0 {
		h.Reminder = &habit.TimeOfDay{
			Hour:   int(hour),
			Minute: int(req.GetFloat("reminder_minute", 0)),
		}
	}

	created, err := t.ledger.CreateHabit(h)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create habit: %v", err)), nil
	}

	msg := fmt.Sprintf("Created habit %q (%s, ID: %s)", created.Title, created.Frequency.Kind, created.ID)
	if created.Reminder != nil {
		msg += fmt.Sprintf(", reminder at %02d:%02d", created.Reminder.Hour, created.Reminder.Minute)
	}
	return mcp.NewToolResultText(msg), nil
}

// ─── CompleteHabitTool ──────────────────────────────────────────────────────

// CompleteHabitTool handles the habit_complete MCP tool.
type CompleteHabitTool struct {
	ledger *habit.Ledger
}

// NewCompleteHabitTool creates a CompleteHabitTool backed by the given ledger.
func NewCompleteHabitTool(ledger *habit.Ledger) *CompleteHabitTool {
	return &CompleteHabitTool{ledger: ledger}
}

// Definition returns the MCP tool definition for habit_complete.
func (t *CompleteHabitTool) Definition() mcp.Tool {
	return mcp.NewTool("habit_complete",
		mcp.WithDescription(
			"Record a completion of a habit. Updates the streak and, when available, records where it "+
				"happened and the weather at the time.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Habit ID"),
		),
		mcp.WithString("at",
			mcp.Description("Completion time in RFC 3339 (default: now)"),
		),
	)
}

// Handle processes the habit_complete tool call.
func (t *CompleteHabitTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	var at time.Time
	if s := req.GetString("at", ""); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid 'at': %v", err)), nil
		}
		at = parsed
	}

	h, err := t.ledger.CompleteHabit(ctx, id, at)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to complete habit: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Completed %q. Current streak: %d, best: %d, total completions: %d",
		h.Title, h.CurrentStreak, h.BestStreak, len(h.Completions),
	)), nil
}

// ─── HabitAnalyticsTool ─────────────────────────────────────────────────────

// HabitAnalyticsTool handles the habit_analytics MCP tool.
type HabitAnalyticsTool struct {
	ledger *habit.Ledger
}

// NewHabitAnalyticsTool creates a HabitAnalyticsTool backed by the given ledger.
func NewHabitAnalyticsTool(ledger *habit.Ledger) *HabitAnalyticsTool {
	return &HabitAnalyticsTool{ledger: ledger}
}

// Definition returns the MCP tool definition for habit_analytics.
func (t *HabitAnalyticsTool) Definition() mcp.Tool {
	return mcp.NewTool("habit_analytics",
		mcp.WithDescription(
			"Report a habit's analytics: streaks, completion rate, most common completion times, "+
				"frequent locations, and weather patterns.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Habit ID"),
		),
	)
}

// Handle processes the habit_analytics tool call.
func (t *HabitAnalyticsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	report, err := t.ledger.Analytics(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build analytics: %v", err)), nil
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode report: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ─── SuggestTimeTool ────────────────────────────────────────────────────────

// SuggestTimeTool handles the habit_suggest_time MCP tool.
type SuggestTimeTool struct {
	ledger *habit.Ledger
}

// NewSuggestTimeTool creates a SuggestTimeTool backed by the given ledger.
func NewSuggestTimeTool(ledger *habit.Ledger) *SuggestTimeTool {
	return &SuggestTimeTool{ledger: ledger}
}

// Definition returns the MCP tool definition for habit_suggest_time.
func (t *SuggestTimeTool) Definition() mcp.Tool {
	return mcp.NewTool("habit_suggest_time",
		mcp.WithDescription(
			"Suggest the best time today to do a habit, based on when it has been completed before. "+
				"Weather-dependent habits avoid hours with rain in the forecast.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Habit ID"),
		),
	)
}

// Handle processes the habit_suggest_time tool call.
func (t *SuggestTimeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	when, err := t.ledger.SuggestOptimalTime(ctx, id)
	if errors.Is(err, habit.ErrNoSuggestion) {
		return mcp.NewToolResultText("No suggestion: the habit has no completion history or reminder to draw on"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to suggest a time: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Suggested time: %s", when.Format("15:04 on 2006-01-02"))), nil
}
