package schedule

import (
	"time"

	"github.com/dvergara/daykeeper/internal/geo"
)

// Location binds an event to a place.
type Location struct {
	Coordinate geo.Coordinate `json:"coordinate"`
	Address    string         `json:"address,omitempty"`
	Radius     float64        `json:"radius,omitempty"` // meters
}

// RouteInfo carries the travel estimate folded into a located event.
type RouteInfo struct {
	EstimatedDuration time.Duration `json:"estimated_duration"`
}

// Event is a single scheduled commitment. Events are owned by the Day that
// stores them; callers receive and submit copies.
type Event struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	Interval          Interval   `json:"interval"`
	Location          *Location  `json:"location,omitempty"`
	Route             *RouteInfo `json:"route,omitempty"`
	Outdoor           bool       `json:"outdoor"`
	Priority          int        `json:"priority"`
	NeedsRescheduling bool       `json:"needs_rescheduling"`
	LinkedTasks       []string   `json:"linked_tasks,omitempty"`
}

// Date is a calendar day in the form "2006-01-02". It identifies a Day
// independent of any instant or zone.
type Date string

const dateLayout = "2006-01-02"

// ParseDate validates a calendar-day string.
func ParseDate(s string) (Date, error) {
	if _, err := time.ParseInLocation(dateLayout, s, time.Local); err != nil {
		return "", ErrInvalidDate
	}
	return Date(s), nil
}

// DateOf returns the calendar day containing t, in t's zone.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// At returns the instant at the given offset from the date's local midnight.
// An offset of 24h is the following midnight, so a full-day window is
// [d.At(0), d.At(24*time.Hour)].
func (d Date) At(offset time.Duration) time.Time {
	midnight, err := time.ParseInLocation(dateLayout, string(d), time.Local)
	if err != nil {
		return time.Time{}
	}
	return midnight.Add(offset)
}

// Day is one calendar day's ordered event list. Events stay sorted ascending
// by interval start after every accepted insert.
type Day struct {
	Date   Date     `json:"date"`
	Events []*Event `json:"events"`
}
