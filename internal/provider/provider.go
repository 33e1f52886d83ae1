// Package provider holds the payload types and concrete clients for the
// external collaborators the core depends on: routing directions, weather
// forecasts, and the device location fix.
//
// Two call conventions are used and never mixed:
//
//   - required calls return (T, error); the caller propagates the failure.
//   - best-effort calls return (T, bool); false means "absent", and the
//     caller degrades silently.
package provider

import (
	"context"
	"strings"
	"time"

	"github.com/dvergara/daykeeper/internal/geo"
)

// MentionsRain reports whether a condition's primary label contains "rain",
// case-insensitive. Substring match: "Light rain" counts, "Drizzle" does not.
func MentionsRain(condition string) bool {
	return strings.Contains(strings.ToLower(condition), "rain")
}

// Leg is one segment of a route.
type Leg struct {
	Duration time.Duration `json:"duration"`
}

// Route is a single routing alternative made up of legs.
type Route struct {
	Legs []Leg `json:"legs"`
}

// Directions is the routing collaborator's answer for one origin/destination
// pair. Callers take the first route's first leg.
type Directions struct {
	Routes []Route `json:"routes"`
}

// FirstLeg returns the first route's first leg, if any.
func (d Directions) FirstLeg() (Leg, bool) {
	if len(d.Routes) == 0 || len(d.Routes[0].Legs) == 0 {
		return Leg{}, false
	}
	return d.Routes[0].Legs[0], true
}

// HourlyForecast is one hour of forecasted weather. The entry covers the
// hour starting at Time.
type HourlyForecast struct {
	Time      time.Time `json:"time"`
	Condition string    `json:"condition"`
}

// Weather is a current-conditions report with an hourly forecast.
// Condition is the primary label ("Rain", "Clear", ...), not a free-form
// description.
type Weather struct {
	Condition string           `json:"condition"`
	Hourly    []HourlyForecast `json:"hourly"`
}

// StaticLocation is a LocationProvider pinned to a configured coordinate.
// A mobile client would substitute a GPS-backed implementation; the core
// only sees the best-effort (Coordinate, bool) contract.
type StaticLocation struct {
	Coord *geo.Coordinate
}

// Current returns the configured coordinate, or false when none is set.
func (s StaticLocation) Current(ctx context.Context) (geo.Coordinate, bool) {
	if s.Coord == nil {
		return geo.Coordinate{}, false
	}
	return *s.Coord, true
}
