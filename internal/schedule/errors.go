package schedule

import (
	"errors"
	"fmt"
)

// Structural violations surface to the caller unchanged; collaborator
// failures are wrapped with %w and passed through.
var (
	// ErrInvalidInterval marks an interval whose end is not after its start.
	ErrInvalidInterval = errors.New("schedule: interval end must be after start")

	// ErrDayNotFound marks an operation against a date with no stored day.
	ErrDayNotFound = errors.New("schedule: day not found")

	// ErrInvalidDate marks a date string that does not parse as a calendar day.
	ErrInvalidDate = errors.New("schedule: invalid date")
)

// ConflictError rejects an insert whose interval overlaps a stored event.
type ConflictError struct {
	// Conflicting is a copy of the stored event that blocked the insert.
	Conflicting Event
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schedule: time slot conflicts with %q (%s – %s)",
		e.Conflicting.Title,
		e.Conflicting.Interval.Start.Format("15:04"),
		e.Conflicting.Interval.End.Format("15:04"))
}
