package habit

import "errors"

var (
	// ErrHabitNotFound marks an operation against an unknown habit id.
	ErrHabitNotFound = errors.New("habit: not found")

	// ErrHabitExists rejects creating a habit whose id is already registered.
	ErrHabitExists = errors.New("habit: already exists")

	// ErrInvalidFrequency marks an unknown frequency kind or a bad custom
	// interval.
	ErrInvalidFrequency = errors.New("habit: invalid frequency")

	// ErrNoSuggestion means no optimal-time candidate could be produced.
	ErrNoSuggestion = errors.New("habit: no suggestion available")
)
