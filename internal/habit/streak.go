package habit

import "time"

// continuesStreak reports whether a completion at next continues the streak
// given the previous completion and the habit's frequency. A habit with no
// prior completion always continues (fresh start).
//
// The gap is measured in whole calendar days, not elapsed time: completing
// Monday 23:59 and Tuesday 00:01 is a one-day gap. Monthly habits continue
// only within the same calendar month, regardless of elapsed days.
func continuesStreak(last *time.Time, next time.Time, f Frequency) bool {
	if last == nil {
		return true
	}
	switch f.Kind {
	case Daily:
		return calendarDayGap(*last, next) <= 1
	case Weekly:
		return calendarDayGap(*last, next) <= 7
	case Monthly:
		return last.Year() == next.Year() && last.Month() == next.Month()
	case Custom:
		return calendarDayGap(*last, next) <= f.EveryDays
	default:
		return false
	}
}

// calendarDayGap counts the whole calendar days from a's date to b's date,
// ignoring the time-of-day components.
func calendarDayGap(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da) / (24 * time.Hour))
}
