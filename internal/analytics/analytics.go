// Package analytics computes derived statistics from habit completion logs:
// completion-time buckets, greedy location clusters, and weather-condition
// histograms. All folds are read-only and deterministic.
package analytics

import (
	"sort"
	"time"
)

// Report is the composite analytics view of one habit.
type Report struct {
	TotalCompletions int              `json:"total_completions"`
	CurrentStreak    int              `json:"current_streak"`
	BestStreak       int              `json:"best_streak"`
	CompletionRate   float64          `json:"completion_rate"`
	CommonTimes      []TimeCount      `json:"common_times"`
	CommonLocations  []Cluster        `json:"common_locations"`
	WeatherPatterns  []ConditionCount `json:"weather_patterns"`
}

// TimeCount is one exact (hour, minute) completion bucket.
type TimeCount struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Count  int `json:"count"`
}

// TopCompletionTimes buckets completions by exact (hour, minute) and returns
// the buckets sorted descending by count, keeping at most n (n <= 0 keeps
// all). Ties stay in first-seen order, so the result is deterministic for a
// given completion sequence.
func TopCompletionTimes(completions []time.Time, n int) []TimeCount {
	counts := make(map[[2]int]int)
	var order [][2]int
	for _, c := range completions {
		key := [2]int{c.Hour(), c.Minute()}
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	}

	out := make([]TimeCount, 0, len(order))
	for _, key := range order {
		out = append(out, TimeCount{Hour: key[0], Minute: key[1], Count: counts[key]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
