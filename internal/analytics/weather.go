package analytics

import "sort"

// ConditionCount is one weather-condition histogram entry.
type ConditionCount struct {
	Condition string `json:"condition"`
	Count     int    `json:"count"`
}

// ConditionHistogram counts occurrences of each condition's primary label
// and returns the entries descending by count, ties in first-seen order.
func ConditionHistogram(conditions []string) []ConditionCount {
	counts := make(map[string]int)
	var order []string
	for _, c := range conditions {
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
	}

	out := make([]ConditionCount, 0, len(order))
	for _, c := range order {
		out = append(out, ConditionCount{Condition: c, Count: counts[c]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
