package summary

import "sort"

// OtherTaskLabel is the bucket collecting tasks beyond the top-N cut.
const OtherTaskLabel = "other"

// AggregateTaskTotals sums segment durations by task, sorts descending, and
// keeps the top-N tasks individually with the remainder collapsed into a
// single "other" row. Ties are broken by task label so the output is stable.
func AggregateTaskTotals(segments []Segment, topN int) []TaskTotal {
	byTask := make(map[string]float64)
	for _, segment := range segments {
		byTask[segment.Task] += segment.DurationMinutes
	}

	totals := make([]TaskTotal, 0, len(byTask))
	for task, minutes := range byTask {
		totals = append(totals, TaskTotal{Task: task, Minutes: minutes})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Minutes != totals[j].Minutes {
			return totals[i].Minutes > totals[j].Minutes
		}
		return totals[i].Task < totals[j].Task
	})

	if topN <= 0 || len(totals) <= topN {
		return totals
	}

	var remainder float64
	for _, total := range totals[topN:] {
		remainder += total.Minutes
	}
	return append(totals[:topN:topN], TaskTotal{Task: OtherTaskLabel, Minutes: remainder})
}
