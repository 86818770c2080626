package schedule

import "math"

// DefaultEstimate is the duration in days used for tasks without an estimate.
const DefaultEstimate = 1.0

// MaxDuration caps the business days of a single task. It equals
// wbs.MaxEstimate / wbs.MinAllocation.
const MaxDuration = 99999

// ActualDuration converts an estimate in days into the number of business
// days the task spans for an assignee working ratio of each day on the
// project. Unassigned tasks use a ratio of 1. The result is truncated toward
// zero and clamped to [1, MaxDuration].
func ActualDuration(estimated *float64, ratio float64) int {
	est := DefaultEstimate
	if estimated != nil {
		est = *estimated
	}
	if ratio <= 0 || math.IsNaN(ratio) {
		ratio = 1
	}

	q := est / ratio
	switch {
	case math.IsNaN(q) || q < 1:
		return 1
	case q >= MaxDuration:
		return MaxDuration
	}
	return int(q)
}
