package curve

import "sort"

// findBracketOrBoundary finds the indices of two adjacent tenors that bracket
// the target. If the target is outside the range, it returns the nearest
// boundary pair.
//
// This uses binary search for O(log n) complexity instead of O(n) linear search.
func findBracketOrBoundary(tenors []float64, target float64) (int, int) {
	if len(tenors) < 2 {
		panic("findBracketOrBoundary: need at least 2 tenors")
	}

	// Binary search for first tenor >= target.
	idx := sort.SearchFloat64s(tenors, target)

	if idx <= 0 {
		return 0, 1
	}
	if idx >= len(tenors) {
		return len(tenors) - 2, len(tenors) - 1
	}

	// Normal case: tenors[idx-1] < target <= tenors[idx].
	return idx - 1, idx
}
