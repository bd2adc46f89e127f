package domain

import "math"

// Epsilon is the absolute tolerance for every score comparison made while
// ranking and while diffing against published results. Both sites must
// agree, otherwise a tie could be reported as unpublished.
const Epsilon = 1e-5

// FloatEqual reports whether a and b differ by less than Epsilon.
func FloatEqual(a, b float64) bool { return math.Abs(a-b) < Epsilon }

// CompareScores orders two scores with tolerance. It returns 0 when the
// scores are FloatEqual, -1 when a < b and +1 when a > b.
func CompareScores(a, b float64) int {
	switch {
	case FloatEqual(a, b):
		return 0
	case a < b:
		return -1
	default:
		return 1
	}
}

// CompareVectors compares two tie-break vectors lexicographically using
// CompareScores on each element. When one vector is a prefix of the
// other, the shorter one orders first.
func CompareVectors(a, b []float64) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := CompareScores(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// VectorsEqual reports whether two tie-break vectors have the same length
// and are element-wise equal within Epsilon.
func VectorsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !FloatEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
