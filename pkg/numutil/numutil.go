// Package numutil centralizes the numeric-tolerance comparisons used
// throughout the preference-region computation.
package numutil

import "math"

// Accuracy is the package-wide tolerance for comparisons against
// geometric zero. The 2D region builder uses a tighter, separate
// threshold (see the region package) since its cutting-plane hull
// arithmetic accumulates error differently than the oracle/LP code.
const Accuracy = 5e-6

// AbsDiffLE reports whether a and b are within eps of each other.
// Two-sided tolerance comparisons use this helper; one-sided threshold
// checks compare against Accuracy (or the region package's precision)
// directly. Either way the threshold is a named constant at the call
// site.
func AbsDiffLE(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

// ClampNonNegative zeroes out negative components of v in place and
// returns it, matching the preference-clamping policy required
// wherever an LP solution or oracle input is used as an alpha vector.
func ClampNonNegative(v []float64) []float64 {
	for i, x := range v {
		if x < 0 {
			v[i] = 0
		}
	}
	return v
}

// ZeroTiny zeroes components of v whose absolute value is below eps,
// matching the feasibility LP's add_constraint row-cleaning step.
func ZeroTiny(v []float64, eps float64) []float64 {
	for i, x := range v {
		if math.Abs(x) < eps {
			v[i] = 0
		}
	}
	return v
}

// EqualWeights returns the dim-dimensional uniform preference 1/dim in
// every component, the fallback used whenever an LP has no seeded
// constraints yet to pick an alpha from.
func EqualWeights(dim int) []float64 {
	w := make([]float64, dim)
	for i := range w {
		w[i] = 1.0 / float64(dim)
	}
	return w
}
