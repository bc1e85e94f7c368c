// Package geom2d holds the small plane-geometry primitives the exact
// 2D region builder and the approximator's inner/outer polygon
// construction share: orientation against a halfplane, centroid,
// CCW angular sort, and two-line intersection.
package geom2d

import (
	"math"
	"sort"

	"prefregion/pkg/numutil"
)

// Orientation classifies a point against a halfplane constraint.
type Orientation int

const (
	Inside Orientation = iota
	Outside
)

// OrientationTest classifies preference against constraint, a
// (len(preference)+1)-vector in hyperplane form
// sum(constraint[i]*preference[i]) >= constraint[last].
// Points on the boundary within eps count as Inside.
func OrientationTest(constraint, preference []float64, eps float64) Orientation {
	last := constraint[len(constraint)-1]
	var sum float64
	for i, p := range preference {
		sum += constraint[i] * p
	}
	if sum >= last || numutil.AbsDiffLE(sum, last, eps) {
		return Inside
	}
	return Outside
}

// CenterPoint returns the component-wise centroid of points.
func CenterPoint(points [][]float64) []float64 {
	dim := len(points[0])
	result := make([]float64, dim)
	for _, p := range points {
		for i, v := range p {
			result[i] += v
		}
	}
	n := float64(len(points))
	for i := range result {
		result[i] /= n
	}
	return result
}

// Angle returns atan2(p-center) for 2D points p and center.
func Angle(p, center []float64) float64 {
	x := p[0] - center[0]
	y := p[1] - center[1]
	return math.Atan2(y, x)
}

// SortPointsCCW sorts 2D points counter-clockwise around their
// centroid, by angle.
func SortPointsCCW(points [][]float64) {
	center := CenterPoint(points)
	sort.SliceStable(points, func(i, j int) bool {
		return Angle(points[i], center) < Angle(points[j], center)
	})
}

// Intersection computes the intersection point of two lines given in
// hyperplane form a = (a0, a1, a2) meaning a0*x + a1*y = a2 (and
// likewise for b). Returns false if the lines are parallel.
func Intersection(a, b [3]float64) (point [2]float64, ok bool) {
	yDenom := -a[0]*b[1] + b[0]*a[1]
	if numutil.AbsDiffLE(yDenom, 0, numutil.Accuracy) {
		return point, false
	}
	yNum := a[2]*b[0] - a[0]*b[2]
	y := yNum / yDenom

	var xNum, xDenom float64
	if b[0] == 0 {
		xNum = a[2] - a[1]*y
		xDenom = a[0]
	} else {
		xNum = b[2] - b[1]*y
		xDenom = b[0]
	}
	if numutil.AbsDiffLE(xDenom, 0, numutil.Accuracy) {
		return point, false
	}
	x := xNum / xDenom
	return [2]float64{x, y}, true
}
