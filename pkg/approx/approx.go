// Package approx drives the size-approximation LP through a direction
// schedule to bracket a path's preference region from the inside
// (certified-interior vertices) and the outside (a halfspace bundle
// every true-region point must satisfy), per spec.md §4.6.
package approx

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"prefregion/pkg/chdijkstra"
	"prefregion/pkg/geom2d"
	"prefregion/pkg/graph"
	"prefregion/pkg/lp"
	"prefregion/pkg/numutil"
	"prefregion/pkg/oracle"
)

// SizeApproximation is the outcome of ConstrainedApprox/Approx: the
// inner vertices found, their non-basic constraints, and every
// halfspace the search accumulated along the way.
type SizeApproximation struct {
	InnerPoints      [][]float64
	PointConstraints [][][]float64
	OuterConstraints [][]float64
}

// Approximator owns one size-approximation LP and drives it across
// directions for a single path at a time; ConstrainedApprox resets the
// LP at the start of every call, so one Approximator serves path after
// path.
type Approximator struct {
	sizeLP *lp.SizeApprox
	g      *graph.Graph
	qs     *chdijkstra.QueryState
}

// New returns an Approximator for a dim-dimensional preference
// simplex over g, using qs for oracle queries.
func New(dim int, g *graph.Graph, qs *chdijkstra.QueryState) *Approximator {
	return &Approximator{sizeLP: lp.NewSizeApprox(dim), g: g, qs: qs}
}

// Approx runs the direction schedule with no seed constraints.
func (a *Approximator) Approx(p oracle.Path, dirs []Direction) SizeApproximation {
	return a.ConstrainedApprox(p, dirs, nil)
}

// ConstrainedApprox drives dirs through the size-LP, seeded with
// constraints already known to hold for p (e.g. from p's own
// constraint cache), per spec.md §4.6's step-by-step oracle loop.
func (a *Approximator) ConstrainedApprox(p oracle.Path, dirs []Direction, constraints [][]float64) SizeApproximation {
	a.sizeLP.Reset()

	noConstraints := len(constraints) == 0
	var (
		innerPoints      [][]float64
		pointConstraints [][][]float64
		outerConstraints [][]float64
	)
	for _, c := range constraints {
		a.sizeLP.AddConstraint(c)
		outerConstraints = append(outerConstraints, c)
	}

	dim := a.sizeLP.Dim()
	for _, dir := range dirs {
		a.sizeLP.SetObj(dir)

		for {
			res := a.sizeLP.Solve(false)
			var alpha []float64
			if res.Status == lp.Optimal {
				alpha = res.Alpha
			} else if noConstraints {
				alpha = numutil.EqualWeights(dim)
			} else {
				// Every direction is guarded by at least the aggregate
				// simplex row, so this only happens if the seeded
				// constraints themselves are already infeasible — the
				// caller is responsible for not doing that.
				break
			}

			result, ok := oracle.Query(a.g, a.qs, p, alpha)
			if !ok {
				break
			}
			accept := result.Dif <= numutil.Accuracy
			stuck := !accept && len(outerConstraints) > 0 &&
				floats.EqualApprox(outerConstraints[len(outerConstraints)-1], result.Constraint, numutil.Accuracy)
			if accept || stuck {
				// Stuck means the LP keeps handing back the same
				// violating constraint on this boundary; accept the
				// current alpha as the direction's maximiser rather
				// than loop on it forever (spec.md §4.6's guard).
				innerPoints = append(innerPoints, alpha)
				pointConstraints = append(pointConstraints, a.sizeLP.NonBasicConstraints(numutil.Accuracy))
				break
			}

			a.sizeLP.AddConstraint(result.Constraint)
			outerConstraints = append(outerConstraints, result.Constraint)
			noConstraints = false
		}
	}

	return SizeApproximation{
		InnerPoints:      innerPoints,
		PointConstraints: pointConstraints,
		OuterConstraints: outerConstraints,
	}
}

// ApproxPoint is one vertex of an inner or outer polygon (d=3 only),
// together with the two constraints whose intersection produced it.
type ApproxPoint struct {
	Point       []float64
	Constraints [][]float64
}

// InnerPolygon builds the d=3 inner polygon from a SizeApproximation:
// the inner points themselves, sorted CCW around their centroid, with
// adjacent duplicate constraint-pairs collapsed, per spec.md §4.6.
func InnerPolygon(sa SizeApproximation) []ApproxPoint {
	pts := make([]ApproxPoint, len(sa.InnerPoints))
	for i := range sa.InnerPoints {
		pts[i] = ApproxPoint{Point: sa.InnerPoints[i], Constraints: sa.PointConstraints[i]}
	}
	return sortAndDedupPolygon(pts, sa.InnerPoints)
}

// boundaryH is the full d=3 homogeneous halfspace for each simplex
// side (alpha_i >= 0, for i=0,1, plus the implicit alpha_2 >= 0 that
// the size-LP's aggregate row enforces), in the same +e_i convention
// SizeApprox.NonBasicConstraints uses for tight variable bounds.
var boundaryH = [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// lowerLine converts a full d=3 homogeneous halfspace h (h·α >= 0)
// into the 2D line it traces on the reduced (alpha_0, alpha_1) plane,
// via the same substitution alpha_2 = 1 - alpha_0 - alpha_1 that
// SizeApprox.AddConstraint uses: row_i = h_i - h_2, rhs = -h_2.
func lowerLine(h []float64) [3]float64 {
	return [3]float64{h[0] - h[2], h[1] - h[2], -h[2]}
}

// OuterPolygon builds the d=3 outer polygon: the pairwise intersection
// of every collected halfspace (plus the three simplex sides) that
// lands in [0,1]^2 and satisfies every other collected halfspace.
func OuterPolygon(sa SizeApproximation) []ApproxPoint {
	all := append([][]float64(nil), sa.OuterConstraints...)
	all = append(all, boundaryH...)

	var pts []ApproxPoint
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if floats.Equal(all[i], all[j]) {
				continue
			}
			lineI, lineJ := lowerLine(all[i]), lowerLine(all[j])
			point, ok := geom2d.Intersection(lineI, lineJ)
			if !ok {
				continue
			}
			if point[0] < 0 || point[0] > 1 || point[1] < 0 || point[1] > 1 {
				continue
			}
			if !insideAll(all, point[:]) {
				continue
			}
			pts = append(pts, ApproxPoint{
				Point:       point[:],
				Constraints: [][]float64{all[i], all[j]},
			})
		}
	}

	centerSrc := make([][]float64, len(pts))
	for i, p := range pts {
		centerSrc[i] = p.Point
	}
	return sortAndDedupPolygon(pts, centerSrc)
}

func insideAll(constraints [][]float64, point []float64) bool {
	for _, c := range constraints {
		line := lowerLine(c)
		if geom2d.OrientationTest(line[:], point, numutil.Accuracy) != geom2d.Inside {
			return false
		}
	}
	return true
}

func sortAndDedupPolygon(pts []ApproxPoint, centerSrc [][]float64) []ApproxPoint {
	if len(pts) == 0 {
		return nil
	}
	center := geom2d.CenterPoint(centerSrc)
	angles := make([]float64, len(pts))
	for i, p := range pts {
		angles[i] = geom2d.Angle(p.Point, center)
	}
	order := make([]int, len(pts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return angles[order[i]] < angles[order[j]]
	})
	sorted := make([]ApproxPoint, len(pts))
	for i, idx := range order {
		sorted[i] = pts[idx]
	}

	out := []ApproxPoint{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		if samePair(out[len(out)-1].Constraints, sorted[i].Constraints) {
			continue
		}
		out = append(out, sorted[i])
	}
	return out
}

func samePair(a, b [][]float64) bool {
	if len(a) != 2 || len(b) != 2 {
		return false
	}
	return (floats.Equal(a[0], b[0]) && floats.Equal(a[1], b[1])) ||
		(floats.Equal(a[0], b[1]) && floats.Equal(a[1], b[0]))
}
