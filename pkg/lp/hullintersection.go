package lp

import "prefregion/pkg/numutil"

// HullIntersection is the convex-hull-intersection LP (spec §4.8):
// given one inner-point set per path, find a single preference vector
// that is simultaneously a convex combination of every path's set —
// i.e. lies in the intersection of their hulls. There is no
// objective; any feasible point answers the question.
type HullIntersection struct {
	dim       int
	pointSets [][][]float64
}

// NewHullIntersection builds the LP for dim-dimensional point sets,
// one set per path whose inner points must agree on a shared point.
func NewHullIntersection(dim int, pointSets [][][]float64) *HullIntersection {
	return &HullIntersection{dim: dim, pointSets: pointSets}
}

// HullResult is the outcome of intersecting the hulls.
type HullResult struct {
	S        []float64
	Feasible bool
}

// Solve introduces convex-combination weights λ_{k,j} per path k and
// point j (Σ_j λ_{k,j} = 1), and shared goal variables s_i tied to
// every path's combination by Σ_j P_{k,j,i}·λ_{k,j} = s_i.
func (h *HullIntersection) Solve(exact bool) HullResult {
	d := h.dim
	offsets := make([]int, len(h.pointSets))
	n := 0
	for k, pts := range h.pointSets {
		offsets[k] = n
		n += len(pts)
	}
	sOffset := n
	n += d

	p := &Problem{NumVars: n, Obj: make([]float64, n)}

	for k, pts := range h.pointSets {
		row := make([]float64, n)
		for j := range pts {
			row[offsets[k]+j] = 1
		}
		p.Rows = append(p.Rows, Row{Coeffs: row, Rel: EQ, RHS: 1})
	}
	for k, pts := range h.pointSets {
		for i := 0; i < d; i++ {
			row := make([]float64, n)
			for j, pt := range pts {
				row[offsets[k]+j] = pt[i]
			}
			row[sOffset+i] = -1
			p.Rows = append(p.Rows, Row{Coeffs: row, Rel: EQ, RHS: 0})
		}
	}

	res := Solve(p, exact)
	if res.Status != Optimal {
		return HullResult{Feasible: false}
	}
	s := numutil.ClampNonNegative(append([]float64(nil), res.X[sOffset:sOffset+d]...))
	return HullResult{S: s, Feasible: true}
}
