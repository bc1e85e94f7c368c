package lp

import "prefregion/pkg/numutil"

// SizeApprox is the size-approximation LP (spec §4.5): it works over
// the (d-1)-dimensional reduced coordinates alpha_1..alpha_{d-1},
// with alpha_d kept implicit as 1 - sum(alpha_1..alpha_{d-1}), probing
// one direction of the simplex at a time under a growing set of
// oracle-discovered halfspaces.
type SizeApprox struct {
	dim   int
	rows  []Row
	origH [][]float64 // parallel to rows; nil for the built-in aggregate row
	obj   []float64
	lastX []float64
}

// NewSizeApprox returns a size-approximation LP over a d-dimensional
// preference simplex, seeded with the aggregate row sum(alpha) <= 1.
func NewSizeApprox(dim int) *SizeApprox {
	n := dim - 1
	aggregate := make([]float64, n)
	for i := range aggregate {
		aggregate[i] = 1
	}
	return &SizeApprox{
		dim:   dim,
		rows:  []Row{{Coeffs: aggregate, Rel: LE, RHS: 1}},
		origH: [][]float64{nil},
		obj:   make([]float64, n),
	}
}

// Dim reports the full preference dimension d (one more than the
// reduced coordinate count this LP solves over).
func (s *SizeApprox) Dim() int { return s.dim }

// Reset drops every added constraint back to just the aggregate row.
func (s *SizeApprox) Reset() {
	s.rows = s.rows[:1]
	s.origH = s.origH[:1]
	s.lastX = nil
}

// AddConstraint lowers a full d-dimensional homogeneous halfspace
// h·α >= 0 into the reduced (d-1)-variable form by substituting
// alpha_d = 1 - sum(alpha_{<d}): row_i = h_i - h_d, rhs = -h_d.
// Returns the row's id for later reference.
func (s *SizeApprox) AddConstraint(h []float64) int {
	d := s.dim
	n := d - 1
	row := make([]float64, n)
	for i := 0; i < n; i++ {
		row[i] = h[i] - h[d-1]
	}
	s.rows = append(s.rows, Row{Coeffs: row, Rel: GE, RHS: -h[d-1]})
	s.origH = append(s.origH, append([]float64(nil), h...))
	return len(s.rows) - 1
}

// SetObj sets the length-(d-1) objective probed by the next Solve.
func (s *SizeApprox) SetObj(dir []float64) {
	copy(s.obj, dir)
}

// SizeApproxResult is one solve of the size-approximation LP.
type SizeApproxResult struct {
	Alpha  []float64 // length d, alpha_d appended as 1 - sum
	Status Status
}

// Solve maximizes the current objective over the current constraint
// set and returns the d-dimensional preference it found.
func (s *SizeApprox) Solve(exact bool) SizeApproxResult {
	n := s.dim - 1
	p := &Problem{
		NumVars: n,
		Rows:    append([]Row(nil), s.rows...),
		Obj:     append([]float64(nil), s.obj...),
	}
	res := Solve(p, exact)
	s.lastX = nil
	if res.Status != Optimal {
		return SizeApproxResult{Status: res.Status}
	}
	s.lastX = res.X
	alpha := make([]float64, s.dim)
	sum := 0.0
	for i := 0; i < n; i++ {
		alpha[i] = res.X[i]
		sum += res.X[i]
	}
	alpha[n] = 1 - sum
	return SizeApproxResult{Alpha: alpha, Status: Optimal}
}

// NonBasicConstraints returns the rows and variable bounds tight at
// the last Solve's optimum, converted back to full d-dimensional
// halfspace form h·α >= 0 (a tight bound alpha_i >= 0 comes back as
// +e_i). A vertex of a (d-1)-dimensional polytope has
// exactly d-1 tight constraints generically.
func (s *SizeApprox) NonBasicConstraints(eps float64) [][]float64 {
	if s.lastX == nil {
		return nil
	}
	d := s.dim
	n := d - 1
	var out [][]float64

	for i := 0; i < n; i++ {
		if s.lastX[i] <= eps {
			h := make([]float64, d)
			h[i] = 1
			out = append(out, h)
		}
	}
	for idx, row := range s.rows {
		var val float64
		for i, c := range row.Coeffs {
			val += c * s.lastX[i]
		}
		if numutil.AbsDiffLE(val, row.RHS, eps) {
			if idx == 0 {
				h := make([]float64, d)
				h[d-1] = 1
				out = append(out, h)
			} else {
				out = append(out, s.origH[idx])
			}
		}
	}
	return out
}
