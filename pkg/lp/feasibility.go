package lp

import "prefregion/pkg/numutil"

// Feasibility is the preference-feasibility LP (spec §4.4): given a
// growing set of halfspace constraints h (each in the oracle's
// best-minus-path sign convention, h·α ≥ 0 meaning α favors the
// path), find the α on the simplex that maximizes its worst-case
// margin δ = min_h(h·α) over every added constraint.
type Feasibility struct {
	dim         int
	constraints [][]float64
}

// NewFeasibility returns an empty feasibility LP over a dim-dimensional
// preference simplex.
func NewFeasibility(dim int) *Feasibility {
	return &Feasibility{dim: dim}
}

// Reset clears every added constraint, keeping only the simplex row.
func (f *Feasibility) Reset() {
	f.constraints = f.constraints[:0]
}

// AddConstraint appends a halfspace row, zeroing components below
// numutil.Accuracy first (spec §4.4's row-cleaning step).
func (f *Feasibility) AddConstraint(h []float64) {
	row := append([]float64(nil), h...)
	numutil.ZeroTiny(row, numutil.Accuracy)
	f.constraints = append(f.constraints, row)
}

// NumConstraints reports how many constraints are currently seeded.
func (f *Feasibility) NumConstraints() int { return len(f.constraints) }

// FeasibilityResult is one solve of the feasibility LP.
type FeasibilityResult struct {
	Alpha  []float64
	Delta  float64
	Solved bool // true iff the LP itself reached an optimal basis
}

// Solve builds the tableau (d upper-bound rows, one simplex equality,
// one row per added constraint) and runs the two-phase simplex.
// Interpretation of the result — Delta >= -ε means Alpha is a common
// preference for every added constraint — is left to the caller
// (pkg/prefset's multiPathOracleLoop).
func (f *Feasibility) Solve(exact bool) FeasibilityResult {
	d := f.dim
	deltaPlus, deltaMinus := d, d+1
	n := d + 2

	p := &Problem{NumVars: n, Obj: make([]float64, n)}
	p.Obj[deltaPlus] = 1
	p.Obj[deltaMinus] = -1

	for i := 0; i < d; i++ {
		row := make([]float64, n)
		row[i] = 1
		p.Rows = append(p.Rows, Row{Coeffs: row, Rel: LE, RHS: 1})
	}

	simplexRow := make([]float64, n)
	for i := 0; i < d; i++ {
		simplexRow[i] = 1
	}
	p.Rows = append(p.Rows, Row{Coeffs: simplexRow, Rel: EQ, RHS: 1})

	for _, h := range f.constraints {
		row := make([]float64, n)
		copy(row, h)
		row[deltaPlus] = -1
		row[deltaMinus] = 1
		p.Rows = append(p.Rows, Row{Coeffs: row, Rel: GE, RHS: 0})
	}

	res := Solve(p, exact)
	if res.Status != Optimal {
		return FeasibilityResult{Solved: false}
	}
	alpha := numutil.ClampNonNegative(append([]float64(nil), res.X[:d]...))
	return FeasibilityResult{
		Alpha:  alpha,
		Delta:  res.X[deltaPlus] - res.X[deltaMinus],
		Solved: true,
	}
}
