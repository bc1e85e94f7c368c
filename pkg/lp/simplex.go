// Package lp implements the three in-process linear programs the
// preference-region computation drives from the oracle-feedback loop:
// the preference-feasibility LP, the size-approximation LP, and the
// convex-hull-intersection LP. Every one of them is solved by the same
// bounded, two-phase tableau simplex in this file; the three files
// alongside it build each LP's specific row/column layout on top.
//
// The original out-of-process solver (a framed byte-stream protocol
// to an external simplex binary) is collapsed to a direct in-process
// call: no external process, no solver crash isolation boundary —
// this package owns its own tableau and nothing shares it across
// goroutines.
package lp

import "gonum.org/v1/gonum/mat"

// Relation is the comparison a constraint row enforces against its
// right-hand side.
type Relation int

const (
	LE Relation = iota
	GE
	EQ
)

// Status is the outcome of a simplex solve.
type Status int

const (
	Optimal Status = iota
	Infeasible
	Unbounded
)

// Row is one constraint: Coeffs·x {<=,>=,=} RHS.
type Row struct {
	Coeffs []float64
	Rel    Relation
	RHS    float64
}

// Problem is a linear program in mixed-relation form over
// non-negative structural variables: maximise Obj·x subject to Rows.
// Upper bounds on individual variables are expressed as ordinary LE
// rows (e_i·x <= ub) by the caller; the tableau itself only ever
// assumes x >= 0.
type Problem struct {
	NumVars int
	Rows    []Row
	Obj     []float64
}

// Result is a solved Problem's outcome.
type Result struct {
	X      []float64
	Value  float64
	Status Status
}

const simplexEps = 1e-9
const exactEps = 1e-12
const maxPivots = 2000

// tableau is the shared simplex engine: m rows of n+1 columns (the
// last column is the right-hand side) backed by a gonum Dense matrix,
// an objective row of the same width, and a record of which column is
// basic in each row.
type tableau struct {
	m     *mat.Dense
	obj   *mat.VecDense
	basis []int
	nrows int
	ncols int // number of variable columns, excluding RHS
	eps   float64
}

func (t *tableau) row(i int) []float64 { return t.m.RawRowView(i) }
func (t *tableau) objRow() []float64   { return t.obj.RawVector().Data }

func (t *tableau) pivot(r, c int) {
	row := t.row(r)
	pv := row[c]
	for j := range row {
		row[j] /= pv
	}
	for i := 0; i < t.nrows; i++ {
		if i == r {
			continue
		}
		other := t.row(i)
		factor := other[c]
		if factor == 0 {
			continue
		}
		for j := range other {
			other[j] -= factor * row[j]
		}
	}
	objRow := t.objRow()
	if factor := objRow[c]; factor != 0 {
		for j := range objRow {
			objRow[j] -= factor * row[j]
		}
	}
	t.basis[r] = c
}

// canonicalize zeroes the objective row's entries in every currently
// basic column, as required before simplexSolve can read reduced
// costs off t.obj.
func (t *tableau) canonicalize() {
	objRow := t.objRow()
	for i, b := range t.basis {
		if factor := objRow[b]; factor != 0 {
			row := t.row(i)
			for j := range objRow {
				objRow[j] -= factor * row[j]
			}
		}
	}
}

// simplexSolve runs primal simplex with Bland's rule (smallest index
// on both entering and leaving ties) until optimal or unbounded.
// blocked columns are never chosen to enter — used in phase 2 to keep
// phase-1 artificial columns out of the basis.
func (t *tableau) simplexSolve(blocked []bool) Status {
	objRow := t.objRow()
	for iter := 0; iter < maxPivots; iter++ {
		enter := -1
		for j := 0; j < t.ncols; j++ {
			if blocked != nil && blocked[j] {
				continue
			}
			if objRow[j] < -t.eps {
				enter = j
				break
			}
		}
		if enter == -1 {
			return Optimal
		}

		leave := -1
		bestRatio := 0.0
		for i := 0; i < t.nrows; i++ {
			row := t.row(i)
			if row[enter] <= t.eps {
				continue
			}
			ratio := row[t.ncols] / row[enter]
			if leave == -1 || ratio < bestRatio-t.eps ||
				(ratio < bestRatio+t.eps && t.basis[i] < t.basis[leave]) {
				leave = i
				bestRatio = ratio
			}
		}
		if leave == -1 {
			return Unbounded
		}
		t.pivot(leave, enter)
	}
	return Unbounded
}

// Solve runs the two-phase simplex method on p: phase 1 minimizes the
// sum of artificial variables to find a basic feasible solution (or
// proves none exists); phase 2 then maximizes p.Obj from that basis.
//
// exact tightens the pivot tolerance for the one-time escalation the
// oracle loop falls back to when a constraint repeats on a boundary
// (see DESIGN.md's "stuck-constraint backoff"); it is not a rational
// solve (no pack library in scope provides one — see DESIGN.md), only
// a stricter floating-point pass that resolves ties a plain pass
// rounds away.
func Solve(p *Problem, exact bool) Result {
	m := len(p.Rows)
	n := p.NumVars
	eps := simplexEps
	if exact {
		eps = exactEps
	}

	// First pass: normalize each row's effective relation (RHS sign
	// may flip LE into GE or vice versa) so every row's column layout
	// is known before any row array is allocated.
	effRel := make([]Relation, m)
	flip := make([]bool, m)
	for i, row := range p.Rows {
		rel := row.Rel
		if row.RHS < 0 {
			flip[i] = true
			switch rel {
			case LE:
				rel = GE
			case GE:
				rel = LE
			}
		}
		effRel[i] = rel
	}

	// Column layout: structural (n), then one slack/surplus per row
	// (n..n+m-1), then artificials only for rows whose effective
	// relation is GE or EQ.
	artificialCol := make([]int, m)
	ncols := n + m
	for i := range p.Rows {
		if effRel[i] != LE {
			artificialCol[i] = ncols
			ncols++
		} else {
			artificialCol[i] = -1
		}
	}

	rows := make([][]float64, m)
	basis := make([]int, m)
	for i, row := range p.Rows {
		r := make([]float64, ncols+1)
		copy(r, row.Coeffs)
		rhs := row.RHS
		if flip[i] {
			rhs = -rhs
			for j := 0; j < n; j++ {
				r[j] = -r[j]
			}
		}
		slackCol := n + i
		switch effRel[i] {
		case LE:
			r[slackCol] = 1
			basis[i] = slackCol
		case GE:
			r[slackCol] = -1
			r[artificialCol[i]] = 1
			basis[i] = artificialCol[i]
		case EQ:
			r[artificialCol[i]] = 1
			basis[i] = artificialCol[i]
		}
		r[ncols] = rhs
		rows[i] = r
	}

	flat := make([]float64, m*(ncols+1))
	for i, r := range rows {
		copy(flat[i*(ncols+1):(i+1)*(ncols+1)], r)
	}
	t := &tableau{
		m:     mat.NewDense(m, ncols+1, flat),
		obj:   mat.NewVecDense(ncols+1, nil),
		basis: basis,
		nrows: m,
		ncols: ncols,
		eps:   eps,
	}

	hasArtificial := false
	objRow := t.objRow()
	for i := range p.Rows {
		if artificialCol[i] >= 0 {
			hasArtificial = true
			objRow[artificialCol[i]] = 1 // phase 1: maximize -sum(artificials)
		}
	}

	if hasArtificial {
		t.canonicalize()
		if status := t.simplexSolve(nil); status == Unbounded {
			return Result{Status: Infeasible}
		}
		if t.objRow()[ncols] < -eps {
			return Result{Status: Infeasible}
		}
		// Any artificial still basic at this point sits at 0 (a
		// degenerate redundant row); phase 2 simply never re-enters
		// its column.
	}

	objRow = t.objRow()
	for j := 0; j < ncols; j++ {
		objRow[j] = 0
	}
	for j := 0; j < n; j++ {
		objRow[j] = -p.Obj[j]
	}
	objRow[ncols] = 0
	t.canonicalize()

	var blocked []bool
	if hasArtificial {
		blocked = make([]bool, ncols)
		for i := range p.Rows {
			if artificialCol[i] >= 0 {
				blocked[artificialCol[i]] = true
			}
		}
	}
	status := t.simplexSolve(blocked)
	if status == Unbounded {
		return Result{Status: Unbounded}
	}

	x := make([]float64, n)
	for i, b := range t.basis {
		if b < n {
			x[b] = t.row(i)[ncols]
		}
	}
	return Result{X: x, Value: t.objRow()[ncols], Status: Optimal}
}

