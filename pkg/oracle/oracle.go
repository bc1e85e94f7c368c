// Package oracle implements the separation oracle that decides
// whether a path is optimal under a given preference, and if not,
// returns a linear constraint any feasibility LP can use to exclude
// the preferences under which it fails.
package oracle

import (
	"gonum.org/v1/gonum/floats"

	"prefregion/pkg/chdijkstra"
	"prefregion/pkg/graph"
)

// Path is the subset of path state the oracle needs: its endpoints
// and its stored per-dimension cost vector.
type Path struct {
	S, T       uint32
	TotalCosts []float64
}

// Result is the oracle's verdict for one (path, alpha) query.
type Result struct {
	Dif        float64   // α·(total_costs - c_best); never negative, ≤ ε means P is α-optimal
	Constraint []float64 // c_best - total_costs, a separating hyperplane (Constraint·α < 0) when Dif > ε
}

// Query runs Dijkstra from P.s to P.t under alpha and compares the
// result against P's stored cost vector.
func Query(g *graph.Graph, qs *chdijkstra.QueryState, p Path, alpha []float64) (Result, bool) {
	best, ok := chdijkstra.Run(g, qs, p.S, p.T, alpha)
	if !ok {
		return Result{}, false
	}

	diff := make([]float64, len(p.TotalCosts))
	floats.SubTo(diff, p.TotalCosts, best.Costs)
	dif := floats.Dot(alpha, diff)

	constraint := make([]float64, len(p.TotalCosts))
	floats.SubTo(constraint, best.Costs, p.TotalCosts)

	return Result{Dif: dif, Constraint: constraint}, true
}
