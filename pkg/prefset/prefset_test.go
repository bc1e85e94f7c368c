package prefset

import (
	"testing"

	"prefregion/pkg/approx"
	"prefregion/pkg/ch"
	"prefregion/pkg/graph"
	"prefregion/pkg/oracle"
)

// buildUnitTriangle mirrors the fixture used across pkg/region,
// pkg/oracle and pkg/approx's tests: two nodes, three parallel edges
// of cost (1,0,0), (0,1,0), (0,0,1).
func buildUnitTriangle() *graph.Graph {
	edges := []graph.RawEdge{
		{Src: 0, Tgt: 1, Costs: []float64{1, 0, 0}},
		{Src: 0, Tgt: 1, Costs: []float64{0, 1, 0}},
		{Src: 0, Tgt: 1, Costs: []float64{0, 0, 1}},
	}
	return graph.Build(2, 3, edges)
}

// TestSubsetPreferenceFourDemandsAreInfeasible seeds each of four
// paths with a cached constraint requiring "my share of the
// preference is at least 30%". Since the four shares must sum to 1,
// no preference can satisfy all four at once (the best achievable
// minimum share is the uniform 25%, short of 30% by more than ε), so
// the subset's common-preference LP must be infeasible regardless of
// what the graph itself says (the oracle is disabled for every
// index, so only the seeded cache drives the result).
func TestSubsetPreferenceFourDemandsAreInfeasible(t *testing.T) {
	g := ch.Contract(buildUnitTriangle())
	paths := make([]oracle.Path, 4)
	for i := range paths {
		paths[i] = oracle.Path{S: 0, T: 1, TotalCosts: make([]float64, 4)}
	}
	ps := New(4, g, paths)

	for k := 0; k < 4; k++ {
		h := make([]float64, 4)
		for j := range h {
			h[j] = -0.3
		}
		h[k] = 0.7
		ps.constraints[k] = [][]float64{h}
		ps.SetNeedsOracle(k, false)
	}

	if _, ok := ps.SubsetPreference([]int{0, 1, 2, 3}); ok {
		t.Fatal("expected four 30%-share demands to be jointly infeasible")
	}
}

// TestSubsetPreferenceNoConstraintsFallsBackToEqualWeights checks that
// a subset with no cached constraint on any indexed path and no
// oracle to query substitutes the uniform preference and immediately
// accepts it (every query is skipped, so the aggregate Dif is
// vacuously zero). The substitution applies the same way for a
// single-path subset or a multi-path one: the original this is
// ported from (pref-polys' constrained_multi_path_preference) makes
// no single-vs-multi distinction here, and path_preference /
// multi_path_preference both funnel into it (DESIGN.md Open
// Question #2).
func TestSubsetPreferenceNoConstraintsFallsBackToEqualWeights(t *testing.T) {
	g := ch.Contract(buildUnitTriangle())
	paths := []oracle.Path{
		{S: 0, T: 1, TotalCosts: []float64{1, 0, 0}},
		{S: 0, T: 1, TotalCosts: []float64{0, 1, 0}},
	}
	ps := New(3, g, paths)
	ps.SetNeedsOracle(0, false)
	ps.SetNeedsOracle(1, false)

	alpha, ok := ps.SubsetPreference([]int{0, 1})
	if !ok {
		t.Fatal("expected the equal-weights fallback to be accepted")
	}
	want := 1.0 / 3.0
	for _, a := range alpha {
		if a < want-1e-9 || a > want+1e-9 {
			t.Errorf("alpha = %v, want uniform %v", alpha, want)
		}
	}
}

// TestSubsetPreferenceAgreesWithOracleLoop drives the real oracle loop
// (no cached constraints, oracle enabled) over two paths on the unit
// triangle that are both optimal near the interior of the simplex,
// and checks the returned alpha is genuinely optimal for both.
func TestSubsetPreferenceAgreesWithOracleLoop(t *testing.T) {
	g := ch.Contract(buildUnitTriangle())
	paths := []oracle.Path{
		{S: 0, T: 1, TotalCosts: []float64{1, 0, 0}},
		{S: 0, T: 1, TotalCosts: []float64{0, 1, 0}},
	}
	ps := New(3, g, paths)

	alpha, ok := ps.SubsetPreference([]int{0, 1})
	if !ok {
		t.Fatal("expected a feasible common preference")
	}
	for i, p := range paths {
		res, ok := oracle.Query(g, ps.qs, p, alpha)
		if !ok {
			t.Fatalf("path %d: expected a reachable route", i)
		}
		if res.Dif > 1e-6 {
			t.Errorf("path %d: alpha %v is not actually optimal, Dif=%v", i, alpha, res.Dif)
		}
	}
}

// TestApproximatePrefSpacesFeedsYesFilter checks that after running
// the direction schedule, two identical paths (both the (1,0,0) edge)
// pick up inner points whose hulls cover the same region, so the
// cheap yes-filter finds a common preference without falling back to
// the oracle loop.
func TestApproximatePrefSpacesFeedsYesFilter(t *testing.T) {
	g := ch.Contract(buildUnitTriangle())
	paths := []oracle.Path{
		{S: 0, T: 1, TotalCosts: []float64{1, 0, 0}},
		{S: 0, T: 1, TotalCosts: []float64{1, 0, 0}},
	}
	ps := New(3, g, paths)

	ps.ApproximatePrefSpaces(approx.AxisDirections(2))

	for i := range paths {
		if len(ps.innerPoints[i]) == 0 {
			t.Fatalf("path %d: expected at least one cached inner point", i)
		}
	}

	alpha, ok := ps.yesFilter([]int{0, 1})
	if !ok {
		t.Fatal("expected the yes-filter to find a shared point for two identical paths")
	}
	for i, p := range paths {
		res, ok := oracle.Query(g, ps.qs, p, alpha)
		if !ok {
			t.Fatalf("path %d: expected a reachable route", i)
		}
		if res.Dif > 1e-6 {
			t.Errorf("path %d: yes-filter alpha %v is not optimal, Dif=%v", i, alpha, res.Dif)
		}
	}
}
