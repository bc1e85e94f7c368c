// Package prefset implements the SetPreferences façade (spec.md §4.7):
// it caches per-path constraints across repeated subset queries and
// answers "is there a preference under which every path in this
// subset is simultaneously optimal" as cheaply as the cache allows.
package prefset

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"prefregion/pkg/approx"
	"prefregion/pkg/bitset"
	"prefregion/pkg/chdijkstra"
	"prefregion/pkg/graph"
	"prefregion/pkg/lp"
	"prefregion/pkg/numutil"
	"prefregion/pkg/oracle"
	"prefregion/pkg/workerpool"
)

// PathSet holds a fixed set of paths together with the constraint and
// inner-point caches SubsetPreference accumulates between calls.
type PathSet struct {
	g   *graph.Graph
	qs  *chdijkstra.QueryState
	dim int

	paths []oracle.Path

	constraints [][][]float64 // per path, sorted+deduped halfspaces known to hold
	innerPoints [][][]float64 // per path, certified-interior preferences

	needsOracle *bitset.GrowingBitSet // paths SubsetPreference should still query
}

// New builds a PathSet over paths in a dim-dimensional preference
// space, every path initially flagged as needing the oracle.
func New(dim int, g *graph.Graph, paths []oracle.Path) *PathSet {
	ps := &PathSet{
		g:           g,
		qs:          chdijkstra.NewQueryState(g.NumNodes),
		dim:         dim,
		paths:       paths,
		constraints: make([][][]float64, len(paths)),
		innerPoints: make([][][]float64, len(paths)),
		needsOracle: bitset.NewGrowing(),
	}
	for i := range paths {
		ps.needsOracle.Add(i)
	}
	return ps
}

// NumPaths reports the size of the fixed path set.
func (ps *PathSet) NumPaths() int { return len(ps.paths) }

// Constraints returns the cached halfspaces known to hold for path i.
func (ps *PathSet) Constraints(i int) [][]float64 { return ps.constraints[i] }

// NeedsOracle reports whether path i is still flagged for oracle
// queries inside SubsetPreference's multi-path loop.
func (ps *PathSet) NeedsOracle(i int) bool { return ps.needsOracle.Contains(i) }

// SetNeedsOracle toggles path i's oracle flag; a caller that has
// already fully characterized a path's region can turn it off so
// further subset queries only replay its cached constraints.
func (ps *PathSet) SetNeedsOracle(i int, active bool) {
	if active {
		ps.needsOracle.Add(i)
	} else {
		ps.needsOracle.Remove(i)
	}
}

// ApproximatePrefSpaces fans the direction schedule out across every
// path in the set, one worker-pool job per path (spec.md §4.9), each
// seeded with that path's cached constraints, and folds the
// discovered inner points and halfspaces back into the caches so a
// later SubsetPreference can use the yes-filter.
func (ps *PathSet) ApproximatePrefSpaces(dirs []approx.Direction) []approx.SizeApproximation {
	results, _ := workerpool.Run(len(ps.paths), func(i int) (approx.SizeApproximation, error) {
		qs := chdijkstra.NewQueryState(ps.g.NumNodes)
		a := approx.New(ps.dim, ps.g, qs)
		return a.ConstrainedApprox(ps.paths[i], dirs, ps.constraints[i]), nil
	})
	for i, sa := range results {
		ps.innerPoints[i] = sa.InnerPoints
		ps.mergeIntoCache(i, sa.OuterConstraints)
	}
	return results
}

// SubsetPreference answers whether the paths named by indices share a
// common preference, per spec.md §4.7: a cheap yes-filter first, the
// multi-path oracle loop otherwise.
func (ps *PathSet) SubsetPreference(indices []int) ([]float64, bool) {
	if alpha, ok := ps.yesFilter(indices); ok {
		return alpha, true
	}
	return ps.multiPathOracleLoop(indices)
}

// yesFilter intersects the cached inner-point hulls of every indexed
// path; it only applies if every one of them has already accumulated
// at least one certified-interior point.
func (ps *PathSet) yesFilter(indices []int) ([]float64, bool) {
	pointSets := make([][][]float64, 0, len(indices))
	for _, i := range indices {
		if len(ps.innerPoints[i]) == 0 {
			return nil, false
		}
		pointSets = append(pointSets, ps.innerPoints[i])
	}
	res := lp.NewHullIntersection(ps.dim, pointSets).Solve(false)
	if !res.Feasible {
		return nil, false
	}
	return res.S, true
}

// multiPathOracleLoop seeds a feasibility LP with every cached
// constraint for the indexed paths, then alternates solving it and
// querying each still-active path's oracle until either every path
// agrees (aggregate Dif <= eps) or the loop can make no further
// progress. A constraint repeating on the same path escalates the
// next solve to exact simplex once; if it repeats again, the subset
// is declared infeasible.
func (ps *PathSet) multiPathOracleLoop(indices []int) ([]float64, bool) {
	feas := lp.NewFeasibility(ps.dim)
	noConstraints := true
	for _, i := range indices {
		for _, c := range ps.constraints[i] {
			feas.AddConstraint(c)
			noConstraints = false
		}
	}

	deltas := make(map[int][][]float64, len(indices))

	exact := false
	escalated := false
	for {
		res := feas.Solve(exact)
		exact = false

		var alpha []float64
		if res.Solved {
			if res.Delta+numutil.Accuracy < 0 {
				return nil, false
			}
			alpha = res.Alpha
		} else if noConstraints {
			// No constraint on any indexed path yet (cache empty, LP has
			// nothing to rule out with): seed the loop with the uniform
			// preference and let the oracle queries below either accept
			// it or start constraining it, same for one path or many
			// (DESIGN.md Open Question #2; confirmed against the
			// original, which makes no single-vs-multi distinction here).
			alpha = numutil.EqualWeights(ps.dim)
			noConstraints = false
		} else {
			return nil, false
		}

		sumDif := 0.0
		anyNewConstraint := false
		repeating := false
		for _, i := range indices {
			if !ps.needsOracle.Contains(i) {
				continue
			}
			result, ok := oracle.Query(ps.g, ps.qs, ps.paths[i], alpha)
			if !ok {
				continue
			}
			sumDif += result.Dif
			if numutil.AbsDiffLE(result.Dif, 0, numutil.Accuracy) {
				continue
			}
			feas.AddConstraint(result.Constraint)
			last := deltas[i]
			if len(last) > 0 && floats.Equal(last[len(last)-1], result.Constraint) {
				repeating = true
				continue
			}
			deltas[i] = append(last, append([]float64(nil), result.Constraint...))
			anyNewConstraint = true
		}

		if repeating {
			if escalated {
				ps.mergeDeltas(deltas)
				return nil, false
			}
			escalated = true
			exact = true
			continue
		}
		escalated = false

		if sumDif-numutil.Accuracy <= 0 {
			ps.mergeDeltas(deltas)
			return alpha, true
		}
		if !anyNewConstraint {
			ps.mergeDeltas(deltas)
			return nil, false
		}
	}
}

func (ps *PathSet) mergeDeltas(deltas map[int][][]float64) {
	for i, d := range deltas {
		if len(d) > 0 {
			ps.mergeIntoCache(i, d)
		}
	}
}

// mergeIntoCache appends additions to path i's constraint cache, then
// sorts and dedups the whole cache lexicographically, matching the
// original's sort_by/dedup_by merge step.
func (ps *PathSet) mergeIntoCache(i int, additions [][]float64) {
	if len(additions) == 0 {
		return
	}
	cache := append(ps.constraints[i], additions...)
	sort.Slice(cache, func(a, b int) bool {
		return lexLess(cache[a], cache[b])
	})
	ps.constraints[i] = dedupRows(cache)
}

func lexLess(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func dedupRows(rows [][]float64) [][]float64 {
	if len(rows) == 0 {
		return rows
	}
	out := rows[:1]
	for _, r := range rows[1:] {
		if floats.Equal(out[len(out)-1], r) {
			continue
		}
		out = append(out, r)
	}
	return out
}
