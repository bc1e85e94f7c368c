// Package region computes the exact preference polygon of a single
// path in the 2-simplex (d=3): an ordered ring of hull corners, each
// the intersection of two halfspace constraints discovered by
// repeated oracle queries, refined one violating corner at a time.
package region

import (
	"prefregion/pkg/chdijkstra"
	"prefregion/pkg/graph"
	"prefregion/pkg/oracle"
)

// precision classifies constraint dot-product signs during region
// construction. Deliberately distinct from numutil.Accuracy (see
// spec §9 and DESIGN.md): this builder works in exact corner
// coordinates where a tighter threshold is safe.
const precision = 1e-8

// Corner is a vertex of the current hull ring (or a vertex that has
// since been cut away but is still addressable by its old index —
// only hullIndices says which corners are currently on the ring).
type Corner struct {
	Coords     []float64
	Checked    bool
	Neighbor   [2]int // indices into Builder.corners
	Constraint [2]int // indices into Builder.constraints
}

// Builder accumulates the cutting-plane construction for one path.
type Builder struct {
	corners     []Corner
	hullIndices []int
	constraints [][]float64 // each a -≤0 oriented halfspace normal, length 3
	oracleCalls int
}

// New initializes the region with the simplex corners (1,0,0),
// (0,1,0), (0,0,1) connected cyclically and the three simplex-side
// constraints -α_i ≤ 0.
func New() *Builder {
	b := &Builder{}
	for i := 0; i < 3; i++ {
		constraint := make([]float64, 3)
		constraint[i] = -1
		b.constraints = append(b.constraints, constraint)

		coords := make([]float64, 3)
		coords[i] = 1
		b.corners = append(b.corners, Corner{
			Coords:     coords,
			Neighbor:   [2]int{(i + 1) % 3, (i + 2) % 3},
			Constraint: [2]int{(i + 2) % 3, (i + 1) % 3},
		})
		b.hullIndices = append(b.hullIndices, i)
	}
	return b
}

// OracleCalls reports how many oracle queries the build consumed.
func (b *Builder) OracleCalls() int { return b.oracleCalls }

// Build runs the cutting-plane loop for path p against g, querying
// the separation oracle at each unchecked hull corner until every
// hull corner is checked.
func Build(g *graph.Graph, qs *chdijkstra.QueryState, p oracle.Path) *Builder {
	b := New()

	hullPos := 0
	for hullPos < len(b.hullIndices) {
		cornerIdx := b.hullIndices[hullPos]
		corner := &b.corners[cornerIdx]

		result, ok := oracle.Query(g, qs, p, corner.Coords)
		b.oracleCalls++
		corner.Checked = true

		if !ok {
			// Unreachable under this preference: treat as no
			// violation (nothing to cut) and move on.
			hullPos = b.nextUnchecked(hullPos)
			continue
		}

		// Δc = c_P - c_best = -(oracle's c_best - c_P).
		deltaC := make([]float64, len(result.Constraint))
		for i, c := range result.Constraint {
			deltaC[i] = -c
		}

		if result.Dif <= precision {
			hullPos = b.nextUnchecked(hullPos)
			continue
		}

		b.cut(cornerIdx, deltaC)
		hullPos = b.nextUnchecked(0)
	}

	return b
}

func (b *Builder) nextUnchecked(from int) int {
	i := from
	for i < len(b.hullIndices) && b.corners[b.hullIndices[i]].Checked {
		i++
	}
	return i
}

// cut adds deltaC as a new constraint, removes every hull corner it
// violates, and stitches in up to two new boundary corners where the
// cut crosses the hull ring.
func (b *Builder) cut(cornerIdx int, deltaC []float64) {
	dotProducts := make([]float64, len(b.corners))
	var newHull []int
	for _, hi := range b.hullIndices {
		dotProducts[hi] = dot(deltaC, b.corners[hi].Coords)
		if dotProducts[hi] <= precision {
			newHull = append(newHull, hi)
		}
	}
	b.constraints = append(b.constraints, deltaC)
	constraintIdx := len(b.constraints) - 1

	indexA := len(b.corners)
	indexB := len(b.corners) + 1

	// Walk neighbor[0] from the violating corner until the first
	// retained (non-violating) corner.
	firstIn := cornerIdx
	for dotProducts[firstIn] > precision {
		firstIn = b.corners[firstIn].Neighbor[0]
	}
	if dotProducts[firstIn] >= 0 || -dotProducts[firstIn] <= precision {
		indexA = firstIn
		indexB = len(b.corners)
	} else {
		outIndex := b.corners[firstIn].Neighbor[1]
		newCorner := Corner{
			Neighbor:   [2]int{firstIn, indexB},
			Constraint: [2]int{b.corners[firstIn].Constraint[1], constraintIdx},
			Coords:     interpolate(b.corners[firstIn].Coords, b.corners[outIndex].Coords, dotProducts[firstIn], dotProducts[outIndex]),
		}
		b.corners[firstIn].Neighbor[1] = indexA
		b.corners = append(b.corners, newCorner)
		newHull = append(newHull, indexA)
	}

	// Walk neighbor[1] from the violating corner until the first
	// retained corner, symmetrically.
	firstIn = cornerIdx
	for dotProducts[firstIn] > precision {
		firstIn = b.corners[firstIn].Neighbor[1]
	}
	if dotProducts[firstIn] >= 0 || -dotProducts[firstIn] <= precision {
		indexB = firstIn
	} else {
		outIndex := b.corners[firstIn].Neighbor[0]
		newCorner := Corner{
			Neighbor:   [2]int{indexA, firstIn},
			Constraint: [2]int{constraintIdx, b.corners[firstIn].Constraint[0]},
			Coords:     interpolate(b.corners[firstIn].Coords, b.corners[outIndex].Coords, dotProducts[firstIn], dotProducts[outIndex]),
		}
		b.corners[firstIn].Neighbor[0] = indexB
		b.corners = append(b.corners, newCorner)
		newHull = append(newHull, indexB)
	}

	b.corners[indexB].Neighbor[0] = indexA
	b.corners[indexB].Constraint[0] = constraintIdx
	b.corners[indexA].Neighbor[1] = indexB
	b.corners[indexA].Constraint[1] = constraintIdx

	b.hullIndices = newHull
}

// interpolate finds the boundary point between a retained corner
// (dotIn <= 0) and its violating neighbor (dotOut > 0) by linear
// interpolation along the edge connecting them.
func interpolate(in, out []float64, dotIn, dotOut float64) []float64 {
	p := dotOut / (dotOut - dotIn)
	coords := make([]float64, len(in))
	for i := range in {
		coords[i] = p*in[i] + (1-p)*out[i]
	}
	return coords
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Vertices returns the hull ring's corner coordinates in order.
func (b *Builder) Vertices() [][]float64 {
	out := make([][]float64, len(b.hullIndices))
	for i, hi := range b.hullIndices {
		out[i] = b.corners[hi].Coords
	}
	return out
}

// Intersections returns, for each hull corner in ring order, the pair
// of constraints whose intersection defines it.
func (b *Builder) Intersections() [][2][]float64 {
	out := make([][2][]float64, 0, len(b.hullIndices))
	if len(b.hullIndices) == 0 {
		return out
	}
	first := b.hullIndices[0]
	idx := first
	for {
		c := b.corners[idx]
		out = append(out, [2][]float64{b.constraints[c.Constraint[0]], b.constraints[c.Constraint[1]]})
		idx = c.Neighbor[0]
		if idx == first {
			break
		}
	}
	return out
}

// Constraints returns every constraint accumulated during the build,
// including the three initial simplex sides.
func (b *Builder) Constraints() [][]float64 { return b.constraints }

// Contains reports whether alpha satisfies every accumulated
// constraint (c·alpha ≤ precision).
func (b *Builder) Contains(alpha []float64) bool {
	for _, c := range b.constraints {
		if dot(c, alpha) > precision {
			return false
		}
	}
	return true
}
