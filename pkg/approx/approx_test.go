package approx

import (
	"math"
	"math/rand"
	"testing"

	"prefregion/pkg/ch"
	"prefregion/pkg/chdijkstra"
	"prefregion/pkg/geom2d"
	"prefregion/pkg/graph"
	"prefregion/pkg/oracle"
)

// buildUnitTriangle mirrors spec.md Scenario A's fixture: two nodes,
// three parallel edges of cost (1,0,0), (0,1,0), (0,0,1).
func buildUnitTriangle() *graph.Graph {
	edges := []graph.RawEdge{
		{Src: 0, Tgt: 1, Costs: []float64{1, 0, 0}},
		{Src: 0, Tgt: 1, Costs: []float64{0, 1, 0}},
		{Src: 0, Tgt: 1, Costs: []float64{0, 0, 1}},
	}
	return graph.Build(2, 3, edges)
}

func TestAxisDirectionsCount(t *testing.T) {
	dirs := AxisDirections(2)
	if len(dirs) != 4 {
		t.Fatalf("got %d directions, want 4", len(dirs))
	}
	for _, d := range dirs {
		if len(d) != 2 {
			t.Fatalf("direction has wrong length: %v", d)
		}
	}
}

// TestRotationDirectionsPreserveSeedNorm checks every rotated point
// keeps the same norm as the seed 0.5e_i+0.5e_j vector it rotates.
func TestRotationDirectionsPreserveSeedNorm(t *testing.T) {
	dirs := RotationDirections(2, 4)
	wantNorm := math.Sqrt(0.5)
	for i, d := range dirs {
		var sumSq float64
		for _, v := range d {
			sumSq += v * v
		}
		norm := math.Sqrt(sumSq)
		if math.Abs(norm-wantNorm) > 1e-9 {
			t.Errorf("direction %d: norm = %v, want %v", i, norm, wantNorm)
		}
	}
}

func TestRandomDirectionsOnSimplex(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	dirs := RandomDirections(2, 5, rng)
	if len(dirs) != 10 {
		t.Fatalf("got %d directions, want 10", len(dirs))
	}
	for i := 0; i < 5; i++ {
		p := dirs[2*i]
		neg := dirs[2*i+1]
		sum := 0.0
		for k, v := range p {
			if v < -1e-12 {
				t.Errorf("point %v has negative component", p)
			}
			if -neg[k] != v {
				t.Errorf("negation mismatch: %v vs %v", p, neg)
			}
			sum += v
		}
		if sum > 1+1e-9 {
			t.Errorf("point %v sums to %v, want <= 1", p, sum)
		}
	}
}

// TestApproxFindsInnerPointsOnUnitTriangle drives the axis direction
// schedule over the (1,0,0) path's region and checks every accepted
// inner point is genuinely optimal (Dif <= eps) and every direction
// produced one.
func TestApproxFindsInnerPointsOnUnitTriangle(t *testing.T) {
	g := ch.Contract(buildUnitTriangle())
	qs := chdijkstra.NewQueryState(g.NumNodes)

	p := oracle.Path{S: 0, T: 1, TotalCosts: []float64{1, 0, 0}}
	a := New(3, g, qs)

	dirs := AxisDirections(2)
	sa := a.Approx(p, dirs)

	if len(sa.InnerPoints) != len(dirs) {
		t.Fatalf("got %d inner points, want %d (one per direction)", len(sa.InnerPoints), len(dirs))
	}
	for _, alpha := range sa.InnerPoints {
		res, ok := oracle.Query(g, qs, p, alpha)
		if !ok {
			t.Fatal("expected a reachable path")
		}
		if res.Dif > 1e-6 {
			t.Errorf("inner point %v is not actually optimal: Dif=%v", alpha, res.Dif)
		}
	}
}

func TestInnerAndOuterPolygonNonEmpty(t *testing.T) {
	g := ch.Contract(buildUnitTriangle())
	qs := chdijkstra.NewQueryState(g.NumNodes)

	p := oracle.Path{S: 0, T: 1, TotalCosts: []float64{1, 0, 0}}
	a := New(3, g, qs)

	sa := a.Approx(p, RotationDirections(2, 6))
	if len(sa.InnerPoints) == 0 {
		t.Fatal("expected at least one inner point")
	}

	inner := InnerPolygon(sa)
	if len(inner) == 0 {
		t.Error("expected a non-empty inner polygon")
	}

	outer := OuterPolygon(sa)
	if len(outer) == 0 {
		t.Error("expected a non-empty outer polygon")
	}

	// Every inner vertex must lie within [0,1]^2 in reduced coords.
	for _, pt := range inner {
		if pt.Point[0] < -1e-9 || pt.Point[0] > 1+1e-9 || pt.Point[1] < -1e-9 || pt.Point[1] > 1+1e-9 {
			t.Errorf("inner vertex out of bounds: %v", pt.Point)
		}
	}

	assertCCW(t, "inner", inner)
	assertCCW(t, "outer", outer)
}

// assertCCW checks that sortAndDedupPolygon actually emitted vertices
// in non-decreasing angle order around their centroid, per spec.md
// §4.6's requirement that InnerPolygon/OuterPolygon come out CCW.
func assertCCW(t *testing.T, label string, pts []ApproxPoint) {
	t.Helper()
	if len(pts) < 2 {
		return
	}
	points := make([][]float64, len(pts))
	for i, p := range pts {
		points[i] = p.Point
	}
	center := geom2d.CenterPoint(points)
	prev := geom2d.Angle(pts[0].Point, center)
	for i := 1; i < len(pts); i++ {
		a := geom2d.Angle(pts[i].Point, center)
		if a < prev-1e-9 {
			t.Errorf("%s polygon not CCW-sorted: vertex %d angle %v < previous %v", label, i, a, prev)
		}
		prev = a
	}
}
