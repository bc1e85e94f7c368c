package ch

import (
	"math"
	"testing"

	"prefregion/pkg/graph"
)

// buildTestGraph creates a small bidirectional grid graph with
// 2-dimensional costs for testing:
//
//	0 ---(100,1)--- 1 ---(200,1)--- 2
//	|                               |
//	(300,1)                    (400,1)
//	|                               |
//	3 ---(500,1)--- 4 ---(600,1)--- 5
func buildTestGraph() *graph.Graph {
	edges := []graph.RawEdge{
		{Src: 0, Tgt: 1, Costs: []float64{100, 1}},
		{Src: 1, Tgt: 0, Costs: []float64{100, 1}},
		{Src: 1, Tgt: 2, Costs: []float64{200, 1}},
		{Src: 2, Tgt: 1, Costs: []float64{200, 1}},
		{Src: 0, Tgt: 3, Costs: []float64{300, 1}},
		{Src: 3, Tgt: 0, Costs: []float64{300, 1}},
		{Src: 2, Tgt: 5, Costs: []float64{400, 1}},
		{Src: 5, Tgt: 2, Costs: []float64{400, 1}},
		{Src: 3, Tgt: 4, Costs: []float64{500, 1}},
		{Src: 4, Tgt: 3, Costs: []float64{500, 1}},
		{Src: 4, Tgt: 5, Costs: []float64{600, 1}},
		{Src: 5, Tgt: 4, Costs: []float64{600, 1}},
	}
	return graph.Build(6, 2, edges)
}

// plainTotalCost runs scalar Dijkstra on the original graph using the
// sum of all cost dimensions as edge weight.
func plainTotalCost(g *graph.Graph, source, target uint32) float64 {
	dist := make([]float64, g.NumNodes)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[source] = 0
	visited := make([]bool, g.NumNodes)

	for {
		u, best := uint32(0), math.Inf(1)
		found := false
		for i := uint32(0); i < g.NumNodes; i++ {
			if !visited[i] && dist[i] < best {
				u, best, found = i, dist[i], true
			}
		}
		if !found || u == target {
			break
		}
		visited[u] = true
		for _, e := range g.OutEdges(u) {
			v := g.EdgeTgt[e]
			var w float64
			for _, c := range g.Costs(e) {
				w += c
			}
			if nd := dist[u] + w; nd < dist[v] {
				dist[v] = nd
			}
		}
	}
	return dist[target]
}

// chTotalCost runs a level-pruned bidirectional Dijkstra over the
// contracted graph (forward search follows only out-edges to a
// higher-level node, backward search follows only in-edges from a
// higher-level node), matching the CH query pruning rule.
func chTotalCost(g *graph.Graph, source, target uint32) float64 {
	distFwd := make([]float64, g.NumNodes)
	distBwd := make([]float64, g.NumNodes)
	for i := range distFwd {
		distFwd[i] = math.Inf(1)
		distBwd[i] = math.Inf(1)
	}
	distFwd[source] = 0
	distBwd[target] = 0
	settledFwd := make([]bool, g.NumNodes)
	settledBwd := make([]bool, g.NumNodes)

	weight := func(e uint32) float64 {
		var w float64
		for _, c := range g.Costs(e) {
			w += c
		}
		return w
	}

	popMin := func(dist []float64, settled []bool) (uint32, bool) {
		u, best, found := uint32(0), math.Inf(1), false
		for i := uint32(0); i < g.NumNodes; i++ {
			if !settled[i] && dist[i] < best {
				u, best, found = i, dist[i], true
			}
		}
		return u, found
	}

	best := math.Inf(1)
	for {
		fu, fok := popMin(distFwd, settledFwd)
		bu, bok := popMin(distBwd, settledBwd)
		if !fok && !bok {
			break
		}
		if fok && distFwd[fu] < best {
			settledFwd[fu] = true
			if !math.IsInf(distBwd[fu], 1) && distFwd[fu]+distBwd[fu] < best {
				best = distFwd[fu] + distBwd[fu]
			}
			for _, e := range g.OutEdges(fu) {
				v := g.EdgeTgt[e]
				if g.Level[v] < g.Level[fu] {
					continue
				}
				if nd := distFwd[fu] + weight(e); nd < distFwd[v] {
					distFwd[v] = nd
				}
			}
		}
		if bok && distBwd[bu] < best {
			settledBwd[bu] = true
			if !math.IsInf(distFwd[bu], 1) && distFwd[bu]+distBwd[bu] < best {
				best = distFwd[bu] + distBwd[bu]
			}
			for _, e := range g.InEdges(bu) {
				u := g.EdgeSrc[e]
				if g.Level[u] < g.Level[bu] {
					continue
				}
				if nd := distBwd[bu] + weight(e); nd < distBwd[u] {
					distBwd[u] = nd
				}
			}
		}
		if (!fok || distFwd[fu] >= best) && (!bok || distBwd[bu] >= best) {
			break
		}
	}
	return best
}

func TestContractAssignsPermutationLevels(t *testing.T) {
	g := buildTestGraph()
	ch := Contract(g)

	if ch.NumNodes != 6 {
		t.Fatalf("got %d nodes, want 6", ch.NumNodes)
	}
	seen := make(map[uint32]bool)
	for _, l := range ch.Level {
		if l >= ch.NumNodes {
			t.Errorf("level %d >= NumNodes %d", l, ch.NumNodes)
		}
		seen[l] = true
	}
	if len(seen) != int(ch.NumNodes) {
		t.Errorf("levels are not a permutation: %d unique of %d", len(seen), ch.NumNodes)
	}
}

func TestContractPreservesShortestPaths(t *testing.T) {
	g := buildTestGraph()
	ch := Contract(g)

	for s := uint32(0); s < g.NumNodes; s++ {
		for d := uint32(0); d < g.NumNodes; d++ {
			if s == d {
				continue
			}
			want := plainTotalCost(g, s, d)
			got := chTotalCost(ch, s, d)
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("s=%d d=%d: CH=%v, plain=%v", s, d, got, want)
			}
		}
	}
}

func TestContractEmptyGraph(t *testing.T) {
	g := graph.Build(0, 1, nil)
	ch := Contract(g)
	if ch.NumNodes != 0 {
		t.Errorf("got %d nodes, want 0", ch.NumNodes)
	}
}

func TestContractLinearChain(t *testing.T) {
	edges := []graph.RawEdge{
		{Src: 0, Tgt: 1, Costs: []float64{100}},
		{Src: 1, Tgt: 2, Costs: []float64{200}},
		{Src: 2, Tgt: 3, Costs: []float64{300}},
		{Src: 3, Tgt: 4, Costs: []float64{400}},
	}
	g := graph.Build(5, 1, edges)
	ch := Contract(g)

	got := chTotalCost(ch, 0, 4)
	want := 1000.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("linear chain: got %v, want %v", got, want)
	}
}
