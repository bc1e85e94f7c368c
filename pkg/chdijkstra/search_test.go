package chdijkstra

import (
	"math"
	"testing"

	"prefregion/pkg/ch"
	"prefregion/pkg/graph"
)

// buildTestGraph mirrors the grid fixture used in pkg/ch's contractor
// tests: a 6-node bidirectional grid with 2-dimensional costs.
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

// plainDijkstra runs a non-CH scalar Dijkstra under alpha for a
// baseline to compare the CH result's dot product against (spec.md
// Scenario C: CH total cost equals non-CH Dijkstra within eps).
func plainDijkstra(g *graph.Graph, source, target uint32, alpha []float64) float64 {
	dist := make([]float64, g.NumNodes)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[source] = 0
	visited := make([]bool, g.NumNodes)

	for {
		u, best, found := uint32(0), math.Inf(1), false
		for i := uint32(0); i < g.NumNodes; i++ {
			if !visited[i] && dist[i] < best {
				u, best, found = i, dist[i], true
			}
		}
		if !found {
			break
		}
		visited[u] = true
		for _, e := range g.OutEdges(u) {
			v := g.EdgeTgt[e]
			if nd := dist[u] + dot(alpha, g.Costs(e)); nd < dist[v] {
				dist[v] = nd
			}
		}
	}
	return dist[target]
}

func TestCHDijkstraMatchesPlainDijkstra(t *testing.T) {
	g := buildTestGraph()
	chg := ch.Contract(g)

	alphas := [][]float64{
		{1, 0},
		{0, 1},
		{0.5, 0.5},
		{0.25, 0.75},
	}

	for _, alpha := range alphas {
		qs := NewQueryState(chg.NumNodes)
		for s := uint32(0); s < chg.NumNodes; s++ {
			for d := uint32(0); d < chg.NumNodes; d++ {
				if s == d {
					continue
				}
				want := plainDijkstra(g, s, d, alpha)
				result, ok := Run(chg, qs, s, d, alpha)
				if !ok {
					t.Errorf("alpha=%v s=%d d=%d: Run returned not-ok, want reachable", alpha, s, d)
					continue
				}
				if math.Abs(result.DotProduct-want) > 1e-6 {
					t.Errorf("alpha=%v s=%d d=%d: CH=%v, plain=%v", alpha, s, d, result.DotProduct, want)
				}
			}
		}
	}
}

func TestCHDijkstraUnreachableReturnsNotOK(t *testing.T) {
	edges := []graph.RawEdge{
		{Src: 0, Tgt: 1, Costs: []float64{1}},
	}
	g := graph.Build(3, 1, edges) // node 2 is isolated
	chg := ch.Contract(g)

	qs := NewQueryState(chg.NumNodes)
	_, ok := Run(chg, qs, 0, 2, []float64{1})
	if ok {
		t.Fatal("expected unreachable target to report not-ok")
	}
}

func TestCHDijkstraUnpacksShortcuts(t *testing.T) {
	g := buildTestGraph()
	chg := ch.Contract(g)

	qs := NewQueryState(chg.NumNodes)
	result, ok := Run(chg, qs, 0, 5, []float64{1, 0})
	if !ok {
		t.Fatal("expected a path from 0 to 5")
	}
	for _, e := range result.Edges {
		if e1, e2, isShortcut := chg.IsShortcut(e); isShortcut {
			t.Errorf("unpacked path still contains shortcut edge %d (expands to %d,%d)", e, e1, e2)
		}
	}
	// Unpacked edges must chain src->tgt from 0 to 5.
	node := uint32(0)
	for _, e := range result.Edges {
		if chg.EdgeSrc[e] != node {
			t.Fatalf("edge %d source %d != expected %d", e, chg.EdgeSrc[e], node)
		}
		node = chg.EdgeTgt[e]
	}
	if node != 5 {
		t.Fatalf("unpacked path ends at %d, want 5", node)
	}
}
