package graph

import "testing"

func TestBuildTriangleGraph(t *testing.T) {
	edges := []RawEdge{
		{Src: 0, Tgt: 1, Costs: []float64{1, 0, 0}},
		{Src: 1, Tgt: 2, Costs: []float64{0, 1, 0}},
		{Src: 2, Tgt: 0, Costs: []float64{0, 0, 1}},
	}
	g := Build(3, 3, edges)

	if g.NumNodes != 3 {
		t.Fatalf("NumNodes = %d, want 3", g.NumNodes)
	}
	if g.NumEdges != 3 {
		t.Fatalf("NumEdges = %d, want 3", g.NumEdges)
	}
	for i := uint32(0); i < g.NumNodes; i++ {
		if len(g.OutEdges(i)) != 1 {
			t.Errorf("node %d has %d out-edges, want 1", i, len(g.OutEdges(i)))
		}
		if len(g.InEdges(i)) != 1 {
			t.Errorf("node %d has %d in-edges, want 1", i, len(g.InEdges(i)))
		}
	}
}

func TestBuildEmptyGraph(t *testing.T) {
	g := Build(0, 3, nil)
	if g.NumNodes != 0 || g.NumEdges != 0 {
		t.Errorf("got (%d,%d), want (0,0)", g.NumNodes, g.NumEdges)
	}
}

func TestBuildCSRInvariants(t *testing.T) {
	edges := []RawEdge{
		{Src: 0, Tgt: 1, Costs: []float64{1, 0}},
		{Src: 0, Tgt: 2, Costs: []float64{2, 0}},
		{Src: 0, Tgt: 3, Costs: []float64{3, 0}},
		{Src: 1, Tgt: 0, Costs: []float64{1, 0}},
	}
	g := Build(4, 2, edges)

	if g.NumEdges != 4 {
		t.Fatalf("NumEdges = %d, want 4", g.NumEdges)
	}
	for i := uint32(1); i <= g.NumNodes; i++ {
		if g.OutFirst[i] < g.OutFirst[i-1] {
			t.Errorf("OutFirst not monotonic at %d", i)
		}
	}
	if g.OutFirst[g.NumNodes] != g.NumEdges {
		t.Errorf("OutFirst[last]=%d != NumEdges=%d", g.OutFirst[g.NumNodes], g.NumEdges)
	}
	for _, v := range g.EdgeTgt {
		if v >= g.NumNodes {
			t.Errorf("EdgeTgt=%d >= NumNodes=%d", v, g.NumNodes)
		}
	}
}

func TestSortAdjacencyByLevel(t *testing.T) {
	edges := []RawEdge{
		{Src: 0, Tgt: 1, Costs: []float64{1}},
		{Src: 0, Tgt: 2, Costs: []float64{1}},
		{Src: 0, Tgt: 3, Costs: []float64{1}},
	}
	g := Build(4, 1, edges)
	g.Level[1] = 1
	g.Level[2] = 5
	g.Level[3] = 3
	g.SortAdjacencyByLevel()

	out := g.OutEdges(0)
	var levels []uint32
	for _, e := range out {
		levels = append(levels, g.Level[g.EdgeTgt[e]])
	}
	for i := 1; i < len(levels); i++ {
		if levels[i] > levels[i-1] {
			t.Fatalf("levels not descending: %v", levels)
		}
	}
}
