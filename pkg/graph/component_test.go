package graph

import "testing"

func TestLargestComponent(t *testing.T) {
	// A triangle {0,1,2} and a single edge {3,4}, disconnected.
	edges := []RawEdge{
		{Src: 0, Tgt: 1, Costs: []float64{1}},
		{Src: 1, Tgt: 2, Costs: []float64{1}},
		{Src: 2, Tgt: 0, Costs: []float64{1}},
		{Src: 3, Tgt: 4, Costs: []float64{1}},
	}
	g := Build(5, 1, edges)

	nodes := LargestComponent(g)
	if len(nodes) != 3 {
		t.Fatalf("largest component size = %d, want 3", len(nodes))
	}
	seen := map[uint32]bool{}
	for _, n := range nodes {
		seen[n] = true
	}
	for _, n := range []uint32{0, 1, 2} {
		if !seen[n] {
			t.Errorf("expected node %d in largest component", n)
		}
	}
}

func TestUnionFind(t *testing.T) {
	uf := NewUnionFind(4)
	if !uf.Union(0, 1) {
		t.Fatal("expected union to merge distinct sets")
	}
	if uf.Union(0, 1) {
		t.Fatal("expected second union of same set to report false")
	}
	if uf.Find(0) != uf.Find(1) {
		t.Fatal("0 and 1 should be in the same set")
	}
	if uf.Find(0) == uf.Find(2) {
		t.Fatal("0 and 2 should be in different sets")
	}
}
