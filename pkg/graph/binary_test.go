package graph

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadBinaryRoundTrip(t *testing.T) {
	edges := []RawEdge{
		{Src: 0, Tgt: 1, Costs: []float64{1, 0, 0}},
		{Src: 1, Tgt: 2, Costs: []float64{0, 1, 0}},
		{Src: 2, Tgt: 0, Costs: []float64{0, 0, 1}},
	}
	g := Build(3, 3, edges)
	g.Level = []uint32{2, 1, 0}
	g.SortAdjacencyByLevel()

	path := filepath.Join(t.TempDir(), "graph.bin")
	if err := WriteBinary(path, g); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}

	got, err := ReadBinary(path)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}

	if got.NumNodes != g.NumNodes || got.NumEdges != g.NumEdges || got.Dim != g.Dim {
		t.Fatalf("got %+v, want sizes %d/%d/%d", got, g.NumNodes, g.NumEdges, g.Dim)
	}
	for i := range g.Level {
		if got.Level[i] != g.Level[i] {
			t.Errorf("Level[%d] = %d, want %d", i, got.Level[i], g.Level[i])
		}
	}
	for e := uint32(0); e < g.NumEdges; e++ {
		wantCosts := g.Costs(e)
		gotCosts := got.Costs(e)
		for k := range wantCosts {
			if gotCosts[k] != wantCosts[k] {
				t.Errorf("edge %d cost[%d] = %v, want %v", e, k, gotCosts[k], wantCosts[k])
			}
		}
	}
}

func TestReadBinaryRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	if err := WriteBinary(path, Build(2, 1, []RawEdge{{Src: 0, Tgt: 1, Costs: []float64{1}}})); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	// Flip a byte to break the CRC.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data[len(data)-1] ^= 0xFF
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadBinary(path); err == nil {
		t.Fatal("expected CRC mismatch error")
	}
}
