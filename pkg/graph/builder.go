package graph

import "sort"

// RawEdge is a single directed edge with dense node indices and a
// d-dimensional cost vector, as produced by any graph source (the
// minimal text format, an OSM import, or a test fixture) before CH
// contraction assigns levels and shortcuts.
type RawEdge struct {
	Src, Tgt uint32
	Costs    []float64
}

// Build creates a CSR Graph from a dense-indexed raw edge list. The
// returned graph has every node at Level 0 and no shortcuts; ch.Contract
// assigns levels, inserts shortcuts, and re-sorts the adjacency by
// level for querying.
func Build(numNodes uint32, dim int, edges []RawEdge) *Graph {
	numEdges := uint32(len(edges))

	sorted := make([]RawEdge, len(edges))
	copy(sorted, edges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Src != sorted[j].Src {
			return sorted[i].Src < sorted[j].Src
		}
		return sorted[i].Tgt < sorted[j].Tgt
	})

	edgeSrc := make([]uint32, numEdges)
	edgeTgt := make([]uint32, numEdges)
	edgeCosts := make([]float64, int(numEdges)*dim)
	shortcut1 := make([]int32, numEdges)
	shortcut2 := make([]int32, numEdges)

	outFirst := make([]uint32, numNodes+1)
	outEdge := make([]uint32, numEdges)

	for i, e := range sorted {
		edgeSrc[i] = e.Src
		edgeTgt[i] = e.Tgt
		copy(edgeCosts[i*dim:i*dim+dim], e.Costs)
		shortcut1[i] = NoShortcut
		shortcut2[i] = NoShortcut
		outEdge[i] = uint32(i)
		outFirst[e.Src+1]++
	}
	for i := uint32(1); i <= numNodes; i++ {
		outFirst[i] += outFirst[i-1]
	}

	g := &Graph{
		NumNodes:  numNodes,
		NumEdges:  numEdges,
		Dim:       dim,
		Level:     make([]uint32, numNodes),
		EdgeSrc:   edgeSrc,
		EdgeTgt:   edgeTgt,
		EdgeCosts: edgeCosts,
		Shortcut1: shortcut1,
		Shortcut2: shortcut2,
		OutFirst:  outFirst,
		OutEdge:   outEdge,
	}
	g.rebuildInAdjacency()
	return g
}

// rebuildInAdjacency rebuilds InFirst/InEdge from EdgeSrc/EdgeTgt,
// unsorted by level (callers that need level-sorted adjacency call
// SortAdjacencyByLevel after assigning Level).
func (g *Graph) rebuildInAdjacency() {
	g.InFirst = make([]uint32, g.NumNodes+1)
	g.InEdge = make([]uint32, g.NumEdges)
	for e := uint32(0); e < g.NumEdges; e++ {
		g.InFirst[g.EdgeTgt[e]+1]++
	}
	for i := uint32(1); i <= g.NumNodes; i++ {
		g.InFirst[i] += g.InFirst[i-1]
	}
	pos := make([]uint32, g.NumNodes)
	copy(pos, g.InFirst[:g.NumNodes])
	for e := uint32(0); e < g.NumEdges; e++ {
		v := g.EdgeTgt[e]
		g.InEdge[pos[v]] = e
		pos[v]++
	}
}

// SortAdjacencyByLevel re-sorts OutEdge within each node by
// Level[EdgeTgt] descending and InEdge within each node by
// Level[EdgeSrc] descending, as required for CH query pruning.
// Must be called once after Level is finalized.
func (g *Graph) SortAdjacencyByLevel() {
	g.rebuildInAdjacency()
	for u := uint32(0); u < g.NumNodes; u++ {
		out := g.OutEdge[g.OutFirst[u]:g.OutFirst[u+1]]
		sort.Slice(out, func(i, j int) bool {
			return g.Level[g.EdgeTgt[out[i]]] > g.Level[g.EdgeTgt[out[j]]]
		})
	}
	for v := uint32(0); v < g.NumNodes; v++ {
		in := g.InEdge[g.InFirst[v]:g.InFirst[v+1]]
		sort.Slice(in, func(i, j int) bool {
			return g.Level[g.EdgeSrc[in[i]]] > g.Level[g.EdgeSrc[in[j]]]
		})
	}
}

// AddEdge appends a new edge (used by graphio.Read to assemble a graph
// edge by edge) and returns its id. Callers must call
// RebuildOutAdjacency and then SortAdjacencyByLevel once all edges are
// added.
func (g *Graph) AddEdge(src, tgt uint32, costs []float64, shortcut1, shortcut2 int32) uint32 {
	id := g.NumEdges
	g.EdgeSrc = append(g.EdgeSrc, src)
	g.EdgeTgt = append(g.EdgeTgt, tgt)
	g.EdgeCosts = append(g.EdgeCosts, costs...)
	g.Shortcut1 = append(g.Shortcut1, shortcut1)
	g.Shortcut2 = append(g.Shortcut2, shortcut2)
	g.NumEdges++
	g.OutFirst = nil // caller must rebuild CSR via RebuildOutAdjacency
	return id
}

// RebuildOutAdjacency rebuilds OutFirst/OutEdge from EdgeSrc, used
// after a batch of AddEdge calls and when CH contraction assembles its
// output graph.
func (g *Graph) RebuildOutAdjacency() {
	g.OutFirst = make([]uint32, g.NumNodes+1)
	g.OutEdge = make([]uint32, g.NumEdges)
	for e := uint32(0); e < g.NumEdges; e++ {
		g.OutFirst[g.EdgeSrc[e]+1]++
	}
	for i := uint32(1); i <= g.NumNodes; i++ {
		g.OutFirst[i] += g.OutFirst[i-1]
	}
	pos := make([]uint32, g.NumNodes)
	copy(pos, g.OutFirst[:g.NumNodes])
	for e := uint32(0); e < g.NumEdges; e++ {
		u := g.EdgeSrc[e]
		g.OutEdge[pos[u]] = e
		pos[u]++
	}
}
