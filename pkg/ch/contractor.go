// Package ch builds the contraction hierarchy a CH bidirectional
// Dijkstra query relies on: per-node levels and shortcut edges,
// computed once against a read-only base graph.
package ch

import (
	"container/heap"
	"log"

	"prefregion/pkg/graph"
)

// maxShortcutsPerNode limits the shortcuts a single contraction step
// may create; nodes beyond this bound stay uncontracted as a "core"
// at the top of the hierarchy, matching the teacher's bailout.
const maxShortcutsPerNode = 1000

// adjEntry is a mutable-adjacency edge reference during contraction,
// carrying the id of the (possibly shortcut) edge it represents.
type adjEntry struct {
	to     uint32
	edgeID uint32
}

// newEdge is a shortcut edge accumulated during contraction, not yet
// placed into the final Graph's edge arrays.
type newEdge struct {
	src, tgt uint32
	costs    []float64
	s1, s2   int32
}

// Contract runs Contraction Hierarchies preprocessing over g and
// returns a new Graph with every node's Level assigned, shortcut
// edges inserted, and out/in adjacency sorted by far-end level
// descending for query-time pruning. g is left untouched.
func Contract(g *graph.Graph) *graph.Graph {
	n := g.NumNodes
	dim := g.Dim
	if n == 0 {
		return &graph.Graph{Dim: dim}
	}

	outAdj := make([][]adjEntry, n)
	inAdj := make([][]adjEntry, n)
	for u := uint32(0); u < n; u++ {
		for _, e := range g.OutEdges(u) {
			v := g.EdgeTgt[e]
			outAdj[u] = append(outAdj[u], adjEntry{to: v, edgeID: e})
			inAdj[v] = append(inAdj[v], adjEntry{to: u, edgeID: e})
		}
	}

	var newEdges []newEdge
	nextEdgeID := g.NumEdges

	costsOf := func(edgeID uint32) []float64 {
		if edgeID < g.NumEdges {
			return g.Costs(edgeID)
		}
		return newEdges[edgeID-g.NumEdges].costs
	}
	weightOf := func(edgeID uint32) float64 {
		var sum float64
		for _, c := range costsOf(edgeID) {
			sum += c
		}
		return sum
	}
	contracted := make([]bool, n)
	rank := make([]uint32, n)
	contractedNeighbors := make([]int, n)
	depth := make([]int, n) // priority tie-break heuristic, teacher's "level"

	pq := make(priorityQueue, n)
	for i := uint32(0); i < n; i++ {
		pq[i] = &pqEntry{
			node:     i,
			priority: computePriority(outAdj, inAdj, i, contracted, contractedNeighbors[i], depth[i]),
			index:    int(i),
		}
	}
	heap.Init(&pq)

	ws := newWitnessState(n)

	log.Printf("Starting contraction of %d nodes...", n)

	var totalShortcuts int
	order := uint32(0)
	logInterval := uint32(50000)

	for pq.Len() > 0 {
		entry := heap.Pop(&pq).(*pqEntry)
		node := entry.node
		if contracted[node] {
			continue
		}

		newPriority := computePriority(outAdj, inAdj, node, contracted, contractedNeighbors[node], depth[node])
		if newPriority > entry.priority && pq.Len() > 0 && newPriority > pq[0].priority {
			entry.priority = newPriority
			heap.Push(&pq, entry)
			continue
		}

		shortcuts := findShortcuts(ws, outAdj, inAdj, node, contracted, weightOf)
		if len(shortcuts) > maxShortcutsPerNode {
			log.Printf("Stopping contraction: node %d would create %d shortcuts (limit %d). %d nodes remain in core.",
				node, len(shortcuts), maxShortcutsPerNode, n-order)
			break
		}

		contracted[node] = true
		rank[node] = order
		order++
		totalShortcuts += len(shortcuts)

		for _, sc := range shortcuts {
			costs := make([]float64, dim)
			c1, c2 := costsOf(sc.inEdge), costsOf(sc.outEdge)
			for k := 0; k < dim; k++ {
				costs[k] = c1[k] + c2[k]
			}
			id := nextEdgeID
			nextEdgeID++
			newEdges = append(newEdges, newEdge{src: sc.from, tgt: sc.to, costs: costs, s1: int32(sc.inEdge), s2: int32(sc.outEdge)})

			outAdj[sc.from] = append(outAdj[sc.from], adjEntry{to: sc.to, edgeID: id})
			inAdj[sc.to] = append(inAdj[sc.to], adjEntry{to: sc.from, edgeID: id})
		}

		for _, e := range outAdj[node] {
			if !contracted[e.to] {
				contractedNeighbors[e.to]++
				if depth[node]+1 > depth[e.to] {
					depth[e.to] = depth[node] + 1
				}
			}
		}
		for _, e := range inAdj[node] {
			if !contracted[e.to] {
				contractedNeighbors[e.to]++
				if depth[node]+1 > depth[e.to] {
					depth[e.to] = depth[node] + 1
				}
			}
		}

		remaining := n - order
		switch {
		case remaining < 1000:
			logInterval = 100
		case remaining < 10000:
			logInterval = 1000
		case remaining < 100000:
			logInterval = 10000
		default:
			logInterval = 50000
		}
		if order%logInterval == 0 {
			log.Printf("Contracted %d/%d nodes, %d shortcuts so far", order, n, totalShortcuts)
		}
	}

	// Remaining uncontracted nodes form the core; assign them the
	// highest ranks so they sit at the top of the hierarchy.
	for i := uint32(0); i < n; i++ {
		if !contracted[i] {
			contracted[i] = true
			rank[i] = order
			order++
		}
	}

	log.Printf("Contraction complete: %d shortcuts created (%.1fx original edges)",
		totalShortcuts, float64(totalShortcuts)/float64(max(g.NumEdges, 1)))

	return assembleGraph(g, newEdges, rank)
}

// assembleGraph builds the final queryable Graph: original edges kept
// at their ids, shortcuts appended after, Level set to contraction
// rank, and adjacency sorted by far-end level descending.
func assembleGraph(g *graph.Graph, newEdges []newEdge, rank []uint32) *graph.Graph {
	n := g.NumNodes
	dim := g.Dim
	totalEdges := g.NumEdges + uint32(len(newEdges))

	out := &graph.Graph{
		NumNodes:  n,
		NumEdges:  totalEdges,
		Dim:       dim,
		Level:     rank,
		EdgeSrc:   make([]uint32, totalEdges),
		EdgeTgt:   make([]uint32, totalEdges),
		EdgeCosts: make([]float64, int(totalEdges)*dim),
		Shortcut1: make([]int32, totalEdges),
		Shortcut2: make([]int32, totalEdges),
	}

	copy(out.EdgeSrc[:g.NumEdges], g.EdgeSrc)
	copy(out.EdgeTgt[:g.NumEdges], g.EdgeTgt)
	copy(out.EdgeCosts[:int(g.NumEdges)*dim], g.EdgeCosts)
	if len(g.Shortcut1) == int(g.NumEdges) {
		copy(out.Shortcut1[:g.NumEdges], g.Shortcut1)
		copy(out.Shortcut2[:g.NumEdges], g.Shortcut2)
	} else {
		for i := range out.Shortcut1[:g.NumEdges] {
			out.Shortcut1[i] = graph.NoShortcut
			out.Shortcut2[i] = graph.NoShortcut
		}
	}

	for i, ne := range newEdges {
		id := int(g.NumEdges) + i
		out.EdgeSrc[id] = ne.src
		out.EdgeTgt[id] = ne.tgt
		copy(out.EdgeCosts[id*dim:id*dim+dim], ne.costs)
		out.Shortcut1[id] = ne.s1
		out.Shortcut2[id] = ne.s2
	}

	out.RebuildOutAdjacency()
	out.SortAdjacencyByLevel()
	return out
}

// shortcut is a candidate shortcut edge discovered by witness search,
// referencing the two edge ids it would expand into.
type shortcut struct {
	from, to        uint32
	inEdge, outEdge uint32
}

// findShortcuts runs one witness Dijkstra per active incoming
// neighbor (batched over all active outgoing neighbors) to determine
// which shortcuts contracting node requires.
func findShortcuts(ws *witnessState, outAdj, inAdj [][]adjEntry, node uint32, contracted []bool, weightOf func(uint32) float64) []shortcut {
	var incoming, outgoing []adjEntry
	for _, e := range inAdj[node] {
		if !contracted[e.to] {
			incoming = append(incoming, e)
		}
	}
	for _, e := range outAdj[node] {
		if !contracted[e.to] {
			outgoing = append(outgoing, e)
		}
	}
	if len(incoming) == 0 || len(outgoing) == 0 {
		return nil
	}

	var shortcuts []shortcut
	for _, in := range incoming {
		inW := weightOf(in.edgeID)
		var maxOut float64
		for _, out := range outgoing {
			if out.to != in.to {
				if w := weightOf(out.edgeID); w > maxOut {
					maxOut = w
				}
			}
		}
		if maxOut == 0 {
			continue
		}
		maxWeight := inW + maxOut

		batchWitnessSearch(ws, outAdj, in.to, node, maxWeight, contracted, weightOf)

		for _, out := range outgoing {
			if out.to == in.to {
				continue
			}
			scWeight := inW + weightOf(out.edgeID)
			if ws.dist[out.to] > scWeight {
				shortcuts = append(shortcuts, shortcut{from: in.to, to: out.to, inEdge: in.edgeID, outEdge: out.edgeID})
			}
		}
	}
	return shortcuts
}

// computePriority returns the contraction priority for node (lower
// contracts first): an edge-difference heuristic plus tie-breaks on
// contracted-neighbor count and hierarchy depth.
func computePriority(outAdj, inAdj [][]adjEntry, node uint32, contracted []bool, contractedNeighbors, depth int) int {
	activeIn := 0
	for _, e := range inAdj[node] {
		if !contracted[e.to] {
			activeIn++
		}
	}
	activeOut := 0
	for _, e := range outAdj[node] {
		if !contracted[e.to] {
			activeOut++
		}
	}
	edgeDifference := activeIn*activeOut - (activeIn + activeOut)
	return edgeDifference + 2*contractedNeighbors + depth
}

func max(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// Priority queue for contraction ordering.

type pqEntry struct {
	node     uint32
	priority int
	index    int
}

type priorityQueue []*pqEntry

func (pq priorityQueue) Len() int           { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool { return pq[i].priority < pq[j].priority }
func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	entry := x.(*pqEntry)
	entry.index = len(*pq)
	*pq = append(*pq, entry)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.index = -1
	*pq = old[:n-1]
	return entry
}
