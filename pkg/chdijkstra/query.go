// Package chdijkstra runs bidirectional Contraction Hierarchies
// Dijkstra queries over a pkg/graph.Graph under an arbitrary
// preference vector, reusing a caller-owned QueryState across queries so a
// worker services many queries without reallocating its search
// state (only the nodes touched by a query are reset between runs).
package chdijkstra

import "math"

// noNode is the sentinel for "no predecessor edge".
const noNode = ^uint32(0)

// direction tags a heap entry with which search frontier it belongs to.
type direction uint8

const (
	forward direction = iota
	backward
)

// heapItem is a shared min-heap entry for both search directions, as
// spec'd: a single heap ordered on total_cost regardless of
// direction, rather than one queue per direction.
type heapItem struct {
	node uint32
	dist float64
	dir  direction
}

// MinHeap is a concrete-typed binary min-heap. Avoids the interface
// boxing overhead of container/heap for the hot per-query loop.
type MinHeap struct {
	items []heapItem
}

func (h *MinHeap) Len() int { return len(h.items) }

func (h *MinHeap) Push(node uint32, dist float64, dir direction) {
	h.items = append(h.items, heapItem{node, dist, dir})
	h.siftUp(len(h.items) - 1)
}

func (h *MinHeap) Pop() heapItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *MinHeap) PeekDist() float64 {
	if len(h.items) == 0 {
		return math.Inf(1)
	}
	return h.items[0].dist
}

func (h *MinHeap) Reset() {
	h.items = h.items[:0]
}

func (h *MinHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].dist >= h.items[parent].dist {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *MinHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].dist < h.items[smallest].dist {
			smallest = left
		}
		if right < n && h.items[right].dist < h.items[smallest].dist {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// QueryState holds per-query search state for bidirectional CH
// Dijkstra: distance arrays, predecessor edge ids, and a touched-node
// journal so Reset only clears what this query actually visited
// instead of the whole graph.
type QueryState struct {
	CostF []float64
	CostB []float64
	PredF []uint32 // edge id that relaxed this node forward, noNode if none
	PredB []uint32 // edge id that relaxed this node backward, noNode if none

	touched []uint32
	heap    MinHeap

	doneF, doneB bool
	bestCost     float64
	bestNode     uint32
}

// NewQueryState allocates search state sized for a graph with n nodes.
func NewQueryState(n uint32) *QueryState {
	qs := &QueryState{
		CostF:   make([]float64, n),
		CostB:   make([]float64, n),
		PredF:   make([]uint32, n),
		PredB:   make([]uint32, n),
		touched: make([]uint32, 0, 1024),
		heap:    MinHeap{items: make([]heapItem, 0, 256)},
	}
	for i := range qs.CostF {
		qs.CostF[i] = math.Inf(1)
		qs.CostB[i] = math.Inf(1)
		qs.PredF[i] = noNode
		qs.PredB[i] = noNode
	}
	return qs
}

// Reset clears only the journalled slots, for fast reuse across queries.
func (qs *QueryState) Reset() {
	for _, node := range qs.touched {
		qs.CostF[node] = math.Inf(1)
		qs.CostB[node] = math.Inf(1)
		qs.PredF[node] = noNode
		qs.PredB[node] = noNode
	}
	qs.touched = qs.touched[:0]
	qs.heap.Reset()
	qs.doneF, qs.doneB = false, false
	qs.bestCost = math.Inf(1)
	qs.bestNode = noNode
}

func (qs *QueryState) touch(node uint32) {
	if math.IsInf(qs.CostF[node], 1) && math.IsInf(qs.CostB[node], 1) {
		qs.touched = append(qs.touched, node)
	}
}

// prepare resets the state and seeds both search frontiers at s and t.
func (qs *QueryState) prepare(s, t uint32) {
	qs.Reset()
	qs.touch(s)
	qs.CostF[s] = 0
	qs.heap.Push(s, 0, forward)
	qs.touch(t)
	qs.CostB[t] = 0
	qs.heap.Push(t, 0, backward)
}
