package chdijkstra

import (
	"math"

	"prefregion/pkg/graph"
)

// Result is the outcome of a single preference-weighted CH query: the
// original (unpacked) edge ids forming the path, the path's per-dim
// cost vector, and its scalar cost under the query's preference.
type Result struct {
	Edges      []uint32
	Costs      []float64
	DotProduct float64
}

// Run executes bidirectional CH Dijkstra from s to t under preference
// alpha (length g.Dim, need not be normalised). It reports ok=false
// when no meeting node was ever found, i.e. t is unreachable from s.
//
// qs is caller-owned so a worker can keep one QueryState per graph
// and reuse it across many queries without reallocating search
// arrays; only the nodes touched by a query are reset between runs.
func Run(g *graph.Graph, qs *QueryState, s, t uint32, alpha []float64) (Result, bool) {
	qs.prepare(s, t)

	for qs.heap.Len() > 0 && !(qs.doneF && qs.doneB) {
		item := qs.heap.Pop()

		if item.dir == forward {
			if qs.doneF {
				continue
			}
			if item.dist > qs.bestCost {
				qs.doneF = true
				continue
			}
			relaxForward(g, qs, item.node, item.dist, alpha)
		} else {
			if qs.doneB {
				continue
			}
			if item.dist > qs.bestCost {
				qs.doneB = true
				continue
			}
			relaxBackward(g, qs, item.node, item.dist, alpha)
		}
	}

	if qs.bestNode == noNode {
		return Result{}, false
	}

	edges := reconstructPath(g, qs, qs.bestNode)
	unpacked := make([]uint32, 0, len(edges)*2)
	for _, e := range edges {
		unpackEdge(g, e, &unpacked)
	}

	costs := make([]float64, g.Dim)
	for _, e := range unpacked {
		c := g.Costs(e)
		for k := 0; k < g.Dim; k++ {
			costs[k] += c[k]
		}
	}
	var dotProduct float64
	for k := 0; k < g.Dim; k++ {
		dotProduct += alpha[k] * costs[k]
	}

	return Result{Edges: unpacked, Costs: costs, DotProduct: dotProduct}, true
}

func relaxForward(g *graph.Graph, qs *QueryState, node uint32, dist float64, alpha []float64) {
	if dist > qs.CostF[node] {
		return
	}
	if !math.IsInf(qs.CostB[node], 1) {
		if merged := dist + qs.CostB[node]; merged < qs.bestCost {
			qs.bestCost = merged
			qs.bestNode = node
		}
	}
	level := g.Level[node]
	for _, e := range g.OutEdges(node) {
		v := g.EdgeTgt[e]
		if g.Level[v] < level {
			break // adjacency sorted by target level descending
		}
		next := dist + dot(alpha, g.Costs(e))
		if next < qs.CostF[v] {
			qs.touch(v)
			qs.CostF[v] = next
			qs.PredF[v] = e
			qs.heap.Push(v, next, forward)
		}
	}
}

func relaxBackward(g *graph.Graph, qs *QueryState, node uint32, dist float64, alpha []float64) {
	if dist > qs.CostB[node] {
		return
	}
	if !math.IsInf(qs.CostF[node], 1) {
		if merged := qs.CostF[node] + dist; merged < qs.bestCost {
			qs.bestCost = merged
			qs.bestNode = node
		}
	}
	level := g.Level[node]
	for _, e := range g.InEdges(node) {
		u := g.EdgeSrc[e]
		if g.Level[u] < level {
			break // adjacency sorted by source level descending
		}
		next := dist + dot(alpha, g.Costs(e))
		if next < qs.CostB[u] {
			qs.touch(u)
			qs.CostB[u] = next
			qs.PredB[u] = e
			qs.heap.Push(u, next, backward)
		}
	}
}

func dot(alpha, costs []float64) float64 {
	var sum float64
	for k, c := range costs {
		sum += alpha[k] * c
	}
	return sum
}

// reconstructPath walks predecessors backward from meetNode in the
// forward direction (reversed to get s->meet order), then forward in
// the backward direction (already in meet->t order), returning the
// full ordered (possibly shortcut) edge sequence s->t.
func reconstructPath(g *graph.Graph, qs *QueryState, meetNode uint32) []uint32 {
	var fwd []uint32
	node := meetNode
	for qs.PredF[node] != noNode {
		e := qs.PredF[node]
		fwd = append(fwd, e)
		node = g.EdgeSrc[e]
	}
	for i, j := 0, len(fwd)-1; i < j; i, j = i+1, j-1 {
		fwd[i], fwd[j] = fwd[j], fwd[i]
	}

	var bwd []uint32
	node = meetNode
	for qs.PredB[node] != noNode {
		e := qs.PredB[node]
		bwd = append(bwd, e)
		node = g.EdgeTgt[e]
	}

	return append(fwd, bwd...)
}

// unpackEdge recursively expands a shortcut edge into its two
// constituent edges (which may themselves be shortcuts), appending
// base edge ids to result in traversal order. Non-shortcuts append
// themselves directly.
func unpackEdge(g *graph.Graph, e uint32, result *[]uint32) {
	if e1, e2, ok := g.IsShortcut(e); ok {
		unpackEdge(g, uint32(e1), result)
		unpackEdge(g, uint32(e2), result)
		return
	}
	*result = append(*result, e)
}
