// Package dag is a growable directed graph over dense node ids with
// labelled edges, plus Kahn toposort and cycle extraction.
package dag

import "slices"

// NodeID is a dense vertex id. Callers allocate ids themselves (typically an
// index into an insertion-ordered table) and the graph grows to fit.
type NodeID uint32

// Edge is a directed edge with the distinct labels recorded on it.
type Edge[L comparable] struct {
	From, To NodeID
	Labels   []L
}

type edgeKey struct{ from, to NodeID }

// Graph is a directed graph. Adding an edge implicitly adds both endpoints.
type Graph[L comparable] struct {
	Edges   [][]NodeID // Edges[from] = []to, insertion order
	Indeg   []int      // входящие степени (только присутствующие узлы)
	Present []bool     // vertex was added

	incoming [][]int // incoming[to] = indices into edges
	edges    []Edge[L]
	index    map[edgeKey]int
	nodes    int
}

// New creates an empty graph.
func New[L comparable]() *Graph[L] {
	return &Graph[L]{index: make(map[edgeKey]int)}
}

func (g *Graph[L]) grow(id NodeID) {
	n := int(id) + 1
	if n <= len(g.Present) {
		return
	}
	g.Edges = append(g.Edges, make([][]NodeID, n-len(g.Edges))...)
	g.Indeg = append(g.Indeg, make([]int, n-len(g.Indeg))...)
	g.incoming = append(g.incoming, make([][]int, n-len(g.incoming))...)
	g.Present = append(g.Present, make([]bool, n-len(g.Present))...)
}

// AddNode adds a vertex; adding it twice is a no-op.
func (g *Graph[L]) AddNode(id NodeID) {
	g.grow(id)
	if !g.Present[id] {
		g.Present[id] = true
		g.nodes++
	}
}

// AddEdge adds from -> to. If the edge exists, labels not yet recorded on it
// are appended.
func (g *Graph[L]) AddEdge(from, to NodeID, labels ...L) {
	g.AddNode(from)
	g.AddNode(to)
	key := edgeKey{from: from, to: to}
	if i, ok := g.index[key]; ok {
		e := &g.edges[i]
		for _, l := range labels {
			if !slices.Contains(e.Labels, l) {
				e.Labels = append(e.Labels, l)
			}
		}
		return
	}
	e := Edge[L]{From: from, To: to}
	for _, l := range labels {
		if !slices.Contains(e.Labels, l) {
			e.Labels = append(e.Labels, l)
		}
	}
	g.index[key] = len(g.edges)
	g.incoming[to] = append(g.incoming[to], len(g.edges))
	g.edges = append(g.edges, e)
	g.Edges[from] = append(g.Edges[from], to)
	g.Indeg[to]++
}

// HasNode reports whether id was added.
func (g *Graph[L]) HasNode(id NodeID) bool {
	return int(id) < len(g.Present) && g.Present[id]
}

// Edge returns the edge from -> to.
func (g *Graph[L]) Edge(from, to NodeID) (Edge[L], bool) {
	i, ok := g.index[edgeKey{from: from, to: to}]
	if !ok {
		return Edge[L]{}, false
	}
	return g.edges[i], true
}

// Incoming returns the edges ending in to, in insertion order.
func (g *Graph[L]) Incoming(to NodeID) []Edge[L] {
	if int(to) >= len(g.incoming) {
		return nil
	}
	out := make([]Edge[L], 0, len(g.incoming[to]))
	for _, i := range g.incoming[to] {
		out = append(out, g.edges[i])
	}
	return out
}

// AllEdges returns every edge in insertion order.
func (g *Graph[L]) AllEdges() []Edge[L] {
	return slices.Clone(g.edges)
}

// NodeCount returns the number of vertices.
func (g *Graph[L]) NodeCount() int { return g.nodes }

// EdgeCount returns the number of edges.
func (g *Graph[L]) EdgeCount() int { return len(g.edges) }
