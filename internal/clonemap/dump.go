package clonemap

import (
	"fmt"
	"io"
)

// GraphNode is one entry of a graph snapshot.
type GraphNode struct {
	Name   string
	Def    string // definition path with substitution
	Hidden bool
	Cloned bool
}

// GraphEdge is one dependency edge of a graph snapshot. Labels are the
// substitutions the user's definition declared the dependency with; an
// empty list marks an edge forced by an associated type.
type GraphEdge struct {
	From, To string
	Labels   []string
}

// Graph is a printable copy of the clone graph.
type Graph struct {
	Nodes []GraphNode
	Edges []GraphEdge
}

// Snapshot copies the current entries and edges.
func (m *CloneMap) Snapshot() Graph {
	var g Graph
	for _, node := range m.order {
		info := m.names[node]
		g.Nodes = append(g.Nodes, GraphNode{
			Name:   string(info.Name),
			Def:    m.prog.DefPath(node.Def) + m.prog.SubstString(node.Subst),
			Hidden: info.hidden,
			Cloned: info.cloned,
		})
	}
	for _, e := range m.graph.AllEdges() {
		ge := GraphEdge{From: m.nodeName(m.order[e.From]), To: m.nodeName(m.order[e.To])}
		for _, l := range e.Labels {
			ge.Labels = append(ge.Labels, m.prog.SubstString(l))
		}
		g.Edges = append(g.Edges, ge)
	}
	return g
}

// Write prints the snapshot one line per node and per edge.
func (g Graph) Write(w io.Writer) error {
	for _, n := range g.Nodes {
		flags := ""
		if n.Hidden {
			flags += " hidden"
		}
		if n.Cloned {
			flags += " cloned"
		}
		if _, err := fmt.Fprintf(w, "node %s = %s%s\n", n.Name, n.Def, flags); err != nil {
			return err
		}
	}
	for _, e := range g.Edges {
		label := "projection"
		if len(e.Labels) > 0 {
			label = fmt.Sprint(e.Labels)
		}
		if _, err := fmt.Fprintf(w, "edge %s -> %s %s\n", e.From, e.To, label); err != nil {
			return err
		}
	}
	return nil
}
