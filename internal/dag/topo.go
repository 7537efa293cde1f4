package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Topo is the result of a Kahn toposort.
type Topo struct {
	Order   []NodeID   // линейный порядок
	Batches [][]NodeID // волны независимых узлов
	Cyclic  bool
	Cycles  []NodeID // узлы, оставшиеся в цикле или за ним
}

func nodeID(i int) NodeID {
	id, err := safecast.Conv[NodeID](i)
	if err != nil {
		panic(fmt.Errorf("node id overflow: %w", err))
	}
	return id
}

// ToposortKahn orders the present vertices so that every edge source comes
// before its target. Ties are broken by ascending NodeID.
func ToposortKahn[L comparable](g *Graph[L]) *Topo {
	nodeCount := len(g.Present)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]NodeID, 0, g.NodeCount()),
		Batches: make([][]NodeID, 0),
	}

	current := make([]NodeID, 0, nodeCount)
	for i := 0; i < nodeCount; i++ {
		if g.Present[i] && indeg[i] == 0 {
			current = append(current, nodeID(i))
		}
	}

	visited := 0
	for len(current) > 0 {
		batch := make([]NodeID, len(current))
		copy(batch, current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]NodeID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Edges[int(id)] {
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != g.NodeCount() {
		topo.Cyclic = true
		for i := 0; i < nodeCount; i++ {
			if g.Present[i] && indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, nodeID(i))
			}
		}
	}

	return topo
}

// FindCycle extracts one concrete cycle from the vertices a toposort could
// not order. The result lists the cycle in edge direction, starting at its
// smallest id. It returns nil for an acyclic result.
func FindCycle[L comparable](g *Graph[L], topo *Topo) []NodeID {
	if topo == nil || !topo.Cyclic || len(topo.Cycles) == 0 {
		return nil
	}
	stuck := make(map[NodeID]bool, len(topo.Cycles))
	for _, id := range topo.Cycles {
		stuck[id] = true
	}

	// Every stuck vertex has a stuck predecessor, so walking predecessors
	// must revisit a vertex.
	seenAt := make(map[NodeID]int)
	var walk []NodeID
	cur := topo.Cycles[0]
	for {
		if pos, ok := seenAt[cur]; ok {
			walk = walk[pos:]
			break
		}
		seenAt[cur] = len(walk)
		walk = append(walk, cur)
		found := false
		for _, e := range g.Incoming(cur) {
			if stuck[e.From] {
				cur = e.From
				found = true
				break
			}
		}
		if !found {
			return nil
		}
	}

	slices.Reverse(walk)
	start := 0
	for i, id := range walk {
		if id < walk[start] {
			start = i
		}
	}
	return append(walk[start:], walk[:start]...)
}
