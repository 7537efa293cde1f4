package dag

import (
	"slices"
	"testing"
)

func TestAddEdgeMergesLabels(t *testing.T) {
	g := New[string]()
	g.AddEdge(1, 3, "a")
	g.AddEdge(1, 3, "b", "a")
	g.AddEdge(2, 3)

	if g.NodeCount() != 3 {
		t.Fatalf("NodeCount = %d, want 3", g.NodeCount())
	}
	if g.HasNode(0) {
		t.Fatalf("node 0 was never added")
	}
	if g.EdgeCount() != 2 {
		t.Fatalf("EdgeCount = %d, want 2", g.EdgeCount())
	}
	e, ok := g.Edge(1, 3)
	if !ok {
		t.Fatalf("edge 1->3 missing")
	}
	if !slices.Equal(e.Labels, []string{"a", "b"}) {
		t.Fatalf("labels = %v, want [a b]", e.Labels)
	}
	in := g.Incoming(3)
	if len(in) != 2 || in[0].From != 1 || in[1].From != 2 {
		t.Fatalf("unexpected incoming edges: %+v", in)
	}
	if g.Indeg[3] != 2 {
		t.Fatalf("Indeg[3] = %d, want 2", g.Indeg[3])
	}
}

func TestToposortKahnBatches(t *testing.T) {
	g := New[int]()
	g.AddNode(4)
	g.AddEdge(0, 1)
	g.AddEdge(0, 2)
	g.AddEdge(2, 3)
	g.AddEdge(1, 3)

	topo := ToposortKahn(g)
	if topo.Cyclic {
		t.Fatalf("unexpected cycle: %v", topo.Cycles)
	}
	want := [][]NodeID{{0, 4}, {1, 2}, {3}}
	if len(topo.Batches) != len(want) {
		t.Fatalf("batches = %v, want %v", topo.Batches, want)
	}
	for i := range want {
		if !slices.Equal(topo.Batches[i], want[i]) {
			t.Fatalf("batch %d = %v, want %v", i, topo.Batches[i], want[i])
		}
	}
	if !slices.Equal(topo.Order, []NodeID{0, 4, 1, 2, 3}) {
		t.Fatalf("order = %v", topo.Order)
	}
	if FindCycle(g, topo) != nil {
		t.Fatalf("FindCycle on acyclic graph must return nil")
	}
}

func TestToposortKahnDetectsCycle(t *testing.T) {
	g := New[int]()
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	g.AddEdge(2, 1)
	g.AddEdge(2, 3)

	topo := ToposortKahn(g)
	if !topo.Cyclic {
		t.Fatalf("expected cycle")
	}
	if !slices.Equal(topo.Order, []NodeID{0}) {
		t.Fatalf("order = %v, want [0]", topo.Order)
	}
	if !slices.Equal(topo.Cycles, []NodeID{1, 2, 3}) {
		t.Fatalf("cycles = %v, want [1 2 3]", topo.Cycles)
	}
	cycle := FindCycle(g, topo)
	if !slices.Equal(cycle, []NodeID{1, 2}) {
		t.Fatalf("FindCycle = %v, want [1 2]", cycle)
	}
}

func TestFindCycleRotatesToSmallest(t *testing.T) {
	g := New[int]()
	g.AddEdge(5, 3)
	g.AddEdge(3, 4)
	g.AddEdge(4, 5)

	cycle := FindCycle(g, ToposortKahn(g))
	if !slices.Equal(cycle, []NodeID{3, 4, 5}) {
		t.Fatalf("FindCycle = %v, want [3 4 5]", cycle)
	}
}
