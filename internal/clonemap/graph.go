package clonemap

import (
	"slices"

	"whyclone/internal/trace"
	"whyclone/internal/types"
)

// updateGraph adds every entry inserted since the last emission to the
// graph. Entries inserted while expanding are processed in the same pass.
func (m *CloneMap) updateGraph(env Env) error {
	for i := m.lastCloned; i < len(m.order); i++ {
		key := m.order[i]
		info := m.names[key]
		if info.hidden {
			continue
		}
		id := m.index[key]
		m.graph.AddNode(id)

		// Associated types mentioned by the clone force an edge from the
		// trait instantiation providing them.
		if err := m.projectionEdges(key, key.Subst); err != nil {
			return err
		}

		// Logic and interface units refer to everything through interfaces
		// and build no sharing graph.
		if m.itemType.ClonesInterfaces() {
			continue
		}

		deps, ok := env.Dependencies(key.Def)
		if !ok {
			continue
		}
		for _, orig := range deps.order {
			inst := m.types.Apply(orig.Subst, key.Subst)
			dep, depInfo, _ := m.intern(orig.Def, inst)
			// The provider's bindings hold however dep was interned first.
			for _, p := range deps.names[orig].projections {
				if err := m.bindProjection(dep, depInfo, p.Assoc, m.types.ApplyType(p.Type, key.Subst)); err != nil {
					return err
				}
			}
			if dep == key {
				continue
			}
			m.graph.AddEdge(m.index[dep], id, orig.Subst)
			trace.Point(m.tracer, trace.ScopeNode, "edge", string(depInfo.Name)+" -> "+string(info.Name))
		}
	}
	return nil
}

// projectionEdges visits the substitution and the pending projection
// bindings of key.
func (m *CloneMap) projectionEdges(key Node, subst types.SubstID) error {
	var err error
	visit := func(p types.Projection) {
		if err != nil {
			return
		}
		err = m.projectionEdge(key, p)
	}
	m.types.SubstProjections(subst, visit)
	for _, b := range m.names[key].projections {
		m.types.WalkProjections(b.Type, visit)
	}
	return err
}

// bindProjection adds a binding found while expanding. A clone already
// emitted cannot take new bindings.
func (m *CloneMap) bindProjection(node Node, info *CloneInfo, assoc types.DefID, t types.TypeID) error {
	b := ProjectionBinding{Assoc: assoc, Type: t}
	if info.cloned {
		if slices.Contains(info.bound, b) {
			return nil
		}
		return &LateProjectionError{Assoc: m.prog.DefPath(assoc), Node: string(info.Name)}
	}
	if !info.addProjection(b) || info.hidden {
		return nil
	}
	// The binding may mention projections of its own.
	var err error
	m.types.WalkProjections(t, func(p types.Projection) {
		if err == nil {
			err = m.projectionEdge(node, p)
		}
	})
	return err
}

func (m *CloneMap) projectionEdge(key Node, p types.Projection) error {
	trait, ok := m.prog.TraitOf(p.Assoc)
	if !ok {
		return &ProjectionError{Assoc: m.prog.DefPath(p.Assoc), Node: m.nodeName(key)}
	}
	node, info, _ := m.intern(trait, p.TraitSubst)
	if node == key {
		return nil
	}
	m.graph.AddEdge(m.index[node], m.index[key])
	trace.Point(m.tracer, trace.ScopeNode, "edge", string(info.Name)+" -> "+string(m.names[key].Name), "via", "projection")
	return nil
}
