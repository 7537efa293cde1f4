package clonemap

import (
	"fmt"

	"whyclone/internal/dag"
	"whyclone/internal/program"
	"whyclone/internal/trace"
	"whyclone/internal/types"
	"whyclone/internal/why"
)

// ToClones brings the graph up to date and returns the declarations for
// every entry not emitted yet: prelude imports first, then one clone per
// entry in dependency order.
//
// On error nothing is marked as emitted and no declarations are returned.
func (m *CloneMap) ToClones(env Env) ([]why.Decl, error) {
	if err := m.updateGraph(env); err != nil {
		return nil, err
	}
	m.lastCloned = len(m.order)

	topo := dag.ToposortKahn(m.graph)
	if topo.Cyclic {
		return nil, m.cycleError(topo)
	}

	// Entries emitted by this call; rolled back on failure.
	var marked []*CloneInfo
	rollback := func() {
		for _, info := range marked {
			info.cloned = false
		}
	}

	var decls []why.Decl
	for _, id := range topo.Order {
		node := m.order[id]
		info := m.names[node]
		if info.cloned {
			continue
		}
		info.cloned = true
		marked = append(marked, info)
		if info.hidden {
			continue
		}

		decl, err := m.cloneDecl(env, node, info)
		if err != nil {
			rollback()
			return nil, err
		}
		decls = append(decls, decl)
		trace.Point(m.tracer, trace.ScopeNode, "clone", why.FormatDecl(decl))
	}

	for _, info := range marked {
		info.bound = append(info.bound, info.projections...)
		info.projections = nil
	}

	out := make([]why.Decl, 0, len(m.preludeOrder)+len(decls))
	for _, p := range m.preludeOrder {
		if m.prelude[p] {
			continue
		}
		m.prelude[p] = true
		out = append(out, why.UseDecl{Name: p.QName()})
	}
	return append(out, decls...), nil
}

func (m *CloneMap) cycleError(topo *dag.Topo) error {
	ids := dag.FindCycle(m.graph, topo)
	if ids == nil {
		ids = topo.Cycles
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, m.nodeName(m.order[id]))
	}
	return &CycleError{Nodes: names}
}

func (m *CloneMap) cloneDecl(env Env, node Node, info *CloneInfo) (why.CloneDecl, error) {
	subst, err := m.baseSubst(node.Def, node.Subst)
	if err != nil {
		return why.CloneDecl{}, err
	}

	// Projection bindings go after the parameters; their types may refer to
	// clones that precede this one.
	for _, p := range info.projections {
		t, err := m.TranslateType(p.Type)
		if err != nil {
			return why.CloneDecl{}, err
		}
		subst = append(subst, why.TypeSubst(why.QName{Name: why.Ident(m.prog.TypeName(p.Assoc))}, t))
	}

	if m.itemType != program.ItemInterface {
		renames, err := m.shareDependencies(env, node)
		if err != nil {
			return why.CloneDecl{}, err
		}
		subst = append(subst, renames...)
	}

	target, err := cloneableName(m.prog, node.Def, m.itemType.ClonesInterfaces())
	if err != nil {
		return why.CloneDecl{}, err
	}
	return why.CloneDecl{Module: target, Subst: subst, As: info.Name}, nil
}

// shareDependencies renames, for every dependency edge into node, the
// provider's names as seen inside node's definition to the clones of this
// unit.
func (m *CloneMap) shareDependencies(env Env, node Node) ([]why.CloneSubst, error) {
	var out []why.CloneSubst
	provider, _ := env.Dependencies(node.Def)
	for _, e := range m.graph.Incoming(m.index[node]) {
		if len(e.Labels) == 0 {
			continue
		}
		dep := m.order[e.From]
		user := m.names[dep]
		syms := exportedSymbols(m.prog, dep.Def)
		for _, orig := range e.Labels {
			var prov *CloneInfo
			if provider != nil {
				prov = provider.names[Node{Def: dep.Def, Subst: orig}]
			}
			if prov == nil {
				return nil, fmt.Errorf("clonemap: %s has no entry for %s%s", m.prog.DefPath(node.Def),
					m.prog.DefPath(dep.Def), m.prog.SubstString(orig))
			}
			for _, sym := range syms {
				out = append(out, sym.rename(prov, user))
			}
		}
	}
	return out, nil
}

// baseSubst binds the type parameters of def to the translated arguments
// of subst. Lifetime and const parameters are left out.
func (m *CloneMap) baseSubst(def types.DefID, subst types.SubstID) ([]why.CloneSubst, error) {
	if subst == types.EmptySubst {
		return nil, nil
	}
	params := m.prog.Generics(def)
	args := m.types.SubstArgs(subst)
	var out []why.CloneSubst
	for i, p := range params {
		if i >= len(args) {
			break
		}
		if p.Kind != program.ParamType {
			continue
		}
		t, err := m.TranslateType(args[i])
		if err != nil {
			return nil, err
		}
		out = append(out, why.TypeSubst(why.QName{Name: why.Ident(program.SnakeCase(p.Name))}, t))
	}
	return out, nil
}

// cloneableName is the module a clone of def instantiates.
func cloneableName(prog *program.Program, def types.DefID, interfaces bool) (why.QName, error) {
	switch it := prog.ItemType(def); it {
	case program.ItemLogic, program.ItemPredicate:
		if interfaces {
			return why.QName{Name: why.Ident(prog.InterfaceName(def))}, nil
		}
		return why.QName{Name: why.Ident(prog.ModuleName(def))}, nil
	case program.ItemInterface, program.ItemProgram:
		return why.QName{Name: why.Ident(prog.InterfaceName(def))}, nil
	case program.ItemTrait, program.ItemImpl:
		return why.QName{Name: why.Ident(prog.ModuleName(def))}, nil
	default:
		return why.QName{}, fmt.Errorf("clonemap: %s (%s): %w", prog.DefPath(def), it, ErrNotCloneable)
	}
}
