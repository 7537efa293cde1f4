// Package clonemap decides which instantiations of generic definitions a
// translation unit clones, what each clone is called and in which order the
// clone declarations are emitted.
//
// Every (definition, substitution) pair gets one entry in an insertion-ordered
// table. ToClones grows a dependency graph over the entries, following each
// definition's own dependency table and the associated-type projections in
// the substitutions, and then emits the not yet emitted entries in
// topological order. A map can be emitted several times while more entries
// are inserted; each entry is emitted at most once.
package clonemap

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"whyclone/internal/dag"
	"whyclone/internal/program"
	"whyclone/internal/trace"
	"whyclone/internal/types"
	"whyclone/internal/why"
)

// Node identifies one instantiation. Substitutions are interned, so equal
// argument lists give equal nodes.
type Node struct {
	Def   types.DefID
	Subst types.SubstID
}

// ProjectionBinding is a pending "associated type = concrete type" binding
// of a clone.
type ProjectionBinding struct {
	Assoc types.DefID
	Type  types.TypeID
}

// CloneInfo is the metadata of one entry.
type CloneInfo struct {
	Name why.Ident

	hidden      bool
	cloned      bool
	projections []ProjectionBinding
	bound       []ProjectionBinding // already emitted
}

// Hidden reports whether the entry is only a name (the unit's own module).
func (ci *CloneInfo) Hidden() bool { return ci.hidden }

// Cloned reports whether the entry was already emitted or skipped.
func (ci *CloneInfo) Cloned() bool { return ci.cloned }

// Projections returns the bindings not yet emitted.
func (ci *CloneInfo) Projections() []ProjectionBinding {
	return slices.Clone(ci.projections)
}

// AddProjection records that the associated type assoc is t for this clone.
// Repeated bindings are ignored.
func (ci *CloneInfo) AddProjection(assoc types.DefID, t types.TypeID) {
	ci.addProjection(ProjectionBinding{Assoc: assoc, Type: t})
}

func (ci *CloneInfo) addProjection(b ProjectionBinding) bool {
	if slices.Contains(ci.projections, b) {
		return false
	}
	ci.projections = append(ci.projections, b)
	return true
}

// QName qualifies sym with the clone name.
func (ci *CloneInfo) QName(sym why.Ident) why.QName {
	return why.Qualify(ci.Name, sym)
}

// CloneMap is the clone table of one translation unit.
type CloneMap struct {
	prog     *program.Program
	types    *types.Interner
	itemType program.ItemType
	tracer   trace.Tracer

	prelude      map[PreludeModule]bool // imported -> emitted
	preludeOrder []PreludeModule

	names map[Node]*CloneInfo
	index map[Node]dag.NodeID
	order []Node
	count int
	taken map[why.Ident]struct{}

	graph      *dag.Graph[types.SubstID]
	lastCloned int // entries before this index are already in the graph
}

// New creates an empty clone map for a unit of the given item type.
func New(prog *program.Program, itemType program.ItemType) *CloneMap {
	return &CloneMap{
		prog:     prog,
		types:    prog.Types,
		itemType: itemType,
		tracer:   trace.Nop,
		prelude:  make(map[PreludeModule]bool),
		names:    make(map[Node]*CloneInfo),
		index:    make(map[Node]dag.NodeID),
		taken:    make(map[why.Ident]struct{}),
		graph:    dag.New[types.SubstID](),
	}
}

// SetTracer enables node-level events.
func (m *CloneMap) SetTracer(t trace.Tracer) {
	if t == nil {
		t = trace.Nop
	}
	m.tracer = t
}

// ItemType returns the kind of unit the map belongs to.
func (m *CloneMap) ItemType() program.ItemType { return m.itemType }

// Program returns the program the map was built for.
func (m *CloneMap) Program() *program.Program { return m.prog }

// Insert returns the entry for (def, subst), allocating a fresh name on first
// sight. Associated items are addressed through their trait or impl.
func (m *CloneMap) Insert(def types.DefID, subst types.SubstID) *CloneInfo {
	_, info, _ := m.intern(def, subst)
	return info
}

func (m *CloneMap) normalize(def types.DefID) types.DefID {
	if parent, ok := m.prog.Container(def); ok {
		return parent
	}
	return def
}

// intern is Insert that also reports the node and whether it is new.
func (m *CloneMap) intern(def types.DefID, subst types.SubstID) (Node, *CloneInfo, bool) {
	node := Node{Def: m.normalize(def), Subst: subst}
	if info, ok := m.names[node]; ok {
		return node, info, false
	}
	info := &CloneInfo{Name: m.freshName(node.Def)}
	m.add(node, info)
	return node, info, true
}

// freshName is the item name followed by the counter. A name ending in
// digits can meet a later counter value, so taken names are skipped.
func (m *CloneMap) freshName(def types.DefID) why.Ident {
	base := program.CamelCase(m.prog.ItemName(def))
	for {
		name := why.Ident(base + fmt.Sprint(m.count))
		m.count++
		if _, ok := m.taken[name]; !ok {
			return name
		}
	}
}

func (m *CloneMap) add(node Node, info *CloneInfo) {
	id, err := safecast.Conv[dag.NodeID](len(m.order))
	if err != nil {
		panic(fmt.Errorf("clone table overflow: %w", err))
	}
	m.names[node] = info
	m.taken[info.Name] = struct{}{}
	m.index[node] = id
	m.order = append(m.order, node)
}

// CloneSelf registers the unit's own definition under its identity
// substitution. The entry is named after the definition's module and is never
// emitted.
func (m *CloneMap) CloneSelf(def types.DefID) {
	node := Node{Def: def, Subst: m.prog.IdentitySubst(def)}
	info := &CloneInfo{Name: why.Ident(m.prog.ModuleName(def)), hidden: true}
	if old, ok := m.names[node]; ok {
		*old = *info
		m.taken[info.Name] = struct{}{}
		return
	}
	m.add(node, info)
}

// ImportPrelude requests a use declaration for p.
func (m *CloneMap) ImportPrelude(p PreludeModule) {
	if _, ok := m.prelude[p]; ok {
		return
	}
	m.prelude[p] = false
	m.preludeOrder = append(m.preludeOrder, p)
}

// Keys returns every node in insertion order.
func (m *CloneMap) Keys() []Node {
	return slices.Clone(m.order)
}

// Len returns the number of entries.
func (m *CloneMap) Len() int { return len(m.order) }

// Lookup returns the entry of an already inserted node.
func (m *CloneMap) Lookup(node Node) (*CloneInfo, bool) {
	info, ok := m.names[node]
	return info, ok
}

// Prelude returns the requested prelude modules in request order.
func (m *CloneMap) Prelude() []PreludeModule {
	return slices.Clone(m.preludeOrder)
}

func (m *CloneMap) nodeName(node Node) string {
	if info, ok := m.names[node]; ok {
		return string(info.Name)
	}
	return m.prog.DefPath(node.Def) + m.prog.SubstString(node.Subst)
}
