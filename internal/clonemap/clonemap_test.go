package clonemap

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"whyclone/internal/program"
	"whyclone/internal/types"
	"whyclone/internal/why"
)

func tparams(names ...string) []program.GenericParam {
	out := make([]program.GenericParam, len(names))
	for i, n := range names {
		out[i] = program.GenericParam{Name: n}
	}
	return out
}

func declStrings(decls []why.Decl) []string {
	out := make([]string, len(decls))
	for i, d := range decls {
		out[i] = why.FormatDecl(d)
	}
	return out
}

func expectDecls(t *testing.T, got []why.Decl, want ...string) {
	t.Helper()
	lines := declStrings(got)
	if !slices.Equal(lines, want) {
		t.Fatalf("declarations mismatch\n got:\n  %s\nwant:\n  %s", strings.Join(lines, "\n  "), strings.Join(want, "\n  "))
	}
}

// foo<T> calls bar<T>.
type fooBar struct {
	prog     *program.Program
	foo, bar types.DefID
	tables   Tables
}

func newFooBar(t *testing.T) *fooBar {
	t.Helper()
	prog := program.New(nil)
	foo := prog.MustAdd("foo", program.KindProgram, tparams("T")...).ID
	bar := prog.MustAdd("bar", program.KindLogic, tparams("T")...).ID

	fooTable := New(prog, program.ItemInterface)
	fooTable.CloneSelf(foo)
	fooTable.Insert(bar, prog.IdentitySubst(foo))

	barTable := New(prog, program.ItemLogic)
	barTable.CloneSelf(bar)

	return &fooBar{prog: prog, foo: foo, bar: bar, tables: Tables{foo: fooTable, bar: barTable}}
}

func (f *fooBar) subst(args ...types.TypeID) types.SubstID {
	return f.prog.Types.InternSubst(args)
}

func i32(prog *program.Program) types.TypeID {
	return prog.Types.Intern(types.MakeInt(types.Width32))
}

func TestInsertSharesEntries(t *testing.T) {
	f := newFooBar(t)
	m := New(f.prog, program.ItemProgram)
	s := f.subst(i32(f.prog))

	a := m.Insert(f.foo, s)
	b := m.Insert(f.foo, s)
	if a != b || a.Name != "Foo0" {
		t.Fatalf("repeated insert returned %p %q and %p %q", a, a.Name, b, b.Name)
	}
	c := m.Insert(f.foo, f.subst(f.prog.Types.Builtins().Bool))
	if c == a || c.Name != "Foo1" {
		t.Fatalf("distinct substitution must get a fresh entry, got %q", c.Name)
	}
	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
}

func TestInsertNormalizesAssociatedItems(t *testing.T) {
	prog := program.New(nil)
	iter := prog.MustAdd("Iterator", program.KindTrait, tparams("Self")...).ID
	next := prog.MustAdd("Iterator::next", program.KindProgram).ID
	item := prog.MustAdd("Iterator::Item", program.KindAssocType).ID
	for _, child := range []types.DefID{next, item} {
		if err := prog.SetParent(child, iter); err != nil {
			t.Fatal(err)
		}
	}

	m := New(prog, program.ItemProgram)
	s := prog.Types.InternSubst([]types.TypeID{i32(prog)})
	viaMethod := m.Insert(next, s)
	viaType := m.Insert(item, s)
	viaTrait := m.Insert(iter, s)
	if viaMethod != viaTrait || viaType != viaTrait {
		t.Fatalf("associated items must share the trait entry")
	}
	if viaTrait.Name != "Iterator0" {
		t.Fatalf("name = %q, want Iterator0", viaTrait.Name)
	}
	if keys := m.Keys(); len(keys) != 1 || keys[0].Def != iter {
		t.Fatalf("keys = %v", keys)
	}
}

func TestEndToEndSharing(t *testing.T) {
	f := newFooBar(t)
	m := New(f.prog, program.ItemProgram)
	m.Insert(f.foo, f.subst(i32(f.prog)))

	decls, err := m.ToClones(f.tables)
	if err != nil {
		t.Fatal(err)
	}
	expectDecls(t, decls,
		"use mach.int.Int32",
		"clone Bar as Bar1 with type t = int32",
		"clone Foo_Interface as Foo0 with type t = int32, function Bar0.bar = Bar1.bar",
	)
}

func TestToClonesEmitsEachEntryOnce(t *testing.T) {
	f := newFooBar(t)
	m := New(f.prog, program.ItemProgram)
	m.Insert(f.foo, f.subst(i32(f.prog)))

	if _, err := m.ToClones(f.tables); err != nil {
		t.Fatal(err)
	}
	again, err := m.ToClones(f.tables)
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 0 {
		t.Fatalf("second emission repeated declarations: %v", declStrings(again))
	}

	m.Insert(f.foo, f.subst(f.prog.Types.Intern(types.MakeInt(types.Width64))))
	more, err := m.ToClones(f.tables)
	if err != nil {
		t.Fatal(err)
	}
	expectDecls(t, more,
		"use mach.int.Int64",
		"clone Bar as Bar3 with type t = int64",
		"clone Foo_Interface as Foo2 with type t = int64, function Bar0.bar = Bar3.bar",
	)
}

func TestToClonesRespectsEveryEdge(t *testing.T) {
	// top<T> uses left<T> and right<T>; both use base<T>.
	prog := program.New(nil)
	top := prog.MustAdd("top", program.KindProgram, tparams("T")...).ID
	left := prog.MustAdd("left", program.KindProgram, tparams("T")...).ID
	right := prog.MustAdd("right", program.KindLogic, tparams("T")...).ID
	base := prog.MustAdd("base", program.KindPredicate, tparams("T")...).ID

	table := func(self types.DefID, deps ...types.DefID) *CloneMap {
		tbl := New(prog, program.ItemInterface)
		tbl.CloneSelf(self)
		for _, d := range deps {
			tbl.Insert(d, prog.IdentitySubst(self))
		}
		return tbl
	}
	env := Tables{
		top:   table(top, left, right),
		left:  table(left, base),
		right: table(right, base),
		base:  table(base),
	}

	m := New(prog, program.ItemProgram)
	m.Insert(top, prog.Types.InternSubst([]types.TypeID{prog.Types.Builtins().Bool}))
	decls, err := m.ToClones(env)
	if err != nil {
		t.Fatal(err)
	}

	pos := make(map[string]int)
	for i, d := range decls {
		if c, ok := d.(why.CloneDecl); ok {
			pos[string(c.As)] = i
		}
	}
	if len(pos) != 4 {
		t.Fatalf("expected 4 clones, got %v", declStrings(decls))
	}
	g := m.Snapshot()
	if len(g.Edges) != 4 {
		t.Fatalf("expected 4 edges, got %+v", g.Edges)
	}
	for _, e := range g.Edges {
		if pos[e.From] >= pos[e.To] {
			t.Fatalf("edge %s -> %s emitted out of order: %v", e.From, e.To, declStrings(decls))
		}
	}
	// base is shared by left and right: one clone only.
	baseClones := 0
	for _, line := range declStrings(decls) {
		if strings.HasPrefix(line, "clone Base ") {
			baseClones++
		}
	}
	if baseClones != 1 {
		t.Fatalf("base cloned %d times", baseClones)
	}
}

func TestHiddenSelfIsNeverEmitted(t *testing.T) {
	// foo<T> and bar<T> call each other.
	prog := program.New(nil)
	foo := prog.MustAdd("foo", program.KindProgram, tparams("T")...).ID
	bar := prog.MustAdd("bar", program.KindProgram, tparams("T")...).ID

	barTable := New(prog, program.ItemInterface)
	barTable.CloneSelf(bar)
	barTable.Insert(foo, prog.IdentitySubst(bar))
	env := Tables{bar: barTable}

	m := New(prog, program.ItemProgram)
	m.CloneSelf(foo)
	m.Insert(bar, prog.IdentitySubst(foo))

	decls, err := m.ToClones(env)
	if err != nil {
		t.Fatal(err)
	}
	expectDecls(t, decls, "clone Bar_Interface as Bar0 with type t = 't, val Foo0.foo = Foo.foo")

	self, ok := m.Lookup(Node{Def: foo, Subst: prog.IdentitySubst(foo)})
	if !ok || !self.Hidden() || !self.Cloned() {
		t.Fatalf("self entry must be hidden and marked cloned, got %+v", self)
	}
}

func TestPreludeImportedOnce(t *testing.T) {
	f := newFooBar(t)
	m := New(f.prog, program.ItemProgram)
	for j := 0; j < 3; j++ {
		m.ImportPrelude(PreludeInt32)
	}
	m.ImportPrelude(PreludeChar)
	m.Insert(f.bar, f.subst(i32(f.prog)))

	decls, err := m.ToClones(f.tables)
	if err != nil {
		t.Fatal(err)
	}
	expectDecls(t, decls,
		"use mach.int.Int32",
		"use string.Char",
		"clone Bar as Bar0 with type t = int32",
	)

	m.ImportPrelude(PreludeInt32)
	again, err := m.ToClones(f.tables)
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 0 {
		t.Fatalf("prelude re-emitted: %v", declStrings(again))
	}
}

func TestCycleIsReported(t *testing.T) {
	prog := program.New(nil)
	a := prog.MustAdd("a", program.KindProgram).ID
	b := prog.MustAdd("b", program.KindProgram).ID

	ta := New(prog, program.ItemInterface)
	ta.Insert(b, types.EmptySubst)
	tb := New(prog, program.ItemInterface)
	tb.Insert(a, types.EmptySubst)

	m := New(prog, program.ItemProgram)
	m.ImportPrelude(PreludePrelude)
	m.Insert(a, types.EmptySubst)

	decls, err := m.ToClones(Tables{a: ta, b: tb})
	if !errors.Is(err, ErrCyclicDependency) {
		t.Fatalf("expected cyclic dependency, got %v", err)
	}
	var cycle *CycleError
	if !errors.As(err, &cycle) || !slices.Equal(cycle.Nodes, []string{"A0", "B1"}) {
		t.Fatalf("unexpected cycle report: %v", err)
	}
	if decls != nil {
		t.Fatalf("no declarations expected on cycle, got %v", declStrings(decls))
	}
	for _, node := range m.Keys() {
		if info, _ := m.Lookup(node); info.Cloned() {
			t.Fatalf("%s marked cloned despite the cycle", info.Name)
		}
	}
}

// iterProgram declares trait Iterator<Self> { type Item; } and MyIter.
func iterProgram(t *testing.T) (prog *program.Program, iter, item, myIter types.DefID) {
	t.Helper()
	prog = program.New(nil)
	iter = prog.MustAdd("Iterator", program.KindTrait, tparams("Self")...).ID
	item = prog.MustAdd("Iterator::Item", program.KindAssocType).ID
	if err := prog.SetParent(item, iter); err != nil {
		t.Fatal(err)
	}
	myIter = prog.MustAdd("my::MyIter", program.KindType).ID
	return prog, iter, item, myIter
}

func TestProjectionForcesTraitEdge(t *testing.T) {
	prog, iter, item, myIter := iterProgram(t)
	length := prog.MustAdd("len", program.KindLogic, tparams("T")...).ID
	in := prog.Types

	traitSubst := in.InternSubst([]types.TypeID{in.Adt(myIter)})
	proj := in.Projection(item, traitSubst)

	for _, it := range []program.ItemType{program.ItemProgram, program.ItemLogic} {
		m := New(prog, it)
		m.Insert(length, in.InternSubst([]types.TypeID{proj}))
		decls, err := m.ToClones(Tables{})
		if err != nil {
			t.Fatal(err)
		}

		traitNode := Node{Def: iter, Subst: traitSubst}
		info, ok := m.Lookup(traitNode)
		if !ok || info.Name != "Iterator1" {
			t.Fatalf("%s: trait instantiation not interned", it)
		}
		g := m.Snapshot()
		if len(g.Edges) != 1 || g.Edges[0].From != "Iterator1" || g.Edges[0].To != "Len0" || len(g.Edges[0].Labels) != 0 {
			t.Fatalf("%s: expected unlabelled edge Iterator1 -> Len0, got %+v", it, g.Edges)
		}

		target := "Len"
		if it.ClonesInterfaces() {
			target = "Len_Interface"
		}
		expectDecls(t, decls,
			"use Type",
			"clone Iterator as Iterator1 with type self = Type.my_my_iter",
			"clone "+target+" as Len0 with type t = Iterator1.item",
		)
	}
}

func TestPendingProjectionsAreBound(t *testing.T) {
	prog, iter, item, myIter := iterProgram(t)
	in := prog.Types

	m := New(prog, program.ItemProgram)
	info := m.Insert(iter, in.InternSubst([]types.TypeID{in.Adt(myIter)}))
	info.AddProjection(item, i32(prog))
	info.AddProjection(item, i32(prog))
	if len(info.Projections()) != 1 {
		t.Fatalf("duplicate projection binding kept")
	}

	decls, err := m.ToClones(Tables{})
	if err != nil {
		t.Fatal(err)
	}
	expectDecls(t, decls,
		"use Type",
		"use mach.int.Int32",
		"clone Iterator as Iterator0 with type self = Type.my_my_iter, type item = int32",
	)
	if len(info.Projections()) != 0 {
		t.Fatalf("projections must be drained by emission")
	}
}

func TestUnresolvedProjection(t *testing.T) {
	prog := program.New(nil)
	impl := prog.MustAdd("MyImpl", program.KindImpl).ID
	out := prog.MustAdd("MyImpl::Out", program.KindAssocType).ID
	if err := prog.SetParent(out, impl); err != nil {
		t.Fatal(err)
	}
	f := prog.MustAdd("f", program.KindLogic, tparams("T")...).ID
	in := prog.Types

	m := New(prog, program.ItemProgram)
	m.Insert(f, in.InternSubst([]types.TypeID{in.Projection(out, types.EmptySubst)}))
	_, err := m.ToClones(Tables{})
	var perr *ProjectionError
	if !errors.Is(err, ErrUnresolvedProjection) || !errors.As(err, &perr) {
		t.Fatalf("expected unresolved projection, got %v", err)
	}
	if perr.Assoc != "MyImpl::Out" || perr.Node != "F0" {
		t.Fatalf("unexpected error details: %+v", perr)
	}
}

func TestInterfaceUnitDoesNotShare(t *testing.T) {
	f := newFooBar(t)
	m := New(f.prog, program.ItemInterface)
	m.Insert(f.foo, f.subst(i32(f.prog)))

	decls, err := m.ToClones(f.tables)
	if err != nil {
		t.Fatal(err)
	}
	expectDecls(t, decls,
		"use mach.int.Int32",
		"clone Foo_Interface as Foo0 with type t = int32",
	)
}

func TestEdgeKeepsEveryOriginalSubstitution(t *testing.T) {
	// pair<T, U> uses bar<T> and bar<U>; with T = U both share one clone.
	prog := program.New(nil)
	pair := prog.MustAdd("pair", program.KindProgram, tparams("T", "U")...).ID
	bar := prog.MustAdd("bar", program.KindLogic, tparams("X")...).ID
	in := prog.Types

	table := New(prog, program.ItemInterface)
	table.CloneSelf(pair)
	table.Insert(bar, in.InternSubst([]types.TypeID{in.Param(0, "T")}))
	table.Insert(bar, in.InternSubst([]types.TypeID{in.Param(1, "U")}))

	m := New(prog, program.ItemProgram)
	m.Insert(pair, in.InternSubst([]types.TypeID{i32(prog), i32(prog)}))
	decls, err := m.ToClones(Tables{pair: table})
	if err != nil {
		t.Fatal(err)
	}
	expectDecls(t, decls,
		"use mach.int.Int32",
		"clone Bar as Bar1 with type x = int32",
		"clone Pair_Interface as Pair0 with type t = int32, type u = int32, "+
			"function Bar0.bar = Bar1.bar, function Bar1.bar = Bar1.bar",
	)
}

func TestMissingProviderEntry(t *testing.T) {
	f := newFooBar(t)
	m := New(f.prog, program.ItemProgram)
	m.Insert(f.foo, f.subst(i32(f.prog)))

	// The graph is built from one table and emitted against another.
	if err := m.updateGraph(f.tables); err != nil {
		t.Fatal(err)
	}
	_, err := m.ToClones(Tables{})
	if err == nil || !strings.Contains(err.Error(), "has no entry for bar[T]") {
		t.Fatalf("expected missing provider error, got %v", err)
	}
	for _, node := range m.Keys() {
		if info, _ := m.Lookup(node); info.Cloned() {
			t.Fatalf("%s marked cloned after a failed emission", info.Name)
		}
	}
}

func TestProjectionInsideBindingForcesEdge(t *testing.T) {
	prog, iter, item, myIter := iterProgram(t)
	tr := prog.MustAdd("Tr", program.KindTrait, tparams("Self")...).ID
	out := prog.MustAdd("Tr::Out", program.KindAssocType).ID
	if err := prog.SetParent(out, tr); err != nil {
		t.Fatal(err)
	}
	in := prog.Types
	self := in.InternSubst([]types.TypeID{in.Adt(myIter)})

	m := New(prog, program.ItemProgram)
	info := m.Insert(iter, self)
	info.AddProjection(item, in.Projection(out, self))
	decls, err := m.ToClones(Tables{})
	if err != nil {
		t.Fatal(err)
	}

	g := m.Snapshot()
	if len(g.Edges) != 1 || g.Edges[0].From != "Tr1" || g.Edges[0].To != "Iterator0" {
		t.Fatalf("expected edge Tr1 -> Iterator0, got %+v", g.Edges)
	}
	expectDecls(t, decls,
		"use Type",
		"clone Tr as Tr1 with type self = Type.my_my_iter",
		"clone Iterator as Iterator0 with type self = Type.my_my_iter, type item = Tr1.out",
	)
}

// vecIterTable is the table of a definition user<T> that clones
// Iterator<Vec<T>> with Item = T.
func vecIterTable(prog *program.Program, user, iter, item, vec types.DefID) *CloneMap {
	in := prog.Types
	table := New(prog, program.ItemInterface)
	table.CloneSelf(user)
	ti := table.Insert(iter, in.InternSubst([]types.TypeID{in.Adt(vec, in.Param(0, "T"))}))
	ti.AddProjection(item, in.Param(0, "T"))
	return table
}

func iteratorDecl(t *testing.T, decls []why.Decl) string {
	t.Helper()
	for _, line := range declStrings(decls) {
		if strings.HasPrefix(line, "clone Iterator as ") {
			return line
		}
	}
	t.Fatalf("no Iterator clone in %v", declStrings(decls))
	return ""
}

func TestDependencyProjectionsDoNotDependOnInsertOrder(t *testing.T) {
	prog, iter, item, _ := iterProgram(t)
	vec := prog.MustAdd("Vec", program.KindType, tparams("T")...).ID
	foo := prog.MustAdd("foo", program.KindProgram, tparams("T")...).ID
	length := prog.MustAdd("len", program.KindLogic, tparams("T")...).ID
	in := prog.Types
	tables := Tables{foo: vecIterTable(prog, foo, iter, item, vec)}

	vecI32 := in.InternSubst([]types.TypeID{in.Adt(vec, i32(prog))})
	useFoo := func(m *CloneMap) { m.Insert(foo, in.InternSubst([]types.TypeID{i32(prog)})) }
	useLen := func(m *CloneMap) {
		m.Insert(length, in.InternSubst([]types.TypeID{in.Projection(item, vecI32)}))
	}

	for _, order := range [][]func(*CloneMap){{useFoo, useLen}, {useLen, useFoo}} {
		m := New(prog, program.ItemProgram)
		for _, use := range order {
			use(m)
		}
		decls, err := m.ToClones(tables)
		if err != nil {
			t.Fatal(err)
		}
		line := iteratorDecl(t, decls)
		if !strings.HasSuffix(line, " with type self = Type.vec int32, type item = int32") {
			t.Fatalf("binding copied from the table of foo is missing: %s", line)
		}
	}
}

func TestBindingAfterEmissionIsAnError(t *testing.T) {
	prog, iter, item, _ := iterProgram(t)
	vec := prog.MustAdd("Vec", program.KindType, tparams("T")...).ID
	foo := prog.MustAdd("foo", program.KindProgram, tparams("T")...).ID
	baz := prog.MustAdd("baz", program.KindProgram, tparams("T")...).ID
	in := prog.Types
	tables := Tables{
		foo: vecIterTable(prog, foo, iter, item, vec),
		baz: vecIterTable(prog, baz, iter, item, vec),
	}
	argI32 := in.InternSubst([]types.TypeID{i32(prog)})
	vecI32 := in.InternSubst([]types.TypeID{in.Adt(vec, i32(prog))})

	// The same binding arriving again after emission is fine.
	m := New(prog, program.ItemProgram)
	m.Insert(foo, argI32)
	if _, err := m.ToClones(tables); err != nil {
		t.Fatal(err)
	}
	m.Insert(baz, argI32)
	if _, err := m.ToClones(tables); err != nil {
		t.Fatalf("repeated binding rejected: %v", err)
	}

	// A clone emitted without the binding cannot take it later.
	m = New(prog, program.ItemProgram)
	m.Insert(iter, vecI32)
	if _, err := m.ToClones(tables); err != nil {
		t.Fatal(err)
	}
	m.Insert(foo, argI32)
	_, err := m.ToClones(tables)
	var late *LateProjectionError
	if !errors.Is(err, ErrLateProjection) || !errors.As(err, &late) {
		t.Fatalf("expected late projection error, got %v", err)
	}
	if late.Node != "Iterator0" || late.Assoc != "Iterator::Item" {
		t.Fatalf("unexpected error details: %+v", late)
	}
}

func TestFreshNamesSkipTakenOnes(t *testing.T) {
	prog := program.New(nil)
	foo1 := prog.MustAdd("foo1", program.KindLogic).ID
	foo := prog.MustAdd("foo", program.KindLogic).ID
	bar := prog.MustAdd("bar", program.KindLogic, tparams("T")...).ID
	in := prog.Types
	b := in.Builtins()

	m := New(prog, program.ItemProgram)
	if got := m.Insert(foo1, types.EmptySubst).Name; got != "Foo10" {
		t.Fatalf("foo1 named %q", got)
	}
	for k := 0; k < 9; k++ {
		m.Insert(bar, in.InternSubst([]types.TypeID{in.Tuple(repeatTypeIDs(b.Bool, k)...)}))
	}
	if got := m.Insert(foo, types.EmptySubst).Name; got != "Foo11" {
		t.Fatalf("foo named %q, want Foo11", got)
	}
}

// repeatTypeIDs stands in for slices.Repeat, which needs Go 1.23.
func repeatTypeIDs(id types.TypeID, n int) []types.TypeID {
	out := make([]types.TypeID, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, id)
	}
	return out
}
