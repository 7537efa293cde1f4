package clonemap

import (
	"slices"
	"testing"

	"whyclone/internal/program"
	"whyclone/internal/types"
	"whyclone/internal/why"
)

func TestTranslateType(t *testing.T) {
	prog := program.New(nil)
	vec := prog.MustAdd("alloc::vec::Vec", program.KindType, tparams("T")...).ID
	seq := prog.MustAdd("creusot::Seq", program.KindType, tparams("T")...).ID
	prog.MustDef(seq).Builtin = "seq.Seq"
	holder := prog.MustAdd("Holder", program.KindType,
		program.GenericParam{Name: "'a", Kind: program.ParamLifetime}, program.GenericParam{Name: "T"}).ID
	in := prog.Types
	b := in.Builtins()

	cases := []struct {
		ty      types.TypeID
		want    string
		prelude []PreludeModule
	}{
		{b.Bool, "bool", nil},
		{b.Int, "int", []PreludeModule{PreludeInt}},
		{in.Intern(types.MakeInt(types.Width32)), "int32", []PreludeModule{PreludeInt32}},
		{in.Intern(types.MakeUint(types.Width64)), "uint64", []PreludeModule{PreludeUInt64}},
		{in.Intern(types.MakeUint(types.WidthSize)), "usize", []PreludeModule{PreludeUInt64}},
		{in.Intern(types.MakeInt(types.Width8)), "int8", []PreludeModule{PreludePrelude}},
		{b.Char, "char", []PreludeModule{PreludeChar}},
		{in.Intern(types.MakeFloat(types.Width32)), "single", []PreludeModule{PreludeSingle}},
		{in.Intern(types.MakeFloat(types.Width64)), "double", []PreludeModule{PreludeDouble}},
		{in.Ref(b.Char, false), "char", []PreludeModule{PreludeChar}},
		{in.Ref(in.Param(0, "T"), true), "borrowed 't", []PreludeModule{PreludePrelude}},
		{in.Tuple(b.Bool, in.Param(1, "ElemT")), "(bool, 'elem_t)", nil},
		{in.Tuple(), "()", nil},
		{in.Adt(vec, in.Ref(b.Bool, true)), "Type.alloc_vec_vec (borrowed bool)", []PreludeModule{PreludeType, PreludePrelude}},
		{in.Adt(seq, b.Bool), "seq.Seq bool", nil},
		{in.Adt(holder, in.Region("'static"), b.Bool), "Type.holder bool", []PreludeModule{PreludeType}},
		{in.Adt(holder, in.Param(0, "'a"), b.Bool), "Type.holder bool", []PreludeModule{PreludeType}},
	}
	for _, tc := range cases {
		m := New(prog, program.ItemProgram)
		got, err := m.TranslateType(tc.ty)
		if err != nil {
			t.Fatalf("%s: %v", prog.TypeString(tc.ty), err)
		}
		if s := why.FormatType(got); s != tc.want {
			t.Fatalf("%s: got %q, want %q", prog.TypeString(tc.ty), s, tc.want)
		}
		if !slices.Equal(m.Prelude(), tc.prelude) {
			t.Fatalf("%s: prelude = %v, want %v", prog.TypeString(tc.ty), m.Prelude(), tc.prelude)
		}
	}
}

func TestTranslateTypeRejectsNonValueTypes(t *testing.T) {
	prog := program.New(nil)
	m := New(prog, program.ItemProgram)
	for _, ty := range []types.TypeID{prog.Types.Region("'a"), prog.Types.Const("3"), types.NoTypeID} {
		if _, err := m.TranslateType(ty); err == nil {
			t.Fatalf("expected error for %s", prog.TypeString(ty))
		}
	}
}

func TestExportedSymbols(t *testing.T) {
	prog := program.New(nil)
	trait := prog.MustAdd("Model", program.KindTrait, tparams("Self")...).ID
	items := []struct {
		path string
		kind program.DefKind
	}{
		{"Model::view", program.KindLogic},
		{"Model::Valid", program.KindPredicate},
		{"Model::next", program.KindProgram},
		{"Model::ModelTy", program.KindAssocType},
		{"Model::N", program.KindAssocConst},
	}
	for _, it := range items {
		id := prog.MustAdd(it.path, it.kind).ID
		if err := prog.SetParent(id, trait); err != nil {
			t.Fatal(err)
		}
	}
	impl := prog.MustAdd("ModelForVec", program.KindImpl).ID
	logic := prog.MustAdd("shallow", program.KindLogic).ID
	pred := prog.MustAdd("isSorted", program.KindPredicate).ID
	fn := prog.MustAdd("push", program.KindProgram).ID

	want := []Symbol{
		{Kind: why.SubstFunction, Name: "view"},
		{Kind: why.SubstPredicate, Name: "valid"},
		{Kind: why.SubstVal, Name: "next"},
		{Kind: why.SubstType, Name: "model_ty"},
	}
	if got := ExportedSymbols(prog, trait); !slices.Equal(got, want) {
		t.Fatalf("trait symbols = %v, want %v", got, want)
	}
	if got := ExportedSymbols(prog, impl); len(got) != 0 {
		t.Fatalf("empty impl exports %v", got)
	}
	single := map[types.DefID]Symbol{
		logic: {Kind: why.SubstFunction, Name: "shallow"},
		pred:  {Kind: why.SubstPredicate, Name: "is_sorted"},
		fn:    {Kind: why.SubstVal, Name: "push"},
	}
	for def, sym := range single {
		if got := ExportedSymbols(prog, def); !slices.Equal(got, []Symbol{sym}) {
			t.Fatalf("%s exports %v, want %v", prog.DefPath(def), got, sym)
		}
	}
}

func TestCloneableName(t *testing.T) {
	prog := program.New(nil)
	logic := prog.MustAdd("seq::len", program.KindLogic).ID
	pred := prog.MustAdd("seq::sorted", program.KindPredicate).ID
	fn := prog.MustAdd("vec::push", program.KindProgram).ID
	trait := prog.MustAdd("ops::Index", program.KindTrait).ID
	impl := prog.MustAdd("ops::IndexVec", program.KindImpl).ID
	data := prog.MustAdd("vec::Vec", program.KindType).ID

	cases := []struct {
		def        types.DefID
		interfaces bool
		want       string
	}{
		{logic, false, "Seq_Len"},
		{logic, true, "Seq_Len_Interface"},
		{pred, false, "Seq_Sorted"},
		{pred, true, "Seq_Sorted_Interface"},
		{fn, false, "Vec_Push_Interface"},
		{fn, true, "Vec_Push_Interface"},
		{trait, false, "Ops_Index"},
		{impl, true, "Ops_IndexVec"},
	}
	for _, tc := range cases {
		got, err := cloneableName(prog, tc.def, tc.interfaces)
		if err != nil {
			t.Fatal(err)
		}
		if got.String() != tc.want {
			t.Fatalf("cloneableName(%s, %v) = %s, want %s", prog.DefPath(tc.def), tc.interfaces, got, tc.want)
		}
	}
	if _, err := cloneableName(prog, data, false); err == nil {
		t.Fatalf("data types must not be cloneable")
	}
}
