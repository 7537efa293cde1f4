package clonemap

import (
	"fmt"
	"strings"

	"whyclone/internal/program"
	"whyclone/internal/types"
	"whyclone/internal/why"
)

// TranslateType renders a type of the program in the output language,
// importing the prelude modules it needs. Projections are read from the
// clone of their trait instantiation, which is inserted if missing.
func (m *CloneMap) TranslateType(id types.TypeID) (why.Type, error) {
	t, ok := m.types.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("clonemap: invalid type #%d", id)
	}

	switch t.Kind {
	case types.KindBool:
		return why.Con("bool"), nil

	case types.KindMathInt:
		m.ImportPrelude(PreludeInt)
		return why.Con("int"), nil

	case types.KindInt, types.KindUint:
		return m.machineInt(t), nil

	case types.KindChar:
		m.ImportPrelude(PreludeChar)
		return why.Con("char"), nil

	case types.KindFloat:
		if t.Width == types.Width32 {
			m.ImportPrelude(PreludeSingle)
			return why.Con("single"), nil
		}
		m.ImportPrelude(PreludeDouble)
		return why.Con("double"), nil

	case types.KindRef:
		elem, err := m.TranslateType(t.Elem)
		if err != nil {
			return nil, err
		}
		if !t.Mutable {
			return elem, nil
		}
		m.ImportPrelude(PreludePrelude)
		return why.TApp{Fun: why.Con("borrowed"), Args: []why.Type{elem}}, nil

	case types.KindTuple:
		elems, err := m.translateArgs(t.Args)
		if err != nil {
			return nil, err
		}
		return why.TTuple{Elems: elems}, nil

	case types.KindAdt:
		return m.translateAdt(t)

	case types.KindParam:
		return why.TVar{Name: why.Ident(program.SnakeCase(t.Name))}, nil

	case types.KindProjection:
		trait, ok := m.prog.TraitOf(t.Def)
		if !ok {
			return nil, &ProjectionError{Assoc: m.prog.DefPath(t.Def), Node: m.prog.TypeString(id)}
		}
		info := m.Insert(trait, t.Args)
		return why.TConstructor{Name: info.QName(why.Ident(m.prog.TypeName(t.Def)))}, nil
	}
	return nil, fmt.Errorf("clonemap: %s is not a value type", m.prog.TypeString(id))
}

func (m *CloneMap) machineInt(t types.Type) why.Type {
	signed := t.Kind == types.KindInt
	prefix := "uint"
	if signed {
		prefix = "int"
	}
	switch t.Width {
	case types.Width32:
		if signed {
			m.ImportPrelude(PreludeInt32)
		} else {
			m.ImportPrelude(PreludeUInt32)
		}
		return why.Con(prefix + "32")
	case types.Width64:
		if signed {
			m.ImportPrelude(PreludeInt64)
		} else {
			m.ImportPrelude(PreludeUInt64)
		}
		return why.Con(prefix + "64")
	case types.WidthSize:
		if signed {
			m.ImportPrelude(PreludeInt64)
			return why.Con("isize")
		}
		m.ImportPrelude(PreludeUInt64)
		return why.Con("usize")
	}
	// 8, 16 and 128 bit integers live in the base prelude.
	m.ImportPrelude(PreludePrelude)
	return why.Con(fmt.Sprintf("%s%d", prefix, t.Width))
}

func (m *CloneMap) translateArgs(s types.SubstID) ([]why.Type, error) {
	args := m.types.SubstArgs(s)
	out := make([]why.Type, 0, len(args))
	for _, arg := range args {
		a, err := m.TranslateType(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// translateAdt names a data type `Type.<snake path>` unless it maps to a
// builtin symbol. Lifetime and const arguments are dropped.
func (m *CloneMap) translateAdt(t types.Type) (why.Type, error) {
	d := m.prog.MustDef(t.Def)
	var name why.Type
	if d.Builtin != "" {
		name = why.Con(d.Builtin)
	} else {
		m.ImportPrelude(PreludeType)
		segs := strings.Split(d.Path, "::")
		for i := range segs {
			segs[i] = program.SnakeCase(segs[i])
		}
		name = why.TConstructor{Name: why.Qualify("Type", why.Ident(strings.Join(segs, "_")))}
	}

	var args []why.Type
	for _, arg := range m.types.SubstArgs(t.Args) {
		at, ok := m.types.Lookup(arg)
		if !ok || !at.Kind.IsValueType() {
			continue
		}
		if at.Kind == types.KindParam && strings.HasPrefix(at.Name, "'") {
			continue
		}
		a, err := m.TranslateType(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	if len(args) == 0 {
		return name, nil
	}
	return why.TApp{Fun: name, Args: args}, nil
}
