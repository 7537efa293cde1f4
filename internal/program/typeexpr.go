package program

import (
	"fmt"
	"strings"
	"unicode"

	"whyclone/internal/types"
)

// ParseType parses a type expression in the scope of the generic parameters
// of scope (NoDefID for a scope without parameters).
//
// Grammar:
//
//	type  := '&' ['mut'] type
//	       | '(' [type {',' type} [',']] ')'
//	       | '<' type 'as' path [args] '>' '::' ident
//	       | path [args] | lifetime | number
//	args  := '<' type {',' type} '>'
//	path  := ident {'::' ident}
func (p *Program) ParseType(src string, scope DefID) (types.TypeID, error) {
	toks, err := lexType(src)
	if err != nil {
		return types.NoTypeID, &TypeError{Src: src, Err: err}
	}
	tp := &typeParser{prog: p, toks: toks, params: p.Generics(scope)}
	t, err := tp.parseType()
	if err == nil && !tp.done() {
		err = fmt.Errorf("unexpected %q", tp.peek().text)
	}
	if err != nil {
		return types.NoTypeID, &TypeError{Src: src, Err: err}
	}
	return t, nil
}

// ParseSubst parses every argument of a substitution in scope.
func (p *Program) ParseSubst(args []string, scope DefID) (types.SubstID, error) {
	if len(args) == 0 {
		return types.EmptySubst, nil
	}
	ids := make([]types.TypeID, len(args))
	for i, arg := range args {
		t, err := p.ParseType(arg, scope)
		if err != nil {
			return types.EmptySubst, err
		}
		ids[i] = t
	}
	return p.Types.InternSubst(ids), nil
}

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokIdent
	tokNumber
	tokPunct
)

type typeTok struct {
	kind tokKind
	text string
}

func lexType(src string) ([]typeTok, error) {
	var toks []typeTok
	runes := []rune(src)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == ':':
			if i+1 >= len(runes) || runes[i+1] != ':' {
				return nil, fmt.Errorf("expected '::'")
			}
			toks = append(toks, typeTok{kind: tokPunct, text: "::"})
			i += 2
		case strings.ContainsRune("&()<>,", r):
			toks = append(toks, typeTok{kind: tokPunct, text: string(r)})
			i++
		case unicode.IsDigit(r):
			j := i
			for j < len(runes) && unicode.IsDigit(runes[j]) {
				j++
			}
			toks = append(toks, typeTok{kind: tokNumber, text: string(runes[i:j])})
			i = j
		case r == '\'' || r == '_' || unicode.IsLetter(r):
			j := i + 1
			for j < len(runes) && (runes[j] == '_' || unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j])) {
				j++
			}
			toks = append(toks, typeTok{kind: tokIdent, text: string(runes[i:j])})
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q", r)
		}
	}
	return toks, nil
}

type typeParser struct {
	prog   *Program
	toks   []typeTok
	pos    int
	params []GenericParam
}

func (tp *typeParser) done() bool { return tp.pos >= len(tp.toks) }

func (tp *typeParser) peek() typeTok {
	if tp.done() {
		return typeTok{kind: tokEOF, text: "end of input"}
	}
	return tp.toks[tp.pos]
}

func (tp *typeParser) accept(text string) bool {
	if t := tp.peek(); t.kind != tokEOF && t.text == text {
		tp.pos++
		return true
	}
	return false
}

func (tp *typeParser) expect(text string) error {
	if !tp.accept(text) {
		return fmt.Errorf("expected %q, found %q", text, tp.peek().text)
	}
	return nil
}

func (tp *typeParser) ident() (string, error) {
	t := tp.peek()
	if t.kind != tokIdent {
		return "", fmt.Errorf("expected identifier, found %q", t.text)
	}
	tp.pos++
	return t.text, nil
}

func (tp *typeParser) parseType() (types.TypeID, error) {
	in := tp.prog.Types
	t := tp.peek()
	switch {
	case t.text == "&":
		tp.pos++
		mutable := tp.accept("mut")
		elem, err := tp.parseType()
		if err != nil {
			return types.NoTypeID, err
		}
		return in.Ref(elem, mutable), nil

	case t.text == "(":
		tp.pos++
		var elems []types.TypeID
		trailing := false
		for !tp.accept(")") {
			elem, err := tp.parseType()
			if err != nil {
				return types.NoTypeID, err
			}
			elems = append(elems, elem)
			trailing = tp.accept(",")
			if !trailing && tp.peek().text != ")" {
				return types.NoTypeID, fmt.Errorf("expected ',' or ')', found %q", tp.peek().text)
			}
		}
		if len(elems) == 1 && !trailing {
			return elems[0], nil
		}
		return in.Tuple(elems...), nil

	case t.text == "<":
		tp.pos++
		return tp.parseProjection()

	case t.kind == tokNumber:
		tp.pos++
		return in.Const(t.text), nil

	case t.kind == tokIdent:
		return tp.parsePathType()
	}
	return types.NoTypeID, fmt.Errorf("expected type, found %q", t.text)
}

func (tp *typeParser) parseArgs() ([]types.TypeID, error) {
	if !tp.accept("<") {
		return nil, nil
	}
	var args []types.TypeID
	for {
		arg, err := tp.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if tp.accept(">") {
			return args, nil
		}
		if err := tp.expect(","); err != nil {
			return nil, err
		}
	}
}

func (tp *typeParser) parsePath() (string, error) {
	first, err := tp.ident()
	if err != nil {
		return "", err
	}
	segs := []string{first}
	for tp.peek().text == "::" && tp.pos+1 < len(tp.toks) && tp.toks[tp.pos+1].kind == tokIdent {
		tp.pos++
		seg, _ := tp.ident()
		segs = append(segs, seg)
	}
	return strings.Join(segs, "::"), nil
}

func (tp *typeParser) parsePathType() (types.TypeID, error) {
	path, err := tp.parsePath()
	if err != nil {
		return types.NoTypeID, err
	}
	args, err := tp.parseArgs()
	if err != nil {
		return types.NoTypeID, err
	}
	in := tp.prog.Types

	if !strings.Contains(path, "::") {
		for i, param := range tp.params {
			if param.Name == path {
				if len(args) > 0 {
					return types.NoTypeID, fmt.Errorf("generic parameter %s takes no arguments", path)
				}
				return in.Param(i, param.Name), nil
			}
		}
		if strings.HasPrefix(path, "'") {
			return in.Region(path), nil
		}
		if prim, ok := primitiveType(in, path); ok {
			if len(args) > 0 {
				return types.NoTypeID, fmt.Errorf("primitive %s takes no arguments", path)
			}
			return prim, nil
		}
	}

	id, ok := tp.prog.Lookup(path)
	if !ok {
		return types.NoTypeID, fmt.Errorf("unknown type %s", path)
	}
	def := tp.prog.MustDef(id)
	if def.Kind != KindType {
		return types.NoTypeID, fmt.Errorf("%s is a %s, not a type", path, def.Kind)
	}
	if len(args) != len(def.Params) {
		return types.NoTypeID, fmt.Errorf("%s expects %d arguments, got %d", path, len(def.Params), len(args))
	}
	return in.Adt(id, args...), nil
}

func (tp *typeParser) parseProjection() (types.TypeID, error) {
	self, err := tp.parseType()
	if err != nil {
		return types.NoTypeID, err
	}
	if err := tp.expect("as"); err != nil {
		return types.NoTypeID, err
	}
	traitPath, err := tp.parsePath()
	if err != nil {
		return types.NoTypeID, err
	}
	args, err := tp.parseArgs()
	if err != nil {
		return types.NoTypeID, err
	}
	if err := tp.expect(">"); err != nil {
		return types.NoTypeID, err
	}
	if err := tp.expect("::"); err != nil {
		return types.NoTypeID, err
	}
	name, err := tp.ident()
	if err != nil {
		return types.NoTypeID, err
	}

	trait, ok := tp.prog.Lookup(traitPath)
	if !ok || tp.prog.MustDef(trait).Kind != KindTrait {
		return types.NoTypeID, fmt.Errorf("unknown trait %s", traitPath)
	}
	assoc, ok := tp.prog.Lookup(traitPath + "::" + name)
	if !ok || tp.prog.MustDef(assoc).Kind != KindAssocType {
		return types.NoTypeID, fmt.Errorf("trait %s has no associated type %s", traitPath, name)
	}
	traitArgs := append([]types.TypeID{self}, args...)
	in := tp.prog.Types
	return in.Projection(assoc, in.InternSubst(traitArgs)), nil
}

func primitiveType(in *types.Interner, name string) (types.TypeID, bool) {
	switch name {
	case "bool":
		return in.Builtins().Bool, true
	case "int":
		return in.Builtins().Int, true
	case "char":
		return in.Builtins().Char, true
	case "f32":
		return in.Intern(types.MakeFloat(types.Width32)), true
	case "f64":
		return in.Intern(types.MakeFloat(types.Width64)), true
	case "isize":
		return in.Intern(types.MakeInt(types.WidthSize)), true
	case "usize":
		return in.Intern(types.MakeUint(types.WidthSize)), true
	}
	if len(name) < 2 || (name[0] != 'i' && name[0] != 'u') {
		return types.NoTypeID, false
	}
	var w types.Width
	switch name[1:] {
	case "8":
		w = types.Width8
	case "16":
		w = types.Width16
	case "32":
		w = types.Width32
	case "64":
		w = types.Width64
	case "128":
		w = types.Width128
	default:
		return types.NoTypeID, false
	}
	if name[0] == 'i' {
		return in.Intern(types.MakeInt(w)), true
	}
	return in.Intern(types.MakeUint(w)), true
}
