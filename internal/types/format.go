package types

import (
	"strconv"
	"strings"
)

// Namer resolves definition paths for printing.
type Namer interface {
	DefPath(id DefID) string
}

// TypeString renders t in source-like syntax (`Vec<i32>`, `<T as Iterator>::Item`).
func (in *Interner) TypeString(t TypeID, names Namer) string {
	var b strings.Builder
	in.writeType(&b, t, names)
	return b.String()
}

// SubstString renders a substitution as `[A, B]`.
func (in *Interner) SubstString(s SubstID, names Namer) string {
	var b strings.Builder
	b.WriteByte('[')
	in.writeArgs(&b, in.SubstArgs(s), names)
	b.WriteByte(']')
	return b.String()
}

func (in *Interner) writeArgs(b *strings.Builder, args []TypeID, names Namer) {
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		in.writeType(b, arg, names)
	}
}

func (in *Interner) writeType(b *strings.Builder, t TypeID, names Namer) {
	tt, ok := in.Lookup(t)
	if !ok {
		b.WriteString("<invalid>")
		return
	}
	switch tt.Kind {
	case KindBool:
		b.WriteString("bool")
	case KindMathInt:
		b.WriteString("int")
	case KindChar:
		b.WriteString("char")
	case KindInt, KindUint:
		if tt.Kind == KindInt {
			b.WriteByte('i')
		} else {
			b.WriteByte('u')
		}
		if tt.Width == WidthSize {
			b.WriteString("size")
		} else {
			b.WriteString(strconv.Itoa(int(tt.Width)))
		}
	case KindFloat:
		b.WriteByte('f')
		b.WriteString(strconv.Itoa(int(tt.Width)))
	case KindRef:
		b.WriteByte('&')
		if tt.Mutable {
			b.WriteString("mut ")
		}
		in.writeType(b, tt.Elem, names)
	case KindTuple:
		b.WriteByte('(')
		in.writeArgs(b, in.SubstArgs(tt.Args), names)
		b.WriteByte(')')
	case KindAdt:
		b.WriteString(defPath(names, tt.Def))
		if args := in.SubstArgs(tt.Args); len(args) > 0 {
			b.WriteByte('<')
			in.writeArgs(b, args, names)
			b.WriteByte('>')
		}
	case KindProjection:
		path := defPath(names, tt.Def)
		trait, item := path, path
		if i := strings.LastIndex(path, "::"); i >= 0 {
			trait, item = path[:i], path[i+2:]
		}
		args := in.SubstArgs(tt.Args)
		b.WriteByte('<')
		if len(args) > 0 {
			in.writeType(b, args[0], names)
			b.WriteString(" as ")
		}
		b.WriteString(trait)
		if len(args) > 1 {
			b.WriteByte('<')
			in.writeArgs(b, args[1:], names)
			b.WriteByte('>')
		}
		b.WriteString(">::")
		b.WriteString(item)
	case KindParam, KindRegion, KindConst:
		b.WriteString(tt.Name)
	default:
		b.WriteString(tt.Kind.String())
	}
}

func defPath(names Namer, id DefID) string {
	if names == nil {
		return "def#" + strconv.FormatUint(uint64(id), 10)
	}
	return names.DefPath(id)
}
