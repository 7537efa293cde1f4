package why

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// FormatType renders a type in output syntax.
func FormatType(t Type) string {
	var b strings.Builder
	writeType(&b, t, false)
	return b.String()
}

func writeType(b *strings.Builder, t Type, nested bool) {
	switch t := t.(type) {
	case TConstructor:
		b.WriteString(t.Name.String())
	case TVar:
		b.WriteByte('\'')
		b.WriteString(string(t.Name))
	case TApp:
		if len(t.Args) == 0 {
			writeType(b, t.Fun, nested)
			return
		}
		if nested {
			b.WriteByte('(')
		}
		writeType(b, t.Fun, true)
		for _, arg := range t.Args {
			b.WriteByte(' ')
			writeType(b, arg, true)
		}
		if nested {
			b.WriteByte(')')
		}
	case TTuple:
		b.WriteByte('(')
		for i, elem := range t.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			writeType(b, elem, false)
		}
		b.WriteByte(')')
	case nil:
		b.WriteString("<nil>")
	default:
		fmt.Fprintf(b, "%v", t)
	}
}

// FormatSubst renders one clone substitution entry.
func FormatSubst(s CloneSubst) string {
	if s.Kind == SubstType {
		return "type " + s.Name.String() + " = " + FormatType(s.Type)
	}
	return s.Kind.String() + " " + s.Name.String() + " = " + s.Target.String()
}

// FormatDecl renders one declaration on a single line.
func FormatDecl(d Decl) string {
	switch d := d.(type) {
	case UseDecl:
		return "use " + d.Name.String()
	case CloneDecl:
		var b strings.Builder
		b.WriteString("clone ")
		b.WriteString(d.Module.String())
		b.WriteString(" as ")
		b.WriteString(string(d.As))
		for i, s := range d.Subst {
			if i == 0 {
				b.WriteString(" with ")
			} else {
				b.WriteString(", ")
			}
			b.WriteString(FormatSubst(s))
		}
		return b.String()
	}
	return fmt.Sprintf("(* unknown declaration %T *)", d)
}

// Printer writes modules to an io.Writer.
type Printer struct {
	w      *bufio.Writer
	Indent string
}

// NewPrinter wraps w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: bufio.NewWriter(w), Indent: "  "}
}

// Module writes one module block.
func (p *Printer) Module(m Module) error {
	if _, err := fmt.Fprintf(p.w, "module %s\n", m.Name); err != nil {
		return err
	}
	for _, d := range m.Decls {
		if _, err := fmt.Fprintf(p.w, "%s%s\n", p.Indent, FormatDecl(d)); err != nil {
			return err
		}
	}
	if _, err := p.w.WriteString("end\n"); err != nil {
		return err
	}
	return p.w.Flush()
}

// RenderModule returns the textual form of m.
func RenderModule(m Module) string {
	var b strings.Builder
	p := NewPrinter(&b)
	_ = p.Module(m) // strings.Builder never fails
	return b.String()
}
