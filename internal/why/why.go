// Package why holds the declarative output primitives produced by the clone
// graph: module imports and clone declarations with their substitutions.
package why

import "strings"

// Ident is a single output identifier.
type Ident string

// QName is a possibly module-qualified name.
type QName struct {
	Module []Ident
	Name   Ident
}

// ParseQName splits a dotted name (`mach.int.Int32`).
func ParseQName(s string) QName {
	parts := strings.Split(s, ".")
	q := QName{Name: Ident(parts[len(parts)-1])}
	for _, p := range parts[:len(parts)-1] {
		q.Module = append(q.Module, Ident(p))
	}
	return q
}

// Qualify returns the name sym inside module m.
func Qualify(m Ident, sym Ident) QName {
	return QName{Module: []Ident{m}, Name: sym}
}

// ModuleName drops the last segment: `A.B.f` becomes `A.B`.
func (q QName) ModuleName() QName {
	if len(q.Module) == 0 {
		return QName{Name: q.Name}
	}
	last := len(q.Module) - 1
	return QName{Module: append([]Ident(nil), q.Module[:last]...), Name: q.Module[last]}
}

func (q QName) String() string {
	if len(q.Module) == 0 {
		return string(q.Name)
	}
	var b strings.Builder
	for _, m := range q.Module {
		b.WriteString(string(m))
		b.WriteByte('.')
	}
	b.WriteString(string(q.Name))
	return b.String()
}

// Type is an output type expression.
type Type interface {
	typeNode()
}

// TConstructor is a named type (`int32`, `Type.vec`, `Iterator0.item`).
type TConstructor struct{ Name QName }

// TApp applies a type constructor to arguments.
type TApp struct {
	Fun  Type
	Args []Type
}

// TVar is a type variable.
type TVar struct{ Name Ident }

// TTuple is a tuple type; the empty tuple is unit.
type TTuple struct{ Elems []Type }

func (TConstructor) typeNode() {}
func (TApp) typeNode()         {}
func (TVar) typeNode()         {}
func (TTuple) typeNode()       {}

// Con is a shorthand for a named type.
func Con(name string) Type { return TConstructor{Name: ParseQName(name)} }

// SubstKind tags a clone substitution entry.
type SubstKind uint8

const (
	SubstType SubstKind = iota
	SubstVal
	SubstFunction
	SubstPredicate
)

func (k SubstKind) String() string {
	switch k {
	case SubstType:
		return "type"
	case SubstVal:
		return "val"
	case SubstFunction:
		return "function"
	case SubstPredicate:
		return "predicate"
	default:
		return "unknown"
	}
}

// CloneSubst binds one symbol of the cloned module. Type entries bind Name
// to Type, all other kinds rename Name to Target.
type CloneSubst struct {
	Kind   SubstKind
	Name   QName
	Type   Type
	Target QName
}

// TypeSubst binds a type symbol.
func TypeSubst(name QName, t Type) CloneSubst {
	return CloneSubst{Kind: SubstType, Name: name, Type: t}
}

// ValSubst renames a program value.
func ValSubst(name, target QName) CloneSubst {
	return CloneSubst{Kind: SubstVal, Name: name, Target: target}
}

// FunctionSubst renames a logic function.
func FunctionSubst(name, target QName) CloneSubst {
	return CloneSubst{Kind: SubstFunction, Name: name, Target: target}
}

// PredicateSubst renames a predicate.
func PredicateSubst(name, target QName) CloneSubst {
	return CloneSubst{Kind: SubstPredicate, Name: name, Target: target}
}

// Decl is a module-level output declaration.
type Decl interface {
	declNode()
}

// UseDecl imports a module.
type UseDecl struct{ Name QName }

// CloneDecl instantiates module Module under the name As.
type CloneDecl struct {
	Module QName
	Subst  []CloneSubst
	As     Ident
}

func (UseDecl) declNode()   {}
func (CloneDecl) declNode() {}

// Module is one emitted output module.
type Module struct {
	Name  Ident
	Decls []Decl
}
