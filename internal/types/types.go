package types

import "fmt"

// DefID identifies a definition of the translated program (function, trait,
// impl, ADT, associated item). Zero is reserved for "no definition".
type DefID uint32

// NoDefID marks the absence of a definition.
const NoDefID DefID = 0

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// SubstID identifies an interned substitution (an ordered list of generic
// arguments). Equal argument lists always intern to the same SubstID.
type SubstID uint32

// EmptySubst is the substitution without arguments.
const EmptySubst SubstID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindMathInt // unbounded logic integer
	KindInt
	KindUint
	KindChar
	KindFloat
	KindRef
	KindTuple
	KindAdt
	KindParam
	KindProjection
	KindRegion // lifetime argument, never a value type
	KindConst  // const generic argument
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindBool:
		return "bool"
	case KindMathInt:
		return "int"
	case KindInt:
		return "sint"
	case KindUint:
		return "uint"
	case KindChar:
		return "char"
	case KindFloat:
		return "float"
	case KindRef:
		return "ref"
	case KindTuple:
		return "tuple"
	case KindAdt:
		return "adt"
	case KindParam:
		return "param"
	case KindProjection:
		return "projection"
	case KindRegion:
		return "region"
	case KindConst:
		return "const"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsValueType reports whether values can have a type of this kind.
// Regions and const arguments live in substitutions but are not types.
func (k Kind) IsValueType() bool {
	return k != KindInvalid && k != KindRegion && k != KindConst
}

// Width captures the precision of integers/floats.
type Width uint8

const (
	WidthAny  Width = 0
	Width8    Width = 8
	Width16   Width = 16
	Width32   Width = 32
	Width64   Width = 64
	Width128  Width = 128
	WidthSize Width = 255 // isize/usize
)

// Type is a compact, comparable descriptor for any supported type.
// Variadic parts (ADT arguments, tuple elements, projection trait arguments)
// are stored as an interned substitution so the descriptor itself can be a
// map key.
type Type struct {
	Kind    Kind
	Width   Width
	Mutable bool    // for references
	Elem    TypeID  // for references
	Def     DefID   // ADT definition, or associated type for projections
	Index   uint32  // parameter position
	Name    string  // parameter, region or const spelling
	Args    SubstID // ADT args, tuple elems, projection trait substitution
}

// MakeInt builds a signed machine integer descriptor.
func MakeInt(w Width) Type { return Type{Kind: KindInt, Width: w} }

// MakeUint builds an unsigned machine integer descriptor.
func MakeUint(w Width) Type { return Type{Kind: KindUint, Width: w} }

// MakeFloat builds a floating point descriptor.
func MakeFloat(w Width) Type { return Type{Kind: KindFloat, Width: w} }

// MakeReference builds a reference descriptor.
func MakeReference(elem TypeID, mutable bool) Type {
	return Type{Kind: KindRef, Elem: elem, Mutable: mutable}
}

// MakeParam builds a generic parameter descriptor at position index.
func MakeParam(index uint32, name string) Type {
	return Type{Kind: KindParam, Index: index, Name: name}
}

// Projection is a reference to "the associated type Assoc of the trait
// instantiation TraitSubst".
type Projection struct {
	Assoc      DefID
	TraitSubst SubstID
}
