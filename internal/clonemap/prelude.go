package clonemap

import "whyclone/internal/why"

// PreludeModule is a hand-written module of the output standard library.
type PreludeModule uint8

const (
	PreludeInt PreludeModule = iota
	PreludeInt32
	PreludeInt64
	PreludeUInt32
	PreludeUInt64
	PreludeChar
	PreludeSingle
	PreludeDouble
	PreludePrelude
	PreludeRef
	PreludeType
)

// QName is the module imported by a use declaration.
func (p PreludeModule) QName() why.QName {
	switch p {
	case PreludeInt:
		return why.ParseQName("mach.int.Int")
	case PreludeInt32:
		return why.ParseQName("mach.int.Int32")
	case PreludeInt64:
		return why.ParseQName("mach.int.Int64")
	case PreludeUInt32:
		return why.ParseQName("mach.int.UInt32")
	case PreludeUInt64:
		return why.ParseQName("mach.int.UInt64")
	case PreludeChar:
		return why.ParseQName("string.Char")
	case PreludeSingle:
		return why.ParseQName("floating_point.Single")
	case PreludeDouble:
		return why.ParseQName("floating_point.Double")
	case PreludePrelude:
		return why.ParseQName("prelude.Prelude")
	case PreludeRef:
		return why.ParseQName("Ref")
	case PreludeType:
		return why.ParseQName("Type")
	}
	return why.QName{Name: "unknown"}
}

func (p PreludeModule) String() string { return p.QName().String() }
