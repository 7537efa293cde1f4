package program

// ItemType is the emission category of a definition, or of a translation
// unit when used as the item type of a clone map.
type ItemType uint8

const (
	ItemInvalid ItemType = iota
	ItemLogic
	ItemPredicate
	ItemInterface // signature-only view of a function
	ItemProgram
	ItemTrait
	ItemImpl
	ItemData // types and associated items; never cloned directly
)

func (t ItemType) String() string {
	switch t {
	case ItemLogic:
		return "logic"
	case ItemPredicate:
		return "predicate"
	case ItemInterface:
		return "interface"
	case ItemProgram:
		return "program"
	case ItemTrait:
		return "trait"
	case ItemImpl:
		return "impl"
	case ItemData:
		return "type"
	default:
		return "invalid"
	}
}

// ClonesInterfaces reports whether a unit of this type refers to its
// dependencies through their interfaces only. Such units never build a
// sharing graph.
func (t ItemType) ClonesInterfaces() bool {
	return t == ItemLogic || t == ItemPredicate || t == ItemInterface
}
