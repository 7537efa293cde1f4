package types

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid TypeID
	Bool    TypeID
	Int     TypeID // mathematical integer
	Char    TypeID
}

// Interner provides stable TypeIDs and SubstIDs by hashing structural
// descriptors. It is safe for concurrent use: translation units emitted in
// parallel share one interner.
type Interner struct {
	mu sync.RWMutex

	types []Type
	index map[Type]TypeID

	substs     [][]TypeID
	substIndex map[string]SubstID

	builtins Builtins
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:      make(map[Type]TypeID, 64),
		substIndex: make(map[string]SubstID, 64),
	}
	in.types = append(in.types, Type{Kind: KindInvalid}) // reserve 0 as invalid sentinel
	in.substs = append(in.substs, nil)
	in.substIndex[""] = EmptySubst

	in.builtins.Invalid = NoTypeID
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Int = in.Intern(Type{Kind: KindMathInt})
	in.builtins.Char = in.Intern(Type{Kind: KindChar})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	in.mu.RLock()
	id, ok := in.index[t]
	in.mu.RUnlock()
	if ok {
		return id
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.index[t]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id = TypeID(n)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// InternSubst returns the SubstID for the argument list. The slice is copied.
func (in *Interner) InternSubst(args []TypeID) SubstID {
	if len(args) == 0 {
		return EmptySubst
	}
	key := argsKey(args)
	in.mu.RLock()
	id, ok := in.substIndex[key]
	in.mu.RUnlock()
	if ok {
		return id
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.substIndex[key]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(in.substs))
	if err != nil {
		panic(fmt.Errorf("len(substs) overflow: %w", err))
	}
	id = SubstID(n)
	in.substs = append(in.substs, slices.Clone(args))
	in.substIndex[key] = id
	return id
}

// SubstArgs returns a copy of the arguments of an interned substitution.
func (in *Interner) SubstArgs(id SubstID) []TypeID {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if int(id) >= len(in.substs) {
		return nil
	}
	return slices.Clone(in.substs[id])
}

// SubstLen returns the number of arguments in a substitution.
func (in *Interner) SubstLen(id SubstID) int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if int(id) >= len(in.substs) {
		return 0
	}
	return len(in.substs[id])
}

// Param interns a generic parameter reference.
func (in *Interner) Param(index int, name string) TypeID {
	idx, err := safecast.Conv[uint32](index)
	if err != nil {
		panic(fmt.Errorf("param index overflow: %w", err))
	}
	return in.Intern(MakeParam(idx, name))
}

// Ref interns a shared or mutable reference to elem.
func (in *Interner) Ref(elem TypeID, mutable bool) TypeID {
	return in.Intern(MakeReference(elem, mutable))
}

// Tuple interns a tuple type.
func (in *Interner) Tuple(elems ...TypeID) TypeID {
	return in.Intern(Type{Kind: KindTuple, Args: in.InternSubst(elems)})
}

// Adt interns an application of an algebraic data type.
func (in *Interner) Adt(def DefID, args ...TypeID) TypeID {
	return in.Intern(Type{Kind: KindAdt, Def: def, Args: in.InternSubst(args)})
}

// Projection interns "<trait args>::assoc".
func (in *Interner) Projection(assoc DefID, traitSubst SubstID) TypeID {
	return in.Intern(Type{Kind: KindProjection, Def: assoc, Args: traitSubst})
}

// Region interns a concrete lifetime argument.
func (in *Interner) Region(name string) TypeID {
	return in.Intern(Type{Kind: KindRegion, Name: name})
}

// Const interns a concrete const generic argument.
func (in *Interner) Const(value string) TypeID {
	return in.Intern(Type{Kind: KindConst, Name: value})
}

func argsKey(args []TypeID) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte('#')
		}
		b.WriteString(strconv.FormatUint(uint64(arg), 10))
	}
	return b.String()
}
