package types

// Substitution replaces generic parameters by the arguments of an outer
// substitution. Parameters past the end of the outer argument list are left
// untouched.
type Substitution struct {
	Types *Interner
	Args  []TypeID

	cache map[TypeID]TypeID
}

// NewSubstitution prepares a substitution applying the arguments of outer.
func (in *Interner) NewSubstitution(outer SubstID) *Substitution {
	return &Substitution{Types: in, Args: in.SubstArgs(outer)}
}

// Apply composes s with outer: every parameter mentioned in s is replaced by
// the matching argument of outer.
func (in *Interner) Apply(s, outer SubstID) SubstID {
	if s == EmptySubst {
		return EmptySubst
	}
	return in.NewSubstitution(outer).Subst(s)
}

// ApplyType substitutes the arguments of outer into t.
func (in *Interner) ApplyType(t TypeID, outer SubstID) TypeID {
	return in.NewSubstitution(outer).Type(t)
}

// Subst applies the substitution to every argument of an interned substitution.
func (s *Substitution) Subst(id SubstID) SubstID {
	if s == nil || id == EmptySubst {
		return id
	}
	args := s.Types.SubstArgs(id)
	changed := false
	for i := range args {
		next := s.Type(args[i])
		changed = changed || next != args[i]
		args[i] = next
	}
	if !changed {
		return id
	}
	return s.Types.InternSubst(args)
}

// Type applies the substitution to a type ID.
func (s *Substitution) Type(id TypeID) TypeID {
	if s == nil || id == NoTypeID {
		return id
	}
	if s.cache == nil {
		s.cache = make(map[TypeID]TypeID, 16)
	} else if cached, ok := s.cache[id]; ok {
		return cached
	}
	out := s.typeNoCache(id)
	s.cache[id] = out
	return out
}

func (s *Substitution) typeNoCache(id TypeID) TypeID {
	tt, ok := s.Types.Lookup(id)
	if !ok {
		return id
	}

	switch tt.Kind {
	case KindParam:
		idx := int(tt.Index)
		if idx >= len(s.Args) || s.Args[idx] == NoTypeID {
			return id
		}
		return s.Args[idx]

	case KindRef:
		elem := s.Type(tt.Elem)
		if elem == tt.Elem {
			return id
		}
		clone := tt
		clone.Elem = elem
		return s.Types.Intern(clone)

	case KindTuple, KindAdt, KindProjection:
		args := s.Subst(tt.Args)
		if args == tt.Args {
			return id
		}
		clone := tt
		clone.Args = args
		return s.Types.Intern(clone)

	default:
		return id
	}
}
