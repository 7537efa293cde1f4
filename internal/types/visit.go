package types

// WalkProjections calls fn for every projection embedded in t, including
// projections nested inside the trait arguments of another projection.
func (in *Interner) WalkProjections(t TypeID, fn func(Projection)) {
	tt, ok := in.Lookup(t)
	if !ok {
		return
	}
	switch tt.Kind {
	case KindRef:
		in.WalkProjections(tt.Elem, fn)
	case KindTuple, KindAdt:
		in.SubstProjections(tt.Args, fn)
	case KindProjection:
		fn(Projection{Assoc: tt.Def, TraitSubst: tt.Args})
		in.SubstProjections(tt.Args, fn)
	}
}

// SubstProjections walks every argument of a substitution.
func (in *Interner) SubstProjections(s SubstID, fn func(Projection)) {
	for _, arg := range in.SubstArgs(s) {
		in.WalkProjections(arg, fn)
	}
}

// HasParams reports whether t still mentions a generic parameter.
func (in *Interner) HasParams(t TypeID) bool {
	tt, ok := in.Lookup(t)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindParam:
		return true
	case KindRef:
		return in.HasParams(tt.Elem)
	case KindTuple, KindAdt, KindProjection:
		for _, arg := range in.SubstArgs(tt.Args) {
			if in.HasParams(arg) {
				return true
			}
		}
	}
	return false
}
