package clonemap

import (
	"whyclone/internal/program"
	"whyclone/internal/types"
	"whyclone/internal/why"
)

// Symbol is a name a clone makes available to the clones using it.
type Symbol struct {
	Kind why.SubstKind
	Name why.Ident
}

// rename binds the provider's name for s to the user's one.
func (s Symbol) rename(provider, user *CloneInfo) why.CloneSubst {
	from, to := provider.QName(s.Name), user.QName(s.Name)
	switch s.Kind {
	case why.SubstType:
		return why.TypeSubst(from, why.TConstructor{Name: to})
	case why.SubstFunction:
		return why.FunctionSubst(from, to)
	case why.SubstPredicate:
		return why.PredicateSubst(from, to)
	default:
		return why.ValSubst(from, to)
	}
}

// ExportedSymbols lists the symbols exported by a clone of def.
func ExportedSymbols(prog *program.Program, def types.DefID) []Symbol {
	return exportedSymbols(prog, def)
}

func exportedSymbols(prog *program.Program, def types.DefID) []Symbol {
	switch prog.ItemType(def) {
	case program.ItemLogic:
		return []Symbol{{Kind: why.SubstFunction, Name: why.Ident(prog.MethodName(def))}}
	case program.ItemPredicate:
		return []Symbol{{Kind: why.SubstPredicate, Name: why.Ident(prog.MethodName(def))}}
	case program.ItemProgram, program.ItemInterface:
		return []Symbol{{Kind: why.SubstVal, Name: why.Ident(prog.MethodName(def))}}
	case program.ItemTrait, program.ItemImpl:
		d := prog.MustDef(def)
		var out []Symbol
		for _, item := range d.Items {
			switch prog.MustDef(item).Kind {
			case program.KindLogic:
				out = append(out, Symbol{Kind: why.SubstFunction, Name: why.Ident(prog.MethodName(item))})
			case program.KindPredicate:
				out = append(out, Symbol{Kind: why.SubstPredicate, Name: why.Ident(prog.MethodName(item))})
			case program.KindProgram:
				out = append(out, Symbol{Kind: why.SubstVal, Name: why.Ident(prog.MethodName(item))})
			case program.KindAssocType:
				out = append(out, Symbol{Kind: why.SubstType, Name: why.Ident(prog.TypeName(item))})
			case program.KindAssocConst:
				// not supported yet
			}
		}
		return out
	}
	return nil
}
