package driver

import (
	"slices"

	"whyclone/internal/program"
	"whyclone/internal/types"
	"whyclone/internal/why"
)

// Unit is one output module.
type Unit struct {
	Name why.Ident
	Def  types.DefID
	Item program.ItemType

	// Stages are emitted one after the other on the same clone map, so the
	// clones of a later stage may reuse those of an earlier one.
	Stages [][]program.Use
	// Signature is translated with the first stage.
	Signature []types.TypeID
}

// PlanUnits lists the output modules of prog in definition order. When only
// is not empty, units whose name is not in it are left out.
//
// Program functions yield an interface and a body module; logic functions
// and predicates an interface and a definition module; traits and impls one
// module. Associated items are emitted with their container and types have
// no module.
func PlanUnits(prog *program.Program, only []string) []Unit {
	var units []Unit
	add := func(u Unit) {
		if len(only) > 0 && !slices.Contains(only, string(u.Name)) {
			return
		}
		units = append(units, u)
	}
	for _, d := range prog.Defs() {
		if d.Parent != types.NoDefID {
			continue
		}
		iface := why.Ident(prog.InterfaceName(d.ID))
		module := why.Ident(prog.ModuleName(d.ID))
		switch it := prog.ItemType(d.ID); it {
		case program.ItemProgram:
			contract := contractUses(d.Uses)
			add(Unit{Name: iface, Def: d.ID, Item: program.ItemInterface,
				Stages: [][]program.Use{contract}, Signature: d.Signature})
			add(Unit{Name: module, Def: d.ID, Item: program.ItemProgram,
				Stages: [][]program.Use{contract, bodyUses(d.Uses)}, Signature: d.Signature})
		case program.ItemLogic, program.ItemPredicate:
			add(Unit{Name: iface, Def: d.ID, Item: program.ItemInterface,
				Stages: [][]program.Use{contractUses(d.Uses)}, Signature: d.Signature})
			add(Unit{Name: module, Def: d.ID, Item: it,
				Stages: [][]program.Use{d.Uses}, Signature: d.Signature})
		case program.ItemTrait, program.ItemImpl:
			uses := slices.Clone(d.Uses)
			sig := slices.Clone(d.Signature)
			for _, id := range d.Items {
				item := prog.MustDef(id)
				uses = append(uses, item.Uses...)
				sig = append(sig, item.Signature...)
			}
			add(Unit{Name: module, Def: d.ID, Item: it,
				Stages: [][]program.Use{uses}, Signature: sig})
		}
	}
	return units
}
