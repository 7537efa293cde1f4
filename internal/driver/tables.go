package driver

import (
	"fmt"

	"whyclone/internal/clonemap"
	"whyclone/internal/program"
	"whyclone/internal/types"
)

// BuildTables translates the dependency table of every top-level
// definition. A table is the clone map of the definition itself: its own
// entry under the identity substitution and every use it makes.
//
// Program functions publish their interface table (contract uses only);
// logic functions, predicates, traits and impls publish everything.
// The tables are read-only once built.
func BuildTables(prog *program.Program) (clonemap.Tables, error) {
	tables := make(clonemap.Tables)
	for _, d := range prog.Defs() {
		if d.Parent != types.NoDefID {
			continue
		}
		var (
			m   *clonemap.CloneMap
			err error
		)
		switch it := prog.ItemType(d.ID); it {
		case program.ItemProgram:
			m = clonemap.New(prog, program.ItemInterface)
			m.CloneSelf(d.ID)
			err = recordUses(m, d, contractUses(d.Uses))
		case program.ItemLogic, program.ItemPredicate:
			m = clonemap.New(prog, it)
			m.CloneSelf(d.ID)
			err = recordUses(m, d, d.Uses)
		case program.ItemTrait, program.ItemImpl:
			m = clonemap.New(prog, it)
			m.CloneSelf(d.ID)
			err = recordContainer(m, prog, d)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Path, err)
		}
		tables[d.ID] = m
	}
	return tables, nil
}

// recordUses inserts every use with its projection bindings and translates
// the signature of d, which may intern further trait clones.
func recordUses(m *clonemap.CloneMap, d *program.Def, uses []program.Use) error {
	for _, u := range uses {
		info := m.Insert(u.Def, u.Subst)
		for _, p := range u.Projections {
			info.AddProjection(p.Assoc, p.Type)
		}
	}
	for _, t := range d.Signature {
		if _, err := m.TranslateType(t); err != nil {
			return err
		}
	}
	return nil
}

// recordContainer records a trait or impl with all of its items.
func recordContainer(m *clonemap.CloneMap, prog *program.Program, d *program.Def) error {
	if err := recordUses(m, d, d.Uses); err != nil {
		return err
	}
	for _, id := range d.Items {
		item := prog.MustDef(id)
		if err := recordUses(m, item, item.Uses); err != nil {
			return fmt.Errorf("%s: %w", item.Path, err)
		}
	}
	return nil
}

func contractUses(uses []program.Use) []program.Use {
	var out []program.Use
	for _, u := range uses {
		if u.Contract {
			out = append(out, u)
		}
	}
	return out
}

func bodyUses(uses []program.Use) []program.Use {
	var out []program.Use
	for _, u := range uses {
		if !u.Contract {
			out = append(out, u)
		}
	}
	return out
}
