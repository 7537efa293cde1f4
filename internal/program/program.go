// Package program models the already type-checked input of the translation:
// definitions with their generic parameters, kinds, associated items and the
// (definition, substitution) pairs each of them uses.
package program

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"whyclone/internal/types"
)

// DefID identifies a definition inside a Program.
type DefID = types.DefID

// DefKind is the kind of a definition as seen by the type checker.
type DefKind uint8

const (
	KindInvalid   DefKind = iota
	KindProgram           // executable function
	KindLogic             // logic function
	KindPredicate         // logic predicate
	KindTrait
	KindImpl
	KindType // algebraic data type
	KindAssocType
	KindAssocConst
)

func (k DefKind) String() string {
	switch k {
	case KindProgram:
		return "program"
	case KindLogic:
		return "logic"
	case KindPredicate:
		return "predicate"
	case KindTrait:
		return "trait"
	case KindImpl:
		return "impl"
	case KindType:
		return "type"
	case KindAssocType:
		return "assoc_type"
	case KindAssocConst:
		return "assoc_const"
	default:
		return "invalid"
	}
}

// ParseDefKind converts the textual kind used in program files.
func ParseDefKind(s string) (DefKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "program", "fn":
		return KindProgram, nil
	case "logic":
		return KindLogic, nil
	case "predicate":
		return KindPredicate, nil
	case "trait":
		return KindTrait, nil
	case "impl":
		return KindImpl, nil
	case "type":
		return KindType, nil
	case "assoc_type":
		return KindAssocType, nil
	case "assoc_const":
		return KindAssocConst, nil
	default:
		return KindInvalid, fmt.Errorf("invalid definition kind: %q (expected: program|logic|predicate|trait|impl|type|assoc_type|assoc_const)", s)
	}
}

// IsFunction reports whether the kind denotes something callable.
func (k DefKind) IsFunction() bool {
	return k == KindProgram || k == KindLogic || k == KindPredicate
}

// ParamKind distinguishes generic parameter categories.
type ParamKind uint8

const (
	ParamType ParamKind = iota
	ParamLifetime
	ParamConst
)

// GenericParam is one generic parameter of a definition.
type GenericParam struct {
	Name string
	Kind ParamKind
}

// ProjectionBinding states what an associated type equals for one use.
type ProjectionBinding struct {
	Assoc DefID
	Type  types.TypeID
}

// Use is a (definition, substitution) pair referenced by a definition.
// Contract uses come from the signature/specification and are visible in
// the definition's interface.
type Use struct {
	Def         DefID
	Subst       types.SubstID
	Contract    bool
	Projections []ProjectionBinding
}

// Def is a single typed definition.
type Def struct {
	ID     DefID
	Path   string
	Kind   DefKind
	Params []GenericParam // includes the container's parameters first
	Parent DefID          // trait/impl container of an associated item
	Items  []DefID        // associated items in definition order

	// Builtin names the logic symbol a type maps to instead of a generated one.
	Builtin string

	Signature []types.TypeID
	Uses      []Use
}

// Name returns the last path segment.
func (d *Def) Name() string {
	if i := strings.LastIndex(d.Path, "::"); i >= 0 {
		return d.Path[i+2:]
	}
	return d.Path
}

// Program is the collection of all definitions of one compilation.
type Program struct {
	Types *types.Interner

	defs   []*Def
	byPath map[string]DefID
}

// New creates an empty program bound to a type interner.
func New(in *types.Interner) *Program {
	if in == nil {
		in = types.NewInterner()
	}
	return &Program{
		Types:  in,
		defs:   []*Def{nil}, // reserve 0 as NoDefID
		byPath: make(map[string]DefID),
	}
}

// Add registers a new definition. Paths must be unique.
func (p *Program) Add(path string, kind DefKind, params ...GenericParam) (*Def, error) {
	if path == "" {
		return nil, fmt.Errorf("empty definition path")
	}
	if _, dup := p.byPath[path]; dup {
		return nil, fmt.Errorf("duplicate definition %q", path)
	}
	n, err := safecast.Conv[uint32](len(p.defs))
	if err != nil {
		return nil, fmt.Errorf("definition id overflow: %w", err)
	}
	d := &Def{ID: DefID(n), Path: path, Kind: kind, Params: params}
	p.defs = append(p.defs, d)
	p.byPath[path] = d.ID
	return d, nil
}

// MustAdd is Add for programs built in code; it panics on error.
func (p *Program) MustAdd(path string, kind DefKind, params ...GenericParam) *Def {
	d, err := p.Add(path, kind, params...)
	if err != nil {
		panic(err)
	}
	return d
}

// SetParent attaches child as the next associated item of parent. The
// child's parameter list is prefixed with the parent's parameters.
func (p *Program) SetParent(child, parent DefID) error {
	c, ok := p.Def(child)
	if !ok {
		return fmt.Errorf("unknown definition #%d", child)
	}
	par, ok := p.Def(parent)
	if !ok {
		return fmt.Errorf("unknown definition #%d", parent)
	}
	if par.Kind != KindTrait && par.Kind != KindImpl {
		return fmt.Errorf("%s: parent %s is a %s, expected trait or impl", c.Path, par.Path, par.Kind)
	}
	if c.Parent != types.NoDefID {
		return fmt.Errorf("%s: already has a parent", c.Path)
	}
	c.Parent = parent
	c.Params = append(append([]GenericParam(nil), par.Params...), c.Params...)
	par.Items = append(par.Items, child)
	return nil
}

// Def returns the definition for id.
func (p *Program) Def(id DefID) (*Def, bool) {
	if id == types.NoDefID || int(id) >= len(p.defs) {
		return nil, false
	}
	return p.defs[id], true
}

// MustDef panics when id is unknown.
func (p *Program) MustDef(id DefID) *Def {
	d, ok := p.Def(id)
	if !ok {
		panic(fmt.Sprintf("program: unknown definition #%d", id))
	}
	return d
}

// Lookup resolves a definition path.
func (p *Program) Lookup(path string) (DefID, bool) {
	id, ok := p.byPath[path]
	return id, ok
}

// Defs returns all definitions in registration order.
func (p *Program) Defs() []*Def {
	return p.defs[1:]
}

// DefPath implements types.Namer.
func (p *Program) DefPath(id DefID) string {
	if d, ok := p.Def(id); ok {
		return d.Path
	}
	return fmt.Sprintf("def#%d", id)
}

// Generics returns the full generic parameter list of id.
func (p *Program) Generics(id DefID) []GenericParam {
	if d, ok := p.Def(id); ok {
		return d.Params
	}
	return nil
}

// Container returns the trait or impl an associated item belongs to.
func (p *Program) Container(id DefID) (DefID, bool) {
	d, ok := p.Def(id)
	if !ok || d.Parent == types.NoDefID {
		return types.NoDefID, false
	}
	return d.Parent, true
}

// TraitOf returns the trait declaring the associated type assoc.
func (p *Program) TraitOf(assoc DefID) (DefID, bool) {
	d, ok := p.Def(assoc)
	if !ok || d.Kind != KindAssocType {
		return types.NoDefID, false
	}
	parent, ok := p.Def(d.Parent)
	if !ok || parent.Kind != KindTrait {
		return types.NoDefID, false
	}
	return parent.ID, true
}

// IdentitySubst maps every generic parameter of id to itself.
func (p *Program) IdentitySubst(id DefID) types.SubstID {
	params := p.Generics(id)
	if len(params) == 0 {
		return types.EmptySubst
	}
	args := make([]types.TypeID, len(params))
	for i, param := range params {
		args[i] = p.Types.Param(i, param.Name)
	}
	return p.Types.InternSubst(args)
}

// ItemType classifies id for emission purposes.
func (p *Program) ItemType(id DefID) ItemType {
	d, ok := p.Def(id)
	if !ok {
		return ItemInvalid
	}
	switch d.Kind {
	case KindProgram:
		return ItemProgram
	case KindLogic:
		return ItemLogic
	case KindPredicate:
		return ItemPredicate
	case KindTrait:
		return ItemTrait
	case KindImpl:
		return ItemImpl
	case KindType, KindAssocType, KindAssocConst:
		return ItemData
	}
	return ItemInvalid
}

// SubstString renders a substitution with definition paths.
func (p *Program) SubstString(s types.SubstID) string {
	return p.Types.SubstString(s, p)
}

// TypeString renders a type with definition paths.
func (p *Program) TypeString(t types.TypeID) string {
	return p.Types.TypeString(t, p)
}
