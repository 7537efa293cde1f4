package program

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"whyclone/internal/types"
)

// Format is the on-disk encoding of a program description.
type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatFromPath picks the format by file extension (TOML by default).
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// LoadError reports a problem attached to one definition of the input.
type LoadError struct {
	Def string // definition path, empty for file-level problems
	Err error
}

func (e *LoadError) Error() string {
	if e.Def == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Def, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

type fileSchema struct {
	Defs []defSchema `toml:"def" yaml:"def"`
}

type defSchema struct {
	Path      string      `toml:"path" yaml:"path"`
	Kind      string      `toml:"kind" yaml:"kind"`
	Params    []string    `toml:"params" yaml:"params"`
	Parent    string      `toml:"parent" yaml:"parent"`
	Builtin   string      `toml:"builtin" yaml:"builtin"`
	Signature []string    `toml:"signature" yaml:"signature"`
	Uses      []useSchema `toml:"uses" yaml:"uses"`
}

type useSchema struct {
	Def         string             `toml:"def" yaml:"def"`
	Subst       []string           `toml:"subst" yaml:"subst"`
	Contract    bool               `toml:"contract" yaml:"contract"`
	Projections []projectionSchema `toml:"projections" yaml:"projections"`
}

type projectionSchema struct {
	Assoc string `toml:"assoc" yaml:"assoc"`
	Type  string `toml:"type" yaml:"type"`
}

// LoadFile reads and parses a program description.
func LoadFile(path string) (*Program, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read program: %w", err)
	}
	prog, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, data, err
	}
	return prog, data, nil
}

// Parse decodes a program description.
func Parse(data []byte, format Format) (*Program, error) {
	var schema fileSchema
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&schema); err != nil {
			return nil, &LoadError{Err: fmt.Errorf("failed to parse YAML: %w", err)}
		}
	default:
		meta, err := toml.Decode(string(data), &schema)
		if err != nil {
			return nil, &LoadError{Err: fmt.Errorf("failed to parse TOML: %w", err)}
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, &LoadError{Err: fmt.Errorf("unknown key %q", undecoded[0].String())}
		}
	}
	return build(&schema)
}

func build(schema *fileSchema) (*Program, error) {
	prog := New(types.NewInterner())

	for i := range schema.Defs {
		ds := &schema.Defs[i]
		path := strings.TrimSpace(ds.Path)
		kind, err := ParseDefKind(ds.Kind)
		if err != nil {
			return nil, &LoadError{Def: path, Err: err}
		}
		params, err := parseParams(ds.Params)
		if err != nil {
			return nil, &LoadError{Def: path, Err: err}
		}
		if _, err := prog.Add(path, kind, params...); err != nil {
			return nil, &LoadError{Def: path, Err: err}
		}
	}

	for i := range schema.Defs {
		ds := &schema.Defs[i]
		if ds.Parent == "" {
			continue
		}
		id, _ := prog.Lookup(strings.TrimSpace(ds.Path))
		parent, ok := prog.Lookup(ds.Parent)
		if !ok {
			return nil, &LoadError{Def: ds.Path, Err: fmt.Errorf("parent: %w %s", ErrUnknownDefinition, ds.Parent)}
		}
		if err := prog.SetParent(id, parent); err != nil {
			return nil, &LoadError{Def: ds.Path, Err: err}
		}
	}

	for i := range schema.Defs {
		ds := &schema.Defs[i]
		id, _ := prog.Lookup(strings.TrimSpace(ds.Path))
		if err := fillDef(prog, prog.MustDef(id), ds); err != nil {
			return nil, &LoadError{Def: ds.Path, Err: err}
		}
	}
	return prog, nil
}

func fillDef(prog *Program, def *Def, ds *defSchema) error {
	def.Builtin = ds.Builtin
	if def.Kind == KindAssocType || def.Kind == KindAssocConst {
		if def.Parent == types.NoDefID {
			return fmt.Errorf("associated item without parent")
		}
	}

	for _, src := range ds.Signature {
		t, err := prog.ParseType(src, def.ID)
		if err != nil {
			return err
		}
		def.Signature = append(def.Signature, t)
	}

	for _, us := range ds.Uses {
		target, ok := prog.Lookup(us.Def)
		if !ok {
			return fmt.Errorf("use of %w %s", ErrUnknownDefinition, us.Def)
		}
		td := prog.MustDef(target)
		if td.Kind == KindType {
			return fmt.Errorf("type %s cannot be cloned; mention it in a substitution instead", us.Def)
		}
		if len(us.Subst) != len(td.Params) {
			return fmt.Errorf("use of %s: expected %d generic arguments, got %d", us.Def, len(td.Params), len(us.Subst))
		}
		subst, err := prog.ParseSubst(us.Subst, def.ID)
		if err != nil {
			return fmt.Errorf("use of %s: %w", us.Def, err)
		}
		use := Use{Def: target, Subst: subst, Contract: us.Contract}
		for _, ps := range us.Projections {
			assoc, ok := prog.Lookup(ps.Assoc)
			if !ok || prog.MustDef(assoc).Kind != KindAssocType {
				return fmt.Errorf("use of %s: %w: associated type %s", us.Def, ErrUnknownDefinition, ps.Assoc)
			}
			t, err := prog.ParseType(ps.Type, def.ID)
			if err != nil {
				return fmt.Errorf("use of %s: %w", us.Def, err)
			}
			use.Projections = append(use.Projections, ProjectionBinding{Assoc: assoc, Type: t})
		}
		def.Uses = append(def.Uses, use)
	}
	return nil
}

func parseParams(specs []string) ([]GenericParam, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	params := make([]GenericParam, 0, len(specs))
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		param := GenericParam{Name: spec, Kind: ParamType}
		switch {
		case strings.HasPrefix(spec, "const "):
			param = GenericParam{Name: strings.TrimSpace(strings.TrimPrefix(spec, "const ")), Kind: ParamConst}
		case strings.HasPrefix(spec, "'"):
			param.Kind = ParamLifetime
		}
		if param.Name == "" {
			return nil, fmt.Errorf("empty generic parameter")
		}
		if _, dup := seen[param.Name]; dup {
			return nil, fmt.Errorf("duplicate generic parameter %s", param.Name)
		}
		seen[param.Name] = struct{}{}
		params = append(params, param)
	}
	return params, nil
}
