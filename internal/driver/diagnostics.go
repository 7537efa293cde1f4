package driver

import (
	"errors"
	"fmt"

	"whyclone/internal/clonemap"
	"whyclone/internal/diag"
	"whyclone/internal/program"
)

// loadDiagnostic classifies a failure to read or decode the program.
func loadDiagnostic(path string, err error) diag.Diagnostic {
	item := path
	var le *program.LoadError
	if errors.As(err, &le) && le.Def != "" {
		item = le.Def
	}
	var te *program.TypeError
	switch {
	case errors.As(err, &te):
		return diag.NewError(diag.LoadBadType, item, err.Error())
	case errors.Is(err, program.ErrUnknownDefinition):
		return diag.NewError(diag.LoadUnknownDef, item, err.Error())
	case le != nil:
		return diag.NewError(diag.LoadInvalidProgram, item, err.Error())
	default:
		return diag.NewError(diag.IOReadError, item, err.Error())
	}
}

// cloneDiagnostic classifies a clone map failure of item.
func cloneDiagnostic(item string, err error) diag.Diagnostic {
	var (
		cycle *clonemap.CycleError
		proj  *clonemap.ProjectionError
		late  *clonemap.LateProjectionError
	)
	switch {
	case errors.As(err, &cycle):
		d := diag.NewError(diag.CloneCyclicDependency, item, err.Error())
		for i, n := range cycle.Nodes {
			next := cycle.Nodes[(i+1)%len(cycle.Nodes)]
			d = d.WithNote(n, fmt.Sprintf("%s must be cloned before %s", n, next))
		}
		return d
	case errors.As(err, &proj):
		return diag.NewError(diag.CloneUnresolvedProjection, item, err.Error()).
			WithNote(proj.Node, "mentions "+proj.Assoc)
	case errors.As(err, &late):
		return diag.NewError(diag.CloneLateProjection, item, err.Error()).
			WithNote(late.Node, "already emitted without "+late.Assoc)
	case errors.Is(err, clonemap.ErrNotCloneable):
		return diag.NewError(diag.CloneNotCloneable, item, err.Error())
	default:
		return diag.NewError(diag.CloneInternal, item, err.Error())
	}
}
