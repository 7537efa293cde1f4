package driver

import (
	"context"
	"strconv"

	"whyclone/internal/clonemap"
	"whyclone/internal/program"
	"whyclone/internal/trace"
	"whyclone/internal/why"
)

// emitted is what one unit produced.
type emitted struct {
	module why.Module
	graph  clonemap.Graph
}

// emitUnit builds the clone map of u stage by stage and collects the
// declarations of every stage into one module. Prelude imports of all stages
// go before the first clone.
func emitUnit(ctx context.Context, prog *program.Program, tables clonemap.Tables, u Unit) (emitted, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeUnit, "unit:"+string(u.Name), trace.CurrentSpan(ctx))
	defer span.End("")

	m := clonemap.New(prog, u.Item)
	m.SetTracer(tracer)
	m.CloneSelf(u.Def)

	out := emitted{module: why.Module{Name: u.Name}}
	var uses, clones []why.Decl
	for i, stage := range u.Stages {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		for _, use := range stage {
			info := m.Insert(use.Def, use.Subst)
			for _, p := range use.Projections {
				info.AddProjection(p.Assoc, p.Type)
			}
		}
		if i == 0 {
			for _, t := range u.Signature {
				if _, err := m.TranslateType(t); err != nil {
					return out, err
				}
			}
		}
		decls, err := m.ToClones(tables)
		if err != nil {
			out.graph = m.Snapshot()
			return out, err
		}
		for _, d := range decls {
			if _, ok := d.(why.UseDecl); ok {
				uses = append(uses, d)
			} else {
				clones = append(clones, d)
			}
		}
	}
	out.module.Decls = append(uses, clones...)
	span.WithExtra("clones", strconv.Itoa(m.Len())).WithExtra("decls", strconv.Itoa(len(out.module.Decls)))
	out.graph = m.Snapshot()
	return out, nil
}
