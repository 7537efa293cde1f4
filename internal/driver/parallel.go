package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"whyclone/internal/clonemap"
	"whyclone/internal/program"
	"whyclone/internal/why"
)

// emitUnits emits the units at the given indexes in parallel. Unit failures
// are stored in the results; only cancellation stops the group.
func emitUnits(ctx context.Context, prog *program.Program, tables clonemap.Tables, units []Unit, pending []int, opts Options, res *Result) error {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(pending))))

	for _, i := range pending {
		i := i
		g.Go(func() error {
			// Проверка отмены
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			out, err := emitUnit(gctx, prog, tables, units[i])
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			// индекс i уникален, мьютекс не нужен
			r := &res.Units[i]
			r.Err = err
			if opts.Graph {
				r.Graph = &out.graph
			}
			if err == nil {
				r.Module = out.module
				r.Text = why.RenderModule(out.module)
			}
			return nil
		})
	}
	return g.Wait()
}
