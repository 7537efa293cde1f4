// Package driver runs the translation pipeline: it loads a program, builds
// the dependency table of every definition and emits the clone declarations
// of every output module, in parallel and through an on-disk cache.
package driver

import (
	"context"
	"strconv"

	"whyclone/internal/clonemap"
	"whyclone/internal/diag"
	"whyclone/internal/observ"
	"whyclone/internal/program"
	"whyclone/internal/trace"
	"whyclone/internal/why"
)

// Options tune one translation.
type Options struct {
	Jobs           int // <= 0 means GOMAXPROCS
	MaxDiagnostics int
	Cache          *DiskCache // nil disables caching
	Units          []string   // restrict output to these modules
	Graph          bool       // keep a snapshot of every unit's clone graph; bypasses the cache
}

// UnitResult is the outcome of one output module.
type UnitResult struct {
	Name   why.Ident
	Def    string
	Module why.Module // empty when served from the cache
	Text   string
	Cached bool
	Graph  *clonemap.Graph
	Err    error
}

// Result collects every unit in plan order.
type Result struct {
	Units []UnitResult
	Bag   *diag.Bag
	Timer *observ.Timer

	rep diag.Reporter
}

// Failed reports whether any unit or the load failed.
func (r *Result) Failed() bool {
	return r.Bag.HasErrors()
}

// TranslateFile loads the program at path and translates it. Load problems
// are reported in the bag; the returned error is only set when ctx is done.
func TranslateFile(ctx context.Context, path string, opts Options) (*Result, error) {
	res := newResult(opts)
	idx := res.Timer.Begin("load")
	prog, data, err := program.LoadFile(path)
	res.Timer.End(idx, path)
	if err != nil {
		res.report(loadDiagnostic(path, err))
		return res, nil
	}
	return res, translate(ctx, prog, data, opts, res)
}

// Translate translates an already loaded program. src is the program's
// source text and keys the cache; it may be nil when opts.Cache is nil.
func Translate(ctx context.Context, prog *program.Program, src []byte, opts Options) (*Result, error) {
	res := newResult(opts)
	return res, translate(ctx, prog, src, opts, res)
}

func newResult(opts Options) *Result {
	bag := diag.NewBag(opts.MaxDiagnostics)
	return &Result{
		Bag:   bag,
		Timer: observ.NewTimer(),
		rep:   diag.NewDedupReporter(diag.BagReporter{Bag: bag}),
	}
}

func (res *Result) report(d diag.Diagnostic) {
	res.rep.Report(d.Code, d.Severity, d.Item, d.Message, d.Notes)
}

func translate(ctx context.Context, prog *program.Program, src []byte, opts Options, res *Result) error {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "translate", trace.CurrentSpan(ctx))
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	units := PlanUnits(prog, opts.Units)
	span.WithExtra("units", strconv.Itoa(len(units)))
	res.Units = make([]UnitResult, len(units))
	for i, u := range units {
		res.Units[i] = UnitResult{Name: u.Name, Def: prog.DefPath(u.Def)}
	}

	cache := opts.Cache
	if opts.Graph {
		cache = nil
	}
	pending := res.probeCache(cache, src)
	if len(pending) == 0 {
		return nil
	}

	idx := res.Timer.Begin("tables")
	pass := trace.Begin(tracer, trace.ScopePass, "tables", span.ID())
	tables, err := BuildTables(prog)
	pass.End("")
	res.Timer.End(idx, strconv.Itoa(len(tables))+" definitions")
	if err != nil {
		res.report(cloneDiagnostic("", err))
		for _, i := range pending {
			res.Units[i].Err = err
		}
		return nil
	}

	idx = res.Timer.Begin("emit")
	pass = trace.Begin(tracer, trace.ScopePass, "emit", span.ID())
	err = emitUnits(trace.WithSpan(ctx, pass), prog, tables, units, pending, opts, res)
	pass.End("")
	res.Timer.End(idx, strconv.Itoa(len(pending))+" units")
	if err != nil {
		return err
	}

	for _, i := range pending {
		u := &res.Units[i]
		if u.Err != nil {
			res.report(cloneDiagnostic(string(u.Name), u.Err))
		}
	}
	res.storeCache(cache, src, pending)
	return nil
}

// probeCache fills the units found in the cache and returns the indexes of
// the others.
func (res *Result) probeCache(cache *DiskCache, src []byte) []int {
	pending := make([]int, 0, len(res.Units))
	if cache == nil {
		for i := range res.Units {
			pending = append(pending, i)
		}
		return pending
	}
	idx := res.Timer.Begin("cache")
	hits := 0
	for i := range res.Units {
		u := &res.Units[i]
		var cached CachedUnit
		ok, err := cache.Get(UnitKey(src, string(u.Name)), &cached)
		if err != nil {
			diag.ReportWarning(res.rep, diag.IOCacheError, string(u.Name), "cache read: "+err.Error()).Emit()
		}
		if !ok {
			pending = append(pending, i)
			continue
		}
		u.Text = cached.Text
		u.Cached = true
		hits++
	}
	res.Timer.End(idx, strconv.Itoa(hits)+" hits")
	return pending
}

func (res *Result) storeCache(cache *DiskCache, src []byte, done []int) {
	if cache == nil {
		return
	}
	for _, i := range done {
		u := &res.Units[i]
		if u.Err != nil {
			continue
		}
		if err := cache.Put(UnitKey(src, string(u.Name)), &CachedUnit{Name: string(u.Name), Text: u.Text}); err != nil {
			diag.ReportWarning(res.rep, diag.IOCacheError, string(u.Name), "cache write: "+err.Error()).
				WithNote("", cache.Dir()).Emit()
		}
	}
}
