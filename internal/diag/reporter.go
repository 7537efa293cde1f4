package diag

// Reporter — минимальный контракт получения диагностик.
type Reporter interface {
	Report(code Code, sev Severity, item, msg string, notes []Note)
}

// ReportBuilder accumulates diagnostic details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, sev Severity, code Code, item, msg string) *ReportBuilder {
	return &ReportBuilder{reporter: r, diag: New(sev, code, item, msg)}
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, item, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, item, msg)
}

// WithNote appends a note to diagnostic.
func (b *ReportBuilder) WithNote(item, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithNote(item, msg)
	return b
}

// Emit sends diagnostic to underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.diag.Code, b.diag.Severity, b.diag.Item, b.diag.Message, b.diag.Notes)
	}
	b.emitted = true
}

// BagReporter — адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, item, msg string, notes []Note) {
	if r.Bag == nil {
		return
	}
	d := New(sev, code, item, msg)
	d.Notes = notes
	r.Bag.Add(d)
}
