package diag

import "sync"

type dedupKey struct {
	code Code
	sev  Severity
	item string
	msg  string
}

// DedupReporter forwards each distinct (code, severity, item, message)
// once. Units emitted in parallel often hit the same broken definition.
type DedupReporter struct {
	next Reporter
	mu   sync.Mutex
	seen map[dedupKey]struct{}
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[dedupKey]struct{})}
}

func (r *DedupReporter) Report(code Code, sev Severity, item, msg string, notes []Note) {
	if r == nil {
		return
	}
	key := dedupKey{code: code, sev: sev, item: item, msg: msg}
	r.mu.Lock()
	_, dup := r.seen[key]
	r.seen[key] = struct{}{}
	r.mu.Unlock()
	if dup || r.next == nil {
		return
	}
	r.next.Report(code, sev, item, msg, notes)
}
