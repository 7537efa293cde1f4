package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	load := tm.Begin("load")
	time.Sleep(time.Millisecond)
	tm.End(load, "3 defs")
	emit := tm.Begin("emit")
	tm.End(emit, "")
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 || r.Phases[0].Name != "load" || r.Phases[0].Note != "3 defs" {
		t.Fatalf("unexpected report: %+v", r)
	}
	if r.Phases[0].DurationMS <= 0 || r.TotalMS < r.Phases[0].DurationMS {
		t.Fatalf("durations not recorded: %+v", r)
	}
	if s := tm.Summary(); !strings.Contains(s, "load") || !strings.Contains(s, "// 3 defs") || !strings.Contains(s, "total") {
		t.Fatalf("unexpected summary:\n%s", s)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Fatalf("nil timer reported phases")
	}
}
