package driver

import (
	"encoding/json"
	"fmt"

	"whyclone/internal/diag"
	"whyclone/internal/observ"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// AddTimings appends the phase timings as an info diagnostic with the
// JSON report as its note. The diagnostic bypasses the bag limit.
func (res *Result) AddTimings(path string) {
	report := res.Timer.Report()
	payload := timingPayload{Kind: "translate", Path: path, TotalMS: report.TotalMS, Phases: report.Phases}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	entry := diag.New(diag.SevInfo, diag.ObsTimings, path, msg).WithNote("", string(data))
	if res.Bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(res.Bag.Len() + 1)
	overflow.Merge(res.Bag)
	overflow.Add(entry)
	res.Bag = overflow
}
