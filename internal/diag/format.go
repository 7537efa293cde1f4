package diag

import (
	"fmt"
	"strings"
)

// FormatShort renders diagnostics one per line:
//
//	error CLN2001 Foo_Interface cyclic clone dependency: A0 -> B1 -> A0
//
// Multi-line messages are folded onto one line. Notes follow their
// diagnostic as "note" lines when includeNotes is set.
func FormatShort(diags []Diagnostic, includeNotes bool) string {
	var lines []string
	for _, d := range diags {
		lines = append(lines, shortLine(d.Severity.label(), d.Code, d.Item, d.Message))
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			item := n.Item
			if item == "" {
				item = d.Item
			}
			lines = append(lines, shortLine("note", d.Code, item, n.Msg))
		}
	}
	return strings.Join(lines, "\n")
}

func shortLine(label string, code Code, item, msg string) string {
	msg = strings.Join(strings.Fields(msg), " ")
	if item == "" {
		return fmt.Sprintf("%s %s %s", label, code.ID(), msg)
	}
	return fmt.Sprintf("%s %s %s %s", label, code.ID(), item, msg)
}
