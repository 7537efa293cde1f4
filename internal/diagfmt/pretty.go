package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"whyclone/internal/diag"
)

type palette struct {
	err, warn, info, note, item *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		info: color.New(color.FgCyan),
		note: color.New(color.FgBlue),
		item: color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.item} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return p.err.Sprint("error")
	case diag.SevWarning:
		return p.warn.Sprint("warning")
	default:
		return p.info.Sprint("info")
	}
}

// Pretty writes one line per diagnostic, notes indented below it:
//
//	error[CLN2001] M_F: cyclic clone dependency: A0 -> B1 -> A0
//	  note A0: A0 must be cloned before B1
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		item := ""
		if d.Item != "" {
			item = " " + p.item.Sprint(d.Item)
		}
		if _, err := fmt.Fprintf(w, "%s[%s]%s: %s\n", p.severity(d.Severity), d.Code.ID(), item, d.Message); err != nil {
			return err
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			label := p.note.Sprint("note")
			if n.Item != "" {
				label += " " + n.Item
			}
			if _, err := fmt.Fprintf(w, "  %s: %s\n", label, n.Msg); err != nil {
				return err
			}
		}
	}
	return nil
}
