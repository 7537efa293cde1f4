package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"whyclone/internal/diag"
	"whyclone/internal/diagfmt"
)

// printDiagnostics writes the sorted bag in the requested format. Units
// failing on the same definition report it once.
func printDiagnostics(w io.Writer, bag *diag.Bag, format string, withNotes bool) error {
	bag.Dedup()
	bag.Sort()
	switch format {
	case "", "pretty":
		return diagfmt.Pretty(w, bag, diagfmt.PrettyOpts{Color: !color.NoColor, ShowNotes: withNotes})
	case "json":
		return diagfmt.JSON(w, bag, diagfmt.JSONOpts{IncludeNotes: withNotes})
	case "short":
		if bag.Len() == 0 {
			return nil
		}
		_, err := fmt.Fprintln(w, diag.FormatShort(bag.Items(), withNotes))
		return err
	default:
		return errInvalidFlag("format", format, "pretty|json|short")
	}
}

func errInvalidFlag(flag, value, allowed string) error {
	return fmt.Errorf("invalid --%s value %q (expected %s)", flag, value, allowed)
}
