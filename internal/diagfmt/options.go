// Package diagfmt renders diagnostic bags for people and for tools.
package diagfmt

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	Max          int // обрезка вывода, не Bag
	IncludeNotes bool
}
