// Package diag defines the diagnostics the translator reports.
//
// A Diagnostic carries a Severity, a Code with a stable string form
// (LOD0001, CLN2001, ...), a message and the item it is about: a definition
// path for load problems, an output unit name for clone problems. Notes add
// context such as the members of a dependency cycle.
//
// Producers report through a Reporter; BagReporter collects into a Bag,
// which enforces a limit and sorts deterministically before printing.
// Rendering for the terminal lives in cmd/whyclone, the plain single-line
// form used by tests and --quiet output lives in FormatShort.
package diag
