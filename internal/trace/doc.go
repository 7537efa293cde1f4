// Package trace records what the translator is doing: driver phases,
// per-unit emission and, at debug level, individual clone graph edges and
// clone declarations.
//
// Enable it from the command line:
//
//	whyclone translate --trace=- --trace-level=detail prog.toml
//
// Tracers:
//
//   - Nop: disabled tracing, zero overhead
//   - StreamTracer: writes every event as it happens (text or NDJSON)
//   - RingTracer: keeps the last N events in memory
//   - MultiTracer: fans out to several tracers
//
// Spans are opened with Begin and closed with Span.End; instant events are
// emitted with Point. Both check the tracer level first, so call sites do not
// need their own guards.
package trace
