// Package logs locates and reads the per-run log files written under
// paths.log_dir.
//
// Reads use bounded memory: Last keeps a ring of the requested line count and
// Follow only consumes complete lines, leaving a partially written trailing
// line for the next poll. Follow stops when its context is cancelled.
package logs
