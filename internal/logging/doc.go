// Package logging assembles structured slog loggers and formatting helpers used
// across romtidy.
//
// It owns the console and JSON handlers, writes every run to its own
// append-only log file alongside the console, and exposes context-aware
// helpers so stage code tags log lines with the run id, stage, and game. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
