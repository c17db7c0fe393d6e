// Package stage defines the per-run context shared by pipeline stages, the
// stage contract, and the ordered warning/error report a run accumulates.
package stage
