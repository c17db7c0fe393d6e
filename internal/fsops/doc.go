// Package fsops is the single substitution point for every effect romtidy
// has on the filesystem or the outside world.
//
// Stages never call os.Rename, os.Mkdir, os.WriteFile or start external
// processes directly; they describe the effect to an Executor. The real
// executor applies it, the dry-run executor only logs the same description.
// The implementation is chosen once at startup, so a dry run cannot reach a
// mutating primitive through any code path.
package fsops
