// Package pipeline orchestrates a romtidy run over one target directory.
//
// A run validates the target, takes a per-target advisory lock held in the
// state directory, then executes the stages in fixed order: extraction and
// flattening, disc conversion, multi-disc grouping with playlists, and
// inventory. Each of the first three is skipped when nothing at the top level
// is relevant to it; inventory always runs. Per-item failures accumulate in
// the run report; only target validation and lock contention abort a run.
//
// Every mutation flows through the fsops executor chosen at the start, so a
// dry run performs the same decisions while leaving the target untouched.
package pipeline
