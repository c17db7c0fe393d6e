// Package chdman mediates access to MAME's chdman CLI used to compress disc
// image sets into CHD containers.
//
// Resolver locates a working chdman once per run by walking a fixed chain:
// the configured binary on PATH, a fallback install path, then a sandbox
// wrapper command. Each candidate must pass a probe invocation. Client runs
// createcd and only reports success once the output file exists on disk.
//
// Prefer this package over ad-hoc exec.Command usage when interacting with
// chdman so progress parsing and output verification remain consistent.
package chdman
