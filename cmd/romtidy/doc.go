// Package main hosts the romtidy CLI entrypoint and command graph.
//
// The root command runs the reorganization pipeline over a target directory.
// Subcommands expose the relocation journal (history, restore), environment
// checks (doctor), and configuration scaffolding. Configuration resolution
// and logger setup are centralized here so the internal packages stay free
// of terminal concerns.
package main
