// Package config loads, normalizes, and validates romtidy configuration data.
//
// It supplies repository defaults (XDG state and config locations), expands
// user paths including tilde shortcuts, and reads TOML files. The Config type
// centralizes the chdman resolution chain, scan ignore patterns, journal and
// logging knobs so the CLI can discover everything in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
