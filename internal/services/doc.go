// Package services defines shared utilities consumed by the pipeline stages
// and the external tool clients.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and stage names for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into fatal, stage-disabling, and per-item severities.
//
// Tool clients live in subpackages (see services/chdman) so command
// execution stays behind small interfaces that tests can replace.
package services
