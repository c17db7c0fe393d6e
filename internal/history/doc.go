// Package history persists a journal of trash relocations in SQLite so past
// runs can be listed and their relocations moved back.
//
// The journal lives in the state directory, never inside a target, and is
// only written by real (non dry-run) runs.
package history
