// Package textutil provides the filename rules shared by the grouping,
// playlist, and inventory stages.
//
// SafeDirName and SafeFileName are part of the playlist contract consumed by
// emulation front-ends: changing them changes the paths written into every
// generated playlist. VersionLess is the single ordering used for playlist
// members, game processing order, and inventory lines.
package textutil
