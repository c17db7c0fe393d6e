// Package playlist moves the discs of each multi-disc game into a hidden
// per-game directory and writes an M3U playlist referencing them.
package playlist

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"romtidy/internal/logging"
	"romtidy/internal/multidisc"
	"romtidy/internal/scan"
	"romtidy/internal/services"
	"romtidy/internal/stage"
)

// StageName labels grouping in logs and summaries.
const StageName = "group"

// Ext is the playlist extension.
const Ext = ".m3u"

// Content renders the playlist lines for members placed in hiddenDir.
func Content(hiddenDir string, members []string) string {
	var b strings.Builder
	for _, name := range members {
		b.WriteString("./")
		b.WriteString(hiddenDir)
		b.WriteString("/")
		b.WriteString(name)
		b.WriteString("\n")
	}
	return b.String()
}

// Writer relocates stale playlists and materializes each game.
type Writer struct {
	logger *slog.Logger
}

// NewWriter constructs a playlist writer.
func NewWriter(logger *slog.Logger) *Writer {
	return &Writer{logger: logging.NewComponentLogger(logger, StageName)}
}

// RelocateExisting moves every top-level playlist to trash.
func (w *Writer) RelocateExisting(ctx context.Context, run *stage.Run, entries []scan.Entry) int {
	moved := 0
	for _, entry := range scan.Files(entries, Ext) {
		if run.Relocate(ctx, entry.Path) {
			moved++
		}
	}
	return moved
}

// Write materializes one game. It returns false when the game was abandoned.
func (w *Writer) Write(ctx context.Context, run *stage.Run, game multidisc.Game) bool {
	ctx = services.WithGame(ctx, game.Canonical)
	hidden := game.HiddenDir()
	hiddenPath := filepath.Join(run.Dir, hidden)

	if err := run.Exec.MkdirAll(ctx, hiddenPath); err != nil {
		run.Warn(ctx, game.Canonical, "game directory not created; game skipped", "playlist_mkdir_failed",
			services.Wrap(services.ErrFilesystem, StageName, "create directory", hiddenPath, err),
			logging.String(logging.FieldImpact, "discs left at top level"),
		)
		return false
	}

	placed := make([]string, 0, len(game.Members))
	for _, member := range game.Members {
		dest := filepath.Join(hiddenPath, member.Name)
		if err := run.Exec.Move(ctx, member.Path, dest); err != nil {
			run.Warn(ctx, game.Canonical, "disc move failed; game abandoned", "playlist_move_failed",
				services.Wrap(services.ErrFilesystem, StageName, "move disc", member.Path, err),
				logging.Int("moved", len(placed)),
				logging.String(logging.FieldErrorHint, "move the listed discs back to the top level and rerun"),
				logging.String(logging.FieldImpact, "no playlist written for this game"),
			)
			return false
		}
		placed = append(placed, member.Name)
	}

	content := Content(hidden, placed)
	playlistPath := filepath.Join(run.Dir, game.PlaylistName())
	if run.DryRun {
		logging.WithContext(ctx, w.logger).Info("playlist content",
			logging.Path("playlist", playlistPath),
			logging.String("content", content),
			logging.DryRun(),
		)
	}
	if err := run.Exec.WriteFile(ctx, playlistPath, []byte(content)); err != nil {
		run.Warn(ctx, game.Canonical, "playlist not written", "playlist_write_failed",
			services.Wrap(services.ErrFilesystem, StageName, "write playlist", playlistPath, err),
			logging.String(logging.FieldImpact, "discs grouped without a playlist"),
		)
		return false
	}
	return true
}
