package playlist

import (
	"context"
	"log/slog"

	"romtidy/internal/logging"
	"romtidy/internal/multidisc"
	"romtidy/internal/scan"
	"romtidy/internal/services"
	"romtidy/internal/stage"
)

// ContainerExt is the extension of grouped discs.
const ContainerExt = ".chd"

// Stage groups top-level multi-disc containers and writes their playlists.
type Stage struct {
	writer *Writer
	logger *slog.Logger
}

// NewStage constructs the grouping stage.
func NewStage(logger *slog.Logger) *Stage {
	return &Stage{
		writer: NewWriter(logger),
		logger: logging.NewComponentLogger(logger, StageName),
	}
}

func (s *Stage) Name() string { return StageName }

func (s *Stage) HealthCheck(context.Context) stage.Health { return stage.Healthy(StageName) }

// Execute relocates old playlists, groups containers and writes one playlist
// per game in canonical-name order.
func (s *Stage) Execute(ctx context.Context, run *stage.Run) error {
	entries, err := run.List()
	if err != nil {
		return services.Wrap(services.ErrValidation, StageName, "list target", run.Dir, err)
	}
	logger := logging.WithContext(ctx, s.logger)

	stale := s.writer.RelocateExisting(ctx, run, entries)

	var paths []string
	for _, entry := range scan.Files(entries, ContainerExt) {
		paths = append(paths, entry.Path)
	}
	games, empty := multidisc.Group(paths)
	for _, e := range empty {
		run.Warn(ctx, e.Path, "disc marker without a game name; file left ungrouped", "group_empty_name", nil,
			logging.String(logging.FieldErrorHint, "rename the file to include the game title"),
			logging.String(logging.FieldImpact, "file stays at top level"),
		)
	}

	written := 0
	claimed := make(map[string]string)
	for _, game := range games {
		if err := ctx.Err(); err != nil {
			return err
		}
		if owner, ok := claim(claimed, game); !ok {
			run.Warn(services.WithGame(ctx, game.Canonical), game.Canonical,
				"game name collides with another game after sanitizing; game skipped", "group_name_collision", nil,
				logging.String("collides_with", owner),
				logging.String("hidden_dir", game.HiddenDir()),
				logging.String(logging.FieldErrorHint, "rename one of the games so their names differ in letters or digits"),
				logging.String(logging.FieldImpact, "discs left at top level"),
			)
			continue
		}
		if s.writer.Write(ctx, run, game) {
			written++
		}
	}
	logger.Info("grouping finished",
		logging.Int("stale_playlists", stale),
		logging.Int("games", len(games)),
		logging.Int("playlists", written),
		logging.String(logging.FieldEventType, "group_complete"),
	)
	return nil
}

// claim reserves the hidden directory and playlist names of game. When either
// is already held by another game it returns that game's canonical name.
func claim(claimed map[string]string, game multidisc.Game) (string, bool) {
	keys := []string{game.HiddenDir(), game.PlaylistName()}
	for _, key := range keys {
		if owner, ok := claimed[key]; ok {
			return owner, false
		}
	}
	for _, key := range keys {
		claimed[key] = game.Canonical
	}
	return "", true
}
