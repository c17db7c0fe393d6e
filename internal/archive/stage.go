// Package archive detects and extracts game archives into the target
// directory and then relocates the processed archives to trash.
package archive

import (
	"context"
	"log/slog"

	"romtidy/internal/fsops"
	"romtidy/internal/logging"
	"romtidy/internal/scan"
	"romtidy/internal/services"
	"romtidy/internal/stage"
)

// StageName labels extraction in logs and summaries.
const StageName = "extract"

// Stage extracts every top-level archive.
type Stage struct {
	extractors map[Format]Extractor
	logger     *slog.Logger
}

// NewStage constructs the extraction stage with the built-in extractors.
func NewStage(logger *slog.Logger) *Stage {
	return &Stage{
		extractors: Extractors(),
		logger:     logging.NewComponentLogger(logger, StageName),
	}
}

// WithExtractor overrides the extractor for format (primarily for tests).
func (s *Stage) WithExtractor(format Format, extractor Extractor) *Stage {
	s.extractors[format] = extractor
	return s
}

func (s *Stage) Name() string { return StageName }

func (s *Stage) HealthCheck(context.Context) stage.Health { return stage.Healthy(StageName) }

// Pending returns the top-level archives present in entries.
func Pending(entries []scan.Entry) []Entry {
	var out []Entry
	for _, e := range scan.Files(entries) {
		if format := Detect(e.Name); format != FormatUnknown {
			out = append(out, Entry{Path: e.Path, Format: format})
		}
	}
	return out
}

// Execute extracts each archive into the target and relocates every
// processed archive to trash afterwards, whether or not extraction succeeded.
func (s *Stage) Execute(ctx context.Context, run *stage.Run) error {
	entries, err := run.List()
	if err != nil {
		return services.Wrap(services.ErrValidation, StageName, "list target", run.Dir, err)
	}
	archives := Pending(entries)
	logger := logging.WithContext(ctx, s.logger)
	logger.Info("extracting archives", logging.Int("count", len(archives)))

	extracted := 0
	for _, entry := range archives {
		if err := ctx.Err(); err != nil {
			return err
		}
		extractor, ok := s.extractors[entry.Format]
		if !ok {
			continue
		}
		archivePath := entry.Path
		_, err := run.Exec.Run(ctx, fsops.Action{
			Description: "extract archive",
			Attrs: []logging.Attr{
				logging.Path("archive", archivePath),
				logging.String("format", string(entry.Format)),
				logging.Path("into", run.Dir),
			},
			Apply: func(ctx context.Context) error {
				return extractor.Extract(ctx, archivePath, run.Dir)
			},
		})
		if err != nil {
			run.Warn(ctx, archivePath, "archive extraction failed",
				"archive_extract_failed",
				services.Wrap(services.ErrExternalTool, StageName, "extract", archivePath, err),
				logging.String(logging.FieldErrorHint, "verify the archive opens with a desktop tool"),
				logging.String(logging.FieldImpact, "archive contents missing from the library"),
			)
			continue
		}
		extracted++
	}

	for _, entry := range archives {
		run.Relocate(ctx, entry.Path)
	}
	logger.Info("extraction finished",
		logging.Int("archives", len(archives)),
		logging.Int("extracted", extracted),
		logging.String(logging.FieldEventType, "extract_complete"),
	)
	return nil
}
