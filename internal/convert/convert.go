// Package convert compresses top-level disc image sets into CHD containers
// and relocates the consumed sources to trash.
package convert

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"romtidy/internal/cuesheet"
	"romtidy/internal/fsops"
	"romtidy/internal/logging"
	"romtidy/internal/scan"
	"romtidy/internal/services"
	"romtidy/internal/services/chdman"
	"romtidy/internal/stage"
)

// StageName labels conversion in logs and summaries.
const StageName = "convert"

// ContainerExt is the extension of converted discs.
const ContainerExt = ".chd"

// InputExts are the top-level extensions that make conversion relevant.
var InputExts = append([]string{cuesheet.DescriptorExt}, cuesheet.DataExts...)

// CompressedDisc is a container produced by a verified conversion.
type CompressedDisc struct {
	Path   string
	Source cuesheet.Set
}

// Resolver locates the conversion tool.
type Resolver interface {
	Resolve(ctx context.Context) (chdman.Command, error)
}

// Stage converts every top-level descriptor once.
type Stage struct {
	resolver     Resolver
	newConverter func(chdman.Command) (chdman.Converter, error)
	progressOut  io.Writer
	logger       *slog.Logger
}

// NewStage constructs the conversion stage.
func NewStage(resolver Resolver, logger *slog.Logger) *Stage {
	return &Stage{
		resolver: resolver,
		newConverter: func(cmd chdman.Command) (chdman.Converter, error) {
			return chdman.NewClient(cmd)
		},
		logger: logging.NewComponentLogger(logger, StageName),
	}
}

// WithConverter overrides converter construction (primarily for tests).
func (s *Stage) WithConverter(fn func(chdman.Command) (chdman.Converter, error)) *Stage {
	if fn != nil {
		s.newConverter = fn
	}
	return s
}

// WithProgress renders a progress bar per disc to w.
func (s *Stage) WithProgress(w io.Writer) *Stage {
	s.progressOut = w
	return s
}

func (s *Stage) Name() string { return StageName }

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	cmd, err := s.resolver.Resolve(ctx)
	if err != nil {
		return stage.Unhealthy(StageName, err.Error())
	}
	return stage.Health{Name: StageName, Ready: true, Detail: cmd.String()}
}

// Execute converts each top-level descriptor. An unresolvable tool disables
// conversion with a recorded error; it never aborts the run.
func (s *Stage) Execute(ctx context.Context, run *stage.Run) error {
	logger := logging.WithContext(ctx, s.logger)
	cmd, err := s.resolver.Resolve(ctx)
	if err != nil {
		run.Fail(ctx, "chdman", "disc conversion disabled", "chdman_unavailable", err,
			logging.String(logging.FieldErrorHint, "run romtidy doctor to see which candidates were tried"),
			logging.String(logging.FieldImpact, "disc images left unconverted"),
		)
		return nil
	}
	converter, err := s.newConverter(cmd)
	if err != nil {
		run.Fail(ctx, "chdman", "disc conversion disabled", "chdman_unavailable",
			services.Wrap(services.ErrUnavailable, StageName, "build client", cmd.String(), err))
		return nil
	}
	logger.Info("chdman resolved",
		logging.String("command", cmd.String()),
		logging.String("source", string(cmd.Source)),
	)

	entries, err := run.List()
	if err != nil {
		return services.Wrap(services.ErrValidation, StageName, "list target", run.Dir, err)
	}
	descriptors := scan.Files(entries, cuesheet.DescriptorExt)

	var converted []CompressedDisc
	for _, entry := range descriptors {
		if err := ctx.Err(); err != nil {
			return err
		}
		disc, ok := s.convertOne(services.WithGame(ctx, entry.Stem()), run, converter, entry.Path)
		if ok {
			converted = append(converted, disc)
		}
	}
	logger.Info("conversion finished",
		logging.Int("descriptors", len(descriptors)),
		logging.Int("converted", len(converted)),
		logging.String(logging.FieldEventType, "convert_complete"),
	)
	return nil
}

func (s *Stage) convertOne(ctx context.Context, run *stage.Run, converter chdman.Converter, descriptor string) (CompressedDisc, bool) {
	base := cuesheet.BaseName(descriptor)
	output := filepath.Join(filepath.Dir(descriptor), base+ContainerExt)
	if fsops.Exists(output) {
		run.Warn(ctx, descriptor, "container already exists; set skipped", "convert_output_exists", nil,
			logging.Path("output", output),
			logging.String(logging.FieldErrorHint, "remove or rename the existing container to reconvert"),
			logging.String(logging.FieldImpact, "descriptor and data files left in place"),
		)
		return CompressedDisc{}, false
	}

	bar := s.newBar(base)
	_, err := run.Exec.Run(ctx, fsops.Action{
		Description: "convert disc image",
		Attrs: []logging.Attr{
			logging.Path("descriptor", descriptor),
			logging.Path("output", output),
		},
		Apply: func(ctx context.Context) error {
			return converter.CreateCD(ctx, descriptor, output, func(update chdman.ProgressUpdate) {
				if bar != nil {
					_ = bar.Set(int(update.Percent))
				}
			})
		},
	})
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		run.Warn(ctx, descriptor, "disc conversion failed", "convert_failed",
			services.Wrap(services.ErrExternalTool, StageName, "createcd", descriptor, err),
			logging.String(logging.FieldErrorHint, "check the descriptor references and rerun"),
			logging.String(logging.FieldImpact, "descriptor and data files left in place"),
		)
		if fsops.Exists(output) {
			run.Relocate(ctx, output)
		}
		return CompressedDisc{}, false
	}

	set, err := cuesheet.Load(descriptor)
	if err != nil {
		run.Warn(ctx, descriptor, "converted but descriptor unreadable", "convert_descriptor_unreadable", err,
			logging.String(logging.FieldImpact, "sources left next to the container"),
		)
		return CompressedDisc{Path: output, Source: set}, true
	}
	for _, ref := range set.Files {
		if !fsops.Exists(ref) {
			run.Warn(ctx, ref, "referenced data file missing", "convert_reference_missing", nil,
				logging.Path("descriptor", descriptor),
			)
			continue
		}
		run.Relocate(ctx, ref)
	}
	run.Relocate(ctx, descriptor)
	return CompressedDisc{Path: output, Source: set}, true
}

func (s *Stage) newBar(description string) *progressbar.ProgressBar {
	if s.progressOut == nil {
		return nil
	}
	return progressbar.NewOptions(100,
		progressbar.OptionSetWriter(s.progressOut),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
