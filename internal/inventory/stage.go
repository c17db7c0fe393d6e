package inventory

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"romtidy/internal/logging"
	"romtidy/internal/services"
	"romtidy/internal/stage"
)

// StageName labels inventory in logs and summaries.
const StageName = "inventory"

const (
	playlistExt  = ".m3u"
	containerExt = ".chd"
)

// Stage builds and writes the inventory report.
type Stage struct {
	now    func() time.Time
	out    io.Writer
	logger *slog.Logger
}

// NewStage constructs the inventory stage.
func NewStage(logger *slog.Logger) *Stage {
	return &Stage{
		now:    time.Now,
		logger: logging.NewComponentLogger(logger, StageName),
	}
}

// WithClock overrides the report timestamp source (primarily for tests).
func (s *Stage) WithClock(now func() time.Time) *Stage {
	if now != nil {
		s.now = now
	}
	return s
}

// WithTable renders the inventory as a table to w after writing the report.
func (s *Stage) WithTable(w io.Writer) *Stage {
	s.out = w
	return s
}

func (s *Stage) Name() string { return StageName }

func (s *Stage) HealthCheck(context.Context) stage.Health { return stage.Healthy(StageName) }

// Execute always runs, even when nothing was grouped.
func (s *Stage) Execute(ctx context.Context, run *stage.Run) error {
	entries, err := run.List()
	if err != nil {
		return services.Wrap(services.ErrValidation, StageName, "list target", run.Dir, err)
	}
	inv, err := Build(entries, playlistExt, containerExt)
	if err != nil {
		run.Warn(ctx, run.Dir, "inventory incomplete", "inventory_read_failed", err)
		return nil
	}

	generated := s.now()
	report := Render(inv, generated)
	path := filepath.Join(run.Dir, ReportName(generated))
	if err := run.Exec.WriteFile(ctx, path, []byte(report)); err != nil {
		run.Warn(ctx, path, "inventory report not written", "inventory_write_failed",
			services.Wrap(services.ErrFilesystem, StageName, "write report", path, err),
			logging.String(logging.FieldImpact, "no report file for this run"),
		)
	}
	if s.out != nil {
		RenderTable(s.out, inv)
	}
	logging.WithContext(ctx, s.logger).Info("inventory written",
		logging.Path("report", path),
		logging.Int("games", inv.Len()),
		logging.String(logging.FieldEventType, "inventory_complete"),
	)
	return nil
}

// RenderTable prints the inventory as a console table.
func RenderTable(w io.Writer, inv *Inventory) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Game", "Discs"})
	for _, record := range inv.Records() {
		tw.AppendRow(table.Row{record.Name, record.Discs})
	}
	tw.AppendFooter(table.Row{"Total", inv.Len()})
	tw.Render()
}
