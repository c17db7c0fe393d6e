package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"romtidy/internal/archive"
	"romtidy/internal/config"
	"romtidy/internal/convert"
	"romtidy/internal/flatten"
	"romtidy/internal/fsops"
	"romtidy/internal/history"
	"romtidy/internal/inventory"
	"romtidy/internal/logging"
	"romtidy/internal/playlist"
	"romtidy/internal/preflight"
	"romtidy/internal/scan"
	"romtidy/internal/services"
	"romtidy/internal/services/chdman"
	"romtidy/internal/stage"
	"romtidy/internal/trash"
)

// Options controls one run.
type Options struct {
	Target    string
	DryRun    bool
	AutoClean bool
	// Force purges the trash without asking when AutoClean is set.
	Force bool
	// RunID and Started are generated when empty.
	RunID   string
	Started time.Time
}

// Runner executes the stage sequence against a target directory.
type Runner struct {
	cfg       *config.Config
	logger    *slog.Logger
	resolver  convert.Resolver
	out       io.Writer
	progress  io.Writer
	confirmer Confirmer
	now       func() time.Time
	newID     func() string
}

// Option customizes a Runner.
type Option func(*Runner)

// WithOutput sets where the inventory table is printed.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithProgress enables conversion progress bars on w.
func WithProgress(w io.Writer) Option {
	return func(r *Runner) { r.progress = w }
}

// WithResolver overrides the chdman resolution chain.
func WithResolver(resolver convert.Resolver) Option {
	return func(r *Runner) { r.resolver = resolver }
}

// WithConfirmer overrides how the auto-clean prompt is answered.
func WithConfirmer(c Confirmer) Option {
	return func(r *Runner) { r.confirmer = c }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New constructs a Runner.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:       cfg,
		logger:    logger,
		resolver:  chdman.NewResolver(cfg.Chdman),
		out:       os.Stdout,
		confirmer: TerminalConfirmer{In: os.Stdin, Out: os.Stderr},
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type step struct {
	handlers []stage.Handler
	applies  func([]scan.Entry) bool
}

func (r *Runner) steps() []step {
	conversion := convert.NewStage(r.resolver, r.logger)
	if r.progress != nil {
		conversion = conversion.WithProgress(r.progress)
	}
	return []step{
		{
			handlers: []stage.Handler{archive.NewStage(r.logger), flatten.NewStage(r.logger)},
			applies:  func(entries []scan.Entry) bool { return len(archive.Pending(entries)) > 0 },
		},
		{
			handlers: []stage.Handler{conversion},
			applies:  func(entries []scan.Entry) bool { return scan.Any(entries, convert.InputExts...) },
		},
		{
			handlers: []stage.Handler{playlist.NewStage(r.logger)},
			applies:  func(entries []scan.Entry) bool { return scan.Any(entries, convert.ContainerExt) },
		},
		{
			handlers: []stage.Handler{inventory.NewStage(r.logger).WithClock(r.now).WithTable(r.out)},
			applies:  func([]scan.Entry) bool { return true },
		},
	}
}

// HealthChecks reports the readiness of every stage without touching a target.
func (r *Runner) HealthChecks(ctx context.Context) []stage.Health {
	var out []stage.Health
	for _, s := range r.steps() {
		for _, h := range s.handlers {
			out = append(out, h.HealthCheck(ctx))
		}
	}
	return out
}

// Run processes opts.Target. The returned summary is non-nil whenever the
// lock was acquired, even if a fatal error aborted the stages.
func (r *Runner) Run(ctx context.Context, opts Options) (*Summary, error) {
	target := strings.TrimSpace(opts.Target)
	if target == "" {
		target = "."
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "validate", "resolve target", opts.Target, err)
	}
	if err := preflight.ValidateTarget(target); err != nil {
		return nil, err
	}
	if err := r.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "validate", "prepare state directories", "", err)
	}

	lock, err := AcquireLock(r.cfg.LockDir(), target)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			r.logger.Warn("failed to release target lock",
				logging.Path("lock", lock.Path()),
				logging.Error(err),
				logging.String(logging.FieldEventType, "lock_release_failed"),
				logging.String(logging.FieldErrorHint, "remove the lock file if no run is active"),
				logging.String(logging.FieldImpact, "next run may report the target as busy"),
			)
		}
	}()

	runID := opts.RunID
	if runID == "" {
		runID = r.newID()
	}
	started := opts.Started
	if started.IsZero() {
		started = r.now()
	}
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)

	exec := fsops.New(opts.DryRun, r.logger)
	run := &stage.Run{
		ID:        runID,
		Started:   started,
		Dir:       target,
		DryRun:    opts.DryRun,
		AutoClean: opts.AutoClean,
		Exec:      exec,
		Trash:     trash.New(target, r.cfg.Paths.TrashDir, started, exec, r.logger),
		Report:    stage.NewReport(),
		Logger:    r.logger,
		Scan:      scan.Options{TrashName: r.cfg.Paths.TrashDir, Ignore: r.cfg.Scan.Ignore},
	}
	store := r.openHistory(ctx, run)

	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "run_start"),
		logging.Path("target", target),
		logging.Bool("auto_clean", opts.AutoClean),
	}
	if opts.DryRun {
		attrs = append(attrs, logging.DryRun())
	}
	logger.Info("run started", logging.Args(attrs...)...)

	summary := &Summary{
		RunID:     runID,
		Target:    target,
		Started:   started,
		DryRun:    opts.DryRun,
		TrashRoot: run.Trash.Root(),
	}
	runErr := r.runStages(ctx, run, summary)
	if runErr == nil && opts.AutoClean {
		summary.Purged = r.autoClean(ctx, run, opts.Force)
	}

	summary.Issues = run.Report.Issues()
	summary.Relocated = run.Trash.Count()
	counts := run.Report.Counts()
	for i := range summary.Stages {
		c := counts[summary.Stages[i].Name]
		summary.Stages[i].Warnings, summary.Stages[i].Errors = c[0], c[1]
	}
	if occ, err := run.Trash.Occupancy(); err == nil {
		summary.Trash = occ
	} else {
		logger.Debug("trash occupancy unavailable", logging.Error(err))
	}
	summary.Finished = r.now()

	r.finishHistory(ctx, store, run, runErr)

	logger.Info("run finished",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("warnings", len(run.Report.Warnings())),
		logging.Int("errors", len(run.Report.Errors())),
		logging.Int("relocated", summary.Relocated),
		logging.String("trash_size", humanize.Bytes(uint64(summary.Trash.Bytes))),
		logging.Duration("duration", summary.Finished.Sub(started)),
	)
	return summary, runErr
}

func (r *Runner) runStages(ctx context.Context, run *stage.Run, summary *Summary) error {
	for _, s := range r.steps() {
		if err := ctx.Err(); err != nil {
			return err
		}
		entries, err := run.List()
		if err != nil {
			return services.Wrap(services.ErrValidation, "validate", "list target", run.Dir, err)
		}
		if !s.applies(entries) {
			for _, h := range s.handlers {
				logging.WithContext(services.WithStage(ctx, h.Name()), r.logger).Debug("stage skipped",
					logging.String(logging.FieldEventType, "stage_skipped"),
					logging.String("reason", "no relevant top-level entries"),
				)
				summary.Stages = append(summary.Stages, StageResult{Name: h.Name(), Status: StageSkipped})
			}
			continue
		}
		for _, h := range s.handlers {
			result, err := r.executeStage(ctx, run, h)
			summary.Stages = append(summary.Stages, result)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) executeStage(ctx context.Context, run *stage.Run, handler stage.Handler) (StageResult, error) {
	stageCtx := services.WithStage(ctx, handler.Name())
	stageLogger := logging.WithContext(stageCtx, r.logger)
	start := r.now()
	stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	err := handler.Execute(stageCtx, run)
	result := StageResult{Name: handler.Name(), Status: StageCompleted, Duration: r.now().Sub(start)}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			stageLogger.Warn("stage interrupted", logging.String(logging.FieldEventType, "stage_interrupted"))
			result.Status = StageAborted
			return result, err
		}
		if services.Classify(err) == services.SeverityFatal {
			logging.ErrorWithContext(stageLogger, "stage aborted the run", "stage_fatal",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the target directory is still accessible"),
			)
			result.Status = StageAborted
			return result, err
		}
		run.Fail(stageCtx, run.Dir, "stage failed", "stage_failed", err)
		result.Status = StageFailed
	}
	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("status", string(result.Status)),
		logging.Duration("stage_duration", result.Duration),
	)
	return result, nil
}

// autoClean purges the trash after confirmation and reports whether it did.
func (r *Runner) autoClean(ctx context.Context, run *stage.Run, force bool) bool {
	ctx = services.WithStage(ctx, "trash")
	logger := logging.WithContext(ctx, r.logger)
	occ, err := run.Trash.Occupancy()
	if err != nil {
		run.Warn(ctx, run.Trash.Root(), "could not measure trash", "trash_measure_failed", err)
		return false
	}
	if occ.Empty() {
		logger.Info("trash is empty; nothing to clean", logging.String(logging.FieldEventType, "autoclean_empty"))
		return false
	}
	if run.DryRun {
		logger.Info("dry run; purge described without prompting",
			logging.String(logging.FieldEventType, "autoclean_dry_run"),
			logging.Int("files", occ.Files),
			logging.DryRun(),
		)
	} else if !force {
		if r.confirmer == nil || !r.confirmer.Interactive() {
			run.Warn(ctx, run.Trash.Root(), "auto-clean skipped: no terminal to confirm the purge", "autoclean_skipped", nil,
				logging.String(logging.FieldErrorHint, "rerun with --yes to purge without a prompt"),
				logging.String(logging.FieldImpact, "trash kept"),
			)
			return false
		}
		question := fmt.Sprintf("Permanently delete %d file(s), %s, from %s?",
			occ.Files, humanize.Bytes(uint64(occ.Bytes)), run.Trash.Root())
		ok, err := r.confirmer.Confirm(question)
		if err != nil {
			run.Warn(ctx, run.Trash.Root(), "auto-clean prompt failed", "autoclean_prompt_failed", err)
			return false
		}
		if !ok {
			logger.Info("auto-clean declined", logging.String(logging.FieldEventType, "autoclean_declined"))
			return false
		}
	}
	if err := run.Trash.Purge(ctx); err != nil {
		run.Warn(ctx, run.Trash.Root(), "trash purge failed", "autoclean_failed", err,
			logging.String(logging.FieldImpact, "trash partially kept"),
		)
		return false
	}
	logger.Info("trash purged",
		logging.String(logging.FieldEventType, "autoclean_complete"),
		logging.Int("files", occ.Files),
		logging.String("size", humanize.Bytes(uint64(occ.Bytes))),
	)
	return true
}

func (r *Runner) openHistory(ctx context.Context, run *stage.Run) *history.Store {
	if !r.cfg.History.Enabled || run.DryRun {
		return nil
	}
	logger := logging.WithContext(ctx, r.logger)
	store, err := history.Open(r.cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "relocation journal unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check state_dir permissions"),
			logging.String(logging.FieldImpact, "restore will not list this run"),
		)
		return nil
	}
	if err := store.BeginRun(ctx, run.ID, run.Dir, run.Started); err != nil {
		logging.WarnWithContext(logger, "run not journaled", "history_begin_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "restore will not list this run"),
		)
		_ = store.Close()
		return nil
	}
	run.Trash.WithJournal(store, run.ID)
	return store
}

func (r *Runner) finishHistory(ctx context.Context, store *history.Store, run *stage.Run, runErr error) {
	if store == nil {
		return
	}
	defer store.Close()
	status := history.StatusFinished
	if runErr != nil {
		status = history.StatusFailed
	}
	if err := store.FinishRun(context.WithoutCancel(ctx), run.ID, status,
		len(run.Report.Warnings()), len(run.Report.Errors())); err != nil {
		r.logger.Warn("failed to record run completion",
			logging.Error(err),
			logging.String(logging.FieldEventType, "history_finish_failed"),
		)
	}
}
