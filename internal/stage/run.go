package stage

import (
	"context"
	"log/slog"
	"time"

	"romtidy/internal/fsops"
	"romtidy/internal/logging"
	"romtidy/internal/scan"
	"romtidy/internal/services"
	"romtidy/internal/trash"
)

// Run carries everything a stage needs for one pipeline invocation.
type Run struct {
	ID        string
	Started   time.Time
	Dir       string
	DryRun    bool
	AutoClean bool
	Exec      fsops.Executor
	Trash     *trash.Manager
	Report    *Report
	Logger    *slog.Logger
	Scan      scan.Options
}

// List returns the current top-level entries of the target.
func (r *Run) List() ([]scan.Entry, error) {
	return scan.Top(r.Dir, r.Scan)
}

// Warn logs a per-item failure and records it as a warning.
func (r *Run) Warn(ctx context.Context, subject, message, eventType string, err error, attrs ...logging.Attr) {
	stageName, _ := services.StageFromContext(ctx)
	r.Report.Add(Issue{Severity: services.SeverityWarning, Stage: stageName, Subject: subject, Message: message, Err: err})
	if err != nil {
		attrs = append(attrs, logging.Error(err))
	}
	if subject != "" {
		attrs = append(attrs, logging.String("subject", subject))
	}
	logging.WarnWithContext(logging.WithContext(ctx, r.Logger), message, eventType, attrs...)
}

// Fail logs a failure that disables part of the run and records it as an error.
func (r *Run) Fail(ctx context.Context, subject, message, eventType string, err error, attrs ...logging.Attr) {
	stageName, _ := services.StageFromContext(ctx)
	r.Report.Add(Issue{Severity: services.SeverityError, Stage: stageName, Subject: subject, Message: message, Err: err})
	if err != nil {
		attrs = append(attrs, logging.Error(err))
	}
	if subject != "" {
		attrs = append(attrs, logging.String("subject", subject))
	}
	logging.ErrorWithContext(logging.WithContext(ctx, r.Logger), message, eventType, attrs...)
}

// Relocate moves path to trash, recording a warning on failure.
func (r *Run) Relocate(ctx context.Context, path string) bool {
	if _, err := r.Trash.Relocate(ctx, path); err != nil {
		r.Warn(ctx, path, "relocation to trash failed", "trash_relocate_failed", err,
			logging.String(logging.FieldErrorHint, "inspect the trash directory for a same-named entry"),
			logging.String(logging.FieldImpact, "file left in place"),
		)
		return false
	}
	return true
}
