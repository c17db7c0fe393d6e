package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks an invalid, unreadable, or unwritable target. Fatal.
	ErrValidation = errors.New("validation error")
	// ErrExternalTool marks a failed extraction or conversion of one item.
	ErrExternalTool = errors.New("external tool error")
	// ErrUnavailable marks a required tool that could not be resolved.
	ErrUnavailable = errors.New("resource unavailable")
	// ErrFilesystem marks a failed move or directory creation.
	ErrFilesystem = errors.New("filesystem mutation error")
	// ErrConfiguration marks an invalid configuration file.
	ErrConfiguration = errors.New("configuration error")
)

// Severity classifies how the orchestrator reacts to a failure.
type Severity int

const (
	// SeverityWarning is recorded and processing continues with the next item.
	SeverityWarning Severity = iota
	// SeverityError is recorded and disables the affected stage only.
	SeverityError
	// SeverityFatal halts the run before (or instead of) any further stage.
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "fatal"
	case SeverityError:
		return "error"
	default:
		return "warning"
	}
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps a stage error to the severity the orchestrator applies.
func Classify(err error) Severity {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration):
		return SeverityFatal
	case errors.Is(err, ErrUnavailable):
		return SeverityError
	default:
		return SeverityWarning
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "operation failure"
	}
	return strings.Join(parts, ": ")
}
