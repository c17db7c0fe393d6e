package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	stageKey contextKey = "stage"
	gameKey  contextKey = "game"
)

// WithRunID annotates context with the pipeline run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithGame annotates context with the canonical game name being processed.
func WithGame(ctx context.Context, game string) context.Context {
	if game == "" {
		return ctx
	}
	return context.WithValue(ctx, gameKey, game)
}

// GameFromContext returns the canonical game name if present.
func GameFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(gameKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
