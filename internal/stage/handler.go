package stage

import (
	"context"
)

// Handler describes the contract the orchestrator needs from each stage.
type Handler interface {
	// Name is the stage label used in logs and the summary.
	Name() string
	// Execute processes the target once. A returned error aborts the stage;
	// per-item failures are recorded on run.Report instead.
	Execute(context.Context, *Run) error
	// HealthCheck reports whether the stage can run on this host.
	HealthCheck(context.Context) Health
}

// Health is a stage's readiness as shown by the doctor command. Detail names
// the resolved tool for a ready stage, or the reason it cannot run.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy reports a stage with no host requirements.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy reports a stage that will record an error instead of running.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Detail: detail}
}
