package stage

import (
	"romtidy/internal/services"
)

// Issue is one recorded warning or error.
type Issue struct {
	Severity services.Severity
	Stage    string
	Subject  string
	Message  string
	Err      error
}

// Report accumulates issues in the order they occurred.
type Report struct {
	issues []Issue
}

// NewReport returns an empty report.
func NewReport() *Report { return &Report{} }

// Add appends an issue.
func (r *Report) Add(issue Issue) {
	r.issues = append(r.issues, issue)
}

// Issues returns all issues in order.
func (r *Report) Issues() []Issue {
	out := make([]Issue, len(r.issues))
	copy(out, r.issues)
	return out
}

// Warnings returns the warning-severity issues.
func (r *Report) Warnings() []Issue { return r.filter(services.SeverityWarning) }

// Errors returns issues above warning severity.
func (r *Report) Errors() []Issue {
	var out []Issue
	for _, issue := range r.issues {
		if issue.Severity > services.SeverityWarning {
			out = append(out, issue)
		}
	}
	return out
}

// Counts returns warnings and errors per stage, keyed by stage name.
func (r *Report) Counts() map[string][2]int {
	counts := make(map[string][2]int)
	for _, issue := range r.issues {
		c := counts[issue.Stage]
		if issue.Severity == services.SeverityWarning {
			c[0]++
		} else {
			c[1]++
		}
		counts[issue.Stage] = c
	}
	return counts
}

func (r *Report) filter(sev services.Severity) []Issue {
	var out []Issue
	for _, issue := range r.issues {
		if issue.Severity == sev {
			out = append(out, issue)
		}
	}
	return out
}
