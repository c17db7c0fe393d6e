package pipeline

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"romtidy/internal/services"
	"romtidy/internal/stage"
	"romtidy/internal/trash"
)

// StageStatus is the outcome of one stage.
type StageStatus string

const (
	StageCompleted StageStatus = "completed"
	StageSkipped   StageStatus = "skipped"
	// StageFailed means the stage stopped early but the run continued.
	StageFailed StageStatus = "failed"
	// StageAborted means the stage ended the run.
	StageAborted StageStatus = "aborted"
)

// StageResult records what happened to one stage.
type StageResult struct {
	Name     string
	Status   StageStatus
	Duration time.Duration
	Warnings int
	Errors   int
}

// Summary describes a finished run.
type Summary struct {
	RunID     string
	Target    string
	Started   time.Time
	Finished  time.Time
	DryRun    bool
	Stages    []StageResult
	Issues    []stage.Issue
	Relocated int
	TrashRoot string
	Trash     trash.Occupancy
	Purged    bool
}

// Warnings counts warning-severity issues.
func (s *Summary) Warnings() int {
	n := 0
	for _, issue := range s.Issues {
		if issue.Severity == services.SeverityWarning {
			n++
		}
	}
	return n
}

// Errors counts issues above warning severity.
func (s *Summary) Errors() int {
	return len(s.Issues) - s.Warnings()
}

// Stage returns the result for name.
func (s *Summary) Stage(name string) (StageResult, bool) {
	for _, result := range s.Stages {
		if result.Name == name {
			return result, true
		}
	}
	return StageResult{}, false
}

// Render writes the stage table, any issues, and the trash status.
func (s *Summary) Render(w io.Writer) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	title := "Run " + s.RunID
	if s.DryRun {
		title += " (dry run)"
	}
	tw.SetTitle(title)
	tw.AppendHeader(table.Row{"Stage", "Status", "Duration", "Warnings", "Errors"})
	for _, result := range s.Stages {
		duration := "-"
		if result.Status != StageSkipped {
			duration = result.Duration.Round(time.Millisecond).String()
		}
		tw.AppendRow(table.Row{result.Name, string(result.Status), duration,
			strconv.Itoa(result.Warnings), strconv.Itoa(result.Errors)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	tw.Render()

	if len(s.Issues) > 0 {
		iw := table.NewWriter()
		iw.SetOutputMirror(w)
		iw.SetStyle(table.StyleRounded)
		iw.AppendHeader(table.Row{"Severity", "Stage", "Subject", "Message"})
		for _, issue := range s.Issues {
			message := issue.Message
			if issue.Err != nil {
				message += ": " + issue.Err.Error()
			}
			iw.AppendRow(table.Row{issue.Severity.String(), issue.Stage, issue.Subject, message})
		}
		iw.SetColumnConfigs([]table.ColumnConfig{{Number: 4, WidthMax: 80}})
		iw.Render()
	}

	verb := "Relocated"
	if s.DryRun {
		verb = "Would relocate"
	}
	fmt.Fprintf(w, "%s %d item(s) to trash this run.\n", verb, s.Relocated)
	switch {
	case s.Purged && s.DryRun:
		fmt.Fprintf(w, "Trash would be purged: %s\n", s.TrashRoot)
	case s.Purged:
		fmt.Fprintf(w, "Trash purged: %s\n", s.TrashRoot)
	case s.Trash.Empty():
		fmt.Fprintf(w, "Trash is empty: %s\n", s.TrashRoot)
	default:
		fmt.Fprintf(w, "Trash holds %d file(s), %s, across %d run(s): %s\n",
			s.Trash.Files, humanize.Bytes(uint64(s.Trash.Bytes)), s.Trash.Runs, s.TrashRoot)
	}
	fmt.Fprintf(w, "Finished with %d warning(s) and %d error(s).\n", s.Warnings(), s.Errors())
}
