package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"romtidy/internal/logging"
	"romtidy/internal/pipeline"
)

type runFlags struct {
	dryRun    bool
	autoClean bool
	force     bool
}

func runPipeline(cmd *cobra.Command, ctx *commandContext, target string, flags runFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	started := time.Now()
	runLog, err := logging.NewForRun(cfg, runID, started)
	if err != nil {
		return err
	}
	defer runLog.Close()
	logging.PruneRunLogs(runLog.Logger, cfg.Logging.RetentionDays, cfg.Paths.LogDir, runLog.Path)

	out := cmd.OutOrStdout()
	opts := []pipeline.Option{
		pipeline.WithOutput(out),
		pipeline.WithConfirmer(pipeline.TerminalConfirmer{In: os.Stdin, Out: cmd.ErrOrStderr()}),
	}
	if fd := os.Stderr.Fd(); isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		opts = append(opts, pipeline.WithProgress(os.Stderr))
	}
	runner := pipeline.New(cfg, runLog.Logger, opts...)

	summary, err := runner.Run(cmd.Context(), pipeline.Options{
		Target:    target,
		DryRun:    flags.dryRun,
		AutoClean: flags.autoClean,
		Force:     flags.force,
		RunID:     runID,
		Started:   started,
	})
	if summary != nil {
		summary.Render(out)
		if runLog.Path != "" {
			fmt.Fprintf(out, "Run log: %s\n", runLog.Path)
		}
	}
	return err
}
