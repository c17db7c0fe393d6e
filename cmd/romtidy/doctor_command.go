package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"romtidy/internal/deps"
	"romtidy/internal/pipeline"
	"romtidy/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor [target-dir]",
		Short: "Check tools, directories, and stage readiness",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			logger, err := ctx.consoleLogger()
			if err != nil {
				return err
			}
			target := ""
			if len(args) == 1 {
				if target, err = filepath.Abs(args[0]); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()

			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			depRows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				detail := status.Detail
				if detail == "" {
					detail = status.Description
				}
				depRows = append(depRows, []string{status.Name, status.Command, yesNo(status.Available), detail})
			}
			fmt.Fprintln(out, "Tools")
			writeTable(out, []string{"Name", "Command", "Found", "Detail"}, depRows,
				[]columnAlignment{alignLeft, alignPath, alignLeft, alignLeft})
			if !deps.AnyAvailable(statuses) {
				fmt.Fprintln(out, "No chdman candidate found; conversion will be disabled.")
			}

			results := preflight.RunAll(cmd.Context(), cfg, target)
			checkRows := make([][]string, 0, len(results))
			for _, result := range results {
				checkRows = append(checkRows, []string{result.Name, yesNo(result.Passed), result.Detail})
			}
			fmt.Fprintln(out, "Directories")
			writeTable(out, []string{"Check", "Passed", "Detail"}, checkRows,
				[]columnAlignment{alignLeft, alignLeft, alignPath})

			health := pipeline.New(cfg, logger).HealthChecks(cmd.Context())
			healthRows := make([][]string, 0, len(health))
			for _, h := range health {
				healthRows = append(healthRows, []string{h.Name, yesNo(h.Ready), h.Detail})
			}
			fmt.Fprintln(out, "Stages")
			writeTable(out, []string{"Stage", "Ready", "Detail"}, healthRows,
				[]columnAlignment{alignLeft, alignLeft, alignPath})

			for _, result := range results {
				if !result.Passed {
					return fmt.Errorf("doctor: %s check failed", result.Name)
				}
			}
			return nil
		},
	}
}
