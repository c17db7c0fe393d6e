package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"romtidy/internal/fsops"
	"romtidy/internal/history"
	"romtidy/internal/pipeline"
)

func newRestoreCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "restore <run-id>",
		Short: "Move a run's trashed files back to where they were",
		Long: `Restore moves every file a run relocated to trash back to its original
path, newest first. Entries already restored, purged from trash, or whose
original path is occupied are skipped. A unique prefix of the run id is enough.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.consoleLogger()
			if err != nil {
				return err
			}
			store, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.FindRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			lock, err := pipeline.AcquireLock(cfg.LockDir(), run.Target)
			if err != nil {
				return err
			}
			defer lock.Release()

			result, err := history.Restore(cmd.Context(), store, run.ID, fsops.New(dryRun, logger), logger)
			out := cmd.OutOrStdout()
			verb := "Restored"
			if dryRun {
				verb = "Would restore"
			}
			fmt.Fprintf(out, "%s %d file(s) for run %s (%d skipped, %d failed)\n",
				verb, result.Restored, shortID(run.ID), result.Skipped, result.Failed)
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log the moves without performing them")
	return cmd
}
