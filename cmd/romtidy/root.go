package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var flags runFlags

	ctx := newCommandContext(&configFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:   "romtidy [flags] [target-dir]",
		Short: "Reorganize a game library: extract, convert to CHD, group discs, inventory",
		Long: `romtidy tidies a directory of game archives and disc images in place.

Archives are extracted and flattened, cue/bin sets are compressed to CHD with
chdman, multi-disc games are moved into hidden per-game folders behind an M3U
playlist, and an inventory report is written. Replaced files go to a trash
directory inside the target; nothing is deleted unless --auto-clean is
confirmed.

The target defaults to the current directory. A target named like a
subcommand must be given as a path, for example ./history.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) == 1 {
				target = args[0]
			}
			return runPipeline(cmd, ctx, target, flags)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	rootCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Log every action without changing the target")
	rootCmd.Flags().BoolVar(&flags.autoClean, "auto-clean", false, "Offer to purge the trash after the run")
	rootCmd.Flags().BoolVarP(&flags.force, "yes", "y", false, "Purge without prompting when --auto-clean is set")
	rootCmd.Flags().BoolVar(&flags.force, "force", false, "Alias for --yes")

	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newRestoreCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}
