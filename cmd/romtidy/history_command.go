package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"romtidy/internal/config"
	"romtidy/internal/history"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recent runs, or the relocations of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				runs, err := store.RecentRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						run.StartedAt.Local().Format(historyTimeLayout),
						run.Status,
						strconv.Itoa(run.Relocations),
						strconv.Itoa(run.Warnings),
						strconv.Itoa(run.Errors),
						run.Target,
					})
				}
				writeTable(out,
					[]string{"Run", "Started", "Status", "Relocated", "Warnings", "Errors", "Target"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignPath},
				)
				return nil
			}

			run, err := store.FindRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			relocations, err := store.Relocations(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Run %s on %s (%s)\n", run.ID, run.Target, run.Status)
			if len(relocations) == 0 {
				fmt.Fprintln(out, "No relocations recorded")
				return nil
			}
			rows := make([][]string, 0, len(relocations))
			for _, rel := range relocations {
				rows = append(rows, []string{rel.Source, rel.Destination, restoredLabel(rel.RestoredAt)})
			}
			writeTable(out, []string{"Original", "Trash", "Restored"}, rows,
				[]columnAlignment{alignPath, alignPath, alignLeft})
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list")
	return cmd
}

// openHistory opens the journal, refusing to create one that was never written.
func openHistory(cfg *config.Config) (*history.Store, error) {
	path := cfg.HistoryPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("no relocation journal at %s; runs are journaled when history.enabled is true", path)
	}
	return history.Open(path)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func restoredLabel(at *time.Time) string {
	if at == nil {
		return "no"
	}
	return at.Local().Format(historyTimeLayout)
}
