package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"romtidy/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var list bool

	cmd := &cobra.Command{
		Use:   "logs [log-file]",
		Short: "Show the latest run log, or list run logs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if list {
				runs, err := logs.List(cfg.Paths.LogDir)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{run.Name(), humanize.Bytes(uint64(run.Size)), humanize.Time(run.ModTime)})
				}
				writeTable(out, []string{"Log", "Size", "Modified"}, rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft})
				return nil
			}

			var path string
			if len(args) == 1 {
				path = args[0]
				if filepath.Base(path) == path {
					path = filepath.Join(cfg.Paths.LogDir, path)
				}
			} else {
				latest, err := logs.Latest(cfg.Paths.LogDir)
				if err != nil {
					return err
				}
				path = latest.Path
			}

			tail, offset, err := logs.Last(path, lines)
			if err != nil {
				return err
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			err = logs.Follow(cmd.Context(), path, offset, 0, func(line string) {
				fmt.Fprintln(out, line)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing lines as they are written")
	cmd.Flags().BoolVar(&list, "list", false, "List run logs instead of printing one")
	return cmd
}
