package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/broadcast-scenes/internal/history"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [RUN_ID]",
		Short: "Show generation run history",
		Long:  "List recent generation runs, or show the full report of one run.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck // Read-only use
			repo := history.NewSQLiteRunRepository(db.DB)

			if len(args) == 1 {
				run, err := repo.Get(cmd.Context(), args[0])
				if errors.Is(err, history.ErrRunNotFound) {
					return fmt.Errorf("run %s not found", args[0])
				}
				if err != nil {
					return err
				}
				if run.Report == nil {
					return ctx.emit(cmd, run, runsTable([]history.Run{*run}, 1))
				}
				return ctx.emit(cmd, run, reportTable(run.Report))
			}

			list, err := repo.List(cmd.Context(), limit, 0)
			if err != nil {
				return err
			}
			return ctx.emit(cmd, list, runsTable(list.Runs, list.Total))
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list")
	return cmd
}

func runsTable(runs []history.Run, total int) tableData {
	tbl := tableData{
		headers: []string{"Run", "Started", "Trigger", "Created", "Skipped", "Failed", "Duration"},
		aligns: []alignment{
			alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight,
		},
		footer: []string{fmt.Sprintf("%d of %d runs", len(runs), total)},
	}
	for _, r := range runs {
		tbl.rows = append(tbl.rows, []string{
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Trigger,
			strconv.Itoa(r.Summary.Created),
			strconv.Itoa(r.Summary.Skipped),
			strconv.Itoa(r.Summary.Failed),
			(time.Duration(r.DurationMS) * time.Millisecond).String(),
		})
	}
	return tbl
}
