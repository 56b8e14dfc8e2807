package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/banshee-data/blockminmax/internal/runlog"
)

func newRunsCmd(a *app, runsDB *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List runs recorded with --runs-db",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if *runsDB == "" {
				return fmt.Errorf("--runs-db is required")
			}
			store, err := runlog.Open(*runsDB)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(limit)
			if err != nil {
				return err
			}
			return writeRuns(a, runs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list (0 for all)")
	return cmd
}

func writeRuns(a *app, runs []runlog.Run) error {
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tSTARTED\tMODE\tADDRESSING\tREGION\tINC\tRECORDS\tCELLS\tELAPSED\tOUTPUT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\tz%s\t%s\t%s\t%g\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.StartedAt.Format(time.RFC3339),
			r.Mode,
			r.Addressing,
			r.Region,
			r.Inc,
			humanize.Comma(int64(r.Records)),
			humanize.Comma(int64(r.Occupied)),
			r.Elapsed,
			r.OutputPath,
		)
	}
	return tw.Flush()
}
