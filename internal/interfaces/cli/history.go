package cli

import (
	"errors"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	c := &cobra.Command{
		Use:   "history",
		Short: "List recent reservation runs (needs DATABASE_URL)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is not set")
			}
			ctx := cmd.Context()
			repo, closeRuns, err := a.openRuns(ctx)
			if err != nil {
				return err
			}
			defer closeRuns()

			list, err := repo.ListRecent(ctx, limit)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Started", "Route", "Date", "Trains", "Waitlist", "Status", "Refreshes", "Took", "Error"})
			for _, r := range list {
				took := "-"
				if r.FinishedAt != nil {
					took = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
				}
				errMsg := ""
				if r.LastError != nil {
					errMsg = *r.LastError
				}
				t.AppendRow(table.Row{
					r.StartedAt.Local().Format("2006-01-02 15:04"),
					r.Origin + " → " + r.Destination,
					r.Date + " " + r.Hour + "시",
					r.Trains,
					r.Waitlist,
					r.Status,
					r.Refreshes,
					took,
					errMsg,
				})
			}
			t.SetStyle(table.StyleRounded)
			t.Render()
			return nil
		},
	}
	c.Flags().IntVarP(&limit, "limit", "n", 20, "how many runs to show")
	return c
}
