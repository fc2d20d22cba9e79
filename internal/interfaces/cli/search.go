package cli

import (
	"github.com/example/srt-reserver/internal/application/usecases"
	"github.com/example/srt-reserver/internal/domain/user"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	var f queryFlags
	c := &cobra.Command{
		Use:   "search",
		Short: "Run the search once and print the watched trains",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.apply(cmd, a); err != nil {
				return err
			}
			creds, err := a.credentials(user.Credentials{LoginID: f.user, Password: f.psw})
			if err != nil {
				return err
			}
			b, err := a.browser(f.allowUnverified)
			if err != nil {
				return err
			}
			trains, err := usecases.Search{Browser: b, Log: a.log}.Execute(cmd.Context(), f.query(), creds)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"#", "Train", "Departure", "Arrival", "Standard", "Waitlist"})
			for _, tr := range trains {
				t.AppendRow(table.Row{tr.Row, tr.Number, tr.Departure, tr.Arrival, tr.Standard, tr.Waitlist})
			}
			t.SetStyle(table.StyleRounded)
			t.Render()
			return nil
		},
	}
	f.register(c)
	return c
}
