package cli

import (
	"fmt"

	"github.com/example/srt-reserver/internal/domain/reservation"
	"github.com/spf13/cobra"
)

func newStationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stations",
		Short: "List the stations SRT serves",
		Run: func(cmd *cobra.Command, args []string) {
			for _, s := range reservation.Stations() {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
		},
	}
}
