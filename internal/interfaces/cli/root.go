package cli

import (
	"log/slog"

	"github.com/example/srt-reserver/internal/infrastructure/config"
	"github.com/example/srt-reserver/internal/infrastructure/logging"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

// app is the state shared by every command once flags are parsed.
type app struct {
	configPath string
	verbose    bool

	cfg config.Config
	log *slog.Logger
}

func NewRoot() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "srtres",
		Short:         "Watch SRT trains and reserve a seat as soon as one frees up",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "json5 config file (default $SRTRES_CONFIG)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newReserveCmd(a))
	cmd.AddCommand(newSearchCmd(a))
	cmd.AddCommand(newStationsCmd())
	cmd.AddCommand(newCredsCmd(a))
	cmd.AddCommand(newKeysCmd())
	cmd.AddCommand(newHashPasswordCmd())
	cmd.AddCommand(newHistoryCmd(a))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func (a *app) load() error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.Load(a.configPath)
	} else {
		a.cfg, err = config.FromEnv()
	}
	if err != nil {
		return err
	}
	a.log = logging.Init(a.verbose || a.cfg.Verbose)
	return nil
}
