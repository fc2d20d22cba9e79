package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/srt-reserver/internal/application/poller"
	"github.com/example/srt-reserver/internal/application/usecases"
	"github.com/example/srt-reserver/internal/domain/reservation"
	"github.com/example/srt-reserver/internal/domain/user"
	"github.com/example/srt-reserver/internal/interfaces/web"
	"github.com/spf13/cobra"
)

// queryFlags are shared by reserve and search.
type queryFlags struct {
	user, psw       string
	dpt, arr        string
	dt, tm          string
	num             int
	reserve         bool
	driver          string
	headless        bool
	allowUnverified bool
}

func (f *queryFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.user, "user", "", "SRT membership number, email or phone (falls back to the vault)")
	c.Flags().StringVar(&f.psw, "psw", "", "SRT password (falls back to the vault)")
	c.Flags().StringVar(&f.dpt, "dpt", "", "departure station, e.g. 수서")
	c.Flags().StringVar(&f.arr, "arr", "", "arrival station, e.g. 부산")
	c.Flags().StringVar(&f.dt, "dt", "", "departure date, YYYYMMDD")
	c.Flags().StringVar(&f.tm, "tm", "", "departure hour, even number 00-22")
	c.Flags().IntVar(&f.num, "num", 2, "how many trains from the top of the results to watch")
	c.Flags().BoolVar(&f.reserve, "reserve", false, "also request a waitlist seat when offered")
	c.Flags().StringVar(&f.driver, "driver", "", "browser driver: playwright or chromedp")
	c.Flags().BoolVar(&f.headless, "headless", true, "run the browser without a window")
	c.Flags().BoolVar(&f.allowUnverified, "allow-unverified-login", false, "continue when the post-login greeting is missing")
	for _, name := range []string{"dpt", "arr", "dt", "tm"} {
		_ = c.MarkFlagRequired(name)
	}
}

func (f *queryFlags) query() usecases.Query {
	return usecases.Query{
		Origin:      f.dpt,
		Destination: f.arr,
		Date:        f.dt,
		Hour:        f.tm,
		Trains:      f.num,
		Waitlist:    f.reserve,
	}
}

// apply lets flags override file and environment settings.
func (f *queryFlags) apply(c *cobra.Command, a *app) error {
	if f.driver != "" {
		a.cfg.Driver = f.driver
	}
	if c.Flags().Changed("headless") {
		headless := f.headless
		a.cfg.Headless = &headless
	}
	return a.cfg.Validate()
}

func newReserveCmd(a *app) *cobra.Command {
	var (
		f                   queryFlags
		token, chatID, addr string
	)
	c := &cobra.Command{
		Use:   "reserve",
		Short: "Poll the search results until a seat is reserved (or waitlisted)",
		Example: `  srtres reserve --user 1234567890 --psw '***' --dpt 동탄 --arr 동대구 --dt 20240105 --tm 08
  srtres reserve --dpt 수서 --arr 부산 --dt 20240105 --tm 14 --num 4 --reserve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.apply(cmd, a); err != nil {
				return err
			}
			if addr != "" {
				a.cfg.StatusAddr = addr
			}
			ctx := cmd.Context()

			creds, err := a.credentials(user.Credentials{
				LoginID:        f.user,
				Password:       f.psw,
				TelegramToken:  token,
				TelegramChatID: chatID,
			})
			if err != nil {
				return err
			}
			b, err := a.browser(f.allowUnverified)
			if err != nil {
				return err
			}
			repo, closeRuns, err := a.openRuns(ctx)
			if err != nil {
				return err
			}
			defer closeRuns()

			var wg sync.WaitGroup
			defer wg.Wait()
			statusCtx, stopStatus := context.WithCancel(ctx)
			defer stopStatus()

			u := usecases.Reserve{
				Browser:  b,
				Interval: a.interval(),
				Settle:   poller.DefaultSettle,
				Notifier: a.notifier(creds),
				Log:      a.log,
			}
			if repo != nil {
				u.Runs = repo
			}
			if a.cfg.StatusAddr != "" {
				u.OnStart = func(req reservation.Request, s *reservation.Session) {
					srv, err := web.New(req, s, a.cfg.StatusPasswordBcrypt, a.log)
					if err != nil {
						a.log.Warn("status page disabled", "err", err)
						return
					}
					wg.Add(1)
					go func() {
						defer wg.Done()
						if err := web.Start(statusCtx, a.cfg.StatusAddr, srv.Routes(), a.log); err != nil {
							a.log.Warn("status page stopped", "err", err)
						}
					}()
				}
			}

			snap, err := u.Execute(ctx, f.query(), creds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s after %d refreshes\n", snap.Outcome, snap.Refreshes)
			return nil
		},
	}
	f.register(c)
	c.Flags().StringVar(&token, "token", "", "Telegram bot token")
	c.Flags().StringVar(&chatID, "chat-id", "", "Telegram chat id")
	c.Flags().StringVar(&addr, "status-addr", "", "serve a status page on this address, e.g. :8080")
	return c
}
