package cli

import (
	"context"
	"fmt"

	"github.com/example/srt-reserver/internal/application/poller"
	"github.com/example/srt-reserver/internal/application/usecases"
	"github.com/example/srt-reserver/internal/db"
	"github.com/example/srt-reserver/internal/domain/user"
	"github.com/example/srt-reserver/internal/infrastructure/browser"
	"github.com/example/srt-reserver/internal/infrastructure/browser/chromedp"
	"github.com/example/srt-reserver/internal/infrastructure/browser/playwright"
	"github.com/example/srt-reserver/internal/infrastructure/config"
	"github.com/example/srt-reserver/internal/infrastructure/notify"
	"github.com/example/srt-reserver/internal/infrastructure/vault"
	"github.com/example/srt-reserver/internal/migrate"
	"github.com/example/srt-reserver/internal/runs"
)

func launcherFor(driver string) (browser.Launcher, error) {
	switch driver {
	case config.DriverPlaywright:
		return playwright.Launch, nil
	case config.DriverChromedp:
		return chromedp.Launch, nil
	default:
		return nil, fmt.Errorf("unknown driver %q", driver)
	}
}

func (a *app) browser(allowUnverified bool) (usecases.Browser, error) {
	launch, err := launcherFor(a.cfg.Driver)
	if err != nil {
		return usecases.Browser{}, err
	}
	return usecases.Browser{
		Launch: launch,
		Options: browser.Options{
			ExecutablePath: a.cfg.BrowserPath,
			Headless:       a.cfg.IsHeadless(),
			DebugPort:      a.cfg.DebugPort,
		},
		LoginURL:             a.cfg.LoginURL,
		SearchURL:            a.cfg.SearchURL,
		WaitTimeout:          a.cfg.WaitTimeout(),
		BookSettle:           a.cfg.BookSettle(),
		AllowUnverifiedLogin: allowUnverified,
	}, nil
}

func (a *app) interval() poller.Interval {
	return poller.Interval{Min: a.cfg.RefreshMin(), Max: a.cfg.RefreshMax()}
}

func (a *app) vault() (*vault.Vault, error) {
	hashKey, blockKey, err := a.cfg.VaultKeys()
	if err != nil {
		return nil, err
	}
	return vault.New(a.cfg.VaultPath, hashKey, blockKey)
}

// credentials merges flag values with the environment and, when keys are
// configured, the vault.
func (a *app) credentials(given user.Credentials) (user.Credentials, error) {
	given = given.Merge(user.Credentials{
		TelegramToken:  a.cfg.TelegramToken,
		TelegramChatID: a.cfg.TelegramChatID,
	})
	svc := usecases.CredentialsService{}
	if a.cfg.VaultHashKey != "" && a.cfg.VaultBlockKey != "" {
		v, err := a.vault()
		if err != nil {
			return given, err
		}
		svc.Store = v
	}
	return svc.Resolve(given)
}

func (a *app) notifier(creds user.Credentials) notify.Notifier {
	var out notify.Multi
	if creds.HasTelegram() {
		out = append(out, notify.NewTelegram(a.cfg.TelegramAPI, creds.TelegramToken, creds.TelegramChatID))
	}
	if a.cfg.SMTPAddr != "" && a.cfg.SMTPFrom != "" && len(a.cfg.SMTPTo) > 0 {
		out = append(out, notify.NewEmail(notify.SMTPConfig{
			Addr:     a.cfg.SMTPAddr,
			Username: a.cfg.SMTPUsername,
			Password: a.cfg.SMTPPassword,
			From:     a.cfg.SMTPFrom,
			To:       a.cfg.SMTPTo,
		}))
	}
	if len(out) == 0 {
		a.log.Debug("no notification channel configured")
		return notify.Nop{}
	}
	return out
}

// openRuns returns nil, nil when no database is configured.
func (a *app) openRuns(ctx context.Context) (*runs.Repo, func(), error) {
	if a.cfg.DatabaseURL == "" {
		return nil, func() {}, nil
	}
	d, err := db.Open(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	applied, err := migrate.Up(ctx, d)
	if err != nil {
		d.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	a.log.Debug("run history ready", "applied", applied)
	return runs.NewRepo(d), d.Close, nil
}
