package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/srt-reserver/internal/domain/reservation"
	"github.com/example/srt-reserver/internal/domain/user"
	"github.com/example/srt-reserver/internal/infrastructure/browser"
	"github.com/example/srt-reserver/internal/infrastructure/srt"
	"github.com/example/srt-reserver/internal/internaltypes"
)

// Query is what the user asked for, before validation.
type Query struct {
	Origin      string
	Destination string
	Date        string
	Hour        string
	Trains      int
	Waitlist    bool
}

func (q Query) Request() (reservation.Request, error) {
	return reservation.NewRequest(q.Origin, q.Destination, q.Date, q.Hour, q.Trains, q.Waitlist)
}

// Browser holds how to obtain and drive the booking site.
type Browser struct {
	Launch  browser.Launcher
	Options browser.Options

	LoginURL    string
	SearchURL   string
	WaitTimeout time.Duration
	BookSettle  time.Duration

	// AllowUnverifiedLogin keeps going when the post-login greeting is
	// missing instead of failing with internaltypes.ErrLoginFailed.
	AllowUnverifiedLogin bool
}

// open launches the browser, logs in and submits the search. On error the
// browser is already closed; on success the caller owns it.
func (b Browser) open(ctx context.Context, req reservation.Request, creds user.Credentials, log *slog.Logger) (browser.Driver, *srt.Site, error) {
	if b.Launch == nil {
		return nil, nil, fmt.Errorf("no browser launcher configured")
	}
	drv, err := b.Launch(ctx, b.Options)
	if err != nil {
		return nil, nil, fmt.Errorf("launch browser: %w", err)
	}
	site := &srt.Site{
		Driver:      drv,
		LoginURL:    b.LoginURL,
		SearchURL:   b.SearchURL,
		WaitTimeout: b.WaitTimeout,
		BookSettle:  b.BookSettle,
		Log:         log,
	}
	if err := b.prepare(ctx, site, req, creds, log); err != nil {
		closeDriver(drv, log)
		return nil, nil, err
	}
	return drv, site, nil
}

func (b Browser) prepare(ctx context.Context, site *srt.Site, req reservation.Request, creds user.Credentials, log *slog.Logger) error {
	ok, err := site.Login(ctx, creds)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if !ok {
		if !b.AllowUnverifiedLogin {
			return internaltypes.ErrLoginFailed
		}
		log.Warn("login greeting not found, continuing anyway")
	} else {
		log.Info("logged in")
	}
	return site.Search(ctx, req)
}

func closeDriver(drv browser.Driver, log *slog.Logger) {
	if err := drv.Close(); err != nil {
		log.Warn("close browser", "err", err)
	}
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
