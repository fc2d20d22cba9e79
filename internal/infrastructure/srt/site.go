// Package srt drives the SRT booking pages through a browser.Driver.
package srt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/srt-reserver/internal/domain/reservation"
	"github.com/example/srt-reserver/internal/domain/user"
	"github.com/example/srt-reserver/internal/infrastructure/browser"
)

const DefaultWaitTimeout = 10 * time.Second

type Site struct {
	Driver      browser.Driver
	LoginURL    string
	SearchURL   string
	WaitTimeout time.Duration
	// BookSettle is how long to let the page react to a reservation click
	// before checking the outcome.
	BookSettle time.Duration
	Log        *slog.Logger
}

func (s *Site) log() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

func (s *Site) waitTimeout() time.Duration {
	if s.WaitTimeout <= 0 {
		return DefaultWaitTimeout
	}
	return s.WaitTimeout
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Login submits the login form and reports whether the header greets the
// user. Element failures are returned as errors; a missing greeting is not.
func (s *Site) Login(ctx context.Context, creds user.Credentials) (bool, error) {
	if err := s.Driver.Navigate(ctx, orDefault(s.LoginURL, DefaultLoginURL)); err != nil {
		return false, fmt.Errorf("open login page: %w", err)
	}
	if err := s.Driver.WaitPresent(ctx, selLoginID, s.waitTimeout()); err != nil {
		return false, fmt.Errorf("login id field: %w", err)
	}
	if err := s.Driver.Fill(ctx, selLoginID, creds.LoginID); err != nil {
		return false, fmt.Errorf("login id field: %w", err)
	}
	if err := s.Driver.Fill(ctx, selLoginPassword, creds.Password); err != nil {
		return false, fmt.Errorf("password field: %w", err)
	}
	if err := s.Driver.Click(ctx, selLoginButton); err != nil {
		return false, fmt.Errorf("login button: %w", err)
	}
	if err := s.Driver.WaitPresent(ctx, selHeaderMenu, s.waitTimeout()); err != nil {
		return false, fmt.Errorf("header after login: %w", err)
	}
	menu, err := s.Driver.Text(ctx, selHeaderMenu)
	if err != nil {
		return false, fmt.Errorf("header after login: %w", err)
	}
	return strings.Contains(menu, MarkerWelcome), nil
}

// Search fills the schedule form and submits it. Every field must appear
// within the wait timeout; a missing one means the page changed and is fatal.
func (s *Site) Search(ctx context.Context, req reservation.Request) error {
	if err := s.Driver.Navigate(ctx, orDefault(s.SearchURL, DefaultSearchURL)); err != nil {
		return fmt.Errorf("open search page: %w", err)
	}

	fields := []struct {
		name string
		sel  string
		set  func() error
	}{
		{"departure station", selOrigin, func() error { return s.Driver.Fill(ctx, selOrigin, req.Origin()) }},
		{"arrival station", selDestination, func() error { return s.Driver.Fill(ctx, selDestination, req.Destination()) }},
		{"date", selDate, func() error {
			if err := s.Driver.Reveal(ctx, selDate); err != nil {
				return err
			}
			return s.Driver.SelectByValue(ctx, selDate, req.DateValue())
		}},
		{"hour", selHour, func() error {
			if err := s.Driver.Reveal(ctx, selHour); err != nil {
				return err
			}
			return s.Driver.SelectByText(ctx, selHour, req.Hour())
		}},
	}
	for _, f := range fields {
		if err := s.Driver.WaitPresent(ctx, f.sel, s.waitTimeout()); err != nil {
			return fmt.Errorf("%s field: %w", f.name, err)
		}
		if err := f.set(); err != nil {
			return fmt.Errorf("%s field: %w", f.name, err)
		}
	}

	s.log().Info("searching trains",
		"from", req.Origin(), "to", req.Destination(),
		"date", req.DateValue(), "hour", req.Hour(),
		"trains", req.Trains(), "waitlist", req.Waitlist())

	if err := s.Driver.WaitClickable(ctx, selSearchButton, s.waitTimeout()); err != nil {
		return fmt.Errorf("search button: %w", err)
	}
	if err := s.Driver.Click(ctx, selSearchButton); err != nil {
		return fmt.Errorf("search button: %w", err)
	}
	return nil
}

// Resubmit re-runs the current search from page script.
func (s *Site) Resubmit(ctx context.Context) error {
	if err := s.Driver.ScriptClick(ctx, selSearchButton); err != nil {
		return fmt.Errorf("resubmit search: %w", err)
	}
	return nil
}

// Row is one fresh read of a result row's seat cells.
type Row struct {
	Index    int
	Standard string
	Waitlist string
}

func (r Row) Bookable() bool     { return strings.Contains(r.Standard, MarkerReserve) }
func (r Row) Waitlistable() bool { return strings.Contains(r.Waitlist, MarkerWaitlist) }

// ReadRow reads row i (1-indexed). A row that went stale mid-read counts as
// sold out for this read.
func (s *Site) ReadRow(ctx context.Context, i int, waitlist bool) (Row, error) {
	row := Row{Index: i}
	std, err := s.Driver.Text(ctx, cellSelector(i, colStandard))
	if errors.Is(err, browser.ErrStaleElement) {
		return soldOut(i), nil
	}
	if err != nil {
		return Row{}, fmt.Errorf("row %d standard seat: %w", i, err)
	}
	row.Standard = std

	if !waitlist {
		return row, nil
	}
	wl, err := s.Driver.Text(ctx, cellSelector(i, colWaitlist))
	if errors.Is(err, browser.ErrStaleElement) {
		return soldOut(i), nil
	}
	if err != nil {
		return Row{}, fmt.Errorf("row %d waitlist: %w", i, err)
	}
	row.Waitlist = wl
	return row, nil
}

func soldOut(i int) Row {
	return Row{Index: i, Standard: MarkerSoldOut, Waitlist: MarkerSoldOut}
}

// Book clicks row i's reservation link. It reports true when the page did not
// bounce to the "seat taken" notice; otherwise it navigates back to the
// results and reports false.
func (s *Site) Book(ctx context.Context, i int) (bool, error) {
	if err := browser.ClickWithFallback(ctx, s.Driver, linkSelector(i, colStandard)); err != nil {
		return false, fmt.Errorf("row %d reserve link: %w", i, err)
	}
	if err := sleep(ctx, s.BookSettle); err != nil {
		return false, err
	}
	failed, err := s.Driver.Exists(ctx, selBookingFailed)
	if err != nil {
		return false, fmt.Errorf("row %d booking result: %w", i, err)
	}
	if !failed {
		return true, nil
	}
	if err := s.Driver.Back(ctx); err != nil {
		return false, fmt.Errorf("row %d back to results: %w", i, err)
	}
	return false, nil
}

// Waitlist clicks row i's waitlist link.
func (s *Site) Waitlist(ctx context.Context, i int) error {
	if err := s.Driver.Click(ctx, linkSelector(i, colWaitlist)); err != nil {
		return fmt.Errorf("row %d waitlist link: %w", i, err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
