package usecases

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/srt-reserver/internal/db"
	"github.com/example/srt-reserver/internal/domain/reservation"
	"github.com/example/srt-reserver/internal/domain/user"
	"github.com/example/srt-reserver/internal/infrastructure/browser"
	"github.com/example/srt-reserver/internal/infrastructure/browser/browsertest"
	"github.com/example/srt-reserver/internal/infrastructure/srt"
	"github.com/example/srt-reserver/internal/internaltypes"
	"github.com/example/srt-reserver/internal/migrate"
	"github.com/example/srt-reserver/internal/runs"
	"github.com/stretchr/testify/require"
)

const greeting = "홍길동 고객님 환영합니다"

var creds = user.Credentials{LoginID: "1234567890", Password: "secret"}

func query() Query {
	return Query{Origin: "수서", Destination: "부산", Date: "20240105", Hour: "08", Trains: 2}
}

type launcher struct {
	mu     sync.Mutex
	calls  int
	driver *browsertest.Fake
	err    error
}

func (l *launcher) Launch(ctx context.Context, opts browser.Options) (browser.Driver, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.driver, nil
}

// page answers Text calls: seat cells from cells, anything else with header.
func page(d *browsertest.Fake, header string, cells map[string]string) {
	d.OnText = func(sel string) (string, error) {
		if v, ok := cells[sel]; ok {
			return v, nil
		}
		if strings.Contains(sel, "td:nth-child") {
			return srt.MarkerSoldOut, nil
		}
		return header, nil
	}
}

type messages struct {
	mu   sync.Mutex
	sent []string
}

func (m *messages) Notify(ctx context.Context, text string) error {
	m.mu.Lock()
	m.sent = append(m.sent, text)
	m.mu.Unlock()
	return nil
}

func (m *messages) contains(sub string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sent {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func newRuns(t *testing.T) *runs.Repo {
	t.Helper()
	ctx := context.Background()
	d, err := db.Open(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(d.Close)
	_, err = migrate.Up(ctx, d)
	require.NoError(t, err)
	return runs.NewRepo(d)
}

func latestRun(t *testing.T, repo *runs.Repo) runs.Run {
	t.Helper()
	list, err := repo.ListRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	return list[0]
}

func noSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

func newReserve(l *launcher, n *messages, repo *runs.Repo) Reserve {
	u := Reserve{
		Browser:  Browser{Launch: l.Launch},
		Notifier: n,
		Sleep:    noSleep,
	}
	if repo != nil {
		u.Runs = repo
	}
	return u
}

func TestReserveValidationAcquiresNoBrowser(t *testing.T) {
	l := &launcher{driver: browsertest.New()}
	u := newReserve(l, &messages{}, nil)

	q := query()
	q.Origin = "서울"
	_, err := u.Execute(context.Background(), q, creds)
	require.ErrorIs(t, err, reservation.ErrUnknownOrigin)

	q = query()
	q.Date = "2024-01-05"
	_, err = u.Execute(context.Background(), q, creds)
	require.ErrorIs(t, err, reservation.ErrDateFormat)

	_, err = u.Execute(context.Background(), query(), user.Credentials{LoginID: "only-id"})
	require.ErrorIs(t, err, internaltypes.ErrMissingCredentials)

	require.Zero(t, l.calls)
}

func TestReserveBooksAndRecords(t *testing.T) {
	d := browsertest.New()
	page(d, greeting, map[string]string{srt.StandardCell(2): srt.MarkerReserve})
	l := &launcher{driver: d}
	n := &messages{}
	repo := newRuns(t)

	snap, err := newReserve(l, n, repo).Execute(context.Background(), query(), creds)
	require.NoError(t, err)
	require.True(t, snap.Booked)
	require.Equal(t, "booked", string(snap.Outcome))
	require.Equal(t, 0, snap.Refreshes)

	require.Equal(t, 1, l.calls)
	require.True(t, d.Closed)
	require.Equal(t, 1, d.Count("click "+srt.StandardLink(2)))

	require.True(t, n.contains("started"))
	require.True(t, n.contains("succeeded"))

	run := latestRun(t, repo)
	require.Equal(t, runs.StatusBooked, run.Status)
	require.NotNil(t, run.FinishedAt)
	attempts, err := repo.Attempts(context.Background(), run.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	require.Equal(t, 2, attempts[0].Row)
	require.True(t, attempts[0].Success)
}

func TestReserveWaitlist(t *testing.T) {
	d := browsertest.New()
	page(d, greeting, map[string]string{srt.WaitlistCell(1): srt.MarkerWaitlist})
	l := &launcher{driver: d}
	n := &messages{}
	repo := newRuns(t)

	q := query()
	q.Waitlist = true
	snap, err := newReserve(l, n, repo).Execute(context.Background(), q, creds)
	require.NoError(t, err)
	require.Equal(t, "waitlisted", string(snap.Outcome))
	require.True(t, n.contains("waitlist"))
	require.Equal(t, runs.StatusWaitlisted, latestRun(t, repo).Status)
}

func TestReserveLoginNotVerified(t *testing.T) {
	d := browsertest.New()
	page(d, "로그인", map[string]string{srt.StandardCell(1): srt.MarkerReserve})
	l := &launcher{driver: d}
	n := &messages{}
	repo := newRuns(t)

	_, err := newReserve(l, n, repo).Execute(context.Background(), query(), creds)
	require.ErrorIs(t, err, internaltypes.ErrLoginFailed)
	require.True(t, d.Closed)
	require.Empty(t, d.Filter("navigate "+srt.DefaultSearchURL))
	require.True(t, n.contains("stopped"))

	run := latestRun(t, repo)
	require.Equal(t, runs.StatusFailed, run.Status)
	require.NotNil(t, run.LastError)
}

func TestReserveLoginNotVerifiedAllowed(t *testing.T) {
	d := browsertest.New()
	page(d, "로그인", map[string]string{srt.StandardCell(1): srt.MarkerReserve})
	l := &launcher{driver: d}

	u := newReserve(l, &messages{}, nil)
	u.Browser.AllowUnverifiedLogin = true
	snap, err := u.Execute(context.Background(), query(), creds)
	require.NoError(t, err)
	require.True(t, snap.Booked)
}

func TestReserveInterruptReleasesBrowser(t *testing.T) {
	d := browsertest.New()
	page(d, greeting, nil)
	l := &launcher{driver: d}
	n := &messages{}
	repo := newRuns(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sleeps := 0
	u := newReserve(l, n, repo)
	u.Sleep = func(ctx context.Context, _ time.Duration) error {
		sleeps++
		// two sleeps per cycle: interval, then settle
		if sleeps == 6 {
			cancel()
		}
		return ctx.Err()
	}

	snap, err := u.Execute(ctx, query(), creds)
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, snap.Booked)
	require.Equal(t, 3, snap.Refreshes)
	require.True(t, d.Closed)
	require.False(t, n.contains("stopped"))

	run := latestRun(t, repo)
	require.Equal(t, runs.StatusInterrupted, run.Status)
	require.Equal(t, 3, run.Refreshes)
	require.Nil(t, run.LastError)
}

func TestReserveLaunchFailure(t *testing.T) {
	boom := errors.New("no chromium")
	l := &launcher{err: boom}
	n := &messages{}

	_, err := newReserve(l, n, nil).Execute(context.Background(), query(), creds)
	require.ErrorIs(t, err, boom)
	require.True(t, n.contains("no chromium"))
}

func TestReserveSearchFieldMissing(t *testing.T) {
	d := browsertest.New()
	page(d, greeting, nil)
	d.WaitErr["#dptDt"] = browser.ErrTimeout
	l := &launcher{driver: d}

	_, err := newReserve(l, &messages{}, nil).Execute(context.Background(), query(), creds)
	require.ErrorIs(t, err, browser.ErrTimeout)
	require.Contains(t, err.Error(), "date field")
	require.True(t, d.Closed)
}

func TestReserveOnStartSeesSession(t *testing.T) {
	d := browsertest.New()
	page(d, greeting, map[string]string{srt.StandardCell(1): srt.MarkerReserve})
	l := &launcher{driver: d}

	var started bool
	u := newReserve(l, &messages{}, nil)
	u.OnStart = func(req reservation.Request, s *reservation.Session) {
		started = true
		require.Equal(t, "수서", req.Origin())
		require.False(t, s.Booked())
	}
	_, err := u.Execute(context.Background(), query(), creds)
	require.NoError(t, err)
	require.True(t, started)
}

func TestReserveInterruptWhileBrowserDies(t *testing.T) {
	d := browsertest.New()
	l := &launcher{driver: d}
	n := &messages{}
	repo := newRuns(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.OnText = func(sel string) (string, error) {
		if strings.Contains(sel, "td:nth-child") {
			// the signal reaches the browser process too
			cancel()
			return "", errors.New("playwright: target closed")
		}
		return greeting, nil
	}

	_, err := newReserve(l, n, repo).Execute(ctx, query(), creds)
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, d.Closed)
	require.False(t, n.contains("stopped"))

	run := latestRun(t, repo)
	require.Equal(t, runs.StatusInterrupted, run.Status)
	require.Nil(t, run.LastError)
}

func TestReserveRecordsRequestFields(t *testing.T) {
	d := browsertest.New()
	page(d, greeting, map[string]string{srt.StandardCell(1): srt.MarkerReserve})
	repo := newRuns(t)

	_, err := newReserve(&launcher{driver: d}, &messages{}, repo).Execute(context.Background(), query(), creds)
	require.NoError(t, err)

	run := latestRun(t, repo)
	require.Equal(t, "20240105", run.Date)
	require.Equal(t, "08", run.Hour)
	require.Equal(t, "부산", run.Destination)
}
