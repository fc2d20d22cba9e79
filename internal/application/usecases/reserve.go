package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/srt-reserver/internal/application/poller"
	"github.com/example/srt-reserver/internal/domain/reservation"
	"github.com/example/srt-reserver/internal/domain/user"
	"github.com/example/srt-reserver/internal/infrastructure/notify"
	"github.com/example/srt-reserver/internal/internaltypes"
	"github.com/example/srt-reserver/internal/runs"
)

// RunStore persists run history. *runs.Repo satisfies it.
type RunStore interface {
	Create(ctx context.Context, r runs.Run) (string, error)
	RecordAttempt(ctx context.Context, runID string, row int, kind string, success bool) error
	SetRefreshes(ctx context.Context, runID string, n int) error
	Finish(ctx context.Context, runID string, status runs.Status, lastErr *string) error
}

const notifyFlushTimeout = 10 * time.Second

// Reserve is the end-to-end flow: validate, log in, search, poll until a
// seat is booked or waitlisted, and report.
type Reserve struct {
	Browser  Browser
	Interval poller.Interval
	Settle   poller.Interval

	// Notifier receives the start, success and failure messages. Delivery is
	// asynchronous; nil means no notifications.
	Notifier notify.Notifier
	// Runs is optional.
	Runs RunStore
	// OnStart is called once the request is valid, before the browser is
	// launched.
	OnStart func(reservation.Request, *reservation.Session)

	Log   *slog.Logger
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
}

// Execute returns nil once booked. Cancelling ctx stops polling and returns
// ctx.Err() after the browser has been closed, whatever error the browser
// reported on the way down.
func (u Reserve) Execute(ctx context.Context, q Query, creds user.Credentials) (reservation.Snapshot, error) {
	req, err := q.Request()
	if err != nil {
		return reservation.Snapshot{}, err
	}
	if !creds.HasLogin() {
		return reservation.Snapshot{}, internaltypes.ErrMissingCredentials
	}
	log := logger(u.Log).With("from", req.Origin(), "to", req.Destination(), "date", req.DateValue())

	session := reservation.NewSession(u.now())
	if u.OnStart != nil {
		u.OnStart(req, session)
	}

	next := u.Notifier
	if next == nil {
		next = notify.Nop{}
	}
	notifier := &notify.Async{Next: next, Log: log}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyFlushTimeout)
		defer cancel()
		if err := notifier.Wait(flushCtx); err != nil {
			log.Warn("pending notifications dropped", "err", err)
		}
	}()

	rec := u.startRun(ctx, req, log)
	_ = notifier.Notify(ctx, "SRT reservation started\n"+req.Summary())

	err = u.run(ctx, req, creds, session, rec, log)
	if err != nil && ctx.Err() != nil {
		// the browser may die with its own error once the signal lands
		err = ctx.Err()
	}
	u.finish(ctx, req, session, rec, notifier, err, log)
	return session.Snapshot(), err
}

func (u Reserve) run(ctx context.Context, req reservation.Request, creds user.Credentials, session *reservation.Session, rec *runRecorder, log *slog.Logger) error {
	drv, site, err := u.Browser.open(ctx, req, creds, log)
	if err != nil {
		return err
	}
	defer closeDriver(drv, log)

	interval, settle := u.Interval, u.Settle
	if interval == (poller.Interval{}) {
		interval = poller.DefaultInterval
	}
	if settle == (poller.Interval{}) {
		settle = poller.DefaultSettle
	}
	p := &poller.Poller{
		Site:     site,
		Request:  req,
		Session:  session,
		Interval: interval,
		Settle:   settle,
		Log:      log,
		Sleep:    u.Sleep,
		Now:      u.Now,
	}
	if rec != nil {
		p.Recorder = rec
	}
	return p.Run(ctx)
}

func (u Reserve) finish(ctx context.Context, req reservation.Request, session *reservation.Session, rec *runRecorder, notifier notify.Notifier, err error, log *slog.Logger) {
	ctx = context.WithoutCancel(ctx)
	var status runs.Status
	switch {
	case err == nil && session.Outcome() == reservation.OutcomeWaitlist:
		status = runs.StatusWaitlisted
		log.Info("waitlist request placed", "refreshes", session.Refreshes())
		_ = notifier.Notify(ctx, "SRT waitlist request placed\n"+req.Summary())
	case err == nil:
		status = runs.StatusBooked
		log.Info("reservation complete", "refreshes", session.Refreshes())
		_ = notifier.Notify(ctx, "SRT reservation succeeded\n"+req.Summary())
	case errors.Is(err, context.Canceled):
		status = runs.StatusInterrupted
		log.Info("stopped by user", "refreshes", session.Refreshes())
	default:
		status = runs.StatusFailed
		log.Error("reservation failed", "err", err)
		_ = notifier.Notify(ctx, fmt.Sprintf("SRT reservation stopped: %v\n%s", err, req.Summary()))
	}
	if rec != nil {
		rec.finish(ctx, session.Refreshes(), status, err)
	}
}

func (u Reserve) startRun(ctx context.Context, req reservation.Request, log *slog.Logger) *runRecorder {
	if u.Runs == nil {
		return nil
	}
	id, err := u.Runs.Create(ctx, runs.Run{
		Origin:      req.Origin(),
		Destination: req.Destination(),
		Date:        req.DateValue(),
		Hour:        req.Hour(),
		Trains:      req.Trains(),
		Waitlist:    req.Waitlist(),
		StartedAt:   u.now(),
	})
	if err != nil {
		log.Warn("run history unavailable", "err", err)
		return nil
	}
	log.Debug("recording run", "run", id)
	return &runRecorder{store: u.Runs, id: id, log: log}
}

func (u Reserve) now() time.Time {
	if u.Now == nil {
		return time.Now()
	}
	return u.Now()
}

// runRecorder forwards poller events to the run store, logging failures.
type runRecorder struct {
	store RunStore
	id    string
	log   *slog.Logger
}

func (r *runRecorder) Attempt(ctx context.Context, row int, kind poller.AttemptKind, ok bool) {
	if err := r.store.RecordAttempt(ctx, r.id, row, string(kind), ok); err != nil {
		r.log.Warn("record attempt", "run", r.id, "row", row, "err", err)
	}
}

func (r *runRecorder) Refresh(ctx context.Context, n int) {
	if err := r.store.SetRefreshes(ctx, r.id, n); err != nil {
		r.log.Warn("record refresh", "run", r.id, "err", err)
	}
}

func (r *runRecorder) finish(ctx context.Context, refreshes int, status runs.Status, err error) {
	r.Refresh(ctx, refreshes)
	var msg *string
	if err != nil && status == runs.StatusFailed {
		s := err.Error()
		msg = &s
	}
	if err := r.store.Finish(ctx, r.id, status, msg); err != nil {
		r.log.Warn("finish run", "run", r.id, "err", err)
	}
}
