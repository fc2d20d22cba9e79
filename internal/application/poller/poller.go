// Package poller runs the availability loop: scan the first N result rows,
// try to book or waitlist, and resubmit the search until something succeeds
// or the context is cancelled.
package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/example/srt-reserver/internal/domain/reservation"
	"github.com/example/srt-reserver/internal/infrastructure/srt"
)

// Site is the part of the booking site the poller drives.
type Site interface {
	ReadRow(ctx context.Context, i int, waitlist bool) (srt.Row, error)
	Book(ctx context.Context, i int) (bool, error)
	Waitlist(ctx context.Context, i int) error
	Resubmit(ctx context.Context) error
}

type AttemptKind string

const (
	AttemptBook     AttemptKind = "book"
	AttemptWaitlist AttemptKind = "waitlist"
)

// Recorder observes attempts and refreshes. Implementations must not block
// for long; errors are theirs to log.
type Recorder interface {
	Attempt(ctx context.Context, row int, kind AttemptKind, ok bool)
	Refresh(ctx context.Context, n int)
}

// Interval is a jitter band; every wait is drawn uniformly from [Min, Max].
type Interval struct {
	Min time.Duration
	Max time.Duration
}

var (
	DefaultInterval = Interval{Min: 2 * time.Second, Max: 4 * time.Second}
	DefaultSettle   = Interval{Min: 500 * time.Millisecond, Max: 2 * time.Second}
)

// BackOff returns a never-stopping backoff.BackOff yielding jittered waits
// inside the band.
func (i Interval) BackOff() backoff.BackOff {
	lo, hi := i.Min, i.Max
	if hi < lo {
		lo, hi = hi, lo
	}
	mid := (lo + hi) / 2
	factor := 0.0
	if lo+hi > 0 {
		factor = float64(hi-lo) / float64(hi+lo)
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval:     mid,
		RandomizationFactor: factor,
		Multiplier:          1,
		MaxInterval:         hi,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	return b
}

type Poller struct {
	Site     Site
	Request  reservation.Request
	Session  *reservation.Session
	Interval Interval
	Settle   Interval
	Recorder Recorder
	Log      *slog.Logger

	// Sleep and Now default to real time; tests replace them.
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
}

// Run polls until the session is booked (nil) or ctx is done (ctx.Err()).
// There is no attempt limit. Any error other than the per-row recoveries in
// Site is returned.
func (p *Poller) Run(ctx context.Context) error {
	delay := p.Interval.BackOff()
	settle := p.Settle.BackOff()
	log := p.log()

	for {
		booked, err := p.cycle(ctx)
		if err != nil {
			return err
		}
		if booked {
			return nil
		}

		if err := p.sleep(ctx, delay.NextBackOff()); err != nil {
			return err
		}
		if err := p.Site.Resubmit(ctx); err != nil {
			return err
		}
		n := p.Session.Refreshed()
		log.Info("refreshed search results", "refreshes", n)
		if p.Recorder != nil {
			p.Recorder.Refresh(ctx, n)
		}
		if err := p.sleep(ctx, settle.NextBackOff()); err != nil {
			return err
		}
	}
}

func (p *Poller) cycle(ctx context.Context) (bool, error) {
	log := p.log()
	waitlist := p.Request.Waitlist()

	for i := 1; i <= p.Request.Trains(); i++ {
		row, err := p.Site.ReadRow(ctx, i, waitlist)
		if err != nil {
			return false, err
		}
		log.Debug("row", "row", i, "standard", row.Standard, "waitlist", row.Waitlist)

		if row.Bookable() {
			log.Info("seat available, reserving", "row", i)
			ok, err := p.Site.Book(ctx, i)
			if err != nil {
				return false, err
			}
			p.record(ctx, i, AttemptBook, ok)
			if ok {
				p.Session.MarkBooked(reservation.OutcomeBooked, p.now())
				log.Info("reservation succeeded", "row", i)
				return true, nil
			}
			log.Info("seat already taken, searching again", "row", i)
		}

		if waitlist && row.Waitlistable() {
			if err := p.Site.Waitlist(ctx, i); err != nil {
				return false, err
			}
			p.record(ctx, i, AttemptWaitlist, true)
			p.Session.MarkBooked(reservation.OutcomeWaitlist, p.now())
			log.Info("joined waitlist", "row", i)
			return true, nil
		}
	}
	return false, nil
}

func (p *Poller) record(ctx context.Context, row int, kind AttemptKind, ok bool) {
	if p.Recorder != nil {
		p.Recorder.Attempt(ctx, row, kind, ok)
	}
}

func (p *Poller) log() *slog.Logger {
	if p.Log == nil {
		return slog.Default()
	}
	return p.Log
}

func (p *Poller) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func (p *Poller) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
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
