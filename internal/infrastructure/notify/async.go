package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Async delivers through Next on background goroutines so the caller is
// never blocked by a slow chat endpoint. Notify always returns nil.
type Async struct {
	Next Notifier
	Log  *slog.Logger

	wg sync.WaitGroup
}

func (a *Async) Notify(ctx context.Context, text string) error {
	// keep delivering after the run context is cancelled
	ctx = context.WithoutCancel(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.Next.Notify(ctx, text); err != nil {
			a.log().Warn("notification not delivered", "err", err)
		}
	}()
	return nil
}

// Wait blocks until pending deliveries finish or ctx is done.
func (a *Async) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Async) log() *slog.Logger {
	if a.Log == nil {
		return slog.Default()
	}
	return a.Log
}
