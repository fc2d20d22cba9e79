package usecases

import (
	"context"
	"log/slog"

	"github.com/example/srt-reserver/internal/domain/user"
	"github.com/example/srt-reserver/internal/infrastructure/srt"
	"github.com/example/srt-reserver/internal/internaltypes"
)

// Search runs a query once and returns the parsed result rows, capped at the
// requested train count.
type Search struct {
	Browser Browser
	Log     *slog.Logger
}

func (u Search) Execute(ctx context.Context, q Query, creds user.Credentials) ([]srt.Train, error) {
	req, err := q.Request()
	if err != nil {
		return nil, err
	}
	if !creds.HasLogin() {
		return nil, internaltypes.ErrMissingCredentials
	}
	log := logger(u.Log)

	drv, site, err := u.Browser.open(ctx, req, creds, log)
	if err != nil {
		return nil, err
	}
	defer closeDriver(drv, log)

	if err := site.WaitResults(ctx); err != nil {
		return nil, err
	}
	trains, err := site.Results(ctx)
	if err != nil {
		return nil, err
	}
	if len(trains) > req.Trains() {
		trains = trains[:req.Trains()]
	}
	return trains, nil
}
