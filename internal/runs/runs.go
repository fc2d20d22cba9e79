// Package runs stores the history of reservation runs and their booking
// attempts.
package runs

import (
	"context"
	"fmt"
	"time"

	"github.com/example/srt-reserver/internal/db"
	"github.com/google/uuid"
)

type Status string

const (
	StatusPolling     Status = "polling"
	StatusBooked      Status = "booked"
	StatusWaitlisted  Status = "waitlisted"
	StatusInterrupted Status = "interrupted"
	StatusFailed      Status = "failed"
)

type Run struct {
	ID          string
	Origin      string
	Destination string
	Date        string
	Hour        string
	Trains      int
	Waitlist    bool

	Status    Status
	Refreshes int
	LastError *string

	StartedAt  time.Time
	FinishedAt *time.Time
}

type Attempt struct {
	RunID       string
	Row         int
	Kind        string
	Success     bool
	AttemptedAt time.Time
}

func (r Run) Validate() error {
	if r.Origin == "" || r.Destination == "" {
		return fmt.Errorf("origin and destination required")
	}
	if r.Date == "" || r.Hour == "" {
		return fmt.Errorf("date and hour required")
	}
	if r.Trains < 1 {
		return fmt.Errorf("trains must be >= 1")
	}
	return nil
}

type Repo struct {
	db  *db.DB
	now func() time.Time
}

func NewRepo(d *db.DB) *Repo { return &Repo{db: d, now: time.Now} }

// Create inserts r in the polling state and returns its generated id.
func (r *Repo) Create(ctx context.Context, run Run) (string, error) {
	if err := run.Validate(); err != nil {
		return "", err
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = r.now()
	}
	id := uuid.NewString()
	err := r.db.Exec(ctx, `
INSERT INTO runs(id,origin,destination,travel_date,travel_hour,trains,waitlist,status,refreshes,started_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,0,$9)`,
		id, run.Origin, run.Destination, run.Date, run.Hour, run.Trains, run.Waitlist, string(StatusPolling), run.StartedAt.UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	return id, nil
}

func (r *Repo) RecordAttempt(ctx context.Context, runID string, row int, kind string, success bool) error {
	return r.db.Exec(ctx, `INSERT INTO run_attempts(run_id,train_row,kind,success,attempted_at) VALUES ($1,$2,$3,$4,$5)`,
		runID, row, kind, success, r.now().UnixMilli())
}

func (r *Repo) SetRefreshes(ctx context.Context, runID string, n int) error {
	return r.db.Exec(ctx, `UPDATE runs SET refreshes=$2 WHERE id=$1`, runID, n)
}

func (r *Repo) Finish(ctx context.Context, runID string, status Status, lastErr *string) error {
	return r.db.Exec(ctx, `UPDATE runs SET status=$2, last_error=$3, finished_at=$4 WHERE id=$1`,
		runID, string(status), lastErr, r.now().UnixMilli())
}

const runColumns = `id,origin,destination,travel_date,travel_hour,trains,waitlist,status,refreshes,last_error,started_at,finished_at`

func (r *Repo) Get(ctx context.Context, id string) (Run, error) {
	run, err := scanRun(r.db.QueryRow(ctx, `SELECT `+runColumns+` FROM runs WHERE id=$1`, id))
	if err != nil {
		return Run{}, db.WrapNotFound(err)
	}
	return run, nil
}

// ListRecent returns up to limit runs, newest first.
func (r *Repo) ListRecent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := r.db.Query(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (r *Repo) Attempts(ctx context.Context, runID string) ([]Attempt, error) {
	rows, err := r.db.Query(ctx, `
SELECT run_id,train_row,kind,success,attempted_at
FROM run_attempts
WHERE run_id=$1
ORDER BY attempted_at ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		var at int64
		if err := rows.Scan(&a.RunID, &a.Row, &a.Kind, &a.Success, &at); err != nil {
			return nil, err
		}
		a.AttemptedAt = time.UnixMilli(at)
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanRun(row db.Row) (Run, error) {
	var run Run
	var status string
	var started int64
	var finished *int64
	if err := row.Scan(
		&run.ID, &run.Origin, &run.Destination, &run.Date, &run.Hour, &run.Trains, &run.Waitlist,
		&status, &run.Refreshes, &run.LastError, &started, &finished,
	); err != nil {
		return Run{}, err
	}
	run.Status = Status(status)
	run.StartedAt = time.UnixMilli(started)
	if finished != nil {
		t := time.UnixMilli(*finished)
		run.FinishedAt = &t
	}
	return run, nil
}
