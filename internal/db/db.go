package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/example/srt-reserver/internal/internaltypes"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"
)

// DB runs the same SQL against either a postgres pool or a local sqlite
// file. Statements use postgres-style $N placeholders.
type DB struct {
	pool *pgxpool.Pool
	sql  *sql.DB
}

// Open picks the backend from the URL scheme: postgres:// and postgresql://
// go to pgx, sqlite://<path> and file: go to modernc sqlite.
func Open(ctx context.Context, databaseURL string) (*DB, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return openPostgres(ctx, databaseURL)
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return openSQLite(ctx, strings.TrimPrefix(databaseURL, "sqlite://"))
	case strings.HasPrefix(databaseURL, "file:"):
		return openSQLite(ctx, databaseURL)
	default:
		return nil, fmt.Errorf("db: unsupported database url %q", databaseURL)
	}
}

func openPostgres(ctx context.Context, databaseURL string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnLifetime = 5 * time.Minute
	cfg.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &DB{pool: pool}, nil
}

func openSQLite(ctx context.Context, dsn string) (*DB, error) {
	if dsn == "" {
		return nil, errors.New("db: empty sqlite path")
	}
	s, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one writer; also keeps :memory: on a single shared connection
	s.SetMaxOpenConns(1)
	if err := s.PingContext(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return &DB{sql: s}, nil
}

func (d *DB) Close() {
	if d.pool != nil {
		d.pool.Close()
		return
	}
	d.sql.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if d.pool != nil {
		return d.pool.Ping(ctx)
	}
	return d.sql.PingContext(ctx)
}

func (d *DB) Exec(ctx context.Context, query string, args ...any) error {
	if d.pool != nil {
		_, err := d.pool.Exec(ctx, query, args...)
		return err
	}
	_, err := d.sql.ExecContext(ctx, rebind(query), args...)
	return err
}

func (d *DB) QueryRow(ctx context.Context, query string, args ...any) Row {
	if d.pool != nil {
		return d.pool.QueryRow(ctx, query, args...)
	}
	return d.sql.QueryRowContext(ctx, rebind(query), args...)
}

func (d *DB) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	if d.pool != nil {
		return d.pool.Query(ctx, query, args...)
	}
	rows, err := d.sql.QueryContext(ctx, rebind(query), args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{rows}, nil
}

type Row interface {
	Scan(dest ...any) error
}

type Rows interface {
	Close()
	Err() error
	Next() bool
	Scan(dest ...any) error
}

type sqlRows struct{ *sql.Rows }

func (r sqlRows) Close() { r.Rows.Close() }

var placeholder = regexp.MustCompile(`\$(\d+)`)

// rebind turns $N into sqlite's ?N.
func rebind(query string) string {
	return placeholder.ReplaceAllString(query, "?$1")
}

var ErrNotFound = internaltypes.ErrNotFound

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

func WrapNotFound(err error) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) {
		return ErrNotFound
	}
	return fmt.Errorf("db: %w", err)
}
