// Package migrate applies the embedded run-history schema files in name
// order, once each, and remembers when each one landed.
package migrate

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"time"

	"github.com/example/srt-reserver/internal/db"
)

//go:embed *.sql
var fs embed.FS

// versions lists the embedded schema files, oldest first.
func versions() ([]string, error) {
	files, err := embedGlob("*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func embedGlob(pattern string) ([]string, error) {
	entries, err := fs.ReadDir(".")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if ok, _ := path.Match(pattern, e.Name()); ok && !e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// Up applies every schema file not yet recorded and returns the ones it
// applied in this call. An up-to-date database returns an empty slice.
func Up(ctx context.Context, d *db.DB) ([]string, error) {
	files, err := versions()
	if err != nil {
		return nil, err
	}

	if err := d.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    applied_at BIGINT NOT NULL
)`); err != nil {
		return nil, err
	}

	var applied []string
	for _, f := range files {
		var seen int
		if err := d.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version=$1`, f).Scan(&seen); err != nil {
			return applied, err
		}
		if seen > 0 {
			continue
		}

		b, err := fs.ReadFile(f)
		if err != nil {
			return applied, err
		}
		if err := d.Exec(ctx, string(b)); err != nil {
			return applied, fmt.Errorf("apply %s: %w", f, err)
		}
		if err := d.Exec(ctx, `INSERT INTO schema_migrations(version, applied_at) VALUES ($1, $2)`, f, time.Now().UnixMilli()); err != nil {
			return applied, err
		}
		slog.Info("applied run history migration", "version", f)
		applied = append(applied, f)
	}

	return applied, nil
}
