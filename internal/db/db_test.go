package db

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	require.Equal(t, "SELECT a FROM t WHERE id=?1 AND b=?12", rebind("SELECT a FROM t WHERE id=$1 AND b=$12"))
	require.Equal(t, "SELECT 1", rebind("SELECT 1"))
}

func TestWrapNotFound(t *testing.T) {
	require.NoError(t, WrapNotFound(nil))
	require.ErrorIs(t, WrapNotFound(sql.ErrNoRows), ErrNotFound)
	require.ErrorIs(t, WrapNotFound(pgx.ErrNoRows), ErrNotFound)

	other := fmt.Errorf("boom")
	got := WrapNotFound(other)
	require.ErrorIs(t, got, other)
	require.False(t, IsNotFound(got))
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	_, err := Open(context.Background(), "mysql://localhost/x")
	require.Error(t, err)
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	d, err := Open(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.Ping(ctx))
	require.NoError(t, d.Exec(ctx, `CREATE TABLE kv (k TEXT PRIMARY KEY, v INTEGER NOT NULL)`))
	require.NoError(t, d.Exec(ctx, `INSERT INTO kv(k, v) VALUES ($1, $2)`, "a", 1))
	require.NoError(t, d.Exec(ctx, `INSERT INTO kv(k, v) VALUES ($1, $2)`, "b", 2))

	var v int
	require.NoError(t, d.QueryRow(ctx, `SELECT v FROM kv WHERE k=$1`, "b").Scan(&v))
	require.Equal(t, 2, v)

	err = d.QueryRow(ctx, `SELECT v FROM kv WHERE k=$1`, "zz").Scan(&v)
	require.True(t, IsNotFound(err))

	rows, err := d.Query(ctx, `SELECT k FROM kv ORDER BY k`)
	require.NoError(t, err)
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		require.NoError(t, rows.Scan(&k))
		keys = append(keys, k)
	}
	require.NoError(t, rows.Err())
	require.Equal(t, []string{"a", "b"}, keys)
}
