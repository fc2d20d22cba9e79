package cli

import (
	"bytes"
	"encoding/base64"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/srt-reserver/internal/domain/reservation"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func vaultEnv(t *testing.T) string {
	t.Helper()
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
	path := filepath.Join(t.TempDir(), "vault")
	t.Setenv("VAULT_HASH_KEY", key)
	t.Setenv("VAULT_BLOCK_KEY", key)
	t.Setenv("VAULT_PATH", path)
	return path
}

func TestStations(t *testing.T) {
	out, err := run(t, "", "stations")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Equal(t, reservation.Stations(), lines)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	require.Contains(t, out, "srtres dev")
}

func TestKeys(t *testing.T) {
	out, err := run(t, "", "keys")
	require.NoError(t, err)
	require.Contains(t, out, "export VAULT_HASH_KEY=")
	require.Contains(t, out, "export VAULT_BLOCK_KEY=")
}

func TestHashPasswordFromStdin(t *testing.T) {
	out, err := run(t, "letmein\n", "hash-password")
	require.NoError(t, err)
	require.Contains(t, out, "STATUS_PASSWORD_BCRYPT='$2a$")

	_, err = run(t, "\n", "hash-password")
	require.Error(t, err)
}

func TestCredsLifecycle(t *testing.T) {
	vaultEnv(t)

	out, err := run(t, "", "creds", "show")
	require.NoError(t, err)
	require.Contains(t, out, "vault is empty")

	_, err = run(t, "", "creds", "set")
	require.Error(t, err)

	_, err = run(t, "", "creds", "set", "--user", "1234567890", "--psw", "secret")
	require.NoError(t, err)
	_, err = run(t, "", "creds", "set", "--chat-id", "42")
	require.NoError(t, err)

	out, err = run(t, "", "creds", "show")
	require.NoError(t, err)
	require.Contains(t, out, "1234567890")
	require.Contains(t, out, "42")
	require.NotContains(t, out, "secret")

	_, err = run(t, "", "creds", "clear")
	require.NoError(t, err)
	out, err = run(t, "", "creds", "show")
	require.NoError(t, err)
	require.Contains(t, out, "vault is empty")
}

func TestCredsNeedKeys(t *testing.T) {
	t.Setenv("VAULT_HASH_KEY", "")
	t.Setenv("VAULT_BLOCK_KEY", "")
	_, err := run(t, "", "creds", "show")
	require.Error(t, err)
}

func TestReserveRejectsBadStationBeforeBrowser(t *testing.T) {
	_, err := run(t, "", "reserve", "--user", "u", "--psw", "p", "--dpt", "서울", "--arr", "부산", "--dt", "20240105", "--tm", "08")
	require.ErrorIs(t, err, reservation.ErrUnknownOrigin)
}

func TestReserveRejectsUnknownDriver(t *testing.T) {
	_, err := run(t, "", "reserve", "--driver", "selenium", "--dpt", "수서", "--arr", "부산", "--dt", "20240105", "--tm", "08")
	require.Error(t, err)
	require.Contains(t, err.Error(), "selenium")
}

func TestHistoryNeedsDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := run(t, "", "history")
	require.Error(t, err)
}

func TestHistoryListsRuns(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://"+filepath.Join(t.TempDir(), "runs.db"))
	out, err := run(t, "", "history")
	require.NoError(t, err)
	require.Contains(t, strings.ToUpper(out), "STATUS")
}
