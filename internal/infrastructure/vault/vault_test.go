package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/example/srt-reserver/internal/domain/user"
	"github.com/example/srt-reserver/internal/internaltypes"
	"github.com/stretchr/testify/require"
)

func TestVaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "vault")
	hashKey, blockKey := GenerateKeys()
	v, err := New(path, hashKey, blockKey)
	require.NoError(t, err)

	_, err = v.Load()
	require.ErrorIs(t, err, internaltypes.ErrNotFound)

	creds := user.Credentials{LoginID: "1234567890", Password: "pw", TelegramToken: "123:abc", TelegramChatID: "42"}
	require.NoError(t, v.Save(creds))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "1234567890")

	got, err := v.Load()
	require.NoError(t, err)
	require.Equal(t, creds, got)

	require.NoError(t, v.Clear())
	require.NoError(t, v.Clear())
	_, err = v.Load()
	require.ErrorIs(t, err, internaltypes.ErrNotFound)
}

func TestVaultWrongKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault")
	h1, b1 := GenerateKeys()
	v1, err := New(path, h1, b1)
	require.NoError(t, err)
	require.NoError(t, v1.Save(user.Credentials{LoginID: "a", Password: "b"}))

	h2, b2 := GenerateKeys()
	v2, err := New(path, h2, b2)
	require.NoError(t, err)
	_, err = v2.Load()
	require.Error(t, err)
	require.NotErrorIs(t, err, internaltypes.ErrNotFound)
}

func TestVaultRequiresKeys(t *testing.T) {
	_, err := New("x", nil, nil)
	require.Error(t, err)
}
