package usecases

import (
	"errors"
	"testing"

	"github.com/example/srt-reserver/internal/domain/user"
	"github.com/example/srt-reserver/internal/internaltypes"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	creds   *user.Credentials
	loadErr error
}

func (m *memStore) Load() (user.Credentials, error) {
	if m.loadErr != nil {
		return user.Credentials{}, m.loadErr
	}
	if m.creds == nil {
		return user.Credentials{}, internaltypes.ErrNotFound
	}
	return *m.creds, nil
}

func (m *memStore) Save(c user.Credentials) error {
	m.creds = &c
	return nil
}

func (m *memStore) Clear() error {
	m.creds = nil
	return nil
}

func TestResolveFillsFromVault(t *testing.T) {
	store := &memStore{creds: &user.Credentials{LoginID: "stored", Password: "pw", TelegramToken: "t", TelegramChatID: "c"}}
	got, err := CredentialsService{Store: store}.Resolve(user.Credentials{LoginID: "flag"})
	require.NoError(t, err)
	require.Equal(t, user.Credentials{LoginID: "flag", Password: "pw", TelegramToken: "t", TelegramChatID: "c"}, got)
}

func TestResolveWithoutVault(t *testing.T) {
	given := user.Credentials{LoginID: "a"}

	got, err := CredentialsService{}.Resolve(given)
	require.NoError(t, err)
	require.Equal(t, given, got)

	got, err = CredentialsService{Store: &memStore{}}.Resolve(given)
	require.NoError(t, err)
	require.Equal(t, given, got)

	boom := errors.New("bad keys")
	_, err = CredentialsService{Store: &memStore{loadErr: boom}}.Resolve(given)
	require.ErrorIs(t, err, boom)
}

func TestUpdateMergesOverStored(t *testing.T) {
	store := &memStore{creds: &user.Credentials{LoginID: "old", Password: "pw"}}
	svc := CredentialsService{Store: store}

	merged, err := svc.Update(user.Credentials{LoginID: "new", TelegramChatID: "42"})
	require.NoError(t, err)
	require.Equal(t, user.Credentials{LoginID: "new", Password: "pw", TelegramChatID: "42"}, merged)

	got, err := svc.Get()
	require.NoError(t, err)
	require.Equal(t, merged, got)

	require.NoError(t, svc.Clear())
	_, err = svc.Get()
	require.ErrorIs(t, err, internaltypes.ErrNotFound)
}

func TestPasswordHashing(t *testing.T) {
	_, err := HashPassword("")
	require.ErrorIs(t, err, ErrEmptyPassword)

	h, err := HashPassword("hunter2")
	require.NoError(t, err)
	require.True(t, VerifyPassword(string(h), "hunter2"))
	require.False(t, VerifyPassword(string(h), "hunter3"))
	require.False(t, VerifyPassword("", "hunter2"))
}
