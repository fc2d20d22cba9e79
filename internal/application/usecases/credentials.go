package usecases

import (
	"errors"

	"github.com/example/srt-reserver/internal/domain/user"
	"github.com/example/srt-reserver/internal/internaltypes"
)

// CredentialStore is the encrypted local vault.
type CredentialStore interface {
	Load() (user.Credentials, error)
	Save(user.Credentials) error
	Clear() error
}

type CredentialsService struct {
	Store CredentialStore
}

// Resolve fills whatever the caller left empty from the vault. A missing
// vault (or none configured) is not an error.
func (s CredentialsService) Resolve(given user.Credentials) (user.Credentials, error) {
	if s.Store == nil || (given.HasLogin() && given.HasTelegram()) {
		return given, nil
	}
	stored, err := s.Store.Load()
	if errors.Is(err, internaltypes.ErrNotFound) {
		return given, nil
	}
	if err != nil {
		return given, err
	}
	return given.Merge(stored), nil
}

// Update merges c over the stored credentials and saves the result.
func (s CredentialsService) Update(c user.Credentials) (user.Credentials, error) {
	stored, err := s.Store.Load()
	if err != nil && !errors.Is(err, internaltypes.ErrNotFound) {
		return user.Credentials{}, err
	}
	merged := c.Merge(stored)
	if err := s.Store.Save(merged); err != nil {
		return user.Credentials{}, err
	}
	return merged, nil
}

func (s CredentialsService) Get() (user.Credentials, error) {
	return s.Store.Load()
}

func (s CredentialsService) Clear() error {
	return s.Store.Clear()
}
