// Package vault keeps the user's credentials in a local file, authenticated
// and encrypted with securecookie.
package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/srt-reserver/internal/domain/user"
	"github.com/example/srt-reserver/internal/internaltypes"
	"github.com/gorilla/securecookie"
)

const name = "srtres-credentials"

type Vault struct {
	path string
	sc   *securecookie.SecureCookie
}

// New returns a vault stored at path. hashKey must be 32 or 64 bytes;
// blockKey 16, 24 or 32 bytes.
func New(path string, hashKey, blockKey []byte) (*Vault, error) {
	if len(hashKey) == 0 || len(blockKey) == 0 {
		return nil, errors.New("vault: hash and block keys are required (run `srtres keys`)")
	}
	sc := securecookie.New(hashKey, blockKey)
	// stored once and read for months; no expiry or size cap
	sc.MaxAge(0)
	sc.MaxLength(0)
	sc.SetSerializer(securecookie.JSONEncoder{})
	return &Vault{path: path, sc: sc}, nil
}

func (v *Vault) Path() string { return v.path }

func (v *Vault) Load() (user.Credentials, error) {
	b, err := os.ReadFile(v.path)
	if errors.Is(err, os.ErrNotExist) {
		return user.Credentials{}, internaltypes.ErrNotFound
	}
	if err != nil {
		return user.Credentials{}, err
	}
	var c user.Credentials
	if err := v.sc.Decode(name, strings.TrimSpace(string(b)), &c); err != nil {
		return user.Credentials{}, fmt.Errorf("vault: decode %s: %w", v.path, err)
	}
	return c, nil
}

func (v *Vault) Save(c user.Credentials) error {
	encoded, err := v.sc.Encode(name, c)
	if err != nil {
		return fmt.Errorf("vault: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(v.path), 0o700); err != nil {
		return err
	}
	tmp := v.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(encoded+"\n"), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, v.path)
}

func (v *Vault) Clear() error {
	err := os.Remove(v.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// GenerateKeys returns a fresh hash key and block key.
func GenerateKeys() (hashKey, blockKey []byte) {
	return securecookie.GenerateRandomKey(32), securecookie.GenerateRandomKey(32)
}
