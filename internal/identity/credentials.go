package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const credentialFile = "credentials.json"

// credential is the provider-owned sign-in state: the refresh token survives
// restarts, the ID token is a cache.
type credential struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	IDToken      string    `json:"idToken"`
	RefreshToken string    `json:"refreshToken"`
	Expiry       time.Time `json:"expiry"`
}

type credentialStore struct {
	path string
	// mu serializes writers; sign-in and token refresh may save concurrently.
	mu sync.Mutex
}

func newCredentialStore(dir string) *credentialStore {
	if dir == "" {
		return &credentialStore{}
	}
	return &credentialStore{path: filepath.Join(dir, credentialFile)}
}

func (s *credentialStore) load() (*credential, error) {
	if s.path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var c credential
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decode credentials: %w", err)
	}
	if c.UID == "" || c.RefreshToken == "" {
		return nil, nil
	}
	return &c, nil
}

func (s *credentialStore) save(c *credential) error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := replaceFile(s.path, b); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// replaceFile writes b to a private temp file next to path and renames it
// into place. The temp file is created with mode 0600.
func replaceFile(path string, b []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (s *credentialStore) remove() error {
	if s.path == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
