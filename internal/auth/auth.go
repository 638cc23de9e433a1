// Package auth manages the stored API credential. Tokens are acquired
// out of band (the service's developer console) and pasted in once;
// this package keeps them on disk and hands them to the remote client.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"tickdeck/internal/config"
)

// ErrNotAuthenticated indicates no stored credential.
var ErrNotAuthenticated = errors.New("not authenticated")

// Manager handles credential storage operations.
type Manager struct {
	path  string
	mu    sync.RWMutex
	token *oauth2.Token
}

// NewManager creates a manager over the token file in the
// configuration directory. Existing credentials are loaded eagerly; a
// missing or unreadable file just means not authenticated.
func NewManager(cfg *config.Config) (*Manager, error) {
	if err := cfg.EnsureDir(); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	m := &Manager{path: cfg.TokenPath()}
	_ = m.load()
	return m, nil
}

// IsAuthenticated checks whether a usable credential is stored. A
// token with a known expiry is checked against it with a 5 minute
// buffer; a token without one is assumed long-lived.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.token == nil || m.token.AccessToken == "" {
		return false
	}
	if m.token.Expiry.IsZero() {
		return true
	}
	return time.Now().Before(m.token.Expiry.Add(-5 * time.Minute))
}

// Token returns the stored credential.
func (m *Manager) Token() (*oauth2.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.token == nil || m.token.AccessToken == "" {
		return nil, ErrNotAuthenticated
	}
	t := *m.token
	return &t, nil
}

// Expiry returns the stored token's expiry, zero when unknown.
func (m *Manager) Expiry() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.token == nil {
		return time.Time{}
	}
	return m.token.Expiry
}

// Save stores a new credential, replacing any previous one.
func (m *Manager) Save(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return errors.New("empty access token")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	m.token = token
	return nil
}

// Clear removes the stored credential. Clearing when none is stored is
// not an error.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = nil
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return fmt.Errorf("invalid token file %s: %w", m.path, err)
	}
	m.mu.Lock()
	m.token = &token
	m.mu.Unlock()
	return nil
}
