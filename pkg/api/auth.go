// Package api talks to a remote coordinator: authentication, application
// publishing and experiment submission over its JSON HTTP interface.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const authFile = "qnerc"

// DefaultHost is the coordinator used when no host is given explicitly. It
// can be overridden with the QNE_URL environment variable.
const DefaultHost = "https://api.quantum-network.com"

// ErrNotLoggedIn is returned when an operation needs a stored token and none
// exists for the host.
var ErrNotLoggedIn = errors.New("not logged in")

// account is one stored login: the refresh token plus the credentials used
// to obtain it.
type account struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthStore persists login tokens per host in the qnerc file under the
// config directory. One login is active at a time.
type AuthStore struct {
	file string
}

// NewAuthStore opens the token store under dir, creating an empty store on
// first use.
func NewAuthStore(dir string) (*AuthStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}
	s := &AuthStore{file: filepath.Join(dir, authFile)}

	if _, err := os.Stat(s.file); os.IsNotExist(err) {
		if err := s.write(map[string]account{}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ActiveHost returns the host of the stored login, or the default host when
// nothing is stored.
func (s *AuthStore) ActiveHost() string {
	accounts, err := s.read()
	if err == nil {
		for host := range accounts {
			return host
		}
	}
	if host := os.Getenv("QNE_URL"); host != "" {
		return host
	}
	return DefaultHost
}

// StoreLogin records a login for a host, replacing any previous login.
func (s *AuthStore) StoreLogin(host, token, username, password string) error {
	return s.write(map[string]account{
		host: {Token: token, Username: username, Password: password},
	})
}

// Token returns the stored token for a host.
func (s *AuthStore) Token(host string) (string, error) {
	accounts, err := s.read()
	if err != nil {
		return "", err
	}
	entry, ok := accounts[host]
	if !ok || entry.Token == "" {
		return "", fmt.Errorf("%w: %s", ErrNotLoggedIn, host)
	}
	return entry.Token, nil
}

// SetToken replaces the token of an existing login, keeping credentials.
func (s *AuthStore) SetToken(host, token string) error {
	accounts, err := s.read()
	if err != nil {
		return err
	}
	entry, ok := accounts[host]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotLoggedIn, host)
	}
	entry.Token = token
	accounts[host] = entry
	return s.write(accounts)
}

// Credentials returns the stored username and password for a host.
func (s *AuthStore) Credentials(host string) (username, password string, err error) {
	accounts, err := s.read()
	if err != nil {
		return "", "", err
	}
	entry, ok := accounts[host]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrNotLoggedIn, host)
	}
	return entry.Username, entry.Password, nil
}

// DeleteLogin removes the login for a host, case insensitively.
func (s *AuthStore) DeleteLogin(host string) error {
	accounts, err := s.read()
	if err != nil {
		return err
	}
	for stored := range accounts {
		if strings.EqualFold(stored, host) {
			delete(accounts, stored)
			return s.write(accounts)
		}
	}
	return nil
}

func (s *AuthStore) read() (map[string]account, error) {
	data, err := os.ReadFile(s.file)
	if err != nil {
		return nil, fmt.Errorf("reading auth store: %w", err)
	}
	accounts := make(map[string]account)
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("parsing auth store: %w", err)
	}
	return accounts, nil
}

func (s *AuthStore) write(accounts map[string]account) error {
	data, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding auth store: %w", err)
	}
	if err := os.WriteFile(s.file, data, 0o600); err != nil {
		return fmt.Errorf("writing auth store: %w", err)
	}
	return nil
}
