// Package auth runs the Spotify authorization code flow for the CLI and
// keeps the resulting token on disk.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"golang.org/x/oauth2"
)

const (
	configDirName = ".moodtune"
	tokenFileName = "spotify_token.json"
)

// DefaultTokenPath returns ~/.moodtune/spotify_token.json.
func DefaultTokenPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, configDirName, tokenFileName), nil
}

// TokenCache stores one token file per machine. A token saved for another
// client ID reads as missing, so switching Spotify apps forces a new login.
type TokenCache struct {
	path     string
	clientID string
}

type cachedToken struct {
	ClientID string        `json:"client_id"`
	SavedAt  time.Time     `json:"saved_at"`
	Token    *oauth2.Token `json:"token"`
}

// NewTokenCache returns a cache at path for tokens issued to clientID.
func NewTokenCache(path, clientID string) *TokenCache {
	return &TokenCache{path: path, clientID: clientID}
}

// Path returns the token file location.
func (c *TokenCache) Path() string {
	return c.path
}

// Load returns the cached token, or nil when there is none for this client.
func (c *TokenCache) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.path, err)
	}

	var ct cachedToken
	if err := json.Unmarshal(data, &ct); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", c.path, err)
	}
	if ct.ClientID != c.clientID || ct.Token == nil {
		return nil, nil
	}
	return ct.Token, nil
}

// Save replaces the token file. The file is written next to the old one and
// renamed into place so a crash never leaves half a token behind.
func (c *TokenCache) Save(tok *oauth2.Token) error {
	if tok == nil {
		return errors.New("no token to save")
	}
	data, err := json.MarshalIndent(cachedToken{
		ClientID: c.clientID,
		SavedAt:  time.Now().UTC(),
		Token:    tok,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("creating temp token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("replacing %s: %w", c.path, err)
	}
	return nil
}

// Delete removes the token file. A missing file is not an error.
func (c *TokenCache) Delete() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", c.path, err)
	}
	return nil
}
