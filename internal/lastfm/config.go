// Package lastfm provides Last.fm API integration for fetching track tags.
package lastfm

import (
	"errors"
	"time"
)

// ErrMissingAPIKey is returned when no Last.fm API key is configured.
var ErrMissingAPIKey = errors.New("missing Last.fm API key")

// Defaults applied by NewClient to zero Config fields.
const (
	DefaultRPS       = 5
	DefaultRetries   = 3
	DefaultTimeout   = 10 * time.Second
	DefaultCacheSize = 5000
)

// Config holds Last.fm API configuration.
type Config struct {
	APIKey    string
	RPS       float64 // requests per second
	Retries   uint    // retries after the first attempt on rate limiting
	Timeout   time.Duration
	CacheSize int
}

// Validate reports ErrMissingAPIKey when the key is empty.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.RPS <= 0 {
		c.RPS = DefaultRPS
	}
	if c.Retries == 0 {
		c.Retries = DefaultRetries
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
	return c
}
