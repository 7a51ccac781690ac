package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// DefaultRedirectURL must be registered with the Spotify app. Spotify only
// accepts loopback redirects by IP, not "localhost".
const DefaultRedirectURL = "http://127.0.0.1:8080/callback"

const defaultLoginTimeout = 2 * time.Minute

var (
	// ErrMissingCredentials is returned when the client ID or secret is not configured.
	ErrMissingCredentials = errors.New("missing Spotify client ID or secret")

	// ErrAuthTimeout is returned when the browser step is not finished in time.
	ErrAuthTimeout = errors.New("timed out waiting for Spotify authorization")

	// ErrStateMismatch is returned when the callback carries a foreign state.
	ErrStateMismatch = errors.New("OAuth state mismatch")
)

// scopes covers reading liked songs and the profile, and writing the
// private playlists moodtune creates.
var scopes = []string{
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopePlaylistModifyPrivate,
}

// Config holds the Spotify application credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string // defaults to DefaultRedirectURL
	TokenPath    string // defaults to DefaultTokenPath()
}

// Authenticator hands out Spotify clients, logging in through the browser
// when the cached token is missing or revoked.
type Authenticator struct {
	oauth    *spotifyauth.Authenticator
	tokens   *TokenCache
	redirect *url.URL
	timeout  time.Duration
	out      io.Writer
	log      *logrus.Entry
}

// New creates an Authenticator. Instructions for the browser step are
// written to out.
func New(cfg Config, out io.Writer, log *logrus.Entry) (*Authenticator, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = DefaultRedirectURL
	}
	redirect, err := url.Parse(cfg.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redirect URL: %w", err)
	}
	if cfg.TokenPath == "" {
		if cfg.TokenPath, err = DefaultTokenPath(); err != nil {
			return nil, err
		}
	}

	return &Authenticator{
		oauth: spotifyauth.New(
			spotifyauth.WithClientID(cfg.ClientID),
			spotifyauth.WithClientSecret(cfg.ClientSecret),
			spotifyauth.WithRedirectURL(cfg.RedirectURL),
			spotifyauth.WithScopes(scopes...),
		),
		tokens:   NewTokenCache(cfg.TokenPath, cfg.ClientID),
		redirect: redirect,
		timeout:  defaultLoginTimeout,
		out:      out,
		log:      log,
	}, nil
}

// TokenPath returns where the token is cached.
func (a *Authenticator) TokenPath() string {
	return a.tokens.Path()
}

// Logout forgets the cached token.
func (a *Authenticator) Logout() error {
	return a.tokens.Delete()
}

// Authenticate returns a client for the cached token when Spotify still
// accepts it, and runs the browser login otherwise.
func (a *Authenticator) Authenticate(ctx context.Context) (*spotify.Client, error) {
	tok, err := a.tokens.Load()
	if err != nil {
		a.log.WithError(err).Warn("Ignoring unreadable token cache")
	}
	if tok != nil {
		if client, ok := a.resume(ctx, tok); ok {
			return client, nil
		}
	}
	return a.login(ctx)
}

// resume checks the cached token with a profile call. oauth2 refreshes an
// expired access token on the way; the refreshed token is saved.
func (a *Authenticator) resume(ctx context.Context, tok *oauth2.Token) (*spotify.Client, bool) {
	client := a.client(ctx, tok)
	if _, err := client.CurrentUser(ctx); err != nil {
		a.log.WithError(err).Info("Cached Spotify token rejected, logging in again")
		return nil, false
	}
	if fresh, err := client.Token(); err == nil && fresh.AccessToken != tok.AccessToken {
		a.save(fresh)
	}
	return client, true
}

func (a *Authenticator) client(ctx context.Context, tok *oauth2.Token) *spotify.Client {
	return spotify.New(a.oauth.Client(ctx, tok), spotify.WithRetry(true))
}

func (a *Authenticator) save(tok *oauth2.Token) {
	if err := a.tokens.Save(tok); err != nil {
		a.log.WithError(err).Warn("Failed to cache Spotify token")
	}
}

// login serves the redirect URL on loopback, prints the authorization URL
// and waits for Spotify to call back.
func (a *Authenticator) login(ctx context.Context) (*spotify.Client, error) {
	state, err := newState()
	if err != nil {
		return nil, fmt.Errorf("generating state: %w", err)
	}

	ln, err := net.Listen("tcp", a.redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("listening for the Spotify callback on %s: %w", a.redirect.Host, err)
	}
	cb := newCallback(state, a.oauth.Token)
	r := chi.NewRouter()
	r.Get(a.redirect.Path, cb.ServeHTTP)
	srv := &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cb.finish(nil, fmt.Errorf("callback server: %w", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(a.out, "\nOpen this URL in your browser to connect moodtune to Spotify:\n%s\n\nWaiting for authorization...\n",
		a.oauth.AuthURL(state))

	timer := time.NewTimer(a.timeout)
	defer timer.Stop()

	select {
	case res := <-cb.done:
		if res.err != nil {
			return nil, res.err
		}
		a.save(res.tok)
		a.log.Info("Spotify authorization complete")
		return a.client(ctx, res.tok), nil
	case <-timer.C:
		return nil, ErrAuthTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type exchangeFunc func(ctx context.Context, state string, r *http.Request, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)

type callbackResult struct {
	tok *oauth2.Token
	err error
}

// callback handles the redirect from Spotify. Only the first outcome is
// kept; later hits still get a response page.
type callback struct {
	state    string
	exchange exchangeFunc
	done     chan callbackResult
}

func newCallback(state string, exchange exchangeFunc) *callback {
	return &callback{state: state, exchange: exchange, done: make(chan callbackResult, 1)}
}

func (c *callback) finish(tok *oauth2.Token, err error) {
	select {
	case c.done <- callbackResult{tok, err}:
	default:
	}
}

func (c *callback) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Get("state") != c.state:
		http.Error(w, "State mismatch", http.StatusBadRequest)
		c.finish(nil, ErrStateMismatch)
		return
	case q.Get("error") != "":
		http.Error(w, "Spotify denied access: "+q.Get("error"), http.StatusBadRequest)
		c.finish(nil, fmt.Errorf("spotify authorization: %s", q.Get("error")))
		return
	}

	tok, err := c.exchange(r.Context(), c.state, r)
	if err != nil {
		http.Error(w, "Could not finish authorization", http.StatusBadGateway)
		c.finish(nil, fmt.Errorf("exchanging code for token: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "moodtune is connected to Spotify. You can close this tab.")
	c.finish(tok, nil)
}

func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
