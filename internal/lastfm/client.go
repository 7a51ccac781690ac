package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const (
	baseURL   = "http://ws.audioscrobbler.com/2.0/"
	userAgent = "moodtune/1.0"
)

// Last.fm API error codes.
const (
	errCodeInvalidParams = 6
	errCodeInvalidAPIKey = 10
	errCodeRateLimited   = 29
)

// Sentinel errors.
var (
	// ErrRateLimited is returned when the API rate limit is exceeded after retries.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidAPIKey is returned when the API key is invalid.
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrNotFound is returned when Last.fm does not know the track or artist.
	ErrNotFound = errors.New("not found on Last.fm")
)

// Client is a Last.fm API client with caching and rate limiting.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	retries    uint
	retryDelay time.Duration

	// key = "track:{artist}:{track}" or "artist:{artist}"
	cache *lru.Cache[string, []Tag]
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetryDelay sets the base delay between rate-limited attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// NewClient creates a new Last.fm API client from the provided configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg = cfg.withDefaults()
	cache, _ := lru.New[string, []Tag](cfg.CacheSize) // size is positive after defaults
	c := &Client{
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RPS), 1),
		retries:    cfg.Retries,
		retryDelay: time.Second,
		cache:      cache,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetTags fetches tags for a track, falling back to artist tags if track has none.
// Results are cached in memory. Returns an empty slice (not nil) if no tags are found.
func (c *Client) GetTags(ctx context.Context, artist, track string) ([]Tag, error) {
	tags, err := c.getTrackTags(ctx, artist, track)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if len(tags) > 0 {
		return tags, nil
	}

	tags, err = c.getArtistTags(ctx, artist)
	if errors.Is(err, ErrNotFound) {
		return []Tag{}, nil
	}
	return tags, err
}

func (c *Client) getTrackTags(ctx context.Context, artist, track string) ([]Tag, error) {
	key := "track:" + artist + ":" + track
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	params := url.Values{
		"method":      {"track.getTopTags"},
		"artist":      {artist},
		"track":       {track},
		"autocorrect": {"1"},
	}
	var resp topTagsResponse
	if err := c.fetch(ctx, params, &resp); err != nil {
		return nil, fmt.Errorf("fetching track tags: %w", err)
	}
	return c.remember(key, resp.TopTags.Tag), nil
}

func (c *Client) getArtistTags(ctx context.Context, artist string) ([]Tag, error) {
	key := "artist:" + artist
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	params := url.Values{
		"method":      {"artist.getTopTags"},
		"artist":      {artist},
		"autocorrect": {"1"},
	}
	var resp topTagsResponse
	if err := c.fetch(ctx, params, &resp); err != nil {
		return nil, fmt.Errorf("fetching artist tags: %w", err)
	}
	return c.remember(key, resp.TopTags.Tag), nil
}

func (c *Client) fetch(ctx context.Context, params url.Values, v any) error {
	body, err := c.doRequest(ctx, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// remember caches tags under key, storing an empty slice for none.
func (c *Client) remember(key string, tags []Tag) []Tag {
	if tags == nil {
		tags = []Tag{}
	}
	c.cache.Add(key, tags)
	return tags
}

// doRequest performs a paced HTTP GET, retrying with backoff while the API
// reports rate limiting.
func (c *Client) doRequest(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("format", "json")
	params.Set("api_key", c.apiKey)
	reqURL := c.baseURL + "?" + params.Encode()

	var body []byte
	err := retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			var err error
			body, err = c.doSingleRequest(ctx, reqURL)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.retries+1),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrRateLimited)
		}),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// doSingleRequest performs a single HTTP request.
func (c *Client) doSingleRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	// Check for API error in response
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != 0 {
		switch apiErr.Code {
		case errCodeRateLimited:
			return nil, ErrRateLimited
		case errCodeInvalidAPIKey:
			return nil, ErrInvalidAPIKey
		case errCodeInvalidParams:
			if strings.Contains(strings.ToLower(apiErr.Message), "not found") {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("invalid parameters: %s", apiErr.Message)
		default:
			return nil, fmt.Errorf("API error %d: %s", apiErr.Code, apiErr.Message)
		}
	}

	return body, nil
}
