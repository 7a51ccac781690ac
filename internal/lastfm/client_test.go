package lastfm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync/atomic"
	"testing"
	"time"
)

const (
	rateLimited = `{"error":29,"message":"Rate limit exceeded"}`
	noTags      = `{"toptags":{"tag":[]}}`
)

// fakeLastFM answers getTopTags calls from canned bodies keyed by
// "method artist/track", counting the requests it serves.
type fakeLastFM struct {
	bodies   map[string]string
	requests atomic.Int32
	t        *testing.T
}

func (f *fakeLastFM) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := f.requests.Add(1)
	q := r.URL.Query()
	if q.Get("api_key") != "test-api-key" || q.Get("format") != "json" {
		f.t.Errorf("query = %v", q)
	}
	if ua := r.Header.Get("User-Agent"); ua != userAgent {
		f.t.Errorf("User-Agent = %q", ua)
	}

	key := fmt.Sprintf("%s %s/%s", q.Get("method"), q.Get("artist"), q.Get("track"))
	body, ok := f.bodies[key]
	if !ok {
		body = f.bodies[fmt.Sprintf("%s #%d", q.Get("method"), n)]
	}
	if body == "" {
		body = noTags
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, body)
}

func startFake(t *testing.T, bodies map[string]string) (*Client, *fakeLastFM) {
	t.Helper()
	fake := &fakeLastFM{bodies: bodies, t: t}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	client := NewClient(
		Config{APIKey: "test-api-key", RPS: 1000},
		WithBaseURL(server.URL+"/"),
		WithHTTPClient(server.Client()),
		WithRetryDelay(time.Millisecond),
	)
	return client, fake
}

func names(tags []Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Name
	}
	return out
}

func TestGetTags(t *testing.T) {
	client, _ := startFake(t, map[string]string{
		"track.getTopTags Portishead/Roads":     `{"toptags":{"tag":[{"name":"trip-hop","count":100},{"name":"melancholy","count":64}]}}`,
		"track.getTopTags Portishead/Glory Box": noTags,
		"artist.getTopTags Portishead/":         `{"toptags":{"tag":[{"name":"downtempo"},{"name":"female vocalists"}]}}`,
		"track.getTopTags Nobody/Nothing":       `{"error":6,"message":"Track not found"}`,
		"artist.getTopTags Nobody/":             `{"error":6,"message":"Artist not found"}`,
		"track.getTopTags Key/Broken":           `{"error":10,"message":"Invalid API key"}`,
		"track.getTopTags Odd/Params":           `{"error":6,"message":"Missing track"}`,
		"track.getTopTags Down/Service":         `{"error":16,"message":"Temporary error"}`,
	})

	tests := []struct {
		artist, track string
		want          []string
		wantErr       error
		anyErr        bool
	}{
		{"Portishead", "Roads", []string{"trip-hop", "melancholy"}, nil, false},
		{"Portishead", "Glory Box", []string{"downtempo", "female vocalists"}, nil, false},
		{"Nobody", "Nothing", []string{}, nil, false},
		{"Key", "Broken", nil, ErrInvalidAPIKey, true},
		{"Odd", "Params", nil, nil, true},
		{"Down", "Service", nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.artist+"/"+tt.track, func(t *testing.T) {
			tags, err := client.GetTags(context.Background(), tt.artist, tt.track)
			if tt.anyErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetTags() error = %v", err)
			}
			if tags == nil || !slices.Equal(names(tags), tt.want) {
				t.Errorf("GetTags() = %v, want %v", names(tags), tt.want)
			}
		})
	}
}

func TestGetTags_Cached(t *testing.T) {
	client, fake := startFake(t, map[string]string{
		"track.getTopTags Burial/Archangel": `{"toptags":{"tag":[{"name":"dubstep","count":100}]}}`,
	})
	ctx := context.Background()

	for range 3 {
		tags, err := client.GetTags(ctx, "Burial", "Archangel")
		if err != nil || len(tags) != 1 {
			t.Fatalf("GetTags() = %v, %v", tags, err)
		}
	}
	if n := fake.requests.Load(); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}

	// An empty result is remembered too: one track call and one artist call.
	if _, err := client.GetTags(ctx, "Burial", "Untagged"); err != nil {
		t.Fatal(err)
	}
	if _, err := client.GetTags(ctx, "Burial", "Untagged"); err != nil {
		t.Fatal(err)
	}
	if n := fake.requests.Load(); n != 3 {
		t.Errorf("requests = %d, want 3", n)
	}
}

func TestGetTags_RateLimited(t *testing.T) {
	t.Run("recovers", func(t *testing.T) {
		client, fake := startFake(t, map[string]string{
			"track.getTopTags #1": rateLimited,
			"track.getTopTags #2": rateLimited,
			"track.getTopTags #3": `{"toptags":{"tag":[{"name":"sad","count":100}]}}`,
		})
		tags, err := client.GetTags(context.Background(), "A", "B")
		if err != nil {
			t.Fatalf("GetTags() error = %v", err)
		}
		if !slices.Equal(names(tags), []string{"sad"}) {
			t.Errorf("tags = %v", names(tags))
		}
		if n := fake.requests.Load(); n != 3 {
			t.Errorf("requests = %d, want 3", n)
		}
	})

	t.Run("gives up", func(t *testing.T) {
		bodies := map[string]string{}
		for i := 1; i <= 10; i++ {
			bodies[fmt.Sprintf("track.getTopTags #%d", i)] = rateLimited
		}
		client, fake := startFake(t, bodies)
		_, err := client.GetTags(context.Background(), "A", "B")
		if !errors.Is(err, ErrRateLimited) {
			t.Errorf("error = %v, want ErrRateLimited", err)
		}
		if n := fake.requests.Load(); n != DefaultRetries+1 {
			t.Errorf("requests = %d, want %d", n, DefaultRetries+1)
		}
	})
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{APIKey: "k"})
	if c.baseURL != baseURL || c.retries != DefaultRetries {
		t.Errorf("baseURL = %s, retries = %d", c.baseURL, c.retries)
	}
	if c.httpClient.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v", c.httpClient.Timeout)
	}
	if c.limiter.Limit() != DefaultRPS {
		t.Errorf("limit = %v", c.limiter.Limit())
	}
}

func TestTopNames(t *testing.T) {
	tags := []Tag{
		{Name: "Rock", Count: 40},
		{Name: "seen live", Count: 3},
		{Name: " Sad ", Count: 100},
		{Name: "", Count: 90},
		{Name: "chill", Count: 55},
	}
	if got := TopNames(tags, 2); !slices.Equal(got, []string{"sad", "chill"}) {
		t.Errorf("TopNames(2) = %v", got)
	}
	if got := TopNames(tags, 10); !slices.Equal(got, []string{"sad", "chill", "rock"}) {
		t.Errorf("TopNames(10) = %v", got)
	}

	artist := []Tag{{Name: "ambient"}, {Name: "drone"}}
	if got := TopNames(artist, 5); !slices.Equal(got, []string{"ambient", "drone"}) {
		t.Errorf("unweighted = %v", got)
	}
}
