package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify/v2"
)

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// fakeAPI serves the handful of Web API endpoints the client uses. Liked
// songs come back one page of two at a time.
type fakeAPI struct {
	url string

	mu        sync.Mutex
	featureQs []string
	playlists []string
	added     [][]string
}

func (f *fakeAPI) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/me", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"id":"user1","display_name":"User One","email":"u@example.com"}`)
	})
	r.Get("/me/tracks", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "2" {
			fmt.Fprint(w, `{"items":[
				{"added_at":"2025-02-01T08:00:00Z","track":{"id":"c","name":"Third","popularity":10,"artists":[{"name":"Solo"}]}}
			],"next":null}`)
			return
		}
		fmt.Fprintf(w, `{"items":[
			{"added_at":"2025-01-15T10:30:00Z","track":{"id":"a","name":"First","popularity":72,"artists":[{"name":"A1"},{"name":"A2"}]}},
			{"added_at":"bogus","track":{"id":"b","name":"Second","popularity":40,"artists":[]}}
		],"next":"%s/me/tracks?offset=2&limit=2"}`, f.url)
	})
	r.Get("/audio-features", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.featureQs = append(f.featureQs, r.URL.Query().Get("ids"))
		f.mu.Unlock()
		fmt.Fprint(w, `{"audio_features":[
			{"id":"a","valence":0.9,"energy":0.8,"danceability":0.7,"acousticness":0.1,"tempo":128},
			{"id":"b","valence":0,"energy":0,"danceability":0,"acousticness":0,"tempo":0},
			null
		]}`)
	})
	r.Post("/users/{user}/playlists", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name   string `json:"name"`
			Public bool   `json:"public"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.playlists = append(f.playlists, chi.URLParam(r, "user")+"/"+body.Name)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"id":"pl1","name":%q,"public":%t}`, body.Name, body.Public)
	})
	r.Post("/playlists/{id}/tracks", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			URIs []string `json:"uris"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.added = append(f.added, body.URIs)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"snapshot_id":"snap"}`)
	})
	return r
}

func newFakeClient(t *testing.T) (*Client, *fakeAPI) {
	t.Helper()
	fake := &fakeAPI{}
	srv := httptest.NewServer(fake.routes())
	t.Cleanup(srv.Close)
	fake.url = srv.URL
	api := spotify.New(srv.Client(), spotify.WithBaseURL(srv.URL+"/"))
	return New(api, WithLogger(quietLog())), fake
}

func TestFetchLibrary(t *testing.T) {
	client, fake := newFakeClient(t)

	tracks, err := client.FetchLibrary(context.Background())
	if err != nil {
		t.Fatalf("FetchLibrary() error = %v", err)
	}
	if len(tracks) != 3 {
		t.Fatalf("got %d tracks, want 3", len(tracks))
	}

	a, b, c := tracks[0], tracks[1], tracks[2]
	if a.ID != "a" || a.Artist != "A1, A2" || a.Popularity != 72 || !a.Liked {
		t.Errorf("first track = %+v", a)
	}
	if !a.AddedAt.Equal(time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("AddedAt = %v", a.AddedAt)
	}
	if !a.HasFeatures() || *a.Valence != 0.9 || *a.Tempo != 128 {
		t.Errorf("first track features not applied: %+v", a)
	}

	if b.Artist != "" || !b.AddedAt.IsZero() {
		t.Errorf("second track = %+v", b)
	}
	if !b.HasFeatures() || *b.Energy != 0 {
		t.Error("zero-valued features should still be set")
	}

	if c.ID != "c" || c.HasFeatures() {
		t.Errorf("third track should lack features: %+v", c)
	}

	if len(fake.featureQs) != 1 || fake.featureQs[0] != "a,b,c" {
		t.Errorf("audio-features requests = %v", fake.featureQs)
	}
}

func TestCreatePrivatePlaylist(t *testing.T) {
	client, fake := newFakeClient(t)

	ids := make([]string, 150)
	for i := range ids {
		ids[i] = fmt.Sprintf("t%03d", i)
	}

	id, err := client.CreatePrivatePlaylist(context.Background(), "Moodtune: Joy", "for a good day", ids)
	if err != nil {
		t.Fatalf("CreatePrivatePlaylist() error = %v", err)
	}
	if id != "pl1" {
		t.Errorf("id = %q, want pl1", id)
	}
	if len(fake.playlists) != 1 || fake.playlists[0] != "user1/Moodtune: Joy" {
		t.Errorf("playlists created = %v", fake.playlists)
	}

	if len(fake.added) != 2 || len(fake.added[0]) != 100 || len(fake.added[1]) != 50 {
		t.Fatalf("add batches = %d", len(fake.added))
	}
	if first := fake.added[0][0]; first != "spotify:track:t000" {
		t.Errorf("first uri = %q", first)
	}
	if last := fake.added[1][49]; !strings.HasSuffix(last, "t149") {
		t.Errorf("last uri = %q", last)
	}
}

func TestCurrentUser(t *testing.T) {
	client, _ := newFakeClient(t)
	u, err := client.CurrentUser(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if u != (User{ID: "user1", DisplayName: "User One", Email: "u@example.com"}) {
		t.Errorf("CurrentUser() = %+v", u)
	}
}

func TestBatches(t *testing.T) {
	tests := []struct {
		n, size int
		want    [][2]int
	}{
		{0, 100, nil},
		{50, 100, [][2]int{{0, 50}}},
		{100, 100, [][2]int{{0, 100}}},
		{250, 100, [][2]int{{0, 100}, {100, 200}, {200, 250}}},
		{5, 2, [][2]int{{0, 2}, {2, 4}, {4, 5}}},
	}
	for _, tt := range tests {
		got := batches(tt.n, tt.size)
		if fmt.Sprint(got) != fmt.Sprint(tt.want) {
			t.Errorf("batches(%d, %d) = %v, want %v", tt.n, tt.size, got, tt.want)
		}
	}
}
