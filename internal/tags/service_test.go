package tags

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/justestif/go-moodtune/internal/lastfm"
	"github.com/justestif/go-moodtune/internal/mood"
)

// mockFetcher serves canned tags keyed by "artist - track". Unknown
// tracks have no tags.
type mockFetcher struct {
	tags      map[string][]lastfm.Tag
	errs      map[string]error
	delay     time.Duration
	callCount atomic.Int32
	inFlight  atomic.Int32
	peak      atomic.Int32
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{tags: map[string][]lastfm.Tag{}, errs: map[string]error{}}
}

func (m *mockFetcher) addTags(artist, track string, tags []lastfm.Tag) {
	m.tags[artist+" - "+track] = tags
}

func (m *mockFetcher) addError(artist, track string, err error) {
	m.errs[artist+" - "+track] = err
}

func (m *mockFetcher) GetTags(ctx context.Context, artist, track string) ([]lastfm.Tag, error) {
	m.callCount.Add(1)
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		p := m.peak.Load()
		if n <= p || m.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	key := artist + " - " + track
	if err := m.errs[key]; err != nil {
		return nil, err
	}
	if tags, ok := m.tags[key]; ok {
		return tags, nil
	}
	return []lastfm.Tag{}, nil
}

func TestFetchTagsForTracks(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.addTags("Massive Attack", "Teardrop", []lastfm.Tag{{Name: "trip-hop", Count: 100}, {Name: "chillout", Count: 70}})
	fetcher.addTags("Daft Punk", "One More Time", []lastfm.Tag{{Name: "electronic", Count: 90}})
	fetcher.addError("Broken", "Link", errors.New("API error"))

	svc := NewService(fetcher, WithConcurrency(2))
	results, err := svc.FetchTagsForTracks(context.Background(), []Track{
		{ID: "t1", Name: "Teardrop", Artist: "Massive Attack"},
		{ID: "t2", Name: "Unheard", Artist: "Nobody"},
		{ID: "t3", Name: "Link", Artist: "Broken"},
		{ID: "t4", Name: "One More Time", Artist: "Daft Punk"},
	})
	if err != nil {
		t.Fatalf("batch error = %v", err)
	}

	want := []struct {
		id      string
		source  TagSource
		tags    int
		wantErr bool
	}{
		{"t1", SourceTrack, 2, false},
		{"t2", SourceNone, 0, false},
		{"t3", SourceNone, 0, true},
		{"t4", SourceTrack, 1, false},
	}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i, w := range want {
		r := results[i]
		if r.TrackID != w.id || r.Source != w.source || len(r.Tags) != w.tags || (r.Error != nil) != w.wantErr {
			t.Errorf("results[%d] = %+v, want %+v", i, r, w)
		}
		if r.Tags == nil {
			t.Errorf("results[%d].Tags is nil", i)
		}
	}
}

func TestFetchTagsForTracks_Empty(t *testing.T) {
	results, err := NewService(newMockFetcher()).FetchTagsForTracks(context.Background(), nil)
	if err != nil || results == nil || len(results) != 0 {
		t.Errorf("FetchTagsForTracks(nil) = %v, %v", results, err)
	}
}

func TestFetchTagsForTracks_BoundedWorkers(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.delay = 5 * time.Millisecond

	tracks := make([]Track, 12)
	for i := range tracks {
		tracks[i] = Track{ID: fmt.Sprint(i), Name: fmt.Sprint("Track ", i), Artist: "Artist"}
	}

	if _, err := NewService(fetcher, WithConcurrency(3)).FetchTagsForTracks(context.Background(), tracks); err != nil {
		t.Fatal(err)
	}
	if got := fetcher.callCount.Load(); got != 12 {
		t.Errorf("calls = %d, want 12", got)
	}
	if peak := fetcher.peak.Load(); peak > 3 {
		t.Errorf("peak concurrency = %d, want at most 3", peak)
	}
}

func TestFetchTagsForTracks_Canceled(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.delay = 50 * time.Millisecond

	tracks := make([]Track, 10)
	for i := range tracks {
		tracks[i] = Track{ID: fmt.Sprint(i), Name: "Track", Artist: "Artist"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	results, err := NewService(fetcher, WithConcurrency(2)).FetchTagsForTracks(ctx, tracks)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
	if len(results) != 10 {
		t.Fatalf("got %d results, want 10", len(results))
	}
	for i, r := range results {
		if r.Error == nil {
			t.Errorf("results[%d] has no error", i)
		}
	}
}

func TestWithConcurrency(t *testing.T) {
	for in, want := range map[int]int{10: 10, 0: DefaultConcurrency, -1: DefaultConcurrency} {
		if got := NewService(nil, WithConcurrency(in)).concurrency; got != want {
			t.Errorf("WithConcurrency(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestFetchTagsForTracks_Mood(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.addTags("Adele", "Someone Like You", []lastfm.Tag{
		{Name: "sad", Count: 100},
		{Name: "melancholy", Count: 60},
		{Name: "soul", Count: 40},
	})
	fetcher.addTags("Foo Fighters", "Everlong", []lastfm.Tag{{Name: "rock", Count: 100}})
	fetcher.addTags("Obscure", "B-Side", []lastfm.Tag{{Name: "happy", Count: 2}})

	svc := NewService(fetcher, WithEngine(mood.MustEngine()))
	results, err := svc.FetchTagsForTracks(context.Background(), []Track{
		{ID: "t1", Name: "Someone Like You", Artist: "Adele"},
		{ID: "t2", Name: "Everlong", Artist: "Foo Fighters"},
		{ID: "t3", Name: "Nothing", Artist: "Nobody"},
		{ID: "t4", Name: "B-Side", Artist: "Obscure"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m := results[0].Mood; !m.Matched || m.Emotion != mood.Sadness || m.Sentiment >= 0 {
		t.Errorf("t1 mood = %+v, want matched sadness with negative sentiment", m)
	}
	if results[1].Mood.Matched {
		t.Errorf("t2 mood = %+v, want unmatched", results[1].Mood)
	}
	for _, i := range []int{2, 3} {
		if results[i].Mood != (TagMood{}) {
			t.Errorf("%s mood = %+v, want zero", results[i].TrackID, results[i].Mood)
		}
	}

	counts := MoodCounts(results)
	if counts[mood.Sadness] != 1 || len(counts) != 1 {
		t.Errorf("MoodCounts() = %v", counts)
	}
}

func TestMoodOf_NoEngine(t *testing.T) {
	svc := NewService(newMockFetcher())
	if got := svc.MoodOf([]lastfm.Tag{{Name: "happy", Count: 100}}); got != (TagMood{}) {
		t.Errorf("MoodOf() without engine = %+v", got)
	}
}
