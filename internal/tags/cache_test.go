package tags

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/justestif/go-moodtune/internal/db"
	"github.com/justestif/go-moodtune/internal/lastfm"
)

type fakeStore struct {
	tags     map[string][]db.TrackTag
	upserted []db.TrackTag
	getErr   error
}

func (f *fakeStore) GetForTracks(_ context.Context, ids []string) (map[string][]db.TrackTag, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := make(map[string][]db.TrackTag)
	for _, id := range ids {
		if tags, ok := f.tags[id]; ok {
			out[id] = tags
		}
	}
	return out, nil
}

func (f *fakeStore) Replace(_ context.Context, tags []db.TrackTag) error {
	f.upserted = append(f.upserted, tags...)
	return nil
}

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func TestCachedTagFetcher(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{tags: map[string][]db.TrackTag{
		"fresh": {{TrackID: "fresh", TagName: "happy", TagCount: 90, Source: "track", FetchedAt: now.Add(-time.Hour)}},
		"stale": {{TrackID: "stale", TagName: "old", TagCount: 10, Source: "track", FetchedAt: now.Add(-2 * CacheTTL)}},
	}}

	fetcher := newMockFetcher()
	fetcher.addTags("A", "Stale", []lastfm.Tag{{Name: "new", Count: 50}})
	fetcher.addTags("B", "Missing", []lastfm.Tag{{Name: "sad", Count: 70}})
	fetcher.addError("C", "Broken", errors.New("boom"))

	c := NewCachedTagFetcher(store, NewService(fetcher), quietLog())
	c.now = func() time.Time { return now }

	results, err := c.GetTagsForTracks(context.Background(), []Track{
		{ID: "fresh", Name: "Fresh", Artist: "Z"},
		{ID: "stale", Name: "Stale", Artist: "A"},
		{ID: "missing", Name: "Missing", Artist: "B"},
		{ID: "broken", Name: "Broken", Artist: "C"},
	})
	if err != nil {
		t.Fatalf("GetTagsForTracks() error = %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("len = %d, want 4", len(results))
	}

	if results[0].Source != SourceCache || results[0].Tags[0].Name != "happy" {
		t.Errorf("fresh = %+v, want cached happy", results[0])
	}
	if results[1].Source != SourceTrack || results[1].Tags[0].Name != "new" {
		t.Errorf("stale = %+v, want refetched", results[1])
	}
	if results[2].TrackID != "missing" || results[2].Tags[0].Name != "sad" {
		t.Errorf("missing = %+v", results[2])
	}
	if results[3].Error == nil {
		t.Error("broken should carry its fetch error")
	}

	if got := fetcher.callCount.Load(); got != 3 {
		t.Errorf("fetcher calls = %d, want 3", got)
	}
	if len(store.upserted) != 2 {
		t.Fatalf("upserted %d tags, want 2", len(store.upserted))
	}
	for _, tag := range store.upserted {
		if !tag.FetchedAt.Equal(now) {
			t.Errorf("FetchedAt = %v, want %v", tag.FetchedAt, now)
		}
	}
}

func TestCachedTagFetcher_StoreError(t *testing.T) {
	store := &fakeStore{getErr: errors.New("db down")}
	c := NewCachedTagFetcher(store, NewService(newMockFetcher()), quietLog())

	if _, err := c.GetTagsForTracks(context.Background(), []Track{{ID: "x"}}); err == nil {
		t.Error("expected error when the store fails")
	}
}
