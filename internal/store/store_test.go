package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-moodtune/internal/analysis"
	"github.com/justestif/go-moodtune/internal/clustering"
	"github.com/justestif/go-moodtune/internal/mood"
)

func createTestDb(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "moodtune.db")

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("New(%s) error: %v", dbPath, err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

const sampleCSV = `track_name,artist_name,popularity,valence,energy,danceability,acousticness,tempo
Happy Song,Band A,70,0.9,0.8,0.75,0.1,128
Sad Song,Band B,30,0.1,0.2,0.3,0.8,70
,Band C,10,0.5,0.5,0.5,0.5,100
Broken,Band D,10,not-a-number,0.5,0.5,0.5,100
`

func TestImportCSV(t *testing.T) {
	s := createTestDb(t)
	ctx := context.Background()

	result, err := s.ImportCSV(ctx, strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ImportCSV() error = %v", err)
	}
	if result.Imported != 2 || result.Skipped != 2 {
		t.Errorf("result = %+v, want 2 imported and 2 skipped", result)
	}

	tracks, err := s.Tracks(ctx)
	if err != nil {
		t.Fatalf("Tracks() error = %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("len(tracks) = %d, want 2", len(tracks))
	}
	happy := tracks[0]
	if happy.Name != "Happy Song" || happy.Popularity != 70 || !happy.HasFeatures() {
		t.Errorf("track = %+v", happy)
	}
	if *happy.Tempo != 128 {
		t.Errorf("Tempo = %v, want 128", *happy.Tempo)
	}

	// Re-importing keeps IDs stable
	if _, err := s.ImportCSV(ctx, strings.NewReader(sampleCSV)); err != nil {
		t.Fatalf("second ImportCSV() error = %v", err)
	}
	if n, _ := s.CountTracks(ctx); n != 2 {
		t.Errorf("CountTracks() = %d after re-import, want 2", n)
	}
}

func TestImportCSV_MissingColumn(t *testing.T) {
	s := createTestDb(t)
	_, err := s.ImportCSV(context.Background(), strings.NewReader("track_name,artist_name\nA,B\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("error = %v, want ErrMissingColumn", err)
	}
}

func TestUpsertTracks_KeepsFeatures(t *testing.T) {
	s := createTestDb(t)
	ctx := context.Background()

	full := clustering.Track{
		ID: "t1", Name: "Song", Artist: "Artist",
		Valence: clustering.F32(0.4), Energy: clustering.F32(0.5), Danceability: clustering.F32(0.6),
		Acousticness: clustering.F32(0.2), Tempo: clustering.F32(100),
	}
	if err := s.UpsertTracks(ctx, []clustering.Track{full}); err != nil {
		t.Fatalf("UpsertTracks() error = %v", err)
	}
	// A later import without features must not erase them
	bare := clustering.Track{ID: "t1", Name: "Song (Remastered)", Artist: "Artist", Liked: true}
	if err := s.UpsertTracks(ctx, []clustering.Track{bare}); err != nil {
		t.Fatalf("UpsertTracks() error = %v", err)
	}

	tracks, err := s.Tracks(ctx)
	if err != nil {
		t.Fatalf("Tracks() error = %v", err)
	}
	got := tracks[0]
	if got.Name != "Song (Remastered)" || !got.Liked {
		t.Errorf("track = %+v", got)
	}
	if got.Valence == nil || *got.Valence != 0.4 {
		t.Errorf("Valence = %v, want 0.4", got.Valence)
	}
}

func TestAnalysisHistory(t *testing.T) {
	s := createTestDb(t)
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	entries := []analysis.Analysis{
		{ID: uuid.New(), Text: "first", TextHash: "h1", Result: mood.Result{Primary: mood.Joy, Sentiment: 0.6}, AnalyzedAt: base},
		{ID: uuid.New(), Text: "second", TextHash: "h2", Result: mood.Result{Primary: mood.Sadness, Sentiment: -0.5}, AnalyzedAt: base.Add(time.Minute)},
		{ID: uuid.New(), Text: "third", TextHash: "h3", Result: mood.Result{Primary: mood.Joy, Sentiment: 0.7}, AnalyzedAt: base.Add(2 * time.Minute)},
	}
	for _, a := range entries {
		if err := s.RecordAnalysis(ctx, a); err != nil {
			t.Fatalf("RecordAnalysis() error = %v", err)
		}
	}

	history, err := s.History(ctx, 2)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 || history[0].Text != "third" || history[1].Text != "second" {
		t.Errorf("History() = %v", history)
	}
	if history[1].Primary != mood.Sadness || history[1].Sentiment != -0.5 {
		t.Errorf("decoded = %+v", history[1].Result)
	}

	got, err := s.GetAnalysis(ctx, entries[0].ID)
	if err != nil {
		t.Fatalf("GetAnalysis() error = %v", err)
	}
	if got.TextHash != "h1" {
		t.Errorf("TextHash = %q, want h1", got.TextHash)
	}
	if _, err := s.GetAnalysis(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAnalysis(unknown) error = %v, want ErrNotFound", err)
	}

	counts, err := s.EmotionCounts(ctx)
	if err != nil {
		t.Fatalf("EmotionCounts() error = %v", err)
	}
	if counts["joy"] != 2 || counts["sadness"] != 1 {
		t.Errorf("EmotionCounts() = %v", counts)
	}
}

func TestCatalogs(t *testing.T) {
	s := createTestDb(t)
	ctx := context.Background()
	catalogs := NewCatalogs(s, 1)

	if _, err := catalogs.LoadCatalog(ctx, ""); !errors.Is(err, clustering.ErrNoTracks) {
		t.Fatalf("LoadCatalog() on empty store error = %v, want ErrNoTracks", err)
	}

	if _, err := s.ImportCSV(ctx, strings.NewReader(sampleCSV)); err != nil {
		t.Fatalf("ImportCSV() error = %v", err)
	}
	cat, err := catalogs.LoadCatalog(ctx, "")
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if cat.Len() != 2 || len(cat.Clusters) != 1 {
		t.Errorf("catalog has %d tracks in %d clusters", cat.Len(), len(cat.Clusters))
	}

	again, err := catalogs.LoadCatalog(ctx, "someone")
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if again != cat {
		t.Error("unchanged store should reuse the built catalog")
	}
}
