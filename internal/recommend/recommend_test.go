package recommend

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/justestif/go-moodtune/internal/clustering"
	"github.com/justestif/go-moodtune/internal/mood"
)

func track(name, artist string, valence float32) clustering.Track {
	return clustering.Track{
		ID:           name,
		Name:         name,
		Artist:       artist,
		Popularity:   50,
		Valence:      clustering.F32(valence),
		Energy:       clustering.F32(0.5),
		Danceability: clustering.F32(0.5),
		Acousticness: clustering.F32(0.4),
		Tempo:        clustering.F32(110),
	}
}

// valenceCatalog returns a single-cluster catalog of 20 tracks with valence
// 0.05 through 1.0.
func valenceCatalog(t *testing.T, extra ...clustering.Track) *clustering.Catalog {
	t.Helper()
	var tracks []clustering.Track
	for i := 1; i <= 20; i++ {
		tracks = append(tracks, track(fmt.Sprintf("Song %02d", i), "Artist", float32(i)*0.05))
	}
	tracks = append(tracks, extra...)
	cat, err := clustering.BuildCatalog(tracks, 1)
	if err != nil {
		t.Fatalf("BuildCatalog() error = %v", err)
	}
	return cat
}

func assertDistinct(t *testing.T, recs []Recommendation) {
	t.Helper()
	seen := make(map[string]bool)
	for _, r := range recs {
		if seen[r.Track.Name] {
			t.Errorf("duplicate track %q", r.Track.Name)
		}
		seen[r.Track.Name] = true
	}
}

func TestClusterIndex(t *testing.T) {
	tests := []struct {
		s    float64
		k    int
		want int
	}{
		{-1, 7, 0},
		{1, 7, 6},
		{0, 7, 3},
		{-0.5, 4, 1},
		{2, 4, 3},
		{0.3, 0, 0},
	}
	for _, tt := range tests {
		if got := ClusterIndex(tt.s, tt.k); got != tt.want {
			t.Errorf("ClusterIndex(%v, %d) = %d, want %d", tt.s, tt.k, got, tt.want)
		}
	}
}

func TestEmotionFromSentiment(t *testing.T) {
	tests := []struct {
		s    float64
		want mood.Emotion
	}{
		{0.9, mood.Joy},
		{0.4, mood.Optimism},
		{0.0, mood.Neutral},
		{-0.2, mood.Sadness},
		{-0.8, mood.Sadness},
	}
	for _, tt := range tests {
		if got := EmotionFromSentiment(tt.s); got != tt.want {
			t.Errorf("EmotionFromSentiment(%v) = %s, want %s", tt.s, got, tt.want)
		}
	}
}

func TestLinspace(t *testing.T) {
	if got := linspace(0.3, 0.9, 1); len(got) != 1 || got[0] != 0.3 {
		t.Errorf("linspace(n=1) = %v", got)
	}
	if got := linspace(0, 1, 0); got != nil {
		t.Errorf("linspace(n=0) = %v", got)
	}
	got := linspace(0, 1, 3)
	want := []float64{0, 0.5, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("linspace(0, 1, 3) = %v, want %v", got, want)
			break
		}
	}
}

func TestSentimentValenceRange(t *testing.T) {
	tests := []struct {
		s                  float64
		wantStart, wantEnd float64
	}{
		{-1, 0.2, 0.6},
		{-0.5, 0.35, 0.7},
		{0, 0.5, 0.8},
		{0.5, 0.6, 0.85},
		{0.1, 0.52, 0.82},
	}
	for _, tt := range tests {
		start, end := sentimentValenceRange(tt.s)
		if math.Abs(start-tt.wantStart) > 1e-9 || math.Abs(end-tt.wantEnd) > 1e-9 {
			t.Errorf("sentimentValenceRange(%v) = (%v, %v), want (%v, %v)", tt.s, start, end, tt.wantStart, tt.wantEnd)
		}
	}
}

func TestByEmotion(t *testing.T) {
	cat := valenceCatalog(t)

	recs, err := ByEmotion(cat, mood.Joy, 0.5, Options{NumSongs: 8})
	if err != nil {
		t.Fatalf("ByEmotion() error = %v", err)
	}
	if len(recs) != 8 {
		t.Fatalf("len = %d, want 8", len(recs))
	}
	assertDistinct(t, recs)

	for i, r := range recs {
		if i > 0 && r.TargetValence < recs[i-1].TargetValence {
			t.Errorf("target valence falls at %d: %v after %v", i, r.TargetValence, recs[i-1].TargetValence)
		}
		if d := math.Abs(r.Track.Features().Valence - r.TargetValence); d > 0.15 {
			t.Errorf("rec %d valence %.2f is %.2f from target %.2f", i, r.Track.Features().Valence, d, r.TargetValence)
		}
	}
	if first := recs[0].TargetValence; math.Abs(first-0.675) > 1e-9 {
		t.Errorf("first target = %v, want 0.675", first)
	}
	if last := recs[len(recs)-1].TargetValence; math.Abs(last-0.9) > 1e-9 {
		t.Errorf("last target = %v, want 0.9", last)
	}
}

func TestByEmotion_CapsAtCatalogSize(t *testing.T) {
	cat := valenceCatalog(t)
	recs, err := ByEmotion(cat, mood.Sadness, -0.6, Options{NumSongs: 50})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 20 {
		t.Errorf("len = %d, want 20", len(recs))
	}
	assertDistinct(t, recs)
}

func TestEmptyCatalog(t *testing.T) {
	if _, err := ByEmotion(nil, mood.Joy, 0.5, Options{}); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("ByEmotion error = %v, want ErrEmptyCatalog", err)
	}
	if _, err := BySentiment(nil, 0.5, Options{}); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("BySentiment error = %v, want ErrEmptyCatalog", err)
	}
	if _, err := ByTargets(&clustering.Catalog{}, clustering.Features{}, Options{}); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("ByTargets error = %v, want ErrEmptyCatalog", err)
	}
	if _, err := Recommend(nil, Input{Sentiment: 0.1}, Options{}); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("Recommend error = %v, want ErrEmptyCatalog", err)
	}
}

func TestOptionsBoost(t *testing.T) {
	opts := Options{
		PreferredTracks:  []string{"  Yellow "},
		PreferredArtists: []string{"radiohead", ""},
	}
	tests := []struct {
		name, artist string
		want         float64
	}{
		{"Yellow Submarine", "The Beatles", 1.2},
		{"Creep", "Radiohead", 1.2},
		{"Creep", "Someone Else", 1.0},
	}
	for _, tt := range tests {
		if got := opts.boost(track(tt.name, tt.artist, 0.5)); got != tt.want {
			t.Errorf("boost(%q, %q) = %v, want %v", tt.name, tt.artist, got, tt.want)
		}
	}
	if got := (Options{}).boost(track("x", "y", 0.5)); got != 1.0 {
		t.Errorf("boost without preferences = %v", got)
	}
}

func TestBySentiment(t *testing.T) {
	cat := valenceCatalog(t)

	recs, err := BySentiment(cat, -0.5, Options{NumSongs: 6})
	if err != nil {
		t.Fatalf("BySentiment() error = %v", err)
	}
	if len(recs) != 6 {
		t.Fatalf("len = %d, want 6", len(recs))
	}
	assertDistinct(t, recs)
	if first := recs[0].TargetValence; math.Abs(first-0.35) > 1e-9 {
		t.Errorf("first target = %v, want 0.35", first)
	}
}

func TestBySentiment_Preferences(t *testing.T) {
	fav := track("Favorite", "Loved Band", 0.1)
	fav.Popularity = 90
	cat := valenceCatalog(t, fav)

	recs, err := BySentiment(cat, 0, Options{NumSongs: 5, PreferredArtists: []string{"loved band"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) == 0 || recs[0].Track.Name != "Favorite" {
		t.Errorf("preferred track should rank first, got %+v", recs)
	}
}

func TestLiftEnding(t *testing.T) {
	flat := []clustering.Track{
		track("a", "x", 0.6), track("b", "x", 0.6), track("c", "x", 0.6), track("d", "x", 0.6),
	}
	happy := []clustering.Track{track("h1", "y", 0.95), track("h2", "y", 0.9), track("h3", "y", 0.75)}
	cat, err := clustering.BuildCatalog(append(append([]clustering.Track{}, flat...), happy...), 1)
	if err != nil {
		t.Fatal(err)
	}

	var recs []Recommendation
	for _, tr := range flat {
		recs = append(recs, Recommendation{Track: tr})
	}
	recs = liftEnding(cat, recs)

	if got := recs[3].Track.Name; got != "h1" {
		t.Errorf("last track = %s, want h1", got)
	}
	if got := recs[2].Track.Name; got != "h2" {
		t.Errorf("third track = %s, want h2", got)
	}
	if got := recs[1].Track.Name; got != "b" {
		t.Errorf("second track = %s, want b (at most half replaced)", got)
	}

	rising := []Recommendation{{Track: track("lo", "x", 0.5)}, {Track: track("hi", "x", 0.8)}}
	if got := liftEnding(cat, rising); got[1].Track.Name != "hi" {
		t.Errorf("rising playlist should be untouched, got %s", got[1].Track.Name)
	}
}

func TestSentimentTargets(t *testing.T) {
	tests := []struct {
		s        float64
		emotion  mood.Emotion
		wantVal  float64
		wantTemp float64
	}{
		{0.8, "", 0.85, 130},
		{0.3, "", 0.7, 115},
		{0, "", 0.5, 100},
		{-0.3, "", 0.35, 90},
		{-0.9, "", 0.25, 80},
		{0.8, mood.Joy, (0.85 + 0.775) / 2, (130 + 117.5) / 2},
		{0, "not-an-emotion", 0.5, 100},
	}
	for _, tt := range tests {
		got := SentimentTargets(tt.s, tt.emotion)
		if math.Abs(got.Valence-tt.wantVal) > 1e-9 || math.Abs(got.Tempo-tt.wantTemp) > 1e-9 {
			t.Errorf("SentimentTargets(%v, %q) = valence %v tempo %v, want %v %v", tt.s, tt.emotion, got.Valence, got.Tempo, tt.wantVal, tt.wantTemp)
		}
		if got.Acousticness != 0.4 {
			t.Errorf("acousticness = %v, want 0.4", got.Acousticness)
		}
	}
}

func TestByTargets(t *testing.T) {
	cat := valenceCatalog(t)

	recs, err := ByTargets(cat, SentimentTargets(0.8, mood.Joy), Options{NumSongs: 5})
	if err != nil {
		t.Fatalf("ByTargets() error = %v", err)
	}
	if len(recs) != 5 {
		t.Fatalf("len = %d, want 5", len(recs))
	}
	assertDistinct(t, recs)
	for i := 1; i < len(recs); i++ {
		if recs[i].Score > recs[i-1].Score {
			t.Errorf("scores not descending at %d", i)
		}
	}
	if v := recs[0].Track.Features().Valence; v < 0.7 {
		t.Errorf("top pick valence = %.2f, want a happy track", v)
	}
}

func TestRecommend(t *testing.T) {
	cat := valenceCatalog(t)

	res, err := Recommend(cat, Input{Emotion: mood.Love, Sentiment: 0.6}, Options{NumSongs: 3})
	if err != nil {
		t.Fatal(err)
	}
	if res.Method != MethodEmotion || res.Emotion != mood.Love || len(res.Tracks) != 3 {
		t.Errorf("emotion path = %s %s %d tracks", res.Method, res.Emotion, len(res.Tracks))
	}

	res, err = Recommend(cat, Input{Sentiment: -0.7}, Options{NumSongs: 3})
	if err != nil {
		t.Fatal(err)
	}
	if res.Method != MethodSentiment || res.Emotion != mood.Sadness {
		t.Errorf("sentiment path = %s %s", res.Method, res.Emotion)
	}
}
