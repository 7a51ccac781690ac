// Package recommend selects tracks from a clustered catalog to match a mood.
package recommend

import (
	"errors"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/justestif/go-moodtune/internal/clustering"
	"github.com/justestif/go-moodtune/internal/mood"
)

// DefaultNumSongs is the playlist length used when none is requested.
const DefaultNumSongs = 10

// preferenceBoost multiplies the score of tracks matching user preferences.
const preferenceBoost = 1.2

// ErrEmptyCatalog is returned when there are no tracks to recommend from.
var ErrEmptyCatalog = errors.New("catalog has no tracks")

// Method names the selection strategy that produced a recommendation.
type Method string

const (
	MethodEmotion   Method = "emotion_based"
	MethodSentiment Method = "sentiment_based"
	MethodTargets   Method = "target_based"
)

// Options tunes a recommendation.
type Options struct {
	NumSongs         int
	PreferredTracks  []string // matched as case-insensitive substrings of the track name
	PreferredArtists []string // matched as case-insensitive substrings of the artist
}

func (o Options) numSongs() int {
	if o.NumSongs <= 0 {
		return DefaultNumSongs
	}
	return o.NumSongs
}

func (o Options) hasPreferences() bool {
	return len(o.PreferredTracks) > 0 || len(o.PreferredArtists) > 0
}

// boost returns the preference multiplier for t.
func (o Options) boost(t clustering.Track) float64 {
	name := strings.ToLower(t.Name)
	for _, p := range o.PreferredTracks {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" && strings.Contains(name, p) {
			return preferenceBoost
		}
	}
	artist := strings.ToLower(t.Artist)
	for _, p := range o.PreferredArtists {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" && strings.Contains(artist, p) {
			return preferenceBoost
		}
	}
	return 1.0
}

// Recommendation is one selected track.
type Recommendation struct {
	Track         clustering.Track
	Score         float64
	TargetValence float64
}

// Result is an ordered playlist and how it was chosen.
type Result struct {
	Method    Method
	Emotion   mood.Emotion
	Sentiment float64
	Tracks    []Recommendation
}

// Input is the mood to recommend for. Emotion is empty when no engine
// analysis is available, in which case only Sentiment is used.
type Input struct {
	Emotion   mood.Emotion
	Sentiment float64
}

// HasAnalysis reports whether an engine emotion is present.
func (in Input) HasAnalysis() bool {
	return in.Emotion != ""
}

// Recommend picks the emotion-based path when an engine analysis is
// available and falls back to the legacy sentiment bands otherwise.
func Recommend(cat *clustering.Catalog, in Input, opts Options) (Result, error) {
	if in.HasAnalysis() {
		recs, err := ByEmotion(cat, in.Emotion, in.Sentiment, opts)
		if err != nil {
			return Result{}, err
		}
		return Result{Method: MethodEmotion, Emotion: in.Emotion, Sentiment: in.Sentiment, Tracks: recs}, nil
	}

	recs, err := BySentiment(cat, in.Sentiment, opts)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Method:    MethodSentiment,
		Emotion:   EmotionFromSentiment(in.Sentiment),
		Sentiment: in.Sentiment,
		Tracks:    recs,
	}, nil
}

// EmotionFromSentiment maps a bare sentiment score to a coarse emotion.
func EmotionFromSentiment(s float64) mood.Emotion {
	switch {
	case s > 0.6:
		return mood.Joy
	case s > 0.2:
		return mood.Optimism
	case s > -0.2:
		return mood.Neutral
	default:
		return mood.Sadness
	}
}

// ClusterIndex maps a sentiment in [-1, 1] onto one of k valence-ordered
// clusters.
func ClusterIndex(s float64, k int) int {
	if k <= 0 {
		return 0
	}
	s = max(-1, min(1, s))
	return min(int((s+1)/2*float64(k)), k-1)
}

// linspace returns n evenly spaced values from start to end inclusive.
func linspace(start, end float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{start}
	}
	return floats.Span(make([]float64, n), start, end)
}

// pickBest returns the index of the highest scoring track whose name is not
// yet used, or -1.
func pickBest(tracks []clustering.Track, used map[string]bool, score func(clustering.Track) float64) (int, float64) {
	best, bestScore := -1, 0.0
	for i, t := range tracks {
		if used[t.Name] {
			continue
		}
		if s := score(t); best < 0 || s > bestScore {
			best, bestScore = i, s
		}
	}
	return best, bestScore
}

func checkCatalog(cat *clustering.Catalog) error {
	if cat == nil || cat.Len() == 0 {
		return ErrEmptyCatalog
	}
	return nil
}
