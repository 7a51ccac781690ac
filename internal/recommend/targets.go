package recommend

import (
	"math"
	"slices"

	"github.com/justestif/go-moodtune/internal/clustering"
	"github.com/justestif/go-moodtune/internal/mood"
)

const (
	targetClusters   = 4 // nearest clusters searched by ByTargets
	perClusterTracks = 8
	targetAcoustic   = 0.4
)

// sentimentBand is the audio profile of a sentiment range.
type sentimentBand struct {
	floor                                float64
	valence, energy, danceability, tempo float64
}

// sentimentBands are checked in order; the first with floor <= s applies.
var sentimentBands = []sentimentBand{
	{floor: 0.7, valence: 0.85, energy: 0.8, danceability: 0.85, tempo: 130},
	{floor: 0.3, valence: 0.7, energy: 0.65, danceability: 0.7, tempo: 115},
	{floor: -0.1, valence: 0.5, energy: 0.5, danceability: 0.5, tempo: 100},
	{floor: -0.5, valence: 0.35, energy: 0.4, danceability: 0.4, tempo: 90},
	{floor: math.Inf(-1), valence: 0.25, energy: 0.3, danceability: 0.3, tempo: 80},
}

// SentimentTargets returns the audio profile for a sentiment, averaged with
// the midpoints of the emotion's ranges when an emotion is given.
func SentimentTargets(sentiment float64, emotion mood.Emotion) clustering.Features {
	var band sentimentBand
	for _, b := range sentimentBands {
		if sentiment >= b.floor {
			band = b
			break
		}
	}

	t := clustering.Features{
		Valence:      band.valence,
		Energy:       band.energy,
		Danceability: band.danceability,
		Tempo:        band.tempo,
		Acousticness: targetAcoustic,
	}
	if emotion.Valid() {
		r := mood.AudioRange(emotion)
		t.Valence = (t.Valence + r.Valence.Mid()) / 2
		t.Energy = (t.Energy + r.Energy.Mid()) / 2
		t.Danceability = (t.Danceability + r.Danceability.Mid()) / 2
		t.Tempo = (t.Tempo + r.Tempo.Mid()) / 2
	}
	return t
}

// ByTargets searches the clusters nearest to the target profile, keeps the
// best tracks of each and returns the overall top ranked, distinct by name
// and artist.
func ByTargets(cat *clustering.Catalog, target clustering.Features, opts Options) ([]Recommendation, error) {
	if err := checkCatalog(cat); err != nil {
		return nil, err
	}

	var candidates []Recommendation
	for _, idx := range cat.Nearest(target, targetClusters) {
		var scored []Recommendation
		for _, t := range cat.TracksIn(idx) {
			scored = append(scored, Recommendation{
				Track:         t,
				Score:         targetScore(t, target) * opts.boost(t),
				TargetValence: target.Valence,
			})
		}
		slices.SortStableFunc(scored, byScoreDesc)
		candidates = append(candidates, scored[:min(perClusterTracks, len(scored))]...)
	}
	slices.SortStableFunc(candidates, byScoreDesc)

	type key struct{ name, artist string }
	n := opts.numSongs()
	seen := make(map[key]bool, n)
	recs := make([]Recommendation, 0, n)
	for _, c := range candidates {
		if len(recs) == n {
			break
		}
		k := key{c.Track.Name, c.Track.Artist}
		if seen[k] {
			continue
		}
		seen[k] = true
		recs = append(recs, c)
	}
	return recs, nil
}

// targetScore blends feature similarity (60%), popularity (20%) and a
// bonus for tracks at least nearly as positive as the target (20%).
func targetScore(t clustering.Track, target clustering.Features) float64 {
	f := t.Features()
	pop := float64(t.Popularity) / 100
	sim := (1-math.Abs(f.Valence-target.Valence))*0.35 +
		(1-math.Abs(f.Energy-target.Energy))*0.25 +
		(1-math.Abs(f.Danceability-target.Danceability))*0.15 +
		(1-math.Abs((f.Tempo-target.Tempo)/100))*0.1 +
		(1-math.Abs(f.Acousticness-target.Acousticness))*0.08 +
		pop*0.07

	var lift float64
	if f.Valence > target.Valence*0.9 {
		lift = 0.1
	}
	return sim*0.6 + pop*0.2 + lift*0.2
}
