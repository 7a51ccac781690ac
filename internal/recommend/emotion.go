package recommend

import (
	"math"

	"github.com/justestif/go-moodtune/internal/clustering"
	"github.com/justestif/go-moodtune/internal/mood"
)

// ByEmotion builds a playlist whose valence rises gradually from the
// emotion's target toward a lift that depends on sentiment. Each slot takes
// the most similar unused track from the whole catalog.
func ByEmotion(cat *clustering.Catalog, emotion mood.Emotion, sentiment float64, opts Options) ([]Recommendation, error) {
	if err := checkCatalog(cat); err != nil {
		return nil, err
	}

	r := mood.AudioRange(emotion)
	target := clustering.Features{
		Valence:      r.Valence.Mid(),
		Energy:       r.Energy.Mid(),
		Danceability: r.Danceability.Mid(),
		Acousticness: r.Acousticness.Mid(),
		Tempo:        r.Tempo.Mid(),
	}

	start, end := valenceProgression(target.Valence, sentiment)
	n := min(opts.numSongs(), cat.Len())

	used := make(map[string]bool, n)
	recs := make([]Recommendation, 0, n)
	for _, tv := range linspace(start, end, n) {
		t := target
		t.Valence = tv
		i, score := pickBest(cat.Tracks, used, func(tr clustering.Track) float64 {
			return similarity(tr.Features(), t) * opts.boost(tr)
		})
		if i < 0 {
			break
		}
		used[cat.Tracks[i].Name] = true
		recs = append(recs, Recommendation{Track: cat.Tracks[i], Score: score, TargetValence: tv})
	}
	return recs, nil
}

// valenceProgression returns the first and last target valence.
func valenceProgression(base, sentiment float64) (float64, float64) {
	switch {
	case sentiment > 0:
		return max(0.4, base-0.1), min(0.9, base+0.2)
	case sentiment < -0.3:
		return max(0.2, base-0.2), min(0.8, base+0.3)
	default:
		return max(0.35, base-0.1), min(0.75, base+0.2)
	}
}

// similarity weights closeness per feature: valence 0.4, energy 0.25,
// danceability 0.2, tempo 0.1 (per 100 BPM), acousticness 0.05.
func similarity(f, t clustering.Features) float64 {
	return (1-math.Abs(f.Valence-t.Valence))*0.4 +
		(1-math.Abs(f.Energy-t.Energy))*0.25 +
		(1-math.Abs(f.Danceability-t.Danceability))*0.2 +
		(1-math.Abs((f.Tempo-t.Tempo)/100))*0.1 +
		(1-math.Abs(f.Acousticness-t.Acousticness))*0.05
}
