package recommend

import (
	"math"
	"slices"

	"github.com/justestif/go-moodtune/internal/clustering"
)

const (
	// minMoodIncrease is the valence rise, in percent, a positive playlist
	// must show before the correction kicks in.
	minMoodIncrease = 5.0
	happyValence    = 0.7
	maxReplacements = 3
)

// BySentiment is the sentiment-only path. It draws from the cluster whose
// valence rank matches the sentiment, and for positive input makes sure the
// playlist ends noticeably happier than it starts.
func BySentiment(cat *clustering.Catalog, sentiment float64, opts Options) ([]Recommendation, error) {
	if err := checkCatalog(cat); err != nil {
		return nil, err
	}

	k := len(cat.Clusters)
	pool := cat.TracksIn(ClusterIndex(sentiment, k))
	if len(pool) == 0 {
		pool = cat.Tracks
	}

	start, end := sentimentValenceRange(sentiment)
	n := min(opts.numSongs(), len(pool))

	var recs []Recommendation
	if opts.hasPreferences() {
		recs = rankByPreference(pool, (start+end)/2, n, opts)
	} else {
		recs = progressive(pool, start, end, n)
	}

	if sentiment > 0 {
		recs = liftEnding(cat, recs)
	}
	return recs, nil
}

// sentimentValenceRange returns the valence span for a sentiment band.
func sentimentValenceRange(s float64) (float64, float64) {
	var start, end float64
	switch {
	case s <= -0.75:
		start = max(0.15, 0.3*s+0.5)
		end = min(0.75, start+0.4)
	case s <= -0.25:
		start = max(0.25, 0.3*s+0.5)
		end = min(0.8, start+0.35)
	case s <= 0.25:
		start = max(0.4, 0.2*s+0.5)
		end = min(0.85, start+0.3)
	default:
		start = max(0.6, 0.15*s+0.5)
		end = min(0.9, start+0.25)
	}
	if s > 0 {
		start = max(0.5, start)
		end = max(start+0.2, end)
	}
	return start, end
}

func progressive(pool []clustering.Track, start, end float64, n int) []Recommendation {
	used := make(map[string]bool, n)
	recs := make([]Recommendation, 0, n)
	for _, tv := range linspace(start, end, n) {
		i, score := pickBest(pool, used, func(t clustering.Track) float64 {
			f := t.Features()
			return (1 - math.Abs(f.Valence-tv)) + f.Energy*0.1
		})
		if i < 0 {
			break
		}
		used[pool[i].Name] = true
		recs = append(recs, Recommendation{Track: pool[i], Score: score, TargetValence: tv})
	}
	return recs
}

// rankByPreference scores the pool once, weighting preference matches,
// popularity and closeness to the band's middle valence.
func rankByPreference(pool []clustering.Track, mid float64, n int, opts Options) []Recommendation {
	scored := make([]Recommendation, 0, len(pool))
	for _, t := range pool {
		f := t.Features()
		score := opts.boost(t)*0.4 + float64(t.Popularity)/100*0.3 + (1-math.Abs(f.Valence-mid))*0.3
		scored = append(scored, Recommendation{Track: t, Score: score, TargetValence: mid})
	}
	slices.SortStableFunc(scored, byScoreDesc)

	used := make(map[string]bool, n)
	recs := make([]Recommendation, 0, n)
	for _, r := range scored {
		if len(recs) == n {
			break
		}
		if used[r.Track.Name] {
			continue
		}
		used[r.Track.Name] = true
		recs = append(recs, r)
	}
	return recs
}

// liftEnding replaces tracks at the end of a flat playlist with the happiest
// tracks of the top cluster.
func liftEnding(cat *clustering.Catalog, recs []Recommendation) []Recommendation {
	if len(recs) < 2 {
		return recs
	}
	first := recs[0].Track.Features().Valence
	last := recs[len(recs)-1].Track.Features().Valence
	if first > 0 && (last-first)/first*100 >= minMoodIncrease {
		return recs
	}

	used := make(map[string]bool, len(recs))
	for _, r := range recs {
		used[r.Track.Name] = true
	}
	var happy []clustering.Track
	for _, t := range cat.TracksIn(len(cat.Clusters) - 1) {
		if !used[t.Name] && t.Features().Valence > happyValence {
			happy = append(happy, t)
		}
	}
	slices.SortStableFunc(happy, func(a, b clustering.Track) int {
		return cmpDesc(a.Features().Valence, b.Features().Valence)
	})

	replace := min(maxReplacements, len(recs)/2, len(happy))
	for i := 0; i < replace; i++ {
		t := happy[i]
		if used[t.Name] {
			continue
		}
		used[t.Name] = true
		v := t.Features().Valence
		recs[len(recs)-1-i] = Recommendation{Track: t, Score: v, TargetValence: v}
	}
	return recs
}

func byScoreDesc(a, b Recommendation) int {
	return cmpDesc(a.Score, b.Score)
}

func cmpDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}
