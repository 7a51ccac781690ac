package clustering

import (
	"math"

	"github.com/justestif/go-moodtune/internal/mood"
)

// Quadrant thresholds on the raw centroid. Values equal to a threshold
// count as low.
const (
	energySplit   = 0.6
	valenceSplit  = 0.5
	acousticSplit = 0.6

	// tempoScale brings BPM into the range of the other features when
	// comparing a centroid with emotion profiles.
	tempoScale = 200.0
)

type quadrant struct {
	name        string
	description string
}

// quadrants is indexed by [high energy][high valence].
var quadrants = [2][2]quadrant{
	{
		{"Reflective & Melancholy", "Contemplative and introspective, for quiet moments"},
		{"Chill & Happy", "Relaxed and uplifting, for winding down"},
	},
	{
		{"Intense & Dark", "Driving energy with darker emotional tones"},
		{"Upbeat Party", "High-energy, positive vibes for dancing"},
	},
}

func quadrantOf(c Features) quadrant {
	return quadrants[btoi(c.Energy > energySplit)][btoi(c.Valence > valenceSplit)]
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

// moodName names a centroid by its energy/valence quadrant and marks
// acoustic clusters.
func moodName(c Features) string {
	name := quadrantOf(c).name
	if c.Acousticness > acousticSplit {
		name += " (Acoustic)"
	}
	return name
}

// ClosestEmotion returns the base emotion whose audio profile midpoints lie
// nearest to the centroid. Ties keep the canonical emotion order.
func ClosestEmotion(c Features) mood.Emotion {
	best, bestDist := mood.Neutral, math.Inf(1)
	for _, e := range mood.Emotions {
		if e.Compound() {
			continue
		}
		r := mood.AudioRange(e)
		d := math.Hypot(
			math.Hypot(c.Valence-r.Valence.Mid(), c.Energy-r.Energy.Mid()),
			math.Hypot(
				math.Hypot(c.Danceability-r.Danceability.Mid(), c.Acousticness-r.Acousticness.Mid()),
				(c.Tempo-r.Tempo.Mid())/tempoScale,
			),
		)
		if d < bestDist {
			best, bestDist = e, d
		}
	}
	return best
}

// MoodCategory describes a cluster for display.
type MoodCategory struct {
	Name        string
	Emotion     mood.Emotion
	Energy      float64
	Valence     float64
	Description string
}

// Category returns the display category of a centroid.
func Category(c Features) MoodCategory {
	return MoodCategory{
		Name:        moodName(c),
		Emotion:     ClosestEmotion(c),
		Energy:      c.Energy,
		Valence:     c.Valence,
		Description: quadrantOf(c).description,
	}
}
