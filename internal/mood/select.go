package mood

import (
	"strings"
)

const (
	primaryCap         = 0.96
	secondaryThreshold = 0.15
	secondaryCount     = 3
	fallbackScore      = 0.5
)

// selection is the outcome of picking the primary and secondary emotions.
type selection struct {
	primary    Emotion
	confidence float64
	secondary  []EmotionScore
	fallback   bool
}

// selectEmotions picks the primary emotion, honoring a pinned anchor emotion,
// and up to three secondary emotions above threshold.
func selectEmotions(scores Scores, pinned Emotion) selection {
	ranked := scores.Ranked()
	if pinned != "" {
		if v, ok := scores[pinned]; ok && v > 0 {
			reordered := []EmotionScore{{Emotion: pinned, Score: v}}
			for _, es := range ranked {
				if es.Emotion != pinned {
					reordered = append(reordered, es)
				}
			}
			ranked = reordered
		}
	}

	sel := selection{
		primary:    ranked[0].Emotion,
		confidence: min(primaryCap, ranked[0].Score),
	}
	for _, es := range ranked[1:min(len(ranked), 1+secondaryCount)] {
		if es.Score > secondaryThreshold {
			sel.secondary = append(sel.secondary, es)
		}
	}
	return sel
}

// fallbackEmotion runs the keyword-only path used when no pattern fired.
func fallbackEmotion(n *NormalizedText, contexts []Context) selection {
	lower := n.Lower
	scores := make(Scores)
	for _, fk := range fallbackKeywords {
		hits := 0
		for _, kw := range fk.keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > 0 {
			scores[fk.emotion] = min(0.8, 0.3+0.3*float64(hits))
		}
	}

	defaults := map[Context]EmotionScore{
		MentalHealth: {Sadness, 0.6},
		WorkStress:   {Stress, 0.7},
		Tiredness:    {Exhaustion, 0.7},
	}
	for _, ctx := range contexts {
		d, ok := defaults[ctx]
		if !ok {
			continue
		}
		if _, seen := scores[d.Emotion]; !seen {
			scores[d.Emotion] = d.Score
		}
	}

	for _, c := range n.Colloquialisms {
		scores[c.Emotion] = max(scores[c.Emotion], 0.8)
	}

	if len(scores) == 0 {
		return selection{primary: Neutral, confidence: fallbackScore, fallback: true}
	}
	best := scores.Ranked()[0]
	return selection{primary: best.Emotion, confidence: best.Score, fallback: true}
}
