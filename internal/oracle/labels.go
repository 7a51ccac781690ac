package oracle

import (
	"strings"

	"github.com/justestif/go-moodtune/internal/mood"
)

// labelAliases maps classifier vocabularies (sentiment models, the
// seven-class emotion model and the go-emotions set) onto engine emotions.
var labelAliases = map[string]mood.Emotion{
	"happiness": mood.Joy,
	"happy":     mood.Joy,
	"positive":  mood.Joy,
	"negative":  mood.Sadness,

	"worried": mood.Fear,
	"anxious": mood.Fear,
	"anxiety": mood.Fear,

	"frustrated": mood.Anger,
	"mad":        mood.Anger,
	"irritated":  mood.Anger,

	"tired":       mood.Exhaustion,
	"exhausted":   mood.Exhaustion,
	"overwhelmed": mood.Stress,
	"stressed":    mood.Stress,

	"excited":      mood.Excitement,
	"enthusiastic": mood.Excitement,
	"confident":    mood.Optimism,
	"hopeful":      mood.Optimism,
	"romantic":     mood.Love,
	"affection":    mood.Love,

	"admiration":     mood.Optimism,
	"approval":       mood.Optimism,
	"caring":         mood.Love,
	"desire":         mood.Love,
	"disapproval":    mood.Anger,
	"disappointment": mood.Sadness,
	"grief":          mood.Sadness,
	"remorse":        mood.Sadness,
	"embarrassment":  mood.Fear,
	"nervousness":    mood.Fear,
	"gratitude":      mood.Joy,
	"pride":          mood.Joy,
	"relief":         mood.Joy,
	"amusement":      mood.Joy,
	"curiosity":      mood.Neutral,
	"confusion":      mood.Neutral,
	"realization":    mood.Surprise,
}

// NormalizeLabel maps a classifier label to an engine emotion. Unknown labels
// pass through lowercased; callers check Valid before using them.
func NormalizeLabel(label string) mood.Emotion {
	l := strings.ToLower(strings.TrimSpace(label))
	if e, ok := labelAliases[l]; ok {
		return e
	}
	return mood.Emotion(l)
}

// Polarity returns +1 for positive emotions, -1 for negative ones and 0
// otherwise.
func Polarity(e mood.Emotion) int {
	switch e {
	case mood.Joy, mood.Love, mood.Excitement, mood.Optimism, mood.MixedPositive:
		return 1
	}
	if e.Negative() {
		return -1
	}
	return 0
}

// Emotions converts an emotion classifier output into engine emotion scores,
// best first. Labels that map to the same emotion keep the higher score.
// Scores are clamped to [0, 1].
func Emotions(o Output) []mood.EmotionScore {
	var out []mood.EmotionScore
	seen := make(map[mood.Emotion]bool)
	for _, ls := range o.Labeled() {
		e := NormalizeLabel(ls.Label)
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, mood.EmotionScore{Emotion: e, Score: min(max(ls.Score, 0), 1)})
	}
	return out
}
