package mood

import (
	"slices"
)

// Scores maps emotions to accumulated, non-normalized scores.
type Scores map[Emotion]float64

// add increases e by v.
func (s Scores) add(e Emotion, v float64) {
	s[e] += v
}

// reduce lowers e by v with a floor of zero.
func (s Scores) reduce(e Emotion, v float64) {
	s[e] = max(0, s[e]-v)
}

// raise lifts e to at least floor. It reports whether the score changed.
func (s Scores) raise(e Emotion, floor float64) bool {
	if s[e] >= floor {
		return false
	}
	s[e] = floor
	return true
}

// total sums every score.
func (s Scores) total() float64 {
	var sum float64
	for _, e := range Emotions {
		sum += s[e]
	}
	return sum
}

// maxScore returns the highest score, or 0 for an empty map.
func (s Scores) maxScore() float64 {
	var best float64
	for _, v := range s {
		best = max(best, v)
	}
	return best
}

// prune drops zero and negative entries.
func (s Scores) prune() {
	for e, v := range s {
		if v <= 0 {
			delete(s, e)
		}
	}
}

// countAbove counts the scores strictly above threshold.
func (s Scores) countAbove(threshold float64) int {
	n := 0
	for _, v := range s {
		if v > threshold {
			n++
		}
	}
	return n
}

// Ranked returns the scored emotions sorted by descending score, ties broken
// by canonical order.
func (s Scores) Ranked() []EmotionScore {
	out := make([]EmotionScore, 0, len(s))
	for _, e := range Emotions {
		if v, ok := s[e]; ok && v > 0 {
			out = append(out, EmotionScore{Emotion: e, Score: v})
		}
	}
	slices.SortStableFunc(out, func(a, b EmotionScore) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return out
}

// Clone returns a copy of s.
func (s Scores) Clone() Scores {
	out := make(Scores, len(s))
	for e, v := range s {
		out[e] = v
	}
	return out
}

// EmotionScore pairs an emotion with its score.
type EmotionScore struct {
	Emotion Emotion `json:"emotion"`
	Score   float64 `json:"score"`
}
