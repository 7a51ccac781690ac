package mood

import (
	"strings"
)

const (
	colloquialScore   = 0.9
	patternScoreCap   = 0.95
	negationBoost     = 0.7
	intensifierWindow = 20
	normalizeAbove    = 1.5
	normalizeTarget   = 1.2
	conflictRatio     = 1.2
	conflictDamping   = 0.7
)

// ScorePatterns scores every emotion against the lowercased original text.
// The returned map holds only positive scores.
func (lx *Lexicon) ScorePatterns(n *NormalizedText) Scores {
	lower := n.Lower
	scores := make(Scores)

	for _, c := range n.Colloquialisms {
		scores.add(c.Emotion, colloquialScore)
	}

	// A matching pattern set replaces the colloquial seed for its emotion.
	for _, e := range Emotions {
		var total float64
		for _, re := range lx.patterns[e] {
			locs := re.FindAllStringIndex(lower, -1)
			if len(locs) == 0 {
				continue
			}
			base := min(0.8, 0.3+float64(len(locs))*0.15)
			for _, loc := range locs {
				window := lower[max(0, loc[0]-intensifierWindow):min(len(lower), loc[1]+intensifierWindow)]
				mult := 1.0
				for _, in := range n.Intensifiers {
					if strings.Contains(window, in.Modifier) {
						mult = max(mult, in.Multiplier)
					}
				}
				total += base * mult
			}
		}
		if total > 0 {
			scores[e] = min(patternScoreCap, total)
		}
	}

	for _, np := range lx.negationPhrase {
		if strings.Contains(lower, np.phrase) {
			scores.add(np.emotion, negationBoost)
		}
	}
	lx.invertNegated(lower, scores)

	for _, r := range lx.complexRules {
		for _, re := range r.res {
			if !re.MatchString(lower) {
				continue
			}
			for _, a := range r.add {
				scores.add(a.Emotion, a.Score)
			}
			for _, d := range r.reduce {
				scores.reduce(d.Emotion, d.Score)
			}
		}
	}

	if n.HasTemporal() {
		for _, p := range lx.progression {
			if p.re.MatchString(lower) {
				scores.add(p.emotion, p.boost)
			}
		}
	}

	if total := scores.total(); total > normalizeAbove {
		f := normalizeTarget / total
		for e := range scores {
			scores[e] *= f
		}
	}

	resolveConflicts(scores)
	scores.prune()
	return scores
}

// invertNegated flips emotion words that follow a negation within 50
// characters: a negated positive word feeds sadness, a negated negative word
// feeds optimism.
func (lx *Lexicon) invertNegated(lower string, scores Scores) {
	for _, re := range lx.genericNegation {
		for _, m := range re.FindAllString(lower, -1) {
			word := lx.emotionWord.FindString(m)
			switch word {
			case "happy", "excited":
				scores.add(Sadness, 0.6)
				scores.reduce(Joy, 0.7)
				scores.reduce(Excitement, 0.7)
			case "sad":
				scores.add(Optimism, 0.5)
				scores.reduce(Sadness, 0.6)
			case "worried", "stressed":
				scores.add(Optimism, 0.4)
				scores.reduce(Fear, 0.5)
				scores.reduce(Stress, 0.5)
			}
		}
	}
}

// resolveConflicts damps the weaker side of each antagonistic group pair when
// the stronger side exceeds it by more than 20%.
func resolveConflicts(scores Scores) {
	sum := func(es []Emotion) float64 {
		var s float64
		for _, e := range es {
			s += scores[e]
		}
		return s
	}
	damp := func(es []Emotion) {
		for _, e := range es {
			if _, ok := scores[e]; ok {
				scores[e] *= conflictDamping
			}
		}
	}
	for _, g := range conflictGroups {
		left, right := sum(g.left), sum(g.right)
		if left <= 0 || right <= 0 {
			continue
		}
		switch {
		case left > right*conflictRatio:
			damp(g.right)
		case right > left*conflictRatio:
			damp(g.left)
		}
	}
}
