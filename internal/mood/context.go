package mood

import (
	"fmt"
	"strings"
)

const (
	keywordFloor     = 0.1
	contextPhraseHit = 0.4
	contextThreshold = 0.15
)

// DetectContexts scores each context from keyword density and phrase matches
// and returns the detected contexts in canonical order with their scores.
func (lx *Lexicon) DetectContexts(n *NormalizedText) ([]Context, map[Context]float64) {
	lower := n.Lower
	scores := make(map[Context]float64)

	for _, ctx := range Contexts {
		var s float64
		for _, kw := range lx.keywords[ctx] {
			if kw.re.MatchString(lower) {
				s += kw.weight
			}
		}
		if s > keywordFloor {
			scores[ctx] = s
		}
	}

	for _, ctx := range Contexts {
		for _, re := range lx.contextPhrases[ctx] {
			if re.MatchString(lower) {
				scores[ctx] += contextPhraseHit
			}
		}
	}

	if n.HasTemporal() {
		switch {
		case containsAny(lower, improvementWords):
			scores[MentalHealth] += 0.2
			scores[Achievement] += 0.1
		case containsAny(lower, declineWords):
			scores[MentalHealth] += 0.3
		}
	}

	for _, c := range n.Colloquialisms {
		switch c.Emotion {
		case Sadness, Fear, Stress:
			scores[MentalHealth] += 0.2
		case Exhaustion:
			scores[Tiredness] += 0.3
			scores[WorkStress] += 0.1
		}
	}

	var detected []Context
	for _, ctx := range Contexts {
		if scores[ctx] > contextThreshold {
			detected = append(detected, ctx)
		}
	}
	return detected, scores
}

var (
	mentalHealthPositive = []string{
		"making progress", "therapy helping", "getting better", "recovery",
		"improved", "medication working", "feeling hopeful",
	}
	loveIndicators = []string{"love", "connected", "supportive", "mean everything", "soulmate", "adore"}
)

// applyContextBoosts adds the fixed per-context emotion boosts and returns a
// description of each boost applied.
func applyContextBoosts(lower string, contexts []Context, scores Scores) []string {
	var applied []string
	for _, ctx := range contexts {
		switch ctx {
		case WorkStress:
			scores.add(Stress, 0.6)
			scores.add(Exhaustion, 0.3)
			applied = append(applied, "work_stress -> stress(+0.6), exhaustion(+0.3)")
		case Tiredness:
			scores.add(Exhaustion, 0.7)
			scores.add(Stress, 0.4)
			applied = append(applied, "exhaustion -> exhaustion(+0.7), stress(+0.4)")
		case MentalHealth:
			if containsAny(lower, mentalHealthPositive) {
				scores.add(Optimism, 0.7)
				scores.add(Joy, 0.3)
				scores.reduce(Sadness, 0.5)
				scores.reduce(Fear, 0.4)
				applied = append(applied, "mental_health(positive) -> optimism(+0.7), joy(+0.3)")
			} else {
				scores.add(Sadness, 0.5)
				scores.add(Fear, 0.3)
				applied = append(applied, "mental_health(negative) -> sadness(+0.5), fear(+0.3)")
			}
		case Achievement:
			scores.add(Joy, 0.6)
			scores.add(Excitement, 0.4)
			scores.add(Optimism, 0.2)
			applied = append(applied, "achievement -> joy(+0.6), excitement(+0.4), optimism(+0.2)")
		case Relationships:
			if containsAny(lower, loveIndicators) {
				scores.add(Love, 0.6)
				scores.add(Joy, 0.3)
				applied = append(applied, "relationships(positive) -> love(+0.6), joy(+0.3)")
			} else {
				scores.add(Sadness, 0.4)
				applied = append(applied, "relationships(negative) -> sadness(+0.4)")
			}
		}
	}
	return applied
}

// applyAnchor raises the first matching anchor's emotion to its floor.
func applyAnchor(lower string, scores Scores) (Emotion, string, bool) {
	a, ok := findAnchor(lower)
	if !ok {
		return "", "", false
	}
	scores.raise(a.emotion, a.floor)
	return a.emotion, fmt.Sprintf("%s -> %s(%.2f)", a.name, a.emotion, a.floor), true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
