package mood

import (
	"fmt"
	"strings"
)

// ConfidenceBreakdown explains how the final sentiment and confidence were
// reached.
type ConfidenceBreakdown struct {
	Sentiment     float64             `json:"final_sentiment"`
	Weighted      float64             `json:"weighted_sentiment"`
	Adjustments   float64             `json:"contextual_adjustments"`
	Contributions map[Emotion]float64 `json:"contributions,omitempty"`
	Reasons       []string            `json:"adjustment_reasons"`
	Factors       []string            `json:"confidence_factors"`
	Confidence    float64             `json:"confidence_score"`
	Override      *float64            `json:"literal_override,omitempty"`
}

const (
	baseConfidence = 0.85
	minConfidence  = 0.6
	maxConfidence  = 0.98
)

var strongNegations = []string{"never", "not", "nothing", "nobody"}

var (
	calibrateImprovement = []string{"better", "improved", "progress", "recovery", "healing"}
	calibrateDecline     = []string{"worse", "declining", "deteriorating"}
)

// Calibrate reduces an emotion score map to a bounded sentiment and a
// confidence breakdown.
func (lx *Lexicon) Calibrate(scores Scores, n *NormalizedText, contexts []Context) ConfidenceBreakdown {
	lower := n.Lower
	b := ConfidenceBreakdown{Contributions: make(map[Emotion]float64)}

	var weighted float64
	for _, e := range Emotions {
		w, ok := sentimentWeights[e]
		if !ok || scores[e] <= 0 {
			continue
		}
		c := w * scores[e]
		weighted += c
		b.Contributions[e] = c
	}

	var adjustments float64

	mult := 1.0
	for _, in := range n.Intensifiers {
		switch {
		case in.Multiplier > 1:
			mult = max(mult, in.Multiplier)
			b.Reasons = append(b.Reasons, "Intensity amplifier: "+in.Modifier)
		case in.Multiplier < 1:
			mult = min(mult, in.Multiplier)
			b.Reasons = append(b.Reasons, "Intensity diminisher: "+in.Modifier)
		}
	}
	if abs(weighted) > 0.1 {
		weighted *= mult
		adjustments += (mult - 1) * abs(weighted)
	}

	if len(n.Negations) > 0 {
		var neg float64
		for _, ng := range n.Negations {
			if !containsAny(strings.ToLower(ng.Token), strongNegations) {
				continue
			}
			switch {
			case weighted > 0:
				neg -= 0.3
			case weighted < 0:
				neg += 0.2
			}
		}
		adjustments += neg
		if neg != 0 {
			b.Reasons = append(b.Reasons, fmt.Sprintf("Negation impact: %.2f", neg))
		}
	}

	if n.HasTemporal() {
		switch {
		case containsAny(lower, calibrateImprovement):
			adjustments += 0.25
			b.Reasons = append(b.Reasons, "Positive temporal progression")
		case containsAny(lower, calibrateDecline):
			adjustments -= 0.25
			b.Reasons = append(b.Reasons, "Negative temporal progression")
		}
	}

	for _, pa := range phraseAdjustments {
		if strings.Contains(lower, pa.phrase) {
			adjustments += pa.delta
			b.Reasons = append(b.Reasons, fmt.Sprintf("Phrase '%s': %+.2f", pa.phrase, pa.delta))
		}
	}

	b.Weighted = weighted
	b.Adjustments = adjustments
	sentiment := weighted + adjustments

	if target, ok := lx.literalOverride(lower); ok {
		sentiment = target
		b.Override = &target
		b.Reasons = append(b.Reasons, fmt.Sprintf("Literal override: %.2f", target))
	} else if s, ok := emojiOnlySentiment(lower); ok {
		sentiment = s
		b.Reasons = append(b.Reasons, fmt.Sprintf("Emoji sentiment: %.2f", s))
	}

	bound := sentimentBound(scores)
	sentiment = clamp(sentiment, -bound, bound)

	if lx.therapist.MatchString(strings.TrimSpace(lower)) {
		sentiment = therapistSentiment
		b.Reasons = append(b.Reasons, "Therapist progress anchor -> 0.50")
	}
	b.Sentiment = sentiment

	conf := baseConfidence
	if len(scores) > 0 {
		switch m := scores.maxScore(); {
		case m > 0.8:
			conf += 0.08
			b.Factors = append(b.Factors, "Strong emotion detection")
		case m < 0.3:
			conf -= 0.1
			b.Factors = append(b.Factors, "Weak emotion signals")
		}
	}
	if len(n.Colloquialisms) > 0 {
		conf += 0.05
		b.Factors = append(b.Factors, "Colloquial expressions detected")
	}
	if len(contexts) > 1 {
		conf += 0.03
		b.Factors = append(b.Factors, "Multiple contexts detected")
	}
	if len(n.Negations) > 2 {
		conf -= 0.05
		b.Factors = append(b.Factors, "Multiple negations (ambiguity)")
	}
	b.Confidence = clamp(conf, minConfidence, maxConfidence)

	return b
}

// literalOverride returns the target of the first matching literal override.
func (lx *Lexicon) literalOverride(lower string) (float64, bool) {
	for _, o := range lx.overrides {
		if o.re.MatchString(lower) {
			return o.target, true
		}
	}
	return 0, false
}

// sentimentBound picks the sentiment magnitude limit from the strongest
// emotion score.
func sentimentBound(scores Scores) float64 {
	if len(scores) == 0 {
		return 0.5
	}
	switch m := scores.maxScore(); {
	case m > 0.8:
		return 0.95
	case m > 0.5:
		return 0.85
	default:
		return 0.7
	}
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
