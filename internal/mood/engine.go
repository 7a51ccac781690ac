package mood

import (
	"maps"
	"slices"
	"strings"
)

// Result is the outcome of analyzing one text.
type Result struct {
	Sentiment         float64        `json:"sentiment_score"`
	Confidence        float64        `json:"confidence"`
	Primary           Emotion        `json:"primary_emotion"` // top score unless an Anchor pinned it
	EmotionConfidence float64        `json:"emotion_confidence"`
	Secondary         []EmotionScore `json:"secondary_emotions"`
	AudioTargets      AudioTargets   `json:"audio_targets"`
	Contexts          []Context      `json:"context_detected"`
	NegationDetected  bool           `json:"negation_detected"`
	Intensity         IntensityLevel `json:"intensity_level"`
	MixedEmotions     bool           `json:"mixed_emotions"`
	Temporal          Temporal       `json:"temporal_progression"`

	// Details of the scoring run.
	Scores        Scores              `json:"emotion_scores"`
	ContextBoosts []string            `json:"context_boosts"`
	Anchor        string              `json:"anchor,omitempty"`
	Fallback      bool                `json:"fallback"`
	OracleFused   bool                `json:"oracle_fused"`
	Breakdown     ConfidenceBreakdown `json:"confidence_breakdown"`
	Normalized    *NormalizedText     `json:"preprocessing,omitempty"`
}

// Clone returns a copy of r that shares no slices, maps or pointers with it.
func (r Result) Clone() Result {
	r.Secondary = slices.Clone(r.Secondary)
	r.Contexts = slices.Clone(r.Contexts)
	r.ContextBoosts = slices.Clone(r.ContextBoosts)
	if r.Scores != nil {
		r.Scores = r.Scores.Clone()
	}
	r.Breakdown = r.Breakdown.clone()
	if r.Normalized != nil {
		n := *r.Normalized
		n.Negations = slices.Clone(n.Negations)
		n.Intensifiers = slices.Clone(n.Intensifiers)
		n.Colloquialisms = slices.Clone(n.Colloquialisms)
		n.TemporalMarks = slices.Clone(n.TemporalMarks)
		n.ComplexPhrases = slices.Clone(n.ComplexPhrases)
		r.Normalized = &n
	}
	return r
}

func (b ConfidenceBreakdown) clone() ConfidenceBreakdown {
	b.Contributions = maps.Clone(b.Contributions)
	b.Reasons = slices.Clone(b.Reasons)
	b.Factors = slices.Clone(b.Factors)
	if b.Override != nil {
		v := *b.Override
		b.Override = &v
	}
	return b
}

// Engine runs the analysis pipeline over a compiled Lexicon.
type Engine struct {
	lx *Lexicon
}

// NewEngine compiles the lexicon and returns a ready engine.
func NewEngine() (*Engine, error) {
	lx, err := NewLexicon()
	if err != nil {
		return nil, err
	}
	return &Engine{lx: lx}, nil
}

// MustEngine is like NewEngine but panics on error.
func MustEngine() *Engine {
	e, err := NewEngine()
	if err != nil {
		panic(err)
	}
	return e
}

// Lexicon returns the engine's compiled lexicon.
func (e *Engine) Lexicon() *Lexicon {
	return e.lx
}

// Analyze runs the pattern-only pipeline.
func (e *Engine) Analyze(text string) Result {
	return e.AnalyzeWithOracle(text, nil)
}

// oracleTop is the number of oracle emotions blended into the scores.
const oracleTop = 3

// AnalyzeWithOracle runs the pipeline, blending up to three oracle emotion
// scores into the pattern scores: 60% pattern and 40% oracle for emotions the
// patterns found, 40% oracle otherwise. Oracle scores are clamped to [0, 1]
// and emotions outside the known set are ignored. A nil or empty slice gives the pattern-only result.
func (e *Engine) AnalyzeWithOracle(text string, oracle []EmotionScore) Result {
	if strings.TrimSpace(text) == "" {
		return emptyResult()
	}

	n := e.lx.Normalize(text)
	scores := e.lx.ScorePatterns(n)
	contexts, _ := e.lx.DetectContexts(n)

	fused := false
	for _, o := range oracle[:min(len(oracle), oracleTop)] {
		if !o.Emotion.Valid() {
			continue
		}
		score := clamp(o.Score, 0, 1)
		if v, ok := scores[o.Emotion]; ok {
			scores[o.Emotion] = 0.6*v + 0.4*score
		} else {
			scores[o.Emotion] = 0.4 * score
		}
		fused = true
	}

	var boosts []string
	pinned, anchorDesc, anchored := applyAnchor(n.Lower, scores)
	if anchored {
		boosts = append(boosts, anchorDesc)
	}
	boosts = append(boosts, applyContextBoosts(n.Lower, contexts, scores)...)
	scores.prune()

	var sel selection
	if len(scores) > 0 {
		sel = selectEmotions(scores, pinned)
	} else {
		sel = fallbackEmotion(n, contexts)
	}

	breakdown := e.lx.Calibrate(scores, n, contexts)
	level := intensityLevel(scores.maxScore(), n.Intensifiers)

	r := Result{
		Sentiment:         breakdown.Sentiment,
		Confidence:        breakdown.Confidence,
		Primary:           sel.primary,
		EmotionConfidence: sel.confidence,
		Secondary:         sel.secondary,
		AudioTargets:      targetsFor(sel.primary, level),
		Contexts:          contexts,
		NegationDetected:  len(n.Negations) > 0,
		Intensity:         level,
		MixedEmotions:     scores.countAbove(0.3) > 1,
		Temporal:          temporalProgression(n),
		Scores:            scores,
		ContextBoosts:     boosts,
		Fallback:          sel.fallback,
		OracleFused:       fused,
		Breakdown:         breakdown,
		Normalized:        n,
	}
	if anchored {
		r.Anchor = anchorDesc
	}
	return r
}

// emptyResult is the neutral, zero-confidence answer for blank input.
func emptyResult() Result {
	return Result{
		Sentiment:    0,
		Confidence:   minConfidence,
		Primary:      Neutral,
		AudioTargets: AudioRange(Neutral),
		Intensity:    IntensityLow,
		Temporal:     TemporalNone,
		Scores:       Scores{},
		Breakdown: ConfidenceBreakdown{
			Confidence: minConfidence,
			Reasons:    []string{"Empty input"},
		},
	}
}

func intensityLevel(maxScore float64, mods []Intensifier) IntensityLevel {
	anyAbove := func(t float64) bool {
		for _, m := range mods {
			if m.Multiplier > t {
				return true
			}
		}
		return false
	}
	switch {
	case maxScore > 0.8 || anyAbove(1.3):
		return IntensityHigh
	case maxScore > 0.6 || anyAbove(1.1):
		return IntensityMediumHigh
	case maxScore < 0.3:
		return IntensityLow
	}
	return IntensityMedium
}

func temporalProgression(n *NormalizedText) Temporal {
	if !n.HasTemporal() {
		return TemporalNone
	}
	switch {
	case containsAny(n.Lower, []string{"better", "improved", "progress"}):
		return TemporalImprovement
	case containsAny(n.Lower, calibrateDecline):
		return TemporalDecline
	}
	return TemporalComplex
}
