// Package mood implements the rule-based text-to-mood engine.
//
// The engine is a pure computation: it normalizes text, scores emotions from
// a static lexicon, detects topical contexts, calibrates a bounded sentiment
// value and picks a primary emotion with matching audio feature targets.
// An Engine is safe for concurrent use.
package mood

// Emotion is a discrete mood category.
type Emotion string

// Base emotions.
const (
	Joy        Emotion = "joy"
	Love       Emotion = "love"
	Excitement Emotion = "excitement"
	Optimism   Emotion = "optimism"
	Sadness    Emotion = "sadness"
	Fear       Emotion = "fear"
	Anger      Emotion = "anger"
	Surprise   Emotion = "surprise"
	Disgust    Emotion = "disgust"
	Neutral    Emotion = "neutral"
	Stress     Emotion = "stress"
	Exhaustion Emotion = "exhaustion"
)

// Compound emotions.
const (
	MixedPositive Emotion = "mixed_positive"
	MixedNegative Emotion = "mixed_negative"
	Bittersweet   Emotion = "bittersweet"
	Resigned      Emotion = "resigned"
	Apathetic     Emotion = "apathetic"
)

// Emotions lists every emotion in canonical order. All iteration over
// emotions, including tie-breaks, follows this order.
var Emotions = []Emotion{
	Joy, Love, Excitement, Optimism, Sadness, Fear, Anger, Surprise, Disgust,
	Neutral, Stress, Exhaustion,
	MixedPositive, MixedNegative, Bittersweet, Resigned, Apathetic,
}

var emotionRank = func() map[Emotion]int {
	m := make(map[Emotion]int, len(Emotions))
	for i, e := range Emotions {
		m[e] = i
	}
	return m
}()

// Valid reports whether e is a known emotion.
func (e Emotion) Valid() bool {
	_, ok := emotionRank[e]
	return ok
}

// Compound reports whether e is one of the compound emotions.
func (e Emotion) Compound() bool {
	switch e {
	case MixedPositive, MixedNegative, Bittersweet, Resigned, Apathetic:
		return true
	}
	return false
}

// Negative reports whether e carries negative affect.
func (e Emotion) Negative() bool {
	switch e {
	case Sadness, Fear, Anger, Disgust, Stress, Exhaustion, MixedNegative, Resigned, Apathetic:
		return true
	}
	return false
}

// Context is a topical category inferred from keyword density.
type Context string

// Contexts.
const (
	MentalHealth  Context = "mental_health"
	WorkStress    Context = "work_stress"
	Tiredness     Context = "exhaustion"
	Relationships Context = "relationships"
	Family        Context = "family"
	Health        Context = "health"
	Achievement   Context = "achievement"
	Social        Context = "social"
	Financial     Context = "financial"
)

// Contexts lists every context in canonical order.
var Contexts = []Context{
	MentalHealth, WorkStress, Tiredness, Relationships, Family, Health,
	Achievement, Social, Financial,
}

// IntensityLevel grades how strongly the text expresses its mood.
type IntensityLevel string

// Intensity levels.
const (
	IntensityLow        IntensityLevel = "low"
	IntensityMedium     IntensityLevel = "medium"
	IntensityMediumHigh IntensityLevel = "medium-high"
	IntensityHigh       IntensityLevel = "high"
)

// Temporal describes how the mood develops over the text.
type Temporal string

// Temporal progressions.
const (
	TemporalNone        Temporal = "none"
	TemporalImprovement Temporal = "improvement"
	TemporalDecline     Temporal = "decline"
	TemporalComplex     Temporal = "complex"
)
