package mood

import (
	"strings"
)

// Negation is a negation token found in the text.
type Negation struct {
	Token    string `json:"token"`
	Context  string `json:"context"`
	Position int    `json:"position"`
}

// Intensifier is an intensity modifier found in the text.
type Intensifier struct {
	Modifier   string  `json:"modifier"`
	Multiplier float64 `json:"multiplier"`
}

// Colloquialism is an idiomatic phrase found in the text.
type Colloquialism struct {
	Phrase  string  `json:"phrase"`
	Emotion Emotion `json:"emotion"`
}

// NormalizedText is the annotated form of an input text. It is built once per
// analysis and read-only afterwards.
type NormalizedText struct {
	Original       string          `json:"original"`
	Lower          string          `json:"-"`
	Cleaned        string          `json:"cleaned"`
	Negations      []Negation      `json:"negations,omitempty"`
	Intensifiers   []Intensifier   `json:"intensifiers,omitempty"`
	Colloquialisms []Colloquialism `json:"colloquialisms,omitempty"`
	TemporalMarks  []string        `json:"temporal_markers,omitempty"`
	ComplexPhrases []string        `json:"complex_phrases,omitempty"`
	MixedSignals   bool            `json:"mixed_signals"`
}

// HasTemporal reports whether any temporal progression marker was found.
func (n *NormalizedText) HasTemporal() bool {
	return len(n.TemporalMarks) > 0
}

// maxMultiplier returns the strongest multiplier above 1, or 1.
func (n *NormalizedText) maxMultiplier() float64 {
	best := 1.0
	for _, in := range n.Intensifiers {
		best = max(best, in.Multiplier)
	}
	return best
}

// Normalize annotates text and produces its cleaned form.
func (lx *Lexicon) Normalize(text string) *NormalizedText {
	lower := strings.ToLower(text)
	n := &NormalizedText{
		Original: text,
		Lower:    lower,
	}
	work := text

	// Colloquialisms are detected on the raw text and replaced in the working
	// copy so later phases do not count them twice.
	for _, r := range lx.colloquial {
		if r.detect.MatchString(lower) {
			n.Colloquialisms = append(n.Colloquialisms, Colloquialism{Phrase: r.phrase, Emotion: r.emotion})
			work = r.replace.ReplaceAllLiteralString(work, r.marker)
		}
	}

	for _, re := range lx.negationScans {
		for _, loc := range re.FindAllStringIndex(work, -1) {
			start := max(0, loc[0]-30)
			end := min(len(work), loc[1]+30)
			n.Negations = append(n.Negations, Negation{
				Token:    work[loc[0]:loc[1]],
				Context:  strings.TrimSpace(work[start:end]),
				Position: loc[0],
			})
		}
	}

	for _, m := range lx.modifiers {
		if m.re.MatchString(lower) {
			n.Intensifiers = append(n.Intensifiers, Intensifier{Modifier: m.word, Multiplier: m.multiplier})
		}
	}

	for _, re := range lx.temporal {
		if re.MatchString(lower) {
			n.TemporalMarks = append(n.TemporalMarks, re.String())
			n.MixedSignals = true
		}
	}

	for _, re := range lx.complexPhrases {
		n.ComplexPhrases = append(n.ComplexPhrases, re.FindAllString(lower, -1)...)
	}

	for _, s := range lx.surface {
		work = s.re.ReplaceAllLiteralString(work, s.replace)
	}
	work = lx.capsRun.ReplaceAllStringFunc(work, func(m string) string {
		return strings.ToLower(m) + " EMPHASIZED"
	})
	for _, s := range lx.phraseMarkers {
		work = s.re.ReplaceAllString(work, s.replace)
	}
	work = lx.contractions.Replace(work)
	n.Cleaned = strings.TrimSpace(lx.spaces.ReplaceAllString(work, " "))

	return n
}
