package mood

import (
	"fmt"
	"regexp"
	"strings"
)

// Lexicon is the compiled, read-only form of the static tables. It is built
// once by NewEngine and shared by every analysis.
type Lexicon struct {
	patterns       map[Emotion][]*regexp.Regexp
	colloquial     []colloquialRule
	negationPhrase []phraseEmotion
	modifiers      []modifierRule
	negationScans  []*regexp.Regexp
	temporal       []*regexp.Regexp
	complexPhrases []*regexp.Regexp
	surface        []compiledSub
	capsRun        *regexp.Regexp
	phraseMarkers  []compiledSub
	contractions   *strings.Replacer
	spaces         *regexp.Regexp

	keywords        map[Context][]keywordRule
	contextPhrases  map[Context][]*regexp.Regexp
	genericNegation []*regexp.Regexp
	emotionWord     *regexp.Regexp
	complexRules    []compiledComplex
	progression     []compiledProgression
	overrides       []compiledOverride
	therapist       *regexp.Regexp
}

type colloquialRule struct {
	phraseEmotion
	detect  *regexp.Regexp
	replace *regexp.Regexp
	marker  string
}

type modifierRule struct {
	modifier
	re *regexp.Regexp
}

type keywordRule struct {
	keyword string
	weight  float64
	re      *regexp.Regexp
}

type compiledSub struct {
	re      *regexp.Regexp
	replace string
}

type compiledComplex struct {
	complexRule
	res []*regexp.Regexp
}

type compiledProgression struct {
	re      *regexp.Regexp
	emotion Emotion
	boost   float64
}

type compiledOverride struct {
	re     *regexp.Regexp
	target float64
}

// compiler compiles patterns and keeps the first failure.
type compiler struct {
	err error
}

func (c *compiler) compile(pattern string) *regexp.Regexp {
	re, err := regexp.Compile(pattern)
	if err != nil && c.err == nil {
		c.err = fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}
	return re
}

func (c *compiler) compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, c.compile(p))
	}
	return out
}

// wordPattern matches s on word boundaries.
func wordPattern(s string) string {
	return `\b` + regexp.QuoteMeta(s) + `\b`
}

// NewLexicon compiles the static tables. It fails only if a pattern does not
// compile, which is a programming error in the tables.
func NewLexicon() (*Lexicon, error) {
	var c compiler
	lx := &Lexicon{
		patterns:       make(map[Emotion][]*regexp.Regexp, len(emotionPatterns)),
		negationPhrase: negationPhrases,
		keywords:       make(map[Context][]keywordRule, len(contextKeywords)),
		contextPhrases: make(map[Context][]*regexp.Regexp, len(contextPhrases)),
	}

	for _, e := range Emotions {
		if ps, ok := emotionPatterns[e]; ok {
			lx.patterns[e] = c.compileAll(ps)
		}
	}

	for _, pe := range colloquialisms {
		lx.colloquial = append(lx.colloquial, colloquialRule{
			phraseEmotion: pe,
			detect:        c.compile(wordPattern(pe.phrase)),
			replace:       c.compile(`(?i)` + wordPattern(pe.phrase)),
			marker:        " COLLOQUIAL_" + strings.ToUpper(string(pe.emotion)) + " ",
		})
	}

	for _, m := range intensityModifiers {
		lx.modifiers = append(lx.modifiers, modifierRule{modifier: m, re: c.compile(wordPattern(m.word))})
	}

	lx.negationScans = c.compileAll(negationScans)
	lx.temporal = c.compileAll(temporalPatterns)
	lx.complexPhrases = c.compileAll(complexPhrasePatterns)
	for _, s := range surfaceMarkers {
		lx.surface = append(lx.surface, compiledSub{re: c.compile(s.pattern), replace: s.replace})
	}
	lx.capsRun = c.compile(`\b[A-Z]{3,}\b`)
	for _, s := range phraseMarkers {
		lx.phraseMarkers = append(lx.phraseMarkers, compiledSub{re: c.compile(s.pattern), replace: s.replace})
	}
	lx.contractions = strings.NewReplacer(contractions...)
	lx.spaces = c.compile(`\s+`)

	for _, ctx := range Contexts {
		for _, kw := range contextKeywords[ctx] {
			weight := float64(len(strings.Fields(kw)))*0.2 + 0.1 + criticalKeywordBonus[kw]
			lx.keywords[ctx] = append(lx.keywords[ctx], keywordRule{
				keyword: kw,
				weight:  weight,
				re:      c.compile(wordPattern(kw)),
			})
		}
		if ps, ok := contextPhrases[ctx]; ok {
			lx.contextPhrases[ctx] = c.compileAll(ps)
		}
	}

	for _, w := range genericNegationWords {
		lx.genericNegation = append(lx.genericNegation, c.compile(wordPattern(w)+`.{0,50}\b`+negationTargets+`\b`))
	}
	lx.emotionWord = c.compile(`\b` + negationTargets + `\b`)

	for _, r := range complexRules {
		lx.complexRules = append(lx.complexRules, compiledComplex{complexRule: r, res: c.compileAll(r.patterns)})
	}
	for _, p := range progressionRules {
		lx.progression = append(lx.progression, compiledProgression{re: c.compile(p.pattern), emotion: p.emotion, boost: p.boost})
	}
	for _, o := range literalOverrides {
		lx.overrides = append(lx.overrides, compiledOverride{re: c.compile(`(?i)` + o.pattern), target: o.target})
	}
	lx.therapist = c.compile(therapistPattern)

	if c.err != nil {
		return nil, c.err
	}
	return lx, nil
}

// AudioRange returns the audio feature ranges for e.
func (lx *Lexicon) AudioRange(e Emotion) AudioTargets {
	return AudioRange(e)
}

// Keywords returns the keyword list for a context.
func (lx *Lexicon) Keywords(ctx Context) []string {
	return contextKeywords[ctx]
}

// Patterns returns the regular expressions scored for e, in listed order.
func (lx *Lexicon) Patterns(e Emotion) []string {
	out := make([]string, len(lx.patterns[e]))
	for i, re := range lx.patterns[e] {
		out[i] = re.String()
	}
	return out
}

// Colloquialism returns the emotion mapped to an idiomatic phrase.
func (lx *Lexicon) Colloquialism(phrase string) (Emotion, bool) {
	for _, r := range lx.colloquial {
		if r.phrase == phrase {
			return r.emotion, true
		}
	}
	return "", false
}

// Multiplier returns the intensity multiplier of a modifier word.
func (lx *Lexicon) Multiplier(word string) (float64, bool) {
	for _, m := range lx.modifiers {
		if m.word == word {
			return m.multiplier, true
		}
	}
	return 0, false
}
