package oracle

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jonreiter/govader"
	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"

	"github.com/justestif/go-moodtune/internal/mood"
)

// VADER is a local lexicon classifier. It is safe for concurrent use.
type VADER struct {
	mu  sync.Mutex
	sia *govader.SentimentIntensityAnalyzer
	tok *sentences.DefaultSentenceTokenizer
}

// NewVADER loads the VADER lexicon and the English sentence tokenizer.
func NewVADER() (*VADER, error) {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("loading sentence tokenizer: %w", err)
	}
	return &VADER{
		sia: govader.NewSentimentIntensityAnalyzer(),
		tok: tok,
	}, nil
}

func (v *VADER) polarity(text string) govader.Sentiment {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sia.PolarityScores(text)
}

// ClassifySentiment returns positive, negative and neutral proportions.
func (v *VADER) ClassifySentiment(ctx context.Context, text string) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}
	s := v.polarity(text)
	return List(
		LabeledScore{Label: "positive", Score: s.Positive},
		LabeledScore{Label: "negative", Score: s.Negative},
		LabeledScore{Label: "neutral", Score: s.Neutral},
	), nil
}

// ClassifyEmotions derives a coarse emotion from the compound score. The
// strongly negative band is split by how much of the text is negative.
func (v *VADER) ClassifyEmotions(ctx context.Context, text string) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}
	s := v.polarity(text)
	c := s.Compound

	var e mood.Emotion
	switch {
	case c >= 0.6:
		e = mood.Joy
	case c >= 0.2:
		e = mood.Optimism
	case c <= -0.6 && s.Negative > 1.5*s.Neutral:
		e = mood.Anger
	case c <= -0.6 && s.Neutral > s.Negative:
		e = mood.Fear
	case c <= -0.6:
		e = mood.Disgust
	case c <= -0.2:
		e = mood.Sadness
	default:
		return List(LabeledScore{Label: string(mood.Neutral), Score: s.Neutral}), nil
	}
	abs := c
	if abs < 0 {
		abs = -abs
	}
	return List(
		LabeledScore{Label: string(e), Score: abs},
		LabeledScore{Label: string(mood.Neutral), Score: s.Neutral},
	), nil
}

// SentenceSentiment averages the compound score over the sentences of text.
func (v *VADER) SentenceSentiment(text string) float64 {
	var sum float64
	var n int
	for _, s := range v.tok.Tokenize(text) {
		t := strings.TrimSpace(s.Text)
		if t == "" {
			continue
		}
		sum += v.polarity(t).Compound
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
