package oracle

import (
	"context"
)

// Classifier is a sentiment and emotion model.
type Classifier interface {
	// ClassifySentiment returns positive/negative style scores for text.
	ClassifySentiment(ctx context.Context, text string) (Output, error)

	// ClassifyEmotions returns per-emotion scores for text.
	ClassifyEmotions(ctx context.Context, text string) (Output, error)
}

// Mode selects the classifier backing the analysis service.
type Mode string

const (
	ModeNone  Mode = "none"
	ModeVADER Mode = "vader"
	ModeHTTP  Mode = "http"
)
