// Package oracle wraps the external sentiment and emotion classifiers that
// refine the rule-based engine.
package oracle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Sentinel errors.
var (
	// ErrUnavailable is returned when the classifier cannot be reached, timed
	// out, or is held off by an open circuit breaker.
	ErrUnavailable = errors.New("oracle unavailable")

	// ErrMalformedOutput is returned when classifier output has none of the
	// known shapes.
	ErrMalformedOutput = errors.New("malformed oracle output")

	// ErrUnsupported is returned by classifiers that do not offer a task.
	ErrUnsupported = errors.New("operation not supported by oracle")
)

// Kind identifies which variant an Output holds.
type Kind int

const (
	KindScalar Kind = iota
	KindLabeledScore
	KindLabeledScoreList
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindLabeledScore:
		return "labeled_score"
	case KindLabeledScoreList:
		return "labeled_score_list"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// LabeledScore is one classifier label with its probability.
type LabeledScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Output is the result of a classifier call. Exactly one of Scalar, Label or
// List is meaningful, as selected by Kind.
type Output struct {
	Kind   Kind
	Scalar float64
	Label  LabeledScore
	List   []LabeledScore
}

// Scalar builds a scalar output.
func Scalar(v float64) Output {
	return Output{Kind: KindScalar, Scalar: v}
}

// List builds a labeled score list output.
func List(ls ...LabeledScore) Output {
	return Output{Kind: KindLabeledScoreList, List: ls}
}

// Labeled returns the output as labeled scores sorted by descending score.
// A scalar becomes a single positive or negative label carrying its
// magnitude.
func (o Output) Labeled() []LabeledScore {
	var out []LabeledScore
	switch o.Kind {
	case KindScalar:
		if o.Scalar >= 0 {
			out = []LabeledScore{{Label: "positive", Score: o.Scalar}}
		} else {
			out = []LabeledScore{{Label: "negative", Score: -o.Scalar}}
		}
	case KindLabeledScore:
		out = []LabeledScore{o.Label}
	case KindLabeledScoreList:
		out = slices.Clone(o.List)
	}
	slices.SortStableFunc(out, func(a, b LabeledScore) int {
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

// Sentiment reduces the output to a signed value in [-1, 1]. Two-sided
// outputs use positive minus negative (POSITIVE/NEGATIVE or the LABEL_2 and
// LABEL_0 of three-class models). Otherwise the top label is signed by its
// polarity.
func (o Output) Sentiment() float64 {
	if o.Kind == KindScalar {
		return max(-1, min(1, o.Scalar))
	}

	labeled := o.Labeled()
	if len(labeled) == 0 {
		return 0
	}
	byLabel := make(map[string]float64, len(labeled))
	for _, ls := range labeled {
		byLabel[strings.ToUpper(ls.Label)] = ls.Score
	}
	if _, ok := byLabel["LABEL_2"]; ok {
		return byLabel["LABEL_2"] - byLabel["LABEL_0"]
	}
	pos, hasPos := byLabel["POSITIVE"]
	neg, hasNeg := byLabel["NEGATIVE"]
	if hasPos || hasNeg {
		return pos - neg
	}

	top := labeled[0]
	return float64(Polarity(NormalizeLabel(top.Label))) * top.Score
}

// Decode parses raw classifier JSON. It accepts a number, a {"label","score"}
// object, a [label, score] or [label, {"score"}] pair, a bare label string
// (score 0.5), a list of any of those, and the nested [[...]] batch shape of
// inference pipelines, of which the first batch is used.
func Decode(raw json.RawMessage) (Output, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Output{}, fmt.Errorf("%w: empty", ErrMalformedOutput)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Output{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return decodeValue(v)
}

func decodeValue(v any) (Output, error) {
	switch t := v.(type) {
	case float64:
		return Scalar(t), nil
	case string, map[string]any:
		ls, err := decodeLabeled(t)
		if err != nil {
			return Output{}, err
		}
		return Output{Kind: KindLabeledScore, Label: ls}, nil
	case []any:
		if ls, err := decodePair(t); err == nil {
			return Output{Kind: KindLabeledScore, Label: ls}, nil
		}
		if len(t) > 0 {
			if inner, ok := t[0].([]any); ok {
				if _, err := decodePair(inner); err != nil {
					return decodeList(inner)
				}
			}
		}
		return decodeList(t)
	}
	return Output{}, fmt.Errorf("%w: unexpected %T", ErrMalformedOutput, v)
}

func decodeList(items []any) (Output, error) {
	out := Output{Kind: KindLabeledScoreList, List: make([]LabeledScore, 0, len(items))}
	for i, item := range items {
		ls, err := decodeLabeled(item)
		if err != nil {
			return Output{}, fmt.Errorf("item %d: %w", i, err)
		}
		out.List = append(out.List, ls)
	}
	return out, nil
}

func decodeLabeled(v any) (LabeledScore, error) {
	switch t := v.(type) {
	case string:
		return LabeledScore{Label: t, Score: 0.5}, nil
	case map[string]any:
		label, ok := t["label"].(string)
		if !ok {
			return LabeledScore{}, fmt.Errorf("%w: object without label", ErrMalformedOutput)
		}
		score, ok := t["score"].(float64)
		if !ok {
			return LabeledScore{}, fmt.Errorf("%w: object without score", ErrMalformedOutput)
		}
		return LabeledScore{Label: label, Score: score}, nil
	case []any:
		return decodePair(t)
	}
	return LabeledScore{}, fmt.Errorf("%w: unexpected %T", ErrMalformedOutput, v)
}

// decodePair reads [label, score] and [label, {"score": x}].
func decodePair(t []any) (LabeledScore, error) {
	if len(t) != 2 {
		return LabeledScore{}, fmt.Errorf("%w: pair of length %d", ErrMalformedOutput, len(t))
	}
	label, ok := t[0].(string)
	if !ok {
		return LabeledScore{}, fmt.Errorf("%w: pair without label", ErrMalformedOutput)
	}
	switch s := t[1].(type) {
	case float64:
		return LabeledScore{Label: label, Score: s}, nil
	case map[string]any:
		if score, ok := s["score"].(float64); ok {
			return LabeledScore{Label: label, Score: score}, nil
		}
	}
	return LabeledScore{}, fmt.Errorf("%w: pair without score", ErrMalformedOutput)
}
