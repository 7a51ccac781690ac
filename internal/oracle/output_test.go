package oracle

import (
	"errors"
	"math"
	"testing"

	"github.com/justestif/go-moodtune/internal/mood"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantKind  Kind
		wantTop   LabeledScore
		wantCount int
	}{
		{
			name:      "number",
			raw:       `0.42`,
			wantKind:  KindScalar,
			wantTop:   LabeledScore{"positive", 0.42},
			wantCount: 1,
		},
		{
			name:      "negative number",
			raw:       `-0.3`,
			wantKind:  KindScalar,
			wantTop:   LabeledScore{"negative", 0.3},
			wantCount: 1,
		},
		{
			name:      "object",
			raw:       `{"label": "joy", "score": 0.9}`,
			wantKind:  KindLabeledScore,
			wantTop:   LabeledScore{"joy", 0.9},
			wantCount: 1,
		},
		{
			name:      "pair",
			raw:       `["sadness", 0.7]`,
			wantKind:  KindLabeledScore,
			wantTop:   LabeledScore{"sadness", 0.7},
			wantCount: 1,
		},
		{
			name:      "pair with score object",
			raw:       `["fear", {"score": 0.6}]`,
			wantKind:  KindLabeledScore,
			wantTop:   LabeledScore{"fear", 0.6},
			wantCount: 1,
		},
		{
			name:      "bare string",
			raw:       `"neutral"`,
			wantKind:  KindLabeledScore,
			wantTop:   LabeledScore{"neutral", 0.5},
			wantCount: 1,
		},
		{
			name:      "list of objects sorted",
			raw:       `[{"label": "joy", "score": 0.2}, {"label": "anger", "score": 0.7}]`,
			wantKind:  KindLabeledScoreList,
			wantTop:   LabeledScore{"anger", 0.7},
			wantCount: 2,
		},
		{
			name:      "list of pairs",
			raw:       `[["joy", 0.1], ["love", 0.8], ["fear", 0.1]]`,
			wantKind:  KindLabeledScoreList,
			wantTop:   LabeledScore{"love", 0.8},
			wantCount: 3,
		},
		{
			name:      "mixed list",
			raw:       `["calm", {"label": "joy", "score": 0.9}, ["tired", 0.4]]`,
			wantKind:  KindLabeledScoreList,
			wantTop:   LabeledScore{"joy", 0.9},
			wantCount: 3,
		},
		{
			name:      "pipeline batch",
			raw:       `[[{"label": "LABEL_0", "score": 0.1}, {"label": "LABEL_2", "score": 0.8}]]`,
			wantKind:  KindLabeledScoreList,
			wantTop:   LabeledScore{"LABEL_2", 0.8},
			wantCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Decode([]byte(tt.raw))
			if err != nil {
				t.Fatalf("Decode(%s) error = %v", tt.raw, err)
			}
			if out.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", out.Kind, tt.wantKind)
			}
			labeled := out.Labeled()
			if len(labeled) != tt.wantCount {
				t.Fatalf("len(Labeled()) = %d, want %d", len(labeled), tt.wantCount)
			}
			if labeled[0] != tt.wantTop {
				t.Errorf("Labeled()[0] = %+v, want %+v", labeled[0], tt.wantTop)
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	for _, raw := range []string{
		``,
		`{`,
		`true`,
		`null`,
		`{"score": 0.5}`,
		`{"label": "joy"}`,
		`[1, 2, 3]`,
		`[{"label": "joy", "score": "high"}]`,
	} {
		if _, err := Decode([]byte(raw)); !errors.Is(err, ErrMalformedOutput) {
			t.Errorf("Decode(%q) error = %v, want ErrMalformedOutput", raw, err)
		}
	}
}

func TestOutput_Sentiment(t *testing.T) {
	tests := []struct {
		name string
		out  Output
		want float64
	}{
		{"scalar", Scalar(0.4), 0.4},
		{"scalar clamped", Scalar(-3), -1},
		{"three class", List(LabeledScore{"LABEL_0", 0.1}, LabeledScore{"LABEL_1", 0.2}, LabeledScore{"LABEL_2", 0.7}), 0.6},
		{"two class", List(LabeledScore{"POSITIVE", 0.2}, LabeledScore{"NEGATIVE", 0.8}), -0.6},
		{"lowercase", List(LabeledScore{"positive", 0.5}, LabeledScore{"negative", 0.1}, LabeledScore{"neutral", 0.4}), 0.4},
		{"emotion label", List(LabeledScore{"sadness", 0.9}, LabeledScore{"joy", 0.1}), -0.9},
		{"neutral label", Output{Kind: KindLabeledScore, Label: LabeledScore{"neutral", 0.8}}, 0},
		{"empty list", List(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.out.Sentiment(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Sentiment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		label string
		want  mood.Emotion
	}{
		{"happiness", mood.Joy},
		{"Happy", mood.Joy},
		{"POSITIVE", mood.Joy},
		{"negative", mood.Sadness},
		{"nervousness", mood.Fear},
		{"gratitude", mood.Joy},
		{"realization", mood.Surprise},
		{"disapproval", mood.Anger},
		{"anger", mood.Anger},
		{" Disgust ", mood.Disgust},
		{"zany", mood.Emotion("zany")},
	}

	for _, tt := range tests {
		if got := NormalizeLabel(tt.label); got != tt.want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestEmotions(t *testing.T) {
	out := List(
		LabeledScore{"happy", 0.3},
		LabeledScore{"joy", 0.6},
		LabeledScore{"sadness", 0.1},
	)
	got := Emotions(out)
	want := []mood.EmotionScore{{Emotion: mood.Joy, Score: 0.6}, {Emotion: mood.Sadness, Score: 0.1}}
	if len(got) != len(want) {
		t.Fatalf("Emotions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Emotions()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEmotions_ClampsScores(t *testing.T) {
	got := Emotions(List(
		LabeledScore{"anger", 1.7},
		LabeledScore{"fear", -0.2},
	))
	want := []mood.EmotionScore{{Emotion: mood.Anger, Score: 1}, {Emotion: mood.Fear, Score: 0}}
	if len(got) != len(want) {
		t.Fatalf("Emotions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Emotions()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
