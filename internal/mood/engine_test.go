package mood

import (
	"math"
	"slices"
	"testing"
	"unicode/utf8"
)

var testEngine = MustEngine()

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantPrimary   Emotion
		wantSentiment float64
	}{
		{"plain joy", "I feel amazing today!", Joy, 0.85},
		{"things going wrong", "Everything is going wrong", Sadness, -0.85},
		{"colloquial blue", "I'm feeling blue today", Sadness, -0.95},
		{"anxious", "I'm anxious about tomorrow", Fear, -0.6},
		{"heartbroken", "I am heartbroken", Sadness, -0.9},
		{"weekend excitement", "So excited for the weekend!!!", Excitement, 0.95},
		{"bittersweet", "It's a bittersweet day", Bittersweet, 0},
		{"cant take it", "I can't take this anymore", Anger, -0.95},
		{"meh", "Meh", Neutral, 0},
		{"could be worse", "Could be worse", Neutral, 0.1},
		{"top of the world", "I'm on top of the world", Excitement, 0.95},
		{"resigned luck", "lol that's just my luck", Resigned, -0.4},
		{"bored", "Bored out of my mind", Apathetic, -0.4},
		{"happy tears", "Happy tears", Joy, 0.7},
		{"tired but proud", "I am so tired but also kind of proud", MixedPositive, 0.2},
		{"down but hopeful", "I'm feeling down but hopeful", MixedPositive, 0},
		{"overwhelmed", "Completely overwhelmed", Stress, -0.7},
		{"dont care", "I don't care anymore", Apathetic, -0.6},
		{"single grin", "😄", Joy, 0.9},
		{"single pensive", "😔", Sadness, -0.8},
		{"repeated crying", "😭😭😭", Sadness, -0.95},
		{"therapist", "My therapist says I'm making great progress", Optimism, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testEngine.Analyze(tt.text)
			if r.Primary != tt.wantPrimary {
				t.Errorf("Analyze(%q).Primary = %s, want %s (scores %v)", tt.text, r.Primary, tt.wantPrimary, r.Scores)
			}
			if math.Abs(r.Sentiment-tt.wantSentiment) > 0.05 {
				t.Errorf("Analyze(%q).Sentiment = %.3f, want %.3f", tt.text, r.Sentiment, tt.wantSentiment)
			}
		})
	}
}

func TestAnalyze_Details(t *testing.T) {
	t.Run("amazing is strong and single", func(t *testing.T) {
		r := testEngine.Analyze("I feel amazing today!")
		if r.Intensity != IntensityHigh {
			t.Errorf("Intensity = %s, want high", r.Intensity)
		}
		if r.MixedEmotions {
			t.Error("MixedEmotions = true, want false")
		}
		if r.Confidence < 0.9 {
			t.Errorf("Confidence = %.2f, want >= 0.9", r.Confidence)
		}
	})

	t.Run("blue detects mental health", func(t *testing.T) {
		r := testEngine.Analyze("I'm feeling blue today")
		if !slices.Contains(r.Contexts, MentalHealth) {
			t.Errorf("Contexts = %v, want mental_health", r.Contexts)
		}
		if len(r.Normalized.Colloquialisms) == 0 {
			t.Error("expected a colloquialism")
		}
	})

	t.Run("tired and proud contexts", func(t *testing.T) {
		r := testEngine.Analyze("I am so tired but also kind of proud")
		want := []Context{Tiredness, Achievement}
		if !slices.Equal(r.Contexts, want) {
			t.Errorf("Contexts = %v, want %v", r.Contexts, want)
		}
		if !r.MixedEmotions {
			t.Error("MixedEmotions = false, want true")
		}
	})

	t.Run("therapist progress contexts", func(t *testing.T) {
		r := testEngine.Analyze("My therapist says I'm making great progress")
		want := []Context{MentalHealth, Achievement}
		if !slices.Equal(r.Contexts, want) {
			t.Errorf("Contexts = %v, want %v", r.Contexts, want)
		}
		if r.Anchor == "" {
			t.Error("expected an anchor")
		}
	})

	t.Run("negated happiness", func(t *testing.T) {
		r := testEngine.Analyze("I am not happy")
		if !r.NegationDetected {
			t.Error("NegationDetected = false, want true")
		}
		if r.Primary != Sadness {
			t.Errorf("Primary = %s, want sadness", r.Primary)
		}
		if r.Sentiment >= 0 {
			t.Errorf("Sentiment = %.2f, want negative", r.Sentiment)
		}
	})

	t.Run("meh carries resigned secondary", func(t *testing.T) {
		r := testEngine.Analyze("Meh")
		if len(r.Secondary) == 0 || r.Secondary[0].Emotion != Resigned {
			t.Errorf("Secondary = %v, want resigned first", r.Secondary)
		}
	})
}

func TestAnalyze_Empty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		r := testEngine.Analyze(text)
		if r.Primary != Neutral {
			t.Errorf("Analyze(%q).Primary = %s, want neutral", text, r.Primary)
		}
		if r.Sentiment != 0 {
			t.Errorf("Analyze(%q).Sentiment = %v, want 0", text, r.Sentiment)
		}
		if r.Confidence != minConfidence {
			t.Errorf("Analyze(%q).Confidence = %v, want %v", text, r.Confidence, minConfidence)
		}
		if r.EmotionConfidence != 0 {
			t.Errorf("Analyze(%q).EmotionConfidence = %v, want 0", text, r.EmotionConfidence)
		}
		if r.Intensity != IntensityLow {
			t.Errorf("Analyze(%q).Intensity = %s, want low", text, r.Intensity)
		}
		if r.AudioTargets != AudioRange(Neutral) {
			t.Errorf("Analyze(%q).AudioTargets = %+v, want neutral ranges", text, r.AudioTargets)
		}
	}
}

func TestAnalyze_Fallback(t *testing.T) {
	r := testEngine.Analyze("the table is brown")
	if !r.Fallback {
		t.Fatalf("Fallback = false, scores %v", r.Scores)
	}
	if r.Primary != Neutral || r.EmotionConfidence != fallbackScore {
		t.Errorf("got %s/%.2f, want neutral/%.2f", r.Primary, r.EmotionConfidence, fallbackScore)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	for _, text := range corpus {
		a := testEngine.Analyze(text)
		b := testEngine.Analyze(text)
		if a.Primary != b.Primary || a.Sentiment != b.Sentiment || a.Confidence != b.Confidence {
			t.Errorf("Analyze(%q) not deterministic: %v/%v vs %v/%v", text, a.Primary, a.Sentiment, b.Primary, b.Sentiment)
		}
		if !slices.Equal(a.Secondary, b.Secondary) {
			t.Errorf("Analyze(%q) secondary differs: %v vs %v", text, a.Secondary, b.Secondary)
		}
	}
}

func TestAnalyze_Bounds(t *testing.T) {
	for _, text := range corpus {
		checkBounds(t, text, testEngine.Analyze(text))
	}
}

// TestAnalyze_SentimentBands checks the documented scenarios against their
// sentiment ranges with a 0.2 tolerance.
func TestAnalyze_SentimentBands(t *testing.T) {
	const tolerance = 0.2
	tests := []struct {
		text        string
		wantPrimary Emotion
		low, high   float64
	}{
		{"I feel amazing today!", Joy, 0.85, 0.85},
		{"Everything is going wrong", Sadness, -0.85, -0.85},
		{"I'm feeling blue today", Sadness, -0.8, -0.6},
		{"My therapist says I'm making great progress", Optimism, 0.4, 0.6},
		{"😭😭😭", Sadness, -0.95, -0.9},
		{"Meh", Neutral, 0, 0},
	}
	for _, tt := range tests {
		r := testEngine.Analyze(tt.text)
		if r.Primary != tt.wantPrimary {
			t.Errorf("Analyze(%q).Primary = %s, want %s", tt.text, r.Primary, tt.wantPrimary)
		}
		if r.Sentiment < tt.low-tolerance || r.Sentiment > tt.high+tolerance {
			t.Errorf("Analyze(%q).Sentiment = %.3f, want within [%.2f, %.2f] +/- %.1f",
				tt.text, r.Sentiment, tt.low, tt.high, tolerance)
		}
	}
}

func TestAnalyze_AnchorPinsPrimary(t *testing.T) {
	r := testEngine.Analyze("I am so tired but also kind of proud")
	if r.Anchor == "" {
		t.Fatal("no anchor applied")
	}
	if r.Primary != MixedPositive {
		t.Errorf("Primary = %s, want mixed_positive (scores %v)", r.Primary, r.Scores)
	}
}

func TestAnalyze_DiminisherKeepsConfidenceBounds(t *testing.T) {
	for _, text := range []string{"slightly annoyed", "I'm slightly happy", "a bit tired"} {
		r := testEngine.Analyze(text)
		if r.Confidence < 0.6 || r.Confidence > 0.98 {
			t.Errorf("Analyze(%q).Confidence = %.3f, want within [0.6, 0.98]", text, r.Confidence)
		}
		if r.Breakdown.Confidence != r.Confidence {
			t.Errorf("Analyze(%q) breakdown confidence %.3f != %.3f", text, r.Breakdown.Confidence, r.Confidence)
		}
	}
}

func TestAnalyze_Intensifier(t *testing.T) {
	for _, text := range []string{"happy", "sad", "excited"} {
		plain := testEngine.Analyze("I am " + text)
		loud := testEngine.Analyze("I am extremely " + text)
		if math.Abs(loud.Sentiment) < math.Abs(plain.Sentiment) {
			t.Errorf("intensifier weakened %q: %.2f -> %.2f", text, plain.Sentiment, loud.Sentiment)
		}
	}
}

func TestAnalyzeWithOracle(t *testing.T) {
	text := "I went to the store"
	base := testEngine.Analyze(text)

	t.Run("nil oracle matches pattern path", func(t *testing.T) {
		r := testEngine.AnalyzeWithOracle(text, nil)
		if r.Primary != base.Primary || r.Sentiment != base.Sentiment {
			t.Errorf("got %s/%.2f, want %s/%.2f", r.Primary, r.Sentiment, base.Primary, base.Sentiment)
		}
		if r.OracleFused {
			t.Error("OracleFused = true")
		}
	})

	t.Run("oracle emotion enters the scores", func(t *testing.T) {
		r := testEngine.AnalyzeWithOracle(text, []EmotionScore{{Love, 0.9}})
		if got, want := r.Scores[Love], 0.36; math.Abs(got-want) > 1e-9 {
			t.Errorf("Scores[love] = %v, want %v", got, want)
		}
		if !r.OracleFused {
			t.Error("OracleFused = false")
		}
	})

	t.Run("out of range oracle scores are clamped", func(t *testing.T) {
		r := testEngine.AnalyzeWithOracle(text, []EmotionScore{{Love, 7.5}})
		if got, want := r.Scores[Love], 0.4; math.Abs(got-want) > 1e-9 {
			t.Errorf("Scores[love] = %v, want %v", got, want)
		}
	})

	t.Run("unknown labels are ignored", func(t *testing.T) {
		r := testEngine.AnalyzeWithOracle(text, []EmotionScore{{"grumpy", 0.9}})
		if _, ok := r.Scores["grumpy"]; ok {
			t.Error("unknown oracle emotion was scored")
		}
		if r.OracleFused {
			t.Error("OracleFused = true")
		}
	})

	t.Run("only top three are used", func(t *testing.T) {
		r := testEngine.AnalyzeWithOracle(text, []EmotionScore{
			{Surprise, 0.9}, {Love, 0.8}, {Disgust, 0.7}, {Anger, 0.6},
		})
		if _, ok := r.Scores[Anger]; ok {
			t.Errorf("fourth oracle emotion was scored: %v", r.Scores)
		}
	})
}

var corpus = []string{
	"I feel amazing today!",
	"Everything is going wrong",
	"I'm feeling blue today",
	"I am not happy",
	"I am so tired but also kind of proud",
	"Work was stressful but I enjoyed lunch",
	"I'm not sure if I'm sad or just tired",
	"My boss yelled at me and I hate my job",
	"I was sad yesterday but today I'm getting better",
	"NEVER AGAIN!!! This is TERRIBLE...",
	"my family is so supportive, I love them",
	"rent is due and I'm broke",
	"🤷‍♂️ whatever",
	"😭😭😭",
	"Meh",
	"x",
	"!!!???...",
	"not not not never nothing nobody",
}

func checkBounds(t *testing.T, text string, r Result) {
	t.Helper()
	if r.Sentiment < -1 || r.Sentiment > 1 || math.IsNaN(r.Sentiment) {
		t.Errorf("Analyze(%q).Sentiment = %v out of range", text, r.Sentiment)
	}
	if r.Sentiment < -0.95 || r.Sentiment > 0.95 {
		t.Errorf("Analyze(%q).Sentiment = %v exceeds bound", text, r.Sentiment)
	}
	if r.Confidence < minConfidence || r.Confidence > maxConfidence {
		if text != "" || r.Confidence != minConfidence {
			t.Errorf("Analyze(%q).Confidence = %v out of range", text, r.Confidence)
		}
	}
	if r.EmotionConfidence < 0 || r.EmotionConfidence > primaryCap {
		t.Errorf("Analyze(%q).EmotionConfidence = %v out of range", text, r.EmotionConfidence)
	}
	if !r.Primary.Valid() {
		t.Errorf("Analyze(%q).Primary = %q is not a known emotion", text, r.Primary)
	}
	if len(r.Secondary) > secondaryCount {
		t.Errorf("Analyze(%q) has %d secondary emotions", text, len(r.Secondary))
	}
	for _, s := range r.Secondary {
		if s.Emotion == r.Primary {
			t.Errorf("Analyze(%q) repeats primary in secondary", text)
		}
		if s.Score <= secondaryThreshold {
			t.Errorf("Analyze(%q) secondary %s below threshold: %v", text, s.Emotion, s.Score)
		}
	}
	for e, v := range r.Scores {
		if v <= 0 {
			t.Errorf("Analyze(%q).Scores[%s] = %v, want positive", text, e, v)
		}
	}
}

func FuzzAnalyze(f *testing.F) {
	for _, text := range corpus {
		f.Add(text)
	}
	f.Fuzz(func(t *testing.T, text string) {
		if !utf8.ValidString(text) {
			t.Skip()
		}
		checkBounds(t, text, testEngine.Analyze(text))
	})
}
