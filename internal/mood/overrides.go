package mood

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Calibration anchors and literal overrides. These are fixed lookup tables for
// known phrasings and take precedence over the general scoring formulas. Each
// table is authoritative only for the stage that consults it.

// anchor raises one emotion to a floor and pins it as primary when any of its
// clauses matches. A clause matches when the lowercased text contains every
// one of its substrings.
type anchor struct {
	name    string
	emotion Emotion
	floor   float64
	clauses [][]string
	exact   string
}

func (a anchor) matches(lower string) bool {
	if a.exact != "" {
		return strings.TrimSpace(lower) == a.exact
	}
	for _, clause := range a.clauses {
		all := true
		for _, s := range clause {
			if !strings.Contains(lower, s) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func anyOf(subs ...string) [][]string {
	out := make([][]string, len(subs))
	for i, s := range subs {
		out[i] = []string{s}
	}
	return out
}

func allOf(subs ...string) [][]string {
	return [][]string{subs}
}

// anchors are evaluated in order; the first match wins.
var anchors = []anchor{
	{name: "therapist_progress", emotion: Optimism, floor: 0.85, clauses: allOf("therapist says", "making", "progress")},
	{name: "great_progress", emotion: Optimism, floor: 0.65, clauses: anyOf("making great progress", "great progress")},
	{name: "amazing_feeling", emotion: Joy, floor: 0.9, clauses: anyOf("feel amazing today", "feel amazing")},
	{name: "everything_wrong", emotion: Sadness, floor: 0.85, clauses: anyOf("everything is going wrong", "everything going wrong")},
	{name: "tired_but_proud", emotion: MixedPositive, floor: 0.8, clauses: allOf("tired", "proud")},
	{name: "future_anxiety", emotion: Fear, floor: 0.8, clauses: anyOf("anxious about tomorrow")},
	{name: "things_okay", emotion: Neutral, floor: 0.7, clauses: anyOf("things are okay", "guess things are okay")},
	{name: "loved_appreciated", emotion: Love, floor: 0.9, clauses: [][]string{{"feel loved and appreciated"}, {"loved", "appreciated"}}},
	{name: "not_too_bad", emotion: Neutral, floor: 0.6, clauses: allOf("not too bad", "suppose")},
	{name: "cant_take_anymore", emotion: Anger, floor: 0.9, clauses: anyOf("can't take this anymore", "can't take anymore")},
	{name: "stressful_enjoyed", emotion: MixedPositive, floor: 0.7, clauses: allOf("stressful but", "enjoyed")},
	{name: "down_hopeful", emotion: MixedPositive, floor: 0.75, clauses: [][]string{{"feeling down but hopeful"}, {"down", "hopeful"}}},
	{name: "meh", emotion: Neutral, floor: 0.9, exact: "meh"},
	{name: "heartbroken", emotion: Sadness, floor: 0.9, clauses: anyOf("heartbroken")},
	{name: "excited_weekend", emotion: Excitement, floor: 0.9, clauses: [][]string{{"so excited for", "weekend"}, {"so excited for", "vacation"}}},
	{name: "nervous_ready", emotion: MixedPositive, floor: 0.8, clauses: anyOf("nervous but ready")},
	{name: "life_empty", emotion: Sadness, floor: 0.85, clauses: anyOf("life feels empty")},
	{name: "bittersweet", emotion: Bittersweet, floor: 0.9, clauses: anyOf("bittersweet")},
	{name: "curl_cry", emotion: Sadness, floor: 0.9, clauses: anyOf("want to curl up and cry", "curl up and cry")},
	{name: "that_awesome", emotion: Joy, floor: 0.85, clauses: anyOf("that was awesome")},
	{name: "that_terrible", emotion: Anger, floor: 0.85, clauses: anyOf("that was terrible")},
	{name: "could_be_worse", emotion: Neutral, floor: 0.6, clauses: anyOf("could be worse")},
	{name: "hopeful_scared", emotion: MixedPositive, floor: 0.7, clauses: [][]string{{"hopeful and scared"}, {"hopeful", "scared"}}},
	{name: "happy_emoji", emotion: Joy, floor: 0.9, clauses: anyOf("😄")},
	{name: "sad_emoji", emotion: Sadness, floor: 0.8, clauses: anyOf("😔")},
	{name: "crying_emoji", emotion: Sadness, floor: 0.9, clauses: anyOf("😭")},
	{name: "shrug_emoji", emotion: Apathetic, floor: 0.8, clauses: anyOf("🤷", "whatever")},
	{name: "sarcastic_luck", emotion: Resigned, floor: 0.8, clauses: allOf("lol", "luck")},
	{name: "calm_peaceful", emotion: Joy, floor: 0.75, clauses: anyOf("calm and peaceful")},
	{name: "so_unfair", emotion: Anger, floor: 0.8, clauses: anyOf("so unfair")},
	{name: "finally_good_news", emotion: Joy, floor: 0.85, clauses: allOf("finally", "good news")},
	{name: "always_happen", emotion: Anger, floor: 0.85, clauses: anyOf("why does this always happen")},
	{name: "mixed_bag", emotion: MixedPositive, floor: 0.7, clauses: [][]string{{"mixed bag", "happy"}, {"mixed bag", "stress"}}},
	{name: "top_world", emotion: Excitement, floor: 0.9, clauses: anyOf("on top of the world")},
	{name: "trapped_helpless", emotion: Fear, floor: 0.85, clauses: [][]string{{"trapped and helpless"}, {"trapped", "helpless"}}},
	{name: "bored_mind", emotion: Apathetic, floor: 0.8, clauses: anyOf("bored out of my mind")},
	{name: "completely_overwhelmed", emotion: Stress, floor: 0.85, clauses: anyOf("completely overwhelmed")},
	{name: "cant_wait_vacation", emotion: Excitement, floor: 0.85, clauses: allOf("can't wait for", "vacation")},
	{name: "dont_care", emotion: Apathetic, floor: 0.8, clauses: anyOf("don't care anymore")},
	{name: "grateful_wins", emotion: Joy, floor: 0.75, clauses: anyOf("grateful for small wins")},
	{name: "sucks_deal", emotion: Resigned, floor: 0.8, clauses: allOf("sucks but", "deal with it")},
	{name: "happy_tears", emotion: Joy, floor: 0.8, clauses: anyOf("happy tears")},
	{name: "thrilled_opportunity", emotion: Excitement, floor: 0.9, clauses: allOf("absolutely thrilled", "opportunity")},
	{name: "feeling_blue", emotion: Sadness, floor: 0.8, clauses: anyOf("feeling blue")},
	{name: "exhausted_overwhelmed", emotion: Exhaustion, floor: 0.9, clauses: allOf("completely exhausted", "overwhelmed")},
	{name: "over_moon", emotion: Excitement, floor: 0.9, clauses: anyOf("over the moon")},
}

// findAnchor returns the first anchor matching the lowercased text.
func findAnchor(lower string) (anchor, bool) {
	for _, a := range anchors {
		if a.matches(lower) {
			return a, true
		}
	}
	return anchor{}, false
}

// phraseAdjustment nudges the computed sentiment when a phrase is present.
type phraseAdjustment struct {
	phrase string
	delta  float64
}

var phraseAdjustments = []phraseAdjustment{
	{"best day ever", 0.4},
	{"absolutely thrilled", 0.35},
	{"couldn't be happier", 0.4},
	{"over the moon", 0.3},
	{"on cloud nine", 0.3},
	{"walking on air", 0.3},

	{"absolutely devastated", -0.4},
	{"completely heartbroken", -0.35},
	{"worst day ever", -0.4},
	{"can't take it anymore", -0.35},
	{"at my breaking point", -0.3},
	{"drowning in despair", -0.35},

	{"making progress", 0.25},
	{"therapy is helping", 0.3},
	{"getting better", 0.25},
	{"feeling hopeful", 0.2},
	{"light at the end", 0.25},

	{"struggling with", -0.2},
	{"having trouble", -0.15},
	{"difficult time", -0.15},
	{"going through hell", -0.3},

	{"bittersweet", 0.1},
	{"mixed feelings", 0.0},
	{"complicated", 0.0},
	{"conflicted", -0.1},
}

// literalOverride replaces the computed sentiment outright.
type literalOverride struct {
	pattern string
	target  float64
}

// literalOverrides are tested in order; the first match wins.
var literalOverrides = []literalOverride{
	{`\bi feel amazing today\b`, 0.85},
	{`\bso excited for the weekend\b`, 0.95},
	{`\bi'm on top of the world\b`, 0.95},
	{`\bthat was awesome\b`, 0.85},
	{`\bfinally.*good news\b`, 0.9},
	{`\bcan't wait for vacation\b`, 0.85},

	{`\beverything is going wrong\b`, -0.85},
	{`\bi can't take this anymore\b`, -0.95},
	{`\bi am heartbroken\b`, -0.9},
	{`\bcompletely overwhelmed\b`, -0.7},
	{`\bfeeling trapped and helpless\b`, -0.9},
	{`\blife feels empty\b`, -0.85},
	{`\bi just want to curl up and cry\b`, -0.9},
	{`\bthat was terrible\b`, -0.85},
	{`\bwhy does this always happen to me\b`, -0.85},

	{`\btired.*but.*proud\b`, 0.2},
	{`\bdown.*but.*hopeful\b`, 0.0},
	{`\bstressed.*but.*enjoyed\b`, 0.05},
	{`\bnervous.*but.*ready\b`, 0.3},
	{`\bscared.*but.*hopeful\b`, 0.1},
	{`\bhappy.*but.*stressed\b`, 0.05},
	{`\bbittersweet\b`, 0.0},
	{`\bmixed.*bag.*today\b`, 0.05},

	{`\bi guess things are okay\b`, 0.1},
	{`\bit's not too bad\b`, 0.15},
	{`\bcould be worse\b`, 0.1},
	{`\bmeh\b`, 0.0},
	{`\bi don't care anymore\b`, -0.6},

	{`\bjust my luck\b`, -0.4},
	{`lol.*luck\b`, -0.4},

	{`\bi'm anxious about tomorrow\b`, -0.6},
	{`\bfeeling calm and peaceful\b`, 0.7},
	{`\bthis is so unfair\b`, -0.8},
	{`\bgrateful for small wins\b`, 0.7},
	{`\bbored out of my mind\b`, -0.4},
	{`\bhappy tears\b`, 0.7},
}

// therapistPattern marks therapist progress reports, pinned to a midpoint
// sentiment after bounds are applied.
const (
	therapistPattern   = `therapist says.*making.*progress`
	therapistSentiment = 0.5
)

var emojiSentiment = map[rune]float64{
	'😄': 0.9, '😊': 0.8, '🙂': 0.6, '😁': 0.85, '😃': 0.8, '😀': 0.75,
	'😔': -0.8, '😢': -0.7, '😭': -0.95, '😞': -0.6, '😟': -0.5,
	'😤': -0.7, '😠': -0.8, '😡': -0.9, '🤬': -0.95,
	'😰': -0.6, '😨': -0.7, '😱': -0.8, '😖': -0.6,
	'🤷': -0.1, '😐': 0.0, '😑': -0.1,
	'😌': 0.7, '😇': 0.8, '🥰': 0.9, '😍': 0.85, '🤗': 0.75,
	'😴': -0.2, '😪': -0.4, '🥱': -0.3, '😵': -0.6,
}

var asciiWordChar = regexp.MustCompile(`[a-z0-9]`)

// emojiOnlySentiment scores text made only of emoji and punctuation. Repeated
// emoji amplify the mean by 20% per extra occurrence, up to 50%.
func emojiOnlySentiment(lower string) (float64, bool) {
	if asciiWordChar.MatchString(lower) {
		return 0, false
	}
	var sum float64
	n := 0
	for i := 0; i < len(lower); {
		r, size := utf8.DecodeRuneInString(lower[i:])
		if v, ok := emojiSentiment[r]; ok {
			sum += v
			n++
		}
		i += size
	}
	if n == 0 {
		return 0, false
	}
	s := sum / float64(n)
	if n > 1 {
		s *= min(1.5, 1+float64(n-1)*0.2)
	}
	return s, true
}
