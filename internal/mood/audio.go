package mood

// Range is a closed interval [Low, High].
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Mid returns the midpoint of the range.
func (r Range) Mid() float64 {
	return (r.Low + r.High) / 2
}

// shrink scales the range width by f around its midpoint.
func (r Range) shrink(f float64) Range {
	mid := r.Mid()
	half := (r.High - r.Low) * f / 2
	return Range{Low: mid - half, High: mid + half}
}

// lift shifts the range up by d, capping the upper bound at 1.
func (r Range) lift(d float64) Range {
	return Range{Low: r.Low + d, High: min(1.0, r.High+d)}
}

// AudioTargets holds the audio feature ranges that suit a mood.
type AudioTargets struct {
	Valence      Range `json:"valence"`
	Energy       Range `json:"energy"`
	Danceability Range `json:"danceability"`
	Tempo        Range `json:"tempo"`
	Acousticness Range `json:"acousticness"`
}

// Map returns the targets keyed by feature name.
func (a AudioTargets) Map() map[string]Range {
	return map[string]Range{
		"valence":      a.Valence,
		"energy":       a.Energy,
		"danceability": a.Danceability,
		"tempo":        a.Tempo,
		"acousticness": a.Acousticness,
	}
}

// each applies fn to every feature range.
func (a AudioTargets) each(fn func(Range) Range) AudioTargets {
	return AudioTargets{
		Valence:      fn(a.Valence),
		Energy:       fn(a.Energy),
		Danceability: fn(a.Danceability),
		Tempo:        fn(a.Tempo),
		Acousticness: fn(a.Acousticness),
	}
}

// AudioRange returns the audio feature ranges for e. Emotions without their
// own entry use the neutral ranges.
func AudioRange(e Emotion) AudioTargets {
	if t, ok := audioRanges[e]; ok {
		return t
	}
	return audioRanges[Neutral]
}

// targetsFor adjusts the primary emotion's ranges by intensity.
func targetsFor(primary Emotion, level IntensityLevel) AudioTargets {
	t := AudioRange(primary)
	switch level {
	case IntensityHigh:
		if primary == Excitement || primary == Joy {
			t.Energy = t.Energy.lift(0.1)
			t.Valence = t.Valence.lift(0.1)
		}
	case IntensityLow:
		t = t.each(func(r Range) Range { return r.shrink(0.7) })
	}
	return t
}

var audioRanges = map[Emotion]AudioTargets{
	Joy:        {Valence: Range{0.65, 0.9}, Energy: Range{0.55, 0.85}, Danceability: Range{0.55, 0.85}, Tempo: Range{100, 135}, Acousticness: Range{0.1, 0.5}},
	Love:       {Valence: Range{0.55, 0.85}, Energy: Range{0.25, 0.65}, Danceability: Range{0.35, 0.75}, Tempo: Range{75, 115}, Acousticness: Range{0.2, 0.6}},
	Excitement: {Valence: Range{0.75, 0.95}, Energy: Range{0.75, 0.95}, Danceability: Range{0.65, 0.95}, Tempo: Range{115, 170}, Acousticness: Range{0.0, 0.25}},
	Optimism:   {Valence: Range{0.55, 0.8}, Energy: Range{0.45, 0.75}, Danceability: Range{0.45, 0.75}, Tempo: Range{95, 125}, Acousticness: Range{0.2, 0.5}},
	Sadness:    {Valence: Range{0.0, 0.35}, Energy: Range{0.05, 0.45}, Danceability: Range{0.05, 0.35}, Tempo: Range{55, 95}, Acousticness: Range{0.4, 0.9}},
	Fear:       {Valence: Range{0.0, 0.25}, Energy: Range{0.15, 0.55}, Danceability: Range{0.05, 0.25}, Tempo: Range{65, 105}, Acousticness: Range{0.3, 0.8}},
	Anger:      {Valence: Range{0.05, 0.35}, Energy: Range{0.65, 0.95}, Danceability: Range{0.15, 0.55}, Tempo: Range{105, 155}, Acousticness: Range{0.0, 0.35}},
	Surprise:   {Valence: Range{0.35, 0.75}, Energy: Range{0.55, 0.85}, Danceability: Range{0.45, 0.75}, Tempo: Range{95, 135}, Acousticness: Range{0.1, 0.5}},
	Disgust:    {Valence: Range{0.0, 0.15}, Energy: Range{0.25, 0.65}, Danceability: Range{0.05, 0.35}, Tempo: Range{75, 115}, Acousticness: Range{0.2, 0.6}},
	Neutral:    {Valence: Range{0.35, 0.65}, Energy: Range{0.35, 0.65}, Danceability: Range{0.35, 0.65}, Tempo: Range{85, 115}, Acousticness: Range{0.3, 0.7}},
	Stress:     {Valence: Range{0.0, 0.25}, Energy: Range{0.25, 0.65}, Danceability: Range{0.05, 0.35}, Tempo: Range{75, 125}, Acousticness: Range{0.4, 0.8}},
	Exhaustion: {Valence: Range{0.0, 0.15}, Energy: Range{0.0, 0.25}, Danceability: Range{0.0, 0.15}, Tempo: Range{45, 75}, Acousticness: Range{0.6, 1.0}},
}
