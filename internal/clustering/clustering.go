// Package clustering partitions a track catalog into mood clusters using
// audio features.
package clustering

import (
	"time"
)

// Track represents a song with its metadata and audio features.
type Track struct {
	ID         string
	Name       string
	Artist     string
	Popularity int
	AddedAt    time.Time
	Liked      bool
	Tags       []Tag
	// Audio features (nil if not fetched or unavailable)
	Acousticness *float32
	Danceability *float32
	Energy       *float32
	Tempo        *float32
	Valence      *float32
}

// Tag is a weighted folksonomy tag attached to a track.
type Tag struct {
	Name  string
	Count int
}

// Features is the audio feature vector used for clustering and matching.
type Features struct {
	Valence      float64 `json:"valence"`
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
	Acousticness float64 `json:"acousticness"`
	Tempo        float64 `json:"tempo"`
}

// featureNames lists the clustering dimensions in vector order.
var featureNames = []string{"valence", "energy", "danceability", "acousticness", "tempo"}

func (f Features) vector() []float64 {
	return []float64{f.Valence, f.Energy, f.Danceability, f.Acousticness, f.Tempo}
}

func featuresFromVector(v []float64) Features {
	return Features{
		Valence:      v[0],
		Energy:       v[1],
		Danceability: v[2],
		Acousticness: v[3],
		Tempo:        v[4],
	}
}

// HasFeatures reports whether every clustering feature is present.
func (t *Track) HasFeatures() bool {
	return t.Valence != nil &&
		t.Energy != nil &&
		t.Danceability != nil &&
		t.Acousticness != nil &&
		t.Tempo != nil
}

// Features returns the track's feature vector. Missing values read as zero.
func (t *Track) Features() Features {
	return Features{
		Valence:      deref(t.Valence),
		Energy:       deref(t.Energy),
		Danceability: deref(t.Danceability),
		Acousticness: deref(t.Acousticness),
		Tempo:        deref(t.Tempo),
	}
}

func deref(p *float32) float64 {
	if p == nil {
		return 0
	}
	return float64(*p)
}

// F32 returns a pointer to v, for building tracks by hand.
func F32(v float32) *float32 {
	return &v
}
