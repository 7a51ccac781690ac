package clustering

import (
	"errors"
	"fmt"
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/justestif/go-moodtune/internal/mood"
)

// DefaultNumClusters is the number of mood clusters in a catalog.
const DefaultNumClusters = 7

// ErrNoTracks is returned when no track carries the audio features needed
// for clustering.
var ErrNoTracks = errors.New("no tracks with audio features")

// Cluster is one mood group of the catalog.
type Cluster struct {
	Index    int
	Name     string
	Emotion  mood.Emotion // emotion profile nearest the centroid
	Centroid Features     // mean of the unscaled features
	Size     int
	TopTags  []string
}

// Catalog is a clustered set of tracks. Cluster indices are ordered by
// ascending centroid valence, so cluster 0 is the saddest.
type Catalog struct {
	Tracks      []Track
	Assignments []int // cluster index per track
	Clusters    []Cluster
	Skipped     int // tracks dropped for missing features

	scaler  scaler
	centers [][]float64 // scaled, in cluster order
}

// trackObservation wraps a track index to implement clusters.Observation.
type trackObservation struct {
	index  int
	coords clusters.Coordinates
}

func (o trackObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o trackObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// BuildCatalog scales the audio features of tracks to [0, 1] and partitions
// them into k clusters. Tracks missing any feature are skipped. When there
// are fewer tracks than k, k is reduced to the track count.
func BuildCatalog(tracks []Track, k int) (*Catalog, error) {
	if k <= 0 {
		k = DefaultNumClusters
	}

	cat := &Catalog{}
	var rows [][]float64
	for i := range tracks {
		if !tracks[i].HasFeatures() {
			cat.Skipped++
			continue
		}
		cat.Tracks = append(cat.Tracks, tracks[i])
		rows = append(rows, tracks[i].Features().vector())
	}
	if len(rows) == 0 {
		return nil, ErrNoTracks
	}
	k = min(k, len(rows))

	cat.scaler = fitScaler(rows)

	// Build observations for k-means
	var obs clusters.Observations
	for i, row := range rows {
		obs = append(obs, trackObservation{index: i, coords: cat.scaler.transform(row)})
	}

	km := kmeans.New()
	result, err := km.Partition(obs, k)
	if err != nil {
		return nil, fmt.Errorf("partitioning %d tracks into %d clusters: %w", len(rows), k, err)
	}

	// Raw centroids drive ordering and naming
	type group struct {
		center  []float64
		members []int
		raw     Features
	}
	groups := make([]group, 0, len(result))
	for _, c := range result {
		g := group{center: slices.Clone([]float64(c.Center))}
		cols := make([][]float64, len(featureNames))
		for _, o := range c.Observations {
			idx := o.(trackObservation).index
			g.members = append(g.members, idx)
			for f, v := range rows[idx] {
				cols[f] = append(cols[f], v)
			}
		}
		mean := make([]float64, len(featureNames))
		for f := range cols {
			if len(cols[f]) > 0 {
				mean[f] = stat.Mean(cols[f], nil)
			}
		}
		g.raw = featuresFromVector(mean)
		groups = append(groups, g)
	}
	slices.SortStableFunc(groups, func(a, b group) int {
		switch {
		case a.raw.Valence < b.raw.Valence:
			return -1
		case a.raw.Valence > b.raw.Valence:
			return 1
		}
		return 0
	})

	cat.Assignments = make([]int, len(rows))
	for i, g := range groups {
		members := make([]Track, 0, len(g.members))
		for _, idx := range g.members {
			cat.Assignments[idx] = i
			members = append(members, cat.Tracks[idx])
		}
		cat.centers = append(cat.centers, g.center)
		cat.Clusters = append(cat.Clusters, Cluster{
			Index:    i,
			Name:     moodName(g.raw),
			Emotion:  ClosestEmotion(g.raw),
			Centroid: g.raw,
			Size:     len(g.members),
			TopTags:  topTags(members, 3),
		})
	}

	return cat, nil
}

// Len returns the number of clustered tracks.
func (c *Catalog) Len() int {
	return len(c.Tracks)
}

// TracksIn returns the tracks assigned to a cluster.
func (c *Catalog) TracksIn(cluster int) []Track {
	var out []Track
	for i, a := range c.Assignments {
		if a == cluster {
			out = append(out, c.Tracks[i])
		}
	}
	return out
}

// Predict returns the index of the cluster whose center is nearest to the
// track's scaled features.
func (c *Catalog) Predict(t Track) int {
	if nearest := c.Nearest(t.Features(), 1); len(nearest) > 0 {
		return nearest[0]
	}
	return 0
}

// Nearest returns the indices of the n clusters whose centers are closest
// to f, nearest first.
func (c *Catalog) Nearest(f Features, n int) []int {
	p := c.scaler.transform(f.vector())
	type dist struct {
		index int
		d     float64
	}
	ds := make([]dist, len(c.centers))
	for i, center := range c.centers {
		ds[i] = dist{index: i, d: floats.Distance(p, center, 2)}
	}
	slices.SortStableFunc(ds, func(a, b dist) int {
		switch {
		case a.d < b.d:
			return -1
		case a.d > b.d:
			return 1
		}
		return 0
	})
	out := make([]int, 0, min(n, len(ds)))
	for _, d := range ds[:min(n, len(ds))] {
		out = append(out, d.index)
	}
	return out
}

// scaler maps each feature to [0, 1] by its observed minimum and maximum.
type scaler struct {
	min, max []float64
}

func fitScaler(rows [][]float64) scaler {
	s := scaler{
		min: make([]float64, len(featureNames)),
		max: make([]float64, len(featureNames)),
	}
	col := make([]float64, len(rows))
	for f := range featureNames {
		for i, row := range rows {
			col[i] = row[f]
		}
		s.min[f] = floats.Min(col)
		s.max[f] = floats.Max(col)
	}
	return s
}

func (s scaler) transform(v []float64) clusters.Coordinates {
	out := make(clusters.Coordinates, len(v))
	for f, x := range v {
		if span := s.max[f] - s.min[f]; span > 0 {
			out[f] = (x - s.min[f]) / span
		}
	}
	return out
}
