package clustering

import (
	"fmt"
	"strings"
)

const sampleTrackCount = 3

// FormatCatalogSummary returns a human-readable summary of the catalog's
// clusters. Shows centroid features, track count, top tags and the first
// three sample tracks for each cluster.
func FormatCatalogSummary(cat *Catalog) string {
	var sb strings.Builder

	if cat == nil || len(cat.Clusters) == 0 {
		sb.WriteString("No clusters\n")
		return sb.String()
	}

	clusterWord := "cluster"
	if len(cat.Clusters) > 1 {
		clusterWord = "clusters"
	}

	sb.WriteString(fmt.Sprintf("Found %d %s from %d tracks", len(cat.Clusters), clusterWord, cat.Len()))
	if cat.Skipped > 0 {
		sb.WriteString(fmt.Sprintf(" (%d without audio features skipped)", cat.Skipped))
	}
	sb.WriteString("\n")

	for _, c := range cat.Clusters {
		sb.WriteString("\n")
		sb.WriteString(formatCluster(c, cat.TracksIn(c.Index)))
	}

	return sb.String()
}

// formatCluster formats a single cluster with its sample tracks.
func formatCluster(c Cluster, tracks []Track) string {
	var sb strings.Builder

	trackWord := "track"
	if c.Size != 1 {
		trackWord = "tracks"
	}

	sb.WriteString(fmt.Sprintf("Cluster %d: %s, %s (%d %s)\n", c.Index, c.Name, c.Emotion, c.Size, trackWord))
	sb.WriteString(fmt.Sprintf("  %s\n", Category(c.Centroid).Description))
	sb.WriteString(fmt.Sprintf("  valence %.2f, energy %.2f, danceability %.2f, acousticness %.2f, tempo %.0f\n",
		c.Centroid.Valence, c.Centroid.Energy, c.Centroid.Danceability, c.Centroid.Acousticness, c.Centroid.Tempo))
	if len(c.TopTags) > 0 {
		sb.WriteString(fmt.Sprintf("  tags: %s\n", strings.Join(c.TopTags, ", ")))
	}

	// Show sample tracks (first 3)
	sampleCount := min(sampleTrackCount, len(tracks))
	for i := 0; i < sampleCount; i++ {
		track := tracks[i]
		sb.WriteString(fmt.Sprintf("  • \"%s\" - %s\n", track.Name, track.Artist))
	}

	// Show "and N more" if needed
	remaining := len(tracks) - sampleTrackCount
	if remaining > 0 {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", remaining))
	}

	return sb.String()
}
