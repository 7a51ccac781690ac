package spotify

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-moodtune/internal/clustering"
)

// FetchAudioFeatures retrieves audio features for the given tracks.
// Updates tracks in-place with their audio features.
// Batches requests to max 100 tracks per request per Spotify API limits.
// Tracks without available audio features will have nil feature fields.
func (c *Client) FetchAudioFeatures(ctx context.Context, tracks []clustering.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	ids := make([]spotify.ID, len(tracks))
	indexByID := make(map[string]int, len(tracks))
	for i, t := range tracks {
		ids[i] = spotify.ID(t.ID)
		indexByID[t.ID] = i
	}

	missing := 0
	for _, b := range batches(len(ids), maxTracksPerRequest) {
		features, err := c.api.GetAudioFeatures(ctx, ids[b[0]:b[1]]...)
		if err != nil {
			return fmt.Errorf("fetching audio features (batch %d-%d): %w", b[0]+1, b[1], err)
		}

		for _, f := range features {
			if f == nil {
				missing++
				continue
			}
			idx, ok := indexByID[f.ID.String()]
			if !ok {
				continue
			}
			applyAudioFeatures(&tracks[idx], f)
		}
	}

	c.log.WithFields(logrus.Fields{
		"tracks":  len(tracks),
		"missing": missing,
	}).Info("Fetched audio features")
	return nil
}

// applyAudioFeatures copies the clustering features to a track.
func applyAudioFeatures(t *clustering.Track, f *spotify.AudioFeatures) {
	t.Acousticness = &f.Acousticness
	t.Danceability = &f.Danceability
	t.Energy = &f.Energy
	t.Tempo = &f.Tempo
	t.Valence = &f.Valence
}
