package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-moodtune/internal/clustering"
)

const likedSongsPageSize = 50

// FetchAllLikedSongs retrieves all tracks from the user's library.
// Returns tracks as clustering.Track with artists joined by ", ".
// Audio features are not included; see FetchAudioFeatures.
func (c *Client) FetchAllLikedSongs(ctx context.Context) ([]clustering.Track, error) {
	var tracks []clustering.Track

	page, err := c.api.CurrentUsersTracks(ctx, spotify.Limit(likedSongsPageSize))
	if err != nil {
		return nil, fmt.Errorf("fetching liked songs: %w", err)
	}

	for {
		for _, saved := range page.Tracks {
			tracks = append(tracks, convertTrack(saved))
		}

		c.log.WithField("tracks", len(tracks)).Debug("Fetched liked songs page")

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetching next page: %w", err)
		}
	}

	c.log.WithField("tracks", len(tracks)).Info("Fetched liked songs")
	return tracks, nil
}

// FetchLibrary retrieves all liked songs with their audio features.
func (c *Client) FetchLibrary(ctx context.Context) ([]clustering.Track, error) {
	tracks, err := c.FetchAllLikedSongs(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.FetchAudioFeatures(ctx, tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// convertTrack converts a Spotify SavedTrack to clustering.Track.
func convertTrack(saved spotify.SavedTrack) clustering.Track {
	artists := make([]string, len(saved.Artists))
	for i, a := range saved.Artists {
		artists[i] = a.Name
	}

	// Parse AddedAt timestamp, use zero value on failure
	addedAt, _ := time.Parse(time.RFC3339, saved.AddedAt)

	return clustering.Track{
		ID:         saved.ID.String(),
		Name:       saved.Name,
		Artist:     strings.Join(artists, ", "),
		Popularity: int(saved.Popularity),
		AddedAt:    addedAt,
		Liked:      true,
	}
}
