package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

const maxTracksPerRequest = 100

// CreatePlaylist creates a new playlist for the current user.
// Returns the playlist ID.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string, public bool) (string, error) {
	userID, err := c.UserID(ctx)
	if err != nil {
		return "", err
	}

	playlist, err := c.api.CreatePlaylistForUser(ctx, userID, name, description, public, false)
	if err != nil {
		return "", fmt.Errorf("creating playlist: %w", err)
	}

	return playlist.ID.String(), nil
}

// AddTracksToPlaylist adds tracks to a playlist, handling batching for large sets.
// Spotify allows max 100 tracks per request.
func (c *Client) AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	ids := make([]spotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		ids[i] = spotify.ID(id)
	}

	for _, b := range batches(len(ids), maxTracksPerRequest) {
		if _, err := c.api.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids[b[0]:b[1]]...); err != nil {
			return fmt.Errorf("adding tracks (batch %d-%d): %w", b[0]+1, b[1], err)
		}
	}
	return nil
}

// CreatePrivatePlaylist creates a private playlist holding trackIDs in
// order and returns its ID.
func (c *Client) CreatePrivatePlaylist(ctx context.Context, name, description string, trackIDs []string) (string, error) {
	id, err := c.CreatePlaylist(ctx, name, description, false)
	if err != nil {
		return "", err
	}
	if err := c.AddTracksToPlaylist(ctx, id, trackIDs); err != nil {
		return id, fmt.Errorf("filling playlist %s: %w", id, err)
	}
	return id, nil
}
