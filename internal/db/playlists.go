package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlaylistRepository handles playlist database operations.
type PlaylistRepository struct {
	pool *pgxpool.Pool
}

const playlistColumns = `id, user_id, analysis_id, name, emotion, sentiment, method, spotify_id, created_at`

// Create inserts a new playlist with its tracks in order.
func (r *PlaylistRepository) Create(ctx context.Context, p *Playlist, tracks []PlaylistTrack) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Insert playlist
	query := `
		INSERT INTO playlists (id, user_id, analysis_id, name, emotion, sentiment, method, spotify_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err = tx.QueryRow(ctx, query,
		p.ID,
		p.UserID,
		p.AnalysisID,
		p.Name,
		p.Emotion,
		p.Sentiment,
		p.Method,
		p.SpotifyID,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting playlist: %w", err)
	}

	// Insert playlist_tracks
	if len(tracks) > 0 {
		positions := make([]int, len(tracks))
		ids := make([]string, len(tracks))
		names := make([]string, len(tracks))
		artists := make([]string, len(tracks))
		scores := make([]float64, len(tracks))
		for i, t := range tracks {
			positions[i] = i
			ids[i] = t.TrackID
			names[i] = t.Name
			artists[i] = t.Artist
			scores[i] = t.Score
		}
		tracksQuery := `
			INSERT INTO playlist_tracks (playlist_id, position, track_id, name, artist, score)
			SELECT $1, * FROM unnest($2::int[], $3::text[], $4::text[], $5::text[], $6::float8[])
		`
		if _, err := tx.Exec(ctx, tracksQuery, p.ID, positions, ids, names, artists, scores); err != nil {
			return fmt.Errorf("inserting playlist tracks: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func scanPlaylist(row pgx.Row, p *Playlist) error {
	return row.Scan(
		&p.ID,
		&p.UserID,
		&p.AnalysisID,
		&p.Name,
		&p.Emotion,
		&p.Sentiment,
		&p.Method,
		&p.SpotifyID,
		&p.CreatedAt,
	)
}

// Get retrieves a playlist by ID.
func (r *PlaylistRepository) Get(ctx context.Context, id uuid.UUID) (*Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = $1`
	var p Playlist
	err := scanPlaylist(r.pool.QueryRow(ctx, query, id), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying playlist: %w", err)
	}
	return &p, nil
}

// GetForUser retrieves all playlists for a user, newest first.
func (r *PlaylistRepository) GetForUser(ctx context.Context, userID string) ([]Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user playlists: %w", err)
	}
	defer rows.Close()

	var playlists []Playlist
	for rows.Next() {
		var p Playlist
		if err := scanPlaylist(rows, &p); err != nil {
			return nil, fmt.Errorf("scanning playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

// GetTracks retrieves the tracks of a playlist in order.
func (r *PlaylistRepository) GetTracks(ctx context.Context, playlistID uuid.UUID) ([]PlaylistTrack, error) {
	query := `
		SELECT playlist_id, position, track_id, name, artist, score
		FROM playlist_tracks
		WHERE playlist_id = $1
		ORDER BY position
	`
	rows, err := r.pool.Query(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("querying playlist tracks: %w", err)
	}
	defer rows.Close()

	var tracks []PlaylistTrack
	for rows.Next() {
		var t PlaylistTrack
		if err := rows.Scan(&t.PlaylistID, &t.Position, &t.TrackID, &t.Name, &t.Artist, &t.Score); err != nil {
			return nil, fmt.Errorf("scanning playlist track: %w", err)
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// UpdateSpotifyID sets the Spotify playlist ID for a playlist.
func (r *PlaylistRepository) UpdateSpotifyID(ctx context.Context, id uuid.UUID, spotifyID string) error {
	query := `UPDATE playlists SET spotify_id = $2 WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id, spotifyID)
	if err != nil {
		return fmt.Errorf("updating spotify ID: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a playlist by ID.
func (r *PlaylistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM playlists WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting playlist: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
