package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TrackRepository handles track database operations.
type TrackRepository struct {
	pool *pgxpool.Pool
}

const trackColumns = `id, name, artist, album, popularity, valence, energy, danceability, acousticness, tempo, created_at`

// UpsertBatch inserts or updates multiple tracks efficiently. Audio features
// already stored are kept when the incoming value is null.
func (r *TrackRepository) UpsertBatch(ctx context.Context, tracks []Track) error {
	if len(tracks) == 0 {
		return nil
	}

	query := `
		INSERT INTO tracks (` + trackColumns + `)
		SELECT * FROM unnest($1::text[], $2::text[], $3::text[], $4::text[], $5::int[],
			$6::real[], $7::real[], $8::real[], $9::real[], $10::real[], $11::timestamptz[])
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			artist = EXCLUDED.artist,
			album = EXCLUDED.album,
			popularity = EXCLUDED.popularity,
			valence = COALESCE(EXCLUDED.valence, tracks.valence),
			energy = COALESCE(EXCLUDED.energy, tracks.energy),
			danceability = COALESCE(EXCLUDED.danceability, tracks.danceability),
			acousticness = COALESCE(EXCLUDED.acousticness, tracks.acousticness),
			tempo = COALESCE(EXCLUDED.tempo, tracks.tempo)
	`

	n := len(tracks)
	ids := make([]string, n)
	names := make([]string, n)
	artists := make([]string, n)
	albums := make([]*string, n)
	popularity := make([]int, n)
	valence := make([]*float32, n)
	energy := make([]*float32, n)
	danceability := make([]*float32, n)
	acousticness := make([]*float32, n)
	tempo := make([]*float32, n)
	createdAts := make([]time.Time, n)

	now := time.Now()
	for i, t := range tracks {
		ids[i] = t.ID
		names[i] = t.Name
		artists[i] = t.Artist
		albums[i] = t.Album
		popularity[i] = t.Popularity
		valence[i] = t.Valence
		energy[i] = t.Energy
		danceability[i] = t.Danceability
		acousticness[i] = t.Acousticness
		tempo[i] = t.Tempo
		createdAts[i] = now
	}

	_, err := r.pool.Exec(ctx, query, ids, names, artists, albums, popularity,
		valence, energy, danceability, acousticness, tempo, createdAts)
	if err != nil {
		return fmt.Errorf("batch upserting tracks: %w", err)
	}
	return nil
}

func scanTrack(row pgx.Row, track *Track, extra ...any) error {
	dest := []any{
		&track.ID,
		&track.Name,
		&track.Artist,
		&track.Album,
		&track.Popularity,
		&track.Valence,
		&track.Energy,
		&track.Danceability,
		&track.Acousticness,
		&track.Tempo,
		&track.CreatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// GetUserTracksWithAddedAt retrieves all liked tracks for a user with their added_at timestamps.
func (r *TrackRepository) GetUserTracksWithAddedAt(ctx context.Context, userID string) ([]UserTrack, []Track, error) {
	query := `
		SELECT t.id, t.name, t.artist, t.album, t.popularity, t.valence, t.energy,
			t.danceability, t.acousticness, t.tempo, t.created_at, ut.added_at
		FROM tracks t
		JOIN user_tracks ut ON t.id = ut.track_id
		WHERE ut.user_id = $1
		ORDER BY ut.added_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("querying user tracks: %w", err)
	}
	defer rows.Close()

	var userTracks []UserTrack
	var tracks []Track
	for rows.Next() {
		var track Track
		var addedAt time.Time
		if err := scanTrack(rows, &track, &addedAt); err != nil {
			return nil, nil, fmt.Errorf("scanning track: %w", err)
		}
		tracks = append(tracks, track)
		userTracks = append(userTracks, UserTrack{
			UserID:  userID,
			TrackID: track.ID,
			AddedAt: addedAt,
		})
	}
	return userTracks, tracks, rows.Err()
}

// LinkBatchToUser links multiple tracks to a user's library efficiently.
func (r *TrackRepository) LinkBatchToUser(ctx context.Context, userID string, tracks []UserTrack) error {
	if len(tracks) == 0 {
		return nil
	}

	query := `
		INSERT INTO user_tracks (user_id, track_id, added_at)
		SELECT $1, * FROM unnest($2::text[], $3::timestamptz[])
		ON CONFLICT (user_id, track_id) DO UPDATE SET added_at = EXCLUDED.added_at
	`

	trackIDs := make([]string, len(tracks))
	addedAts := make([]time.Time, len(tracks))

	for i, t := range tracks {
		trackIDs[i] = t.TrackID
		addedAts[i] = t.AddedAt
	}

	_, err := r.pool.Exec(ctx, query, userID, trackIDs, addedAts)
	if err != nil {
		return fmt.Errorf("batch linking tracks to user: %w", err)
	}
	return nil
}

// UnlinkMissing removes tracks from a user's library that are not in keep,
// so unliked songs drop out on the next sync.
func (r *TrackRepository) UnlinkMissing(ctx context.Context, userID string, keep []string) (int64, error) {
	query := `DELETE FROM user_tracks WHERE user_id = $1 AND NOT (track_id = ANY($2))`
	result, err := r.pool.Exec(ctx, query, userID, keep)
	if err != nil {
		return 0, fmt.Errorf("unlinking removed tracks: %w", err)
	}
	return result.RowsAffected(), nil
}
