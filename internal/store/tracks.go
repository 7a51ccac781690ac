package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/justestif/go-moodtune/internal/clustering"
)

// UpsertTracks inserts or replaces tracks in one transaction.
func (s *Store) UpsertTracks(ctx context.Context, tracks []clustering.Track) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO Track (id, name, artist, popularity, valence, energy, danceability, acousticness, tempo, liked, imported_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
  name = excluded.name,
  artist = excluded.artist,
  popularity = excluded.popularity,
  valence = COALESCE(excluded.valence, Track.valence),
  energy = COALESCE(excluded.energy, Track.energy),
  danceability = COALESCE(excluded.danceability, Track.danceability),
  acousticness = COALESCE(excluded.acousticness, Track.acousticness),
  tempo = COALESCE(excluded.tempo, Track.tempo),
  liked = MAX(excluded.liked, Track.liked)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, t := range tracks {
		_, err := stmt.ExecContext(ctx,
			t.ID, t.Name, t.Artist, t.Popularity,
			nullFloat(t.Valence), nullFloat(t.Energy), nullFloat(t.Danceability),
			nullFloat(t.Acousticness), nullFloat(t.Tempo),
			t.Liked, now,
		)
		if err != nil {
			return fmt.Errorf("inserting track %q: %w", t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Tracks returns the whole catalog ordered by artist and name.
func (s *Store) Tracks(ctx context.Context) ([]clustering.Track, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, artist, popularity, valence, energy, danceability, acousticness, tempo, liked, imported_at
FROM Track
ORDER BY artist, name`)
	if err != nil {
		return nil, fmt.Errorf("querying tracks: %w", err)
	}
	defer rows.Close()

	var tracks []clustering.Track
	for rows.Next() {
		var t clustering.Track
		var valence, energy, dance, acoustic, tempo sql.NullFloat64
		if err := rows.Scan(&t.ID, &t.Name, &t.Artist, &t.Popularity,
			&valence, &energy, &dance, &acoustic, &tempo, &t.Liked, &t.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning track: %w", err)
		}
		t.Valence = fromNull(valence)
		t.Energy = fromNull(energy)
		t.Danceability = fromNull(dance)
		t.Acousticness = fromNull(acoustic)
		t.Tempo = fromNull(tempo)
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// CountTracks returns the catalog size.
func (s *Store) CountTracks(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM Track").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting tracks: %w", err)
	}
	return n, nil
}

func nullFloat(p *float32) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: float64(*p), Valid: true}
}

func fromNull(v sql.NullFloat64) *float32 {
	if !v.Valid {
		return nil
	}
	return clustering.F32(float32(v.Float64))
}
