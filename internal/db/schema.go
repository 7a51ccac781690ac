package db

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		last_sync_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS tracks (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		artist TEXT NOT NULL,
		album TEXT,
		popularity INT NOT NULL DEFAULT 0,
		valence REAL,
		energy REAL,
		danceability REAL,
		acousticness REAL,
		tempo REAL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_tracks (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		track_id TEXT NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
		added_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, track_id)
	)`,
	`CREATE TABLE IF NOT EXISTS track_tags (
		track_id TEXT NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
		tag_name TEXT NOT NULL,
		tag_count INT NOT NULL,
		source TEXT NOT NULL,
		fetched_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (track_id, tag_name)
	)`,
	`CREATE TABLE IF NOT EXISTS analyses (
		id UUID PRIMARY KEY,
		text_hash TEXT NOT NULL,
		text TEXT NOT NULL,
		primary_emotion TEXT NOT NULL,
		sentiment DOUBLE PRECISION NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		result JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS analyses_text_hash_idx ON analyses (text_hash)`,
	`CREATE TABLE IF NOT EXISTS playlists (
		id UUID PRIMARY KEY,
		user_id TEXT REFERENCES users(id) ON DELETE CASCADE,
		analysis_id UUID REFERENCES analyses(id) ON DELETE SET NULL,
		name TEXT NOT NULL,
		emotion TEXT NOT NULL,
		sentiment DOUBLE PRECISION NOT NULL,
		method TEXT NOT NULL,
		spotify_id TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS playlist_tracks (
		playlist_id UUID NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
		position INT NOT NULL,
		track_id TEXT NOT NULL,
		name TEXT NOT NULL,
		artist TEXT NOT NULL,
		score DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (playlist_id, position)
	)`,
}

// Migrate creates any missing tables.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}
