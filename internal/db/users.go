package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository stores Spotify profiles that own synced libraries and
// saved mood playlists.
type UserRepository struct {
	pool *pgxpool.Pool
}

const selectUser = `
	SELECT u.id, u.display_name, u.email, u.created_at, u.updated_at, u.last_sync_at,
		(SELECT COUNT(*) FROM user_tracks ut WHERE ut.user_id = u.id),
		(SELECT COUNT(*) FROM playlists p WHERE p.user_id = u.id)
	FROM users u
	WHERE u.id = $1`

// Get returns a user with the size of their synced library and the number
// of playlists generated for them.
func (r *UserRepository) Get(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.pool.QueryRow(ctx, selectUser, id).Scan(
		&u.ID, &u.DisplayName, &u.Email, &u.CreatedAt, &u.UpdatedAt, &u.LastSyncAt,
		&u.LibrarySize, &u.Playlists,
	)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("loading user %s: %w", id, err)
	}
	return &u, nil
}

// Upsert saves the profile fields and fills in the timestamps. Sync state
// is left alone.
func (r *UserRepository) Upsert(ctx context.Context, u *User) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, display_name, email, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET display_name = EXCLUDED.display_name, email = EXCLUDED.email, updated_at = NOW()
		RETURNING created_at, updated_at, last_sync_at`,
		u.ID, u.DisplayName, u.Email,
	).Scan(&u.CreatedAt, &u.UpdatedAt, &u.LastSyncAt)
	if err != nil {
		return fmt.Errorf("saving user %s: %w", u.ID, err)
	}
	return nil
}

// UpdateLastSync records when the user's liked songs were last imported.
func (r *UserRepository) UpdateLastSync(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET last_sync_at = $2, updated_at = NOW() WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("recording sync for %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
