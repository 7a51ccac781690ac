package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TagRepository stores the Last.fm tags of catalog tracks.
type TagRepository struct {
	pool *pgxpool.Pool
}

var tagColumns = []string{"track_id", "tag_name", "tag_count", "source", "fetched_at"}

// Replace swaps the stored tags of every track present in tags for the
// given set, so tags Last.fm no longer reports disappear. Duplicate names
// per track keep the first entry.
func (r *TagRepository) Replace(ctx context.Context, tags []TrackTag) error {
	if len(tags) == 0 {
		return nil
	}

	type key struct{ track, name string }
	seen := make(map[key]bool, len(tags))
	tracks := make(map[string]bool)
	var trackIDs []string
	rows := make([][]any, 0, len(tags))
	for _, t := range tags {
		k := key{t.TrackID, t.TagName}
		if seen[k] {
			continue
		}
		seen[k] = true
		if !tracks[t.TrackID] {
			tracks[t.TrackID] = true
			trackIDs = append(trackIDs, t.TrackID)
		}
		rows = append(rows, []any{t.TrackID, t.TagName, t.TagCount, t.Source, t.FetchedAt})
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM track_tags WHERE track_id = ANY($1)`, trackIDs); err != nil {
			return fmt.Errorf("clearing tags: %w", err)
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"track_tags"}, tagColumns, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("copying tags: %w", err)
		}
		return nil
	})
}

// GetForTracks returns the stored tags per track, heaviest first.
func (r *TagRepository) GetForTracks(ctx context.Context, trackIDs []string) (map[string][]TrackTag, error) {
	out := make(map[string][]TrackTag)
	if len(trackIDs) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT track_id, tag_name, tag_count, source, fetched_at
		FROM track_tags
		WHERE track_id = ANY($1)
		ORDER BY track_id, tag_count DESC, tag_name`, trackIDs)
	if err != nil {
		return nil, fmt.Errorf("querying track tags: %w", err)
	}
	tags, err := pgx.CollectRows(rows, pgx.RowToStructByPos[TrackTag])
	if err != nil {
		return nil, fmt.Errorf("reading track tags: %w", err)
	}
	for _, t := range tags {
		out[t.TrackID] = append(out[t.TrackID], t)
	}
	return out, nil
}

// TagCount is a tag name with its summed weight.
type TagCount struct {
	Name  string
	Count int
}

// TopForUser returns the heaviest tags across a user's liked tracks.
func (r *TagRepository) TopForUser(ctx context.Context, userID string, limit int) ([]TagCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT lower(tt.tag_name) AS name, SUM(tt.tag_count)::int AS total
		FROM track_tags tt
		JOIN user_tracks ut ON ut.track_id = tt.track_id
		WHERE ut.user_id = $1
		GROUP BY lower(tt.tag_name)
		ORDER BY total DESC, name
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top tags: %w", err)
	}
	top, err := pgx.CollectRows(rows, pgx.RowToStructByPos[TagCount])
	if err != nil {
		return nil, fmt.Errorf("reading top tags: %w", err)
	}
	return top, nil
}
