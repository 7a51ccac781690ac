// Package db provides PostgreSQL persistence for users, the track catalog,
// analysis history and generated playlists.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a looked up row does not exist.
var ErrNotFound = errors.New("not found")

// DB is a PostgreSQL pool with a repository per table group.
type DB struct {
	pool *pgxpool.Pool
}

// Option adjusts the pool configuration.
type Option func(*pgxpool.Config)

// WithMaxConns caps the number of open connections.
func WithMaxConns(n int32) Option {
	return func(c *pgxpool.Config) {
		if n > 0 {
			c.MaxConns = n
		}
	}
}

// New connects to databaseURL and checks the connection.
func New(ctx context.Context, databaseURL string, opts ...Option) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	for _, opt := range opts {
		opt(cfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging %s: %w", cfg.ConnConfig.Host, err)
	}
	return &DB{pool: pool}, nil
}

// Close releases every connection.
func (db *DB) Close() {
	db.pool.Close()
}

func (db *DB) Users() *UserRepository         { return &UserRepository{pool: db.pool} }
func (db *DB) Analyses() *AnalysisRepository  { return &AnalysisRepository{pool: db.pool} }
func (db *DB) Tracks() *TrackRepository       { return &TrackRepository{pool: db.pool} }
func (db *DB) Tags() *TagRepository           { return &TagRepository{pool: db.pool} }
func (db *DB) Playlists() *PlaylistRepository { return &PlaylistRepository{pool: db.pool} }
