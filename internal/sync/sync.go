// Package sync imports a user's Spotify liked songs into the catalog and
// enriches them with Last.fm tags.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/justestif/go-moodtune/internal/clustering"
	"github.com/justestif/go-moodtune/internal/db"
	"github.com/justestif/go-moodtune/internal/mood"
	"github.com/justestif/go-moodtune/internal/spotify"
	"github.com/justestif/go-moodtune/internal/tags"
)

// Common errors.
var (
	// ErrSyncTooRecent is returned when sync is attempted within the cooldown period.
	ErrSyncTooRecent = errors.New("sync attempted too recently")
)

// DefaultSyncCooldown is the default time between allowed syncs (1 hour).
const DefaultSyncCooldown = 1 * time.Hour

// Library is the Spotify side of a sync. *spotify.Client implements it.
type Library interface {
	CurrentUser(ctx context.Context) (spotify.User, error)
	FetchLibrary(ctx context.Context) ([]clustering.Track, error)
}

// TagFetcher enriches tracks with tags. *tags.CachedTagFetcher implements it.
type TagFetcher interface {
	GetTagsForTracks(ctx context.Context, tracks []tags.Track) ([]tags.TrackTags, error)
}

// Store is the persistence a sync needs.
type Store interface {
	GetUser(ctx context.Context, id string) (*db.User, error)
	UpsertUser(ctx context.Context, user *db.User) error
	UpdateLastSync(ctx context.Context, id string, at time.Time) error
	UpsertTracks(ctx context.Context, tracks []db.Track) error
	LinkTracks(ctx context.Context, userID string, tracks []db.UserTrack) error
	UnlinkMissing(ctx context.Context, userID string, keep []string) (int64, error)
}

// dbStore adapts *db.DB to Store.
type dbStore struct {
	db *db.DB
}

func (s dbStore) GetUser(ctx context.Context, id string) (*db.User, error) {
	return s.db.Users().Get(ctx, id)
}

func (s dbStore) UpsertUser(ctx context.Context, user *db.User) error {
	return s.db.Users().Upsert(ctx, user)
}

func (s dbStore) UpdateLastSync(ctx context.Context, id string, at time.Time) error {
	return s.db.Users().UpdateLastSync(ctx, id, at)
}

func (s dbStore) UpsertTracks(ctx context.Context, tracks []db.Track) error {
	return s.db.Tracks().UpsertBatch(ctx, tracks)
}

func (s dbStore) LinkTracks(ctx context.Context, userID string, tracks []db.UserTrack) error {
	return s.db.Tracks().LinkBatchToUser(ctx, userID, tracks)
}

func (s dbStore) UnlinkMissing(ctx context.Context, userID string, keep []string) (int64, error) {
	return s.db.Tracks().UnlinkMissing(ctx, userID, keep)
}

// Service handles syncing data from Spotify to the database.
type Service struct {
	store        Store
	tags         TagFetcher
	syncCooldown time.Duration
	log          *logrus.Entry
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithSyncCooldown sets the minimum time between syncs.
func WithSyncCooldown(d time.Duration) Option {
	return func(s *Service) {
		s.syncCooldown = d
	}
}

// WithTagFetcher enables tag enrichment after the tracks are stored.
func WithTagFetcher(f TagFetcher) Option {
	return func(s *Service) {
		s.tags = f
	}
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Entry) Option {
	return func(s *Service) {
		s.log = log
	}
}

// New creates a new sync service backed by the database.
func New(database *db.DB, opts ...Option) *Service {
	return NewWithStore(dbStore{db: database}, opts...)
}

// NewWithStore creates a sync service on any Store.
func NewWithStore(store Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		syncCooldown: DefaultSyncCooldown,
		log:          logrus.WithField("component", "sync"),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncResult contains the result of a sync operation.
type SyncResult struct {
	UserID       string
	TracksCount  int
	WithFeatures int
	Added        int
	Removed      int64
	Tagged       int
	MoodCounts   map[mood.Emotion]int
	SyncedAt     time.Time
}

// CanSync checks if enough time has passed since the last sync.
// Returns true if sync is allowed, false otherwise.
// Also returns the time when the next sync will be available.
func (s *Service) CanSync(ctx context.Context, userID string) (bool, time.Time, error) {
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		// New user, allow sync
		return true, time.Time{}, nil
	}
	if err != nil {
		return false, time.Time{}, fmt.Errorf("getting user: %w", err)
	}

	if user.LastSyncAt == nil {
		return true, time.Time{}, nil
	}

	nextSyncTime := user.LastSyncAt.Add(s.syncCooldown)
	if s.now().Before(nextSyncTime) {
		return false, nextSyncTime, nil
	}

	return true, time.Time{}, nil
}

// SyncLikedSongs fetches all liked songs with audio features from Spotify
// and persists them, dropping songs the user no longer likes. With a tag
// fetcher configured, the tracks are then tagged; tag failures are logged
// and do not fail the sync.
// Returns ErrSyncTooRecent if called within the cooldown period.
// Set force=true to bypass the cooldown check (for first-time sync after login).
func (s *Service) SyncLikedSongs(ctx context.Context, lib Library, force bool) (*SyncResult, error) {
	profile, err := lib.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	userID := profile.ID

	if !force {
		canSync, nextTime, err := s.CanSync(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !canSync {
			return nil, fmt.Errorf("%w: next sync available at %s", ErrSyncTooRecent, nextTime.Format(time.RFC3339))
		}
	}

	previous := 0
	if u, err := s.store.GetUser(ctx, userID); err == nil {
		previous = u.LibrarySize
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	user := &db.User{ID: userID, DisplayName: profile.DisplayName, Email: profile.Email}
	if err := s.store.UpsertUser(ctx, user); err != nil {
		return nil, err
	}

	library, err := lib.FetchLibrary(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching liked songs: %w", err)
	}

	result := &SyncResult{UserID: userID, TracksCount: len(library)}

	dbTracks := make([]db.Track, len(library))
	userTracks := make([]db.UserTrack, len(library))
	keep := make([]string, len(library))
	for i, t := range library {
		dbTracks[i] = toDBTrack(t)
		userTracks[i] = db.UserTrack{UserID: userID, TrackID: t.ID, AddedAt: t.AddedAt}
		keep[i] = t.ID
		if t.HasFeatures() {
			result.WithFeatures++
		}
	}

	if len(dbTracks) > 0 {
		if err := s.store.UpsertTracks(ctx, dbTracks); err != nil {
			return nil, fmt.Errorf("upserting tracks: %w", err)
		}
		if err := s.store.LinkTracks(ctx, userID, userTracks); err != nil {
			return nil, fmt.Errorf("linking tracks to user: %w", err)
		}
	}

	removed, err := s.store.UnlinkMissing(ctx, userID, keep)
	if err != nil {
		return nil, err
	}
	result.Removed = removed
	result.Added = max(0, len(library)-(previous-int(removed)))

	if s.tags != nil && len(library) > 0 {
		s.enrich(ctx, library, result)
	}

	result.SyncedAt = s.now()
	if err := s.store.UpdateLastSync(ctx, userID, result.SyncedAt); err != nil {
		return nil, fmt.Errorf("updating last sync: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user":          userID,
		"tracks":        result.TracksCount,
		"with_features": result.WithFeatures,
		"added":         result.Added,
		"removed":       result.Removed,
		"tagged":        result.Tagged,
	}).Info("Library synced")

	return result, nil
}

func (s *Service) enrich(ctx context.Context, library []clustering.Track, result *SyncResult) {
	input := make([]tags.Track, len(library))
	for i, t := range library {
		input[i] = tags.Track{ID: t.ID, Name: t.Name, Artist: t.Artist}
	}

	tagged, err := s.tags.GetTagsForTracks(ctx, input)
	if err != nil {
		s.log.WithError(err).Warn("Tag enrichment incomplete")
	}
	for _, tt := range tagged {
		if tt.Error == nil && len(tt.Tags) > 0 {
			result.Tagged++
		}
	}
	result.MoodCounts = tags.MoodCounts(tagged)
}

// GetLastSyncTime returns the last sync time for a user.
// Returns nil if the user has never synced.
func (s *Service) GetLastSyncTime(ctx context.Context, userID string) (*time.Time, error) {
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user.LastSyncAt, nil
}

func toDBTrack(t clustering.Track) db.Track {
	return db.Track{
		ID:           t.ID,
		Name:         t.Name,
		Artist:       t.Artist,
		Popularity:   t.Popularity,
		Valence:      t.Valence,
		Energy:       t.Energy,
		Danceability: t.Danceability,
		Acousticness: t.Acousticness,
		Tempo:        t.Tempo,
	}
}
