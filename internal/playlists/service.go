// Package playlists builds mood playlists from a user's synced library,
// persists them and optionally creates them on Spotify.
package playlists

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/justestif/go-moodtune/internal/analysis"
	"github.com/justestif/go-moodtune/internal/clustering"
	"github.com/justestif/go-moodtune/internal/db"
	"github.com/justestif/go-moodtune/internal/recommend"
)

// Store is the persistence the service needs.
type Store interface {
	UserTracks(ctx context.Context, userID string) ([]db.UserTrack, []db.Track, error)
	TagsForTracks(ctx context.Context, trackIDs []string) (map[string][]db.TrackTag, error)
	CreatePlaylist(ctx context.Context, p *db.Playlist, tracks []db.PlaylistTrack) error
	SetSpotifyID(ctx context.Context, id uuid.UUID, spotifyID string) error
	PlaylistsForUser(ctx context.Context, userID string) ([]db.Playlist, error)
	PlaylistTracks(ctx context.Context, id uuid.UUID) ([]db.PlaylistTrack, error)
	Playlist(ctx context.Context, id uuid.UUID) (*db.Playlist, error)
	DeletePlaylist(ctx context.Context, id uuid.UUID) error
}

// Creator creates a playlist on a streaming service and returns its ID.
// *spotify.Client implements it.
type Creator interface {
	CreatePrivatePlaylist(ctx context.Context, name, description string, trackIDs []string) (string, error)
}

type dbStore struct {
	db *db.DB
}

func (s dbStore) UserTracks(ctx context.Context, userID string) ([]db.UserTrack, []db.Track, error) {
	return s.db.Tracks().GetUserTracksWithAddedAt(ctx, userID)
}

func (s dbStore) TagsForTracks(ctx context.Context, trackIDs []string) (map[string][]db.TrackTag, error) {
	return s.db.Tags().GetForTracks(ctx, trackIDs)
}

func (s dbStore) CreatePlaylist(ctx context.Context, p *db.Playlist, tracks []db.PlaylistTrack) error {
	return s.db.Playlists().Create(ctx, p, tracks)
}

func (s dbStore) SetSpotifyID(ctx context.Context, id uuid.UUID, spotifyID string) error {
	return s.db.Playlists().UpdateSpotifyID(ctx, id, spotifyID)
}

func (s dbStore) PlaylistsForUser(ctx context.Context, userID string) ([]db.Playlist, error) {
	return s.db.Playlists().GetForUser(ctx, userID)
}

func (s dbStore) PlaylistTracks(ctx context.Context, id uuid.UUID) ([]db.PlaylistTrack, error) {
	return s.db.Playlists().GetTracks(ctx, id)
}

func (s dbStore) Playlist(ctx context.Context, id uuid.UUID) (*db.Playlist, error) {
	return s.db.Playlists().Get(ctx, id)
}

func (s dbStore) DeletePlaylist(ctx context.Context, id uuid.UUID) error {
	return s.db.Playlists().Delete(ctx, id)
}

// Service handles playlist generation and persistence.
type Service struct {
	store    Store
	clusters int
	log      *logrus.Entry
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClusters sets k for catalog clustering.
func WithClusters(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.clusters = k
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Entry) Option {
	return func(s *Service) {
		s.log = log
	}
}

// New creates a playlist service backed by the database.
func New(database *db.DB, opts ...Option) *Service {
	return NewWithStore(dbStore{db: database}, opts...)
}

// NewWithStore creates a playlist service on any Store.
func NewWithStore(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		clusters: clustering.DefaultNumClusters,
		log:      logrus.WithField("component", "playlists"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadCatalog clusters a user's liked tracks. Tracks without audio
// features are skipped; recommend.ErrEmptyCatalog is returned when none
// are left.
func (s *Service) LoadCatalog(ctx context.Context, userID string) (*clustering.Catalog, error) {
	userTracks, tracks, err := s.store.UserTracks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user tracks: %w", err)
	}
	if len(tracks) == 0 {
		return nil, recommend.ErrEmptyCatalog
	}

	trackIDs := make([]string, len(tracks))
	for i, t := range tracks {
		trackIDs[i] = t.ID
	}
	tagsMap, err := s.store.TagsForTracks(ctx, trackIDs)
	if err != nil {
		return nil, fmt.Errorf("loading track tags: %w", err)
	}

	clusteringTracks := make([]clustering.Track, len(tracks))
	for i, t := range tracks {
		clusteringTracks[i] = toClusteringTrack(t, userTracks[i], tagsMap[t.ID])
	}

	cat, err := clustering.BuildCatalog(clusteringTracks, s.clusters)
	if errors.Is(err, clustering.ErrNoTracks) {
		return nil, recommend.ErrEmptyCatalog
	}
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"user":     userID,
		"tracks":   cat.Len(),
		"skipped":  cat.Skipped,
		"clusters": len(cat.Clusters),
	}).Debug("Catalog built")
	return cat, nil
}

// Request describes a playlist to create. Analysis is optional and must
// already be recorded when given; the playlist links to it by ID.
type Request struct {
	UserID   string
	Analysis *analysis.Analysis
	Result   recommend.Result
}

// Create persists the recommendation as a playlist. When creator is
// non-nil the playlist is also created on Spotify and its ID recorded;
// a Spotify failure is returned after the local playlist is stored.
func (s *Service) Create(ctx context.Context, req Request, creator Creator) (*db.Playlist, error) {
	if len(req.Result.Tracks) == 0 {
		return nil, recommend.ErrEmptyCatalog
	}

	p := &db.Playlist{
		Name:      PlaylistName(req.Result, s.now()),
		Emotion:   string(req.Result.Emotion),
		Sentiment: req.Result.Sentiment,
		Method:    string(req.Result.Method),
	}
	if req.UserID != "" {
		p.UserID = &req.UserID
	}
	if req.Analysis != nil {
		id := req.Analysis.ID
		p.AnalysisID = &id
	}

	tracks := make([]db.PlaylistTrack, len(req.Result.Tracks))
	trackIDs := make([]string, len(req.Result.Tracks))
	for i, r := range req.Result.Tracks {
		tracks[i] = db.PlaylistTrack{
			Position: i,
			TrackID:  r.Track.ID,
			Name:     r.Track.Name,
			Artist:   r.Track.Artist,
			Score:    r.Score,
		}
		trackIDs[i] = r.Track.ID
	}

	if err := s.store.CreatePlaylist(ctx, p, tracks); err != nil {
		return nil, fmt.Errorf("creating playlist %q: %w", p.Name, err)
	}

	if creator == nil {
		return p, nil
	}

	spotifyID, err := creator.CreatePrivatePlaylist(ctx, p.Name, Description(req), trackIDs)
	if err != nil {
		return p, fmt.Errorf("creating spotify playlist: %w", err)
	}
	if err := s.store.SetSpotifyID(ctx, p.ID, spotifyID); err != nil {
		return p, fmt.Errorf("recording spotify playlist: %w", err)
	}
	p.SpotifyID = &spotifyID

	s.log.WithFields(logrus.Fields{
		"playlist": p.ID,
		"spotify":  spotifyID,
		"tracks":   len(tracks),
	}).Info("Playlist created on Spotify")
	return p, nil
}

// GetUserPlaylists retrieves all persisted playlists for a user.
func (s *Service) GetUserPlaylists(ctx context.Context, userID string) ([]db.Playlist, error) {
	playlists, err := s.store.PlaylistsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting user playlists: %w", err)
	}
	return playlists, nil
}

// GetPlaylist retrieves a playlist and its tracks in order. db.ErrNotFound
// is returned for an unknown ID.
func (s *Service) GetPlaylist(ctx context.Context, playlistID string) (*db.Playlist, []db.PlaylistTrack, error) {
	id, err := uuid.Parse(playlistID)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid playlist ID: %w", err)
	}
	p, err := s.store.Playlist(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("getting playlist: %w", err)
	}
	tracks, err := s.store.PlaylistTracks(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("getting playlist tracks: %w", err)
	}
	return p, tracks, nil
}

// DeletePlaylist removes a persisted playlist. A playlist created on
// Spotify stays there.
func (s *Service) DeletePlaylist(ctx context.Context, playlistID string) error {
	id, err := uuid.Parse(playlistID)
	if err != nil {
		return fmt.Errorf("invalid playlist ID: %w", err)
	}
	if err := s.store.DeletePlaylist(ctx, id); err != nil {
		return fmt.Errorf("deleting playlist: %w", err)
	}
	s.log.WithField("playlist", id).Info("Playlist deleted")
	return nil
}

// PlaylistName names a playlist after its emotion and creation date,
// e.g. "Joy Mix - Oct 17".
func PlaylistName(r recommend.Result, at time.Time) string {
	emotion := string(r.Emotion)
	if emotion == "" {
		emotion = "mood"
	}
	return fmt.Sprintf("%s Mix - %s", strings.ToUpper(emotion[:1])+emotion[1:], at.Format("Jan 2"))
}

// Description summarizes where a playlist came from.
func Description(req Request) string {
	desc := fmt.Sprintf("%d songs for %s (sentiment %+.2f, %s)",
		len(req.Result.Tracks), req.Result.Emotion, req.Result.Sentiment, req.Result.Method)
	if req.Analysis != nil && req.Analysis.Text != "" {
		text := []rune(req.Analysis.Text)
		if len(text) > 80 {
			text = append(text[:77], []rune("...")...)
		}
		desc += ": " + string(text)
	}
	return desc
}

// toClusteringTrack converts database types to a clustering.Track.
func toClusteringTrack(track db.Track, userTrack db.UserTrack, tags []db.TrackTag) clustering.Track {
	clusterTags := make([]clustering.Tag, len(tags))
	for i, t := range tags {
		clusterTags[i] = clustering.Tag{
			Name:  t.TagName,
			Count: t.TagCount,
		}
	}
	return clustering.Track{
		ID:           track.ID,
		Name:         track.Name,
		Artist:       track.Artist,
		Popularity:   track.Popularity,
		AddedAt:      userTrack.AddedAt,
		Liked:        true,
		Tags:         clusterTags,
		Valence:      track.Valence,
		Energy:       track.Energy,
		Danceability: track.Danceability,
		Acousticness: track.Acousticness,
		Tempo:        track.Tempo,
	}
}
