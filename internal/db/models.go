package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User is a Spotify profile whose liked songs have been synced.
type User struct {
	ID          string
	DisplayName string
	Email       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastSyncAt  *time.Time // nil until the first sync

	// Filled by Get only.
	LibrarySize int
	Playlists   int
}

// Track represents a catalog track with its audio features.
type Track struct {
	ID         string
	Name       string
	Artist     string
	Album      *string // nullable
	Popularity int
	// Audio features, nil until fetched
	Valence      *float32
	Energy       *float32
	Danceability *float32
	Acousticness *float32
	Tempo        *float32
	CreatedAt    time.Time
}

// UserTrack represents a user's liked track with timestamp.
type UserTrack struct {
	UserID  string
	TrackID string
	AddedAt time.Time
}

// TrackTag represents a Last.fm tag for a track.
type TrackTag struct {
	TrackID   string
	TagName   string
	TagCount  int
	Source    string // "track" or "artist"
	FetchedAt time.Time
}

// Analysis is a stored text analysis. Result holds the full analysis as
// JSON; the summary columns are kept for listing and filtering.
type Analysis struct {
	ID             uuid.UUID
	TextHash       string
	Text           string
	PrimaryEmotion string
	Sentiment      float64
	Confidence     float64
	Result         json.RawMessage
	CreatedAt      time.Time
}

// Playlist is a generated mood playlist.
type Playlist struct {
	ID         uuid.UUID
	UserID     *string // nullable, empty for anonymous CLI use
	AnalysisID *uuid.UUID
	Name       string
	Emotion    string
	Sentiment  float64
	Method     string
	SpotifyID  *string // nullable - Spotify playlist ID if created
	CreatedAt  time.Time
}

// PlaylistTrack is one entry of a playlist, in order.
type PlaylistTrack struct {
	PlaylistID uuid.UUID
	Position   int
	TrackID    string
	Name       string
	Artist     string
	Score      float64
}
