// Package tags fetches Last.fm tags for tracks and reads a mood from them by
// running the tag names through the mood engine.
package tags

import (
	"context"
	"strings"
	"sync"

	"github.com/justestif/go-moodtune/internal/lastfm"
	"github.com/justestif/go-moodtune/internal/mood"
)

// TagSource indicates where the tags came from.
type TagSource string

const (
	// SourceTrack means tags came from track.getTopTags.
	SourceTrack TagSource = "track"
	// SourceCache means tags were read from the database.
	SourceCache TagSource = "cache"
	// SourceNone means no tags were found.
	SourceNone TagSource = "none"
)

// Default concurrency for batch processing.
const DefaultConcurrency = 5

// moodTagCount is how many of the strongest tags feed the mood reading.
const moodTagCount = 5

// Track represents the minimal track info needed for tag lookup.
type Track struct {
	ID     string
	Name   string
	Artist string
}

// TrackTags holds the tags fetched for a track and the mood they carry.
type TrackTags struct {
	TrackID string
	Tags    []lastfm.Tag
	Source  TagSource
	Mood    TagMood
	Error   error // Non-nil if fetching failed
}

// TagMood is the mood read from a track's tags. Matched is false when none
// of the tags carried a mood word and the engine fell back to neutral.
type TagMood struct {
	Emotion   mood.Emotion
	Sentiment float64
	Matched   bool
}

// TagFetcher abstracts the Last.fm client for testing.
type TagFetcher interface {
	GetTags(ctx context.Context, artist, track string) ([]lastfm.Tag, error)
}

// Service fetches tags from a TagFetcher with a bounded worker pool.
type Service struct {
	fetcher     TagFetcher
	engine      *mood.Engine
	concurrency int
}

// Option configures a Service.
type Option func(*Service)

// WithConcurrency sets the number of concurrent tag fetch operations.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithEngine enables mood reading of fetched tags.
func WithEngine(e *mood.Engine) Option {
	return func(s *Service) {
		s.engine = e
	}
}

// NewService creates a new tag service.
func NewService(fetcher TagFetcher, opts ...Option) *Service {
	s := &Service{
		fetcher:     fetcher,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchTagsForTracks fetches tags for multiple tracks concurrently.
// Results are returned in the same order as input tracks.
// Individual fetch errors are captured in TrackTags.Error rather than failing the batch.
func (s *Service) FetchTagsForTracks(ctx context.Context, tracks []Track) ([]TrackTags, error) {
	if len(tracks) == 0 {
		return []TrackTags{}, nil
	}

	results := make([]TrackTags, len(tracks))

	type workItem struct {
		index int
		track Track
	}
	workCh := make(chan workItem, len(tracks))
	for i, t := range tracks {
		workCh <- workItem{index: i, track: t}
	}
	close(workCh)

	var wg sync.WaitGroup
	for i := 0; i < min(s.concurrency, len(tracks)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for work := range workCh {
				if err := ctx.Err(); err != nil {
					results[work.index] = TrackTags{
						TrackID: work.track.ID,
						Tags:    []lastfm.Tag{},
						Source:  SourceNone,
						Error:   err,
					}
					continue
				}
				results[work.index] = s.fetchOne(ctx, work.track)
			}
		}()
	}

	wg.Wait()

	if ctx.Err() != nil {
		return results, ctx.Err()
	}
	return results, nil
}

func (s *Service) fetchOne(ctx context.Context, t Track) TrackTags {
	tags, err := s.fetcher.GetTags(ctx, t.Artist, t.Name)
	if err != nil {
		return TrackTags{TrackID: t.ID, Tags: []lastfm.Tag{}, Source: SourceNone, Error: err}
	}

	result := TrackTags{TrackID: t.ID, Tags: tags, Source: SourceTrack}
	if len(tags) == 0 {
		result.Source = SourceNone
	}
	result.Mood = s.MoodOf(tags)
	return result
}

// MoodOf reads a mood from the strongest tags. Without an engine, or
// without tags, the zero TagMood is returned.
func (s *Service) MoodOf(tags []lastfm.Tag) TagMood {
	if s.engine == nil || len(tags) == 0 {
		return TagMood{}
	}

	names := lastfm.TopNames(tags, moodTagCount)
	if len(names) == 0 {
		return TagMood{}
	}
	r := s.engine.Analyze(strings.Join(names, ", "))
	return TagMood{
		Emotion:   r.Primary,
		Sentiment: r.Sentiment,
		Matched:   !r.Fallback && len(r.Scores) > 0,
	}
}

// MoodCounts tallies the matched tag moods of results by emotion.
func MoodCounts(results []TrackTags) map[mood.Emotion]int {
	counts := make(map[mood.Emotion]int)
	for _, r := range results {
		if r.Mood.Matched {
			counts[r.Mood.Emotion]++
		}
	}
	return counts
}
