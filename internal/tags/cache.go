package tags

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/justestif/go-moodtune/internal/db"
	"github.com/justestif/go-moodtune/internal/lastfm"
)

// CacheTTL is the duration after which cached tags are considered stale.
const CacheTTL = 30 * 24 * time.Hour // 30 days

// TagStore persists tags. *db.TagRepository implements it.
type TagStore interface {
	GetForTracks(ctx context.Context, trackIDs []string) (map[string][]db.TrackTag, error)
	Replace(ctx context.Context, tags []db.TrackTag) error
}

// CachedTagFetcher serves tags from the store and fetches stale or missing
// ones through the Service, persisting what it gets.
type CachedTagFetcher struct {
	store   TagStore
	service *Service
	log     *logrus.Entry
	now     func() time.Time
}

// NewCachedTagFetcher creates a CachedTagFetcher.
func NewCachedTagFetcher(store TagStore, service *Service, log *logrus.Entry) *CachedTagFetcher {
	return &CachedTagFetcher{
		store:   store,
		service: service,
		log:     log,
		now:     time.Now,
	}
}

// GetTagsForTracks returns tags for every track, in input order.
// Fetch failures for single tracks are logged and reported in
// TrackTags.Error; only store failures and cancellation fail the call.
func (c *CachedTagFetcher) GetTagsForTracks(ctx context.Context, tracks []Track) ([]TrackTags, error) {
	if len(tracks) == 0 {
		return []TrackTags{}, nil
	}

	trackIDs := make([]string, len(tracks))
	for i, t := range tracks {
		trackIDs[i] = t.ID
	}

	cached, err := c.store.GetForTracks(ctx, trackIDs)
	if err != nil {
		return nil, fmt.Errorf("getting cached tags: %w", err)
	}

	results := make([]TrackTags, len(tracks))
	var needsFetch []Track
	var fetchIndex []int
	staleThreshold := c.now().Add(-CacheTTL)

	for i, t := range tracks {
		cachedTags := cached[t.ID]
		// Missing or stale entries are refetched
		if len(cachedTags) == 0 || cachedTags[0].FetchedAt.Before(staleThreshold) {
			needsFetch = append(needsFetch, t)
			fetchIndex = append(fetchIndex, i)
			continue
		}
		tags := dbTagsToLastfmTags(cachedTags)
		results[i] = TrackTags{
			TrackID: t.ID,
			Tags:    tags,
			Source:  SourceCache,
			Mood:    c.service.MoodOf(tags),
		}
	}

	if len(needsFetch) == 0 {
		return results, nil
	}

	fetched, fetchErr := c.service.FetchTagsForTracks(ctx, needsFetch)
	var dbTags []db.TrackTag
	now := c.now()
	failed := 0
	for j, r := range fetched {
		results[fetchIndex[j]] = r
		if r.Error != nil {
			failed++
			continue
		}
		for _, tag := range r.Tags {
			dbTags = append(dbTags, db.TrackTag{
				TrackID:   r.TrackID,
				TagName:   tag.Name,
				TagCount:  tag.Count,
				Source:    string(r.Source),
				FetchedAt: now,
			})
		}
	}
	if failed > 0 {
		c.log.WithField("failed", failed).Warn("Some tag lookups failed")
	}

	if len(dbTags) > 0 {
		if err := c.store.Replace(ctx, dbTags); err != nil {
			return results, fmt.Errorf("persisting tags: %w", err)
		}
	}
	return results, fetchErr
}

// dbTagsToLastfmTags converts database TrackTag slice to lastfm.Tag slice.
func dbTagsToLastfmTags(dbTags []db.TrackTag) []lastfm.Tag {
	tags := make([]lastfm.Tag, len(dbTags))
	for i, t := range dbTags {
		tags[i] = lastfm.Tag{
			Name:  t.TagName,
			Count: t.TagCount,
		}
	}
	return tags
}
