package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/justestif/go-moodtune/internal/clustering"
)

// Catalogs builds a clustered catalog from the stored tracks and keeps it
// until the track count changes.
type Catalogs struct {
	store *Store
	k     int

	mu    sync.Mutex
	cat   *clustering.Catalog
	count int
}

// NewCatalogs creates a catalog source over s with k clusters.
func NewCatalogs(s *Store, k int) *Catalogs {
	if k <= 0 {
		k = clustering.DefaultNumClusters
	}
	return &Catalogs{store: s, k: k}
}

// LoadCatalog returns the catalog of the local library. The local store is
// single-user, so userID is ignored.
func (c *Catalogs) LoadCatalog(ctx context.Context, _ string) (*clustering.Catalog, error) {
	n, err := c.store.CountTracks(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cat != nil && c.count == n {
		return c.cat, nil
	}

	tracks, err := c.store.Tracks(ctx)
	if err != nil {
		return nil, err
	}
	cat, err := clustering.BuildCatalog(tracks, c.k)
	if err != nil {
		return nil, fmt.Errorf("building catalog: %w", err)
	}
	c.cat, c.count = cat, n
	return cat, nil
}
