package lastfm

import (
	"cmp"
	"slices"
	"strings"
)

// Tag is a Last.fm top tag. Count is Last.fm's relative weight from 0 to
// 100; artist tags come without one.
type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count,omitempty"`
	URL   string `json:"url"`
}

// minTagCount drops the long tail of tags only a few listeners applied.
const minTagCount = 10

// TopNames returns the lowercased names of the n heaviest tags. Weighted
// tags below minTagCount are skipped; unweighted ones keep their order.
func TopNames(tags []Tag, n int) []string {
	sorted := slices.Clone(tags)
	slices.SortStableFunc(sorted, func(a, b Tag) int {
		return cmp.Compare(b.Count, a.Count)
	})

	names := make([]string, 0, min(n, len(sorted)))
	for _, t := range sorted {
		if len(names) == n {
			break
		}
		if t.Count > 0 && t.Count < minTagCount {
			continue
		}
		if name := strings.ToLower(strings.TrimSpace(t.Name)); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// topTagsResponse is the body of both track.getTopTags and
// artist.getTopTags.
type topTagsResponse struct {
	TopTags struct {
		Tag []Tag `json:"tag"`
	} `json:"toptags"`
}

// apiError is the body Last.fm sends instead of a result.
type apiError struct {
	Code    int    `json:"error"`
	Message string `json:"message"`
}
