package clustering

import (
	"cmp"
	"maps"
	"slices"
	"strings"
)

// topTags names the n heaviest tags of a cluster's members. Names are
// folded to lower case, unweighted tags count once, and equal weights sort
// by name.
func topTags(tracks []Track, n int) []string {
	weight := make(map[string]int)
	for _, t := range tracks {
		for _, tag := range t.Tags {
			if name := strings.ToLower(strings.TrimSpace(tag.Name)); name != "" {
				weight[name] += max(tag.Count, 1)
			}
		}
	}
	if len(weight) == 0 {
		return nil
	}

	names := slices.SortedFunc(maps.Keys(weight), func(a, b string) int {
		return cmp.Or(cmp.Compare(weight[b], weight[a]), strings.Compare(a, b))
	})
	return names[:min(n, len(names))]
}
