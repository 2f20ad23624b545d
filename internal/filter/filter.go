// Package filter ranks collected posts by engagement. Pure functions, no I/O.
package filter

import (
	"sort"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/types"
)

// FilterAndRank keeps posts meeting both thresholds and sorts them by
// engagement score, highest first. The sort is stable so ties keep their
// original relative order. Empty output is a valid outcome; the caller
// decides whether zero matches is fatal.
func FilterAndRank(posts []types.Post, minLikes, minReposts int) []types.Post {
	kept := make([]types.Post, 0, len(posts))
	for _, p := range posts {
		if p.Likes >= minLikes && p.Reposts >= minReposts {
			kept = append(kept, p)
		}
	}
	sort.SliceStable(kept, func(a, b int) bool {
		return kept[a].EngagementScore > kept[b].EngagementScore
	})
	return kept
}

// Maxima reports the highest like and repost counts observed, used to give
// actionable detail when thresholds exclude everything.
func Maxima(posts []types.Post) (maxLikes, maxReposts int) {
	for _, p := range posts {
		if p.Likes > maxLikes {
			maxLikes = p.Likes
		}
		if p.Reposts > maxReposts {
			maxReposts = p.Reposts
		}
	}
	return maxLikes, maxReposts
}
