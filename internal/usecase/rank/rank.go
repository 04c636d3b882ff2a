// Package rank orders scored articles for delivery.
package rank

import (
	"sort"

	"newswatch/internal/domain/entity"
)

// Rank filters out articles below minScore, sorts the rest by score
// descending with published time descending and title ascending as
// tie-breakers, and truncates to topN. topN <= 0 means no truncation.
//
// The input slice is not modified. Identical inputs always produce
// identical output order.
func Rank(items []entity.ScoredArticle, topN int, minScore float64) []entity.ScoredArticle {
	ranked := make([]entity.ScoredArticle, 0, len(items))
	for _, item := range items {
		if item.Score < minScore {
			continue
		}
		ranked = append(ranked, item)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if !ranked[i].PublishedAt.Equal(ranked[j].PublishedAt) {
			return ranked[i].PublishedAt.After(ranked[j].PublishedAt)
		}
		return ranked[i].Title < ranked[j].Title
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
