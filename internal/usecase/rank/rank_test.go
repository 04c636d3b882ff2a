package rank

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"newswatch/internal/domain/entity"
)

func scoredArticle(title string, score float64, publishedAt time.Time) entity.ScoredArticle {
	return entity.ScoredArticle{
		Article: entity.Article{
			Title:       title,
			Source:      "test-feed",
			PublishedAt: publishedAt,
		},
		Score:      score,
		ScorerName: "rules",
	}
}

func TestRank_OrdersByScoreDescending(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	low := scoredArticle("low", 6.1, now)
	mid := scoredArticle("mid", 7.5, now)
	high := scoredArticle("high", 9.2, now)

	got := Rank([]entity.ScoredArticle{low, high, mid}, 0, 0)
	want := []entity.ScoredArticle{high, mid, low}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rank() mismatch (-want +got):\n%s", diff)
	}
}

func TestRank_TieBreakers(t *testing.T) {
	older := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 3, 14, 11, 0, 0, 0, time.UTC)

	// Equal scores: newer published time wins; equal times fall back to
	// title order.
	newerTied := scoredArticle("b newer", 9.2, newer)
	olderTied := scoredArticle("a older", 9.2, older)
	sameTimeA := scoredArticle("alpha", 7.5, older)
	sameTimeB := scoredArticle("beta", 7.5, older)

	got := Rank([]entity.ScoredArticle{sameTimeB, olderTied, sameTimeA, newerTied}, 0, 0)
	want := []entity.ScoredArticle{newerTied, olderTied, sameTimeA, sameTimeB}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rank() mismatch (-want +got):\n%s", diff)
	}
}

func TestRank_FiltersBelowMinScore(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	keep := scoredArticle("keep", 8.0, now)
	exact := scoredArticle("exact", 7.5, now)
	drop := scoredArticle("drop", 7.4, now)

	got := Rank([]entity.ScoredArticle{drop, keep, exact}, 0, 7.5)
	want := []entity.ScoredArticle{keep, exact}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rank() mismatch (-want +got):\n%s", diff)
	}
}

func TestRank_TruncatesToTopN(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	items := []entity.ScoredArticle{
		scoredArticle("first", 9.5, now),
		scoredArticle("second", 9.0, now),
		scoredArticle("third", 8.5, now),
		scoredArticle("fourth", 8.0, now),
	}

	got := Rank(items, 2, 0)
	want := []entity.ScoredArticle{items[0], items[1]}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rank() mismatch (-want +got):\n%s", diff)
	}
}

func TestRank_TopNZeroMeansUnbounded(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	items := []entity.ScoredArticle{
		scoredArticle("first", 9.5, now),
		scoredArticle("second", 9.0, now),
	}

	got := Rank(items, 0, 0)
	if len(got) != len(items) {
		t.Errorf("expected %d items, got %d", len(items), len(got))
	}
}

func TestRank_DoesNotModifyInput(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	input := []entity.ScoredArticle{
		scoredArticle("low", 6.0, now),
		scoredArticle("high", 9.0, now),
	}
	original := make([]entity.ScoredArticle, len(input))
	copy(original, input)

	Rank(input, 0, 0)

	if diff := cmp.Diff(original, input); diff != "" {
		t.Errorf("input slice was modified (-want +got):\n%s", diff)
	}
}

func TestRank_EmptyInput(t *testing.T) {
	got := Rank(nil, 5, 7.5)
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d items", len(got))
	}
}
