// Package entity defines the core domain entities for the scoring pipeline.
// It contains the fundamental business objects such as Article, ScoredArticle
// and NotificationRecord, along with their validation rules and domain errors.
package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"newswatch/internal/utils/text"
)

// Article represents a normalized news item fetched from an RSS feed.
// Fields are fixed at construction time; downstream stages never mutate them.
type Article struct {
	Title       string
	Summary     string
	Source      string
	URL         string
	PublishedAt time.Time
	Tags        []string
}

// Fingerprint returns the stable identity of the article across runs.
// It hashes the normalized title, the source name and the published time
// truncated to the minute, so re-fetches of the same item (with jittered
// feed timestamps or retitled whitespace) collapse to one identity.
func (a Article) Fingerprint() string {
	ts := a.PublishedAt.UTC().Truncate(time.Minute).Format(time.RFC3339)
	h := sha256.New()
	h.Write([]byte(text.NormalizeTitle(a.Title)))
	h.Write([]byte{'\n'})
	h.Write([]byte(text.NormalizeTitle(a.Source)))
	h.Write([]byte{'\n'})
	h.Write([]byte(ts))
	return hex.EncodeToString(h.Sum(nil))
}

// ScoredArticle is an Article annotated with the relevance verdict of a
// scorer backend.
type ScoredArticle struct {
	Article

	// Score is always within [MinScore, MaxScore].
	Score     float64
	Rationale string
	ScorerName string
}

// Score bounds shared by every scorer backend.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// ClampScore forces a raw scorer output into the valid score range.
// Callers log when clamping actually changed the value; a backend that
// produces out-of-range scores is misbehaving but must not poison the run.
func ClampScore(v float64) float64 {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}
