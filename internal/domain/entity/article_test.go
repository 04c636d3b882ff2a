package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestArticle_Fingerprint_Stable(t *testing.T) {
	publishedAt := time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC)

	base := Article{
		Title:       "Fed Announces Emergency Rate Cut",
		Source:      "Reuters",
		PublishedAt: publishedAt,
	}

	tests := []struct {
		name    string
		article Article
	}{
		{
			name: "extra whitespace in title",
			article: Article{
				Title:       "  Fed  Announces\tEmergency Rate Cut ",
				Source:      "Reuters",
				PublishedAt: publishedAt,
			},
		},
		{
			name: "different title casing",
			article: Article{
				Title:       "FED ANNOUNCES EMERGENCY RATE CUT",
				Source:      "Reuters",
				PublishedAt: publishedAt,
			},
		},
		{
			name: "different source casing",
			article: Article{
				Title:       "Fed Announces Emergency Rate Cut",
				Source:      "REUTERS",
				PublishedAt: publishedAt,
			},
		},
		{
			name: "seconds within the same minute",
			article: Article{
				Title:       "Fed Announces Emergency Rate Cut",
				Source:      "Reuters",
				PublishedAt: publishedAt.Add(45 * time.Second),
			},
		},
		{
			name: "same instant in another timezone",
			article: Article{
				Title:       "Fed Announces Emergency Rate Cut",
				Source:      "Reuters",
				PublishedAt: publishedAt.In(time.FixedZone("CET", 3600)),
			},
		},
		{
			name: "different summary and url",
			article: Article{
				Title:       "Fed Announces Emergency Rate Cut",
				Source:      "Reuters",
				Summary:     "a completely different excerpt",
				URL:         "https://example.com/other",
				PublishedAt: publishedAt,
			},
		},
	}

	want := base.Fingerprint()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, want, tt.article.Fingerprint())
		})
	}
}

func TestArticle_Fingerprint_Distinct(t *testing.T) {
	publishedAt := time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC)

	base := Article{
		Title:       "Fed Announces Emergency Rate Cut",
		Source:      "Reuters",
		PublishedAt: publishedAt,
	}

	tests := []struct {
		name    string
		article Article
	}{
		{
			name: "different title",
			article: Article{
				Title:       "Fed Holds Rates Steady",
				Source:      "Reuters",
				PublishedAt: publishedAt,
			},
		},
		{
			name: "different source",
			article: Article{
				Title:       "Fed Announces Emergency Rate Cut",
				Source:      "AP",
				PublishedAt: publishedAt,
			},
		},
		{
			name: "different minute",
			article: Article{
				Title:       "Fed Announces Emergency Rate Cut",
				Source:      "Reuters",
				PublishedAt: publishedAt.Add(time.Minute),
			},
		},
	}

	want := base.Fingerprint()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, want, tt.article.Fingerprint())
		})
	}
}

func TestArticle_Fingerprint_Format(t *testing.T) {
	article := Article{
		Title:       "Quake hits coast",
		Source:      "AP",
		PublishedAt: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}

	fp := article.Fingerprint()

	// SHA-256 hex digest
	assert.Len(t, fp, 64)
	assert.Regexp(t, "^[0-9a-f]+$", fp)
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{name: "below minimum", input: -1.5, want: MinScore},
		{name: "at minimum", input: 0.0, want: 0.0},
		{name: "in range", input: 5.5, want: 5.5},
		{name: "at maximum", input: 10.0, want: 10.0},
		{name: "above maximum", input: 12.3, want: MaxScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampScore(tt.input))
		})
	}
}
