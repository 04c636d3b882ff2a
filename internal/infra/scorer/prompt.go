package scorer

import (
	"fmt"
	"log/slog"
)

// maxPromptChars bounds the article text embedded in a model prompt.
// Keeps requests well under every backend's token limit.
const maxPromptChars = 10000

// DefaultCriteria describes the relevance scale handed to model backends
// when the operator does not configure their own.
const DefaultCriteria = `9-10: breaking news of global importance (war, major crisis, government collapse)
7-8: international politics or economics with broad impact
5-6: significant national news
3-4: regional or routine political news
1-2: local or niche interest`

// buildScoringPrompt constructs the prompt shared by all model backends.
// The response format is fixed so ParseModelResponse can handle every
// backend uniformly.
func buildScoringPrompt(criteria, title, summary string) string {
	if criteria == "" {
		criteria = DefaultCriteria
	}

	body := title
	if summary != "" {
		body = title + "\n" + summary
	}
	if len(body) > maxPromptChars {
		body = body[:maxPromptChars] + "..."
		slog.Warn("article text truncated for scoring prompt",
			slog.Int("limit", maxPromptChars))
	}

	return fmt.Sprintf(`Rate the news relevance of the following article on a scale of 1-10.

Scale:
%s

Reply with exactly two lines:
Score: <number>
Rationale: <one short sentence>

Article:
%s`, criteria, body)
}
