package feed

import (
	"strings"

	"newswatch/internal/utils/text"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML converts feed markup into a plain-text excerpt of at most
// maxRunes runes. Feeds mix plain text, entity-escaped text and full HTML
// fragments; goquery handles all three and leaves plain text untouched.
func StripHTML(html string, maxRunes int) string {
	trimmed := strings.TrimSpace(html)
	if trimmed == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
	if err != nil {
		// Unparseable markup: fall back to the raw text rather than drop it.
		return text.TruncateRunes(collapseWhitespace(trimmed), maxRunes)
	}

	doc.Find("script, style").Remove()
	return text.TruncateRunes(collapseWhitespace(doc.Text()), maxRunes)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
