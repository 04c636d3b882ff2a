package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"newswatch/internal/domain/entity"
	"newswatch/internal/infra/notifier"
	"newswatch/internal/observability/metrics"
)

const digestTitle = "📊 Daily News Summary"

// NotifyDigest sends one aggregate message listing the given articles,
// highest score first. The digest bypasses the dedup store: articles that
// were already pushed individually still appear in the daily roundup.
// An empty list sends nothing.
func (g *Gateway) NotifyDigest(ctx context.Context, top []entity.ScoredArticle) error {
	if len(top) == 0 {
		slog.Info("digest skipped, no articles to summarize")
		return nil
	}

	msg := notifier.Message{
		Title: digestTitle,
		Body:  formatDigestBody(top),
	}

	var sent int
	var sendErrs []error
	for _, transport := range g.transports {
		if !transport.IsEnabled() {
			continue
		}
		if err := transport.Send(ctx, msg); err != nil {
			metrics.RecordNotification(transport.Name(), "failed", "normal")
			sendErrs = append(sendErrs, fmt.Errorf("%s: %w", transport.Name(), err))
			continue
		}
		metrics.RecordNotification(transport.Name(), "sent", "normal")
		sent++
	}

	if sent == 0 && len(sendErrs) > 0 {
		return fmt.Errorf("%w: digest: %v",
			entity.ErrNotificationTransport, errors.Join(sendErrs...))
	}

	slog.Info("digest delivered",
		slog.Int("articles", len(top)),
		slog.Int("transports", sent))
	return nil
}

// formatDigestBody renders one line per article with a score-bucket marker.
func formatDigestBody(top []entity.ScoredArticle) string {
	var b strings.Builder
	for i, item := range top {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %.1f %s (%s)",
			scoreMarker(item.Score), item.Score, item.Title, item.Source)
	}
	return b.String()
}

// scoreMarker maps a score to its digest bucket marker.
func scoreMarker(score float64) string {
	switch {
	case score >= 9.0:
		return "🔴"
	case score >= 8.0:
		return "🟡"
	case score >= 7.0:
		return "🟢"
	default:
		return "🔵"
	}
}
