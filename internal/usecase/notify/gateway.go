// Package notify delivers scored articles through the configured push
// transports, gated by the cross-run deduplicator.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newswatch/internal/domain/entity"
	"newswatch/internal/infra/notifier"
	"newswatch/internal/observability/metrics"
)

// Outcome is the result of one notification attempt.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// DefaultCriticalScore marks the score at which a push is delivered as
// critical (Pushover priority 1, alarm marker on Pushbullet).
const DefaultCriticalScore = 9.0

// ErrNoTransports reports a delivery dropped because every configured
// transport is disabled. It accompanies OutcomeSkipped so callers can
// tell an undeliverable article from one suppressed by dedup.
var ErrNoTransports = errors.New("no notification transports enabled")

// Deduplicator gates re-delivery of already-notified article identities.
type Deduplicator interface {
	Eligible(ctx context.Context, fingerprint string, score float64) (bool, error)
	MarkNotified(ctx context.Context, fingerprint string, score float64, now time.Time) error
}

// Config holds gateway tuning.
type Config struct {
	// CriticalScore is the score at or above which pushes are critical.
	CriticalScore float64
}

// Gateway fans a scored article out to the enabled transports.
type Gateway struct {
	transports []notifier.Transport
	dedup      Deduplicator
	config     Config
}

// NewGateway creates a Gateway. Transports are tried in the given order.
func NewGateway(transports []notifier.Transport, dedup Deduplicator, config Config) *Gateway {
	if config.CriticalScore <= 0 {
		config.CriticalScore = DefaultCriticalScore
	}
	return &Gateway{
		transports: transports,
		dedup:      dedup,
		config:     config,
	}
}

// Notify delivers one scored article.
//
// The dedup store is consulted first; suppressed articles return
// OutcomeSkipped without touching any transport. Delivery counts as sent
// when at least one enabled transport confirms, and only then is the
// fingerprint recorded. A fully failed delivery leaves no record, so the
// article is retried on the next cycle.
func (g *Gateway) Notify(ctx context.Context, scored entity.ScoredArticle) (Outcome, error) {
	fingerprint := scored.Fingerprint()

	eligible, err := g.dedup.Eligible(ctx, fingerprint, scored.Score)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("dedup lookup: %w", err)
	}
	if !eligible {
		metrics.RecordNotificationSuppressed()
		slog.Debug("notification suppressed by dedup",
			slog.String("fingerprint", fingerprint),
			slog.String("title", scored.Title),
			slog.Float64("score", scored.Score))
		return OutcomeSkipped, nil
	}

	critical := scored.Score >= g.config.CriticalScore
	msg := buildMessage(scored, critical)
	priority := priorityLabel(critical)

	var sent int
	var sendErrs []error
	for _, transport := range g.transports {
		if !transport.IsEnabled() {
			continue
		}
		if err := transport.Send(ctx, msg); err != nil {
			metrics.RecordNotification(transport.Name(), "failed", priority)
			sendErrs = append(sendErrs, fmt.Errorf("%s: %w", transport.Name(), err))
			continue
		}
		metrics.RecordNotification(transport.Name(), "sent", priority)
		sent++
	}

	if sent == 0 {
		if len(sendErrs) == 0 {
			slog.Warn("no enabled transports, notification dropped",
				slog.String("title", scored.Title))
			return OutcomeSkipped, ErrNoTransports
		}
		return OutcomeFailed, fmt.Errorf("%w: %v",
			entity.ErrNotificationTransport, errors.Join(sendErrs...))
	}

	// Record after a confirmed send so failed deliveries retry next cycle.
	// Recording must survive a cancellation that arrives mid-delivery.
	safeCtx := context.WithoutCancel(ctx)
	if err := g.dedup.MarkNotified(safeCtx, fingerprint, scored.Score, time.Now()); err != nil {
		slog.Error("delivery sent but record write failed, duplicate possible next cycle",
			slog.String("fingerprint", fingerprint),
			slog.Any("error", err))
		return OutcomeSent, fmt.Errorf("record delivery: %w", err)
	}

	slog.Info("notification delivered",
		slog.String("title", scored.Title),
		slog.Float64("score", scored.Score),
		slog.String("priority", priority),
		slog.Int("transports", sent))
	return OutcomeSent, nil
}

// buildMessage formats the push for one article.
func buildMessage(scored entity.ScoredArticle, critical bool) notifier.Message {
	body := scored.Summary
	if body != "" {
		body += "\n\n"
	}
	body += fmt.Sprintf("Source: %s\nScore: %.1f/10", scored.Source, scored.Score)
	if scored.Rationale != "" {
		body += fmt.Sprintf("\n%s", scored.Rationale)
	}

	return notifier.Message{
		Title:    scored.Title,
		Body:     body,
		URL:      scored.URL,
		Critical: critical,
	}
}

func priorityLabel(critical bool) string {
	if critical {
		return "critical"
	}
	return "normal"
}
