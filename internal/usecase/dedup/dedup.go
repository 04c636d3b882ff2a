// Package dedup decides whether an article identity may be notified again.
// It is backed by a RecordRepository so delivery history survives restarts.
package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"newswatch/internal/domain/entity"
	"newswatch/internal/observability/metrics"
	"newswatch/internal/repository"
)

// DefaultEscalationDelta is the score increase over the recorded delivery
// that makes an already-notified article eligible for a re-alert.
const DefaultEscalationDelta = 1.5

// Deduplicator tracks delivered fingerprints and gates re-delivery.
// Reads run concurrently; writes are serialized behind one mutex so an
// upsert cannot race a concurrent prune.
type Deduplicator struct {
	repo            repository.RecordRepository
	escalationDelta float64
	retention       time.Duration

	mu sync.Mutex
}

// New creates a Deduplicator. Non-positive delta and retention fall back
// to the defaults.
func New(repo repository.RecordRepository, escalationDelta float64, retention time.Duration) *Deduplicator {
	if escalationDelta <= 0 {
		escalationDelta = DefaultEscalationDelta
	}
	if retention <= 0 {
		retention = entity.DefaultRecordRetention
	}
	return &Deduplicator{
		repo:            repo,
		escalationDelta: escalationDelta,
		retention:       retention,
	}
}

// Eligible reports whether an article with this fingerprint and score may
// be notified. Unknown fingerprints are always eligible. Known fingerprints
// are eligible only when the new score has risen by at least the escalation
// delta over the recorded delivery.
func (d *Deduplicator) Eligible(ctx context.Context, fingerprint string, score float64) (bool, error) {
	record, err := d.repo.Get(ctx, fingerprint)
	if err != nil {
		return false, fmt.Errorf("lookup notification record: %w", err)
	}
	if record == nil {
		return true, nil
	}

	if score >= record.Score+d.escalationDelta {
		slog.Info("article escalated past re-alert delta",
			slog.String("fingerprint", fingerprint),
			slog.Float64("recorded_score", record.Score),
			slog.Float64("new_score", score))
		return true, nil
	}

	return false, nil
}

// MarkNotified records a confirmed delivery. A re-alert overwrites the
// previous record so the escalation baseline moves up with each delivery.
func (d *Deduplicator) MarkNotified(ctx context.Context, fingerprint string, score float64, now time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	record := &entity.NotificationRecord{
		Fingerprint: fingerprint,
		Score:       score,
		NotifiedAt:  now.UTC(),
	}
	if err := d.repo.Upsert(ctx, record); err != nil {
		return fmt.Errorf("record notification: %w", err)
	}
	return nil
}

// Prune removes delivery records older than the given age and returns the
// number removed. Ages shorter than the configured retention are raised to
// the retention, so a record never becomes re-eligible early.
func (d *Deduplicator) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan < d.retention {
		olderThan = d.retention
	}
	cutoff := time.Now().Add(-olderThan)

	d.mu.Lock()
	defer d.mu.Unlock()

	removed, err := d.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune notification records: %w", err)
	}

	if removed > 0 {
		metrics.RecordRecordsPruned(removed)
		slog.Info("pruned notification records",
			slog.Int64("removed", removed),
			slog.Time("cutoff", cutoff))
	}
	return removed, nil
}

// Retention returns the configured record retention.
func (d *Deduplicator) Retention() time.Duration { return d.retention }
