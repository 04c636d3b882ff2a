// Package sqlite provides SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"newswatch/internal/domain/entity"
	"newswatch/internal/observability/metrics"
	"newswatch/internal/repository"
	"newswatch/internal/resilience/circuitbreaker"
)

// RecordRepo implements the RecordRepository interface using SQLite.
// Queries run through a circuit breaker so a wedged database file fails
// fast instead of stalling every scheduler firing.
type RecordRepo struct{ db *circuitbreaker.DBCircuitBreaker }

// NewRecordRepo creates a new SQLite-backed record repository.
func NewRecordRepo(db *sql.DB) repository.RecordRepository {
	return &RecordRepo{db: circuitbreaker.NewDBCircuitBreaker(db)}
}

func (repo *RecordRepo) Get(ctx context.Context, fingerprint string) (*entity.NotificationRecord, error) {
	defer observeQuery("record_get")()

	const query = `
SELECT fingerprint, score, notified_at
FROM notification_records
WHERE fingerprint = ?
LIMIT 1
`
	var record entity.NotificationRecord
	err := repo.db.QueryRowContext(ctx, query, fingerprint).Scan(
		&record.Fingerprint, &record.Score, &record.NotifiedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("Get: QueryRowContext: %w", err)
	}
	record.NotifiedAt = record.NotifiedAt.UTC()
	return &record, nil
}

func (repo *RecordRepo) Upsert(ctx context.Context, record *entity.NotificationRecord) error {
	defer observeQuery("record_upsert")()

	const query = `
INSERT INTO notification_records (fingerprint, score, notified_at)
VALUES (?, ?, ?)
ON CONFLICT(fingerprint) DO UPDATE SET
    score       = excluded.score,
    notified_at = excluded.notified_at
`
	_, err := repo.db.ExecContext(ctx, query,
		record.Fingerprint, record.Score, record.NotifiedAt.UTC())
	if err != nil {
		return fmt.Errorf("Upsert: ExecContext: %w", err)
	}
	return nil
}

func (repo *RecordRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	defer observeQuery("record_prune")()

	const query = `DELETE FROM notification_records WHERE notified_at < ?`

	result, err := repo.db.ExecContext(ctx, query, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("DeleteOlderThan: ExecContext: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteOlderThan: RowsAffected: %w", err)
	}
	return removed, nil
}

func (repo *RecordRepo) Count(ctx context.Context) (int64, error) {
	defer observeQuery("record_count")()

	const query = `SELECT COUNT(*) FROM notification_records`

	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: QueryRowContext: %w", err)
	}
	return count, nil
}

// observeQuery times a repository operation for the db query histogram.
func observeQuery(operation string) func() {
	start := time.Now()
	return func() {
		metrics.RecordDBQuery(operation, time.Since(start))
	}
}
