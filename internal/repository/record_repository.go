package repository

import (
	"context"
	"time"

	"newswatch/internal/domain/entity"
)

// RecordRepository persists notification records keyed by article fingerprint.
// Implementations keep at most one record per fingerprint.
type RecordRepository interface {
	// Get retrieves the record for a fingerprint.
	// Returns (nil, nil) if no record exists.
	Get(ctx context.Context, fingerprint string) (*entity.NotificationRecord, error)
	// Upsert inserts the record, or overwrites the existing record for the
	// same fingerprint. Used both for first delivery and escalation re-alerts.
	Upsert(ctx context.Context, record *entity.NotificationRecord) error
	// DeleteOlderThan removes records notified before the cutoff and returns
	// the number of rows removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	// Count returns the total number of records in the store.
	Count(ctx context.Context) (int64, error)
}
