package entity

import "time"

// NotificationRecord marks that an article identity has been delivered.
// The store keeps at most one record per fingerprint; a re-alert for an
// escalated score overwrites the previous record with the higher score.
type NotificationRecord struct {
	Fingerprint string
	Score       float64
	NotifiedAt  time.Time
}

// DefaultRecordRetention is how long delivered fingerprints stay in the
// store before pruning makes the article eligible again.
const DefaultRecordRetention = 30 * 24 * time.Hour
