// Package memory provides in-memory implementations of repository interfaces.
// The record repository is used by one-shot runs and tests where persistence
// across processes is not needed.
package memory

import (
	"context"
	"sync"
	"time"

	"newswatch/internal/domain/entity"
	"newswatch/internal/repository"
)

// RecordRepo implements RecordRepository with a mutex-guarded map.
type RecordRepo struct {
	mu      sync.RWMutex
	records map[string]entity.NotificationRecord
}

// NewRecordRepo creates a new in-memory record repository.
func NewRecordRepo() repository.RecordRepository {
	return &RecordRepo{
		records: make(map[string]entity.NotificationRecord),
	}
}

func (repo *RecordRepo) Get(_ context.Context, fingerprint string) (*entity.NotificationRecord, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	record, ok := repo.records[fingerprint]
	if !ok {
		return nil, nil
	}
	// Return a copy so callers cannot mutate the stored record.
	out := record
	return &out, nil
}

func (repo *RecordRepo) Upsert(_ context.Context, record *entity.NotificationRecord) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.records[record.Fingerprint] = *record
	return nil
}

func (repo *RecordRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var removed int64
	for fingerprint, record := range repo.records {
		if record.NotifiedAt.Before(cutoff) {
			delete(repo.records, fingerprint)
			removed++
		}
	}
	return removed, nil
}

func (repo *RecordRepo) Count(_ context.Context) (int64, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	return int64(len(repo.records)), nil
}
