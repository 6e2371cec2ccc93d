package tracker

import (
	"context"
	"sync"
)

// Store persists user records. Implementations must be safe for
// concurrent use; read-modify-write cycles are serialized by Service.
type Store interface {
	// Load returns the record for a user. The second result reports
	// whether the user was known to the backend.
	Load(ctx context.Context, userID int64) (*UserRecord, bool, error)
	// Save writes the full record for a user, creating it if absent.
	Save(ctx context.Context, userID int64, rec *UserRecord) error
	// CountUsers returns how many users have a stored record.
	CountUsers(ctx context.Context) (int, error)
	// CountTuitions returns the number of tuition entries across all users.
	CountTuitions(ctx context.Context) (int, error)
	// Close flushes pending writes and releases backend resources.
	Close(ctx context.Context) error
}

// memoryStore keeps records in a map. Used in tests and as the
// in-process cache shared by the file backend.
type memoryStore struct {
	mu      sync.RWMutex
	records map[int64]*UserRecord
}

// NewMemoryStore returns a Store backed by process memory only.
func NewMemoryStore() Store {
	return &memoryStore{records: make(map[int64]*UserRecord)}
}

func (s *memoryStore) Load(_ context.Context, userID int64) (*UserRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[userID]
	if !ok {
		return nil, false, nil
	}
	return rec.Clone(), true, nil
}

func (s *memoryStore) Save(_ context.Context, userID int64, rec *UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[userID] = rec.Clone()
	return nil
}

func (s *memoryStore) CountUsers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *memoryStore) CountTuitions(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, rec := range s.records {
		n += len(rec.Tuitions)
	}
	return n, nil
}

func (s *memoryStore) Close(context.Context) error { return nil }
