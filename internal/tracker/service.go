package tracker

import (
	"context"
	"math/rand"
	"strings"
	"sync"

	"github.com/sh0von/cow/core/logger"
	"log/slog"
)

// tuitionIDRange bounds generated tuition ids, matching the historical
// data files where ids are random integers below 1000.
const tuitionIDRange = 1000

// Service owns all tuition record mutations. Each user's
// load-modify-save cycle runs under a per-user lock, so concurrent
// updates from the same user cannot lose writes.
type Service struct {
	store Store
	newID func() int

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewService builds a Service on top of the given store.
func NewService(store Store) *Service {
	return &Service{
		store: store,
		newID: func() int { return rand.Intn(tuitionIDRange) },
		locks: make(map[int64]*sync.Mutex),
	}
}

func (s *Service) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// StartUser ensures the user has a record, creating an empty one on
// first contact. Safe to call repeatedly.
func (s *Service) StartUser(ctx context.Context, userID int64) (*UserRecord, error) {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	rec, found, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if found {
		return rec, nil
	}

	rec = NewUserRecord()
	if err := s.store.Save(ctx, userID, rec); err != nil {
		return nil, err
	}
	logger.SVCTuitions.Info("user registered",
		slog.String("event", "user.start"),
		slog.Int64("user_id", userID),
	)
	return rec, nil
}

// Record returns the user's current record, creating it if absent.
func (s *Service) Record(ctx context.Context, userID int64) (*UserRecord, error) {
	return s.StartUser(ctx, userID)
}

// AddTuition registers a new tuition class with zero attended days.
// The name is trimmed; empty names and duplicates are rejected.
func (s *Service) AddTuition(ctx context.Context, userID int64, name string) (TuitionEntry, *UserRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return TuitionEntry{}, nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	rec, _, err := s.store.Load(ctx, userID)
	if err != nil {
		return TuitionEntry{}, nil, err
	}
	if rec == nil {
		rec = NewUserRecord()
	}
	if rec.Find(name) >= 0 {
		return TuitionEntry{}, nil, &DuplicateError{Name: name}
	}

	entry := TuitionEntry{ID: s.pickID(rec), Name: name, Days: 0}
	rec.Tuitions = append(rec.Tuitions, entry)
	if err := s.store.Save(ctx, userID, rec); err != nil {
		return TuitionEntry{}, nil, err
	}

	logger.Info(ctx, "service.tuitions", "tuition.added",
		slog.Int64("user_id", userID),
		slog.String("tuition", name),
		slog.Int("tuitions", len(rec.Tuitions)),
	)
	return entry, rec, nil
}

// MarkAttendance increments the attended-day counter for the named tuition.
func (s *Service) MarkAttendance(ctx context.Context, userID int64, name string) (TuitionEntry, *UserRecord, error) {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	rec, _, err := s.store.Load(ctx, userID)
	if err != nil {
		return TuitionEntry{}, nil, err
	}
	idx := rec.Find(name)
	if idx < 0 {
		return TuitionEntry{}, nil, &NotFoundError{Name: name}
	}

	rec.Tuitions[idx].Days++
	if err := s.store.Save(ctx, userID, rec); err != nil {
		return TuitionEntry{}, nil, err
	}

	logger.Info(ctx, "service.tuitions", "attendance.marked",
		slog.Int64("user_id", userID),
		slog.String("tuition", name),
		slog.Int("days", rec.Tuitions[idx].Days),
	)
	return rec.Tuitions[idx], rec, nil
}

// DeleteTuition removes the named tuition from the user's record.
func (s *Service) DeleteTuition(ctx context.Context, userID int64, name string) (*UserRecord, error) {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	rec, _, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := rec.Find(name)
	if idx < 0 {
		return nil, &NotFoundError{Name: name}
	}

	rec.Tuitions = append(rec.Tuitions[:idx], rec.Tuitions[idx+1:]...)
	if err := s.store.Save(ctx, userID, rec); err != nil {
		return nil, err
	}

	logger.Info(ctx, "service.tuitions", "tuition.deleted",
		slog.Int64("user_id", userID),
		slog.String("tuition", name),
		slog.Int("tuitions", len(rec.Tuitions)),
	)
	return rec, nil
}

// TotalUsers reports how many users have a stored record.
func (s *Service) TotalUsers(ctx context.Context) (int, error) {
	return s.store.CountUsers(ctx)
}

// Stats summarizes stored usage for the admin stats command.
type Stats struct {
	Users    int
	Tuitions int
}

// Stats reports aggregate usage across all stored records.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	users, err := s.store.CountUsers(ctx)
	if err != nil {
		return Stats{}, err
	}
	tuitions, err := s.store.CountTuitions(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Users: users, Tuitions: tuitions}, nil
}

// pickID draws a random id not already used within the record.
// Collisions are possible in the id range, so retry a few times and
// fall back to a linear probe.
func (s *Service) pickID(rec *UserRecord) int {
	used := make(map[int]struct{}, len(rec.Tuitions))
	for _, t := range rec.Tuitions {
		used[t.ID] = struct{}{}
	}
	for i := 0; i < 8; i++ {
		id := s.newID()
		if _, taken := used[id]; !taken {
			return id
		}
	}
	for id := 0; id < tuitionIDRange; id++ {
		if _, taken := used[id]; !taken {
			return id
		}
	}
	return s.newID()
}
