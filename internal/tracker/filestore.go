package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/sh0von/cow/core/logger"
	"log/slog"
)

// FileStore persists records as one JSON snapshot on local disk.
// The whole data set lives in memory; every save rewrites the file
// atomically, and a background loop retries failed writes.
type FileStore struct {
	path  string
	mu    sync.Mutex
	data  map[int64]*UserRecord
	dirty bool

	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewFileStore loads the snapshot at path, creating an empty one if
// the file does not exist. A positive flushInterval starts a
// background loop that retries snapshots after failed saves.
func NewFileStore(path string, flushInterval time.Duration) (*FileStore, error) {
	s := &FileStore{
		path:    path,
		data:    make(map[int64]*UserRecord),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	if err := s.loadSnapshot(); err != nil {
		return nil, err
	}

	if flushInterval > 0 {
		go s.flushLoop(flushInterval)
	} else {
		close(s.stopped)
	}

	logger.STORE.Info("file store ready",
		slog.String("event", "store.open"),
		slog.String("backend", "file"),
		slog.String("path", path),
		slog.Int("users", len(s.data)),
	)
	return s, nil
}

// Load returns a copy of the user's record.
func (s *FileStore) Load(_ context.Context, userID int64) (*UserRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data[userID]
	if !ok {
		return nil, false, nil
	}
	return rec.Clone(), true, nil
}

// Save replaces the user's record and rewrites the snapshot. When the
// disk write fails the in-memory state is kept and the record is
// retried by the flush loop.
func (s *FileStore) Save(_ context.Context, userID int64, rec *UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[userID] = rec.Clone()
	if err := s.writeSnapshotLocked(); err != nil {
		s.dirty = true
		return &StorageError{Op: "save", Err: err}
	}
	s.dirty = false
	return nil
}

// CountUsers returns the number of users with a stored record.
func (s *FileStore) CountUsers(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data), nil
}

// CountTuitions returns the number of tuition entries across all users.
func (s *FileStore) CountTuitions(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rec := range s.data {
		n += len(rec.Tuitions)
	}
	return n, nil
}

// Close stops the flush loop and writes a final snapshot.
func (s *FileStore) Close(context.Context) error {
	var err error
	s.once.Do(func() {
		close(s.stop)
		<-s.stopped

		s.mu.Lock()
		defer s.mu.Unlock()
		if werr := s.writeSnapshotLocked(); werr != nil {
			err = &StorageError{Op: "close", Err: werr}
			return
		}
		s.dirty = false
	})
	return err
}

func (s *FileStore) flushLoop(interval time.Duration) {
	defer close(s.stopped)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.flush()
		}
	}
}

func (s *FileStore) flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return
	}
	if err := s.writeSnapshotLocked(); err != nil {
		logger.STORE.Warn("snapshot flush failed",
			slog.String("event", "store.flush"),
			slog.String("status", "fail"),
			slog.String("backend", "file"),
			slog.String("err", err.Error()),
		)
		return
	}
	s.dirty = false
	logger.STORE.Debug("snapshot flushed",
		slog.String("event", "store.flush"),
		slog.String("status", "ok"),
		slog.String("backend", "file"),
		slog.Int("users", len(s.data)),
	)
}

func (s *FileStore) loadSnapshot() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s.writeSnapshotLocked()
	}
	if err != nil {
		return &StorageError{Op: "load", Err: err}
	}

	if len(raw) == 0 {
		return nil
	}

	// Keys are decimal user ids, matching the historical layout.
	byKey := make(map[string]*UserRecord)
	if err := json.Unmarshal(raw, &byKey); err != nil {
		return &MalformedDataError{Source: s.path, Err: err}
	}
	for key, rec := range byKey {
		id, convErr := strconv.ParseInt(key, 10, 64)
		if convErr != nil {
			return &MalformedDataError{Source: s.path, Err: fmt.Errorf("user key %q: %w", key, convErr)}
		}
		if rec == nil {
			rec = NewUserRecord()
		}
		if rec.Tuitions == nil {
			rec.Tuitions = []TuitionEntry{}
		}
		s.data[id] = rec
	}
	return nil
}

func (s *FileStore) writeSnapshotLocked() error {
	byKey := make(map[string]*UserRecord, len(s.data))
	for id, rec := range s.data {
		byKey[strconv.FormatInt(id, 10)] = rec
	}

	raw, err := json.MarshalIndent(byKey, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}
