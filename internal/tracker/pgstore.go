package tracker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/sh0von/cow/core/logger"
	"log/slog"
)

// PostgresStore persists each user's record as a JSONB document in the
// tuition_records table. Writes are upserts keyed by user id.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an established database connection.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	logger.STORE.Info("postgres store ready",
		slog.String("event", "store.open"),
		slog.String("backend", "postgres"),
	)
	return &PostgresStore{db: db}
}

// Load fetches and decodes the user's tuition document.
func (s *PostgresStore) Load(ctx context.Context, userID int64) (*UserRecord, bool, error) {
	var raw []byte
	err := s.db.GetContext(ctx, &raw,
		`SELECT tuitions FROM tuition_records WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &StorageError{Op: "load", Err: err}
	}

	rec := NewUserRecord()
	if err := json.Unmarshal(raw, &rec.Tuitions); err != nil {
		return nil, false, &MalformedDataError{Source: "tuition_records", Err: err}
	}
	if rec.Tuitions == nil {
		rec.Tuitions = []TuitionEntry{}
	}
	return rec, true, nil
}

// Save upserts the user's tuition document.
func (s *PostgresStore) Save(ctx context.Context, userID int64, rec *UserRecord) error {
	raw, err := json.Marshal(rec.Tuitions)
	if err != nil {
		return &StorageError{Op: "save", Err: err}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tuition_records (user_id, tuitions, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (user_id)
		 DO UPDATE SET tuitions = EXCLUDED.tuitions, updated_at = now()`,
		userID, raw)
	if err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	return nil
}

// CountUsers returns the number of stored user documents.
func (s *PostgresStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM tuition_records`); err != nil {
		return 0, &StorageError{Op: "count", Err: err}
	}
	return n, nil
}

// CountTuitions returns the number of tuition entries across all users.
func (s *PostgresStore) CountTuitions(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COALESCE(SUM(jsonb_array_length(tuitions)), 0) FROM tuition_records`)
	if err != nil {
		return 0, &StorageError{Op: "count", Err: err}
	}
	return n, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close(context.Context) error {
	if err := s.db.Close(); err != nil {
		return &StorageError{Op: "close", Err: err}
	}
	return nil
}
