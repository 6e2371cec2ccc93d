package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "userData.json")

	store, err := NewFileStore(path, 0)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	rec := NewUserRecord()
	rec.Tuitions = append(rec.Tuitions, TuitionEntry{ID: 42, Name: "Math", Days: 3})
	if err := store.Save(ctx, 123, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopen and verify the snapshot survives a restart.
	store, err = NewFileStore(path, 0)
	if err != nil {
		t.Fatalf("NewFileStore reopen: %v", err)
	}
	defer store.Close(ctx)

	got, found, err := store.Load(ctx, 123)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found {
		t.Fatal("record not found after reopen")
	}
	if len(got.Tuitions) != 1 || got.Tuitions[0] != rec.Tuitions[0] {
		t.Fatalf("Load = %+v, want %+v", got.Tuitions, rec.Tuitions)
	}

	users, err := store.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if users != 1 {
		t.Fatalf("CountUsers = %d, want 1", users)
	}
}

func TestFileStoreCreatesEmptySnapshot(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "userData.json")

	store, err := NewFileStore(path, 0)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer store.Close(ctx)

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("snapshot file not created: %v", err)
	}
	var byKey map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byKey); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if len(byKey) != 0 {
		t.Fatalf("fresh snapshot has %d users, want 0", len(byKey))
	}

	_, found, err := store.Load(ctx, 999)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if found {
		t.Fatal("found a record in an empty store")
	}
}

func TestFileStoreKeysAreDecimalUserIDs(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "userData.json")

	store, err := NewFileStore(path, 0)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := store.Save(ctx, 5551234, NewUserRecord()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var byKey map[string]struct {
		Tuitions []TuitionEntry `json:"tuitions"`
	}
	if err := json.Unmarshal(raw, &byKey); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := byKey["5551234"]; !ok {
		t.Fatalf("snapshot keys = %v, want key %q", keysOf(byKey), "5551234")
	}
}

func TestFileStoreRejectsMalformedSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "userData.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := NewFileStore(path, 0)
	var mErr *MalformedDataError
	if !errors.As(err, &mErr) {
		t.Fatalf("NewFileStore err = %v, want MalformedDataError", err)
	}
}

func keysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
